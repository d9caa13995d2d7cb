package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Nerzal/gocloak/v13"
	"github.com/golang-jwt/jwt/v5"
	"github.com/itsatony/rahub/internal/errors"
	"github.com/itsatony/rahub/internal/hubservice"
	nuts "github.com/vaudience/go-nuts"
)

type KeycloakConfig struct {
	URL          string
	Realm        string
	ClientID     string
	ClientSecret string
}

type KeycloakMiddleware struct {
	client *gocloak.GoCloak
	config KeycloakConfig
}

func NewKeycloakMiddleware(config KeycloakConfig) *KeycloakMiddleware {
	return &KeycloakMiddleware{
		client: gocloak.NewClient(config.URL),
		config: config,
	}
}

// Authenticate validates the token and adds the operator to the context
func (k *KeycloakMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			handleError(w, errors.NewAuthError("no token provided", nil))
			return
		}

		// Verify token
		result, err := k.client.RetrospectToken(r.Context(), token, k.config.ClientID, k.config.ClientSecret, k.config.Realm)
		if err != nil || result == nil || !gocloak.PBool(result.Active) {
			handleError(w, errors.NewAuthError("invalid token", err))
			return
		}

		claims := &accessClaims{}
		if _, err := k.client.DecodeAccessTokenCustomClaims(r.Context(), token, k.config.Realm, claims); err != nil {
			handleError(w, errors.NewAuthError("failed to decode token", err))
			return
		}

		user, err := createUser(claims)
		if err != nil {
			handleError(w, errors.NewAuthError("failed to create user context", err))
			return
		}

		next.ServeHTTP(w, r.WithContext(hubservice.WithUser(r.Context(), user)))
	})
}

// RequireRoles middleware ensures user has required roles
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := hubservice.UserFromContext(r.Context())
			if !ok {
				handleError(w, errors.NewAuthError("no user context found", nil))
				return
			}

			if !hasRequiredRoles(user.Roles, roles) {
				nuts.L.Warnf("[Auth] User %s lacks roles %v", user.Username, roles)
				handleError(w, errors.NewAuthorizationError("insufficient permissions", nil))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// accessClaims is the part of a Keycloak access token the hub reads.
// Roles come from the caller's own realm_access, never from the realm's
// role catalogue.
type accessClaims struct {
	jwt.RegisteredClaims
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
	RealmAccess       struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
}

// createUser maps the token's identity. The preferred username doubles as
// the prefix of the operator's device names.
func createUser(claims *accessClaims) (*hubservice.User, error) {
	if claims == nil || claims.Subject == "" {
		return nil, errors.NewAuthError("token has no subject", nil)
	}
	return &hubservice.User{
		ID:       claims.Subject,
		Username: claims.PreferredUsername,
		Email:    claims.Email,
		Prefix:   claims.PreferredUsername,
		Roles:    extractRoles(claims),
	}, nil
}

func extractToken(r *http.Request) string {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

func extractRoles(claims *accessClaims) []string {
	var roles []string
	for _, role := range claims.RealmAccess.Roles {
		if role != "" {
			roles = append(roles, role)
		}
	}
	return roles
}

func hasRequiredRoles(userRoles, requiredRoles []string) bool {
	if len(requiredRoles) == 0 {
		return true
	}

	roleMap := make(map[string]bool)
	for _, role := range userRoles {
		roleMap[role] = true
	}

	for _, required := range requiredRoles {
		if required == "*" {
			return true
		}
		if !roleMap[required] {
			return false
		}
	}
	return true
}

func handleError(w http.ResponseWriter, err *errors.APIError) {
	err.WithRequestID(nuts.NID("req", 12))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
}
