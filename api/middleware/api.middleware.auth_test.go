package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/itsatony/rahub/internal/hubservice"
	"github.com/matryer/is"
)

func TestExtractToken(t *testing.T) {
	is := is.New(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	is.Equal(extractToken(req), "")

	req.Header.Set("Authorization", "Bearer abc")
	is.Equal(extractToken(req), "abc")

	req.Header.Set("Authorization", "bearer abc")
	is.Equal(extractToken(req), "abc")

	req.Header.Set("Authorization", "Basic abc")
	is.Equal(extractToken(req), "")
}

func TestHasRequiredRoles(t *testing.T) {
	is := is.New(t)

	is.True(hasRequiredRoles(nil, nil))
	is.True(hasRequiredRoles([]string{"user"}, []string{"user"}))
	is.True(hasRequiredRoles(nil, []string{"*"}))
	is.True(!hasRequiredRoles([]string{"user"}, []string{"user", "superadmin"}))
}

func decodeClaims(is *is.I, payload string) *accessClaims {
	claims := &accessClaims{}
	is.NoErr(json.Unmarshal([]byte(payload), claims))
	return claims
}

func TestCreateUser(t *testing.T) {
	is := is.New(t)

	_, err := createUser(decodeClaims(is, `{"preferred_username":"joe"}`))
	is.True(err != nil) // no subject

	// superadmin on a client role does not count, only realm_access roles do
	user, err := createUser(decodeClaims(is, `{
		"sub": "u1",
		"preferred_username": "joe",
		"email": "joe@example.com",
		"realm_access": {"roles": ["user", "", "offline_access"]},
		"resource_access": {"account": {"roles": ["superadmin"]}}
	}`))
	is.NoErr(err)
	is.Equal(user.ID, "u1")
	is.Equal(user.Prefix, "joe")
	is.Equal(user.Email, "joe@example.com")
	is.Equal(user.Roles, []string{"user", "offline_access"})
	is.True(!user.HasRole(hubservice.RoleSuperAdmin))

	admin, err := createUser(decodeClaims(is, `{"sub":"u2","preferred_username":"root","realm_access":{"roles":["superadmin"]}}`))
	is.NoErr(err)
	is.True(admin.HasRole(hubservice.RoleSuperAdmin))
}

func TestRequireRoles(t *testing.T) {
	is := is.New(t)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := RequireRoles("user")(ok)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	is.Equal(rec.Code, http.StatusUnauthorized)
	var body map[string]interface{}
	is.NoErr(json.Unmarshal(rec.Body.Bytes(), &body))
	is.True(body["request_id"] != nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(hubservice.WithUser(req.Context(), &hubservice.User{ID: "u1"}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	is.Equal(rec.Code, http.StatusForbidden)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(hubservice.WithUser(req.Context(), &hubservice.User{ID: "u1", Roles: []string{"user"}}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	is.Equal(rec.Code, http.StatusOK)
}
