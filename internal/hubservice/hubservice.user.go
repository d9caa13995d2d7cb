package hubservice

import (
	"context"

	"github.com/itsatony/rahub/internal/errors"
	"github.com/itsatony/rahub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

const (
	RoleOwner      = "owner"
	RoleSuperAdmin = "superadmin"
)

// User is the authenticated operator on whose behalf a call runs.
type User struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Prefix   string   `json:"prefix"`
	Roles    []string `json:"roles"`
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type userKey struct{}

// WithUser attaches the authenticated operator to ctx.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userKey{}).(*User)
	return user, ok && user != nil
}

// GetUserRoles returns the operator's roles plus RoleOwner when the device
// belongs to them.
func GetUserRoles(ctx context.Context, device *models.Device) []string {
	user, ok := UserFromContext(ctx)
	if !ok {
		return []string{"guest"}
	}
	roles := append([]string{}, user.Roles...)
	if device != nil && device.UserID == user.ID {
		roles = append(roles, RoleOwner)
	}
	return roles
}

func currentUser(ctx context.Context) (*User, error) {
	user, ok := UserFromContext(ctx)
	if !ok {
		return nil, errors.NewAuthError("no user context found", nil)
	}
	return user, nil
}

// loadOwnedDevice fetches a device the current operator may manage. Touching
// someone else's device is written to the audit log.
func (s *HubService) loadOwnedDevice(ctx context.Context, id int64) (*models.Device, *User, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, nil, err
	}

	device, err := s.Devices.Get(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			nuts.L.Errorf("[Audit] User #%s %s tried to access unknown device %d", user.ID, user.Username, id)
		}
		return nil, nil, err
	}

	if device.UserID != user.ID && !user.HasRole(RoleSuperAdmin) {
		nuts.L.Errorf("[Audit] User #%s %s tried to access foreign device %d", user.ID, user.Username, id)
		return nil, nil, errors.NewAuthorizationError("access to device denied", nil)
	}
	return device, user, nil
}
