package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/wanderhub/internal/core/datamodel/user"
	"github.com/frahmantamala/wanderhub/internal/rbac"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"` // Never expose password hash
	IsActive     bool       `json:"is_active"`
	IsSuperuser  bool       `json:"is_superuser"`
	RoleID       int64      `json:"role_id"`
	Role         *rbac.Role `json:"role,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsActiveUser reports whether the account may sign in and pass guards.
func (u *User) IsActiveUser() bool {
	return u.IsActive
}

// HasRole reports whether the user's role is one of names.
func (u *User) HasRole(names ...string) bool {
	if u.Role == nil {
		return false
	}
	for _, name := range names {
		if u.Role.Name == name {
			return true
		}
	}
	return false
}

// HasPermission goes through the role; users carry no permissions of their own.
func (u *User) HasPermission(code string) bool {
	return u.Role.HasPermission(code)
}

func FromDataModel(u *userDatamodel.User) *User {
	if u == nil {
		return nil
	}
	out := &User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
		IsSuperuser:  u.IsSuperuser,
		RoleID:       u.RoleID,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if u.Role != nil {
		out.Role = rbac.FromDataModel(u.Role)
	}
	return out
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
