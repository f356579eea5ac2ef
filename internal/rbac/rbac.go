package rbac

import (
	"time"

	rbacDatamodel "github.com/frahmantamala/wanderhub/internal/core/datamodel/rbac"
)

type Permission struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Role groups permissions. Users reach permissions only through their role.
type Role struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	IsDefault   bool         `json:"is_default"`
	Permissions []Permission `json:"permissions"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// HasPermission reports whether code is among the role's permissions.
func (r *Role) HasPermission(code string) bool {
	if r == nil {
		return false
	}
	for _, p := range r.Permissions {
		if p.Code == code {
			return true
		}
	}
	return false
}

func (r *Role) PermissionCodes() []string {
	codes := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		codes = append(codes, p.Code)
	}
	return codes
}

func (r *Role) PermissionIDs() []int64 {
	ids := make([]int64, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		ids = append(ids, p.ID)
	}
	return ids
}

func PermissionFromDataModel(p *rbacDatamodel.Permission) *Permission {
	return &Permission{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func FromDataModel(r *rbacDatamodel.Role) *Role {
	if r == nil {
		return nil
	}
	role := &Role{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		IsDefault:   r.IsDefault,
		Permissions: make([]Permission, 0, len(r.Permissions)),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	for i := range r.Permissions {
		role.Permissions = append(role.Permissions, *PermissionFromDataModel(&r.Permissions[i]))
	}
	return role
}
