package rbac

import (
	errors "github.com/frahmantamala/wanderhub/internal"
	"github.com/frahmantamala/wanderhub/internal/core/common/validation"
	"github.com/frahmantamala/wanderhub/internal/store"
)

type CreateRoleDTO struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	IsDefault     bool    `json:"is_default"`
	PermissionIDs []int64 `json:"permission_ids"`
}

func (d CreateRoleDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(64)
	v.Field("description", d.Description).MaxLength(255)
	return v.Validate()
}

// UpdateRoleDTO is a partial update. PermissionIDs, when sent, replaces the whole
// permission set; null and [] both clear it.
type UpdateRoleDTO struct {
	Name          store.Optional[string]  `json:"name"`
	Description   store.Optional[string]  `json:"description"`
	IsDefault     store.Optional[bool]    `json:"is_default"`
	PermissionIDs store.Optional[[]int64] `json:"permission_ids"`
}

func (d UpdateRoleDTO) Validate() error {
	v := validation.NewValidator()
	if d.Name.Set {
		v.Field("name", d.Name.Value).Custom(notNull("name", d.Name.Null)).Required().MaxLength(64)
	}
	if d.Description.Set {
		v.Field("description", d.Description.Value).MaxLength(255)
	}
	if d.IsDefault.Set {
		v.Field("is_default", d.IsDefault.Value).Custom(notNull("is_default", d.IsDefault.Null))
	}
	return v.Validate()
}

// Patch holds the scalar columns of the update. A null description is stored as "".
func (d UpdateRoleDTO) Patch() store.Patch {
	p := store.Patch{}
	store.Assign(p, "name", d.Name)
	if d.Description.Set {
		p.Set("description", d.Description.Value)
	}
	store.Assign(p, "is_default", d.IsDefault)
	return p
}

// ReplacesPermissions reports whether the update carries a new permission set.
func (d UpdateRoleDTO) ReplacesPermissions() bool {
	return d.PermissionIDs.Set
}

type CreatePermissionDTO struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (d CreatePermissionDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("code", d.Code).Required().MaxLength(100)
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("description", d.Description).MaxLength(255)
	return v.Validate()
}

type UpdatePermissionDTO struct {
	Code        store.Optional[string] `json:"code"`
	Name        store.Optional[string] `json:"name"`
	Description store.Optional[string] `json:"description"`
}

func (d UpdatePermissionDTO) Validate() error {
	v := validation.NewValidator()
	if d.Code.Set {
		v.Field("code", d.Code.Value).Custom(notNull("code", d.Code.Null)).Required().MaxLength(100)
	}
	if d.Name.Set {
		v.Field("name", d.Name.Value).Custom(notNull("name", d.Name.Null)).Required().MaxLength(100)
	}
	if d.Description.Set {
		v.Field("description", d.Description.Value).MaxLength(255)
	}
	return v.Validate()
}

func (d UpdatePermissionDTO) Patch() store.Patch {
	p := store.Patch{}
	store.Assign(p, "code", d.Code)
	store.Assign(p, "name", d.Name)
	if d.Description.Set {
		p.Set("description", d.Description.Value)
	}
	return p
}

func notNull(field string, isNull bool) validation.ValidatorFunc {
	return func(interface{}) *errors.ValidationError {
		if isNull {
			return &errors.ValidationError{
				Field:   field,
				Message: field + " cannot be null",
				Code:    string(errors.ErrCodeInvalidField),
			}
		}
		return nil
	}
}
