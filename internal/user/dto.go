package user

import (
	"strings"

	"github.com/frahmantamala/wanderhub/internal/core/common/validation"
	"github.com/frahmantamala/wanderhub/internal/store"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt ignores anything longer
)

type RegisterDTO struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (d RegisterDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email().MaxLength(255)
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("password", d.Password).Required().MinLength(minPasswordLength).MaxLength(maxPasswordLength)
	return v.Validate()
}

func (d RegisterDTO) normalizedEmail() string {
	return normalizeEmail(d.Email)
}

type UpdateProfileDTO struct {
	Name  store.Optional[string] `json:"name"`
	Email store.Optional[string] `json:"email"`
}

func (d UpdateProfileDTO) Validate() error {
	v := validation.NewValidator()
	if d.Name.Set {
		v.Field("name", d.Name.Value).Required().MaxLength(100)
	}
	if d.Email.Set {
		v.Field("email", d.Email.Value).Required().Email().MaxLength(255)
	}
	return v.Validate()
}

func (d UpdateProfileDTO) Patch() store.Patch {
	p := store.Patch{}
	if d.Name.Set {
		p.Set("name", d.Name.Value)
	}
	if d.Email.Set {
		p.Set("email", normalizeEmail(d.Email.Value))
	}
	return p
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (d ChangePasswordDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("current_password", d.CurrentPassword).Required()
	v.Field("new_password", d.NewPassword).Required().MinLength(minPasswordLength).MaxLength(maxPasswordLength)
	return v.Validate()
}

// AdminUpdateDTO is the superuser's partial update of any account.
type AdminUpdateDTO struct {
	Name        store.Optional[string] `json:"name"`
	Email       store.Optional[string] `json:"email"`
	RoleID      store.Optional[int64]  `json:"role_id"`
	IsActive    store.Optional[bool]   `json:"is_active"`
	IsSuperuser store.Optional[bool]   `json:"is_superuser"`
}

func (d AdminUpdateDTO) Validate() error {
	v := validation.NewValidator()
	if d.Name.Set {
		v.Field("name", d.Name.Value).Required().MaxLength(100)
	}
	if d.Email.Set {
		v.Field("email", d.Email.Value).Required().Email().MaxLength(255)
	}
	if d.RoleID.Set {
		v.Field("role_id", d.RoleID.Value).Required().MinInt(1)
	}
	if d.IsActive.Set && d.IsActive.Null {
		v.Field("is_active", "").Required()
	}
	if d.IsSuperuser.Set && d.IsSuperuser.Null {
		v.Field("is_superuser", "").Required()
	}
	return v.Validate()
}

func (d AdminUpdateDTO) Patch() store.Patch {
	p := store.Patch{}
	if d.Name.Set {
		p.Set("name", d.Name.Value)
	}
	if d.Email.Set {
		p.Set("email", normalizeEmail(d.Email.Value))
	}
	store.Assign(p, "role_id", d.RoleID)
	store.Assign(p, "is_active", d.IsActive)
	store.Assign(p, "is_superuser", d.IsSuperuser)
	return p
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
