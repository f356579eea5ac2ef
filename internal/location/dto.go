package location

import (
	"strings"

	"github.com/frahmantamala/wanderhub/internal/core/common/validation"
	"github.com/frahmantamala/wanderhub/internal/store"
)

type CreateLocationDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CountryCode string `json:"country_code"`
	IsActive    *bool  `json:"is_active"`
}

func (d CreateLocationDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(120)
	v.Field("description", d.Description).MaxLength(2000)
	v.Field("country_code", d.CountryCode).CountryCode()
	return v.Validate()
}

func (d CreateLocationDTO) active() bool {
	return d.IsActive == nil || *d.IsActive
}

type UpdateLocationDTO struct {
	Name        store.Optional[string] `json:"name"`
	Description store.Optional[string] `json:"description"`
	CountryCode store.Optional[string] `json:"country_code"`
	IsActive    store.Optional[bool]   `json:"is_active"`
}

func (d UpdateLocationDTO) Validate() error {
	v := validation.NewValidator()
	if d.Name.Set {
		v.Field("name", d.Name.Value).Required().MaxLength(120)
	}
	if d.Description.Set {
		v.Field("description", d.Description.Value).MaxLength(2000)
	}
	if d.CountryCode.Set {
		v.Field("country_code", d.CountryCode.Value).CountryCode()
	}
	if d.IsActive.Set && d.IsActive.Null {
		v.Field("is_active", "").Required()
	}
	return v.Validate()
}

func (d UpdateLocationDTO) Patch() store.Patch {
	p := store.Patch{}
	if d.Name.Set {
		p.Set("name", d.Name.Value)
	}
	if d.Description.Set {
		p.Set("description", d.Description.Value)
	}
	if d.CountryCode.Set {
		p.Set("country_code", strings.ToUpper(d.CountryCode.Value))
	}
	store.Assign(p, "is_active", d.IsActive)
	return p
}
