package location

import (
	"time"

	locationDatamodel "github.com/frahmantamala/wanderhub/internal/core/datamodel/location"
)

type Location struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CountryCode string    `json:"country_code"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromDataModel(l *locationDatamodel.Location) *Location {
	return &Location{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		CountryCode: l.CountryCode,
		IsActive:    l.IsActive,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}
