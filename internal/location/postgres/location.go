package postgres

import (
	"context"

	locationDatamodel "github.com/frahmantamala/wanderhub/internal/core/datamodel/location"
	"github.com/frahmantamala/wanderhub/internal/location"
	"github.com/frahmantamala/wanderhub/internal/store"
	"gorm.io/gorm"
)

type LocationRepository struct {
	store *store.Store[locationDatamodel.Location]
}

func NewLocationRepository(db *gorm.DB) location.RepositoryAPI {
	return &LocationRepository{store: store.New[locationDatamodel.Location](db)}
}

func (r *LocationRepository) GetByID(ctx context.Context, id int64) (*locationDatamodel.Location, error) {
	return r.store.Get(ctx, id)
}

func (r *LocationRepository) GetByName(ctx context.Context, name string) (*locationDatamodel.Location, error) {
	return r.store.FindOne(ctx, map[string]any{"name": name})
}

func (r *LocationRepository) List(ctx context.Context, page, limit int) (store.Page[locationDatamodel.Location], error) {
	return r.store.GetPaginated(ctx, page, limit)
}

func (r *LocationRepository) Create(ctx context.Context, l *locationDatamodel.Location) (*locationDatamodel.Location, error) {
	return r.store.Create(ctx, l)
}

func (r *LocationRepository) Update(ctx context.Context, l *locationDatamodel.Location, patch store.Patch) (*locationDatamodel.Location, error) {
	return r.store.Update(ctx, l, patch)
}

func (r *LocationRepository) Delete(ctx context.Context, id int64) (*locationDatamodel.Location, error) {
	return r.store.Remove(ctx, id)
}
