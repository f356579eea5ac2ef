package postgres

import (
	"context"

	userDatamodel "github.com/frahmantamala/wanderhub/internal/core/datamodel/user"
	"github.com/frahmantamala/wanderhub/internal/store"
	"github.com/frahmantamala/wanderhub/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	store *store.Store[userDatamodel.User]
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{
		store: store.New[userDatamodel.User](db,
			store.WithPreload("Role"),
			store.WithPreload("Role.Permissions", func(db *gorm.DB) *gorm.DB {
				return db.Order("permissions.id ASC")
			}),
		),
	}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	return r.store.Get(ctx, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	return r.store.FindOne(ctx, map[string]any{"email": email})
}

func (r *UserRepository) List(ctx context.Context, page, limit int) (store.Page[userDatamodel.User], error) {
	return r.store.GetPaginated(ctx, page, limit)
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) (*userDatamodel.User, error) {
	return r.store.Create(ctx, u)
}

func (r *UserRepository) Update(ctx context.Context, u *userDatamodel.User, patch store.Patch) (*userDatamodel.User, error) {
	return r.store.Update(ctx, u, patch)
}
