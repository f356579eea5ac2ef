package postgres

import (
	"context"
	"fmt"

	"github.com/frahmantamala/wanderhub/internal"
	rbacDatamodel "github.com/frahmantamala/wanderhub/internal/core/datamodel/rbac"
	userDatamodel "github.com/frahmantamala/wanderhub/internal/core/datamodel/user"
	"github.com/frahmantamala/wanderhub/internal/rbac"
	"github.com/frahmantamala/wanderhub/internal/store"
	"gorm.io/gorm"
)

type RBACRepository struct {
	db          *gorm.DB
	roles       *store.Store[rbacDatamodel.Role]
	permissions *store.Store[rbacDatamodel.Permission]
}

func NewRBACRepository(db *gorm.DB) rbac.RepositoryAPI {
	return &RBACRepository{
		db: db,
		roles: store.New[rbacDatamodel.Role](db,
			store.WithPreload("Permissions", orderedPermissions),
			store.WithCleanup(refuseRoleInUse),
			store.WithCleanup(func(tx *gorm.DB, id int64) error {
				return tx.Where("role_id = ?", id).Delete(&rbacDatamodel.RolePermission{}).Error
			}),
		),
		permissions: store.New[rbacDatamodel.Permission](db,
			store.WithCleanup(func(tx *gorm.DB, id int64) error {
				return tx.Where("permission_id = ?", id).Delete(&rbacDatamodel.RolePermission{}).Error
			}),
		),
	}
}

func orderedPermissions(db *gorm.DB) *gorm.DB {
	return db.Order("permissions.id ASC")
}

func (r *RBACRepository) GetRole(ctx context.Context, id int64) (*rbacDatamodel.Role, error) {
	return r.roles.Get(ctx, id)
}

func (r *RBACRepository) GetRoleByName(ctx context.Context, name string) (*rbacDatamodel.Role, error) {
	return r.roles.FindOne(ctx, map[string]any{"name": name})
}

func (r *RBACRepository) ListRoles(ctx context.Context, page, limit int) (store.Page[rbacDatamodel.Role], error) {
	return r.roles.GetPaginated(ctx, page, limit)
}

func (r *RBACRepository) DefaultRole(ctx context.Context) (*rbacDatamodel.Role, error) {
	role, err := r.roles.FindOne(ctx, map[string]any{"is_default": true})
	if err != nil || role != nil {
		return role, err
	}
	return r.roles.FindOne(ctx, nil)
}

// CreateRole inserts the role and its permission links in one transaction.
func (r *RBACRepository) CreateRole(ctx context.Context, role *rbacDatamodel.Role, permissionIDs []int64) (*rbacDatamodel.Role, error) {
	var created *rbacDatamodel.Role
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roles := r.roles.WithTx(tx)
		inserted, err := roles.Create(ctx, role)
		if err != nil {
			return err
		}
		if err := linkPermissions(tx, inserted.ID, permissionIDs); err != nil {
			return err
		}
		created, err = roles.Get(ctx, inserted.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateRole applies patch and, when permissionIDs is non-nil, replaces the permission set.
func (r *RBACRepository) UpdateRole(ctx context.Context, role *rbacDatamodel.Role, patch store.Patch, permissionIDs *[]int64) (*rbacDatamodel.Role, error) {
	var updated *rbacDatamodel.Role
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roles := r.roles.WithTx(tx)
		if permissionIDs != nil {
			if err := tx.Where("role_id = ?", role.ID).Delete(&rbacDatamodel.RolePermission{}).Error; err != nil {
				return err
			}
			if err := linkPermissions(tx, role.ID, *permissionIDs); err != nil {
				return err
			}
		}
		var err error
		updated, err = roles.Update(ctx, role, patch)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *RBACRepository) DeleteRole(ctx context.Context, id int64) (*rbacDatamodel.Role, error) {
	return r.roles.Remove(ctx, id)
}

// refuseRoleInUse runs inside the delete transaction. A user assigned between this count
// and the DELETE still trips the users.role_id foreign key, which surfaces as a conflict.
func refuseRoleInUse(tx *gorm.DB, id int64) error {
	var total int64
	if err := tx.Model(&userDatamodel.User{}).Where("role_id = ?", id).Count(&total).Error; err != nil {
		return fmt.Errorf("count role users: %w", err)
	}
	if total > 0 {
		return internal.ErrRoleInUse
	}
	return nil
}

// RoleNameForUser returns "" when the user does not exist.
func (r *RBACRepository) RoleNameForUser(ctx context.Context, userID int64) (string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("users.id = ?", userID).
		Limit(1).
		Pluck("roles.name", &names).Error
	if err != nil {
		return "", fmt.Errorf("role for user: %w", err)
	}
	if len(names) == 0 {
		return "", nil
	}
	return names[0], nil
}

func (r *RBACRepository) GetPermission(ctx context.Context, id int64) (*rbacDatamodel.Permission, error) {
	return r.permissions.Get(ctx, id)
}

func (r *RBACRepository) GetPermissionByCode(ctx context.Context, code string) (*rbacDatamodel.Permission, error) {
	return r.permissions.FindOne(ctx, map[string]any{"code": code})
}

func (r *RBACRepository) ListPermissions(ctx context.Context, page, limit int) (store.Page[rbacDatamodel.Permission], error) {
	return r.permissions.GetPaginated(ctx, page, limit)
}

func (r *RBACRepository) CreatePermission(ctx context.Context, permission *rbacDatamodel.Permission) (*rbacDatamodel.Permission, error) {
	return r.permissions.Create(ctx, permission)
}

func (r *RBACRepository) UpdatePermission(ctx context.Context, permission *rbacDatamodel.Permission, patch store.Patch) (*rbacDatamodel.Permission, error) {
	return r.permissions.Update(ctx, permission, patch)
}

func (r *RBACRepository) DeletePermission(ctx context.Context, id int64) (*rbacDatamodel.Permission, error) {
	return r.permissions.Remove(ctx, id)
}

// linkPermissions inserts role_permissions rows for the ids that exist. Unknown and
// repeated ids are skipped.
func linkPermissions(tx *gorm.DB, roleID int64, permissionIDs []int64) error {
	if len(permissionIDs) == 0 {
		return nil
	}

	var known []int64
	if err := tx.Model(&rbacDatamodel.Permission{}).
		Where("id IN ?", permissionIDs).
		Order("id ASC").
		Pluck("id", &known).Error; err != nil {
		return fmt.Errorf("resolve permissions: %w", err)
	}
	if len(known) == 0 {
		return nil
	}

	links := make([]rbacDatamodel.RolePermission, 0, len(known))
	for _, id := range known {
		links = append(links, rbacDatamodel.RolePermission{RoleID: roleID, PermissionID: id})
	}
	if err := tx.Create(&links).Error; err != nil {
		return fmt.Errorf("link permissions: %w", err)
	}
	return nil
}
