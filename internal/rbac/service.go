package rbac

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/wanderhub/internal"
	rbacDatamodel "github.com/frahmantamala/wanderhub/internal/core/datamodel/rbac"
	"github.com/frahmantamala/wanderhub/internal/store"
)

type RepositoryAPI interface {
	GetRole(ctx context.Context, id int64) (*rbacDatamodel.Role, error)
	GetRoleByName(ctx context.Context, name string) (*rbacDatamodel.Role, error)
	ListRoles(ctx context.Context, page, limit int) (store.Page[rbacDatamodel.Role], error)
	DefaultRole(ctx context.Context) (*rbacDatamodel.Role, error)
	CreateRole(ctx context.Context, role *rbacDatamodel.Role, permissionIDs []int64) (*rbacDatamodel.Role, error)
	UpdateRole(ctx context.Context, role *rbacDatamodel.Role, patch store.Patch, permissionIDs *[]int64) (*rbacDatamodel.Role, error)
	DeleteRole(ctx context.Context, id int64) (*rbacDatamodel.Role, error)
	RoleNameForUser(ctx context.Context, userID int64) (string, error)

	GetPermission(ctx context.Context, id int64) (*rbacDatamodel.Permission, error)
	GetPermissionByCode(ctx context.Context, code string) (*rbacDatamodel.Permission, error)
	ListPermissions(ctx context.Context, page, limit int) (store.Page[rbacDatamodel.Permission], error)
	CreatePermission(ctx context.Context, permission *rbacDatamodel.Permission) (*rbacDatamodel.Permission, error)
	UpdatePermission(ctx context.Context, permission *rbacDatamodel.Permission, patch store.Patch) (*rbacDatamodel.Permission, error)
	DeletePermission(ctx context.Context, id int64) (*rbacDatamodel.Permission, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// RoleHasPermission is a pure membership test on the role's permission set.
func (s *Service) RoleHasPermission(role *Role, code string) bool {
	return role.HasPermission(code)
}

// UserHasRole reports whether the user's role is named roleName. Unknown users have no role.
func (s *Service) UserHasRole(ctx context.Context, userID int64, roleName string) (bool, error) {
	name, err := s.repo.RoleNameForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return name != "" && name == roleName, nil
}

func (s *Service) GetRole(ctx context.Context, id int64) (*Role, error) {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, internal.ErrRoleNotFound
	}
	return FromDataModel(role), nil
}

func (s *Service) ListRoles(ctx context.Context, page, limit int) (store.Page[*Role], error) {
	roles, err := s.repo.ListRoles(ctx, page, limit)
	if err != nil {
		return store.Page[*Role]{}, err
	}
	return store.MapPage(roles, FromDataModel), nil
}

// DefaultRole is the role assigned to new accounts: the lowest-id role flagged
// is_default, else the first role created. Nil when no role exists.
func (s *Service) DefaultRole(ctx context.Context) (*Role, error) {
	role, err := s.repo.DefaultRole(ctx)
	if err != nil {
		return nil, err
	}
	return FromDataModel(role), nil
}

// CreateRole rejects a taken name. Permission ids that do not exist are dropped.
func (s *Service) CreateRole(ctx context.Context, dto CreateRoleDTO) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetRoleByName(ctx, dto.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, internal.ErrRoleNameTaken
	}

	created, err := s.repo.CreateRole(ctx, &rbacDatamodel.Role{
		Name:        dto.Name,
		Description: dto.Description,
		IsDefault:   dto.IsDefault,
	}, dto.PermissionIDs)
	if err != nil {
		s.logger.Error("failed to create role", "name", dto.Name, "error", err)
		return nil, err
	}

	role := FromDataModel(created)
	s.logger.Info("role created", "role_id", role.ID, "name", role.Name, "permissions", role.PermissionCodes())
	return role, nil
}

func (s *Service) UpdateRole(ctx context.Context, id int64, dto UpdateRoleDTO) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, internal.ErrRoleNotFound
	}

	if dto.Name.Set && dto.Name.Value != existing.Name {
		clash, err := s.repo.GetRoleByName(ctx, dto.Name.Value)
		if err != nil {
			return nil, err
		}
		if clash != nil && clash.ID != id {
			return nil, internal.ErrRoleNameTaken
		}
	}

	var permissionIDs *[]int64
	if dto.ReplacesPermissions() {
		ids := dto.PermissionIDs.Value
		if ids == nil {
			ids = []int64{}
		}
		permissionIDs = &ids
	}

	updated, err := s.repo.UpdateRole(ctx, existing, dto.Patch(), permissionIDs)
	if err != nil {
		s.logger.Error("failed to update role", "role_id", id, "error", err)
		return nil, err
	}
	return FromDataModel(updated), nil
}

// DeleteRole refuses while any user still holds the role. The check and the delete share
// one transaction.
func (s *Service) DeleteRole(ctx context.Context, id int64) (*Role, error) {
	existing, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, internal.ErrRoleNotFound
	}

	removed, err := s.repo.DeleteRole(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, internal.ErrRoleInUse):
			s.logger.Warn("refusing to delete role in use", "role_id", id)
			return nil, internal.ErrRoleInUse
		case errors.Is(err, internal.ErrNotFound):
			return nil, internal.ErrRoleNotFound.WithCause(err)
		}
		return nil, err
	}

	s.logger.Info("role deleted", "role_id", id, "name", removed.Name)
	return FromDataModel(removed), nil
}

func (s *Service) GetPermission(ctx context.Context, id int64) (*Permission, error) {
	p, err := s.repo.GetPermission(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, internal.ErrPermissionNotFound
	}
	return PermissionFromDataModel(p), nil
}

// GetPermissionByCode returns nil without error when no permission has code.
func (s *Service) GetPermissionByCode(ctx context.Context, code string) (*Permission, error) {
	p, err := s.repo.GetPermissionByCode(ctx, code)
	if err != nil || p == nil {
		return nil, err
	}
	return PermissionFromDataModel(p), nil
}

func (s *Service) ListPermissions(ctx context.Context, page, limit int) (store.Page[*Permission], error) {
	perms, err := s.repo.ListPermissions(ctx, page, limit)
	if err != nil {
		return store.Page[*Permission]{}, err
	}
	return store.MapPage(perms, PermissionFromDataModel), nil
}

func (s *Service) CreatePermission(ctx context.Context, dto CreatePermissionDTO) (*Permission, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetPermissionByCode(ctx, dto.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, internal.ErrPermissionExists
	}

	created, err := s.repo.CreatePermission(ctx, &rbacDatamodel.Permission{
		Code:        dto.Code,
		Name:        dto.Name,
		Description: dto.Description,
	})
	if err != nil {
		s.logger.Error("failed to create permission", "code", dto.Code, "error", err)
		return nil, err
	}

	s.logger.Info("permission created", "permission_id", created.ID, "code", created.Code)
	return PermissionFromDataModel(created), nil
}

// UpdatePermission does not re-check code uniqueness; a collision surfaces from the
// unique index as a conflict.
func (s *Service) UpdatePermission(ctx context.Context, id int64, dto UpdatePermissionDTO) (*Permission, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetPermission(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, internal.ErrPermissionNotFound
	}

	updated, err := s.repo.UpdatePermission(ctx, existing, dto.Patch())
	if err != nil {
		if isDuplicate(err) {
			return nil, internal.ErrPermissionExists.WithCause(err)
		}
		return nil, err
	}
	return PermissionFromDataModel(updated), nil
}

// DeletePermission removes the permission from every role that held it. Roles stay.
func (s *Service) DeletePermission(ctx context.Context, id int64) (*Permission, error) {
	removed, err := s.repo.DeletePermission(ctx, id)
	if err != nil {
		if errors.Is(err, internal.ErrNotFound) {
			return nil, internal.ErrPermissionNotFound.WithCause(err)
		}
		return nil, err
	}

	s.logger.Info("permission deleted", "permission_id", id, "code", removed.Code)
	return PermissionFromDataModel(removed), nil
}

func isDuplicate(err error) bool {
	appErr := internal.FromError(err)
	return appErr.Kind == internal.KindConflict
}
