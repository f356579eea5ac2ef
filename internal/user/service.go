package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/wanderhub/internal"
	"github.com/frahmantamala/wanderhub/internal/core/events"
	userDatamodel "github.com/frahmantamala/wanderhub/internal/core/datamodel/user"
	"github.com/frahmantamala/wanderhub/internal/rbac"
	"github.com/frahmantamala/wanderhub/internal/store"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	List(ctx context.Context, page, limit int) (store.Page[userDatamodel.User], error)
	Create(ctx context.Context, u *userDatamodel.User) (*userDatamodel.User, error)
	Update(ctx context.Context, u *userDatamodel.User, patch store.Patch) (*userDatamodel.User, error)
}

// RoleProvider is the slice of the permission graph accounts need.
type RoleProvider interface {
	GetRole(ctx context.Context, id int64) (*rbac.Role, error)
	DefaultRole(ctx context.Context) (*rbac.Role, error)
}

type Service struct {
	repo       RepositoryAPI
	roles      RoleProvider
	publisher  events.Publisher
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, roles RoleProvider, publisher events.Publisher, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		roles:      roles,
		publisher:  publisher,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates an active, non-superuser account on the default role.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	email := dto.normalizedEmail()

	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	role, err := s.roles.DefaultRole(ctx)
	if err != nil {
		return nil, err
	}
	if role == nil {
		s.logger.Error("registration without any role configured", "email", email)
		return nil, internal.ErrNoDefaultRole
	}

	hash, err := HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	created, err := s.repo.Create(ctx, &userDatamodel.User{
		Email:        email,
		Name:         dto.Name,
		PasswordHash: hash,
		IsActive:     true,
		RoleID:       role.ID,
	})
	if err != nil {
		s.logger.Error("failed to create user", "email", email, "error", err)
		return nil, err
	}

	s.publish(ctx, events.NewUserRegisteredEvent(created.ID, created.Email, created.Name, created.RoleID))
	s.logger.Info("user registered", "user_id", created.ID, "role_id", created.RoleID)
	return FromDataModel(created), nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}
	return FromDataModel(u), nil
}

// GetByEmail returns nil without error when no account uses email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil || u == nil {
		return nil, err
	}
	return FromDataModel(u), nil
}

func (s *Service) List(ctx context.Context, page, limit int) (store.Page[*User], error) {
	users, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return store.Page[*User]{}, err
	}
	return store.MapPage(users, FromDataModel), nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, dto UpdateProfileDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	return s.apply(ctx, userID, dto.Patch())
}

// ChangePassword requires the current password; a mismatch is BAD_REQUEST.
func (s *Service) ChangePassword(ctx context.Context, userID int64, dto ChangePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	existing, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if existing == nil {
		return internal.ErrUserNotFound
	}

	if err := VerifyPassword(existing.PasswordHash, dto.CurrentPassword); err != nil {
		return internal.ErrIncorrectPassword
	}

	hash, err := HashPassword(dto.NewPassword, s.bcryptCost)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}

	if _, err := s.repo.Update(ctx, existing, store.Patch{"password_hash": hash}); err != nil {
		return err
	}
	s.logger.Info("password changed", "user_id", userID)
	return nil
}

// AdminUpdate lets a superuser change role, status and profile of any account.
func (s *Service) AdminUpdate(ctx context.Context, userID, byUserID int64, dto AdminUpdateDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if dto.RoleID.Set {
		if _, err := s.roles.GetRole(ctx, dto.RoleID.Value); err != nil {
			if errors.Is(err, internal.ErrRoleNotFound) {
				return nil, internal.NewValidationFieldError("role_id", "role does not exist", internal.ErrCodeRoleNotFound)
			}
			return nil, err
		}
	}

	updated, err := s.apply(ctx, userID, dto.Patch())
	if err != nil {
		return nil, err
	}
	if dto.IsActive.Set && !dto.IsActive.Value {
		s.publish(ctx, events.NewUserDeactivatedEvent(updated.ID, updated.Email, byUserID))
	}
	return updated, nil
}

// Deactivate flips is_active off. Accounts are never deleted.
func (s *Service) Deactivate(ctx context.Context, userID, byUserID int64) (*User, error) {
	updated, err := s.apply(ctx, userID, store.Patch{"is_active": false})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewUserDeactivatedEvent(updated.ID, updated.Email, byUserID))
	s.logger.Info("user deactivated", "user_id", userID, "by_user", byUserID)
	return updated, nil
}

func (s *Service) apply(ctx context.Context, userID int64, patch store.Patch) (*User, error) {
	existing, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, internal.ErrUserNotFound
	}

	if email, ok := patch["email"].(string); ok && email != existing.Email {
		if err := s.ensureEmailFree(ctx, email, userID); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, existing, patch)
	if err != nil {
		s.logger.Error("failed to update user", "user_id", userID, "error", err)
		return nil, err
	}
	return FromDataModel(updated), nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string, ownerID int64) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != ownerID {
		return internal.ErrEmailTaken
	}
	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
