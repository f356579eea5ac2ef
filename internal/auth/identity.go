package auth

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/frahmantamala/wanderhub/internal"
	"github.com/frahmantamala/wanderhub/internal/user"
)

// UserLoader reads one user with role and permissions attached, nil when absent.
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

type IdentityResolver struct {
	users  UserLoader
	logger *slog.Logger
}

func NewIdentityResolver(users UserLoader, logger *slog.Logger) *IdentityResolver {
	return &IdentityResolver{users: users, logger: logger}
}

// Resolve maps a verified subject to an active user. An unknown or unparsable subject
// is NOT_AUTHENTICATED; an inactive account is INACTIVE_ACCOUNT.
func (r *IdentityResolver) Resolve(ctx context.Context, subject string) (*user.User, error) {
	id, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return nil, internal.ErrNotAuthenticated.WithCause(err)
	}

	u, err := r.users.GetByID(ctx, id)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Kind == internal.KindNotFound {
			return nil, internal.ErrNotAuthenticated.WithCause(err)
		}
		return nil, err
	}
	if u == nil {
		return nil, internal.ErrNotAuthenticated
	}

	if !u.IsActiveUser() {
		r.logger.Debug("rejecting inactive account", "user_id", u.ID)
		return nil, internal.ErrInactiveAccount
	}
	return u, nil
}
