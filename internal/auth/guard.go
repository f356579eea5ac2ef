package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/wanderhub/internal"
	"github.com/frahmantamala/wanderhub/internal/transport"
	"github.com/frahmantamala/wanderhub/internal/user"
	"github.com/frahmantamala/wanderhub/pkg/logger"
)

type TokenVerifier interface {
	VerifyToken(tokenString string) (*Claims, error)
}

type Resolver interface {
	Resolve(ctx context.Context, subject string) (*user.User, error)
}

// Predicate is one access rule evaluated against the resolved caller.
type Predicate func(u *user.User) error

// ActiveUser re-checks is_active on the resolved user.
func ActiveUser() Predicate {
	return func(u *user.User) error {
		if !u.IsActiveUser() {
			return internal.ErrInactiveAccount
		}
		return nil
	}
}

// RoleIn admits users whose role name is one of names, whatever the role's permissions.
func RoleIn(names ...string) Predicate {
	return func(u *user.User) error {
		if !u.HasRole(names...) {
			return internal.ErrInsufficientRole
		}
		return nil
	}
}

func Superuser() Predicate {
	return func(u *user.User) error {
		if !u.IsSuperuser {
			return internal.ErrSuperuserRequired
		}
		return nil
	}
}

// Guard runs verify, resolve and predicates in order and stops at the first failure.
type Guard struct {
	verifier TokenVerifier
	resolver Resolver
	logger   *slog.Logger
}

func NewGuard(verifier TokenVerifier, resolver Resolver, logger *slog.Logger) *Guard {
	return &Guard{verifier: verifier, resolver: resolver, logger: logger}
}

// Authorize returns the caller behind token when every predicate admits it.
func (g *Guard) Authorize(ctx context.Context, token string, preds ...Predicate) (*user.User, error) {
	if token == "" {
		return nil, internal.ErrNotAuthenticated
	}

	claims, err := g.verifier.VerifyToken(token)
	if err != nil {
		return nil, err
	}

	u, err := g.resolver.Resolve(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	if err := Check(u, preds...); err != nil {
		return nil, err
	}
	return u, nil
}

// Check evaluates preds in order against u.
func Check(u *user.User, preds ...Predicate) error {
	for _, pred := range preds {
		if err := pred(u); err != nil {
			return err
		}
	}
	return nil
}

// Authenticate resolves the bearer token and stores the caller in the request context.
func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := g.Authorize(r.Context(), transport.ExtractBearerToken(r))
		if err != nil {
			g.logger.Debug("authentication rejected", "path", r.URL.Path, "error", err)
			transport.WriteError(w, r, g.logger, err)
			return
		}

		ctx := user.ContextWithUser(r.Context(), u)
		ctx = logger.With(ctx, "user_id", u.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require applies preds to the caller stored by Authenticate.
func (g *Guard) Require(preds ...Predicate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := user.FromContext(r.Context())
			if !ok {
				transport.WriteError(w, r, g.logger, internal.ErrNotAuthenticated)
				return
			}

			if err := Check(u, preds...); err != nil {
				g.logger.Info("access denied",
					"user_id", u.ID,
					"path", r.URL.Path,
					"error", err)
				transport.WriteError(w, r, g.logger, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
