package location

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/wanderhub/internal"
	locationDatamodel "github.com/frahmantamala/wanderhub/internal/core/datamodel/location"
	"github.com/frahmantamala/wanderhub/internal/store"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*locationDatamodel.Location, error)
	GetByName(ctx context.Context, name string) (*locationDatamodel.Location, error)
	List(ctx context.Context, page, limit int) (store.Page[locationDatamodel.Location], error)
	Create(ctx context.Context, l *locationDatamodel.Location) (*locationDatamodel.Location, error)
	Update(ctx context.Context, l *locationDatamodel.Location, patch store.Patch) (*locationDatamodel.Location, error)
	Delete(ctx context.Context, id int64) (*locationDatamodel.Location, error)
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

func (s *Service) GetByID(ctx context.Context, id int64) (*Location, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, internal.ErrLocationNotFound
	}
	return FromDataModel(l), nil
}

// GetByName returns nil without error when no location has name.
func (s *Service) GetByName(ctx context.Context, name string) (*Location, error) {
	l, err := s.repo.GetByName(ctx, name)
	if err != nil || l == nil {
		return nil, err
	}
	return FromDataModel(l), nil
}

func (s *Service) List(ctx context.Context, page, limit int) (store.Page[*Location], error) {
	locations, err := s.repo.List(ctx, page, limit)
	if err != nil {
		s.logger.Error("failed to list locations", "error", err)
		return store.Page[*Location]{}, err
	}
	return store.MapPage(locations, FromDataModel), nil
}

func (s *Service) Create(ctx context.Context, dto CreateLocationDTO) (*Location, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, dto.Name, 0); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &locationDatamodel.Location{
		Name:        dto.Name,
		Description: dto.Description,
		CountryCode: strings.ToUpper(dto.CountryCode),
		IsActive:    dto.active(),
	})
	if err != nil {
		s.logger.Error("failed to create location", "name", dto.Name, "error", err)
		return nil, err
	}

	s.logger.Info("location created", "location_id", created.ID, "name", created.Name)
	return FromDataModel(created), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateLocationDTO) (*Location, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, internal.ErrLocationNotFound
	}

	if dto.Name.Set && dto.Name.Value != existing.Name {
		if err := s.ensureNameFree(ctx, dto.Name.Value, id); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, existing, dto.Patch())
	if err != nil {
		return nil, err
	}
	return FromDataModel(updated), nil
}

func (s *Service) Delete(ctx context.Context, id int64) (*Location, error) {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, internal.ErrNotFound) {
			return nil, internal.ErrLocationNotFound.WithCause(err)
		}
		return nil, err
	}

	s.logger.Info("location deleted", "location_id", id)
	return FromDataModel(removed), nil
}

func (s *Service) ensureNameFree(ctx context.Context, name string, ownerID int64) error {
	existing, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != ownerID {
		return internal.ErrLocationNameTaken
	}
	return nil
}
