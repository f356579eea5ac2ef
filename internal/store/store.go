package store

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/frahmantamala/wanderhub/internal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entity is any persisted record addressed by an integer primary key stored in column "id".
type Entity interface {
	PrimaryKey() int64
}

// Cleanup runs inside the delete transaction before the row itself is removed.
type Cleanup func(tx *gorm.DB, id int64) error

type Option func(*options)

type options struct {
	preloads []preload
	cleanups []Cleanup
}

type preload struct {
	association string
	args        []interface{}
}

// WithPreload eager-loads association on every read. args are passed to gorm's Preload,
// e.g. a scope ordering the loaded rows.
func WithPreload(association string, args ...interface{}) Option {
	return func(o *options) {
		o.preloads = append(o.preloads, preload{association: association, args: args})
	}
}

// WithCleanup registers a hook that runs before Remove deletes the row.
func WithCleanup(fn Cleanup) Option {
	return func(o *options) {
		o.cleanups = append(o.cleanups, fn)
	}
}

// Store is the CRUD and pagination engine shared by every entity repository.
type Store[T Entity] struct {
	db   *gorm.DB
	opts options
}

func New[T Entity](db *gorm.DB, opts ...Option) *Store[T] {
	s := &Store[T]{db: db}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

// WithTx returns a copy of the store bound to tx, so a repository can compose several
// store calls into one unit of work.
func (s *Store[T]) WithTx(tx *gorm.DB) *Store[T] {
	return &Store[T]{db: tx, opts: s.opts}
}

// DB returns the session the store writes through.
func (s *Store[T]) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Query returns a session scoped to T with the configured preloads applied. Entity
// specific reads are built on top of it.
func (s *Store[T]) Query(ctx context.Context) *gorm.DB {
	return s.scoped(s.db.WithContext(ctx))
}

func (s *Store[T]) scoped(db *gorm.DB) *gorm.DB {
	q := db.Model(new(T))
	for _, p := range s.opts.preloads {
		q = q.Preload(p.association, p.args...)
	}
	return q
}

// Get returns nil without error when no row matches id.
func (s *Store[T]) Get(ctx context.Context, id int64) (*T, error) {
	return s.FindOne(ctx, map[string]any{"id": id})
}

// FindOne is the equality-filter read used by by-code / by-name lookups. Absent is nil, nil.
func (s *Store[T]) FindOne(ctx context.Context, conds map[string]any) (*T, error) {
	return first[T](s.scoped(s.db.WithContext(ctx)), conds)
}

func (s *Store[T]) FindAll(ctx context.Context, conds map[string]any) ([]T, error) {
	items := make([]T, 0)
	q := s.Query(ctx)
	if len(conds) > 0 {
		q = q.Where(conds)
	}
	err := q.Order("id ASC").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("store: find all: %w", err)
	}
	return items, nil
}

func (s *Store[T]) Count(ctx context.Context, conds map[string]any) (int64, error) {
	var total int64
	q := s.db.WithContext(ctx).Model(new(T))
	if len(conds) > 0 {
		q = q.Where(conds)
	}
	if err := q.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return total, nil
}

// GetMulti is plain offset pagination. Range checks on skip and limit belong to callers.
func (s *Store[T]) GetMulti(ctx context.Context, skip, limit int) ([]T, error) {
	items := make([]T, 0)
	err := s.Query(ctx).Order("id ASC").Offset(skip).Limit(limit).Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("store: get multi: %w", err)
	}
	return items, nil
}

// GetPaginated serves 1-indexed pages. A page below 1 is read as page 1; a page past the
// last one is empty.
func (s *Store[T]) GetPaginated(ctx context.Context, page, limit int) (Page[T], error) {
	if page < 1 {
		page = 1
	}

	total, err := s.Count(ctx, nil)
	if err != nil {
		return Page[T]{}, err
	}

	result := Page[T]{
		Items: make([]T, 0),
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: TotalPages(total, limit),
	}
	// Past the last page nothing is read, which also keeps the offset below total.
	if total == 0 || limit <= 0 || page > result.Pages {
		return result, nil
	}

	items, err := s.GetMulti(ctx, (page-1)*limit, limit)
	if err != nil {
		return Page[T]{}, err
	}
	result.Items = items
	return result, nil
}

// Create inserts entity, leaving associations to the owning repository, and returns the
// record as stored, with generated id and defaults.
func (s *Store[T]) Create(ctx context.Context, entity *T) (*T, error) {
	var created *T
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(entity).Error; err != nil {
			return err
		}
		var err error
		created, err = s.mustReload(tx, (*entity).PrimaryKey())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("store: create: %w", err)
	}
	return created, nil
}

// Update writes only the columns present in patch onto existing and returns the stored
// record. A nil value writes NULL.
func (s *Store[T]) Update(ctx context.Context, existing *T, patch Patch) (*T, error) {
	id := (*existing).PrimaryKey()
	var updated *T
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(patch) > 0 {
			res := tx.Model(new(T)).Where("id = ?", id).Updates(map[string]any(patch))
			if res.Error != nil {
				return res.Error
			}
		}
		var err error
		updated, err = s.mustReload(tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("store: update %d: %w", id, err)
	}
	return updated, nil
}

// Remove deletes the row and returns what was stored. A missing id is NotFound.
func (s *Store[T]) Remove(ctx context.Context, id int64) (*T, error) {
	var removed *T
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		removed, err = s.mustReload(tx, id)
		if err != nil {
			return err
		}
		for _, cleanup := range s.opts.cleanups {
			if err := cleanup(tx, id); err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(new(T)).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrNotFound.WithCause(err)
		}
		return nil, fmt.Errorf("store: remove %d: %w", id, err)
	}
	return removed, nil
}

func (s *Store[T]) mustReload(tx *gorm.DB, id int64) (*T, error) {
	var out T
	if err := s.scoped(tx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func first[T any](q *gorm.DB, conds map[string]any) (*T, error) {
	var out T
	if len(conds) > 0 {
		q = q.Where(conds)
	}
	err := q.Order("id ASC").First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: find one: %w", err)
	}
	return &out, nil
}

// TotalPages is ceil(total/limit), or 0 when there is nothing to page.
func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}
