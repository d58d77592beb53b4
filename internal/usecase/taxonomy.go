package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/spacedigitalia/jelajah-kode-sub000/internal/entity"
	"github.com/spacedigitalia/jelajah-kode-sub000/internal/repository"
)

var (
	ErrTermNotFound  = errors.New("taxonomy entry not found")
	ErrDuplicateTerm = errors.New("taxonomy name already exists")
	ErrInvalidTerm   = errors.New("invalid taxonomy data")
)

// TermStore is the persistence contract for one taxonomy kind.
type TermStore interface {
	Create(ctx context.Context, term *entity.Term) error
	Update(ctx context.Context, term *entity.Term) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*entity.Term, error)
	List(ctx context.Context) ([]*entity.Term, error)
}

// TaxonomyUsecase manages one taxonomy kind (categories, types, tags or
// frameworks); the admin UI gets one instance per kind.
type TaxonomyUsecase struct {
	kind   string
	store  TermStore
	logger *zap.Logger
}

func NewTaxonomyUsecase(kind string, store TermStore, logger *zap.Logger) *TaxonomyUsecase {
	return &TaxonomyUsecase{
		kind:   kind,
		store:  store,
		logger: logger.Named("TaxonomyUsecase").With(zap.String("kind", kind)),
	}
}

func (t *TaxonomyUsecase) Kind() string {
	return t.kind
}

func (t *TaxonomyUsecase) Create(ctx context.Context, name string) (*entity.Term, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidTerm)
	}
	term := &entity.Term{Name: name, Slug: Slugify(name)}
	if err := t.store.Create(ctx, term); err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return nil, ErrDuplicateTerm
		}
		return nil, err
	}
	t.logger.Info("Taxonomy entry created", zap.String("name", name))
	return term, nil
}

func (t *TaxonomyUsecase) Update(ctx context.Context, id primitive.ObjectID, name string) (*entity.Term, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidTerm)
	}
	term, err := t.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTermNotFound
		}
		return nil, err
	}
	term.Name = name
	term.Slug = Slugify(name)
	if err := t.store.Update(ctx, term); err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return nil, ErrDuplicateTerm
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTermNotFound
		}
		return nil, err
	}
	return term, nil
}

func (t *TaxonomyUsecase) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := t.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTermNotFound
		}
		return err
	}
	return nil
}

func (t *TaxonomyUsecase) List(ctx context.Context) ([]*entity.Term, error) {
	return t.store.List(ctx)
}
