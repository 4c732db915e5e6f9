package catalog

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RandomCocktails stores the cached random drink row.
type RandomCocktails interface {
	repository.Repository[*RandomCocktail]

	Current(ctx context.Context) (*RandomCocktail, error)
	AddOrUpdate(ctx context.Context, row *RandomCocktailRow) (*RandomCocktail, error)
}

type randomCocktails struct {
	repository.Repository[*RandomCocktail]
	db *bun.DB
}

var _ RandomCocktails = (*randomCocktails)(nil)

func NewRandomCocktailsRepository(db *bun.DB) RandomCocktails {
	repo := repository.NewRepository[*RandomCocktail](db, repository.ModelHandlers[*RandomCocktail]{
		NewRecord: func() *RandomCocktail { return &RandomCocktail{} },
		GetID: func(r *RandomCocktail) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *RandomCocktail, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
		GetIdentifier: func() string {
			return "drink_id"
		},
	})

	return &randomCocktails{
		Repository: repo,
		db:         db,
	}
}

// Current returns the cached row, or a not found error when the worker has
// not populated the cache yet.
func (r *randomCocktails) Current(ctx context.Context) (*RandomCocktail, error) {
	record := &RandomCocktail{}
	err := r.db.NewSelect().Model(record).
		Order("created_at ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}
	return record, nil
}

// AddOrUpdate writes the row in place, inserting only when the cache is empty.
func (r *randomCocktails) AddOrUpdate(ctx context.Context, row *RandomCocktailRow) (*RandomCocktail, error) {
	existing, err := r.Current(ctx)
	if err != nil {
		if !repository.IsRecordNotFound(err) {
			return nil, err
		}

		record := &RandomCocktail{
			ID:       uuid.New(),
			DrinkID:  row.DrinkID,
			Name:     row.Name,
			ThumbURL: row.ThumbURL,
		}
		return r.Repository.Create(ctx, record)
	}

	existing.DrinkID = row.DrinkID
	existing.Name = row.Name
	existing.ThumbURL = row.ThumbURL
	now := time.Now()
	existing.UpdatedAt = &now

	return r.Repository.Update(ctx, existing)
}
