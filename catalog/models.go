package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RandomCocktail is the single-row cache refreshed by the worker. The table
// holds at most one live row; refreshes update it in place.
type RandomCocktail struct {
	bun.BaseModel `bun:"table:random_cocktails,alias:rnd"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	DrinkID       string     `bun:"drink_id,notnull" json:"drink_id"`
	Name          string     `bun:"name,notnull" json:"name"`
	ThumbURL      string     `bun:"thumb_url" json:"thumb_url"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

func (r *RandomCocktail) toRow() *RandomCocktailRow {
	return &RandomCocktailRow{
		DrinkID:  r.DrinkID,
		Name:     r.Name,
		ThumbURL: r.ThumbURL,
	}
}
