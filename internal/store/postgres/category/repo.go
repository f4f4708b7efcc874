// Package category implements the category repository.
package category

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/mirrosha26/CoreBackend/internal/domain"
	"github.com/mirrosha26/CoreBackend/internal/store/postgres"
)

// Repo provides category persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new category repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// CategoryWithCardID wraps a domain.Category with the card it belongs
// to, for batch m2m queries.
type CategoryWithCardID struct {
	CardID int64 `db:"card_id"`
	domain.Category
}

const getByCardIDsSQL = `
SELECT cc.card_id, cat.id, cat.slug, cat.name, cat.parent_id
FROM card_categories cc
JOIN categories cat ON cat.id = cc.category_id
WHERE cc.card_id = ANY($1::bigint[])
ORDER BY cc.card_id, cat.name`

// GetByCardIDs returns the categories of each card in one round trip.
func (r *Repo) GetByCardIDs(ctx context.Context, cardIDs []int64) ([]CategoryWithCardID, error) {
	if len(cardIDs) == 0 {
		return []CategoryWithCardID{}, nil
	}

	var rows []CategoryWithCardID
	q := postgres.QuerierFromCtx(ctx, r.db)
	if err := pgxscan.Select(ctx, q, &rows, getByCardIDsSQL, cardIDs); err != nil {
		return nil, postgres.MapError(err, "categories", 0)
	}
	return rows, nil
}
