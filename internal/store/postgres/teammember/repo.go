// Package teammember implements the team-member repository.
package teammember

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/mirrosha26/CoreBackend/internal/domain"
	"github.com/mirrosha26/CoreBackend/internal/store/postgres"
)

// Repo provides team-member persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new team-member repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

const getByCardIDsSQL = `
SELECT tm.id, tm.card_id, tm.name, tm.role, tm.url
FROM team_members tm
WHERE tm.card_id = ANY($1::bigint[])
ORDER BY tm.card_id, tm.id`

// GetByCardIDs returns the team members of each card in one round trip.
func (r *Repo) GetByCardIDs(ctx context.Context, cardIDs []int64) ([]domain.TeamMember, error) {
	if len(cardIDs) == 0 {
		return []domain.TeamMember{}, nil
	}

	var rows []domain.TeamMember
	q := postgres.QuerierFromCtx(ctx, r.db)
	if err := pgxscan.Select(ctx, q, &rows, getByCardIDsSQL, cardIDs); err != nil {
		return nil, postgres.MapError(err, "team_members", 0)
	}
	return rows, nil
}
