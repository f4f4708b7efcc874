// Package participant implements the participant repository.
package participant

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/mirrosha26/CoreBackend/internal/domain"
	"github.com/mirrosha26/CoreBackend/internal/store/postgres"
)

// Repo provides participant persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new participant repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type participantRow struct {
	ID                  int64  `db:"id"`
	Slug                string `db:"slug"`
	Name                string `db:"name"`
	AdditionalName      string `db:"additional_name"`
	Type                string `db:"type"`
	Private             bool   `db:"private"`
	MonthlySignalsCount int    `db:"monthly_signals_count"`
	AssociatedWithID    *int64 `db:"associated_with_id"`
}

const getByIDsSQL = `
SELECT p.id, p.slug, p.name, p.additional_name, p.type, p.private,
       p.monthly_signals_count, p.associated_with_id
FROM participants p
WHERE p.id = ANY($1::bigint[])`

// GetByIDs returns the participants with the given ids in one round
// trip. Missing ids are simply absent from the result.
func (r *Repo) GetByIDs(ctx context.Context, ids []int64) ([]domain.Participant, error) {
	if len(ids) == 0 {
		return []domain.Participant{}, nil
	}

	var rows []participantRow
	q := postgres.QuerierFromCtx(ctx, r.db)
	if err := pgxscan.Select(ctx, q, &rows, getByIDsSQL, ids); err != nil {
		return nil, postgres.MapError(err, "participants", 0)
	}

	out := make([]domain.Participant, len(rows))
	for i, row := range rows {
		out[i] = toDomainParticipant(row)
	}
	return out, nil
}

const visiblePrivateSQL = `
SELECT sp.participant_id
FROM saved_participants sp
JOIN participants p ON p.id = sp.participant_id
WHERE sp.user_id = $1 AND p.private`

// VisiblePrivateIDs returns the private participant ids the user
// follows. This set forms the user's privacy context.
func (r *Repo) VisiblePrivateIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	q := postgres.QuerierFromCtx(ctx, r.db)
	if err := pgxscan.Select(ctx, q, &ids, visiblePrivateSQL, userID); err != nil {
		return nil, postgres.MapError(err, "saved_participants", userID)
	}
	return ids, nil
}

const followSQL = `
INSERT INTO saved_participants (user_id, participant_id, created_at)
VALUES ($1, $2, now())
ON CONFLICT (user_id, participant_id) DO NOTHING`

const unfollowSQL = `
DELETE FROM saved_participants WHERE user_id = $1 AND participant_id = $2`

// Follow records that the user follows the participant. Returns true
// if a new follow row was created.
func (r *Repo) Follow(ctx context.Context, userID, participantID int64) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)
	tag, err := q.Exec(ctx, followSQL, userID, participantID)
	if err != nil {
		return false, postgres.MapError(err, "participant", participantID)
	}
	return tag.RowsAffected() > 0, nil
}

// Unfollow removes the user's follow of the participant. Returns true
// if a row was deleted.
func (r *Repo) Unfollow(ctx context.Context, userID, participantID int64) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)
	tag, err := q.Exec(ctx, unfollowSQL, userID, participantID)
	if err != nil {
		return false, postgres.MapError(err, "participant", participantID)
	}
	return tag.RowsAffected() > 0, nil
}

func toDomainParticipant(row participantRow) domain.Participant {
	return domain.Participant{
		ID:                  row.ID,
		Slug:                row.Slug,
		Name:                row.Name,
		AdditionalName:      row.AdditionalName,
		Type:                row.Type,
		Private:             row.Private,
		MonthlySignalsCount: row.MonthlySignalsCount,
		AssociatedWithID:    row.AssociatedWithID,
	}
}
