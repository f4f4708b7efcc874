// Package note implements the user-note repository. All queries are
// scoped by user_id; notes are never visible across users.
package note

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/mirrosha26/CoreBackend/internal/domain"
	"github.com/mirrosha26/CoreBackend/internal/store/postgres"
)

// Repo provides note persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new note repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type noteRow struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	CardID    int64     `db:"card_id"`
	Text      string    `db:"text"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

const getByCardIDsSQL = `
SELECT n.id, n.user_id, n.card_id, n.text, n.created_at, n.updated_at
FROM user_notes n
WHERE n.user_id = $1 AND n.card_id = ANY($2::bigint[])
ORDER BY n.card_id, n.created_at DESC`

// GetByCardIDs returns the user's notes for each card in one round trip.
func (r *Repo) GetByCardIDs(ctx context.Context, userID int64, cardIDs []int64) ([]domain.Note, error) {
	if len(cardIDs) == 0 {
		return []domain.Note{}, nil
	}

	var rows []noteRow
	q := postgres.QuerierFromCtx(ctx, r.db)
	if err := pgxscan.Select(ctx, q, &rows, getByCardIDsSQL, userID, cardIDs); err != nil {
		return nil, postgres.MapError(err, "notes", userID)
	}

	notes := make([]domain.Note, len(rows))
	for i, row := range rows {
		notes[i] = domain.Note(row)
	}
	return notes, nil
}

const createSQL = `
INSERT INTO user_notes (user_id, card_id, text, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
RETURNING id, user_id, card_id, text, created_at, updated_at`

// Create inserts a note for the user on the card.
func (r *Repo) Create(ctx context.Context, userID, cardID int64, text string) (domain.Note, error) {
	var row noteRow
	q := postgres.QuerierFromCtx(ctx, r.db)
	if err := pgxscan.Get(ctx, q, &row, createSQL, userID, cardID, text); err != nil {
		return domain.Note{}, postgres.MapError(err, "note", cardID)
	}
	return domain.Note(row), nil
}

const deleteSQL = `
DELETE FROM user_notes WHERE id = $1 AND user_id = $2`

// Delete removes the user's note.
func (r *Repo) Delete(ctx context.Context, userID, noteID int64) error {
	q := postgres.QuerierFromCtx(ctx, r.db)
	tag, err := q.Exec(ctx, deleteSQL, noteID, userID)
	if err != nil {
		return postgres.MapError(err, "note", noteID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("note %d: %w", noteID, domain.ErrNotFound)
	}
	return nil
}
