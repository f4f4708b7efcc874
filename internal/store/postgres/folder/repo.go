// Package folder implements the user-folder repository.
package folder

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/mirrosha26/CoreBackend/internal/domain"
	"github.com/mirrosha26/CoreBackend/internal/store/postgres"
)

// Repo provides folder persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new folder repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type folderRow struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Name      string    `db:"name"`
	IsDefault bool      `db:"is_default"`
	CreatedAt time.Time `db:"created_at"`
}

const getDefaultSQL = `
SELECT f.id, f.user_id, f.name, f.is_default, f.created_at
FROM user_folders f
WHERE f.user_id = $1 AND f.is_default
LIMIT 1`

// GetDefault returns the user's default folder.
func (r *Repo) GetDefault(ctx context.Context, userID int64) (domain.Folder, error) {
	var row folderRow
	q := postgres.QuerierFromCtx(ctx, r.db)
	if err := pgxscan.Get(ctx, q, &row, getDefaultSQL, userID); err != nil {
		return domain.Folder{}, postgres.MapError(err, "folder", userID)
	}
	return domain.Folder(row), nil
}

const getByIDSQL = `
SELECT f.id, f.user_id, f.name, f.is_default, f.created_at
FROM user_folders f
WHERE f.id = $1 AND f.user_id = $2`

// GetByID returns the user's folder by id.
func (r *Repo) GetByID(ctx context.Context, userID, folderID int64) (domain.Folder, error) {
	var row folderRow
	q := postgres.QuerierFromCtx(ctx, r.db)
	if err := pgxscan.Get(ctx, q, &row, getByIDSQL, folderID, userID); err != nil {
		return domain.Folder{}, postgres.MapError(err, "folder", folderID)
	}
	return domain.Folder(row), nil
}

const addCardSQL = `
INSERT INTO folder_cards (folder_id, card_id, created_at)
VALUES ($1, $2, now())
ON CONFLICT (folder_id, card_id) DO NOTHING`

// AddCard puts a card into the folder. Returns true if the card was
// not already present.
func (r *Repo) AddCard(ctx context.Context, folderID, cardID int64) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)
	tag, err := q.Exec(ctx, addCardSQL, folderID, cardID)
	if err != nil {
		return false, postgres.MapError(err, "folder", folderID)
	}
	return tag.RowsAffected() > 0, nil
}

const removeCardSQL = `
DELETE FROM folder_cards WHERE folder_id = $1 AND card_id = $2`

// RemoveCard takes a card out of the folder.
func (r *Repo) RemoveCard(ctx context.Context, folderID, cardID int64) error {
	q := postgres.QuerierFromCtx(ctx, r.db)
	tag, err := q.Exec(ctx, removeCardSQL, folderID, cardID)
	if err != nil {
		return postgres.MapError(err, "folder", folderID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("folder %d card %d: %w", folderID, cardID, domain.ErrNotFound)
	}
	return nil
}
