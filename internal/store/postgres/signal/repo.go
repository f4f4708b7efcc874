// Package signal implements the signal repository. Batch queries are
// shaped for the dataloader: fetch-by-card-ids in a single round trip,
// optionally with participants joined in.
package signal

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/mirrosha26/CoreBackend/internal/domain"
	"github.com/mirrosha26/CoreBackend/internal/store/postgres"
)

// Repo provides signal persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new signal repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type signalRow struct {
	ID                      int64     `db:"id"`
	CardID                  int64     `db:"card_id"`
	ParticipantID           *int64    `db:"participant_id"`
	AssociatedParticipantID *int64    `db:"associated_participant_id"`
	Type                    string    `db:"type"`
	SourceURL               string    `db:"source_url"`
	CreatedAt               time.Time `db:"created_at"`
	ParticipantPrivate      bool      `db:"participant_private"`
	AssociatedPrivate       bool      `db:"associated_private"`
}

// The participant private flags ride along on every signal row so the
// privacy filter can act even when participants are not selected.
const getByCardIDsSQL = `
SELECT s.id, s.card_id, s.participant_id, s.associated_participant_id,
       s.type, s.source_url, s.created_at,
       COALESCE(p.private, false) AS participant_private,
       COALESCE(ap.private, false) AS associated_private
FROM (
    SELECT s.*, ROW_NUMBER() OVER (PARTITION BY s.card_id ORDER BY s.created_at DESC, s.id DESC) AS rn
    FROM signals s
    WHERE s.card_id = ANY($1::bigint[])
) s
LEFT JOIN participants p ON p.id = s.participant_id
LEFT JOIN participants ap ON ap.id = s.associated_participant_id
WHERE $2 <= 0 OR s.rn <= $2
ORDER BY s.card_id, s.created_at DESC, s.id DESC`

// GetByCardIDs returns up to perCardLimit newest signals for each of
// the given cards in one round trip. perCardLimit <= 0 means no limit.
func (r *Repo) GetByCardIDs(ctx context.Context, cardIDs []int64, perCardLimit int) ([]domain.Signal, error) {
	if len(cardIDs) == 0 {
		return []domain.Signal{}, nil
	}

	var rows []signalRow
	q := postgres.QuerierFromCtx(ctx, r.db)
	if err := pgxscan.Select(ctx, q, &rows, getByCardIDsSQL, cardIDs, perCardLimit); err != nil {
		return nil, postgres.MapError(err, "signals", 0)
	}

	signals := make([]domain.Signal, len(rows))
	for i, row := range rows {
		signals[i] = toDomainSignal(row)
	}
	return signals, nil
}

func toDomainSignal(row signalRow) domain.Signal {
	return domain.Signal{
		ID:                      row.ID,
		CardID:                  row.CardID,
		ParticipantID:           row.ParticipantID,
		AssociatedParticipantID: row.AssociatedParticipantID,
		Type:                    row.Type,
		SourceURL:               row.SourceURL,
		CreatedAt:               row.CreatedAt,
		ParticipantPrivate:      row.ParticipantPrivate,
		AssociatedPrivate:       row.AssociatedPrivate,
	}
}
