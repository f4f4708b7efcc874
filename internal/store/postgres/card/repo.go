// Package card implements the card repository. The list query is
// built dynamically with squirrel because the filter surface is wide;
// fixed-shape queries use raw SQL.
package card

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/mirrosha26/CoreBackend/internal/domain"
	"github.com/mirrosha26/CoreBackend/internal/store/postgres"
)

// Repo provides card persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new card repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Query is the full shape of a card list request at the store level.
type Query struct {
	Filter     domain.CardFilter
	Pagination domain.Pagination
	SortBy     domain.SortBy
	SortOrder  domain.SortOrder
	// UserID scopes personalized card types (saved, notes, deleted).
	UserID int64
}

var cardColumns = []string{
	"c.id", "c.slug", "c.name", "c.description", "c.stage", "c.round_status",
	"c.is_open", "c.featured", "c.signals_count", "c.latest_signal_date",
	"c.created_at", "c.updated_at",
}

type cardRow struct {
	ID               int64      `db:"id"`
	Slug             string     `db:"slug"`
	Name             string     `db:"name"`
	Description      string     `db:"description"`
	Stage            string     `db:"stage"`
	RoundStatus      string     `db:"round_status"`
	IsOpen           bool       `db:"is_open"`
	Featured         bool       `db:"featured"`
	SignalsCount     int        `db:"signals_count"`
	LatestSignalDate *time.Time `db:"latest_signal_date"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

// List returns one page of cards matching the query.
func (r *Repo) List(ctx context.Context, q Query) ([]domain.Card, error) {
	builder := sq.Select(cardColumns...).
		From("cards c").
		PlaceholderFormat(sq.Dollar)

	builder = applyFilter(builder, q.Filter, q.UserID)
	builder = applySort(builder, q.SortBy, q.SortOrder, q.Filter.Trending != nil && *q.Filter.Trending)
	builder = builder.
		Limit(uint64(q.Pagination.PageSize)).
		Offset(uint64(q.Pagination.Offset()))

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build card list query: %w", err)
	}

	var rows []cardRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "cards", 0)
	}

	cards := make([]domain.Card, len(rows))
	for i, row := range rows {
		cards[i] = toDomainCard(row)
	}
	return cards, nil
}

// Count returns the total number of cards matching the filter.
func (r *Repo) Count(ctx context.Context, q Query) (int, error) {
	builder := sq.Select("count(*)").
		From("cards c").
		PlaceholderFormat(sq.Dollar)
	builder = applyFilter(builder, q.Filter, q.UserID)

	sql, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build card count query: %w", err)
	}

	var count int
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &count, sql, args...); err != nil {
		return 0, postgres.MapError(err, "cards", 0)
	}
	return count, nil
}

const getByIDSQL = `
SELECT c.id, c.slug, c.name, c.description, c.stage, c.round_status,
       c.is_open, c.featured, c.signals_count, c.latest_signal_date,
       c.created_at, c.updated_at
FROM cards c
WHERE c.id = $1`

// GetByID returns a single card by primary key.
func (r *Repo) GetByID(ctx context.Context, cardID int64) (domain.Card, error) {
	var row cardRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, getByIDSQL, cardID); err != nil {
		return domain.Card{}, postgres.MapError(err, "card", cardID)
	}
	return toDomainCard(row), nil
}

// applyFilter translates the domain filter into WHERE clauses. Privacy
// is intentionally not applied here: the executor is the single
// privacy-enforcement point, and cards themselves are public objects.
func applyFilter(builder sq.SelectBuilder, f domain.CardFilter, userID int64) sq.SelectBuilder {
	if f.Search != nil && *f.Search != "" {
		pattern := "%" + *f.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"c.name": pattern},
			sq.ILike{"c.description": pattern},
		})
	}
	if len(f.Categories) > 0 {
		builder = builder.Where(
			`EXISTS (SELECT 1 FROM card_categories cc
			         JOIN categories cat ON cat.id = cc.category_id
			         WHERE cc.card_id = c.id AND cat.slug = ANY(?))`,
			f.Categories,
		)
	}
	if len(f.Participants) > 0 {
		builder = builder.Where(
			`EXISTS (SELECT 1 FROM signals s
			         WHERE s.card_id = c.id
			           AND (s.participant_id = ANY(?) OR s.associated_participant_id = ANY(?)))`,
			f.Participants, f.Participants,
		)
	}
	if len(f.Stages) > 0 {
		builder = builder.Where(sq.Eq{"c.stage": f.Stages})
	}
	if len(f.RoundStatuses) > 0 {
		builder = builder.Where(sq.Eq{"c.round_status": f.RoundStatuses})
	}
	if f.Featured != nil {
		builder = builder.Where(sq.Eq{"c.featured": *f.Featured})
	}
	if f.IsOpen != nil {
		builder = builder.Where(sq.Eq{"c.is_open": *f.IsOpen})
	} else {
		builder = builder.Where(sq.Eq{"c.is_open": true})
	}
	if f.StartDate != nil {
		builder = builder.Where(sq.GtOrEq{"c.latest_signal_date": *f.StartDate})
	}
	if f.EndDate != nil {
		builder = builder.Where(sq.LtOrEq{"c.latest_signal_date": *f.EndDate})
	}
	if f.MinSignals != nil {
		builder = builder.Where(sq.GtOrEq{"c.signals_count": *f.MinSignals})
	}
	if f.MaxSignals != nil {
		builder = builder.Where(sq.LtOrEq{"c.signals_count": *f.MaxSignals})
	}

	switch f.CardType {
	case domain.CardTypeSaved:
		if f.FolderID != nil {
			builder = builder.Where(
				`EXISTS (SELECT 1 FROM folder_cards fc
				         JOIN user_folders uf ON uf.id = fc.folder_id
				         WHERE fc.card_id = c.id AND uf.id = ? AND uf.user_id = ?)`,
				*f.FolderID, userID,
			)
		} else {
			builder = builder.Where(
				`EXISTS (SELECT 1 FROM folder_cards fc
				         JOIN user_folders uf ON uf.id = fc.folder_id
				         WHERE fc.card_id = c.id AND uf.user_id = ? AND uf.is_default)`,
				userID,
			)
		}
	case domain.CardTypeNotes:
		builder = builder.Where(
			`EXISTS (SELECT 1 FROM user_notes n WHERE n.card_id = c.id AND n.user_id = ?)`,
			userID,
		)
	case domain.CardTypeDeleted:
		builder = builder.Where(
			`EXISTS (SELECT 1 FROM deleted_cards dc WHERE dc.card_id = c.id AND dc.user_id = ?)`,
			userID,
		)
	case domain.CardTypeWorthFollowing:
		builder = builder.Where(sq.Eq{"c.stage": "worth_following"})
	default:
		// ALL hides cards the user has explicitly removed.
		if userID != 0 {
			builder = builder.Where(
				`NOT EXISTS (SELECT 1 FROM deleted_cards dc WHERE dc.card_id = c.id AND dc.user_id = ?)`,
				userID,
			)
		}
	}

	return builder
}

func applySort(builder sq.SelectBuilder, sortBy domain.SortBy, order domain.SortOrder, trending bool) sq.SelectBuilder {
	dir := "DESC"
	if order == domain.SortASC {
		dir = "ASC"
	}

	if trending || sortBy == domain.SortByTrending {
		// Trending ranks by recent signal volume, freshest first.
		return builder.OrderBy("c.signals_count DESC", "c.latest_signal_date DESC NULLS LAST", "c.id DESC")
	}

	switch sortBy {
	case domain.SortBySignalsCount:
		builder = builder.OrderBy("c.signals_count "+dir, "c.id DESC")
	case domain.SortByCreatedAt:
		builder = builder.OrderBy("c.created_at "+dir, "c.id DESC")
	case domain.SortByName:
		builder = builder.OrderBy("c.name "+dir, "c.id DESC")
	default:
		builder = builder.OrderBy("c.latest_signal_date "+dir+" NULLS LAST", "c.id DESC")
	}
	return builder
}

func toDomainCard(row cardRow) domain.Card {
	return domain.Card{
		ID:               row.ID,
		Slug:             row.Slug,
		Name:             row.Name,
		Description:      row.Description,
		Stage:            row.Stage,
		RoundStatus:      row.RoundStatus,
		IsOpen:           row.IsOpen,
		Featured:         row.Featured,
		SignalsCount:     row.SignalsCount,
		LatestSignalDate: row.LatestSignalDate,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}
