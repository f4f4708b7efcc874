// Package loader provides per-execution DataLoaders that coalesce
// relation fetches issued during one query's resolution into single
// batched store calls. Loaders call repositories directly; keys are
// deduplicated and results come back in requested-key order. A Loaders
// set is strictly scoped to one execution and must never be shared
// across concurrent queries or cached.
package loader

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/mirrosha26/CoreBackend/internal/domain"
	"github.com/mirrosha26/CoreBackend/internal/store/postgres/category"
)

const (
	maxBatch = 100
	wait     = 2 * time.Millisecond
)

// ---------------------------------------------------------------------------
// Repository interfaces (consumer-defined)
// ---------------------------------------------------------------------------

type signalRepo interface {
	GetByCardIDs(ctx context.Context, cardIDs []int64, perCardLimit int) ([]domain.Signal, error)
}

type participantRepo interface {
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Participant, error)
}

type categoryRepo interface {
	GetByCardIDs(ctx context.Context, cardIDs []int64) ([]category.CategoryWithCardID, error)
}

type teamMemberRepo interface {
	GetByCardIDs(ctx context.Context, cardIDs []int64) ([]domain.TeamMember, error)
}

type noteRepo interface {
	GetByCardIDs(ctx context.Context, userID int64, cardIDs []int64) ([]domain.Note, error)
}

// Repos holds all repositories required by the loaders.
type Repos struct {
	Signal      signalRepo
	Participant participantRepo
	Category    categoryRepo
	TeamMember  teamMemberRepo
	Note        noteRepo
}

// Loaders contains the per-execution DataLoader instances. Created via
// New at the start of a resolution pass and discarded at its end.
type Loaders struct {
	SignalsByCardID     *dataloader.Loader[int64, []domain.Signal]
	ParticipantByID     *dataloader.Loader[int64, *domain.Participant]
	CategoriesByCardID  *dataloader.Loader[int64, []domain.Category]
	TeamMembersByCardID *dataloader.Loader[int64, []domain.TeamMember]
	NotesByCardID       *dataloader.Loader[int64, []domain.Note]

	// batches counts dispatched store round trips for diagnostics.
	batches atomic.Int64
}

// New creates a fresh set of loaders backed by the given repositories.
// signalLimit bounds the per-card signal window; userID scopes note
// loading (0 for anonymous, which loads no notes).
func New(repos *Repos, signalLimit int, userID int64) *Loaders {
	l := &Loaders{}
	l.SignalsByCardID = newLoader(l.signalsBatchFn(repos.Signal, signalLimit))
	l.ParticipantByID = newLoader(l.participantBatchFn(repos.Participant))
	l.CategoriesByCardID = newLoader(l.categoriesBatchFn(repos.Category))
	l.TeamMembersByCardID = newLoader(l.teamMembersBatchFn(repos.TeamMember))
	l.NotesByCardID = newLoader(l.notesBatchFn(repos.Note, userID))
	return l
}

// Batches returns the number of store round trips dispatched so far.
func (l *Loaders) Batches() int {
	return int(l.batches.Load())
}

// newLoader creates a dataloader.Loader with standard batch parameters.
// The in-flight cache is per-loader, so repeated keys within one
// execution resolve from the first fetch.
func newLoader[V any](batchFn dataloader.BatchFunc[int64, V]) *dataloader.Loader[int64, V] {
	return dataloader.NewBatchedLoader(
		batchFn,
		dataloader.WithWait[int64, V](wait),
		dataloader.WithBatchCapacity[int64, V](maxBatch),
	)
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type contextKey string

const loadersKey contextKey = "dataloaders"

// WithLoaders stores Loaders in the context.
func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, l)
}

// FromContext retrieves Loaders from the context.
// Panics if loaders are not present (indicates executor misconfiguration).
func FromContext(ctx context.Context) *Loaders {
	l, ok := ctx.Value(loadersKey).(*Loaders)
	if !ok || l == nil {
		panic("loader: loaders not found in context")
	}
	return l
}
