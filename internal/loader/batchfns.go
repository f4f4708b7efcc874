package loader

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/mirrosha26/CoreBackend/internal/domain"
)

// ---------------------------------------------------------------------------
// Signals by CardID
// ---------------------------------------------------------------------------

func (l *Loaders) signalsBatchFn(repo signalRepo, limit int) dataloader.BatchFunc[int64, []domain.Signal] {
	return func(ctx context.Context, keys []int64) []*dataloader.Result[[]domain.Signal] {
		l.batches.Add(1)

		signals, err := repo.GetByCardIDs(ctx, keys, limit)
		if err != nil {
			return errorResults[[]domain.Signal](len(keys), err)
		}

		grouped := make(map[int64][]domain.Signal, len(keys))
		for _, s := range signals {
			grouped[s.CardID] = append(grouped[s.CardID], s)
		}

		return mapResults(keys, grouped, emptySlice[domain.Signal])
	}
}

// ---------------------------------------------------------------------------
// Participant by ID (1:1 nullable)
// ---------------------------------------------------------------------------

func (l *Loaders) participantBatchFn(repo participantRepo) dataloader.BatchFunc[int64, *domain.Participant] {
	return func(ctx context.Context, keys []int64) []*dataloader.Result[*domain.Participant] {
		l.batches.Add(1)

		participants, err := repo.GetByIDs(ctx, keys)
		if err != nil {
			return errorResults[*domain.Participant](len(keys), err)
		}

		byID := make(map[int64]*domain.Participant, len(participants))
		for i := range participants {
			p := participants[i] // copy to avoid aliasing
			byID[p.ID] = &p
		}

		// Ids missing from the store resolve to nil (not found), never
		// to a batch-wide error.
		results := make([]*dataloader.Result[*domain.Participant], len(keys))
		for i, key := range keys {
			results[i] = &dataloader.Result[*domain.Participant]{Data: byID[key]}
		}
		return results
	}
}

// ---------------------------------------------------------------------------
// Categories by CardID
// ---------------------------------------------------------------------------

func (l *Loaders) categoriesBatchFn(repo categoryRepo) dataloader.BatchFunc[int64, []domain.Category] {
	return func(ctx context.Context, keys []int64) []*dataloader.Result[[]domain.Category] {
		l.batches.Add(1)

		rows, err := repo.GetByCardIDs(ctx, keys)
		if err != nil {
			return errorResults[[]domain.Category](len(keys), err)
		}

		grouped := make(map[int64][]domain.Category, len(keys))
		for _, row := range rows {
			grouped[row.CardID] = append(grouped[row.CardID], row.Category)
		}

		return mapResults(keys, grouped, emptySlice[domain.Category])
	}
}

// ---------------------------------------------------------------------------
// Team members by CardID
// ---------------------------------------------------------------------------

func (l *Loaders) teamMembersBatchFn(repo teamMemberRepo) dataloader.BatchFunc[int64, []domain.TeamMember] {
	return func(ctx context.Context, keys []int64) []*dataloader.Result[[]domain.TeamMember] {
		l.batches.Add(1)

		rows, err := repo.GetByCardIDs(ctx, keys)
		if err != nil {
			return errorResults[[]domain.TeamMember](len(keys), err)
		}

		grouped := make(map[int64][]domain.TeamMember, len(keys))
		for _, tm := range rows {
			grouped[tm.CardID] = append(grouped[tm.CardID], tm)
		}

		return mapResults(keys, grouped, emptySlice[domain.TeamMember])
	}
}

// ---------------------------------------------------------------------------
// Notes by CardID (user-scoped)
// ---------------------------------------------------------------------------

func (l *Loaders) notesBatchFn(repo noteRepo, userID int64) dataloader.BatchFunc[int64, []domain.Note] {
	return func(ctx context.Context, keys []int64) []*dataloader.Result[[]domain.Note] {
		if userID == 0 {
			return mapResults(keys, map[int64][]domain.Note{}, emptySlice[domain.Note])
		}
		l.batches.Add(1)

		rows, err := repo.GetByCardIDs(ctx, userID, keys)
		if err != nil {
			return errorResults[[]domain.Note](len(keys), err)
		}

		grouped := make(map[int64][]domain.Note, len(keys))
		for _, n := range rows {
			grouped[n.CardID] = append(grouped[n.CardID], n)
		}

		return mapResults(keys, grouped, emptySlice[domain.Note])
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// errorResults returns a slice of error results for all keys.
func errorResults[V any](n int, err error) []*dataloader.Result[V] {
	results := make([]*dataloader.Result[V], n)
	for i := range results {
		results[i] = &dataloader.Result[V]{Error: err}
	}
	return results
}

// mapResults maps grouped results back to key order, using defaultFn for missing keys.
func mapResults[V any](keys []int64, grouped map[int64]V, defaultFn func() V) []*dataloader.Result[V] {
	results := make([]*dataloader.Result[V], len(keys))
	for i, key := range keys {
		if v, ok := grouped[key]; ok {
			results[i] = &dataloader.Result[V]{Data: v}
		} else {
			results[i] = &dataloader.Result[V]{Data: defaultFn()}
		}
	}
	return results
}

// emptySlice returns a non-nil empty slice.
func emptySlice[T any]() []T {
	return []T{}
}
