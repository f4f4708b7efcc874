package loader

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrosha26/CoreBackend/internal/domain"
	"github.com/mirrosha26/CoreBackend/internal/store/postgres/category"
)

// ===========================================================================
// Manual mocks (func fields)
// ===========================================================================

type mockSignalRepo struct {
	calls          atomic.Int64
	GetByCardIDsFn func(ctx context.Context, cardIDs []int64, limit int) ([]domain.Signal, error)
}

func (m *mockSignalRepo) GetByCardIDs(ctx context.Context, cardIDs []int64, limit int) ([]domain.Signal, error) {
	m.calls.Add(1)
	if m.GetByCardIDsFn != nil {
		return m.GetByCardIDsFn(ctx, cardIDs, limit)
	}
	return nil, nil
}

type mockParticipantRepo struct {
	calls      atomic.Int64
	GetByIDsFn func(ctx context.Context, ids []int64) ([]domain.Participant, error)
}

func (m *mockParticipantRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.Participant, error) {
	m.calls.Add(1)
	if m.GetByIDsFn != nil {
		return m.GetByIDsFn(ctx, ids)
	}
	return nil, nil
}

type mockCategoryRepo struct {
	GetByCardIDsFn func(ctx context.Context, cardIDs []int64) ([]category.CategoryWithCardID, error)
}

func (m *mockCategoryRepo) GetByCardIDs(ctx context.Context, cardIDs []int64) ([]category.CategoryWithCardID, error) {
	if m.GetByCardIDsFn != nil {
		return m.GetByCardIDsFn(ctx, cardIDs)
	}
	return nil, nil
}

type mockTeamMemberRepo struct{}

func (m *mockTeamMemberRepo) GetByCardIDs(ctx context.Context, cardIDs []int64) ([]domain.TeamMember, error) {
	return nil, nil
}

type mockNoteRepo struct {
	calls          atomic.Int64
	GetByCardIDsFn func(ctx context.Context, userID int64, cardIDs []int64) ([]domain.Note, error)
}

func (m *mockNoteRepo) GetByCardIDs(ctx context.Context, userID int64, cardIDs []int64) ([]domain.Note, error) {
	m.calls.Add(1)
	if m.GetByCardIDsFn != nil {
		return m.GetByCardIDsFn(ctx, userID, cardIDs)
	}
	return nil, nil
}

func testRepos() (*Repos, *mockSignalRepo, *mockParticipantRepo, *mockNoteRepo) {
	sr := &mockSignalRepo{}
	pr := &mockParticipantRepo{}
	nr := &mockNoteRepo{}
	repos := &Repos{
		Signal:      sr,
		Participant: pr,
		Category:    &mockCategoryRepo{},
		TeamMember:  &mockTeamMemberRepo{},
		Note:        nr,
	}
	return repos, sr, pr, nr
}

// ===========================================================================
// Batching
// ===========================================================================

// Concurrent loads of distinct keys coalesce into one store round trip.
func TestLoaders_SignalsBatchDedup(t *testing.T) {
	t.Parallel()

	repos, sr, _, _ := testRepos()
	sr.GetByCardIDsFn = func(_ context.Context, cardIDs []int64, limit int) ([]domain.Signal, error) {
		assert.Equal(t, 10, limit)
		var out []domain.Signal
		for _, id := range cardIDs {
			out = append(out, domain.Signal{ID: id * 100, CardID: id})
		}
		return out, nil
	}

	l := New(repos, 10, 0)
	ctx := context.Background()

	// Same key requested twice plus a second key: one batch, two keys.
	t1 := l.SignalsByCardID.Load(ctx, 1)
	t2 := l.SignalsByCardID.Load(ctx, 2)
	t3 := l.SignalsByCardID.Load(ctx, 1)

	s1, err := t1()
	require.NoError(t, err)
	s2, err := t2()
	require.NoError(t, err)
	s3, err := t3()
	require.NoError(t, err)

	assert.Equal(t, int64(1), sr.calls.Load())
	assert.Equal(t, 1, l.Batches())

	require.Len(t, s1, 1)
	assert.Equal(t, int64(1), s1[0].CardID)
	require.Len(t, s2, 1)
	assert.Equal(t, int64(2), s2[0].CardID)
	assert.Equal(t, s1, s3)
}

// Results come back keyed correctly regardless of store return order.
func TestLoaders_ResultsInKeyOrder(t *testing.T) {
	t.Parallel()

	repos, sr, _, _ := testRepos()
	sr.GetByCardIDsFn = func(_ context.Context, cardIDs []int64, _ int) ([]domain.Signal, error) {
		// Reverse order relative to the requested keys.
		var out []domain.Signal
		for i := len(cardIDs) - 1; i >= 0; i-- {
			out = append(out, domain.Signal{ID: cardIDs[i], CardID: cardIDs[i]})
		}
		return out, nil
	}

	l := New(repos, 0, 0)
	ctx := context.Background()

	thunks := []func() ([]domain.Signal, error){
		l.SignalsByCardID.Load(ctx, 7),
		l.SignalsByCardID.Load(ctx, 3),
		l.SignalsByCardID.Load(ctx, 9),
	}
	want := []int64{7, 3, 9}
	for i, thunk := range thunks {
		got, err := thunk()
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, want[i], got[0].CardID)
	}
}

// A key with no rows resolves to an empty slice, not an error.
func TestLoaders_MissingKeyIsEmpty(t *testing.T) {
	t.Parallel()

	repos, sr, _, _ := testRepos()
	sr.GetByCardIDsFn = func(_ context.Context, _ []int64, _ int) ([]domain.Signal, error) {
		return []domain.Signal{{ID: 1, CardID: 1}}, nil
	}

	l := New(repos, 0, 0)
	got, err := l.SignalsByCardID.Load(context.Background(), 42)()

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// A participant id absent from the store resolves to nil.
func TestLoaders_MissingParticipantIsNil(t *testing.T) {
	t.Parallel()

	repos, _, pr, _ := testRepos()
	pr.GetByIDsFn = func(_ context.Context, ids []int64) ([]domain.Participant, error) {
		return []domain.Participant{{ID: 1, Name: "Fund One"}}, nil
	}

	l := New(repos, 0, 0)
	ctx := context.Background()

	found := l.ParticipantByID.Load(ctx, 1)
	missing := l.ParticipantByID.Load(ctx, 999)

	p, err := found()
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Fund One", p.Name)

	m, err := missing()
	require.NoError(t, err)
	assert.Nil(t, m)
}

// A failed batch fails every pending key of that batch.
func TestLoaders_BatchErrorFailsAllKeys(t *testing.T) {
	t.Parallel()

	repos, sr, _, _ := testRepos()
	storeErr := errors.New("connection reset")
	sr.GetByCardIDsFn = func(_ context.Context, _ []int64, _ int) ([]domain.Signal, error) {
		return nil, storeErr
	}

	l := New(repos, 0, 0)
	ctx := context.Background()

	t1 := l.SignalsByCardID.Load(ctx, 1)
	t2 := l.SignalsByCardID.Load(ctx, 2)

	_, err1 := t1()
	_, err2 := t2()
	assert.ErrorIs(t, err1, storeErr)
	assert.ErrorIs(t, err2, storeErr)
}

// Anonymous executions never hit the note store.
func TestLoaders_NotesSkippedForAnonymous(t *testing.T) {
	t.Parallel()

	repos, _, _, nr := testRepos()
	l := New(repos, 0, 0)

	got, err := l.NotesByCardID.Load(context.Background(), 1)()

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, int64(0), nr.calls.Load())
	assert.Equal(t, 0, l.Batches())
}

func TestLoaders_NotesScopedToUser(t *testing.T) {
	t.Parallel()

	repos, _, _, nr := testRepos()
	nr.GetByCardIDsFn = func(_ context.Context, userID int64, cardIDs []int64) ([]domain.Note, error) {
		assert.Equal(t, int64(42), userID)
		return []domain.Note{{ID: 1, UserID: userID, CardID: cardIDs[0], Text: "follow up"}}, nil
	}

	l := New(repos, 0, 42)
	got, err := l.NotesByCardID.Load(context.Background(), 5)()

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "follow up", got[0].Text)
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	repos, _, _, _ := testRepos()
	l := New(repos, 0, 0)

	ctx := WithLoaders(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))

	assert.Panics(t, func() { FromContext(context.Background()) })
}

// Loads issued after the batch window still resolve (new batch).
func TestLoaders_SecondBatchAfterWait(t *testing.T) {
	t.Parallel()

	repos, sr, _, _ := testRepos()
	sr.GetByCardIDsFn = func(_ context.Context, cardIDs []int64, _ int) ([]domain.Signal, error) {
		return []domain.Signal{{ID: cardIDs[0], CardID: cardIDs[0]}}, nil
	}

	l := New(repos, 0, 0)
	ctx := context.Background()

	_, err := l.SignalsByCardID.Load(ctx, 1)()
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = l.SignalsByCardID.Load(ctx, 2)()
	require.NoError(t, err)

	assert.Equal(t, 2, l.Batches())
}
