package note

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrosha26/CoreBackend/internal/domain"
)

var noteColumns = []string{"id", "user_id", "card_id", "text", "created_at", "updated_at"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestRepo_Create(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := New(mock)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO user_notes`).
		WithArgs(int64(7), int64(42), "promising team").
		WillReturnRows(pgxmock.NewRows(noteColumns).
			AddRow(int64(1), int64(7), int64(42), "promising team", now, now))

	note, err := repo.Create(context.Background(), 7, 42, "promising team")
	require.NoError(t, err)

	assert.Equal(t, int64(1), note.ID)
	assert.Equal(t, int64(7), note.UserID)
	assert.Equal(t, int64(42), note.CardID)
	assert.Equal(t, "promising team", note.Text)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_Delete(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := New(mock)

	mock.ExpectExec(`DELETE FROM user_notes`).
		WithArgs(int64(9), int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.Delete(context.Background(), 7, 9))
	require.NoError(t, mock.ExpectationsWereMet())
}

// Deleting someone else's note (or a missing one) affects zero rows and
// must surface as not found, not silent success.
func TestRepo_Delete_NotFound(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := New(mock)

	mock.ExpectExec(`DELETE FROM user_notes`).
		WithArgs(int64(9), int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), 7, 9)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_GetByCardIDs(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := New(mock)
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM user_notes`).
		WithArgs(int64(7), []int64{42, 43}).
		WillReturnRows(pgxmock.NewRows(noteColumns).
			AddRow(int64(1), int64(7), int64(42), "first", now, now).
			AddRow(int64(2), int64(7), int64(43), "second", now, now))

	notes, err := repo.GetByCardIDs(context.Background(), 7, []int64{42, 43})
	require.NoError(t, err)

	require.Len(t, notes, 2)
	assert.Equal(t, int64(42), notes[0].CardID)
	assert.Equal(t, int64(43), notes[1].CardID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_GetByCardIDs_EmptyInput(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := New(mock)

	notes, err := repo.GetByCardIDs(context.Background(), 7, nil)
	require.NoError(t, err)
	assert.Empty(t, notes)
	assert.NotNil(t, notes)

	require.NoError(t, mock.ExpectationsWereMet(), "no query expected for empty input")
}
