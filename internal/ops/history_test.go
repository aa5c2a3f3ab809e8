package ops

import (
	"testing"

	"github.com/stretchr/testify/require"

	"marginalia/internal/db"
	"marginalia/internal/errors"
	"marginalia/internal/recall"
)

func recallEntry(text string) recall.Entry {
	return recall.Entry{Text: text}
}

func TestHistory_PaginationAndValidation(t *testing.T) {
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	defer database.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, db.InsertSnapshot(database, &db.Snapshot{
			ID:       string(rune('a' + i)),
			Document: "doc-1",
			TakenAt:  int64(100 + i),
			Payload:  "[]",
		}))
	}

	out, err := History(database, HistoryInput{Document: "doc-1", Limit: 2})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	require.Equal(t, 5, out.Pagination.Total)
	require.True(t, out.Pagination.HasMore)
	require.Equal(t, "e", out.Items[0].ID, "newest first")

	out, err = History(database, HistoryInput{Document: "doc-1", Limit: 2, Offset: 4})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	require.False(t, out.Pagination.HasMore)

	// Limit is clamped, not rejected.
	out, err = History(database, HistoryInput{Document: "doc-1", Limit: 10000})
	require.NoError(t, err)
	require.Equal(t, MaxHistoryLimit, out.Pagination.Limit)

	_, err = History(database, HistoryInput{Document: ""})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = History(database, HistoryInput{Document: "doc-1", Offset: -1})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestShowSnapshot_Validation(t *testing.T) {
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	defer database.Close()

	_, err = ShowSnapshot(database, "  ")
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = ShowSnapshot(database, "missing")
	require.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestPurge(t *testing.T) {
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	defer database.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, db.InsertSnapshot(database, &db.Snapshot{
			ID:       string(rune('a' + i)),
			Document: "doc-1",
			TakenAt:  int64(100 + i),
			Payload:  "[]",
		}))
	}
	require.NoError(t, db.UpsertMemoryEntry(database, "doc-1", "k", recallEntry("text")))

	out, err := Purge(database, PurgeInput{Document: "doc-1", Before: 102})
	require.NoError(t, err)
	require.Equal(t, 2, out.SnapshotsRemoved)
	require.False(t, out.MemoryCleared)

	out, err = Purge(database, PurgeInput{Document: "doc-1", Memory: true})
	require.NoError(t, err)
	require.Equal(t, 1, out.SnapshotsRemoved)
	require.True(t, out.MemoryCleared)

	entries, err := db.LoadMemoryEntries(database, "doc-1")
	require.NoError(t, err)
	require.Empty(t, entries)

	_, err = Purge(database, PurgeInput{Document: " "})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}
