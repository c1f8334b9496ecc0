package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"permit-history/internal/domain/permits"
)

func TestStore_AppendAndFetchAllAcrossPages(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, filepath.Join(t.TempDir(), "history.db"), 2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	header := []string{"Solicitud", "Status de usuario", "Válido de"}
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	// insertados en desorden: la lectura sale por captured_at
	for _, offset := range []int{2, 0, 4, 1, 3} {
		_, err := store.Append(ctx, permits.RawSnapshot{
			CapturedAt: base.Add(time.Duration(offset) * 24 * time.Hour),
			Header:     header,
			Rows:       [][]any{{"100", "AUTO", float64(46023)}},
		})
		require.NoError(t, err)
	}

	all, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].CapturedAt.Before(all[i].CapturedAt), "snapshots must be oldest first")
	}
	assert.Equal(t, header, all[0].Header)
	assert.Equal(t, []any{"100", "AUTO", float64(46023)}, all[0].Rows[0])
	assert.NotEmpty(t, all[0].ID)
}

func TestStore_SameCaptureTimeLaterAppendWins(t *testing.T) {
	ctx := context.Background()
	captured := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	header := []string{"Solicitud", "Status de usuario"}

	for i := 0; i < 20; i++ {
		store, err := Open(ctx, filepath.Join(t.TempDir(), "history.db"), 1)
		require.NoError(t, err)

		_, err = store.Append(ctx, permits.RawSnapshot{CapturedAt: captured, Header: header, Rows: [][]any{{"100", "APRO"}}})
		require.NoError(t, err)
		_, err = store.Append(ctx, permits.RawSnapshot{CapturedAt: captured, Header: header, Rows: [][]any{{"100", "AUTO"}}})
		require.NoError(t, err)

		all, err := store.FetchAll(ctx)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		require.Len(t, all, 2)
		assert.Equal(t, "APRO", all[0].Rows[0][1], "run %d: insertion order", i)

		h := permits.BuildHistory(all, permits.NewNormalizer())
		require.Len(t, h.Sequence, 1)
		assert.Equal(t, permits.StatusAuthorized, h.Sequence[0].Entities["100"].Status, "run %d", i)
	}
}

func TestStore_UnreadablePayloadIsKeptWithoutHeader(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, filepath.Join(t.TempDir(), "history.db"), 10)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.db.ExecContext(ctx,
		`INSERT INTO permit_snapshots (id, captured_at, data) VALUES (?, ?, ?)`,
		"broken", time.Now().UnixNano(), []byte(`{"rows":"nope"}`))
	require.NoError(t, err)

	all, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "broken", all[0].ID)
	assert.Nil(t, all[0].Header)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(context.Background(), " ", 10)
	assert.Error(t, err)
}
