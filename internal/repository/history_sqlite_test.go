package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteHistoryStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := OpenSQLiteHistoryStore(context.Background(), path)
	require.NoError(t, err)
	store.now = func() time.Time { return fixedNow }
	defer store.Close()

	historyStoreContract(t, store)
}

func TestSQLiteHistoryStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := OpenSQLiteHistoryStore(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, "cand-1", sampleRecord("r1", 0.55)))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLiteHistoryStore(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	doc, err := reopened.Load(ctx, "cand-1")
	require.NoError(t, err)
	require.Len(t, doc.Records, 1)
	assert.InDelta(t, 0.55, doc.Records[0].Overall, 1e-12)
}
