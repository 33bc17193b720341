package statestore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderexport/amazon-order-exporter/internal/domain/model"
)

func testState() *model.ExportState {
	return &model.ExportState{
		RunID:             "run-1",
		InProgress:        true,
		Format:            "csv",
		ExportAll:         true,
		YearsToProcess:    []string{"2024", "2023"},
		CurrentYearIndex:  1,
		CurrentStartIndex: 10,
		SeenOrderIDs:      []string{"123-4567890-1234567"},
		BaseURL:           "https://www.amazon.de/your-orders/orders",
	}
}

func runStoreTests(t *testing.T, store Store) {
	t.Helper()

	_, err := store.Load("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	state := testState()
	require.NoError(t, store.Save("amazonExporter", state))

	loaded, err := store.Load("amazonExporter")
	require.NoError(t, err)
	assert.Equal(t, state, loaded)

	// Overwrite with advanced pagination.
	state.CurrentStartIndex = 20
	require.NoError(t, store.Save("amazonExporter", state))
	loaded, err = store.Load("amazonExporter")
	require.NoError(t, err)
	assert.Equal(t, 20, loaded.CurrentStartIndex)

	require.NoError(t, store.Clear("amazonExporter"))
	_, err = store.Load("amazonExporter")
	assert.ErrorIs(t, err, ErrNotFound)

	// Clearing twice is fine.
	require.NoError(t, store.Clear("amazonExporter"))
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer store.Close()

	runStoreTests(t, store)
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, NewMemoryStore())
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save("amazonExporter", testState()))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load("amazonExporter")
	require.NoError(t, err)
	assert.Equal(t, "run-1", loaded.RunID)
	assert.Equal(t, []string{"2024", "2023"}, loaded.YearsToProcess)
}
