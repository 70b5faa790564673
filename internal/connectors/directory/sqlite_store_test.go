package directory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "directory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestUpsertAndList(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, Employee{EmployeeID: "200", Name: "Petrov P.P.", JobTitle: "fitter"}))
	require.NoError(t, store.Upsert(ctx, Employee{EmployeeID: "100", Name: "Ivanov I.I."}))

	items, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "100", items[0].EmployeeID)
	assert.Equal(t, "Ivanov I.I.", items[0].Name)
	assert.Equal(t, "200", items[1].EmployeeID)
	assert.NotNil(t, items[0].UpdatedAt)
}

func TestUpsertOverwrites(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, Employee{EmployeeID: "100", Name: "Old Name"}))
	require.NoError(t, store.Upsert(ctx, Employee{EmployeeID: "100", Name: "New Name", JobTitle: "welder"}))

	items, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "New Name", items[0].Name)
	assert.Equal(t, "welder", items[0].JobTitle)
}

func TestUpsertValidation(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	assert.Error(t, store.Upsert(ctx, Employee{Name: "No ID"}))
	assert.Error(t, store.Upsert(ctx, Employee{EmployeeID: "100"}))
	assert.NoError(t, store.Upsert(ctx, Employee{EmployeeID: "  100 ", Name: " Ivanov I.I. "}))
}

func TestLookup(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, Employee{EmployeeID: "100", Name: "Ivanov I.I."}))
	require.NoError(t, store.Upsert(ctx, Employee{EmployeeID: "200", Name: "Petrov P.P."}))

	found, err := store.Lookup(ctx, []string{"100", "300"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Ivanov I.I.", found["100"].Name)

	empty, err := store.Lookup(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDelete(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, Employee{EmployeeID: "100", Name: "Ivanov I.I."}))

	deleted, err := store.Delete(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	deleted, err = store.Delete(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}

func TestNewSQLiteStoreRequiresPath(t *testing.T) {
	_, err := NewSQLiteStore("   ")
	assert.Error(t, err)
}
