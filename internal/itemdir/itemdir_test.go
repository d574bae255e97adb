package itemdir

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgelight/crucible/internal/domain"
)

func writeCatalogue(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileDirectoryLookup(t *testing.T) {
	path := writeCatalogue(t, `[
		{"ref": "Item.abc", "name": "Iron Ore", "quantity": 1, "tags": ["metal"]},
		{"ref": "Item.def", "name": "Sage", "quantity": 1, "tags": ["herb"]}
	]`)
	dir := NewFileDirectory(path)

	snap, err := dir.Lookup(context.Background(), "Item.abc")
	require.NoError(t, err)
	assert.Equal(t, "Iron Ore", snap.Name)
	assert.Equal(t, []string{"metal"}, snap.Tags)

	_, err = dir.Lookup(context.Background(), "Item.gone")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestFileDirectorySearchByName(t *testing.T) {
	path := writeCatalogue(t, `[
		{"ref": "Item.a", "name": "Iron Ore"},
		{"ref": "Item.b", "name": "Iron Bar"},
		{"ref": "Item.c", "name": "Sage"}
	]`)
	dir := NewFileDirectory(path)

	matches, err := dir.SearchByName(context.Background(), "iron")
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	matches, err = dir.SearchByName(context.Background(), "Thyme")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFileDirectoryReload(t *testing.T) {
	path := writeCatalogue(t, `[{"ref": "Item.a", "name": "Iron Ore"}]`)
	dir := NewFileDirectory(path)

	_, err := dir.Lookup(context.Background(), "Item.a")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`[{"ref": "Item.b", "name": "Sage"}]`), 0o644))
	require.NoError(t, dir.Reload())

	_, err = dir.Lookup(context.Background(), "Item.a")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	snap, err := dir.Lookup(context.Background(), "Item.b")
	require.NoError(t, err)
	assert.Equal(t, "Sage", snap.Name)
}

func TestFileDirectoryMissingRef(t *testing.T) {
	path := writeCatalogue(t, `[{"name": "Nameless"}]`)
	dir := NewFileDirectory(path)

	_, err := dir.Lookup(context.Background(), "anything")
	assert.Error(t, err)
}
