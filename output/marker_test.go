package output

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkerStoreUpsertAndLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markers.json")
	store := NewMarkerStore(path)

	hash := HashConfig([]byte(`{"artifact":"prefetch"}`))
	_, ok, err := store.Lookup(hash)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Upsert(MarkerEntry{Hash: hash, Name: "prefetch", UnixEpoch: 1000, ISO: "1970-01-01T00:16:40.000Z"}))

	entry, ok, err := store.Lookup(hash)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(1000), entry.UnixEpoch)

	// Re-loading from disk (a fresh store instance) sees the same entry.
	reopened := NewMarkerStore(path)
	entry2, ok, err := reopened.Lookup(hash)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, entry.Name, entry2.Name)
}

func TestMarkerStoreUpsertReplacesExistingEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markers.json")
	store := NewMarkerStore(path)
	hash := HashConfig([]byte("cfg"))

	require.NoError(t, store.Upsert(MarkerEntry{Hash: hash, UnixEpoch: 1}))
	require.NoError(t, store.Upsert(MarkerEntry{Hash: hash, UnixEpoch: 2}))

	entry, ok, err := store.Lookup(hash)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(2), entry.UnixEpoch)
}

func TestShouldSkipWithinWindow(t *testing.T) {
	entry := MarkerEntry{UnixEpoch: 1000}
	require.True(t, ShouldSkip(entry, 1500, 600))
	require.False(t, ShouldSkip(entry, 1700, 600))
}
