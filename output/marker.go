package output

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/puffyCid/artemis-sub004/pkg/xcrypto"
)

// MarkerEntry is one artifact-configuration's last-run record.
type MarkerEntry struct {
	Hash      string `json:"hash"`
	Name      string `json:"name"`
	UnixEpoch uint64 `json:"unixepoch"`
	ISO       string `json:"iso"`
}

// MarkerStore is a JSON array of MarkerEntry persisted at Path, read
// fully into memory and rewritten atomically (write to a sibling tmp
// file, then rename) on every Upsert — never truncated in place.
type MarkerStore struct {
	Path    string
	entries []MarkerEntry
	loaded  bool
}

// NewMarkerStore opens (without yet reading) the marker file at path.
func NewMarkerStore(path string) *MarkerStore {
	return &MarkerStore{Path: path}
}

// HashConfig hashes an artifact's configuration bytes into the cache key
// the marker store indexes on. MD5 is sufficient: the hash is a cache
// key, not a security primitive.
func HashConfig(config []byte) string {
	return xcrypto.MD5Hex(config)
}

func (m *MarkerStore) load() error {
	if m.loaded {
		return nil
	}
	data, err := os.ReadFile(m.Path)
	if os.IsNotExist(err) {
		m.loaded = true
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		m.loaded = true
		return nil
	}
	if err := json.Unmarshal(data, &m.entries); err != nil {
		return err
	}
	m.loaded = true
	return nil
}

// Lookup returns the entry for hash, if one exists.
func (m *MarkerStore) Lookup(hash string) (MarkerEntry, bool, error) {
	if err := m.load(); err != nil {
		return MarkerEntry{}, false, err
	}
	for _, e := range m.entries {
		if e.Hash == hash {
			return e, true, nil
		}
	}
	return MarkerEntry{}, false, nil
}

// ShouldSkip reports whether now is still within age_seconds of the
// entry's last run, per the marker-file skip rule: now < last_run +
// age_seconds.
func ShouldSkip(entry MarkerEntry, now uint64, ageSeconds uint64) bool {
	return now < entry.UnixEpoch+ageSeconds
}

// Upsert replaces (or appends) hash's entry and atomically rewrites the
// backing file: write to a uniquely named "<name>.tmp-*" file in the same
// directory, then rename it over path, so a
// crash mid-write never leaves a truncated marker file behind.
func (m *MarkerStore) Upsert(entry MarkerEntry) error {
	if err := m.load(); err != nil {
		return err
	}
	replaced := false
	for i, e := range m.entries {
		if e.Hash == entry.Hash {
			m.entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		m.entries = append(m.entries, entry)
	}

	data, err := json.Marshal(m.entries)
	if err != nil {
		return err
	}

	dir := filepath.Dir(m.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(m.Path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, m.Path)
}
