package browserhistory

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T, name string, schema string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(schema)
	require.NoError(t, err)
	return path
}

func TestChromiumDownloadsDecodesJoinedRow(t *testing.T) {
	path := newTestDB(t, "History", `
		CREATE TABLE downloads (id INTEGER PRIMARY KEY, guid TEXT, current_path TEXT,
			target_path TEXT, start_time INTEGER, end_time INTEGER, last_access_time INTEGER,
			received_bytes INTEGER, total_bytes INTEGER, state INTEGER, danger_type INTEGER,
			interrupt_reason INTEGER, referrer TEXT, tab_url TEXT, mime_type TEXT, url TEXT);
		CREATE TABLE downloads_url_chains (id INTEGER, chain_index INTEGER);
		INSERT INTO downloads VALUES (1, 'guid-1', '/tmp/a.zip', '/tmp/a.zip', 0, 0, 0,
			100, 100, 1, 0, 0, 'https://example.com', 'https://example.com', 'application/zip',
			'https://example.com/a.zip');
		INSERT INTO downloads_url_chains VALUES (1, 0);
	`)

	rows, err := ChromiumDownloads(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "guid-1", rows[0].GUID)
	require.Equal(t, "/tmp/a.zip", rows[0].TargetPath)
	require.Equal(t, "https://example.com/a.zip", rows[0].URL)
	require.Equal(t, "1970-01-01T00:00:00.000Z", rows[0].StartTime)
}

func TestFirefoxDownloadsDecodesAnnotationJoin(t *testing.T) {
	path := newTestDB(t, "places.sqlite", `
		CREATE TABLE moz_places (id INTEGER PRIMARY KEY, url TEXT, title TEXT, visit_count INTEGER);
		CREATE TABLE moz_anno_attributes (id INTEGER PRIMARY KEY, name TEXT);
		CREATE TABLE moz_annos (id INTEGER PRIMARY KEY, place_id INTEGER, anno_attribute_id INTEGER,
			content TEXT, flags INTEGER, dateAdded INTEGER, lastModified INTEGER);
		INSERT INTO moz_places VALUES (1, 'https://example.com/file.zip', 'file.zip', 2);
		INSERT INTO moz_anno_attributes VALUES (1, 'downloads/destinationFileURI');
		INSERT INTO moz_annos VALUES (1, 1, 1, 'file:///tmp/file.zip', 0, 0, 0);
	`)

	rows, err := FirefoxDownloads(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "file:///tmp/file.zip", rows[0].Content)
	require.Equal(t, "https://example.com/file.zip", rows[0].URL)
	require.Equal(t, "downloads/destinationFileURI", rows[0].Name)
}

func TestChromiumPathAndFirefoxProfilesRootAreNonEmpty(t *testing.T) {
	require.NotEmpty(t, ChromiumPath("/home/user"))
	require.NotEmpty(t, FirefoxProfilesRoot("/home/user"))
}
