// Package browserhistory queries the Chromium and Firefox SQLite profile
// databases for download history: Chromium's downloads/downloads_url_chains
// tables and Firefox's moz_annos/moz_places/moz_anno_attributes join. Both
// browsers keep their profile database open and locked while running, so
// every query opens the file read-only and immutable through a SQLite URI
// rather than through the browser's own API.
package browserhistory

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"runtime"

	_ "github.com/mattn/go-sqlite3"

	"github.com/puffyCid/artemis-sub004/pkg/enc"
	"github.com/puffyCid/artemis-sub004/pkg/rawio"
)

// ChromiumDownload is one row of Chromium's downloads table joined with its
// URL chain.
type ChromiumDownload struct {
	ID              int64
	GUID            string
	CurrentPath     string
	TargetPath      string
	StartTime       string
	EndTime         string
	LastAccessTime  string
	ReceivedBytes   int64
	TotalBytes      int64
	State           int64
	DangerType      int64
	InterruptReason int64
	Referrer        string
	TabURL          string
	MimeType        string
	URL             string
}

// ProfileDownloads is one user profile's set of decoded downloads.
type ProfileDownloads struct {
	User     string
	Path     string
	Chromium []ChromiumDownload
	Firefox  []FirefoxDownload
}

// FirefoxDownload is one row of Firefox's download-annotation table joined
// with the place (URL/title) it annotates.
type FirefoxDownload struct {
	ID           int64
	PlaceID      int64
	Content      string
	Flags        int64
	DateAdded    string
	LastModified string
	Name         string
	URL          string
	Title        string
	VisitCount   int64
}

// chromiumDownloadsQuery mirrors the distilled artifact's join: one row per
// downloads_url_chains entry for a download, carrying both tables' fields.
const chromiumDownloadsQuery = `
SELECT downloads.id, guid, current_path, target_path, start_time, end_time,
       last_access_time, received_bytes, total_bytes, state, danger_type,
       interrupt_reason, referrer, tab_url, mime_type, url
FROM downloads
JOIN downloads_url_chains ON downloads_url_chains.id = downloads.id
ORDER BY downloads.id`

// firefoxDownloadsQuery mirrors Firefox's download-as-annotation model:
// browser.download.* annotations in moz_annos, joined back to the moz_places
// row (and moz_anno_attributes for the annotation's name) they describe.
const firefoxDownloadsQuery = `
SELECT moz_annos.id, place_id, content, flags, dateAdded, lastModified,
       moz_anno_attributes.name, moz_places.url, moz_places.title,
       moz_places.visit_count
FROM moz_annos
JOIN moz_places ON moz_annos.place_id = moz_places.id
JOIN moz_anno_attributes ON anno_attribute_id = moz_anno_attributes.id
ORDER BY moz_annos.id`

// ChromiumPath returns the default Chromium History database path under a
// user's profile directory for the host platform.
func ChromiumPath(userHome string) string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(userHome, `AppData\Local\Chromium\User Data\Default\History`)
	case "darwin":
		return filepath.Join(userHome, "Library/Application Support/Chromium/Default/History")
	default:
		return filepath.Join(userHome, ".config/chromium/Default/History")
	}
}

// FirefoxProfilesRoot returns the directory holding a user's Firefox
// profiles (one places.sqlite per profile) for the host platform.
func FirefoxProfilesRoot(userHome string) string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(userHome, `AppData\Roaming\Mozilla\Firefox\Profiles`)
	case "darwin":
		return filepath.Join(userHome, "Library/Application Support/Firefox/Profiles")
	default:
		return filepath.Join(userHome, ".mozilla/firefox")
	}
}

// CollectAllUsers enumerates every user profile via rawio.ListUsers and
// queries each one's Chromium and Firefox download history, skipping
// profiles that don't have the browser installed (no History/places.sqlite
// file present) rather than treating that as an error.
func CollectAllUsers() ([]ProfileDownloads, error) {
	users, err := rawio.ListUsers()
	if err != nil {
		return nil, err
	}

	var out []ProfileDownloads
	for _, u := range users {
		var pd ProfileDownloads
		pd.User = u.Name
		pd.Path = u.Path

		chromiumFile := ChromiumPath(u.Path)
		if rows, err := ChromiumDownloads(chromiumFile); err == nil {
			pd.Chromium = rows
		}

		firefoxProfiles, _ := filepath.Glob(filepath.Join(FirefoxProfilesRoot(u.Path), "*", "places.sqlite"))
		for _, profile := range firefoxProfiles {
			if rows, err := FirefoxDownloads(profile); err == nil {
				pd.Firefox = append(pd.Firefox, rows...)
			}
		}

		if len(pd.Chromium) > 0 || len(pd.Firefox) > 0 {
			out = append(out, pd)
		}
	}
	return out, nil
}

// ChromiumDownloads opens path read-only and immutable (bypassing Chromium's
// own exclusive lock on an open profile) and returns its decoded downloads.
func ChromiumDownloads(path string) ([]ChromiumDownload, error) {
	db, err := openImmutable(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(chromiumDownloadsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChromiumDownload
	for rows.Next() {
		var d ChromiumDownload
		var start, end, lastAccess int64
		if err := rows.Scan(&d.ID, &d.GUID, &d.CurrentPath, &d.TargetPath, &start, &end,
			&lastAccess, &d.ReceivedBytes, &d.TotalBytes, &d.State, &d.DangerType,
			&d.InterruptReason, &d.Referrer, &d.TabURL, &d.MimeType, &d.URL); err != nil {
			continue
		}
		d.StartTime = enc.WebKitToISO8601(start)
		d.EndTime = enc.WebKitToISO8601(end)
		d.LastAccessTime = enc.WebKitToISO8601(lastAccess)
		out = append(out, d)
	}
	return out, rows.Err()
}

// FirefoxDownloads opens path read-only and immutable and returns its
// decoded download annotations joined with the place they describe.
func FirefoxDownloads(path string) ([]FirefoxDownload, error) {
	db, err := openImmutable(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(firefoxDownloadsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FirefoxDownload
	for rows.Next() {
		var f FirefoxDownload
		var added, modified int64
		if err := rows.Scan(&f.ID, &f.PlaceID, &f.Content, &f.Flags, &added, &modified,
			&f.Name, &f.URL, &f.Title, &f.VisitCount); err != nil {
			continue
		}
		f.DateAdded = enc.UnixMicrosToISO8601(added)
		f.LastModified = enc.UnixMicrosToISO8601(modified)
		out = append(out, f)
	}
	return out, rows.Err()
}

// openImmutable opens a SQLite file read-only through the `immutable=1` URI
// parameter, so SQLite reads it without taking or checking its own file
// locks. This is separate from pkg/rawio, whose lock bypass reads the raw
// NTFS volume; the file here is opened through the OS.
func openImmutable(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?immutable=1&mode=ro", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
