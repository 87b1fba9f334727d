package loginitems

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// syncthingBookmarkFixture is a real macOS login item bookmark record for
// /Applications/Syncthing.app, byte-for-byte identical to the fixture the
// upstream Rust collector tests against.
var syncthingBookmarkFixture = []byte{
	98, 111, 111, 107, 244, 2, 0, 0, 0, 0, 4, 16, 48, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 8, 2, 0, 0, 12, 0,
	0, 0, 1, 1, 0, 0, 65, 112, 112, 108, 105, 99, 97, 116, 105, 111, 110, 115, 13, 0, 0, 0,
	1, 1, 0, 0, 83, 121, 110, 99, 116, 104, 105, 110, 103, 46, 97, 112, 112, 0, 0, 0, 8, 0,
	0, 0, 1, 6, 0, 0, 4, 0, 0, 0, 24, 0, 0, 0, 8, 0, 0, 0, 4, 3, 0, 0, 103, 0, 0, 0, 0, 0,
	0, 0, 8, 0, 0, 0, 4, 3, 0, 0, 42, 198, 10, 0, 0, 0, 0, 0, 8, 0, 0, 0, 1, 6, 0, 0, 64,
	0, 0, 0, 80, 0, 0, 0, 8, 0, 0, 0, 0, 4, 0, 0, 65, 195, 213, 41, 226, 128, 0, 0, 24, 0,
	0, 0, 1, 2, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 15, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 8, 0, 0, 0, 1, 9, 0, 0, 102, 105, 108, 101, 58, 47, 47, 47, 12, 0, 0, 0, 1, 1, 0, 0,
	77, 97, 99, 105, 110, 116, 111, 115, 104, 32, 72, 68, 8, 0, 0, 0, 4, 3, 0, 0, 0, 96,
	127, 115, 37, 0, 0, 0, 8, 0, 0, 0, 0, 4, 0, 0, 65, 172, 190, 215, 104, 0, 0, 0, 36, 0,
	0, 0, 1, 1, 0, 0, 48, 65, 56, 49, 70, 51, 66, 49, 45, 53, 49, 68, 57, 45, 51, 51, 51,
	53, 45, 66, 51, 69, 51, 45, 49, 54, 57, 67, 51, 54, 52, 48, 51, 54, 48, 68, 24, 0, 0,
	0, 1, 2, 0, 0, 129, 0, 0, 0, 1, 0, 0, 0, 239, 19, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 1, 0, 0, 0, 1, 1, 0, 0, 47, 0, 0, 0, 0, 0, 0, 0, 1, 5, 0, 0, 9, 0, 0, 0, 1, 1, 0,
	0, 83, 121, 110, 99, 116, 104, 105, 110, 103, 0, 0, 0, 166, 0, 0, 0, 1, 2, 0, 0, 54,
	52, 99, 98, 55, 101, 97, 97, 57, 97, 49, 98, 98, 99, 99, 99, 52, 101, 49, 51, 57, 55,
	99, 57, 102, 50, 97, 52, 49, 49, 101, 98, 101, 53, 51, 57, 99, 100, 50, 57, 59, 48, 48,
	48, 48, 48, 48, 48, 48, 59, 48, 48, 48, 48, 48, 48, 48, 48, 59, 48, 48, 48, 48, 48, 48,
	48, 48, 48, 48, 48, 48, 48, 48, 50, 48, 59, 99, 111, 109, 46, 97, 112, 112, 108, 101,
	46, 97, 112, 112, 45, 115, 97, 110, 100, 98, 111, 120, 46, 114, 101, 97, 100, 45, 119,
	114, 105, 116, 101, 59, 48, 49, 59, 48, 49, 48, 48, 48, 48, 48, 52, 59, 48, 48, 48, 48,
	48, 48, 48, 48, 48, 48, 48, 97, 99, 54, 50, 97, 59, 47, 97, 112, 112, 108, 105, 99, 97,
	116, 105, 111, 110, 115, 47, 115, 121, 110, 99, 116, 104, 105, 110, 103, 46, 97, 112,
	112, 0, 0, 0, 180, 0, 0, 0, 254, 255, 255, 255, 1, 0, 0, 0, 0, 0, 0, 0, 14, 0, 0, 0, 4,
	16, 0, 0, 48, 0, 0, 0, 0, 0, 0, 0, 5, 16, 0, 0, 96, 0, 0, 0, 0, 0, 0, 0, 16, 16, 0, 0,
	128, 0, 0, 0, 0, 0, 0, 0, 64, 16, 0, 0, 112, 0, 0, 0, 0, 0, 0, 0, 2, 32, 0, 0, 48, 1,
	0, 0, 0, 0, 0, 0, 5, 32, 0, 0, 160, 0, 0, 0, 0, 0, 0, 0, 16, 32, 0, 0, 176, 0, 0, 0, 0,
	0, 0, 0, 17, 32, 0, 0, 228, 0, 0, 0, 0, 0, 0, 0, 18, 32, 0, 0, 196, 0, 0, 0, 0, 0, 0,
	0, 19, 32, 0, 0, 212, 0, 0, 0, 0, 0, 0, 0, 32, 32, 0, 0, 16, 1, 0, 0, 0, 0, 0, 0, 48,
	32, 0, 0, 60, 1, 0, 0, 0, 0, 0, 0, 23, 240, 0, 0, 68, 1, 0, 0, 0, 0, 0, 0, 128, 240, 0,
	0, 88, 1, 0, 0, 0, 0, 0, 0,
}

func TestIsBookmarkRecognizesMagicAndMinimumSize(t *testing.T) {
	require.True(t, IsBookmark(syncthingBookmarkFixture))
	require.False(t, IsBookmark([]byte("book")))
	require.False(t, IsBookmark([]byte("not a bookmark at all, just text")))
}

func TestParseBookmarkDecodesSyncthingFixture(t *testing.T) {
	bm, err := ParseBookmark(syncthingBookmarkFixture)
	require.NoError(t, err)

	require.Equal(t, "/Applications/Syncthing.app", bm.Path)
	require.Equal(t, []int64{103, 706090}, bm.CNIDPath)
	require.Equal(t, "Macintosh HD", bm.VolumeName)
	require.Equal(t, "0A81F3B1-51D9-3335-B3E3-169C3640360D", bm.VolumeUUID)
	require.Equal(t, "/", bm.VolumePath)
	require.Equal(t, "file:///", bm.VolumeURL)
	require.Equal(t, "Syncthing", bm.LocalizedName)
	require.True(t, bm.VolumeIsRoot)
	require.NotEmpty(t, bm.TargetCreationDate)
	require.NotEmpty(t, bm.VolumeCreationDate)
	require.NotZero(t, bm.VolumeSizeBytes)
	require.Contains(t, bm.SecurityExtensionRW, "com.apple.app-sandbox.read-write")
	require.Contains(t, bm.SecurityExtensionRW, "/applications/syncthing.app")
}

func TestParseBookmarkRejectsNonBookmarkData(t *testing.T) {
	_, err := ParseBookmark([]byte("definitely not a bookmark"))
	require.ErrorIs(t, err, ErrNotABookmark)
}
