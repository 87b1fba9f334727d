package loginitems

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestItemsFromObjectsDecodesBareBookmarkData(t *testing.T) {
	items := ItemsFromObjects([]interface{}{
		"$null",
		syncthingBookmarkFixture,
		map[string]interface{}{"$class": "NSDictionary"},
	})

	require.Len(t, items, 1)
	require.Equal(t, "/Applications/Syncthing.app", items[0].Path)
	require.Equal(t, "Macintosh HD", items[0].VolumeName)
}

func TestItemsFromObjectsDecodesBookmarkNestedInDictionary(t *testing.T) {
	items := ItemsFromObjects([]interface{}{
		map[string]interface{}{
			"Bookmark": syncthingBookmarkFixture,
			"Order":    int64(0),
		},
	})

	require.Len(t, items, 1)
	require.Equal(t, "/Applications/Syncthing.app", items[0].Path)
}

func TestItemsFromObjectsDecodesBareLoginItemsPathString(t *testing.T) {
	items := ItemsFromObjects([]interface{}{
		"/Users/test/Library/Application Support/com.app/Contents/Library/LoginItems/helper.app",
		"some unrelated string",
	})

	require.Len(t, items, 1)
	require.Equal(t, "/Users/test/Library/Application Support/com.app/Contents/Library/LoginItems/helper.app", items[0].Source)
}

func TestItemsFromObjectsSkipsUnrecognizedValues(t *testing.T) {
	items := ItemsFromObjects([]interface{}{int64(1), true, nil, []interface{}{"nested"}})
	require.Empty(t, items)
}
