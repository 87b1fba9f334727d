package loginitems

import (
	"strings"

	"howett.net/plist"
)

// loginItemsMarker is the path fragment every macOS Login Items plist
// embeds as a plain string alongside its bookmark records (most visibly in
// older per-user sandboxed login item plists that carry a path instead of a
// bookmark).
const loginItemsMarker = "Contents/Library/LoginItems"

// Item is one decoded login item: either a fully resolved bookmark, or, for
// the older plain-path form, just the path string itself.
type Item struct {
	Path    string
	Source  string
	Bookmark
}

// Collect parses a Login Items binary plist (the
// com.apple.loginitems.plist / BackgroundItems-v* store) and returns one
// Item per embedded bookmark or bare LoginItems path it finds walking the
// archive's $objects array.
func Collect(data []byte) ([]Item, error) {
	var root interface{}
	if _, err := plist.Unmarshal(data, &root); err != nil {
		return nil, err
	}

	return ItemsFromObjects(objectsArray(root)), nil
}

// ItemsFromObjects walks an already-decoded "$objects" array and returns one
// Item per embedded bookmark or bare LoginItems path. Split out from Collect
// so the walk itself can be exercised directly against synthetic decoded
// values, without round-tripping through the binary plist codec.
func ItemsFromObjects(objects []interface{}) []Item {
	items := make([]Item, 0, len(objects))
	for _, obj := range objects {
		if item, ok := itemFromValue(obj); ok {
			items = append(items, item)
		}
	}
	return items
}

// objectsArray returns the archive's top-level "$objects" array, the
// NSKeyedArchiver convention the real plist.rs port walks: every archived
// object, keyed or not, ends up flattened into this one array.
func objectsArray(root interface{}) []interface{} {
	dict, ok := root.(map[string]interface{})
	if !ok {
		return nil
	}
	objects, _ := dict["$objects"].([]interface{})
	return objects
}

// itemFromValue inspects one $objects entry: a Data value is a bookmark
// candidate, a Dictionary is searched one level deep for a nested bookmark
// (BackgroundItems-v* stores wrap the bookmark under a "Bookmark" key), and a
// String is only interesting if it names a LoginItems path directly.
func itemFromValue(v interface{}) (Item, bool) {
	switch val := v.(type) {
	case []byte:
		if !IsBookmark(val) {
			return Item{}, false
		}
		bm, err := ParseBookmark(val)
		if err != nil {
			return Item{}, false
		}
		return Item{Path: bm.Path, Bookmark: bm}, true

	case map[string]interface{}:
		for _, nested := range val {
			if data, ok := nested.([]byte); ok && IsBookmark(data) {
				bm, err := ParseBookmark(data)
				if err != nil {
					continue
				}
				return Item{Path: bm.Path, Bookmark: bm}, true
			}
		}
		return Item{}, false

	case string:
		if strings.Contains(val, loginItemsMarker) {
			return Item{Source: val}, true
		}
		return Item{}, false

	default:
		return Item{}, false
	}
}
