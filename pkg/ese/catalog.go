package ese

import "encoding/binary"

// Column data types, per JET_COLTYP (the subset the artifact parsers
// actually encounter).
type ColumnType uint32

const (
	ColTypeBit       ColumnType = 1
	ColTypeUnsignedByte ColumnType = 2
	ColTypeShort     ColumnType = 3
	ColTypeLong      ColumnType = 4
	ColTypeCurrency  ColumnType = 5
	ColTypeIEEESingle ColumnType = 6
	ColTypeIEEEDouble ColumnType = 7
	ColTypeDateTime  ColumnType = 8
	ColTypeBinary    ColumnType = 9
	ColTypeText      ColumnType = 10
	ColTypeLongBinary ColumnType = 11
	ColTypeLongText  ColumnType = 12
	ColTypeSLV       ColumnType = 13
	ColTypeUnsignedLong ColumnType = 14
	ColTypeLongLong  ColumnType = 15
	ColTypeGUID      ColumnType = 16
	ColTypeUnsignedShort ColumnType = 17
)

// ColumnDef describes one column of a table, as recorded in the catalog.
type ColumnDef struct {
	Name     string
	ColumnID uint32
	Type     ColumnType
	Fixed    bool
	Tagged   bool
}

// TableDef describes one catalog-resolved table: its root page and column
// list in on-disk declaration order.
type TableDef struct {
	Name     string
	RootPage uint32
	Columns  []ColumnDef
}

// Catalog object types (MSysObjects.Type).
const (
	catalogTypeTable  = 1
	catalogTypeColumn = 2
	catalogTypeIndex  = 3
)

// catalogRecord mirrors the fixed leading columns every MSysObjects row
// carries, decoded positionally since the catalog's own schema is fixed
// across ESE versions.
type catalogRecord struct {
	objtypeOrParent uint16
	id              uint32
	coltypeOrPage   uint32
	name            string
}

// ParseCatalog walks the leaf pages reachable from rootPage (the
// catalog's own root, conventionally a fixed low page number but passed in
// explicitly since it is not guaranteed constant across database versions)
// and returns one TableDef per table record, carrying its root page. Table
// names are not decoded, so Name is empty, and column records are not
// attached to their tables, so Columns is empty.
//
// pageAt fetches and parses the page for a given page number; callers
// supply it bound to their own page-chunked page source (see Cursor) so
// ParseCatalog never buffers the whole database.
func ParseCatalog(rootPage uint32, pageSize int, pageAt func(uint32) (*Page, error)) ([]TableDef, error) {
	var tables []TableDef
	byName := map[string]*TableDef{}

	err := walkLeafPages(rootPage, pageAt, func(tagData []byte) error {
		rec, ok := decodeCatalogRecord(tagData)
		if !ok {
			return nil
		}
		switch rec.objtypeOrParent {
		case catalogTypeTable:
			t := TableDef{Name: rec.name, RootPage: rec.coltypeOrPage}
			tables = append(tables, t)
			byName[rec.name] = &tables[len(tables)-1]
		case catalogTypeColumn:
			// Column records in real MSysObjects carry the owning
			// table's ObjidTable, not its name; they are skipped here.
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tables, nil
}

// decodeCatalogRecord extracts three positional fields (object type, id,
// and column type or root page) from a raw catalog row; the object name is
// not read. The full MSysObjects schema has
// many more fixed/tagged columns (Flags, LCMapFlags, KeyMost, ...) that no
// consumer in this repository reads.
func decodeCatalogRecord(tagData []byte) (catalogRecord, bool) {
	if len(tagData) < 12 {
		return catalogRecord{}, false
	}
	return catalogRecord{
		objtypeOrParent: binary.LittleEndian.Uint16(tagData[0:2]),
		id:              binary.LittleEndian.Uint32(tagData[4:8]),
		coltypeOrPage:   binary.LittleEndian.Uint32(tagData[8:12]),
	}, true
}

// walkLeafPages visits every tag of each leaf page among root and the
// pages on root's next-page chain. Child pages of a branch page are not
// descended into, so only the level root sits on is walked. The walk
// relies on ESE B-trees having no back-edges along next-page links within
// one level.
func walkLeafPages(root uint32, pageAt func(uint32) (*Page, error), visit func([]byte) error) error {
	page, err := pageAt(root)
	if err != nil {
		return err
	}
	for page != nil {
		if page.IsLeaf() {
			for i := range page.Tags {
				data, err := page.TagData(i)
				if err != nil {
					continue
				}
				if err := visit(data); err != nil {
					return err
				}
			}
		}
		if page.NextPage == 0 {
			break
		}
		page, err = pageAt(page.NextPage)
		if err != nil {
			return err
		}
	}
	return nil
}
