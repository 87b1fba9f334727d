package ese

import "io"

// DefaultChunkPages is the default number of pages buffered at a time
// while streaming a table.
const DefaultChunkPages = 30

// Source provides random-access reads over the underlying ESE file.
type Source interface {
	ReadAt(offset int64, length int) ([]byte, error)
}

// Cursor is a pull iterator over a table's rows: it owns only the current
// chunk of decoded pages and a page cursor, yielding one chunk of rows per
// Next call (Design Notes: "express as a pull iterator ... owning no state
// except the current chunk and a page cursor").
type Cursor struct {
	src        Source
	pageSize   int
	chunkPages int
	nextPage   uint32
	columns    []ColumnDef
	done       bool
}

// NewCursor starts streaming table from its root page.
func NewCursor(src Source, pageSize int, rootPage uint32, columns []ColumnDef, chunkPages int) *Cursor {
	if chunkPages <= 0 {
		chunkPages = DefaultChunkPages
	}
	return &Cursor{src: src, pageSize: pageSize, chunkPages: chunkPages, nextPage: rootPage, columns: columns}
}

// pageAt fetches and parses page number n.
func (c *Cursor) pageAt(n uint32) (*Page, error) {
	if n == 0 {
		return nil, io.EOF
	}
	raw, err := c.src.ReadAt(int64(n)*int64(c.pageSize), c.pageSize)
	if err != nil {
		return nil, err
	}
	return ParsePage(raw, c.pageSize)
}

// Next returns the rows decoded from up to chunkPages leaf pages, advancing
// the internal page cursor. Returns (nil, io.EOF) once the table's leaf
// chain is exhausted — the consumer decides when to stop calling Next,
// per the cursor state machine.
func (c *Cursor) Next() ([]Row, error) {
	if c.done {
		return nil, io.EOF
	}

	var rows []Row
	for i := 0; i < c.chunkPages; i++ {
		if c.nextPage == 0 {
			c.done = true
			break
		}
		page, err := c.pageAt(c.nextPage)
		if err != nil {
			c.done = true
			break
		}
		if page.IsLeaf() {
			for j := range page.Tags {
				data, err := page.TagData(j)
				if err != nil {
					continue
				}
				row, err := DecodeRow(data, c.columns)
				if err != nil {
					continue
				}
				rows = append(rows, row)
			}
		}
		c.nextPage = page.NextPage
	}

	if len(rows) == 0 && c.done {
		return nil, io.EOF
	}
	return rows, nil
}
