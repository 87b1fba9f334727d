// Package search decodes the Windows Search ESE database (Windows.edb):
// the SystemIndex_Gthr table (one row per indexed document) joined against
// SystemIndex_PropertyStore (one row per WorkID-keyed property), streamed
// chunk-by-chunk so memory stays bounded on multi-million-row stores (spec
// 4.8, Windows Search entry).
package search

import (
	"encoding/base64"
	"encoding/binary"

	"github.com/puffyCid/artemis-sub004/pkg/enc"
	"github.com/puffyCid/artemis-sub004/pkg/ese"
)

// Document is one indexed file with every property resolved from
// PropertyStore attached under its "<propertyID>-<name>" key, matching the
// spec's concrete scenario key shape ("4365-System_DateImported").
type Document struct {
	DocumentID   uint32
	LastModified string
	FileName     string
	Properties   map[string]string
}

// StreamChunk decodes one chunk of Gthr rows (as yielded by an
// ese.Cursor.Next call over the Gthr table) together with every
// PropertyStore row whose WorkID falls in that chunk's DocumentID set -
// the bounded-join shape this streaming join calls for: "stream Gthr in chunks; for
// each chunk, collect the DocIDs and then stream PropertyStore filtering to
// those WorkIDs."
func StreamChunk(gthrRows []ese.Row, allPropertyRows []ese.Row) []Document {
	wanted := make(map[uint32]*Document, len(gthrRows))
	var out []Document

	for _, r := range gthrRows {
		docID := r.Uint32("DocumentID")
		doc := Document{
			DocumentID:   docID,
			LastModified: decodeLastModified(r.Bytes("LastModified")),
			FileName:     r.Text("FileName"),
			Properties:   map[string]string{},
		}
		out = append(out, doc)
		wanted[docID] = &out[len(out)-1]
	}

	for _, pr := range allPropertyRows {
		workID := pr.Uint32("WorkID")
		doc, ok := wanted[workID]
		if !ok {
			continue
		}
		key := propertyKey(pr)
		doc.Properties[key] = propertyValue(pr)
	}

	return out
}

// decodeLastModified decodes the Gthr table's LastModified column, stored
// as a big-endian FILETIME that has then been base64-encoded as text (spec
// 4.8: "(DocumentID, LastModified FILETIME stored big-endian base64,
// FileName)").
func decodeLastModified(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	decoded, err := base64.StdEncoding.DecodeString(string(raw))
	if err != nil || len(decoded) < 8 {
		return ""
	}
	ft := binary.BigEndian.Uint64(decoded)
	return enc.FILETIMEToISO8601(ft)
}

// propertyKey renders a PropertyStore row's key as "<PropertyID>-<Name>".
func propertyKey(r ese.Row) string {
	id := r.Text("PropertyId")
	if id == "" {
		id = itoa(r.Uint32("PropertyId"))
	}
	name := r.Text("Name")
	if name == "" {
		return id
	}
	return id + "-" + name
}

func propertyValue(r ese.Row) string {
	if v := r.Text("Value"); v != "" {
		return v
	}
	return string(r.Bytes("Value"))
}

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
