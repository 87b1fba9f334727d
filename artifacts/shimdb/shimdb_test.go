package shimdb

import (
	"encoding/binary"
	"testing"
)

func u16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func utf16(s string) []byte {
	var out []byte
	for _, r := range s {
		out = append(out, u16(uint16(r))...)
	}
	out = append(out, 0, 0)
	return out
}

func TestParseListWithStringRef(t *testing.T) {
	strTable := utf16("NOTEPAD.EXE")

	// TAG_STRINGTABLE (String type | 0x0801)
	strTag := append(u16(uint16(TagTypeString)|0x0801), u32(uint32(len(strTable)))...)
	strTag = append(strTag, strTable...)

	// A sibling StringRef pointing at offset 0 of the stringtable.
	refTag := append(u16(uint16(TagTypeStringRef)|0x01), u32(0)...)

	dwordTag := append(u16(uint16(TagTypeDword)|0x02), u32(42)...)

	body := append(append([]byte{}, strTag...), refTag...)
	body = append(body, dwordTag...)

	listBody := append(u16(uint16(TagTypeList)|0x01), u32(uint32(len(body)))...)
	listBody = append(listBody, body...)

	nodes, err := Parse(listBody)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(nodes) != 1 || nodes[0].Type != TagTypeList {
		t.Fatalf("got %+v", nodes)
	}
	children := nodes[0].Children
	if len(children) != 3 {
		t.Fatalf("got %d children, want 3", len(children))
	}
	if children[0].Type != TagTypeString {
		t.Fatalf("got %+v", children[0])
	}
	if children[1].Type != TagTypeStringRef || children[1].Text != "NOTEPAD.EXE" {
		t.Fatalf("got stringref %+v", children[1])
	}
	if children[2].Type != TagTypeDword || children[2].Dword != 42 {
		t.Fatalf("got dword %+v", children[2])
	}
}

func TestParseUnknownTagBreaksAndBase64Encodes(t *testing.T) {
	raw := append(u16(0x0FFF), []byte{0x01, 0x02, 0x03}...)
	nodes, err := parseTags(raw, nil)
	if err != nil {
		t.Fatalf("parseTags: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(nodes))
	}
	if nodes[0].Text == "" {
		t.Fatalf("expected base64 payload, got empty text")
	}
}
