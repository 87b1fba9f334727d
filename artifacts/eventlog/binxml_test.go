package eventlog

import (
	"encoding/binary"
	"testing"
	"unicode/utf16"
)

func encodeName(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 4+2+len(units)*2+2)
	binary.LittleEndian.PutUint16(out[4:6], uint16(len(units)))
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[6+i*2:8+i*2], u)
	}
	return out
}

func openStart(name string) []byte {
	out := []byte{tokenOpenStartElement, 0, 0, 0, 0, 0, 0}
	return append(out, encodeName(name)...)
}

func valueText(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := []byte{tokenValueText, valTypeString}
	lenBuf := make([]byte, 2)
	binary.LittleEndian.PutUint16(lenBuf, uint16(len(units)*2))
	out = append(out, lenBuf...)
	for _, u := range units {
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, u)
		out = append(out, b...)
	}
	return out
}

func buildFixtureXML(t *testing.T) []byte {
	t.Helper()
	var b []byte
	b = append(b, openStart("Event")...)
	b = append(b, tokenCloseStartElement)
	b = append(b, openStart("Data")...)
	b = append(b, tokenCloseStartElement)
	b = append(b, valueText("hello")...)
	b = append(b, tokenEndElement) // close Data
	b = append(b, tokenEndElement) // close Event
	return b
}

func TestDecodeBinaryXMLNestedElement(t *testing.T) {
	raw := buildFixtureXML(t)
	root, err := DecodeBinaryXML(raw)
	if err != nil {
		t.Fatalf("DecodeBinaryXML: %v", err)
	}
	if root.Name != "Event" {
		t.Fatalf("got root name %q", root.Name)
	}
	data := root.Find("Data")
	if data == nil || data.Text != "hello" {
		t.Fatalf("got %+v", data)
	}
}

func TestDecodeBinaryXMLSkipsFragmentHeader(t *testing.T) {
	raw := append([]byte{tokenFragmentHeader, 1, 1, 0}, buildFixtureXML(t)...)
	root, err := DecodeBinaryXML(raw)
	if err != nil {
		t.Fatalf("DecodeBinaryXML: %v", err)
	}
	if root.Name != "Event" {
		t.Fatalf("got %q", root.Name)
	}
}
