package wmi

import (
	"encoding/binary"
	"testing"
)

func putStr(s string) []byte {
	units := make([]byte, 0, len(s)*2)
	for _, r := range s {
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(r))
		units = append(units, b...)
	}
	out := make([]byte, 4+len(units))
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(s)))
	copy(out[4:], units)
	return out
}

func TestSelectAuthoritativePicksHighestSeq2(t *testing.T) {
	m := []Mapping{{Seq2: 3}, {Seq2: 9}, {Seq2: 5}}
	best, ok := SelectAuthoritative(m)
	if !ok || best.Seq2 != 9 {
		t.Fatalf("got %+v", best)
	}
}

func TestHashNameIsUppercaseHex(t *testing.T) {
	h := HashName("root\\cimv2")
	if len(h) != 64 {
		t.Fatalf("got len %d, want 64 hex chars", len(h))
	}
	for _, c := range h {
		if !((c >= '0' && c <= '9') || (c >= 'A' && c <= 'F')) {
			t.Fatalf("non-uppercase-hex char %q in %q", c, h)
		}
	}
}

func TestDecodeClassDefinitionRoundTrip(t *testing.T) {
	var blob []byte
	blob = append(blob, putStr("MyClass")...)
	blob = append(blob, putStr("")...) // no superclass
	blob = append(blob, binary.LittleEndian.AppendUint32(nil, 0)...) // 0 qualifiers
	blob = append(blob, binary.LittleEndian.AppendUint32(nil, 1)...) // 1 property

	blob = append(blob, putStr("Name")...)
	prop := make([]byte, 8)
	binary.LittleEndian.PutUint32(prop[0:4], uint32(CIMTypeString))
	binary.LittleEndian.PutUint32(prop[4:8], 0) // offset
	blob = append(blob, prop...)
	blob = append(blob, binary.LittleEndian.AppendUint32(nil, 0)...) // 0 qualifiers on property

	cd, err := DecodeClassDefinition(blob)
	if err != nil {
		t.Fatalf("DecodeClassDefinition: %v", err)
	}
	if cd.Name != "MyClass" || len(cd.Properties) != 1 || cd.Properties[0].Name != "Name" {
		t.Fatalf("got %+v", cd)
	}
}

func TestResolvePropertiesDetectsCycle(t *testing.T) {
	a := ClassDefinition{Name: "A", SuperClassName: "B"}
	b := ClassDefinition{Name: "B", SuperClassName: "A"}
	byName := map[string]ClassDefinition{"A": a, "B": b}

	_, err := ResolveProperties(a, byName)
	if err != ErrInheritanceCycle {
		t.Fatalf("got %v, want ErrInheritanceCycle", err)
	}
}

func TestResolvePersistenceJoin(t *testing.T) {
	consumers := map[string]Instance{
		"Consumer.Name=\"c1\"": {ClassName: "CommandLineEventConsumer", Values: map[string]any{"Name": "c1"}},
	}
	filters := map[string]Instance{
		"Filter.Name=\"f1\"": {ClassName: "__EventFilter", Values: map[string]any{"Name": "f1", "Query": "SELECT * FROM X"}},
	}
	bindings := []Instance{
		{ClassName: "__FilterToConsumerBinding", Values: map[string]any{
			"Consumer": "Consumer.Name=\"c1\"",
			"Filter":   "Filter.Name=\"f1\"",
			"__SID":    "S-1-5-18",
		}},
	}

	out := ResolvePersistence(consumers, filters, bindings)
	if len(out) != 1 {
		t.Fatalf("got %d, want 1", len(out))
	}
	if out[0].ConsumerName != "c1" || out[0].FilterName != "f1" || out[0].SID != "S-1-5-18" {
		t.Fatalf("got %+v", out[0])
	}
}
