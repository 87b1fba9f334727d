package ese

import (
	"encoding/binary"
	"testing"
)

func TestDecodeRowFixedAndVariable(t *testing.T) {
	columns := []ColumnDef{
		{Name: "DocumentID", ColumnID: 1, Type: ColTypeLong, Fixed: true},
		{Name: "FileName", ColumnID: 2, Type: ColTypeText, Fixed: false},
	}

	var buf []byte
	lastFixed := make([]byte, 2)
	binary.LittleEndian.PutUint16(lastFixed, 1)
	buf = append(buf, lastFixed...)

	fixedVal := make([]byte, 4)
	binary.LittleEndian.PutUint32(fixedVal, 42)
	buf = append(buf, fixedVal...)

	lastVariable := make([]byte, 2)
	binary.LittleEndian.PutUint16(lastVariable, 1)
	buf = append(buf, lastVariable...)

	varData := []byte("report.docx")
	offsetEntry := make([]byte, 2)
	binary.LittleEndian.PutUint16(offsetEntry, uint16(len(varData)))
	buf = append(buf, offsetEntry...)
	buf = append(buf, varData...)

	row, err := DecodeRow(buf, columns)
	if err != nil {
		t.Fatalf("DecodeRow: %v", err)
	}
	gotID := binary.LittleEndian.Uint32(row["DocumentID"])
	if gotID != 42 {
		t.Fatalf("DocumentID = %d, want 42", gotID)
	}
	if string(row["FileName"]) != "report.docx" {
		t.Fatalf("FileName = %q, want %q", row["FileName"], "report.docx")
	}
}

func TestDecodeRowSkipsNullVariableColumn(t *testing.T) {
	columns := []ColumnDef{
		{Name: "Flag", ColumnID: 1, Type: ColTypeBit, Fixed: true},
		{Name: "Maybe", ColumnID: 2, Type: ColTypeText, Fixed: false},
	}

	var buf []byte
	lastFixed := make([]byte, 2)
	binary.LittleEndian.PutUint16(lastFixed, 1)
	buf = append(buf, lastFixed...)
	buf = append(buf, 0x01) // 1-byte bit column

	lastVariable := make([]byte, 2)
	binary.LittleEndian.PutUint16(lastVariable, 1)
	buf = append(buf, lastVariable...)

	nullEntry := make([]byte, 2)
	binary.LittleEndian.PutUint16(nullEntry, 0x8000) // null flag set, no data
	buf = append(buf, nullEntry...)

	row, err := DecodeRow(buf, columns)
	if err != nil {
		t.Fatalf("DecodeRow: %v", err)
	}
	if _, ok := row["Maybe"]; ok {
		t.Fatal("expected null variable column to be absent from row")
	}
	if row["Flag"][0] != 0x01 {
		t.Fatalf("Flag = %v, want [1]", row["Flag"])
	}
}
