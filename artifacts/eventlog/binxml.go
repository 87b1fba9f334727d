package eventlog

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/puffyCid/artemis-sub004/pkg/enc"
)

// ErrTruncatedXML is returned when a binary-XML token's declared length
// runs past the end of the buffer.
var ErrTruncatedXML = errors.New("eventlog: truncated binary xml")

// Binary-XML token identifiers (MS-EVEN6 2.19). The high nibble's 0x40
// bit on open/close tokens marks "more data follows"; it is masked off
// before dispatch.
const (
	tokenEOF               = 0x00
	tokenOpenStartElement  = 0x01
	tokenCloseStartElement = 0x02
	tokenCloseEmptyElement = 0x03
	tokenEndElement        = 0x04
	tokenValueText         = 0x05
	tokenAttribute         = 0x06
	tokenCDATA             = 0x07
	tokenTemplateInstance  = 0x0c
	tokenNormalSubst       = 0x0d
	tokenOptionalSubst     = 0x0e
	tokenFragmentHeader    = 0x0f
)

// valueType tags the payload of a value/substitution token (MS-EVEN6
// 2.19, a small subset covering what event bodies actually carry).
const (
	valTypeString  = 0x01
	valTypeAnsi    = 0x02
	valTypeInt8    = 0x04
	valTypeUint8   = 0x06
	valTypeInt16   = 0x08
	valTypeUint16  = 0x0a
	valTypeInt32   = 0x0c
	valTypeUint32  = 0x0e
	valTypeInt64   = 0x10
	valTypeUint64  = 0x12
	valTypeBinary  = 0x14
	valTypeGUID    = 0x15
	valTypeFileTime = 0x17
	valTypeSID     = 0x19
	valTypeBXML    = 0x21
)

// Element is one decoded binary-XML element: its tag name, attribute
// map, child elements in document order, and any direct text content.
type Element struct {
	Name     string
	Attrs    map[string]string
	Children []*Element
	Text     string
}

// Find returns the first descendant (or self) element named name,
// depth-first.
func (e *Element) Find(name string) *Element {
	if e == nil {
		return nil
	}
	if e.Name == name {
		return e
	}
	for _, c := range e.Children {
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant (or self) element named name, in
// document order.
func (e *Element) FindAll(name string) []*Element {
	var out []*Element
	var walk func(*Element)
	walk = func(n *Element) {
		if n == nil {
			return
		}
		if n.Name == name {
			out = append(out, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(e)
	return out
}

// binxmlReader decodes a single fragment's token stream. The decoder
// resolves literal OpenStartElement/Attribute/Value/EndElement tokens
// directly; a substitution token (normal or optional) is rendered as
// its index so a caller wiring in the event's substitution/EventData
// array can fill it in afterward - this decoder does not itself chase
// the template-definition cache a multi-record file would normally
// share across events.
type binxmlReader struct {
	b   []byte
	pos int
}

// DecodeBinaryXML decodes one binary-XML fragment (an EVTX record body,
// or a WEVT_TEMPLATE's template bytes) into its root element.
func DecodeBinaryXML(b []byte) (*Element, error) {
	r := &binxmlReader{b: b}
	if r.pos < len(r.b) && r.b[r.pos] == tokenFragmentHeader {
		r.pos += 4 // token, major, minor, flags
	}
	root, err := r.readElement()
	if err != nil {
		return nil, err
	}
	return root, nil
}

func (r *binxmlReader) readByte() (byte, error) {
	if r.pos >= len(r.b) {
		return 0, ErrTruncatedXML
	}
	v := r.b[r.pos]
	r.pos++
	return v, nil
}

func (r *binxmlReader) readUint16() (uint16, error) {
	if r.pos+2 > len(r.b) {
		return 0, ErrTruncatedXML
	}
	v := binary.LittleEndian.Uint16(r.b[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *binxmlReader) readUint32() (uint32, error) {
	if r.pos+4 > len(r.b) {
		return 0, ErrTruncatedXML
	}
	v := binary.LittleEndian.Uint32(r.b[r.pos:])
	r.pos += 4
	return v, nil
}

// readName decodes an inline element/attribute name: a 4-byte unused
// hash, a uint16 char count, then that many UTF-16LE code units plus a
// terminating NUL.
func (r *binxmlReader) readName() (string, error) {
	if r.pos+6 > len(r.b) {
		return "", ErrTruncatedXML
	}
	r.pos += 4 // name hash, not needed offline
	count, err := r.readUint16()
	if err != nil {
		return "", err
	}
	byteLen := int(count+1) * 2
	if r.pos+byteLen > len(r.b) {
		return "", ErrTruncatedXML
	}
	name := enc.UTF16LEFixed(r.b[r.pos:r.pos+byteLen], int(count))
	r.pos += byteLen
	return name, nil
}

// readElement decodes one element starting at an OpenStartElement token,
// consuming its attributes, children, and matching EndElement.
func (r *binxmlReader) readElement() (*Element, error) {
	tok, err := r.readByte()
	if err != nil {
		return nil, err
	}
	if tok&0x0f != tokenOpenStartElement {
		return nil, fmt.Errorf("eventlog: expected OpenStartElement, got 0x%02x", tok)
	}
	if _, err := r.readUint16(); err != nil { // unused dependency id
		return nil, err
	}
	if _, err := r.readUint32(); err != nil { // element data size
		return nil, err
	}
	name, err := r.readName()
	if err != nil {
		return nil, err
	}
	el := &Element{Name: name, Attrs: map[string]string{}}

	for {
		tok, err = r.readByte()
		if err != nil {
			return el, err
		}
		switch tok & 0x0f {
		case tokenAttribute:
			attrName, err := r.readName()
			if err != nil {
				return el, err
			}
			val, err := r.readValueToken()
			if err != nil {
				return el, err
			}
			el.Attrs[attrName] = val
		case tokenCloseStartElement:
			goto children
		case tokenCloseEmptyElement:
			return el, nil
		default:
			return el, fmt.Errorf("eventlog: unexpected token 0x%02x in start tag", tok)
		}
	}

children:
	for {
		if r.pos >= len(r.b) {
			return el, nil
		}
		peek := r.b[r.pos]
		switch peek & 0x0f {
		case tokenEndElement:
			r.pos++
			return el, nil
		case tokenOpenStartElement:
			child, err := r.readElement()
			if child != nil {
				el.Children = append(el.Children, child)
			}
			if err != nil {
				return el, err
			}
		case tokenValueText, tokenCDATA:
			r.pos++
			text, err := r.readValueBody(peek & 0x0f)
			if err != nil {
				return el, err
			}
			el.Text += text
		case tokenNormalSubst, tokenOptionalSubst:
			r.pos++
			text, err := r.readSubstitution()
			if err != nil {
				return el, err
			}
			el.Text += text
		case tokenEOF:
			return el, nil
		default:
			return el, fmt.Errorf("eventlog: unexpected token 0x%02x in element body", peek)
		}
	}
}

// readValueToken decodes a value that is itself prefixed by its own
// token byte (used for attribute values).
func (r *binxmlReader) readValueToken() (string, error) {
	tok, err := r.readByte()
	if err != nil {
		return "", err
	}
	switch tok & 0x0f {
	case tokenValueText, tokenCDATA:
		return r.readValueBody(tok & 0x0f)
	case tokenNormalSubst, tokenOptionalSubst:
		return r.readSubstitution()
	default:
		return "", fmt.Errorf("eventlog: unexpected value token 0x%02x", tok)
	}
}

func (r *binxmlReader) readValueBody(kind byte) (string, error) {
	valType, err := r.readByte()
	if err != nil {
		return "", err
	}
	count, err := r.readUint16()
	if err != nil {
		return "", err
	}
	if r.pos+int(count) > len(r.b) {
		return "", ErrTruncatedXML
	}
	raw := r.b[r.pos : r.pos+int(count)]
	r.pos += int(count)
	_ = kind
	return decodeValue(valType, raw), nil
}

// readSubstitution decodes a substitution token's (index, type) pair
// into a placeholder "%N" marker (N is the zero-based index plus one);
// this package does not fill these in from the record's substitution
// array.
func (r *binxmlReader) readSubstitution() (string, error) {
	idx, err := r.readUint16()
	if err != nil {
		return "", err
	}
	if _, err := r.readByte(); err != nil { // value type of the substitution slot
		return "", err
	}
	return fmt.Sprintf("%%%d", idx+1), nil
}

// decodeValue renders a value token's raw bytes per its declared type.
// Unrecognized types, and recognized ones whose payload is too short, are
// decoded as UTF-16LE text rather than dropped.
func decodeValue(valType byte, raw []byte) string {
	switch valType {
	case valTypeString:
		return enc.UTF16LE(raw)
	case valTypeAnsi:
		return enc.UTF8NullTerminated(raw)
	case valTypeUint8:
		if len(raw) >= 1 {
			return fmt.Sprintf("%d", raw[0])
		}
	case valTypeUint16:
		if len(raw) >= 2 {
			return fmt.Sprintf("%d", binary.LittleEndian.Uint16(raw))
		}
	case valTypeUint32:
		if len(raw) >= 4 {
			return fmt.Sprintf("%d", binary.LittleEndian.Uint32(raw))
		}
	case valTypeUint64:
		if len(raw) >= 8 {
			return fmt.Sprintf("%d", binary.LittleEndian.Uint64(raw))
		}
	case valTypeFileTime:
		if len(raw) >= 8 {
			return enc.FILETIMEToISO8601(binary.LittleEndian.Uint64(raw))
		}
	case valTypeGUID:
		if len(raw) >= 16 {
			return enc.GUIDLittleEndian(raw)
		}
	case valTypeBinary:
		return enc.Base64Encode(raw)
	}
	return enc.UTF16LE(raw)
}
