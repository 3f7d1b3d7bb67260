// Package content classifies raw input (JSON, HTML, plain text) and
// decomposes it into a reusable template plus an ordered list of pure-text
// segments for translation.
package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind discriminates the variants of a JSON value tree.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is a tagged JSON value tree. Object member order is preserved so a
// rebuilt document keeps the source's key ordering.
type Value struct {
	Kind    Kind
	Bool    bool
	Number  json.Number
	Str     string
	Array   []*Value
	Members []Member
}

// Member is one ordered key/value pair of a JSON object.
type Member struct {
	Key   string
	Value *Value
}

// ParseValue decodes a JSON document into a Value tree, preserving object
// member order and number formatting.
func ParseValue(raw []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}

	// Trailing garbage after the document is a parse failure.
	if dec.More() {
		return nil, fmt.Errorf("unexpected trailing content after JSON document")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return valueFromToken(dec, tok)
}

func valueFromToken(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch t := tok.(type) {
	case nil:
		return &Value{Kind: KindNull}, nil
	case bool:
		return &Value{Kind: KindBool, Bool: t}, nil
	case json.Number:
		return &Value{Kind: KindNumber, Number: t}, nil
	case string:
		return &Value{Kind: KindString, Str: t}, nil
	case json.Delim:
		switch t {
		case '{':
			obj := &Value{Kind: KindObject}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Members = append(obj.Members, Member{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return obj, nil
		case '[':
			arr := &Value{Kind: KindArray}
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr.Array = append(arr.Array, val)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return arr, nil
		}
	}
	return nil, fmt.Errorf("unexpected JSON token %v", tok)
}

// Interface converts the tree back to standard Go types for consumers that
// expect encoding/json shapes (e.g. schema validation).
func (v *Value) Interface() interface{} {
	switch v.Kind {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool
	case KindNumber:
		f, err := v.Number.Float64()
		if err != nil {
			return v.Number.String()
		}
		return f
	case KindString:
		return v.Str
	case KindArray:
		out := make([]interface{}, len(v.Array))
		for i, elem := range v.Array {
			out[i] = elem.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]interface{}, len(v.Members))
		for _, m := range v.Members {
			out[m.Key] = m.Value.Interface()
		}
		return out
	}
	return nil
}

// Clone makes a deep copy of the tree.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	out := &Value{Kind: v.Kind, Bool: v.Bool, Number: v.Number, Str: v.Str}
	if v.Array != nil {
		out.Array = make([]*Value, len(v.Array))
		for i, elem := range v.Array {
			out.Array[i] = elem.Clone()
		}
	}
	if v.Members != nil {
		out.Members = make([]Member, len(v.Members))
		for i, m := range v.Members {
			out.Members[i] = Member{Key: m.Key, Value: m.Value.Clone()}
		}
	}
	return out
}

// MarshalJSON encodes the tree, preserving object member order.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) encode(buf *bytes.Buffer) error {
	switch v.Kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.Bool))
	case KindNumber:
		buf.WriteString(v.Number.String())
	case KindString:
		encoded, err := json.Marshal(v.Str)
		if err != nil {
			return err
		}
		buf.Write(encoded)
	case KindArray:
		buf.WriteByte('[')
		for i, elem := range v.Array {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := elem.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, m := range v.Members {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// Lookup walks the tree along a dot-joined path and returns the value at
// that position, if any.
func (v *Value) Lookup(path string) (*Value, bool) {
	if path == "" {
		return v, true
	}
	current := v
	start := 0
	for i := 0; i <= len(path); i++ {
		if i < len(path) && path[i] != '.' {
			continue
		}
		seg := path[start:i]
		start = i + 1

		switch current.Kind {
		case KindObject:
			found := false
			for _, m := range current.Members {
				if m.Key == seg {
					current = m.Value
					found = true
					break
				}
			}
			if !found {
				return nil, false
			}
		case KindArray:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(current.Array) {
				return nil, false
			}
			current = current.Array[idx]
		default:
			return nil, false
		}
	}
	return current, true
}
