// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind tags a Value variant.
type Kind int

const (
	KindNull Kind = iota
	KindText
	KindNumber
	KindList
	KindRecord
)

// Value is the tagged variant for schema field values. Model output mixes
// strings, numbers, lists, and nested records for the same field across
// runs; parsing into Value once at the extraction boundary keeps the rest
// of the pipeline monomorphic.
type Value struct {
	Kind   Kind
	Text   string
	Number float64
	List   []Value
	Record map[string]Value
}

// Null, Text, Number, List, and RecordOf construct Values.
func Null() Value { return Value{Kind: KindNull} }
func Text(s string) Value { return Value{Kind: KindText, Text: s} }
func Number(n float64) Value { return Value{Kind: KindNumber, Number: n} }
func List(vs ...Value) Value { return Value{Kind: KindList, List: vs} }
func RecordOf(m map[string]Value) Value { return Value{Kind: KindRecord, Record: m} }

// placeholders are model outputs that mean "not found" and count as absent.
var placeholders = map[string]bool{
	"unknown": true, "n/a": true, "not available": true, "none": true, "null": true,
}

// Present reports whether the value counts as populated for scoring:
// non-empty text that is not a placeholder, a non-zero number, or a
// non-empty list or record.
func (v Value) Present() bool {
	switch v.Kind {
	case KindText:
		s := strings.TrimSpace(v.Text)
		return s != "" && !placeholders[strings.ToLower(s)]
	case KindNumber:
		return v.Number != 0
	case KindList:
		return len(v.List) > 0
	case KindRecord:
		return len(v.Record) > 0
	}
	return false
}

// FromJSON converts a decoded JSON value (as produced by encoding/json into
// any) into a Value.
func FromJSON(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case string:
		return Text(x), nil
	case float64:
		return Number(x), nil
	case bool:
		if x {
			return Text("true"), nil
		}
		return Text("false"), nil
	case []any:
		list := make([]Value, 0, len(x))
		for _, item := range x {
			v, err := FromJSON(item)
			if err != nil {
				return Null(), err
			}
			list = append(list, v)
		}
		return Value{Kind: KindList, List: list}, nil
	case map[string]any:
		rec := make(map[string]Value, len(x))
		for k, item := range x {
			v, err := FromJSON(item)
			if err != nil {
				return Null(), err
			}
			rec[k] = v
		}
		return RecordOf(rec), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Text(x.String()), nil
		}
		return Number(f), nil
	}
	return Null(), fmt.Errorf("unsupported JSON value %T", raw)
}

// ToJSON converts the Value back into a plain JSON-encodable value.
func (v Value) ToJSON() any {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return v.Number
	case KindList:
		out := make([]any, len(v.List))
		for i, item := range v.List {
			out[i] = item.ToJSON()
		}
		return out
	case KindRecord:
		out := make(map[string]any, len(v.Record))
		for k, item := range v.Record {
			out[k] = item.ToJSON()
		}
		return out
	}
	return nil
}

// Record is an extracted institution record: schema field name to Value.
// Absent fields are omitted, never stored as null.
type Record map[string]Value

// ParseRecord converts decoded model JSON into a Record, dropping keys
// outside the schema and values that are absent placeholders. The dropped
// key names are returned so the caller can log them.
func ParseRecord(raw map[string]any) (Record, []string, error) {
	rec := make(Record)
	var dropped []string

	for key, rawVal := range raw {
		if _, ok := Lookup(key); !ok {
			dropped = append(dropped, key)
			continue
		}
		v, err := FromJSON(rawVal)
		if err != nil {
			return nil, nil, fmt.Errorf("field %s: %w", key, err)
		}
		if !v.Present() {
			continue
		}
		rec[key] = v
	}
	return rec, dropped, nil
}

// ToJSONMap converts the record to a plain map for the result payload.
func (r Record) ToJSONMap() map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[k] = v.ToJSON()
	}
	return out
}
