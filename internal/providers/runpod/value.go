package runpod

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueBool
	ValueNumber
	ValueString
	ValueObject
	ValueList
)

// Value is a decoded JSON document whose shape is only known at runtime.
// Objects keep their keys in document order so renderings are stable.
type Value struct {
	kind    ValueKind
	str     string
	boolean bool
	keys    []string
	fields  map[string]Value
	items   []Value
}

// Member is one key/value pair used to build an object.
type Member struct {
	Key   string
	Value Value
}

func Null() Value { return Value{kind: ValueNull} }

func Bool(b bool) Value { return Value{kind: ValueBool, boolean: b} }

func String(s string) Value { return Value{kind: ValueString, str: s} }

// Number wraps a JSON number literal.
func Number(literal string) Value { return Value{kind: ValueNumber, str: literal} }

// List builds a list value.
func List(items ...Value) Value {
	return Value{kind: ValueList, items: items}
}

// Object builds an object value; later duplicates replace earlier ones.
func Object(members ...Member) Value {
	v := Value{kind: ValueObject, fields: make(map[string]Value, len(members))}
	for _, m := range members {
		v.set(m.Key, m.Value)
	}
	return v
}

func (v *Value) set(key string, member Value) {
	if _, exists := v.fields[key]; !exists {
		v.keys = append(v.keys, key)
	}
	v.fields[key] = member
}

// ParseValue decodes exactly one JSON value.
func ParseValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, errors.New("runpod: trailing data after json value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := Value{kind: ValueObject, fields: map[string]Value{}}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("runpod: unexpected object key %v", keyTok)
				}
				member, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				obj.set(key, member)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return obj, nil
		case '[':
			list := Value{kind: ValueList}
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				list.items = append(list.items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return list, nil
		}
		return Value{}, fmt.Errorf("runpod: unexpected delimiter %v", t)
	case string:
		return String(t), nil
	case json.Number:
		return Number(t.String()), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	}
	return Value{}, fmt.Errorf("runpod: unexpected token %v", tok)
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsNull() bool { return v.kind == ValueNull }

// Len reports the number of members of an object or items of a list.
func (v Value) Len() int {
	switch v.kind {
	case ValueObject:
		return len(v.keys)
	case ValueList:
		return len(v.items)
	default:
		return 0
	}
}

// Keys returns object keys in document order.
func (v Value) Keys() []string {
	return append([]string(nil), v.keys...)
}

// Items returns the elements of a list.
func (v Value) Items() []Value {
	return v.items
}

// Field looks up a key on an object. Non-objects have no fields.
func (v Value) Field(name string) (Value, bool) {
	if v.kind != ValueObject {
		return Value{}, false
	}
	member, ok := v.fields[name]
	return member, ok
}

// Int converts integral numbers.
func (v Value) Int() (int, bool) {
	if v.kind != ValueNumber {
		return 0, false
	}
	if i, err := strconv.Atoi(v.str); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(v.str, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// Truthy mirrors "has content": null, false, zero, and empty
// strings/objects/lists are not truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case ValueNull:
		return false
	case ValueBool:
		return v.boolean
	case ValueNumber:
		f, err := strconv.ParseFloat(v.str, 64)
		return err != nil || f != 0
	case ValueString:
		return v.str != ""
	default:
		return v.Len() > 0
	}
}

// Text renders the value as plain text. Strings render raw, null renders
// empty, containers render as compact JSON.
func (v Value) Text() string {
	switch v.kind {
	case ValueNull:
		return ""
	case ValueBool:
		return strconv.FormatBool(v.boolean)
	case ValueNumber, ValueString:
		return v.str
	default:
		var sb strings.Builder
		v.writeJSON(&sb)
		return sb.String()
	}
}

// MarshalJSON keeps object key order.
func (v Value) MarshalJSON() ([]byte, error) {
	var sb strings.Builder
	v.writeJSON(&sb)
	return []byte(sb.String()), nil
}

func (v Value) writeJSON(sb *strings.Builder) {
	switch v.kind {
	case ValueNull:
		sb.WriteString("null")
	case ValueBool:
		sb.WriteString(strconv.FormatBool(v.boolean))
	case ValueNumber:
		sb.WriteString(v.str)
	case ValueString:
		quoted, _ := json.Marshal(v.str)
		sb.Write(quoted)
	case ValueObject:
		sb.WriteByte('{')
		for i, key := range v.keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			quoted, _ := json.Marshal(key)
			sb.Write(quoted)
			sb.WriteByte(':')
			v.fields[key].writeJSON(sb)
		}
		sb.WriteByte('}')
	case ValueList:
		sb.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				sb.WriteByte(',')
			}
			item.writeJSON(sb)
		}
		sb.WriteByte(']')
	}
}

// lookupField returns the first candidate key present on the object.
func lookupField(v Value, candidates []string) (string, Value, bool) {
	for _, name := range candidates {
		if member, ok := v.Field(name); ok {
			return name, member, true
		}
	}
	return "", Value{}, false
}

// lookupTruthy returns the first candidate key whose value has content.
func lookupTruthy(v Value, candidates []string) (Value, bool) {
	for _, name := range candidates {
		if member, ok := v.Field(name); ok && member.Truthy() {
			return member, true
		}
	}
	return Value{}, false
}
