// Package value implements the DVM's runtime value model: a tagged union
// of integers, booleans, strings, ordered-field records, and unit.
package value

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dustlang/dustrun/internal/ordered"
)

// Kind discriminates the variant a Value holds.
type Kind int

const (
	KindInt Kind = iota
	KindBool
	KindString
	KindStruct
	KindUnit
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "Int"
	case KindBool:
		return "Bool"
	case KindString:
		return "String"
	case KindStruct:
		return "Struct"
	case KindUnit:
		return "Unit"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is the DVM's tagged runtime value. The zero Value is Int(0); use
// Unit() for the Unit value.
type Value struct {
	kind     Kind
	i        int64
	b        bool
	s        string
	typeName string
	fields   *ordered.Map[Value]
}

// Int constructs an Int value.
func Int(n int64) Value { return Value{kind: KindInt, i: n} }

// Bool constructs a Bool value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String constructs a String value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Unit constructs the Unit value.
func Unit() Value { return Value{kind: KindUnit} }

// Struct constructs a Struct value with the given type name and
// insertion-ordered fields. fields may be nil, which is treated as empty.
func Struct(typeName string, fields *ordered.Map[Value]) Value {
	if fields == nil {
		fields = ordered.New[Value]()
	}
	return Value{kind: KindStruct, typeName: typeName, fields: fields}
}

func (v Value) Kind() Kind { return v.kind }

// AsInt returns the wrapped int64 and whether v is an Int.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// AsBool returns the wrapped bool and whether v is a Bool.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsString returns the wrapped string and whether v is a String.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// TypeName returns the struct's declared type name, or "" if v is not a
// Struct.
func (v Value) TypeName() string { return v.typeName }

// Fields returns the struct's ordered fields, or nil if v is not a Struct.
func (v Value) Fields() *ordered.Map[Value] { return v.fields }

// Equal reports structural equality: matching kind, and for Struct values,
// matching type name and pairwise-ordered, pairwise-equal fields.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == other.i
	case KindBool:
		return v.b == other.b
	case KindString:
		return v.s == other.s
	case KindUnit:
		return true
	case KindStruct:
		if v.typeName != other.typeName {
			return false
		}
		ak, bk := v.fields.Keys(), other.fields.Keys()
		if len(ak) != len(bk) {
			return false
		}
		for i, k := range ak {
			if bk[i] != k {
				return false
			}
			av, _ := v.fields.Get(k)
			bv, _ := other.fields.Get(k)
			if !av.Equal(bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Render implements the §4.G.3 payload-rendering rules: strings render
// raw, Int/Bool render as decimal/true-false, Unit renders as "unit", and
// Struct renders as its canonical JSON form.
func (v Value) Render() (string, error) {
	switch v.kind {
	case KindString:
		return v.s, nil
	case KindInt:
		return fmt.Sprintf("%d", v.i), nil
	case KindBool:
		if v.b {
			return "true", nil
		}
		return "false", nil
	case KindUnit:
		return "unit", nil
	case KindStruct:
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("render struct payload as json: %w", err)
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("render: unknown value kind %v", v.kind)
	}
}

// jsonStructBody is the wire shape of the "Struct" payload.
type jsonStructBody struct {
	Ty     string           `json:"ty"`
	Fields *ordered.Map[Value] `json:"fields"`
}

// MarshalJSON encodes v using the tagged-by-key union: {"Int": n},
// {"Bool": b}, {"String": s}, {"Struct": {"ty": ..., "fields": {...}}},
// {"Unit": null}.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return json.Marshal(map[string]int64{"Int": v.i})
	case KindBool:
		return json.Marshal(map[string]bool{"Bool": v.b})
	case KindString:
		return json.Marshal(map[string]string{"String": v.s})
	case KindUnit:
		return []byte(`{"Unit":null}`), nil
	case KindStruct:
		body := jsonStructBody{Ty: v.typeName, Fields: v.fields}
		if body.Fields == nil {
			body.Fields = ordered.New[Value]()
		}
		inner, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		buf.WriteString(`{"Struct":`)
		buf.Write(inner)
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("value: marshal: unknown kind %v", v.kind)
	}
}

// UnmarshalJSON decodes the tagged-by-key union form, and additionally
// accepts the bare string "Unit" for leniency with producers that emit
// the untagged unit shorthand described in spec.md §6.
func (v *Value) UnmarshalJSON(data []byte) error {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		if bare == "Unit" {
			*v = Unit()
			return nil
		}
		return fmt.Errorf("value: unexpected bare string %q", bare)
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("value: unmarshal: %w", err)
	}
	if len(env) != 1 {
		return fmt.Errorf("value: expected single-key tagged object, got %d keys", len(env))
	}

	if raw, ok := env["Int"]; ok {
		var n int64
		if err := json.Unmarshal(raw, &n); err != nil {
			return err
		}
		*v = Int(n)
		return nil
	}
	if raw, ok := env["Bool"]; ok {
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return err
		}
		*v = Bool(b)
		return nil
	}
	if raw, ok := env["String"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*v = String(s)
		return nil
	}
	if raw, ok := env["Unit"]; ok {
		_ = raw
		*v = Unit()
		return nil
	}
	if raw, ok := env["Struct"]; ok {
		var body jsonStructBody
		if err := json.Unmarshal(raw, &body); err != nil {
			return err
		}
		*v = Struct(body.Ty, body.Fields)
		return nil
	}
	return fmt.Errorf("value: unknown tagged union key")
}
