package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the variants a Value can hold. Engine variables flow
// as heterogeneous scalars (string/int/float/bool/null) and structures
// (list/map), exactly as the original Python implementation's dynamically
// typed variable pool does; Kind plus the typed accessors give that the
// same ergonomics in Go without reflection at every call site.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindList
	KindMap
)

// Value is a small tagged variant standing in for the dynamically typed
// values that flow through the variable pool, extraction results, and
// assertion comparisons.
type Value struct {
	kind Kind
	str  string
	i    int64
	f    float64
	b    bool
	list []Value
	m    map[string]Value
}

func Null() Value                  { return Value{kind: KindNull} }
func String(s string) Value        { return Value{kind: KindString, str: s} }
func Int(i int64) Value            { return Value{kind: KindInt, i: i} }
func Float(f float64) Value        { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value            { return Value{kind: KindBool, b: b} }
func List(items []Value) Value     { return Value{kind: KindList, list: items} }
func Map(m map[string]Value) Value { return Value{kind: KindMap, m: m} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// FromAny builds a Value from an arbitrary Go value as produced by
// encoding/json.Unmarshal into `any`, or from literal Go scalars used by
// the engine internally.
func FromAny(in any) Value {
	switch x := in.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case int:
		return Int(int64(x))
	case int64:
		return Int(x)
	case float64:
		// encoding/json always decodes numbers as float64; FormatFloat's
		// shortest representation still prints whole numbers bare.
		return Float(x)
	case []any:
		out := make([]Value, len(x))
		for i, item := range x {
			out[i] = FromAny(item)
		}
		return List(out)
	case map[string]any:
		out := make(map[string]Value, len(x))
		for k, item := range x {
			out[k] = FromAny(item)
		}
		return Map(out)
	default:
		return String(fmt.Sprintf("%v", x))
	}
}

// Raw converts the Value back into a plain `any`, the inverse of FromAny,
// suitable for json.Marshal or for feeding a placeholder substitution.
func (v Value) Raw() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindString:
		return v.str
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Raw()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, item := range v.m {
			out[k] = item.Raw()
		}
		return out
	}
	return nil
}

// String form used for placeholder substitution: a bare scalar's textual
// representation, not a JSON-quoted one.
func (v Value) AsString() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		b, _ := json.Marshal(v.Raw())
		return string(b)
	}
}

// Literal renders the value as a language-neutral literal suitable for
// splicing into scripted code: strings are quoted (doubled escapes
// preserved), everything else is rendered bare. This backs the
// quoted-literal placeholder pass in the resolver.
func (v Value) Literal() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.str)
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	default:
		b, _ := json.Marshal(v.Raw())
		return string(b)
	}
}

func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		return f, err == nil
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func (v Value) AsBool() (bool, bool) {
	switch v.kind {
	case KindBool:
		return v.b, true
	case KindString:
		b, err := strconv.ParseBool(strings.TrimSpace(v.str))
		return b, err == nil
	case KindInt:
		return v.i != 0, true
	}
	return false, false
}

func (v Value) AsList() ([]Value, bool) {
	if v.kind == KindList {
		return v.list, true
	}
	return nil, false
}

func (v Value) AsMap() (map[string]Value, bool) {
	if v.kind == KindMap {
		return v.m, true
	}
	return nil, false
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Raw())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = FromAny(raw)
	return nil
}
