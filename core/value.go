/* Copyright 2025-2026 Phasic Authors
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package core

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Kind tags a Value.
type Kind int

const (
	IntKind Kind = iota
	FloatKind
	BoolKind
	StringKind
)

func (k Kind) String() string {
	switch k {
	case IntKind:
		return "int"
	case FloatKind:
		return "float"
	case BoolKind:
		return "bool"
	case StringKind:
		return "string"
	}
	return "unknown"
}

// Value is a tagged scalar: a signed 64-bit integer, a 64-bit float, a
// boolean, or a string.
//
// Integers and floats are distinct tags but comparable: equality widens
// both sides to float.  All other cross-tag comparisons are false.  In
// particular true is not equal to 1, and "1" is not equal to 1.
type Value struct {
	kind Kind
	i    int64
	f    float64
	b    bool
	s    string
}

// Int makes an integer Value.
func Int(n int64) Value {
	return Value{kind: IntKind, i: n}
}

// Float makes a float Value.
func Float(x float64) Value {
	return Value{kind: FloatKind, f: x}
}

// Bool makes a boolean Value.
func Bool(b bool) Value {
	return Value{kind: BoolKind, b: b}
}

// String makes a string Value.
func String(s string) Value {
	return Value{kind: StringKind, s: s}
}

// Kind returns the Value's tag.
func (v Value) Kind() Kind {
	return v.kind
}

// Num extracts the Value as a float64, widening an integer.
//
// Booleans and strings are NotNumeric.
func (v Value) Num() (float64, error) {
	switch v.kind {
	case IntKind:
		return float64(v.i), nil
	case FloatKind:
		return v.f, nil
	}
	return 0, NotNumeric
}

// AsBool extracts a boolean Value.  Every other tag is NotBool.
func (v Value) AsBool() (bool, error) {
	if v.kind != BoolKind {
		return false, NotBool
	}
	return v.b, nil
}

// Str extracts a string Value.  Every other tag is NotString.
func (v Value) Str() (string, error) {
	if v.kind != StringKind {
		return "", NotString
	}
	return v.s, nil
}

// Truthy gives the implicit boolean of a Value in boolean position:
// numbers are true iff non-zero, strings are true iff non-empty, and a
// boolean is itself.
func (v Value) Truthy() bool {
	switch v.kind {
	case IntKind:
		return v.i != 0
	case FloatKind:
		return v.f != 0
	case BoolKind:
		return v.b
	case StringKind:
		return v.s != ""
	}
	return false
}

// Equal compares two Values.
//
// Same-tag comparison is structural.  An integer and a float are equal
// when they widen to the same float.  Any other cross-tag pair is not
// equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		if v.numeric() && o.numeric() {
			vn, _ := v.Num()
			on, _ := o.Num()
			return vn == on
		}
		return false
	}
	switch v.kind {
	case IntKind:
		return v.i == o.i
	case FloatKind:
		return v.f == o.f
	case BoolKind:
		return v.b == o.b
	case StringKind:
		return v.s == o.s
	}
	return false
}

func (v Value) numeric() bool {
	return v.kind == IntKind || v.kind == FloatKind
}

// Interface returns the Value as a plain JSON-compatible scalar.
func (v Value) Interface() interface{} {
	switch v.kind {
	case IntKind:
		return v.i
	case FloatKind:
		return v.f
	case BoolKind:
		return v.b
	case StringKind:
		return v.s
	}
	return nil
}

// String renders the Value for display.  Strings are quoted.
func (v Value) String() string {
	switch v.kind {
	case IntKind:
		return strconv.FormatInt(v.i, 10)
	case FloatKind:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case BoolKind:
		return strconv.FormatBool(v.b)
	case StringKind:
		return strconv.Quote(v.s)
	}
	return "unknown"
}

// ValueOf converts a decoded JSON (or YAML) scalar to a Value.
//
// Anything that isn't a scalar is an UnsupportedValue error.
func ValueOf(x interface{}) (Value, error) {
	switch vv := x.(type) {
	case bool:
		return Bool(vv), nil
	case string:
		return String(vv), nil
	case int:
		return Int(int64(vv)), nil
	case int64:
		return Int(vv), nil
	case float64:
		return Float(vv), nil
	case json.Number:
		if n, err := strconv.ParseInt(string(vv), 10, 64); err == nil {
			return Int(n), nil
		}
		f, err := strconv.ParseFloat(string(vv), 64)
		if err != nil {
			return Value{}, &UnsupportedValue{x}
		}
		return Float(f), nil
	case Value:
		return vv, nil
	}
	return Value{}, &UnsupportedValue{x}
}

// MarshalJSON writes the Value as a plain scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON reads a scalar, keeping the integer/float distinction
// that a plain interface{} decode would lose.
func (v *Value) UnmarshalJSON(bs []byte) error {
	d := json.NewDecoder(bytes.NewReader(bs))
	d.UseNumber()
	var x interface{}
	if err := d.Decode(&x); err != nil {
		return err
	}
	val, err := ValueOf(x)
	if err != nil {
		return err
	}
	*v = val
	return nil
}
