package param

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind discriminates the dynamic type held by a Value
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueNumber
	ValueBool
)

func (k ValueKind) String() string {
	switch k {
	case ValueNumber:
		return "number"
	case ValueBool:
		return "bool"
	default:
		return "string"
	}
}

// Value is a declaration argument after parsing: a number, a bool or a bare string.
// Raw keeps the literal it was read from so an untouched value can be written back
// exactly as it appeared.
type Value struct {
	Kind ValueKind
	Num  float64
	Bool bool
	Str  string
	Raw  string
}

// Number builds a numeric value with no source literal
func Number(f float64) Value { return Value{Kind: ValueNumber, Num: f} }

// Bool builds a boolean value with no source literal
func Bool(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// String builds a string value with no source literal
func String(s string) Value { return Value{Kind: ValueString, Str: s} }

// Equal compares the semantic content of two values, ignoring Raw
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueNumber:
		return v.Num == o.Num
	case ValueBool:
		return v.Bool == o.Bool
	default:
		return v.Str == o.Str
	}
}

// Float returns the numeric interpretation of v. Bools map to 1/0.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case ValueNumber:
		return v.Num, true
	case ValueBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	default:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		return f, err == nil
	}
}

// Literal renders v as declaration text, reusing the source literal when present
func (v Value) Literal() string {
	if v.Raw != "" {
		return v.Raw
	}
	switch v.Kind {
	case ValueNumber:
		return FormatNumber(v.Num)
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	default:
		return v.Str
	}
}

// String implements fmt.Stringer
func (v Value) String() string { return v.Literal() }

// FormatNumber renders f in the shortest form that round-trips
func FormatNumber(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// MarshalJSON writes the value as a plain JSON number, bool or string
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueNumber:
		return json.Marshal(v.Num)
	case ValueBool:
		return json.Marshal(v.Bool)
	default:
		return json.Marshal(v.Str)
	}
}

// UnmarshalJSON accepts a JSON number, bool or string
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case float64:
		*v = Number(x)
	case bool:
		*v = Bool(x)
	case string:
		*v = String(x)
	default:
		return fmt.Errorf("unsupported value %s", string(data))
	}
	return nil
}
