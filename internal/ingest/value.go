package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the scalar type carried by a Value
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "null"
	}
}

// Value is one raw cell: a string, a number, a boolean or absent.
// Raw holds the trimmed source text when the value was inferred from text;
// it is what String returns, so free text survives inference unchanged.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
	Raw  string
}

// Null returns the absent value
func Null() Value { return Value{} }

// StringValue wraps s
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// NumberValue wraps f
func NumberValue(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// BoolValue wraps b
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// naValues are cell spellings treated as missing, as spreadsheet tooling does
var naValues = map[string]struct{}{
	"":      {},
	"#N/A":  {},
	"#NA":   {},
	"<NA>":  {},
	"N/A":   {},
	"n/a":   {},
	"NA":    {},
	"NULL":  {},
	"null":  {},
	"NaN":   {},
	"nan":   {},
	"-NaN":  {},
	"-nan":  {},
	"None":  {},
	"#NULL": {},
}

// Infer converts raw cell text into a typed Value. Text is trimmed first.
// Numbers with a leading zero ("01234") stay strings so codes keep their digits.
func Infer(raw string) Value {
	s := strings.TrimSpace(raw)
	if _, ok := naValues[s]; ok {
		return Null()
	}

	v := StringValue(s)
	switch strings.ToLower(s) {
	case "true":
		v = BoolValue(true)
	case "false":
		v = BoolValue(false)
	default:
		if looksNumeric(s) {
			if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
				v = NumberValue(f)
			}
		}
	}
	v.Raw = s
	return v
}

// looksNumeric rejects inputs ParseFloat would accept but a spreadsheet would not
// treat as a number: hex, underscores, Inf spellings and zero-padded codes
func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	body := strings.TrimLeft(s, "+-")
	if body == "" {
		return false
	}
	if len(body) > 1 && body[0] == '0' && body[1] != '.' && body[1] != 'e' && body[1] != 'E' {
		return false
	}
	for _, r := range body {
		switch {
		case r >= '0' && r <= '9':
		case r == '.', r == 'e', r == 'E', r == '+', r == '-':
		default:
			return false
		}
	}
	return true
}

// IsNull reports whether the value is absent
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// String renders the value as text. Source text is returned verbatim; typed
// integral numbers have no fractional part.
func (v Value) String() string {
	if v.Raw != "" {
		return v.Raw
	}
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return formatNumber(v.Num)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return ""
	}
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e18 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Int converts the value to an integer. Source text that is a base-10 integer is
// parsed exactly; otherwise numbers must be integral and strings must parse as
// base-10 integers.
func (v Value) Int() (int64, error) {
	if v.Raw != "" && v.Kind != KindBool {
		if n, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
			return n, nil
		}
	}
	switch v.Kind {
	case KindNumber:
		if v.Num != math.Trunc(v.Num) || math.Abs(v.Num) >= 1<<63 {
			return 0, fmt.Errorf("number %v is not an integer", v.Num)
		}
		return int64(v.Num), nil
	case KindString:
		n, err := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", v.Str)
		}
		return n, nil
	case KindBool:
		return 0, fmt.Errorf("boolean %v is not an integer", v.Bool)
	default:
		return 0, fmt.Errorf("value is missing")
	}
}

var (
	trueSpellings  = map[string]struct{}{"true": {}, "t": {}, "yes": {}, "y": {}, "1": {}, "on": {}, "ano": {}, "a": {}}
	falseSpellings = map[string]struct{}{"false": {}, "f": {}, "no": {}, "n": {}, "0": {}, "off": {}, "ne": {}}
)

// Truthy converts the value to a boolean. Booleans are taken as-is, numbers are
// true when non-zero, strings are matched against known spellings and otherwise
// true when non-empty. Null is false.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Num != 0
	case KindString:
		s := strings.ToLower(strings.TrimSpace(v.Str))
		if _, ok := trueSpellings[s]; ok {
			return true
		}
		if _, ok := falseSpellings[s]; ok {
			return false
		}
		return s != ""
	default:
		return false
	}
}
