package condition

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Params is the raw parameter map attached to a condition.
type Params map[string]any

// Parameter value kinds used by declared schemas.
const (
	ParamString     = "string"
	ParamNumber     = "number"
	ParamInt        = "int"
	ParamStringList = "stringList"
	ParamAny        = "any"
)

// ParamSpec declares one parameter a condition type accepts.
type ParamSpec struct {
	Name     string
	Kind     string
	Required bool
}

func (p Params) stringValue(name string) (string, bool) {
	v, ok := p[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// intValue coerces the JSON number shapes that survive decoding into an int64.
func (p Params) intValue(name string) (int64, bool) {
	v, ok := p[name]
	if !ok {
		return 0, false
	}
	return toInt64(v)
}

// intPtrValue distinguishes an absent parameter from an explicit value, which
// the count condition needs for its zero-window sentinel.
func (p Params) intPtrValue(name string) (*int64, bool) {
	v, ok := p[name]
	if !ok {
		return nil, true
	}
	n, ok := toInt64(v)
	if !ok {
		return nil, false
	}
	return &n, true
}

func (p Params) decimalValue(name string) (decimal.Decimal, bool) {
	v, ok := p[name]
	if !ok {
		return decimal.Decimal{}, false
	}
	return toDecimal(v)
}

func (p Params) stringListValue(name string) ([]string, bool) {
	v, ok := p[name]
	if !ok {
		return nil, false
	}
	switch list := v.(type) {
	case []string:
		return list, len(list) > 0
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, len(out) > 0
	}
	return nil, false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// toDecimal coerces any JSON numeric shape to a common decimal so that
// comparisons do not depend on the decoder's choice of Go type.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	}
	return decimal.Decimal{}, false
}

// looseEqual compares attribute values: numbers as decimals, strings byte-wise
// ordinal, everything else through a JSON round-trip comparison.
func looseEqual(a, b any) bool {
	if da, ok := toDecimal(a); ok {
		if db, ok := toDecimal(b); ok {
			// Strings that happen to parse as numbers still compare as
			// strings when both sides are strings.
			_, aStr := a.(string)
			_, bStr := b.(string)
			if aStr == bStr {
				if aStr {
					return a.(string) == b.(string)
				}
				return da.Equal(db)
			}
			return da.Equal(db)
		}
	}
	if sa, ok := a.(string); ok {
		sb, ok := b.(string)
		return ok && sa == sb
	}
	if ba, ok := a.(bool); ok {
		bb, ok := b.(bool)
		return ok && ba == bb
	}
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ja) == string(jb)
}

// validate checks the raw parameters against the declared schema, returning a
// human-readable reason on failure.
func validate(specs []ParamSpec, p Params) (bool, string) {
	for _, spec := range specs {
		v, present := p[spec.Name]
		if !present {
			if spec.Required {
				return false, fmt.Sprintf("missing parameter %q", spec.Name)
			}
			continue
		}
		ok := true
		switch spec.Kind {
		case ParamString:
			_, ok = v.(string)
		case ParamInt:
			_, ok = toInt64(v)
		case ParamNumber:
			_, ok = toDecimal(v)
		case ParamStringList:
			_, ok = p.stringListValue(spec.Name)
		case ParamAny:
			ok = v != nil
		}
		if !ok {
			return false, fmt.Sprintf("invalid parameter %q", spec.Name)
		}
	}
	return true, ""
}
