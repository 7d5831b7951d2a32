// Package roundtrip writes edited parameter values back into the script text
// they were parsed from, leaving everything else untouched.
package roundtrip

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/standardbeagle/dctlforge/internal/param"
	"github.com/standardbeagle/dctlforge/internal/parser"
)

var (
	// ErrUnknownParameter is returned when an id or name matches no parsed parameter
	ErrUnknownParameter = errors.New("unknown parameter")
	// ErrInvalidValue is returned when user input does not fit the parameter type
	ErrInvalidValue = errors.New("invalid value")
)

// ApplyEdit sets p's current value to v and substitutes the regenerated
// declaration for the first occurrence of p's original text. When the original
// text occurs more than once only the first copy changes.
func ApplyEdit(original string, p *param.ParsedParameter, v param.Value) string {
	p.CurrentValue = v
	return strings.Replace(original, p.OriginalDefinition, Definition(p), 1)
}

// Definition renders p as a declaration call. A parsed parameter keeps its
// source text: an unmodified one is returned verbatim, and a modified one reuses
// the source tokens with only the value replaced. Parameters without source
// text are rendered from their fields.
func Definition(p *param.ParsedParameter) string {
	if p.OriginalDefinition != "" {
		if !p.Modified() {
			return p.OriginalDefinition
		}
		if tokens := sourceTokens(p.OriginalDefinition); len(tokens) >= 4 {
			tokens[3] = currentLiteral(p)
			return param.Marker + "(" + strings.Join(tokens, ", ") + ")"
		}
	}

	parts := []string{
		p.Name,
		`"` + p.DisplayName + `"`,
		string(p.Type),
		currentLiteral(p),
	}

	switch p.Type {
	case param.UISliderFloat, param.UISliderInt:
		if p.Min != nil && p.Max != nil {
			parts = append(parts, p.Min.Literal(), p.Max.Literal())
			if p.Step != nil {
				parts = append(parts, p.Step.Literal())
			}
		}
	case param.UIComboBox:
		if p.Options != nil && p.OptionLabels != nil {
			parts = append(parts,
				"{"+strings.Join(p.Options, ", ")+"}",
				"{"+strings.Join(p.OptionLabels, ", ")+"}")
		}
	}

	return param.Marker + "(" + strings.Join(parts, ", ") + ")"
}

// sourceTokens splits the argument list between the outer parentheses of a
// declaration call
func sourceTokens(definition string) []string {
	open := strings.IndexByte(definition, '(')
	end := strings.LastIndexByte(definition, ')')
	if open < 0 || end <= open {
		return nil
	}
	return parser.SmartSplit(definition[open+1 : end])
}

func currentLiteral(p *param.ParsedParameter) string {
	cur := p.CurrentValue
	def := p.DefaultValue
	if cur.Equal(def) && def.Raw != "" {
		return def.Raw
	}
	if cur.Raw != "" {
		return cur.Raw
	}

	switch cur.Kind {
	case param.ValueNumber:
		return formatNumber(p.Type, cur.Num)
	case param.ValueBool:
		// a numeric checkbox default keeps the 1/0 spelling
		if def.Kind == param.ValueNumber {
			if cur.Bool {
				return "1"
			}
			return "0"
		}
		s := strconv.FormatBool(cur.Bool)
		if def.Raw != "" && def.Raw == strings.ToUpper(def.Raw) {
			s = strings.ToUpper(s)
		}
		return s
	default:
		return cur.Str
	}
}

func formatNumber(t param.UIType, f float64) string {
	switch t {
	case param.UISliderInt, param.UIComboBox, param.UICheckBox:
		if f == math.Trunc(f) {
			return strconv.FormatFloat(f, 'f', 0, 64)
		}
		return param.FormatNumber(f)
	}
	s := param.FormatNumber(f)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// ParseInput converts user-entered text into a value suitable for p. Numbers
// are range-checked against the declared bounds when they are known.
func ParseInput(p *param.ParsedParameter, text string) (param.Value, error) {
	s := strings.TrimSpace(text)

	switch p.Type {
	case param.UICheckBox:
		switch strings.ToLower(s) {
		case "true", "1", "on", "yes":
			return param.Bool(true), nil
		case "false", "0", "off", "no":
			return param.Bool(false), nil
		}
		return param.Value{}, fmt.Errorf("%w: %s expects true or false, got %q", ErrInvalidValue, p.Name, text)

	case param.UIComboBox:
		if i, err := strconv.Atoi(s); err == nil {
			if i < 0 || (len(p.Options) > 0 && i >= len(p.Options)) {
				return param.Value{}, fmt.Errorf("%w: %s index %d out of range", ErrInvalidValue, p.Name, i)
			}
			return param.Number(float64(i)), nil
		}
		for i, opt := range p.Options {
			if opt == s {
				return param.Number(float64(i)), nil
			}
		}
		return param.Value{}, fmt.Errorf("%w: %s has no option %q", ErrInvalidValue, p.Name, text)
	}

	f, err := strconv.ParseFloat(strings.TrimSuffix(s, "f"), 64)
	if err != nil {
		return param.Value{}, fmt.Errorf("%w: %s expects a number, got %q", ErrInvalidValue, p.Name, text)
	}
	if p.Type == param.UISliderInt && f != math.Trunc(f) {
		return param.Value{}, fmt.Errorf("%w: %s expects an integer, got %q", ErrInvalidValue, p.Name, text)
	}
	if p.Min != nil && p.Max != nil {
		lo, okLo := p.Min.Float()
		hi, okHi := p.Max.Float()
		if okLo && okHi && (f < lo || f > hi) {
			return param.Value{}, fmt.Errorf("%w: %s must be within [%s, %s]", ErrInvalidValue, p.Name, p.Min.Literal(), p.Max.Literal())
		}
	}
	return param.Number(f), nil
}
