// Package parser recovers UI parameter declarations from DCTL script source.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/standardbeagle/dctlforge/internal/classify"
	"github.com/standardbeagle/dctlforge/internal/param"
)

// declarationPattern matches the marker call up to the first close paren. A literal
// ')' inside an argument ends the match early; that is a known limitation.
var declarationPattern = regexp.MustCompile(param.Marker + `\s*\(\s*([^)]+)\s*\)`)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

const defaultSuggestion = "Check " + param.Marker + " syntax"

// Parser extracts parameters. The zero value is not usable; call New.
type Parser struct {
	classifier *classify.Classifier
	newID      func() string
}

// Option configures a Parser
type Option func(*Parser)

// WithClassifier replaces the default category rules
func WithClassifier(c *classify.Classifier) Option {
	return func(p *Parser) {
		if c != nil {
			p.classifier = c
		}
	}
}

// WithIDFunc replaces the id source, mainly for deterministic tests
func WithIDFunc(fn func() string) Option {
	return func(p *Parser) {
		if fn != nil {
			p.newID = fn
		}
	}
}

// New creates a parser with the default classifier and uuid ids
func New(opts ...Option) *Parser {
	p := &Parser{
		classifier: classify.Default(),
		newID:      func() string { return "param_" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = New()

// ParseParameters extracts every declaration in text with the default parser
func ParseParameters(text string) param.ParsingResult {
	return defaultParser.Parse(text)
}

// Parse scans text for declarations. It never fails: malformed declarations are
// reported in ParseErrors and left out of Parameters.
func (p *Parser) Parse(text string) param.ParsingResult {
	result := param.ParsingResult{
		Parameters:  []*param.ParsedParameter{},
		ParseErrors: []param.ParseError{},
		Warnings:    []string{},
	}

	for _, loc := range declarationPattern.FindAllStringSubmatchIndex(text, -1) {
		fullMatch := text[loc[0]:loc[1]]
		args := text[loc[2]:loc[3]]
		line := strings.Count(text[:loc[0]], "\n") + 1

		parsed, err := p.parseDefinition(args, line, fullMatch)
		if err != nil {
			result.ParseErrors = append(result.ParseErrors, param.ParseError{
				LineNumber: line,
				Message:    err.Error(),
				Severity:   param.SeverityError,
				Suggestion: defaultSuggestion,
			})
			continue
		}
		result.Parameters = append(result.Parameters, parsed)
	}
	result.TotalFound = len(result.Parameters)

	addCategoryWarnings(&result)
	return result
}

func (p *Parser) parseDefinition(args string, line int, original string) (*param.ParsedParameter, error) {
	parts := SmartSplit(args)
	if len(parts) < 4 {
		return nil, fmt.Errorf("insufficient parameters: expected at least 4, got %d", len(parts))
	}

	name := strings.TrimSpace(parts[0])
	if !identifierPattern.MatchString(name) {
		return nil, fmt.Errorf("invalid parameter name: %s", name)
	}

	displayName, _ := unquote(parts[1])

	uiType := param.UIType(strings.TrimSpace(parts[2]))
	if !uiType.Valid() {
		return nil, fmt.Errorf("invalid UI type: %s", uiType)
	}

	defaultValue := ParseValue(parts[3])

	parsed := &param.ParsedParameter{
		ID:                 p.newID(),
		Name:               name,
		DisplayName:        displayName,
		Type:               uiType,
		DefaultValue:       defaultValue,
		CurrentValue:       defaultValue,
		LineNumber:         line,
		OriginalDefinition: original,
		Category:           p.classifier.Classify(name, displayName),
	}

	switch uiType {
	case param.UISliderFloat:
		if len(parts) >= 7 {
			parsed.Min = valuePtr(parts[4])
			parsed.Max = valuePtr(parts[5])
			parsed.Step = valuePtr(parts[6])
		}
	case param.UISliderInt:
		if len(parts) >= 6 {
			parsed.Min = valuePtr(parts[4])
			parsed.Max = valuePtr(parts[5])
			step := param.Number(1)
			parsed.Step = &step
		}
	case param.UIComboBox:
		if len(parts) >= 5 {
			parsed.Options = splitEnum(parts[4])
			if len(parts) >= 6 {
				parsed.OptionLabels = splitEnum(parts[5])
			} else {
				parsed.OptionLabels = append([]string(nil), parsed.Options...)
			}
		}
	case param.UICheckBox, param.UIValueBox:
	}

	return parsed, nil
}

// ParseValue interprets a declaration argument: quoted text is a string, then a
// float is tried, then true/false in any case, and anything else stays a raw string.
// The trimmed token is kept as the value's literal.
func ParseValue(token string) param.Value {
	trimmed := strings.TrimSpace(token)

	if inner, ok := unquote(trimmed); ok {
		v := param.String(inner)
		v.Raw = trimmed
		return v
	}

	if f, ok := parseLeadingFloat(trimmed); ok {
		v := param.Number(f)
		v.Raw = trimmed
		return v
	}

	switch strings.ToLower(trimmed) {
	case "true":
		v := param.Bool(true)
		v.Raw = trimmed
		return v
	case "false":
		v := param.Bool(false)
		v.Raw = trimmed
		return v
	}

	v := param.String(trimmed)
	v.Raw = trimmed
	return v
}

func valuePtr(token string) *param.Value {
	v := ParseValue(token)
	return &v
}

var leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// parseLeadingFloat accepts the longest numeric prefix, so literals with a C
// suffix such as "1.0f" read as 1.0
func parseLeadingFloat(s string) (float64, bool) {
	m := leadingFloat.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func addCategoryWarnings(result *param.ParsingResult) {
	seen := make(map[param.Category]bool)
	for _, p := range result.Parameters {
		seen[p.Category] = true
	}
	n := len(result.Parameters)

	if !seen[param.CategoryExposure] && n > 0 {
		result.Warnings = append(result.Warnings, "No exposure parameters found - consider adding exposure control")
	}
	if !seen[param.CategoryGamma] && n > 2 {
		result.Warnings = append(result.Warnings, "No gamma parameters found - gamma correction often improves results")
	}
	if n > 10 {
		result.Warnings = append(result.Warnings, "Many parameters detected - consider grouping related controls")
	}
}
