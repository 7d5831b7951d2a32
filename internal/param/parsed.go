package param

// ParsedParameter is a declaration recovered from script source. It keeps the
// verbatim matched text so an edited value can be substituted back in place.
type ParsedParameter struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	DisplayName  string   `json:"displayName"`
	Type         UIType   `json:"type"`
	DefaultValue Value    `json:"defaultValue"`
	CurrentValue Value    `json:"currentValue"`
	Min          *Value   `json:"min,omitempty"`
	Max          *Value   `json:"max,omitempty"`
	Step         *Value   `json:"step,omitempty"`
	Options      []string `json:"options,omitempty"`
	OptionLabels []string `json:"optionLabels,omitempty"`

	LineNumber         int      `json:"lineNumber"`
	OriginalDefinition string   `json:"originalDefinition"`
	Category           Category `json:"category"`
}

// Modified reports whether the current value differs from the parsed default
func (p *ParsedParameter) Modified() bool {
	return !p.CurrentValue.Equal(p.DefaultValue)
}

// Severity of a parse diagnostic
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ParseError describes a declaration that could not be turned into a parameter
type ParseError struct {
	LineNumber int      `json:"lineNumber"`
	Message    string   `json:"message"`
	Severity   Severity `json:"severity"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// ParsingResult is the output of one extraction pass
type ParsingResult struct {
	Parameters  []*ParsedParameter `json:"parameters"`
	TotalFound  int                `json:"totalFound"`
	ParseErrors []ParseError       `json:"parseErrors"`
	Warnings    []string           `json:"warnings"`
}

// Group is a category view over parsed parameters
type Group struct {
	Category    Category           `json:"category"`
	DisplayName string             `json:"displayName"`
	Parameters  []*ParsedParameter `json:"parameters"`
	IsExpanded  bool               `json:"isExpanded"`
}

// GroupParameters buckets params by category in first-seen order. Expansion state is
// carried over from previous by category; new groups start expanded.
func GroupParameters(params []*ParsedParameter, previous []Group) []Group {
	expanded := make(map[Category]bool, len(previous))
	for _, g := range previous {
		expanded[g.Category] = g.IsExpanded
	}

	var groups []Group
	index := make(map[Category]int)
	for _, p := range params {
		cat := p.Category
		if cat == "" {
			cat = CategoryOther
		}
		i, ok := index[cat]
		if !ok {
			isExpanded, seen := expanded[cat]
			if !seen {
				isExpanded = true
			}
			groups = append(groups, Group{
				Category:    cat,
				DisplayName: cat.DisplayName(),
				IsExpanded:  isExpanded,
			})
			i = len(groups) - 1
			index[cat] = i
		}
		groups[i].Parameters = append(groups[i].Parameters, p)
	}
	return groups
}
