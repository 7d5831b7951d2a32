package filters

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/standardbeagle/dctlforge/internal/param"
)

type FilterType string

const (
	FilterTypeContains FilterType = "contains"
	FilterTypeRegex    FilterType = "regex"
	FilterTypeExact    FilterType = "exact"
	FilterTypeCategory FilterType = "category"
	FilterTypeFuzzy    FilterType = "fuzzy"
)

// Filter selects parsed parameters by name, display name or category
type Filter struct {
	Type          FilterType
	Pattern       string
	CaseSensitive bool
	regex         *regexp.Regexp
}

func NewFilter(filterType FilterType, pattern string, caseSensitive bool) (*Filter, error) {
	f := &Filter{
		Type:          filterType,
		Pattern:       pattern,
		CaseSensitive: caseSensitive,
	}

	switch filterType {
	case FilterTypeRegex:
		flags := ""
		if !caseSensitive {
			flags = "(?i)"
		}
		regex, err := regexp.Compile(flags + pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid filter pattern %q: %w", pattern, err)
		}
		f.regex = regex
	case FilterTypeContains, FilterTypeExact, FilterTypeCategory, FilterTypeFuzzy:
	default:
		return nil, fmt.Errorf("unknown filter type %q", filterType)
	}

	return f, nil
}

// Parse reads the command-line form: "re:<regex>", "=<name>", "category:<name>",
// "~<letters>" for an in-order fuzzy match, anything else is a case-insensitive substring
func Parse(expr string) (*Filter, error) {
	switch {
	case strings.HasPrefix(expr, "~"):
		return NewFilter(FilterTypeFuzzy, strings.TrimPrefix(expr, "~"), false)
	case strings.HasPrefix(expr, "re:"):
		return NewFilter(FilterTypeRegex, strings.TrimPrefix(expr, "re:"), false)
	case strings.HasPrefix(expr, "category:"):
		return NewFilter(FilterTypeCategory, strings.TrimPrefix(expr, "category:"), false)
	case strings.HasPrefix(expr, "="):
		return NewFilter(FilterTypeExact, strings.TrimPrefix(expr, "="), false)
	default:
		return NewFilter(FilterTypeContains, expr, false)
	}
}

func (f *Filter) Matches(p *param.ParsedParameter) bool {
	if f.Type == FilterTypeCategory {
		return f.match(string(p.Category))
	}
	return f.match(p.Name) || f.match(p.DisplayName)
}

func (f *Filter) match(content string) bool {
	switch f.Type {
	case FilterTypeContains:
		if f.CaseSensitive {
			return strings.Contains(content, f.Pattern)
		}
		return strings.Contains(strings.ToLower(content), strings.ToLower(f.Pattern))

	case FilterTypeRegex:
		return f.regex.MatchString(content)

	case FilterTypeFuzzy:
		if f.CaseSensitive {
			return fuzzy.Match(f.Pattern, content)
		}
		return fuzzy.MatchFold(f.Pattern, content)

	case FilterTypeExact, FilterTypeCategory:
		if f.CaseSensitive {
			return content == f.Pattern
		}
		return strings.EqualFold(content, f.Pattern)

	default:
		return false
	}
}

// Apply keeps the parameters matching every filter, preserving order
func Apply(params []*param.ParsedParameter, fs ...*Filter) []*param.ParsedParameter {
	if len(fs) == 0 {
		return params
	}
	var out []*param.ParsedParameter
	for _, p := range params {
		keep := true
		for _, f := range fs {
			if !f.Matches(p) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, p)
		}
	}
	return out
}

// maxTypoDistance bounds the edit distance of a "did you mean" suggestion
const maxTypoDistance = 2

// Suggest returns the parameter names closest to an unknown name, nearest first.
// Names containing name's letters in order and names within a small edit distance qualify.
func Suggest(name string, params []*param.ParsedParameter) []string {
	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, p.Name)
	}

	distance := make(map[string]int)
	for _, r := range fuzzy.RankFindFold(name, names) {
		distance[r.Target] = r.Distance
	}
	lower := strings.ToLower(name)
	for _, n := range names {
		if _, ok := distance[n]; ok {
			continue
		}
		if d := fuzzy.LevenshteinDistance(lower, strings.ToLower(n)); d <= maxTypoDistance {
			distance[n] = d
		}
	}

	out := make([]string, 0, len(distance))
	for n := range distance {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if distance[out[i]] != distance[out[j]] {
			return distance[out[i]] < distance[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}
