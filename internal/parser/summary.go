package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/standardbeagle/dctlforge/internal/param"
)

// Summary renders a one-line description of a parsing result
func Summary(result param.ParsingResult) string {
	if len(result.Parameters) == 0 {
		return "No parameters found in DCTL file"
	}

	var order []param.Category
	counts := make(map[param.Category]int)
	for _, p := range result.Parameters {
		if _, ok := counts[p.Category]; !ok {
			order = append(order, p.Category)
		}
		counts[p.Category]++
	}

	parts := make([]string, 0, len(order))
	for _, cat := range order {
		parts = append(parts, fmt.Sprintf("%d %s", counts[cat], cat))
	}
	return fmt.Sprintf("Found %d parameters: %s", len(result.Parameters), strings.Join(parts, ", "))
}

var numericSuffix = regexp.MustCompile(`\d+$`)

// wideRange is the slider span above which precision suffers
const wideRange = 100

// Suggest returns advisory improvements for a parsing result
func Suggest(result param.ParsingResult) []string {
	var suggestions []string

	for _, p := range result.Parameters {
		if numericSuffix.MatchString(p.Name) {
			suggestions = append(suggestions, "Consider grouping numerically suffixed parameters (e.g., color1, color2, color3)")
			break
		}
	}

	for _, p := range result.Parameters {
		if p.Type != param.UISliderFloat && p.Type != param.UISliderInt {
			continue
		}
		if p.Min == nil || p.Max == nil {
			continue
		}
		lo, okLo := p.Min.Float()
		hi, okHi := p.Max.Float()
		if okLo && okHi && hi-lo > wideRange {
			suggestions = append(suggestions, "Some sliders have very wide ranges - consider smaller ranges for better precision")
			break
		}
	}

	return suggestions
}
