// Package dctlfile validates, loads and exports DCTL script files.
package dctlfile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/standardbeagle/dctlforge/internal/param"
)

var (
	transformPattern   = regexp.MustCompile(`__DEVICE__\s+float3\s+transform\s*\([^)]+\)`)
	declarationPattern = regexp.MustCompile(param.Marker + `\s*\([^)]+\)`)
)

// nonDCTLCalls are C library spellings that DCTL replaces with _f-prefixed builtins
var nonDCTLCalls = []string{"max(", "min(", "abs(", "sqrt(", "pow("}

// Validation is the structural check of a script's text
type Validation struct {
	IsValid              bool     `json:"isValid"`
	HasTransformFunction bool     `json:"hasTransformFunction"`
	HasParameters        bool     `json:"hasParameters"`
	SyntaxErrors         []string `json:"syntaxErrors"`
	Warnings             []string `json:"warnings"`
}

// ValidateContent checks for the transform entry point and for declarations,
// then runs line heuristics. Only a missing transform makes the text invalid.
func ValidateContent(text string) Validation {
	v := Validation{
		IsValid:      true,
		SyntaxErrors: []string{},
		Warnings:     []string{},
	}

	v.HasTransformFunction = transformPattern.MatchString(text)
	if !v.HasTransformFunction {
		v.SyntaxErrors = append(v.SyntaxErrors, "Missing __DEVICE__ float3 transform function")
		v.IsValid = false
	}

	v.HasParameters = CountParameters(text) > 0
	if !v.HasParameters {
		v.Warnings = append(v.Warnings, "No "+param.Marker+" found - this DCTL has no user controls")
	}

	for i, line := range strings.Split(text, "\n") {
		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, "//") || strings.HasPrefix(t, "#") {
			continue
		}
		if strings.HasSuffix(t, ";") || strings.HasSuffix(t, "{") || strings.HasSuffix(t, "}") {
			continue
		}
		if strings.Contains(t, param.Marker) {
			continue
		}
		v.Warnings = append(v.Warnings, fmt.Sprintf("Line %d: Missing semicolon?", i+1))
	}

	for _, fn := range nonDCTLCalls {
		if strings.Contains(text, fn) {
			v.Warnings = append(v.Warnings, fmt.Sprintf("Found '%s' - should use DCTL equivalent like '_fmaxf(', '_fminf(', etc.", fn))
		}
	}

	return v
}

// CountParameters counts declaration calls without parsing them
func CountParameters(text string) int {
	return len(declarationPattern.FindAllStringIndex(text, -1))
}

// Content is a script split into its declaration block, the transform function
// and everything else
type Content struct {
	Parameters        string `json:"parameters"`
	HelperFunctions   string `json:"helperFunctions"`
	TransformFunction string `json:"transformFunction"`
	FullContent       string `json:"fullContent"`
}

// SplitContent sorts lines into sections. The transform function runs from its
// signature line until braces balance; comment and blank lines outside it are dropped.
func SplitContent(text string) Content {
	var params, helpers, transform strings.Builder
	inTransform := false
	depth := 0

	for _, line := range strings.Split(text, "\n") {
		t := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(t, param.Marker):
			params.WriteString(line + "\n")
		case strings.Contains(t, "__DEVICE__") && strings.Contains(t, "transform"):
			inTransform = true
			transform.WriteString(line + "\n")
			depth = braceDelta(line)
		case inTransform:
			transform.WriteString(line + "\n")
			depth += braceDelta(line)
			if depth <= 0 {
				inTransform = false
			}
		case t != "" && !strings.HasPrefix(t, "//"):
			helpers.WriteString(line + "\n")
		}
	}

	return Content{
		Parameters:        strings.TrimSpace(params.String()),
		HelperFunctions:   strings.TrimSpace(helpers.String()),
		TransformFunction: strings.TrimSpace(transform.String()),
		FullContent:       text,
	}
}

func braceDelta(line string) int {
	return strings.Count(line, "{") - strings.Count(line, "}")
}
