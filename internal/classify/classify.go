// Package classify assigns a semantic category to a parameter from keywords in its
// name and label.
package classify

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/standardbeagle/dctlforge/internal/param"
)

//go:embed rules.toml
var defaultRulesFS embed.FS

// Rule maps a set of keywords to a category
type Rule struct {
	Category param.Category `toml:"category"`
	Keywords []string       `toml:"keywords"`
}

type rulesFile struct {
	Rules []Rule `toml:"rule"`
}

// Classifier tests an ordered rule list; the first matching rule wins
type Classifier struct {
	rules []Rule
}

var defaultClassifier = mustLoadDefault()

func mustLoadDefault() *Classifier {
	data, err := defaultRulesFS.ReadFile("rules.toml")
	if err != nil {
		panic(fmt.Sprintf("classify: embedded rules missing: %v", err))
	}
	c, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("classify: embedded rules invalid: %v", err))
	}
	return c
}

// Default returns the classifier built from the embedded rule table
func Default() *Classifier {
	return defaultClassifier
}

// New builds a classifier over rules, in order
func New(rules []Rule) *Classifier {
	c := &Classifier{rules: make([]Rule, len(rules))}
	for i, r := range rules {
		kw := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				kw = append(kw, k)
			}
		}
		c.rules[i] = Rule{Category: r.Category, Keywords: kw}
	}
	return c
}

// Parse decodes a TOML rule table
func Parse(data []byte) (*Classifier, error) {
	var file rulesFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse classifier rules: %w", err)
	}
	for i, r := range file.Rules {
		if !r.Category.Valid() {
			return nil, fmt.Errorf("rule %d: unknown category %q", i, r.Category)
		}
	}
	return New(file.Rules), nil
}

// LoadRules reads a rule table from path. An empty path yields the default table.
func LoadRules(path string) (*Classifier, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read classifier rules %s: %w", path, err)
	}
	return Parse(data)
}

// Rules returns a copy of the ordered rule list
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify matches "<name> <displayName>" in lower case against the rules
func (c *Classifier) Classify(name, displayName string) param.Category {
	combined := strings.ToLower(name + " " + displayName)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(combined, kw) {
				return r.Category
			}
		}
	}
	return param.CategoryOther
}

// Classify uses the default rule table
func Classify(name, displayName string) param.Category {
	return defaultClassifier.Classify(name, displayName)
}
