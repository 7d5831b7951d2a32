// Package ast holds an in-memory model of a DCTL script and a builder that
// enforces id uniqueness across all node collections.
package ast

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// ErrDuplicateID is returned when a node id is already used by any node
var ErrDuplicateID = errors.New("duplicate id")

// ParameterType is the core value type of a parameter
type ParameterType string

const (
	TypeFloat  ParameterType = "float"
	TypeInt    ParameterType = "int"
	TypeBool   ParameterType = "bool"
	TypeEnum   ParameterType = "enum"
	TypeColor  ParameterType = "color"
	TypeMatrix ParameterType = "matrix"
)

// Metadata carries editor hints for a parameter
type Metadata struct {
	Range        *[2]float64 `json:"range,omitempty"`
	Precision    *int        `json:"precision,omitempty"`
	DefaultValue interface{} `json:"defaultValue,omitempty"`
	Description  string      `json:"description,omitempty"`
}

type Parameter struct {
	ID          string        `json:"id"`
	Type        ParameterType `json:"type"`
	Name        string        `json:"name"`
	DisplayName string        `json:"displayName,omitempty"`
	Category    string        `json:"category,omitempty"`
	Metadata    *Metadata     `json:"metadata,omitempty"`
}

type Macro struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Body string `json:"body"`
}

type Function struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ReturnType string `json:"returnType,omitempty"`
	Body       string `json:"body"`
}

type LUT struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Format string `json:"format"`
	Size   int    `json:"size"`
}

// Script is the root of the model
type Script struct {
	Parameters []Parameter `json:"parameters"`
	Macros     []Macro     `json:"macros"`
	Functions  []Function  `json:"functions"`
	LUTs       []LUT       `json:"luts"`
}

// ValidationResult is shared by the builder and standalone validation
type ValidationResult struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	IsValid  bool     `json:"isValid"`
}

// Builder accumulates nodes. Insertion fails fast on a reused id.
type Builder struct {
	script Script
	ids    map[string]bool
}

func NewBuilder() *Builder {
	return &Builder{
		script: emptyScript(),
		ids:    make(map[string]bool),
	}
}

func emptyScript() Script {
	return Script{
		Parameters: []Parameter{},
		Macros:     []Macro{},
		Functions:  []Function{},
		LUTs:       []LUT{},
	}
}

func (b *Builder) claim(id, kind string) error {
	if b.ids[id] {
		return fmt.Errorf("%w: %s %s", ErrDuplicateID, kind, id)
	}
	b.ids[id] = true
	return nil
}

func (b *Builder) AddParameter(p Parameter) error {
	if err := b.claim(p.ID, "parameter"); err != nil {
		return err
	}
	b.script.Parameters = append(b.script.Parameters, p)
	return nil
}

func (b *Builder) AddMacro(m Macro) error {
	if err := b.claim(m.ID, "macro"); err != nil {
		return err
	}
	b.script.Macros = append(b.script.Macros, m)
	return nil
}

func (b *Builder) AddFunction(f Function) error {
	if err := b.claim(f.ID, "function"); err != nil {
		return err
	}
	b.script.Functions = append(b.script.Functions, f)
	return nil
}

func (b *Builder) AddLUT(l LUT) error {
	if err := b.claim(l.ID, "lut"); err != nil {
		return err
	}
	b.script.LUTs = append(b.script.LUTs, l)
	return nil
}

// Snapshot returns a deep copy of the current script
func (b *Builder) Snapshot() Script {
	data, err := json.Marshal(b.script)
	if err != nil {
		panic(fmt.Sprintf("ast: snapshot marshal: %v", err))
	}
	var out Script
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("ast: snapshot unmarshal: %v", err))
	}
	return out
}

// Validate checks the current script
func (b *Builder) Validate() ValidationResult {
	return Validate(b.script)
}

func (b *Builder) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.script)
}

// FromJSON rebuilds a builder from serialized form. Ids are not re-checked here;
// call Validate to find duplicates in untrusted input.
func FromJSON(data []byte) (*Builder, error) {
	script := emptyScript()
	if err := json.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("failed to decode script: %w", err)
	}
	b := &Builder{script: script, ids: make(map[string]bool)}
	for _, p := range script.Parameters {
		b.ids[p.ID] = true
	}
	for _, m := range script.Macros {
		b.ids[m.ID] = true
	}
	for _, f := range script.Functions {
		b.ids[f.ID] = true
	}
	for _, l := range script.LUTs {
		b.ids[l.ID] = true
	}
	return b, nil
}

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate reports missing or duplicated ids per collection and parameter names
// outside the identifier convention
func Validate(s Script) ValidationResult {
	var errs, warnings []string

	collect := func(kind string, ids []string) {
		seen := make(map[string]bool)
		for _, id := range ids {
			if id == "" {
				errs = append(errs, fmt.Sprintf("%s is missing required field: id", kind))
				continue
			}
			if seen[id] {
				errs = append(errs, fmt.Sprintf("Duplicate %s id detected: %s", kind, id))
			}
			seen[id] = true
		}
	}

	ids := func(n int, at func(int) string) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = at(i)
		}
		return out
	}

	collect("parameter", ids(len(s.Parameters), func(i int) string { return s.Parameters[i].ID }))
	collect("macro", ids(len(s.Macros), func(i int) string { return s.Macros[i].ID }))
	collect("function", ids(len(s.Functions), func(i int) string { return s.Functions[i].ID }))
	collect("lut", ids(len(s.LUTs), func(i int) string { return s.LUTs[i].ID }))

	for _, p := range s.Parameters {
		if !namePattern.MatchString(p.Name) {
			warnings = append(warnings, fmt.Sprintf("Parameter name '%s' does not follow alphanumeric/underscore convention.", p.Name))
		}
	}

	return ValidationResult{
		Errors:   errs,
		Warnings: warnings,
		IsValid:  len(errs) == 0,
	}
}
