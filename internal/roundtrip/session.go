package roundtrip

import (
	"fmt"
	"strings"
	"sync"

	"github.com/standardbeagle/dctlforge/internal/param"
	"github.com/standardbeagle/dctlforge/internal/parser"
)

// Session is the editing state of one loaded script
type Session struct {
	mu       sync.RWMutex
	parser   *parser.Parser
	original string
	result   param.ParsingResult
	params   []*param.ParsedParameter
	groups   []param.Group
}

// NewSession creates an empty session. A nil parser selects the default one.
func NewSession(p *parser.Parser) *Session {
	if p == nil {
		p = parser.New()
	}
	return &Session{parser: p}
}

// Load parses content and replaces all state, including group expansion. The
// returned result is a snapshot; later edits do not show through it.
func (s *Session) Load(content string) param.ParsingResult {
	result := s.parser.Parse(content)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.original = content
	s.result = result
	s.params = result.Parameters
	s.groups = param.GroupParameters(s.params, nil)
	return s.snapshot()
}

func (s *Session) Original() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.original
}

// Result returns the parsing result with the current values
func (s *Session) Result() param.ParsingResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Parameters returns copies of the parsed parameters in source order
func (s *Session) Parameters() []*param.ParsedParameter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyParams(s.params)
}

func (s *Session) Parameter(id string) (*param.ParsedParameter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.params {
		if p.ID == id {
			c := *p
			return &c, true
		}
	}
	return nil, false
}

func (s *Session) ParameterByName(name string) (*param.ParsedParameter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p := s.byName(name); p != nil {
		c := *p
		return &c, true
	}
	return nil, false
}

func (s *Session) ByCategory(cat param.Category) []*param.ParsedParameter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*param.ParsedParameter
	for _, p := range s.params {
		if p.Category == cat {
			c := *p
			out = append(out, &c)
		}
	}
	return out
}

// Update sets the current value of the parameter with the given id
func (s *Session) Update(id string, v param.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.byID(id)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrUnknownParameter, id)
	}
	p.CurrentValue = v
	s.regroup()
	return nil
}

// UpdateByName is Update addressed by declaration name. When a name is declared
// twice the first declaration wins.
func (s *Session) UpdateByName(name string, v param.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.byName(name)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrUnknownParameter, name)
	}
	p.CurrentValue = v
	s.regroup()
	return nil
}

// Set parses text for the named parameter and applies it
func (s *Session) Set(name, text string) error {
	p, ok := s.ParameterByName(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParameter, name)
	}
	v, err := ParseInput(p, text)
	if err != nil {
		return err
	}
	return s.UpdateByName(name, v)
}

func (s *Session) Reset(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.byID(id)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrUnknownParameter, id)
	}
	p.CurrentValue = p.DefaultValue
	s.regroup()
	return nil
}

func (s *Session) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.params {
		p.CurrentValue = p.DefaultValue
	}
	s.regroup()
}

// Modified reports whether any parameter differs from its default
func (s *Session) Modified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.params {
		if p.Modified() {
			return true
		}
	}
	return false
}

// ModifiedCode returns the original text with every modified declaration
// rewritten. Unmodified declarations are left exactly as they were loaded.
func (s *Session) ModifiedCode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code := s.original
	for _, p := range s.params {
		if !p.Modified() {
			continue
		}
		code = strings.Replace(code, p.OriginalDefinition, Definition(p), 1)
	}
	return code
}

// Groups returns the category groups with copied parameters
func (s *Session) Groups() []param.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]param.Group, len(s.groups))
	for i, g := range s.groups {
		g.Parameters = copyParams(g.Parameters)
		out[i] = g
	}
	return out
}

// ToggleGroup flips the expansion flag of one category group
func (s *Session) ToggleGroup(cat param.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.groups {
		if s.groups[i].Category == cat {
			s.groups[i].IsExpanded = !s.groups[i].IsExpanded
		}
	}
}

func (s *Session) snapshot() param.ParsingResult {
	r := s.result
	r.Parameters = copyParams(s.params)
	r.ParseErrors = append([]param.ParseError{}, s.result.ParseErrors...)
	r.Warnings = append([]string{}, s.result.Warnings...)
	return r
}

func copyParams(params []*param.ParsedParameter) []*param.ParsedParameter {
	out := make([]*param.ParsedParameter, len(params))
	for i, p := range params {
		c := *p
		out[i] = &c
	}
	return out
}

func (s *Session) regroup() {
	s.groups = param.GroupParameters(s.params, s.groups)
}

func (s *Session) byID(id string) *param.ParsedParameter {
	for _, p := range s.params {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Session) byName(name string) *param.ParsedParameter {
	for _, p := range s.params {
		if p.Name == name {
			return p
		}
	}
	return nil
}
