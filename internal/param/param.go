package param

import "fmt"

// Kind identifies a parameter variant
type Kind string

const (
	KindSlider    Kind = "slider"
	KindIntSlider Kind = "int_slider"
	KindCheckbox  Kind = "checkbox"
	KindValueBox  Kind = "value_box"
	KindComboBox  Kind = "combo_box"
	KindColor     Kind = "color"
)

// Kinds lists every variant in declaration order
var Kinds = []Kind{KindSlider, KindIntSlider, KindCheckbox, KindValueBox, KindComboBox, KindColor}

// Common holds the fields shared by every parameter variant
type Common struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Description string   `json:"description,omitempty"`
	Enabled     bool     `json:"enabled"`
	Category    Category `json:"category,omitempty"`
}

// Parameter is a single user-configurable control. The set of implementations is
// closed: Slider, IntSlider, Checkbox, ValueBox, ComboBox and Color.
type Parameter interface {
	Kind() Kind
	Base() *Common
	sealed()
}

// Slider is a float range control
type Slider struct {
	Common
	Value float64 `json:"value"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Step  float64 `json:"step"`
}

// IntSlider is an integer range control with an implicit step of 1
type IntSlider struct {
	Common
	Value float64 `json:"value"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Checkbox is a boolean toggle
type Checkbox struct {
	Common
	Value bool `json:"value"`
}

// ValueBox is an unconstrained float entry
type ValueBox struct {
	Common
	Value float64 `json:"value"`
}

// ComboBox is an enum selector. Value is the selected index.
type ComboBox struct {
	Common
	Value        float64  `json:"value"`
	Options      []string `json:"options"`
	OptionLabels []string `json:"optionLabels"`
}

// RGB is a color with channels in [0,1]
type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Color is emitted as three float sliders, one per channel
type Color struct {
	Common
	Value RGB `json:"value"`
}

func (*Slider) Kind() Kind    { return KindSlider }
func (*IntSlider) Kind() Kind { return KindIntSlider }
func (*Checkbox) Kind() Kind  { return KindCheckbox }
func (*ValueBox) Kind() Kind  { return KindValueBox }
func (*ComboBox) Kind() Kind  { return KindComboBox }
func (*Color) Kind() Kind     { return KindColor }

func (p *Slider) Base() *Common    { return &p.Common }
func (p *IntSlider) Base() *Common { return &p.Common }
func (p *Checkbox) Base() *Common  { return &p.Common }
func (p *ValueBox) Base() *Common  { return &p.Common }
func (p *ComboBox) Base() *Common  { return &p.Common }
func (p *Color) Base() *Common     { return &p.Common }

func (*Slider) sealed()    {}
func (*IntSlider) sealed() {}
func (*Checkbox) sealed()  {}
func (*ValueBox) sealed()  {}
func (*ComboBox) sealed()  {}
func (*Color) sealed()     {}

// Enabled returns the parameters whose bypass flag is off, preserving order
func Enabled(params []Parameter) []Parameter {
	out := make([]Parameter, 0, len(params))
	for _, p := range params {
		if p != nil && p.Base().Enabled {
			out = append(out, p)
		}
	}
	return out
}

// Clone returns a deep copy so the result shares no memory with p
func Clone(p Parameter) Parameter {
	switch v := p.(type) {
	case *Slider:
		c := *v
		return &c
	case *IntSlider:
		c := *v
		return &c
	case *Checkbox:
		c := *v
		return &c
	case *ValueBox:
		c := *v
		return &c
	case *ComboBox:
		c := *v
		c.Options = append([]string(nil), v.Options...)
		c.OptionLabels = append([]string(nil), v.OptionLabels...)
		return &c
	case *Color:
		c := *v
		return &c
	case nil:
		return nil
	default:
		panic(fmt.Sprintf("param: unhandled parameter variant %T", p))
	}
}

// CloneAll snapshots a parameter list
func CloneAll(params []Parameter) []Parameter {
	out := make([]Parameter, len(params))
	for i, p := range params {
		out[i] = Clone(p)
	}
	return out
}
