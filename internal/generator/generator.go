// Package generator renders a parameter list as a complete DCTL script: one
// declaration per enabled control plus a transform function that applies a
// heuristic adjustment for each of them.
package generator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/standardbeagle/dctlforge/internal/ast"
	"github.com/standardbeagle/dctlforge/internal/param"
)

const (
	defaultStep   = 0.01
	defaultIntMax = 10
)

var (
	unsafeName   = regexp.MustCompile(`[^A-Za-z0-9_]`)
	fallbackOpts = []string{"opt0", "opt1"}
	fallbackLbls = []string{"Option 0", "Option 1"}
)

// Generate returns the full script text for params. Disabled parameters are
// skipped entirely. The output depends only on the input list.
func Generate(params []param.Parameter) string {
	enabled := param.Enabled(params)

	var b strings.Builder
	b.WriteString("// Generated by DCTL-GEN\n")
	b.WriteString("// Professional Color Transformation for DaVinci Resolve\n\n")

	b.WriteString("// Parameter Declarations\n")
	b.WriteString(Declarations(enabled))
	b.WriteString("\n")

	b.WriteString(helperFunctions)

	b.WriteString("__DEVICE__ float3 transform(int p_Width, int p_Height, int p_X, int p_Y, float p_R, float p_G, float p_B)\n")
	b.WriteString("{\n")
	b.WriteString("    // Input color\n")
	b.WriteString("    float3 in_rgb = make_float3(p_R, p_G, p_B);\n\n")
	writeBody(&b, enabled)
	b.WriteString("\n}\n")

	return b.String()
}

// Build checks the enabled set for id collisions before generating. A collision
// means the caller assembled the list wrongly, so it is returned as an error
// rather than rendered.
func Build(params []param.Parameter) (string, error) {
	builder := ast.NewBuilder()
	for _, p := range param.Enabled(params) {
		if err := builder.AddParameter(toNode(p)); err != nil {
			return "", fmt.Errorf("invalid parameter list: %w", err)
		}
	}
	return Generate(params), nil
}

func toNode(p param.Parameter) ast.Parameter {
	c := p.Base()
	node := ast.Parameter{
		ID:          c.ID,
		Name:        c.Name,
		DisplayName: c.Label,
		Category:    string(c.Category),
		Metadata:    &ast.Metadata{Description: c.Description},
	}
	switch v := p.(type) {
	case *param.Slider:
		node.Type = ast.TypeFloat
		node.Metadata.DefaultValue = v.Value
		node.Metadata.Range = &[2]float64{v.Min, v.Max}
	case *param.IntSlider:
		node.Type = ast.TypeInt
		node.Metadata.DefaultValue = v.Value
		node.Metadata.Range = &[2]float64{v.Min, v.Max}
	case *param.Checkbox:
		node.Type = ast.TypeBool
		node.Metadata.DefaultValue = v.Value
	case *param.ValueBox:
		node.Type = ast.TypeFloat
		node.Metadata.DefaultValue = v.Value
	case *param.ComboBox:
		node.Type = ast.TypeEnum
		node.Metadata.DefaultValue = v.Value
	case *param.Color:
		node.Type = ast.TypeColor
		node.Metadata.DefaultValue = v.Value
	}
	return node
}

// Declarations renders the declaration lines for the enabled members of params
func Declarations(params []param.Parameter) string {
	var b strings.Builder
	for _, p := range param.Enabled(params) {
		b.WriteString(Declaration(p))
	}
	return b.String()
}

// Declaration renders one parameter as declaration lines, each ending in a
// newline. A color produces three lines.
func Declaration(p param.Parameter) string {
	c := p.Base()
	name := sanitizeName(c.Name)
	label := c.Label
	if label == "" {
		label = c.Name
	}

	switch v := p.(type) {
	case *param.Slider:
		hi := v.Max
		if hi == 0 {
			hi = 1
		}
		step := v.Step
		if step == 0 {
			step = defaultStep
		}
		return declare(name, label, param.UISliderFloat, num(v.Value), num(v.Min), num(hi), num(step))
	case *param.IntSlider:
		hi := v.Max
		if hi == 0 {
			hi = defaultIntMax
		}
		return declare(name, label, param.UISliderInt, num(v.Value), num(v.Min), num(hi), "1")
	case *param.Checkbox:
		flag := "0"
		if v.Value {
			flag = "1"
		}
		return declare(name, label, param.UICheckBox, flag)
	case *param.ValueBox:
		return declare(name, label, param.UIValueBox, num(v.Value))
	case *param.ComboBox:
		opts, labels := comboOptions(v)
		quoted := make([]string, len(labels))
		for i, l := range labels {
			quoted[i] = quote(l)
		}
		return declare(name, label, param.UIComboBox, num(v.Value),
			"{"+strings.Join(opts, ", ")+"}",
			"{"+strings.Join(quoted, ", ")+"}")
	case *param.Color:
		return declare(name+"_r", label+" Red", param.UISliderFloat, num(v.Value.R), "0.0", "1.0", "0.01") +
			declare(name+"_g", label+" Green", param.UISliderFloat, num(v.Value.G), "0.0", "1.0", "0.01") +
			declare(name+"_b", label+" Blue", param.UISliderFloat, num(v.Value.B), "0.0", "1.0", "0.01")
	}
	return ""
}

func declare(name, label string, ui param.UIType, args ...string) string {
	parts := append([]string{name, quote(label), string(ui)}, args...)
	return param.Marker + "(" + strings.Join(parts, ", ") + ")\n"
}

// comboOptions resolves the option identifiers and labels that both the
// declaration and the switch body use. The two lists always have equal length.
func comboOptions(c *param.ComboBox) ([]string, []string) {
	var opts []string
	for _, o := range c.Options {
		if s := sanitizeOption(o); s != "" {
			opts = append(opts, s)
		}
	}
	if len(opts) == 0 {
		return append([]string(nil), fallbackOpts...), append([]string(nil), fallbackLbls...)
	}

	// missing labels fall back to the option itself; extras are dropped
	labels := make([]string, len(opts))
	for i, o := range opts {
		labels[i] = o
		if i < len(c.OptionLabels) && c.OptionLabels[i] != "" {
			labels[i] = c.OptionLabels[i]
		}
	}
	return opts, labels
}

func sanitizeName(name string) string {
	return unsafeName.ReplaceAllString(name, "_")
}

func sanitizeOption(opt string) string {
	return unsafeName.ReplaceAllString(opt, "")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func num(f float64) string {
	return param.FormatNumber(f)
}
