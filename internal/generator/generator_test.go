package generator

import (
	"strings"
	"testing"

	"github.com/standardbeagle/dctlforge/internal/ast"
	"github.com/standardbeagle/dctlforge/internal/param"
	"github.com/standardbeagle/dctlforge/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func common(id, name, label string, enabled bool) param.Common {
	return param.Common{ID: id, Name: name, Label: label, Enabled: enabled}
}

func declarationLines(code string) []string {
	var out []string
	for _, line := range strings.Split(code, "\n") {
		if strings.HasPrefix(line, param.Marker+"(") {
			out = append(out, line)
		}
	}
	return out
}

func TestGenerateCheckboxInvert(t *testing.T) {
	code := Generate([]param.Parameter{
		&param.Checkbox{Common: common("1", "invert_fx", "Invert", true), Value: true},
	})

	lines := declarationLines(code)
	require.Len(t, lines, 1)
	assert.Equal(t, `DEFINE_UI_PARAMS(invert_fx, "Invert", DCTLUI_CHECK_BOX, 1)`, lines[0])
	assert.Contains(t, code, "    if (invert_fx) {\n")
	assert.Contains(t, code, "out_rgb = make_float3(1.0f, 1.0f, 1.0f) - out_rgb;")
	assert.Contains(t, code, "out_rgb.x = _fmaxf(0.0f, out_rgb.x);")
}

func TestGenerateDisabledOnlyIsPassthrough(t *testing.T) {
	code := Generate([]param.Parameter{
		&param.Slider{Common: common("1", "exposure", "Exposure", false), Value: 1, Max: 2, Step: 0.1},
		&param.Checkbox{Common: common("2", "flip", "Flip", false)},
	})

	assert.Empty(t, declarationLines(code))
	assert.Contains(t, code, "    // No active parameters - passthrough\n    return in_rgb;\n}\n")
	assert.NotContains(t, code, "exposure")
	assert.NotContains(t, code, "_fmaxf(0.0f, out_rgb.x)")
}

func TestGenerateEmptyList(t *testing.T) {
	code := Generate(nil)
	assert.True(t, strings.HasPrefix(code, "// Generated by DCTL-GEN\n"))
	assert.Contains(t, code, "passthrough")
}

func TestGenerateIsDeterministic(t *testing.T) {
	params := []param.Parameter{
		&param.Slider{Common: common("a", "gamma", "Gamma", true), Value: 2.2, Min: 0.1, Max: 4, Step: 0.01},
		&param.ComboBox{Common: common("b", "mode", "Mode", true), Value: 1, Options: []string{"A", "B"}},
		&param.Color{Common: common("c", "tint", "Tint", true), Value: param.RGB{R: 1, G: 0.5, B: 0.25}},
	}
	assert.Equal(t, Generate(params), Generate(params))
}

func TestGenerateSliderSnippetsByName(t *testing.T) {
	tests := []struct {
		name    string
		snippet string
	}{
		{"Exposure_Boost", "out_rgb = out_rgb * _powf(2.0f, Exposure_Boost);"},
		{"gamma", "out_rgb.z = _powf(_fmaxf(out_rgb.z, 0.0f), 1.0f / gamma);"},
		{"contrast", "out_rgb = mid + (out_rgb - mid) * contrast;"},
		{"saturation", "* saturation;"},
		{"gain", "out_rgb = out_rgb * gain;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := Generate([]param.Parameter{
				&param.Slider{Common: common("1", tt.name, tt.name, true), Value: 1, Max: 2, Step: 0.1},
			})
			assert.Contains(t, code, tt.snippet)
		})
	}
}

func TestGenerateTypeLayouts(t *testing.T) {
	code := Generate([]param.Parameter{
		&param.Slider{Common: common("1", "gain", "Gain", true), Value: 1, Min: 0, Max: 2},
		&param.IntSlider{Common: common("2", "steps", "", true), Value: 3, Min: 0, Max: 8},
		&param.ValueBox{Common: common("3", "lift", "Lift", true), Value: 0.5},
		&param.Color{Common: common("4", "tint color", "Tint", true), Value: param.RGB{R: 1, G: 0.5, B: 0}},
	})

	assert.Equal(t, []string{
		`DEFINE_UI_PARAMS(gain, "Gain", DCTLUI_SLIDER_FLOAT, 1, 0, 2, 0.01)`,
		`DEFINE_UI_PARAMS(steps, "steps", DCTLUI_SLIDER_INT, 3, 0, 8, 1)`,
		`DEFINE_UI_PARAMS(lift, "Lift", DCTLUI_VALUE_BOX, 0.5)`,
		`DEFINE_UI_PARAMS(tint_color_r, "Tint Red", DCTLUI_SLIDER_FLOAT, 1, 0.0, 1.0, 0.01)`,
		`DEFINE_UI_PARAMS(tint_color_g, "Tint Green", DCTLUI_SLIDER_FLOAT, 0.5, 0.0, 1.0, 0.01)`,
		`DEFINE_UI_PARAMS(tint_color_b, "Tint Blue", DCTLUI_SLIDER_FLOAT, 0, 0.0, 1.0, 0.01)`,
	}, declarationLines(code))

	assert.Contains(t, code, "if (steps > 0) {")
	assert.Contains(t, code, "out_rgb = out_rgb + lift * 0.1f;")
	assert.Contains(t, code, "out_rgb.y = out_rgb.y * tint_color_g;")
}

func TestUnsetRangeFallsBack(t *testing.T) {
	code := Generate([]param.Parameter{
		&param.Slider{Common: common("1", "a", "A", true), Value: 0.5},
		&param.Slider{Common: common("2", "b", "B", true), Value: -0.5, Min: -1, Step: 0.1},
		&param.Slider{Common: common("3", "c", "C", true), Value: 1, Min: 2, Max: 1, Step: -0.5},
		&param.IntSlider{Common: common("4", "d", "D", true), Value: 2},
		&param.IntSlider{Common: common("5", "e", "E", true), Value: -2, Min: -4},
	})

	assert.Equal(t, []string{
		`DEFINE_UI_PARAMS(a, "A", DCTLUI_SLIDER_FLOAT, 0.5, 0, 1, 0.01)`,
		`DEFINE_UI_PARAMS(b, "B", DCTLUI_SLIDER_FLOAT, -0.5, -1, 1, 0.1)`,
		`DEFINE_UI_PARAMS(c, "C", DCTLUI_SLIDER_FLOAT, 1, 2, 1, -0.5)`,
		`DEFINE_UI_PARAMS(d, "D", DCTLUI_SLIDER_INT, 2, 0, 10, 1)`,
		`DEFINE_UI_PARAMS(e, "E", DCTLUI_SLIDER_INT, -2, -4, 10, 1)`,
	}, declarationLines(code))
}

func TestComboOptionsAlwaysMatchLabels(t *testing.T) {
	tests := []struct {
		name     string
		combo    *param.ComboBox
		expected string
	}{
		{
			"labels missing",
			&param.ComboBox{Options: []string{"REC709", "P3"}},
			`{REC709, P3}, {"REC709", "P3"})`,
		},
		{
			"options sanitized",
			&param.ComboBox{Options: []string{"Rec 709", "P3-D65"}, OptionLabels: []string{"Rec.709", "P3 D65"}},
			`{Rec709, P3D65}, {"Rec.709", "P3 D65"})`,
		},
		{
			"labels padded",
			&param.ComboBox{Options: []string{"A", "B", "C"}, OptionLabels: []string{"Alpha"}},
			`{A, B, C}, {"Alpha", "B", "C"})`,
		},
		{
			"fallback",
			&param.ComboBox{},
			`{opt0, opt1}, {"Option 0", "Option 1"})`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.combo.Common = common("c", "mode", "Mode", true)
			line := Declaration(tt.combo)
			assert.True(t, strings.HasSuffix(strings.TrimSpace(line), tt.expected), line)
		})
	}
}

func TestComboSwitchUsesResolvedOptions(t *testing.T) {
	code := Generate([]param.Parameter{
		&param.ComboBox{Common: common("c", "mode", "Mode", true), Options: []string{"A", "B", "C"}},
	})
	assert.Contains(t, code, "        case 0: // A\n            out_rgb = out_rgb * 1.0f;")
	assert.Contains(t, code, "        case 2: // C\n            out_rgb = out_rgb * 1.4f;")
}

func TestGeneratedDeclarationsParseBack(t *testing.T) {
	code := Generate([]param.Parameter{
		&param.Slider{Common: common("1", "exposure", "Exposure", true), Value: 0.5, Min: -4, Max: 4, Step: 0.1},
		&param.ComboBox{Common: common("2", "mode", "Mode", true), Value: 1, Options: []string{"A", "B"}, OptionLabels: []string{"Alpha", "Beta"}},
	})

	result := parser.ParseParameters(code)
	require.Len(t, result.Parameters, 2)
	assert.Empty(t, result.ParseErrors)
	assert.Equal(t, "Exposure", result.Parameters[0].DisplayName)
	assert.Equal(t, param.CategoryExposure, result.Parameters[0].Category)
	assert.Equal(t, []string{"A", "B"}, result.Parameters[1].Options)
}

func TestBuildRejectsDuplicateIDs(t *testing.T) {
	params := []param.Parameter{
		&param.Slider{Common: common("same", "a", "A", true), Max: 1},
		&param.Checkbox{Common: common("same", "b", "B", true)},
	}

	_, err := Build(params)
	assert.ErrorIs(t, err, ast.ErrDuplicateID)

	// disabled members never reach the builder
	params[1].Base().Enabled = false
	code, err := Build(params)
	require.NoError(t, err)
	assert.Equal(t, Generate(params), code)
}
