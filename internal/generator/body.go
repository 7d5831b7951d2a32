package generator

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/dctlforge/internal/param"
)

func writeBody(b *strings.Builder, enabled []param.Parameter) {
	if len(enabled) == 0 {
		b.WriteString("    // No active parameters - passthrough\n    return in_rgb;")
		return
	}

	b.WriteString("    float3 out_rgb = in_rgb;\n\n")
	for _, p := range enabled {
		writeSnippet(b, p)
	}

	b.WriteString("    // Clamp output to valid range\n")
	b.WriteString("    out_rgb.x = _fmaxf(0.0f, out_rgb.x);\n")
	b.WriteString("    out_rgb.y = _fmaxf(0.0f, out_rgb.y);\n")
	b.WriteString("    out_rgb.z = _fmaxf(0.0f, out_rgb.z);\n\n")
	b.WriteString("    return out_rgb;")
}

func writeSnippet(b *strings.Builder, p param.Parameter) {
	orig := p.Base().Name
	name := sanitizeName(orig)

	switch v := p.(type) {
	case *param.Slider:
		lower := strings.ToLower(orig)
		switch {
		case strings.Contains(lower, "exposure"):
			fmt.Fprintf(b, "    // Exposure adjustment using %s\n", orig)
			fmt.Fprintf(b, "    out_rgb = out_rgb * _powf(2.0f, %s);\n\n", name)
		case strings.Contains(lower, "gamma"):
			fmt.Fprintf(b, "    // Gamma correction using %s\n", orig)
			for _, ch := range []string{"x", "y", "z"} {
				fmt.Fprintf(b, "    out_rgb.%s = _powf(_fmaxf(out_rgb.%s, 0.0f), 1.0f / %s);\n", ch, ch, name)
			}
			b.WriteString("\n")
		case strings.Contains(lower, "contrast"):
			// scoped so two contrast sliders do not redeclare mid
			fmt.Fprintf(b, "    // Contrast adjustment using %s\n", orig)
			b.WriteString("    {\n")
			b.WriteString("        float3 mid = make_float3(0.18f, 0.18f, 0.18f);\n")
			fmt.Fprintf(b, "        out_rgb = mid + (out_rgb - mid) * %s;\n", name)
			b.WriteString("    }\n\n")
		case strings.Contains(lower, "saturation"):
			fmt.Fprintf(b, "    // Saturation adjustment using %s\n", orig)
			b.WriteString("    {\n")
			b.WriteString("        float luma = 0.299f * out_rgb.x + 0.587f * out_rgb.y + 0.114f * out_rgb.z;\n")
			fmt.Fprintf(b, "        out_rgb = make_float3(luma, luma, luma) + (out_rgb - make_float3(luma, luma, luma)) * %s;\n", name)
			b.WriteString("    }\n\n")
		default:
			fmt.Fprintf(b, "    // Generic adjustment using %s\n", orig)
			fmt.Fprintf(b, "    out_rgb = out_rgb * %s;\n\n", name)
		}

	case *param.IntSlider:
		fmt.Fprintf(b, "    // Integer parameter %s (value: %s)\n", orig, num(v.Value))
		fmt.Fprintf(b, "    if (%s > 0) {\n", name)
		fmt.Fprintf(b, "        out_rgb = out_rgb * (1.0f + %s * 0.1f);\n", name)
		b.WriteString("    }\n\n")

	case *param.Checkbox:
		fmt.Fprintf(b, "    // Boolean toggle %s\n", orig)
		fmt.Fprintf(b, "    if (%s) {\n", name)
		b.WriteString("        // Apply effect when enabled\n")
		b.WriteString("        out_rgb = make_float3(1.0f, 1.0f, 1.0f) - out_rgb; // Invert\n")
		b.WriteString("    }\n\n")

	case *param.Color:
		fmt.Fprintf(b, "    // Color mixer using %s\n", orig)
		fmt.Fprintf(b, "    out_rgb.x = out_rgb.x * %s_r;\n", name)
		fmt.Fprintf(b, "    out_rgb.y = out_rgb.y * %s_g;\n", name)
		fmt.Fprintf(b, "    out_rgb.z = out_rgb.z * %s_b;\n\n", name)

	case *param.ComboBox:
		opts, _ := comboOptions(v)
		fmt.Fprintf(b, "    // Combo box selection %s\n", orig)
		fmt.Fprintf(b, "    switch (%s) {\n", name)
		for i, opt := range opts {
			fmt.Fprintf(b, "        case %d: // %s\n", i, opt)
			fmt.Fprintf(b, "            out_rgb = out_rgb * %.1ff;\n", 1.0+float64(i)*0.2)
			b.WriteString("            break;\n")
		}
		b.WriteString("        default:\n")
		b.WriteString("            break;\n")
		b.WriteString("    }\n\n")

	case *param.ValueBox:
		fmt.Fprintf(b, "    // Value box %s\n", orig)
		fmt.Fprintf(b, "    out_rgb = out_rgb + %s * 0.1f;\n\n", name)
	}
}

const helperFunctions = `
// Helper functions for color transformations

__DEVICE__ float3 rgb_to_hsv(float3 rgb) {
    float max_val = _fmaxf(_fmaxf(rgb.x, rgb.y), rgb.z);
    float min_val = _fminf(_fminf(rgb.x, rgb.y), rgb.z);
    float delta = max_val - min_val;

    float3 hsv;
    hsv.z = max_val;

    if (max_val > 0.0f) {
        hsv.y = delta / max_val;
    } else {
        hsv.y = 0.0f;
    }

    if (delta > 0.0f) {
        if (max_val == rgb.x) {
            hsv.x = (rgb.y - rgb.z) / delta;
        } else if (max_val == rgb.y) {
            hsv.x = 2.0f + (rgb.z - rgb.x) / delta;
        } else {
            hsv.x = 4.0f + (rgb.x - rgb.y) / delta;
        }
        hsv.x *= 60.0f;
        if (hsv.x < 0.0f) hsv.x += 360.0f;
    } else {
        hsv.x = 0.0f;
    }

    return hsv;
}

__DEVICE__ float3 hsv_to_rgb(float3 hsv) {
    float c = hsv.z * hsv.y;
    float h_prime = hsv.x / 60.0f;
    float x = c * (1.0f - _fabsf(_fmodf(h_prime, 2.0f) - 1.0f));

    float3 rgb1;
    if (h_prime >= 0.0f && h_prime < 1.0f) {
        rgb1 = make_float3(c, x, 0.0f);
    } else if (h_prime >= 1.0f && h_prime < 2.0f) {
        rgb1 = make_float3(x, c, 0.0f);
    } else if (h_prime >= 2.0f && h_prime < 3.0f) {
        rgb1 = make_float3(0.0f, c, x);
    } else if (h_prime >= 3.0f && h_prime < 4.0f) {
        rgb1 = make_float3(0.0f, x, c);
    } else if (h_prime >= 4.0f && h_prime < 5.0f) {
        rgb1 = make_float3(x, 0.0f, c);
    } else {
        rgb1 = make_float3(c, 0.0f, x);
    }

    float m = hsv.z - c;
    return make_float3(rgb1.x + m, rgb1.y + m, rgb1.z + m);
}

`
