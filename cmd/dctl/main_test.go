package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/dctlforge/internal/testutil"
)

const script = `// grade
DEFINE_UI_PARAMS(gain, "Gain", DCTLUI_SLIDER_FLOAT, 1.0, 0.0, 2.0, 0.01)
DEFINE_UI_PARAMS(lift_r, "Lift Red", DCTLUI_SLIDER_FLOAT, 0.0, -1.0, 1.0, 0.001)
DEFINE_UI_PARAMS(invert, "Invert", DCTLUI_CHECK_BOX, FALSE)

__DEVICE__ float3 transform(int p_Width, int p_Height, int p_X, int p_Y, float p_R, float p_G, float p_B)
{
    return make_float3(p_R, p_G, p_B) * gain;
}
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.toml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionAndSettings(t *testing.T) {
	out, err := run(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "dctl version dev\n", out)

	out, err = run(t, "--settings")
	require.NoError(t, err)
	assert.Contains(t, out, `addr = "127.0.0.1:7477"`)
}

func TestParseCommand(t *testing.T) {
	path := testutil.WriteFile(t, "look.dctl", script)

	out, err := run(t, "parse", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Found 3 parameters")
	assert.Contains(t, out, "lift_r")
	assert.Contains(t, out, "[-1.0, 1.0] step 0.001")
}

func TestParseJSONWithFilter(t *testing.T) {
	path := testutil.WriteFile(t, "look.dctl", script)

	out, err := run(t, "parse", path, "--json", "--filter", "re:^lift")
	require.NoError(t, err)

	var report struct {
		Result struct {
			Parameters []struct {
				Name string `json:"name"`
			} `json:"parameters"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Result.Parameters, 1)
	assert.Equal(t, "lift_r", report.Result.Parameters[0].Name)
}

func TestParseRejectsWrongExtension(t *testing.T) {
	path := testutil.WriteFile(t, "look.txt", script)

	_, err := run(t, "parse", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".dctl extension")
}

func TestEditToStdout(t *testing.T) {
	path := testutil.WriteFile(t, "look.dctl", script)

	out, err := run(t, "edit", path, "--set", "gain=1.5", "--set", "invert=true")
	require.NoError(t, err)

	expected := strings.Replace(script, "1.0, 0.0, 2.0", "1.5, 0.0, 2.0", 1)
	expected = strings.Replace(expected, "FALSE", "TRUE", 1)
	assert.Equal(t, expected, out)
}

func TestEditToFile(t *testing.T) {
	path := testutil.WriteFile(t, "look.dctl", script)
	target := filepath.Join(t.TempDir(), "out", "graded.dctl")

	_, err := run(t, "edit", path, "--set", "lift_r=-0.25", "-o", target)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), `DEFINE_UI_PARAMS(lift_r, "Lift Red", DCTLUI_SLIDER_FLOAT, -0.25, -1.0, 1.0, 0.001)`)

	original, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, script, string(original))
}

func TestEditErrors(t *testing.T) {
	path := testutil.WriteFile(t, "look.dctl", script)

	_, err := run(t, "edit", path, "--set", "gain")
	assert.ErrorContains(t, err, "expected name=value")

	_, err = run(t, "edit", path, "--set", "nope=1")
	assert.ErrorContains(t, err, "unknown parameter")

	_, err = run(t, "edit", path, "--set", "gian=1")
	assert.ErrorContains(t, err, "did you mean gain?")

	_, err = run(t, "edit", path, "--set", "gain=3")
	assert.ErrorContains(t, err, "must be within")
}

func TestGenerateCommand(t *testing.T) {
	project := testutil.WriteFile(t, "project.json", `{"parameters":[
		{"type":"slider","id":"a","name":"exposure","label":"Exposure","enabled":true,"value":0.5,"min":-4,"max":4,"step":0.1},
		{"type":"checkbox","id":"b","name":"off","label":"Off","enabled":false,"value":true}
	]}`)

	out, err := run(t, "generate", project)
	require.NoError(t, err)
	assert.Contains(t, out, `DEFINE_UI_PARAMS(exposure, "Exposure", DCTLUI_SLIDER_FLOAT, 0.5, -4, 4, 0.1)`)
	assert.NotContains(t, out, "DCTLUI_CHECK_BOX")

	target := filepath.Join(t.TempDir(), "look.dctl")
	_, err = run(t, "generate", project, "-o", target)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, out, string(data))
}

func TestGenerateDuplicateIDs(t *testing.T) {
	project := testutil.WriteFile(t, "project.json", `[
		{"type":"checkbox","id":"x","name":"a","label":"A","enabled":true,"value":true},
		{"type":"checkbox","id":"x","name":"b","label":"B","enabled":true,"value":false}
	]`)

	_, err := run(t, "generate", project)
	assert.ErrorContains(t, err, "duplicate")
}

func TestValidateCommand(t *testing.T) {
	good := testutil.WriteFile(t, "good.dctl", script)
	out, err := run(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "good.dctl: ok (3 parameters)")

	bad := testutil.WriteFile(t, "bad.dctl", "DEFINE_UI_PARAMS(a, \"A\", DCTLUI_CHECK_BOX, 1)\n")
	out, err = run(t, "validate", good, bad)
	require.Error(t, err)
	assert.Contains(t, out, "bad.dctl: invalid")
	assert.Contains(t, out, "Missing __DEVICE__ float3 transform function")
	assert.Contains(t, err.Error(), "1 of 2 files")
}

func TestParseSkipsDuplicateFiles(t *testing.T) {
	path := testutil.WriteFile(t, "look.dctl", script)

	out, err := run(t, "parse", path, path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "Found 3 parameters"))
	assert.Contains(t, out, "look.dctl is already loaded, skipping")
}

func TestValidateSkipsDuplicateFiles(t *testing.T) {
	path := testutil.WriteFile(t, "look.dctl", script)

	out, err := run(t, "validate", path, path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "look.dctl: ok (3 parameters)"))
}

func TestNewCommand(t *testing.T) {
	out, err := run(t, "new", "slider", "checkbox")
	require.NoError(t, err)

	var items []struct {
		Type    string `json:"type"`
		Enabled bool   `json:"enabled"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "slider", items[0].Type)
	assert.Equal(t, "checkbox", items[1].Type)
	assert.True(t, items[0].Enabled)

	project := filepath.Join(t.TempDir(), "project.json")
	_, err = run(t, "new", "-o", project)
	require.NoError(t, err)

	code, err := run(t, "generate", project)
	require.NoError(t, err)
	assert.Contains(t, code, "DCTLUI_SLIDER_INT")
	assert.Contains(t, code, "DCTLUI_COMBO_BOX")
	assert.Contains(t, code, "__DEVICE__ float3 transform(")

	_, err = run(t, "new", "knob")
	assert.ErrorContains(t, err, "unsupported parameter type")
}
