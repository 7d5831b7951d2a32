package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// GradeScript is a small valid script with one declaration of each common kind
const GradeScript = `// simple grade
DEFINE_UI_PARAMS(exposure, "Exposure", DCTLUI_SLIDER_FLOAT, 0.0, -4.0, 4.0, 0.1)
DEFINE_UI_PARAMS(steps, "Steps", DCTLUI_SLIDER_INT, 2, 0, 8, 1)
DEFINE_UI_PARAMS(invert, "Invert", DCTLUI_CHECK_BOX, FALSE)
DEFINE_UI_PARAMS(mode, "Mode", DCTLUI_COMBO_BOX, 0, { MODE_SOFT, MODE_HARD }, { "Soft", "Hard" })

__DEVICE__ float3 transform(int p_Width, int p_Height, int p_X, int p_Y, float p_R, float p_G, float p_B)
{
    float3 rgb = make_float3(p_R, p_G, p_B);
    return rgb * _powf(2.0f, exposure);
}
`

// WriteFile writes content to name inside a fresh temp dir and returns the path
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// WaitForCondition polls condition every 10ms until it holds or timeout passes
func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if condition() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		<-ticker.C
	}
}

// RequireEventually fails the test when condition does not hold within timeout
func RequireEventually(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	t.Helper()
	require.True(t, WaitForCondition(t, timeout, condition), "Condition not met within %v: %s", timeout, msg)
}

// WaitForCount waits for counter to report expected
func WaitForCount(t *testing.T, timeout time.Duration, counter func() int, expected int) {
	t.Helper()
	RequireEventually(t, timeout, func() bool {
		return counter() == expected
	}, fmt.Sprintf("Expected count %d", expected))
}
