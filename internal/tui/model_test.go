package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/dctlforge/internal/roundtrip"
)

const script = `DEFINE_UI_PARAMS(gain, "Gain", DCTLUI_SLIDER_FLOAT, 1.0, 0.0, 2.0, 0.01)
DEFINE_UI_PARAMS(invert, "Invert", DCTLUI_CHECK_BOX, FALSE)

__DEVICE__ float3 transform(int p_Width, int p_Height, int p_X, int p_Y, float p_R, float p_G, float p_B)
{
    return make_float3(p_R, p_G, p_B) * gain;
}
`

type recorder struct {
	path string
	text string
	err  error
}

func (r *recorder) write(ctx context.Context, path, text string) error {
	r.path = path
	r.text = text
	return r.err
}

func newModel(t *testing.T) (Model, *roundtrip.Session, *recorder) {
	t.Helper()
	session := roundtrip.NewSession(nil)
	session.Load(script)
	rec := &recorder{}
	return New(session, "/tmp/look.dctl", WithWriter(rec.write)), session, rec
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m, cmd
}

func TestRowsFollowGroups(t *testing.T) {
	m, _, _ := newModel(t)

	require.Len(t, m.rows, 4)
	assert.Nil(t, m.rows[0].param)
	assert.Equal(t, "gain", m.rows[1].param.Name)
	assert.Nil(t, m.rows[2].param)
	assert.Equal(t, "invert", m.rows[3].param.Name)
}

func TestEditAndWrite(t *testing.T) {
	m, session, rec := newModel(t)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.editing)
	assert.Equal(t, "1.0", m.input.Value())

	m.input.SetValue("1.5")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.editing)
	assert.NoError(t, m.err)
	assert.True(t, session.Modified())
	assert.Contains(t, m.View(), "(default 1.0)")

	m, cmd := send(t, m, keyRunes("w"))
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())

	assert.Equal(t, "/tmp/look.dctl", rec.path)
	assert.Equal(t, strings.Replace(script, "1.0, 0.0", "1.5, 0.0", 1), rec.text)
	assert.Contains(t, m.status, "wrote")
}

func TestInvalidInputKeepsValue(t *testing.T) {
	m, session, _ := newModel(t)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	m.input.SetValue("7")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.ErrorIs(t, m.err, roundtrip.ErrInvalidValue)
	assert.False(t, session.Modified())
}

func TestEscapeCancelsEdit(t *testing.T) {
	m, session, _ := newModel(t)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	m.input.SetValue("1.5")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, m.editing)
	assert.False(t, session.Modified())
}

func TestResetKeys(t *testing.T) {
	m, session, _ := newModel(t)
	require.NoError(t, session.Set("gain", "1.5"))
	require.NoError(t, session.Set("invert", "true"))

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown}, keyRunes("r"))
	gain, _ := session.ParameterByName("gain")
	assert.False(t, gain.Modified())
	assert.True(t, session.Modified())

	_, _ = send(t, m, keyRunes("R"))
	assert.False(t, session.Modified())
}

func TestToggleGroupHidesParameters(t *testing.T) {
	m, _, _ := newModel(t)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyTab})
	require.Len(t, m.rows, 3)
	assert.Equal(t, 0, m.cursor)
	assert.Contains(t, m.View(), "▸")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Len(t, m.rows, 4)
}

func TestWriteErrorIsShown(t *testing.T) {
	m, _, rec := newModel(t)
	rec.err = errors.New("disk full")

	m, cmd := send(t, m, keyRunes("w"))
	m, _ = send(t, m, cmd())

	assert.EqualError(t, m.err, "disk full")
	assert.Contains(t, m.View(), "disk full")
}

func TestQuit(t *testing.T) {
	m, _, _ := newModel(t)

	_, cmd := send(t, m, keyRunes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestComboShowsOptionName(t *testing.T) {
	session := roundtrip.NewSession(nil)
	session.Load(`DEFINE_UI_PARAMS(mode, "Mode", DCTLUI_COMBO_BOX, 1, { MODE_A, MODE_B }, { "A", "B" })`)
	m := New(session, "x.dctl")

	assert.Contains(t, m.View(), "MODE_B")
}

func TestEditTargetsSelectedDeclaration(t *testing.T) {
	session := roundtrip.NewSession(nil)
	session.Load(`DEFINE_UI_PARAMS(gain, "Gain", DCTLUI_SLIDER_FLOAT, 1.0, 0.0, 2.0, 0.01)
DEFINE_UI_PARAMS(gain, "Gain", DCTLUI_SLIDER_FLOAT, 0.5, 0.0, 1.0, 0.1)
`)
	m := New(session, "/tmp/look.dctl")
	require.Len(t, m.rows, 3)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.editing)
	assert.Equal(t, "0.5", m.input.Value())

	m.input.SetValue("0.75")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NoError(t, m.err)

	lines := strings.Split(session.ModifiedCode(), "\n")
	assert.Equal(t, `DEFINE_UI_PARAMS(gain, "Gain", DCTLUI_SLIDER_FLOAT, 1.0, 0.0, 2.0, 0.01)`, lines[0])
	assert.Equal(t, `DEFINE_UI_PARAMS(gain, "Gain", DCTLUI_SLIDER_FLOAT, 0.75, 0.0, 1.0, 0.1)`, lines[1])
}
