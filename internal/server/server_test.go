package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/dctlforge/pkg/events"
)

const gainScript = `DEFINE_UI_PARAMS(gain, "Gain", DCTLUI_SLIDER_FLOAT, 1.0, 0.0, 2.0, 0.01)
DEFINE_UI_PARAMS(invert, "Invert", DCTLUI_CHECK_BOX, FALSE)

__DEVICE__ float3 transform(int p_Width, int p_Height, int p_X, int p_Y, float p_R, float p_G, float p_B)
{
    return make_float3(p_R, p_G, p_B) * gain;
}
`

func newTestServer(t *testing.T, bus *events.EventBus) *httptest.Server {
	t.Helper()
	s, err := New(Options{CacheSize: 8, EventBus: bus})
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	resp, err := http.Post(url, "application/json", &buf)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func sliderJSON(id string, value float64) string {
	return fmt.Sprintf(`{"type":"slider","id":%q,"name":"exposure","label":"Exposure","enabled":true,"value":%g,"min":-4,"max":4,"step":0.1}`, id, value)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestGenerateEndpoint(t *testing.T) {
	bus := events.NewEventBus()
	defer bus.Shutdown()
	var generated []events.Event
	var mu sync.Mutex
	bus.Subscribe(events.CodeGenerated, func(e events.Event) {
		mu.Lock()
		generated = append(generated, e)
		mu.Unlock()
	})

	ts := newTestServer(t, bus)

	resp := post(t, ts.URL+"/api/generate", "["+sliderJSON("a", 1)+"]")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["code"], `DEFINE_UI_PARAMS(exposure, "Exposure", DCTLUI_SLIDER_FLOAT, 1, -4, 4, 0.1)`)
	assert.Contains(t, body["code"], "_powf(2.0f, exposure)")

	bus.Flush()
	mu.Lock()
	assert.Len(t, generated, 1)
	mu.Unlock()
}

func TestGenerateCachesIdenticalInput(t *testing.T) {
	s, err := New(Options{CacheSize: 4})
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	for i := 0; i < 3; i++ {
		resp := post(t, ts.URL+"/api/generate", "["+sliderJSON("a", 1)+"]")
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.Equal(t, 1, s.cache.Len())

	post(t, ts.URL+"/api/generate", "["+sliderJSON("a", 2)+"]")
	assert.Equal(t, 2, s.cache.Len())
}

func TestGenerateErrors(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := post(t, ts.URL+"/api/generate", `{"nope": true`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, ts.URL+"/api/generate", `[{"type":"dial","id":"x"}]`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, ts.URL+"/api/generate", "["+sliderJSON("dup", 1)+","+sliderJSON("dup", 2)+"]")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestParseEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := post(t, ts.URL+"/api/parse", map[string]string{"content": gainScript})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Result struct {
			TotalFound int `json:"totalFound"`
			Parameters []struct {
				Name         string      `json:"name"`
				DefaultValue interface{} `json:"defaultValue"`
			} `json:"parameters"`
		} `json:"result"`
		Groups []struct {
			Category string `json:"category"`
		} `json:"groups"`
		Summary string `json:"summary"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, 2, body.Result.TotalFound)
	assert.Equal(t, "gain", body.Result.Parameters[0].Name)
	assert.Equal(t, 1.0, body.Result.Parameters[0].DefaultValue)
	assert.Equal(t, false, body.Result.Parameters[1].DefaultValue)
	require.Len(t, body.Groups, 2)
	assert.Equal(t, "other", body.Groups[0].Category)
	assert.Equal(t, "Found 2 parameters: 1 other, 1 effects", body.Summary)
}

func TestEditEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := post(t, ts.URL+"/api/edit", map[string]interface{}{
		"content": gainScript,
		"edits":   map[string]interface{}{"gain": 1.5, "invert": true},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body editResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	expected := strings.Replace(gainScript, "1.0, 0.0", "1.5, 0.0", 1)
	expected = strings.Replace(expected, "FALSE", "TRUE", 1)
	assert.Equal(t, expected, body.Code)
	assert.Equal(t, []string{"gain", "invert"}, body.Modified)

	resp = post(t, ts.URL+"/api/edit", map[string]interface{}{
		"content": gainScript,
		"edits":   map[string]interface{}{"missing": 1},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = post(t, ts.URL+"/api/edit", map[string]interface{}{
		"content": gainScript,
		"edits":   map[string]interface{}{"gain": 9},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestValidateEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := post(t, ts.URL+"/api/validate", map[string]string{"name": "look.txt", "content": "x"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body validateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body.FileError, ".dctl extension")
	assert.False(t, body.Validation.IsValid)
	assert.False(t, body.Validation.HasParameters)
}

func TestWebSocketRepliesInOrder(t *testing.T) {
	ts := newTestServer(t, nil)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	const n = 10
	for i := 0; i < n; i++ {
		req := map[string]interface{}{
			"id":         fmt.Sprintf("req-%d", i),
			"parameters": json.RawMessage("[" + sliderJSON("a", float64(i)/10) + "]"),
		}
		if i == 4 {
			req["parameters"] = json.RawMessage(`[{"type":"bogus"}]`)
		}
		require.NoError(t, conn.WriteJSON(req))
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for i := 0; i < n; i++ {
		var reply wsReply
		require.NoError(t, conn.ReadJSON(&reply))
		assert.Equal(t, fmt.Sprintf("req-%d", i), reply.ID)
		if i == 4 {
			assert.NotEmpty(t, reply.Error)
			assert.Empty(t, reply.Code)
			continue
		}
		assert.Empty(t, reply.Error)
		assert.Contains(t, reply.Code, fmt.Sprintf("DCTLUI_SLIDER_FLOAT, %g, -4, 4, 0.1)", float64(i)/10))
	}
}

func TestStartAndStop(t *testing.T) {
	s, err := New(Options{})
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start("127.0.0.1:0") }()

	require.Eventually(t, func() bool { return s.Addr() != "" }, 2*time.Second, 10*time.Millisecond)
	resp, err := http.Get("http://" + s.Addr() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Stop(context.Background()))
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestStopBeforeStart(t *testing.T) {
	s, err := New(Options{})
	require.NoError(t, err)
	require.NoError(t, s.Stop(context.Background()))

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start("127.0.0.1:0") }()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start served after Stop")
	}
}
