package worker

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/standardbeagle/dctlforge/internal/generator"
	"github.com/standardbeagle/dctlforge/internal/param"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slider(id string, v float64) param.Parameter {
	return &param.Slider{
		Common: param.Common{ID: id, Name: "gain", Label: "Gain", Enabled: true},
		Value:  v, Max: 10, Step: 0.1,
	}
}

func TestRepliesArriveInOrder(t *testing.T) {
	var mu sync.Mutex
	var seen []float64
	gen := func(params []param.Parameter) (string, error) {
		v := params[0].(*param.Slider).Value
		mu.Lock()
		seen = append(seen, v)
		mu.Unlock()
		return fmt.Sprintf("%g", v), nil
	}

	w := New(gen, 4)
	defer w.Close()

	var replies []<-chan Reply
	for i := 0; i < 20; i++ {
		replies = append(replies, w.Submit([]param.Parameter{slider("a", float64(i))}))
	}

	for i, ch := range replies {
		select {
		case r := <-ch:
			require.NoError(t, r.Err)
			assert.Equal(t, uint64(i+1), r.Seq)
			assert.Equal(t, fmt.Sprintf("%d", i), r.Code)
		case <-time.After(2 * time.Second):
			t.Fatalf("reply %d not delivered", i)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range seen {
		assert.Equal(t, float64(i), v)
	}
}

func TestSubmitSnapshotsParameters(t *testing.T) {
	release := make(chan struct{})
	gen := func(params []param.Parameter) (string, error) {
		<-release
		return generator.Generate(params), nil
	}

	w := New(gen, 1)
	defer w.Close()

	p := slider("a", 0.5)
	ch := w.Submit([]param.Parameter{p})
	p.(*param.Slider).Value = 9
	close(release)

	r := <-ch
	require.NoError(t, r.Err)
	assert.Contains(t, r.Code, "DCTLUI_SLIDER_FLOAT, 0.5,")
}

func TestDefaultGeneratorReportsDuplicateIDs(t *testing.T) {
	w := New(nil, 0)
	defer w.Close()

	r := <-w.Submit([]param.Parameter{slider("x", 1), slider("x", 2)})
	assert.Error(t, r.Err)
	assert.Empty(t, r.Code)

	r = <-w.Submit([]param.Parameter{slider("x", 1)})
	require.NoError(t, r.Err)
	assert.Contains(t, r.Code, "__DEVICE__ float3 transform(")
}

func TestPanicBecomesError(t *testing.T) {
	w := New(func([]param.Parameter) (string, error) { panic("boom") }, 1)
	defer w.Close()

	r := <-w.Submit(nil)
	assert.ErrorContains(t, r.Err, "boom")

	// the goroutine survives
	r = <-w.Submit(nil)
	assert.ErrorContains(t, r.Err, "boom")
}

func TestCloseDrainsQueue(t *testing.T) {
	w := New(func(p []param.Parameter) (string, error) { return "ok", nil }, 8)

	var replies []<-chan Reply
	for i := 0; i < 5; i++ {
		replies = append(replies, w.Submit(nil))
	}
	w.Close()
	w.Close()

	for _, ch := range replies {
		assert.Equal(t, "ok", (<-ch).Code)
	}
	assert.ErrorIs(t, (<-w.Submit(nil)).Err, ErrClosed)
}

func TestSubmitDoesNotWaitForGeneration(t *testing.T) {
	release := make(chan struct{})
	w := New(func([]param.Parameter) (string, error) {
		<-release
		return "ok", nil
	}, 1)

	submitted := make(chan []<-chan Reply)
	go func() {
		var replies []<-chan Reply
		for i := 0; i < 100; i++ {
			replies = append(replies, w.Submit(nil))
		}
		submitted <- replies
	}()

	var replies []<-chan Reply
	select {
	case replies = <-submitted:
	case <-time.After(2 * time.Second):
		t.Fatal("Submit blocked behind a busy generator")
	}

	close(release)
	w.Close()
	for i, ch := range replies {
		r := <-ch
		assert.Equal(t, uint64(i+1), r.Seq)
		assert.Equal(t, "ok", r.Code)
	}
}
