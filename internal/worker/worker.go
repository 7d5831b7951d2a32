// Package worker runs script generation on a single background goroutine so
// callers never block on it. Requests are served strictly in arrival order.
package worker

import (
	"errors"
	"fmt"
	"sync"

	"github.com/standardbeagle/dctlforge/internal/generator"
	"github.com/standardbeagle/dctlforge/internal/param"
)

// ErrClosed is delivered for requests submitted after Close
var ErrClosed = errors.New("worker closed")

const defaultQueueSize = 64

// GenerateFunc turns a parameter snapshot into script text
type GenerateFunc func([]param.Parameter) (string, error)

// Reply is the single response to one submitted request
type Reply struct {
	Seq  uint64
	Code string
	Err  error
}

type request struct {
	seq    uint64
	params []param.Parameter
	reply  chan Reply
}

type Worker struct {
	generate GenerateFunc
	wake     chan struct{}

	mu      sync.Mutex
	pending []request
	seq     uint64
	closed  bool
	done    chan struct{}
}

// New starts a worker. A nil generate uses generator.Build. queueSize presizes
// the pending list; the list grows past it, so Submit never waits for the
// goroutine. queueSize <= 0 selects the default.
func New(generate GenerateFunc, queueSize int) *Worker {
	if generate == nil {
		generate = generator.Build
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	w := &Worker{
		generate: generate,
		wake:     make(chan struct{}, 1),
		pending:  make([]request, 0, queueSize),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

// Submit queues a generation of params and returns the channel its reply will
// arrive on. The list is cloned here, so the caller may keep mutating its own
// copy. Accepted requests cannot be cancelled; a caller that loses interest
// simply ignores the channel.
func (w *Worker) Submit(params []param.Parameter) <-chan Reply {
	reply := make(chan Reply, 1)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		reply <- Reply{Err: ErrClosed}
		return reply
	}
	w.seq++
	w.pending = append(w.pending, request{seq: w.seq, params: param.CloneAll(params), reply: reply})
	w.mu.Unlock()

	w.signal()
	return reply
}

// Close stops accepting requests, answers everything already queued and waits
// for the goroutine to exit
func (w *Worker) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.signal()
	<-w.done
}

func (w *Worker) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Worker) run() {
	defer close(w.done)
	for {
		req, ok := w.next()
		if !ok {
			return
		}
		req.reply <- w.serve(req)
	}
}

// next blocks until a request is pending. It reports false once the worker is
// closed and the list is drained.
func (w *Worker) next() (request, bool) {
	for {
		w.mu.Lock()
		if len(w.pending) > 0 {
			req := w.pending[0]
			w.pending[0] = request{}
			w.pending = w.pending[1:]
			w.mu.Unlock()
			return req, true
		}
		closed := w.closed
		w.mu.Unlock()
		if closed {
			return request{}, false
		}
		<-w.wake
	}
}

func (w *Worker) serve(req request) (r Reply) {
	r.Seq = req.seq
	defer func() {
		if p := recover(); p != nil {
			r.Err = fmt.Errorf("generation panic: %v", p)
		}
	}()
	r.Code, r.Err = w.generate(req.params)
	return r
}
