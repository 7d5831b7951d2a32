package events

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	FileParsed      EventType = "file.parsed"
	ParameterEdited EventType = "parameter.edited"
	CodeGenerated   EventType = "code.generated"
	FileExported    EventType = "file.exported"
	WatchError      EventType = "watch.error"
)

type Event struct {
	ID        string
	Type      EventType
	Source    string // file path or client address the event concerns
	Timestamp time.Time
	Data      map[string]interface{}
}

type Handler func(event Event)

// WorkerPoolConfig holds configuration for the event bus worker pool
type WorkerPoolConfig struct {
	WorkerCount int // Number of worker goroutines (default: CPU cores)
	BufferSize  int // Channel buffer size (default: 256)
}

// DefaultWorkerPoolConfig returns the default configuration
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount: runtime.NumCPU(),
		BufferSize:  256,
	}
}

type eventTask struct {
	event   Event
	handler Handler
}

// EventBus fans published events out to subscribers on a worker pool. Handlers
// for one event may run concurrently and in any order.
type EventBus struct {
	handlers   map[EventType][]Handler
	mu         sync.RWMutex
	workerPool chan eventTask
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	pending    sync.WaitGroup
	config     WorkerPoolConfig
}

func NewEventBus() *EventBus {
	return NewEventBusWithConfig(DefaultWorkerPoolConfig())
}

func NewEventBusWithConfig(config WorkerPoolConfig) *EventBus {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	eb := &EventBus{
		handlers:   make(map[EventType][]Handler),
		workerPool: make(chan eventTask, config.BufferSize),
		ctx:        ctx,
		cancel:     cancel,
		config:     config,
	}

	for i := 0; i < config.WorkerCount; i++ {
		eb.wg.Add(1)
		go eb.worker()
	}

	return eb
}

func (eb *EventBus) worker() {
	defer eb.wg.Done()

	for {
		select {
		case task := <-eb.workerPool:
			eb.run(task.handler, task.event)
		case <-eb.ctx.Done():
			return
		}
	}
}

func (eb *EventBus) run(h Handler, e Event) {
	defer eb.pending.Done()
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "EventBus handler panic on %s: %v\n", e.Type, r)
		}
	}()
	h(e)
}

func (eb *EventBus) Subscribe(eventType EventType, handler Handler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
}

// Publish stamps the event with an id and time and queues it for every
// subscriber of its type
func (eb *EventBus) Publish(event Event) {
	event.Timestamp = time.Now()
	event.ID = uuid.NewString()

	eb.mu.RLock()
	handlers := eb.handlers[event.Type]
	eb.mu.RUnlock()

	for _, handler := range handlers {
		eb.pending.Add(1)
		select {
		case eb.workerPool <- eventTask{event: event, handler: handler}:
		default:
			// pool saturated
			go eb.run(handler, event)
		}
	}
}

// Flush blocks until every handler queued so far has returned
func (eb *EventBus) Flush() {
	eb.pending.Wait()
}

// Shutdown runs queued handlers to completion and stops the workers
func (eb *EventBus) Shutdown() {
	eb.Flush()
	eb.cancel()
	eb.wg.Wait()
}
