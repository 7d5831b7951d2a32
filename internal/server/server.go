// Package server exposes generation, extraction, editing and validation over
// HTTP, plus a websocket channel that streams generation replies in order.
package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/standardbeagle/dctlforge/internal/dctlfile"
	"github.com/standardbeagle/dctlforge/internal/generator"
	"github.com/standardbeagle/dctlforge/internal/param"
	"github.com/standardbeagle/dctlforge/internal/parser"
	"github.com/standardbeagle/dctlforge/pkg/events"
	"github.com/standardbeagle/dctlforge/pkg/ports"
)

// maxBodyBytes bounds request bodies; scripts are limited separately by Limits
const maxBodyBytes = 16 << 20

type Options struct {
	CacheSize int
	QueueSize int
	Limits    dctlfile.Limits
	Parser    *parser.Parser
	EventBus  *events.EventBus
}

type Server struct {
	router     *mux.Router
	server     *http.Server
	cache      *lru.Cache[string, string]
	parser     *parser.Parser
	limits     dctlfile.Limits
	queueSize  int
	eventBus   *events.EventBus
	wsUpgrader websocket.Upgrader
	conns      atomic.Int64

	mu   sync.Mutex
	addr string
}

func New(opts Options) (*Server, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = 128
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation cache: %w", err)
	}
	if opts.Parser == nil {
		opts.Parser = parser.New()
	}
	if opts.Limits.MaxSize == 0 && opts.Limits.Extension == "" {
		opts.Limits = dctlfile.DefaultLimits()
	}

	s := &Server{
		router:    mux.NewRouter(),
		cache:     cache,
		parser:    opts.Parser,
		limits:    opts.Limits,
		queueSize: opts.QueueSize,
		eventBus:  opts.EventBus,
		wsUpgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
	}
	s.setupRoutes()
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/generate", s.handleGenerate).Methods("POST")
	api.HandleFunc("/parse", s.handleParse).Methods("POST")
	api.HandleFunc("/edit", s.handleEdit).Methods("POST")
	api.HandleFunc("/validate", s.handleValidate).Methods("POST")

	s.router.HandleFunc("/ws", s.handleWebSocket).Methods("GET")
}

// Handler returns the routed handler wrapped in CORS headers
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.router)
}

// Generate renders params, reusing a cached rendering of an identical list
func (s *Server) Generate(params []param.Parameter) (string, error) {
	data, err := param.EncodeParameters(params)
	if err != nil {
		return "", fmt.Errorf("failed to encode parameters: %w", err)
	}
	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:])

	if code, ok := s.cache.Get(key); ok {
		return code, nil
	}
	code, err := generator.Build(params)
	if err != nil {
		return "", err
	}
	s.cache.Add(key, code)
	return code, nil
}

// Start listens on addr. When the port is taken a nearby free one is used;
// Addr reports where the server actually listens.
func (s *Server) Start(addr string) error {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port %q: %w", portStr, err)
	}
	if port != 0 {
		port, err = ports.FindAvailablePort(host, port)
		if err != nil {
			return fmt.Errorf("failed to find available port: %w", err)
		}
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.mu.Unlock()

	log.Printf("dctl server listening on http://%s", ln.Addr())
	if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Addr is the listening address, empty until Start has bound a port
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Stop shuts the server down. Stopping before Start makes a later Start
// return immediately.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) publish(t events.EventType, source string, data map[string]interface{}) {
	if s.eventBus != nil {
		s.eventBus.Publish(events.Event{Type: t, Source: source, Data: data})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
