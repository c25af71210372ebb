package demoserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"pilotdeck/modules/platform/logger"
)

// Server is a stand-in backend for local development: it serves the
// scripted scenario over /ws so the UI can be exercised without a real
// pilot process.
type Server struct {
	mu         sync.RWMutex
	port       int
	addr       string
	hub        *Hub
	httpServer *http.Server
	log        *logger.Logger
	running    bool
}

// NewServer creates a demo backend on the given port. Port 0 picks a
// free one; Addr reports the bound address after Start.
func NewServer(port int, scenario []ScenarioStep, log *logger.Logger) *Server {
	return &Server{
		port: port,
		hub:  NewHub(scenario, log),
		log:  log,
	}
}

// Start binds the listener and begins serving
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("demo server already running")
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to bind demo server: %w", err)
	}
	s.addr = listener.Addr().String()

	s.httpServer = &http.Server{
		Handler:      s.createHandler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // websocket connections outlive any write timeout
		IdleTimeout:  60 * time.Second,
	}

	s.running = true
	s.log.Info("demo backend on ws://%s/ws", s.addr)

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("demo server error: %v", err)
		}
	}()

	return nil
}

// Stop shuts the server down and disconnects all clients
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.hub.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the bound address (host:port), empty before Start
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// IsRunning returns whether the server is running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// createHandler creates the HTTP handler with all routes
func (s *Server) createHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /ws", s.hub.ServeWS)

	return corsMiddleware(mux)
}

// handleRoot identifies the service for anyone poking it with a browser
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"service":"pilotdeck demo backend","websocket":"/ws","health":"/healthz","clients":%d}`,
		s.hub.ClientCount())
}

// handleHealth reports liveness and the connected client count
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","clients":%d}`, s.hub.ClientCount())
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
