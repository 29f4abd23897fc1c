package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bryanchriswhite/swaytab/internal/logger"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Server exposes the presentation-layer feed over HTTP
type Server struct {
	router   *mux.Router
	hub      *Hub
	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// NewServer creates the feed server
func NewServer(hub *Hub) *Server {
	s := &Server{
		router: mux.NewRouter(),
		hub:    hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// The server binds to loopback only
				return true
			},
		},
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/switcher/stream", s.handleSwitcherStream)
}

// Start serves the feed on the loopback interface
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	s.httpSrv = &http.Server{Addr: addr, Handler: s.router}
	logger.WithComponent("ui").Info().
		Str("addr", addr).
		Msg("Presentation feed listening")
	return s.httpSrv.ListenAndServe()
}

// Shutdown stops the feed server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// handleSwitcherStream upgrades to a websocket and streams switcher
// events until the front-end disconnects
func (s *Server) handleSwitcherStream(w http.ResponseWriter, r *http.Request) {
	log := logger.WithComponent("ui")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	updates := s.hub.Subscribe()
	defer s.hub.Unsubscribe(updates)

	// Catch a front-end up with the session in progress, if any
	if active := s.hub.Active(); active != nil {
		if err := conn.WriteJSON(active); err != nil {
			log.Debug().Err(err).Msg("WebSocket write failed")
			return
		}
	}

	for ev := range updates {
		if err := conn.WriteJSON(ev); err != nil {
			log.Debug().Err(err).Msg("WebSocket write failed")
			return
		}
	}
}
