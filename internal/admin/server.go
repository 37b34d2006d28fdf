// HTTP server exposing the read-only simulation state
package admin

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rescuesim/internal/logging"
	"rescuesim/internal/metrics"
	"rescuesim/internal/sim"
)

// pushInterval is how often the websocket feed sends a snapshot.
const pushInterval = 500 * time.Millisecond

//go:embed templates/index.html
var content embed.FS

// Server serves the browser view, the JSON state endpoints the view polls,
// a websocket snapshot feed, and prometheus metrics. All endpoints are
// read-only with respect to the simulation.
type Server struct {
	Sim       *sim.Simulator
	tpl       *template.Template
	collector *metrics.Collector
	upgrader  websocket.Upgrader
}

// NewServer creates a Server for a simulator. collector may be nil to
// disable the /metrics endpoint.
func NewServer(simulator *sim.Simulator, collector *metrics.Collector) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	return &Server{Sim: simulator, tpl: tpl, collector: collector}
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/events", s.handleEvents)
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealthz)
	if s.collector != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.collector.Registry(), promhttp.HandlerOpts{}))
	}
}

// Start serves until ctx is done, then shuts the server down.
func (s *Server) Start(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	s.routes(mux)
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	return srv.ListenAndServe()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.Sim.Snapshot()
	s.tpl.Execute(w, snap)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Sim.Snapshot())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Sim.Series())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Sim.Events())
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"status": "ok", "tick": s.Sim.Tick()})
}

// handleWS streams snapshots over a websocket until the client disconnects.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(pushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := conn.WriteJSON(s.Sim.Snapshot()); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}
