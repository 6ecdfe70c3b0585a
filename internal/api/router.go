package api

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ernie/minictrl/internal/domain"
	"github.com/ernie/minictrl/internal/logging"
	"github.com/ernie/minictrl/internal/storage"
)

// RunningChecker reports whether a server's log is being followed
type RunningChecker interface {
	Running(name string) bool
}

// Router holds the HTTP routes and dependencies
type Router struct {
	mux     *http.ServeMux
	store   *storage.Store
	running RunningChecker
	wsHub   *WebSocketHub
	logger  zerolog.Logger
}

// NewRouter creates a new HTTP router. running may be nil when no logs are
// followed; gatherer may be nil to disable /metrics.
func NewRouter(store *storage.Store, running RunningChecker, gatherer prometheus.Gatherer) *Router {
	r := &Router{
		mux:     http.NewServeMux(),
		store:   store,
		running: running,
		wsHub:   NewWebSocketHub(),
		logger:  logging.Component("api"),
	}

	r.mux.HandleFunc("GET /api/servers", r.handleGetServers)
	r.mux.HandleFunc("GET /api/servers/{name}", r.handleGetServer)
	r.mux.HandleFunc("GET /api/servers/{name}/events", r.handleGetEvents)
	r.mux.HandleFunc("GET /api/servers/{name}/summary", r.handleGetSummary)
	r.mux.HandleFunc("GET /api/servers/{name}/unrecognized", r.handleGetUnrecognized)
	r.mux.HandleFunc("GET /api/servers/{name}/log", r.handleGetLog)
	r.mux.HandleFunc("GET /api/events/{id}/payload", r.handleGetEventPayload)

	r.mux.HandleFunc("GET /ws", r.handleWebSocket)

	if gatherer != nil {
		r.mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.mux.HandleFunc("GET /health", r.handleHealth)

	return r
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// CORS headers for API
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if req.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	r.mux.ServeHTTP(w, req)
}

// StartWebSocketHub runs the hub and forwards events to it until ctx is done
func (r *Router) StartWebSocketHub(ctx context.Context, events <-chan domain.Event) {
	go r.wsHub.Run(ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				r.wsHub.Broadcast(event)
			}
		}
	}()
}
