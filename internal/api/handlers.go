package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ernie/minictrl/internal/collector"
	"github.com/ernie/minictrl/internal/domain"
	"github.com/ernie/minictrl/internal/storage"
)

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeStoreError maps storage errors onto responses
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrServerNotFound) {
		writeError(w, http.StatusNotFound, "server not found")
		return
	}
	if errors.Is(err, storage.ErrPayloadNotFound) {
		writeError(w, http.StatusNotFound, "payload not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

// serverResponse is a stored server plus its live follow state
type serverResponse struct {
	domain.Server
	Running bool `json:"running"`
}

func (r *Router) toResponse(srv domain.Server) serverResponse {
	resp := serverResponse{Server: srv}
	if r.running != nil {
		resp.Running = r.running.Running(srv.Name)
	}
	return resp
}

// handleGetServers returns all servers
func (r *Router) handleGetServers(w http.ResponseWriter, req *http.Request) {
	servers, err := r.store.GetServers(req.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	resp := make([]serverResponse, len(servers))
	for i, srv := range servers {
		resp[i] = r.toResponse(srv)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetServer returns a single server
func (r *Router) handleGetServer(w http.ResponseWriter, req *http.Request) {
	srv, err := r.store.GetServerByName(req.Context(), req.PathValue("name"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, r.toResponse(*srv))
}

// handleGetEvents returns recent events, optionally filtered by kind
func (r *Router) handleGetEvents(w http.ResponseWriter, req *http.Request) {
	kind := req.URL.Query().Get("kind")
	if !validateKind(kind) {
		writeError(w, http.StatusBadRequest, "invalid kind")
		return
	}
	limit := parseLimit(req, 50, 500)

	events, err := r.store.GetRecentEvents(req.Context(), req.PathValue("name"), kind, limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// handleGetEventPayload returns an event's raw payload exactly as logged
func (r *Router) handleGetEventPayload(w http.ResponseWriter, req *http.Request) {
	payload, err := r.store.GetEventPayload(req.Context(), req.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// handleGetSummary returns per-kind event counts
func (r *Router) handleGetSummary(w http.ResponseWriter, req *http.Request) {
	summary, err := r.store.GetServerSummary(req.Context(), req.PathValue("name"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleGetUnrecognized returns recently quarantined lines
func (r *Router) handleGetUnrecognized(w http.ResponseWriter, req *http.Request) {
	limit := parseLimit(req, 50, 500)
	lines, err := r.store.GetUnrecognizedLines(req.Context(), req.PathValue("name"), limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

// handleGetLog returns the raw tail of a server's log file
func (r *Router) handleGetLog(w http.ResponseWriter, req *http.Request) {
	srv, err := r.store.GetServerByName(req.Context(), req.PathValue("name"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if srv.LogPath == "" || strings.HasSuffix(srv.LogPath, ".gz") || strings.HasSuffix(srv.LogPath, ".zst") {
		writeError(w, http.StatusNotFound, "no live log for server")
		return
	}

	n := parseBounded(req, "lines", 100, 1000)
	lines, err := collector.ReadLastNLines(srv.LogPath, n)
	if err != nil {
		r.logger.Warn().Err(err).Str("server", srv.Name).Msg("Error reading log tail")
		writeError(w, http.StatusInternalServerError, "failed to read log")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"server": srv.Name, "lines": lines})
}

// handleHealth returns server health status
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"ws_clients": r.wsHub.ClientCount(),
	})
}
