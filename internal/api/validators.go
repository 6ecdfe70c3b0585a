package api

import (
	"net/http"
	"strconv"

	"github.com/ernie/minictrl/internal/csgolog"
)

// validKinds holds every event type a server can have stored
var validKinds = func() map[string]bool {
	kinds := map[string]bool{string(csgolog.KindServerCvars): true}
	for _, k := range csgolog.Default().Kinds() {
		kinds[string(k)] = true
	}
	return kinds
}()

// parseLimit parses and validates a limit parameter with default and max values
func parseLimit(r *http.Request, defaultLimit, maxLimit int) int {
	return parseBounded(r, "limit", defaultLimit, maxLimit)
}

// parseBounded parses a positive integer query parameter no larger than max
func parseBounded(r *http.Request, name string, def, max int) int {
	if l := r.URL.Query().Get(name); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= max {
			return parsed
		}
	}
	return def
}

// validateKind checks if an event kind filter is valid; empty means all
func validateKind(kind string) bool {
	return kind == "" || validKinds[kind]
}
