package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ernie/minictrl/internal/csgolog"
	"github.com/ernie/minictrl/internal/domain"
	"github.com/ernie/minictrl/internal/metrics"
	"github.com/ernie/minictrl/internal/storage"
)

type runningSet map[string]bool

func (s runningSet) Running(name string) bool { return s[name] }

type fixture struct {
	store   *storage.Store
	router  *Router
	server  *httptest.Server
	logPath string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	store, err := storage.New(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logPath := filepath.Join(dir, "console.log")
	require.NoError(t, os.WriteFile(logPath, []byte("one\ntwo\nthree\n"), 0o644))

	ctx := context.Background()
	require.NoError(t, store.UpsertServer(ctx, &domain.Server{Name: "retake", LogPath: logPath}))

	for _, line := range []string{
		`L 10/03/2021 - 19:45:40: Loading map "de_inferno"`,
		`L 10/03/2021 - 19:45:41: Starting Freeze period`,
		`L 10/03/2021 - 19:45:42: Loading map "de_nuke"`,
	} {
		entry, err := csgolog.Default().Parse(line)
		require.NoError(t, err)
		ev := domain.NewEvent("retake", entry, nil)
		require.NoError(t, store.InsertEvent(ctx, &ev))
	}
	require.NoError(t, store.InsertUnrecognized(ctx, "retake", "L junk", time.Now()))

	reg := prometheus.NewRegistry()
	im, err := metrics.NewIngest(reg)
	require.NoError(t, err)
	im.RecordLine("retake")

	router := NewRouter(store, runningSet{"retake": true}, reg)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &fixture{store: store, router: router, server: server, logPath: logPath}
}

func (f *fixture) getJSON(t *testing.T, path string, out any) int {
	t.Helper()
	resp, err := http.Get(f.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	var body map[string]any
	assert.Equal(t, http.StatusOK, f.getJSON(t, "/health", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestGetServers(t *testing.T) {
	f := newFixture(t)

	var servers []map[string]any
	require.Equal(t, http.StatusOK, f.getJSON(t, "/api/servers", &servers))
	require.Len(t, servers, 1)
	assert.Equal(t, "retake", servers[0]["name"])
	assert.Equal(t, true, servers[0]["running"])
	assert.NotEmpty(t, servers[0]["last_event_at"])

	var one map[string]any
	assert.Equal(t, http.StatusOK, f.getJSON(t, "/api/servers/retake", &one))
	assert.Equal(t, http.StatusNotFound, f.getJSON(t, "/api/servers/ghost", nil))
}

func TestGetEvents(t *testing.T) {
	f := newFixture(t)

	var events []map[string]any
	require.Equal(t, http.StatusOK, f.getJSON(t, "/api/servers/retake/events", &events))
	require.Len(t, events, 3)
	assert.Equal(t, "loading_map", events[0]["event"])
	assert.Equal(t, "de_nuke", events[0]["data"].(map[string]any)["map"])

	events = nil
	require.Equal(t, http.StatusOK, f.getJSON(t, "/api/servers/retake/events?kind=freeze_period_started", &events))
	require.Len(t, events, 1)

	events = nil
	require.Equal(t, http.StatusOK, f.getJSON(t, "/api/servers/retake/events?limit=2", &events))
	assert.Len(t, events, 2)

	assert.Equal(t, http.StatusBadRequest, f.getJSON(t, "/api/servers/retake/events?kind=nonsense", nil))
	assert.Equal(t, http.StatusNotFound, f.getJSON(t, "/api/servers/ghost/events", nil))
}

func TestGetSummaryAndUnrecognized(t *testing.T) {
	f := newFixture(t)

	var summary domain.ServerSummary
	require.Equal(t, http.StatusOK, f.getJSON(t, "/api/servers/retake/summary", &summary))
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Unrecognized)
	assert.Equal(t, 2, summary.ByKind["loading_map"])

	var lines []domain.QuarantinedLine
	require.Equal(t, http.StatusOK, f.getJSON(t, "/api/servers/retake/unrecognized", &lines))
	require.Len(t, lines, 1)
	assert.Equal(t, "L junk", lines[0].Line)
}

func TestGetLog(t *testing.T) {
	f := newFixture(t)

	var body struct {
		Server string   `json:"server"`
		Lines  []string `json:"lines"`
	}
	require.Equal(t, http.StatusOK, f.getJSON(t, "/api/servers/retake/log?lines=2", &body))
	assert.Equal(t, []string{"two", "three"}, body.Lines)
}

func TestGetEventPayload(t *testing.T) {
	f := newFixture(t)

	payload := "{\"t\xe9am\":1}"
	entry, err := csgolog.Default().Parse(`L 10/03/2021 - 19:45:43: get5_event: ` + payload)
	require.NoError(t, err)
	ev := domain.NewEvent("retake", entry, nil)
	require.NoError(t, f.store.InsertEvent(context.Background(), &ev))

	resp, err := http.Get(f.server.URL + "/api/events/" + ev.ID + "/payload")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte(payload), body)

	assert.Equal(t, http.StatusNotFound, f.getJSON(t, "/api/events/missing/payload", nil))
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `minictrl_ingest_lines_total{server="retake"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)

	req, err := http.NewRequest(http.MethodOptions, f.server.URL+"/api/servers", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestWebSocketStream(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan domain.Event, 4)
	f.router.StartWebSocketHub(ctx, events)

	wsURL := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?server=retake"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return f.router.wsHub.ClientCount() == 1 }, 5*time.Second, 10*time.Millisecond)

	entry, err := csgolog.Default().Parse(`L 10/03/2021 - 19:45:40: Log file closed`)
	require.NoError(t, err)
	events <- domain.NewEvent("other", entry, nil)
	events <- domain.NewEvent("retake", entry, nil)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "retake", got["server"])
	assert.Equal(t, "log_file_closed", got["event"])
}
