package storage

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ernie/minictrl/internal/csgolog"
	"github.com/ernie/minictrl/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func addServer(t *testing.T, store *Store, name string) *domain.Server {
	t.Helper()
	srv := &domain.Server{Name: name, LogPath: "/logs/" + name + ".log"}
	require.NoError(t, store.UpsertServer(context.Background(), srv))
	return srv
}

func parse(t *testing.T, line string) csgolog.LogEntry {
	t.Helper()
	entry, err := csgolog.Default().Parse(line)
	require.NoError(t, err)
	return entry
}

func TestUpsertServerKeepsID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := addServer(t, store, "retake")
	require.NotZero(t, first.ID)

	again := &domain.Server{Name: "retake", LogPath: "/elsewhere.log"}
	require.NoError(t, store.UpsertServer(ctx, again))
	assert.Equal(t, first.ID, again.ID)

	addServer(t, store, "arena")
	servers, err := store.GetServers(ctx)
	require.NoError(t, err)
	require.Len(t, servers, 2)
	assert.Equal(t, "arena", servers[0].Name)
	assert.Equal(t, "retake", servers[1].Name)
	assert.Equal(t, "/elsewhere.log", servers[1].LogPath)
	assert.Nil(t, servers[1].LastEventAt)
}

func TestInsertAndQueryEvents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	addServer(t, store, "retake")

	lines := []string{
		`L 10/03/2021 - 19:45:40: Loading map "de_inferno"`,
		`L 10/03/2021 - 19:45:41: Starting Freeze period`,
		`L 10/03/2021 - 19:45:42: Loading map "de_nuke"`,
	}
	for _, line := range lines {
		ev := domain.NewEvent("retake", parse(t, line), nil)
		require.NoError(t, store.InsertEvent(ctx, &ev))
		assert.NotEmpty(t, ev.ID)
	}

	events, err := store.GetRecentEvents(ctx, "retake", "", 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "loading_map", events[0].Type)
	assert.Equal(t, time.Date(2021, 10, 3, 19, 45, 42, 0, time.UTC), events[0].Timestamp)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(events[0].Data.(json.RawMessage), &payload))
	assert.Equal(t, "de_nuke", payload["map"])

	events, err = store.GetRecentEvents(ctx, "retake", "loading_map", 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "loading_map", events[0].Type)

	counts, err := store.CountEventsByKind(ctx, "retake")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"loading_map": 2, "freeze_period_started": 1}, counts)

	srv, err := store.GetServerByName(ctx, "retake")
	require.NoError(t, err)
	require.NotNil(t, srv.LastEventAt)
	assert.Equal(t, time.Date(2021, 10, 3, 19, 45, 42, 0, time.UTC), *srv.LastEventAt)
}

func TestUnknownServer(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ev := domain.NewEvent("ghost", parse(t, `L 10/03/2021 - 19:45:40: Log file closed`), nil)
	assert.ErrorIs(t, store.InsertEvent(ctx, &ev), ErrServerNotFound)
	assert.ErrorIs(t, store.InsertUnrecognized(ctx, "ghost", "x", time.Now()), ErrServerNotFound)

	_, err := store.GetRecentEvents(ctx, "ghost", "", 10)
	assert.ErrorIs(t, err, ErrServerNotFound)
	_, err = store.CountEventsByKind(ctx, "ghost")
	assert.ErrorIs(t, err, ErrServerNotFound)
	_, err = store.GetServerByName(ctx, "ghost")
	assert.ErrorIs(t, err, ErrServerNotFound)
}

func TestQuarantine(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	addServer(t, store, "retake")

	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	require.NoError(t, store.InsertUnrecognized(ctx, "retake", "L first", at))
	require.NoError(t, store.InsertUnrecognized(ctx, "retake", "L second", at))

	lines, err := store.GetUnrecognizedLines(ctx, "retake", 10)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "L second", lines[0].Line)
	assert.Equal(t, at, lines[0].IngestedAt)

	ev := domain.NewEvent("retake", parse(t, `L 10/03/2021 - 19:45:40: Log file closed`), nil)
	require.NoError(t, store.InsertEvent(ctx, &ev))

	summary, err := store.GetServerSummary(ctx, "retake")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 2, summary.Unrecognized)
	assert.Equal(t, map[string]int{"log_file_closed": 1}, summary.ByKind)
}

func TestGet5PayloadStoredByteExact(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	addServer(t, store, "retake")

	payload := "{\"t\xe9am\":1}"
	ev := domain.NewEvent("retake", parse(t, `L 10/03/2021 - 19:45:40: get5_event: `+payload), nil)
	require.NoError(t, store.InsertEvent(ctx, &ev))

	got, err := store.GetEventPayload(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte(payload), got)

	plain := domain.NewEvent("retake", parse(t, `L 10/03/2021 - 19:45:41: Log file closed`), nil)
	require.NoError(t, store.InsertEvent(ctx, &plain))
	_, err = store.GetEventPayload(ctx, plain.ID)
	assert.ErrorIs(t, err, ErrPayloadNotFound)
}
