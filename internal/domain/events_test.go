package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ernie/minictrl/internal/csgolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventEncodesEntry(t *testing.T) {
	entry, err := csgolog.Default().Parse(`L 10/03/2021 - 19:45:40: Loading map "de_inferno"`)
	require.NoError(t, err)

	ev := NewEvent("retake", entry, nil)
	assert.Equal(t, "loading_map", ev.Type)
	assert.Equal(t, "retake", ev.Server)
	assert.Equal(t, time.Date(2021, 10, 3, 19, 45, 40, 0, time.UTC), ev.Timestamp)

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "loading_map", decoded["event"])
	payload := decoded["data"].(map[string]any)
	assert.Equal(t, "de_inferno", payload["map"])
}

func TestNewUnrecognizedEvent(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	ev := NewUnrecognizedEvent("retake", "L garbage", at)
	assert.Equal(t, EventUnrecognized, ev.Type)
	assert.Equal(t, UnrecognizedLine{Line: "L garbage"}, ev.Data)
	assert.Equal(t, at, ev.Timestamp)
}
