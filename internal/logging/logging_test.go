package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWriter(Config{Level: "debug", Format: "json"}, &buf))
	assert.Equal(t, zerolog.DebugLevel, log.Logger.GetLevel())

	logger := Component("collector")
	logger.Info().Str("server", "retake").Msg("Started log tailer")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "collector", rec["component"])
	assert.Equal(t, "retake", rec["server"])
	assert.Equal(t, "Started log tailer", rec["message"])
}

func TestInitWriterAutoOnBufferIsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWriter(Config{}, &buf))
	assert.Equal(t, zerolog.InfoLevel, log.Logger.GetLevel())

	log.Info().Msg("hello")
	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestInitWriterRejectsBadConfig(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, InitWriter(Config{Level: "loud"}, &buf))
	assert.Error(t, InitWriter(Config{Format: "xml"}, &buf))
}
