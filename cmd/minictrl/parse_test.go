package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cliSample = `L 10/03/2021 - 19:45:40: Loading map "de_inferno"
L 10/03/2021 - 19:45:40: server cvars start
L 10/03/2021 - 19:45:40: "mp_maxmoney" = "16000"
L 10/03/2021 - 19:45:40: server cvars end
L 10/03/2021 - 19:45:41: something the grammar has never seen
L 10/03/2021 - 19:45:42: Log file closed
`

func writeLog(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func decodeLines(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	return out
}

func TestRunParse(t *testing.T) {
	path := writeLog(t, "retake.log", cliSample)

	var buf bytes.Buffer
	require.NoError(t, runParse(context.Background(), parseOptions{}, []string{path}, &buf))

	events := decodeLines(t, buf.Bytes())
	require.Len(t, events, 3)
	assert.Equal(t, "loading_map", events[0]["event"])
	assert.Equal(t, "retake", events[0]["server"])
	assert.Equal(t, "server_cvars", events[1]["event"])
	assert.Equal(t, "log_file_closed", events[2]["event"])
}

func TestRunParseUnrecognized(t *testing.T) {
	path := writeLog(t, "retake.log", cliSample)

	var buf bytes.Buffer
	opts := parseOptions{unrecognized: true, server: "eu1"}
	require.NoError(t, runParse(context.Background(), opts, []string{path}, &buf))

	events := decodeLines(t, buf.Bytes())
	require.Len(t, events, 4)
	assert.Equal(t, "unrecognized", events[2]["event"])
	assert.Equal(t, "eu1", events[2]["server"])

	ts, err := time.Parse(time.RFC3339Nano, events[2]["timestamp"].(string))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}

func TestRunParseStrict(t *testing.T) {
	path := writeLog(t, "retake.log", cliSample)

	var buf bytes.Buffer
	err := runParse(context.Background(), parseOptions{strict: true}, []string{path}, &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "something the grammar has never seen")
	assert.Len(t, decodeLines(t, buf.Bytes()), 2)
}

func TestRunParseMissingFile(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, runParse(context.Background(), parseOptions{}, []string{"/nonexistent.log"}, &buf))
}

func TestRunCheck(t *testing.T) {
	good := writeLog(t, "good.log", "L 10/03/2021 - 19:45:42: Log file closed\n")
	bad := writeLog(t, "bad.log", cliSample)

	var buf bytes.Buffer
	clean, err := runCheck(context.Background(), []string{good}, false, &buf)
	require.NoError(t, err)
	assert.True(t, clean)

	buf.Reset()
	clean, err = runCheck(context.Background(), []string{good, bad}, true, &buf)
	require.NoError(t, err)
	assert.False(t, clean)
	assert.Contains(t, buf.String(), "log_file_closed")
	assert.Contains(t, buf.String(), "server_cvars")
}

func TestServerFromPath(t *testing.T) {
	assert.Equal(t, "retake", serverFromPath("/srv/logs/retake.log"))
	assert.Equal(t, "L1003000", serverFromPath("L1003000.log.gz"))
	assert.Equal(t, "archive", serverFromPath("archive.zst"))
}
