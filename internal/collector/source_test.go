package collector

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = "L 10/03/2021 - 19:45:40: Log file closed\r\nL 10/03/2021 - 19:45:41: Starting Freeze period\n"

func readAll(t *testing.T, src *ReaderSource) []string {
	t.Helper()
	var lines []string
	for {
		line, err := src.NextLine(context.Background())
		if errors.Is(err, io.EOF) {
			return lines
		}
		require.NoError(t, err)
		lines = append(lines, line)
	}
}

func TestReaderSourceLineEndings(t *testing.T) {
	src := NewReaderSource(strings.NewReader("a\r\nb\n\nc"))
	assert.Equal(t, []string{"a", "b", "", "c"}, readAll(t, src))

	// Stays at EOF
	_, err := src.NextLine(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderSourceLongLine(t *testing.T) {
	long := strings.Repeat("x", 200*1024)
	src := NewReaderSource(strings.NewReader(long + "\nshort\n"))
	assert.Equal(t, []string{long, "short"}, readAll(t, src))
}

func TestReaderSourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewReaderSource(strings.NewReader("a\n")).NextLine(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenLogPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	require.NoError(t, os.WriteFile(path, []byte(sampleLog), 0o644))

	rc, err := OpenLog(path)
	require.NoError(t, err)
	defer rc.Close()

	assert.Equal(t, []string{
		"L 10/03/2021 - 19:45:40: Log file closed",
		"L 10/03/2021 - 19:45:41: Starting Freeze period",
	}, readAll(t, NewReaderSource(rc)))
}

func TestOpenLogGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(sampleLog))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	rc, err := OpenLog(path)
	require.NoError(t, err)
	defer rc.Close()
	assert.Len(t, readAll(t, NewReaderSource(rc)), 2)
}

func TestOpenLogZstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log.zst")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw, err := zstd.NewWriter(f)
	require.NoError(t, err)
	_, err = zw.Write([]byte(sampleLog))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	rc, err := OpenLog(path)
	require.NoError(t, err)
	assert.Len(t, readAll(t, NewReaderSource(rc)), 2)
	assert.NoError(t, rc.Close())
}

func TestOpenLogErrors(t *testing.T) {
	_, err := OpenLog(filepath.Join(t.TempDir(), "missing.log"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.log.gz")
	require.NoError(t, os.WriteFile(path, []byte("not gzip"), 0o644))
	_, err = OpenLog(path)
	assert.Error(t, err)
}
