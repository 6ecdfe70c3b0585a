package collector

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// OpenLog opens a log file for reading, decompressing .gz and .zst files
func OpenLog(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		return &stackedReader{Reader: zr, closers: []io.Closer{zr, file}}, nil
	case ".zst":
		zr, err := zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("opening zstd stream: %w", err)
		}
		return &stackedReader{Reader: zr, closers: []io.Closer{zr.IOReadCloser(), file}}, nil
	}
	return file, nil
}

// stackedReader closes a decompressor and the file beneath it
type stackedReader struct {
	io.Reader
	closers []io.Closer
}

func (r *stackedReader) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ReaderSource yields the lines of a reader until it is exhausted.
// The final line need not end with a newline.
type ReaderSource struct {
	r    *bufio.Reader
	done bool
}

// NewReaderSource creates a line source over r
func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{r: bufio.NewReaderSize(r, 64*1024)}
}

// NextLine returns the next line without its line ending, or io.EOF
func (s *ReaderSource) NextLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.done {
		return "", io.EOF
	}

	line, err := s.r.ReadString('\n')
	if err == io.EOF {
		s.done = true
		if line == "" {
			return "", io.EOF
		}
	} else if err != nil {
		return "", err
	}
	return trimNewline(line), nil
}

func trimNewline(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
