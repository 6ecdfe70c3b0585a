package collector

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/ernie/minictrl/internal/logging"
)

const tailPollInterval = 100 * time.Millisecond

// Tailer follows a growing log file and yields complete lines as they are
// appended. It survives copytruncate and replace-style rotation.
type Tailer struct {
	path      string
	fromStart bool
	logger    zerolog.Logger

	file     *os.File
	position int64
	pending  []string
	watcher  *fsnotify.Watcher
}

// NewTailer creates a tailer for path. When fromStart is false only lines
// written after Open are returned.
func NewTailer(path string, fromStart bool) *Tailer {
	return &Tailer{
		path:      path,
		fromStart: fromStart,
		logger:    logging.Component("tailer").With().Str("path", path).Logger(),
	}
}

// Open opens the file and starts watching it for writes
func (t *Tailer) Open() error {
	file, err := os.Open(t.path)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	t.file = file

	if !t.fromStart {
		pos, err := t.file.Seek(0, io.SeekEnd)
		if err != nil {
			t.file.Close()
			return fmt.Errorf("seeking to end: %w", err)
		}
		t.position = pos
	}

	// Without a watcher the poll ticker still picks up new content
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		t.logger.Warn().Err(err).Msg("File watcher unavailable, polling only")
		return nil
	}
	if err := watcher.Add(t.path); err != nil {
		t.logger.Warn().Err(err).Msg("Cannot watch log file, polling only")
		watcher.Close()
		return nil
	}
	t.watcher = watcher
	return nil
}

// Close releases the file and the watcher
func (t *Tailer) Close() error {
	if t.watcher != nil {
		t.watcher.Close()
		t.watcher = nil
	}
	if t.file != nil {
		err := t.file.Close()
		t.file = nil
		return err
	}
	return nil
}

// NextLine blocks until a complete line is available or ctx is done
func (t *Tailer) NextLine(ctx context.Context) (string, error) {
	if t.file == nil {
		return "", fmt.Errorf("tailer for %s is not open", t.path)
	}

	var ticker *time.Ticker
	for {
		if len(t.pending) > 0 {
			line := t.pending[0]
			t.pending = t.pending[1:]
			return line, nil
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if err := t.readNewContent(); err != nil {
			return "", err
		}
		if len(t.pending) > 0 {
			continue
		}

		if ticker == nil {
			ticker = time.NewTicker(tailPollInterval)
			defer ticker.Stop()
		}

		var events <-chan fsnotify.Event
		var errs <-chan error
		if t.watcher != nil {
			events = t.watcher.Events
			errs = t.watcher.Errors
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-events:
		case err := <-errs:
			t.logger.Warn().Err(err).Msg("File watcher error")
		case <-ticker.C:
		}
	}
}

// readNewContent queues any complete lines written since the last read
func (t *Tailer) readNewContent() error {
	if err := t.checkRotated(); err != nil {
		return err
	}

	stat, err := t.file.Stat()
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}

	// Handle copytruncate: file size smaller than position
	if stat.Size() < t.position {
		t.logger.Info().Msg("Log file truncated, rewinding")
		t.position = 0
	}

	if stat.Size() == t.position {
		return nil
	}

	if _, err := t.file.Seek(t.position, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to position: %w", err)
	}

	reader := bufio.NewReader(t.file)
	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			// Partial line - don't advance position past it
			break
		}
		if err != nil {
			return fmt.Errorf("reading line: %w", err)
		}

		t.position += int64(len(line))
		t.pending = append(t.pending, trimNewline(line))
	}
	return nil
}

// checkRotated reopens the path when the file behind it has been replaced
func (t *Tailer) checkRotated() error {
	current, err := os.Stat(t.path)
	if err != nil {
		// Between rename and create; keep reading the old handle
		return nil
	}
	opened, err := t.file.Stat()
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	if os.SameFile(current, opened) {
		return nil
	}

	file, err := os.Open(t.path)
	if err != nil {
		return nil
	}

	// Drain what the old file still holds before switching
	if err := t.drainOld(); err != nil {
		file.Close()
		return err
	}

	t.logger.Info().Msg("Log file replaced, reopening")
	t.file.Close()
	t.file = file
	t.position = 0

	if t.watcher != nil {
		t.watcher.Remove(t.path)
		if err := t.watcher.Add(t.path); err != nil {
			t.logger.Warn().Err(err).Msg("Cannot watch replaced log file")
		}
	}
	return nil
}

func (t *Tailer) drainOld() error {
	if _, err := t.file.Seek(t.position, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to position: %w", err)
	}
	reader := bufio.NewReader(t.file)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			t.pending = append(t.pending, trimNewline(line))
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading line: %w", err)
		}
	}
}

// ReadLastNLines reads the last n lines from the log file
func ReadLastNLines(path string, n int) ([]string, error) {
	if n <= 0 {
		return []string{}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	// Read file backwards to find line boundaries
	const blockSize = 4096
	lines := []string{}
	var tail []byte
	position := stat.Size()

	for position > 0 && len(lines) < n {
		readSize := int64(blockSize)
		if readSize > position {
			readSize = position
		}
		position -= readSize

		buf := make([]byte, readSize)
		if _, err := file.ReadAt(buf, position); err != nil && err != io.EOF {
			return nil, fmt.Errorf("reading block: %w", err)
		}
		content := append(buf, tail...)

		end := len(content)
		for i := len(content) - 1; i >= 0 && len(lines) < n; i-- {
			if content[i] != '\n' {
				continue
			}
			if line := trimNewline(string(content[i+1 : end])); line != "" {
				lines = append(lines, line)
			}
			end = i
		}
		tail = content[:end]
	}

	// The first line of the file has no newline before it
	if position == 0 && len(lines) < n {
		if line := trimNewline(string(tail)); line != "" {
			lines = append(lines, line)
		}
	}

	// Reverse to get chronological order
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines, nil
}
