package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/ernie/minictrl/internal/collector"
	"github.com/ernie/minictrl/internal/csgolog"
	"github.com/ernie/minictrl/internal/domain"
	"github.com/ernie/minictrl/internal/logging"
)

type parseOptions struct {
	strict       bool
	unrecognized bool
	server       string
	pretty       bool
}

// cmdParse decodes log files to JSON lines
func cmdParse(args []string) int {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	strict := fs.Bool("strict", false, "stop with an error at the first unrecognized line")
	unrecognized := fs.Bool("unrecognized", false, "also emit unrecognized lines as events")
	serverName := fs.String("server", "", "server name to stamp on events (default: file name)")
	logLevel := fs.String("log-level", "warn", "log level for diagnostics on stderr")
	fs.Parse(args)

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: minictrl parse [--strict] [--unrecognized] [--server name] <file>...")
		return 1
	}
	if err := logging.Init(logging.Config{Level: *logLevel}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	opts := parseOptions{
		strict:       *strict,
		unrecognized: *unrecognized,
		server:       *serverName,
		pretty:       term.IsTerminal(int(os.Stdout.Fd())),
	}
	if err := runParse(context.Background(), opts, fs.Args(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// runParse writes one JSON event per line to out
func runParse(ctx context.Context, opts parseOptions, files []string, out io.Writer) error {
	enc := json.NewEncoder(out)
	if opts.pretty {
		enc.SetIndent("", "  ")
	}

	for _, path := range files {
		server := opts.server
		if server == "" {
			server = serverFromPath(path)
		}

		var strictErr error
		fileCtx, cancel := context.WithCancel(ctx)

		handler := collector.HandlerFuncs{
			Entry: func(_ context.Context, server string, entry csgolog.LogEntry) error {
				return enc.Encode(domain.NewEvent(server, entry, nil))
			},
			Unrecognized: func(_ context.Context, server, line string) error {
				if opts.strict {
					strictErr = fmt.Errorf("%s: unrecognized line: %s", path, line)
					cancel()
					return nil
				}
				if opts.unrecognized {
					return enc.Encode(domain.NewUnrecognizedEvent(server, line, time.Now().UTC()))
				}
				return nil
			},
		}

		_, err := ingestFile(fileCtx, server, path, handler)
		cancel()
		if strictErr != nil {
			return strictErr
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// cmdCheck reports per-file ingest statistics
func cmdCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	kinds := fs.Bool("kinds", false, "also list entry counts per kind")
	fs.Parse(args)

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: minictrl check [--kinds] <file>...")
		return 1
	}
	if err := logging.Init(logging.Config{Level: "error"}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	clean, err := runCheck(context.Background(), fs.Args(), *kinds, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if !clean {
		return 2
	}
	return 0
}

// runCheck prints a table of statistics and reports whether every line of
// every file was recognized
func runCheck(ctx context.Context, files []string, showKinds bool, out io.Writer) (bool, error) {
	clean := true
	totals := make(map[csgolog.Kind]int)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tLINES\tENTRIES\tUNRECOGNIZED\tAMBIGUOUS")
	fmt.Fprintln(w, "----\t-----\t-------\t------------\t---------")

	for _, path := range files {
		stats, err := ingestFile(ctx, serverFromPath(path), path, collector.HandlerFuncs{})
		if err != nil {
			w.Flush()
			return false, err
		}
		if stats.Unrecognized > 0 || stats.Ambiguous > 0 {
			clean = false
		}
		for k, n := range stats.ByKind {
			totals[k] += n
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", path, stats.Lines, stats.Entries, stats.Unrecognized, stats.Ambiguous)
	}
	w.Flush()

	if showKinds {
		kinds := make([]csgolog.Kind, 0, len(totals))
		for k := range totals {
			kinds = append(kinds, k)
		}
		slices.Sort(kinds)

		fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KIND\tCOUNT")
		fmt.Fprintln(w, "----\t-----")
		for _, k := range kinds {
			fmt.Fprintf(w, "%s\t%d\n", k, totals[k])
		}
		w.Flush()
	}
	return clean, nil
}

func ingestFile(ctx context.Context, server, path string, h collector.Handler) (collector.IngestStats, error) {
	rc, err := collector.OpenLog(path)
	if err != nil {
		return collector.IngestStats{}, err
	}
	defer rc.Close()
	return collector.Ingest(ctx, server, collector.NewReaderSource(rc), h)
}

// serverFromPath derives a server name from a log file name
func serverFromPath(path string) string {
	base := filepath.Base(path)
	for _, ext := range []string{".gz", ".zst", ".log"} {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

func getJSON(url string, target any) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(target)
}
