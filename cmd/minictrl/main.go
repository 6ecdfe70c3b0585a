// minictrl - CS:GO server log ingestion
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"github.com/ernie/minictrl/internal/api"
	"github.com/ernie/minictrl/internal/collector"
	"github.com/ernie/minictrl/internal/config"
	"github.com/ernie/minictrl/internal/logging"
	"github.com/ernie/minictrl/internal/metrics"
	"github.com/ernie/minictrl/internal/publish"
	"github.com/ernie/minictrl/internal/storage"
)

var version = "dev"

const defaultConfigPath = "/etc/minictrl/config.yml"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "parse":
		os.Exit(cmdParse(os.Args[2:]))
	case "check":
		os.Exit(cmdCheck(os.Args[2:]))
	case "serve":
		cmdServe(os.Args[2:])
	case "status":
		cmdStatus(os.Args[2:])
	case "version":
		fmt.Printf("minictrl %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: minictrl <command> [options] [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  parse [--strict] [--unrecognized] [--server name] <file>...")
	fmt.Println("                                      Decode log files to JSON lines on stdout")
	fmt.Println("  check [--kinds] <file>...           Count decoded and unrecognized lines per file")
	fmt.Println("  serve [--config path]               Follow configured server logs and serve the API")
	fmt.Println("  status [--url url]                  Show servers known to a running instance")
	fmt.Println("  version                             Show version")
	fmt.Println("  help                                Show this help")
	fmt.Println()
	fmt.Println("Log files ending in .gz or .zst are decompressed on the fly.")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  minictrl parse logs/L1003000.log | jq 'select(.event == \"killed\")'")
	fmt.Println("  minictrl check --kinds logs/*.log.gz")
	fmt.Println("  minictrl serve --config /etc/minictrl/config.yml")
}

// cmdServe follows every configured log and serves the HTTP API
func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	cfgPath := *configPath
	if cfgPath == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			cfgPath = defaultConfigPath
		} else {
			fmt.Fprintf(os.Stderr, "No config file found at %s. Use --config to specify a config file.\n", defaultConfigPath)
			os.Exit(1)
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logging.Init(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure logging: %v\n", err)
		os.Exit(1)
	}

	log.Info().Str("version", version).Int("servers", len(cfg.CSGOServers)).Msg("minictrl starting")

	store, err := storage.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer store.Close()
	log.Info().Str("path", cfg.Database.Path).Msg("Database initialized")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	ingestMetrics, err := metrics.NewIngest(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register metrics")
	}

	opts := []collector.ManagerOption{collector.WithMetrics(ingestMetrics)}

	var embedded *server.Server
	if cfg.NATS.Enabled() {
		url := cfg.NATS.URL
		if cfg.NATS.Embedded {
			embedded, err = publish.StartEmbedded(cfg.NATS.EmbeddedPort)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to start embedded NATS server")
			}
			if url == "" {
				url = embedded.ClientURL()
			}
			log.Info().Str("url", embedded.ClientURL()).Msg("Embedded NATS server started")
		}

		publisher, err := publish.Connect(url, cfg.NATS.SubjectPrefix)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect publisher")
		}
		defer publisher.Close()
		opts = append(opts, collector.WithPublisher(publisher))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	manager := collector.NewManager(cfg.CSGOServers, store, opts...)
	if err := manager.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server manager")
	}

	router := api.NewRouter(store, manager, reg)
	router.StartWebSocketHub(ctx, manager.Events())

	addr := fmt.Sprintf("%s:%d", cfg.Server.ListenAddr, cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Received signal, shutting down...")
	case err := <-serverErr:
		log.Error().Err(err).Msg("HTTP server error")
	}

	// Sequential shutdown
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := srv.Shutdown(httpCtx); err != nil {
		log.Warn().Err(err).Msg("HTTP server shutdown error")
	}

	cancel()
	manager.Stop()

	if embedded != nil {
		embedded.Shutdown()
	}
	log.Info().Msg("Shutdown complete")
}

// cmdStatus lists servers from a running instance
func cmdStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to configuration file")
	url := fs.String("url", "", "base URL of the minictrl server")
	fs.Parse(args)

	baseURL := *url
	if baseURL == "" {
		baseURL = "http://localhost:8080"
		if cfg, err := config.Load(*configPath); err == nil {
			baseURL = fmt.Sprintf("http://%s:%d", cfg.Server.ListenAddr, cfg.Server.HTTPPort)
		}
	}

	var servers []struct {
		Name        string     `json:"name"`
		LogPath     string     `json:"log_path"`
		LastEventAt *time.Time `json:"last_event_at"`
		Running     bool       `json:"running"`
	}
	if err := getJSON(baseURL+"/api/servers", &servers); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERVER\tSTATUS\tLAST EVENT\tLOG")
	fmt.Fprintln(w, "------\t------\t----------\t---")
	for _, srv := range servers {
		status := "STOPPED"
		if srv.Running {
			status = "FOLLOWING"
		}
		last := "-"
		if srv.LastEventAt != nil {
			last = srv.LastEventAt.Local().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", srv.Name, status, last, srv.LogPath)
	}
	w.Flush()
}
