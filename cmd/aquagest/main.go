package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/erazemk/aquagest/internal/client"
	"github.com/erazemk/aquagest/internal/config"
	"github.com/erazemk/aquagest/internal/db"
	"github.com/erazemk/aquagest/internal/model"
	"github.com/erazemk/aquagest/internal/obs"
	"github.com/erazemk/aquagest/internal/session"
	"github.com/erazemk/aquagest/internal/store"
	"github.com/erazemk/aquagest/internal/web"
)

// levelRouter is a slog.Handler that routes records below ERROR to stdout
// and ERROR+ to stderr.
type levelRouter struct {
	min    slog.Level
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.min
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		min:    lr.min,
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		min:    lr.min,
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN (and DEBUG with debug
// set) go to stdout, ERROR goes to stderr. If logPath is non-empty, all
// levels are also written to that file. Returns a cleanup function that
// closes the log file (if opened).
func setupLogger(logPath string, debug bool) (func(), error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		min:    level,
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

const usage = `Usage: aquagest <command> [flags]

Commands:
  serve            run the web front end
  probe            check that the backend is reachable
  stats            print the dashboard counters
  report <kind>    print a report (solicitudes, usuarios, puntos) as JSON

Run "aquagest <command> -h" for the flags of a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	var run func(*config.Config) error
	switch cmd {
	case "serve":
		run = cmdServe
	case "probe":
		run = cmdProbe
	case "stats":
		run = cmdStats
	case "report":
		run = cmdReport
	case "-h", "-help", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n%s", cmd, usage)
		os.Exit(1)
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(cmd, os.Args[2:], os.Getenv, os.Stdout)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := setupLogger(cfg.LogPath, cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	if err := run(cfg); err != nil {
		slog.Error(cmd+" failed", "error", err)
		if closeLog != nil {
			closeLog()
		}
		os.Exit(1)
	}
}

func cmdServe(cfg *config.Config) error {
	if len(cfg.Args) > 0 {
		return fmt.Errorf("unexpected argument: %s", cfg.Args[0])
	}

	database, err := db.Open(context.Background(), cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()
	slog.Info("database ready", "path", cfg.DBPath)

	// Load the cookie signing key from the database (generated on first run).
	secret, err := store.GetSessionSecret(context.Background(), database)
	if err != nil {
		return fmt.Errorf("loading session secret: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := obs.Register(reg); err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	api := client.New(cfg.APIURL)
	sessions := session.NewService(api)
	probe := session.NewProbe(sessions)

	webRouter, err := web.NewRouter(web.Config{
		DB:         database,
		Secret:     secret,
		Backend:    api,
		Sessions:   sessions,
		Probe:      probe,
		LoginRate:  rate.Limit(cfg.LoginRate),
		LoginBurst: cfg.LoginBurst,
		TrustProxy: cfg.TrustProxy,
	})
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", obs.Handler(reg))
	mux.Handle("/", webRouter)

	handler := web.LoggingMiddleware(obs.Instrument(mux))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Check the backend once up front so the first login page is ready.
	probeCtx, cancelProbe := context.WithTimeout(ctx, 5*time.Second)
	defer cancelProbe()
	probe.Start(probeCtx)

	// Graceful shutdown on SIGINT/SIGTERM.
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "backend", api.BaseURL())
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

// commandTimeout bounds the one-shot operator commands.
const commandTimeout = 15 * time.Second

func cmdProbe(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	state := session.NewService(client.New(cfg.APIURL)).CheckReachable(ctx)
	fmt.Printf("%s: %s\n", cfg.APIURL, state)
	if state != model.Reachable {
		return errors.New(session.UnreachableMessage)
	}
	return nil
}

func cmdStats(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	stats, err := client.New(cfg.APIURL).DashboardStats(ctx)
	if err != nil {
		return fmt.Errorf("fetching dashboard stats: %w", err)
	}
	return printStats(os.Stdout, stats)
}

func printStats(w io.Writer, s *model.DashboardStats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Usuarios\t%d\n", s.TotalUsers)
	fmt.Fprintf(tw, "Solicitudes\t%d\n", s.TotalRequests)
	fmt.Fprintf(tw, "Solicitudes hoy\t%d\n", s.RequestsToday)
	fmt.Fprintf(tw, "Puntos de suministro\t%d\n", s.TotalPoints)
	fmt.Fprintf(tw, "Puntos activos\t%d\n", s.ActivePoints)
	fmt.Fprintf(tw, "Consultas\t%d\n", s.TotalQueries)
	return tw.Flush()
}

func cmdReport(cfg *config.Config) error {
	if len(cfg.Args) != 1 {
		return fmt.Errorf("report needs exactly one kind: %v", model.ReportKinds)
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	report, err := client.New(cfg.APIURL).GenerateReport(ctx, cfg.Args[0])
	if err != nil {
		return fmt.Errorf("generating report: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
