package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	prom "github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/syy321818/blogbuilder/internal/config"
	"github.com/syy321818/blogbuilder/internal/content"
	berrors "github.com/syy321818/blogbuilder/internal/errors"
	"github.com/syy321818/blogbuilder/internal/history"
	"github.com/syy321818/blogbuilder/internal/metrics"
	"github.com/syy321818/blogbuilder/internal/site"
	"github.com/syy321818/blogbuilder/internal/slug"
	"github.com/syy321818/blogbuilder/internal/watch"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"blogbuilder.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Output string `short:"o" help:"Output directory, overrides the configured one" default:""`
	} `cmd:"" help:"Build the site once"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Write a default configuration file"`

	Discover struct {
	} `cmd:"" help:"List content units without building"`

	Watch struct {
	} `cmd:"" help:"Watch the content directory and rebuild on changes"`

	History struct {
		Limit int    `short:"n" help:"Number of runs to list" default:"20"`
		Run   string `help:"Show the full report for one run ID"`
	} `cmd:"" help:"Inspect past build runs"`
}

func main() {
	// Best effort: a missing .env file is not an error.
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	switch ctx.Command() {
	case "build":
		cfg := mustLoadConfig()
		if CLI.Build.Output != "" {
			cfg.Output.Dir = CLI.Build.Output
		}
		if err := runBuild(cfg); err != nil {
			exitWithError("Build failed", err)
		}
	case "init":
		if err := runInit(CLI.Config, CLI.Init.Force); err != nil {
			exitWithError("Init failed", err)
		}
	case "discover":
		cfg := mustLoadConfig()
		if err := runDiscover(cfg); err != nil {
			exitWithError("Discover failed", err)
		}
	case "watch":
		cfg := mustLoadConfig()
		if err := runWatch(cfg); err != nil {
			exitWithError("Watch failed", err)
		}
	case "history":
		cfg := mustLoadConfig()
		if err := runHistory(cfg, CLI.History.Limit, CLI.History.Run); err != nil {
			exitWithError("History failed", err)
		}
	default:
		slog.Error("Unknown command", "command", ctx.Command())
		os.Exit(1)
	}
}

// exitWithError logs the failure and maps its category to an exit code so
// wrapping scripts can distinguish bad input from bad content.
func exitWithError(msg string, err error) {
	cat := berrors.GetCategory(err)
	slog.Error(msg, "error", err, "category", string(cat))
	os.Exit(exitCode(cat))
}

func exitCode(cat berrors.ErrorCategory) int {
	switch cat {
	case berrors.CategoryConfig, berrors.CategoryValidation, berrors.CategoryPlan:
		return 2
	case berrors.CategoryContent, berrors.CategorySlug:
		return 3
	default:
		return 1
	}
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		exitWithError("Failed to load configuration", err)
	}
	return cfg
}

func runBuild(cfg *config.Config) error {
	builder := site.NewBuilder(cfg)

	report, err := builder.Run(context.Background())
	if report != nil {
		appendHistory(cfg, report)
	}
	if err != nil {
		return err
	}
	if report.Outcome == site.OutcomePartial {
		slog.Warn("Build finished with degraded output",
			"excluded", len(report.Excluded),
			"failed_renders", len(report.FailedRenders))
	}
	return nil
}

func runInit(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	cfg := config.Default("content", "site")
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	slog.Info("Wrote default configuration", "path", path)
	return nil
}

func runDiscover(cfg *config.Config) error {
	discovery := content.NewDiscovery(cfg.Content.Dir, cfg.Content.Separator())
	sources, err := discovery.Discover()
	if err != nil {
		return err
	}

	parsed := 0
	for _, src := range sources {
		unit, err := content.Parse(src)
		if err != nil {
			fmt.Printf("  ! %s: %v\n", src.ID(), err)
			continue
		}
		parsed++
		fmt.Printf("  - %s: %q -> %s\n", src.ID(), unit.Title, slug.Make(unit.Title, unit.Date))
	}
	fmt.Printf("%d source(s), %d parsed\n", len(sources), parsed)
	return nil
}

func runWatch(cfg *config.Config) error {
	builder := site.NewBuilder(cfg)

	var metricsRegistry *prom.Registry
	if cfg.Watch.MetricsAddr != "" {
		metricsRegistry = prom.NewRegistry()
		builder.SetRecorder(metrics.NewPrometheusRecorder(metricsRegistry))
	}

	watcher, err := watch.New(cfg, builder)
	if err != nil {
		return err
	}
	if metricsRegistry != nil {
		watcher.SetMetricsHandler(metrics.HTTPHandler(metricsRegistry))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	slog.Info("Watch stopped")
	return nil
}

func runHistory(cfg *config.Config, limit int, runID string) error {
	if !cfg.History.Enabled {
		return fmt.Errorf("history is disabled, set history.enabled in %s", CLI.Config)
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return berrors.HistoryError("open", err)
	}
	defer store.Close()

	if runID != "" {
		report, err := store.Get(context.Background(), runID)
		if err != nil {
			return berrors.HistoryError("get", err)
		}
		data, err := yaml.Marshal(report)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	}

	runs, err := store.Recent(context.Background(), limit)
	if err != nil {
		return berrors.HistoryError("list", err)
	}
	if len(runs) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%s  %-8s  units=%d excluded=%d pages=%d/%d  %s  %s\n",
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Outcome, r.UnitsParsed, r.UnitsExcluded,
			r.PagesRendered, r.PagesPlanned,
			r.Duration.Round(time.Millisecond), r.RunID)
	}
	return nil
}

// appendHistory records the run when the history store is enabled. Failures
// are logged, never fatal: the site output is already on disk.
func appendHistory(cfg *config.Config, report *site.RunReport) {
	if !cfg.History.Enabled {
		return
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		slog.Warn("Failed to open history store", "error", berrors.HistoryError("open", err))
		return
	}
	defer store.Close()
	if err := store.Append(context.Background(), report); err != nil {
		slog.Warn("Failed to record run in history", "error", berrors.HistoryError("append", err))
	}
}
