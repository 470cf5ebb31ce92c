package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jessevdk/go-flags"

	"govee-logger/config"
	"govee-logger/internal/application"
	"govee-logger/internal/domain"
	"govee-logger/internal/infra/govee"
	"govee-logger/internal/infra/metrics"
	"govee-logger/internal/infra/pushover"
	"govee-logger/internal/infra/workbook"
)

type options struct {
	Config   string `short:"c" long:"config" default:"config.yaml" description:"Path to the YAML config file"`
	Output   string `short:"o" long:"output" description:"Workbook path (overrides workbook.path)"`
	Unit     string `short:"u" long:"unit" choice:"F" choice:"C" description:"Unit the sensors report in (overrides TEMP_UNIT)"`
	LogLevel string `long:"log-level" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"Log level (overrides log.level)"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var opts options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, err)
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		slog.New(slog.NewTextHandler(stderr, nil)).Error("loading config", "error", err)
		return 1
	}

	logger := setupLogger(cfg.Log, stderr)

	// Validate already parsed these.
	unit, _ := cfg.Unit()
	timeout, _ := cfg.RequestTimeout()
	location, _ := cfg.Location()

	store, err := workbook.Open(cfg.Workbook.Path, cfg.Workbook.Sheet, domain.Columns,
		workbook.WithPadding(*cfg.Workbook.Padding),
		workbook.WithMaxWidth(cfg.Workbook.MaxWidth),
	)
	if err != nil {
		logger.Error("opening workbook", "path", cfg.Workbook.Path, "error", err)
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing workbook", "error", err)
		}
	}()

	var notifier application.Notifier
	if cfg.Pushover.Enabled {
		notifier = pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey)
	} else {
		notifier = &application.NoopNotifier{}
	}

	var (
		recorderMetrics application.Metrics = application.NoopMetrics{}
		textfile        *metrics.Textfile
	)
	if cfg.Metrics.Textfile != "" {
		textfile = metrics.NewTextfile()
		recorderMetrics = textfile
	}

	recorder := application.NewRecorder(
		govee.NewClientWithURL(cfg.Govee.APIKey, cfg.Govee.Endpoint, timeout),
		store,
		notifier,
		recorderMetrics,
		application.Settings{
			Devices:  cfg.Devices,
			Unit:     unit,
			Location: location,
		},
		logger,
	)

	logger.Info("polling devices",
		"devices", len(cfg.Devices),
		"unit", unit,
		"workbook", cfg.Workbook.Path,
	)

	summary, err := recorder.Run(ctx)
	if err != nil {
		logger.Error("run failed", "error", err)
		return 1
	}

	if textfile != nil {
		if err := textfile.WriteFile(cfg.Metrics.Textfile); err != nil {
			logger.Warn("writing metrics textfile", "path", cfg.Metrics.Textfile, "error", err)
		}
	}

	fmt.Fprintln(stdout, summary)

	if !summary.OK() {
		return 1
	}
	return 0
}

func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, err
	}

	if opts.Output != "" {
		cfg.Workbook.Path = opts.Output
	}
	if opts.Unit != "" {
		cfg.Govee.Unit = opts.Unit
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
