// Command rclog decodes RoboCup simulation match logs (Replay and ULG
// formats, plain or gzipped) and persists them through the configured storage
// backend: JSON export, sqlite archive or websocket stream to a live viewer.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/rcviewer/rclog/internal/api"
	"github.com/rcviewer/rclog/internal/config"
	"github.com/rcviewer/rclog/internal/influx"
	"github.com/rcviewer/rclog/internal/loader"
	"github.com/rcviewer/rclog/internal/logging"
	"github.com/rcviewer/rclog/internal/monitor"
	intOtel "github.com/rcviewer/rclog/internal/otel"
	"github.com/rcviewer/rclog/internal/storage"
	"github.com/rcviewer/rclog/internal/worker"
)

// AppName and Version identify the tool; BuildDate can be set via ldflags.
var (
	AppName   = "rclog"
	Version   = "0.1.0"
	BuildDate = "unknown"
)

var (
	slogManager *logging.SlogManager
	logger      *slog.Logger

	otelProvider  *intOtel.Provider
	influxManager *influx.Manager
	apiClient     *api.Client

	sessionStart = time.Now()
)

func main() {
	configDir := flag.String("config", ".", "directory containing rclog.cfg.json")
	storageType := flag.String("storage", "", "override the configured storage backend (memory, sqlite, websocket)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s (built %s)\n", AppName, Version, BuildDate)
		return
	}

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <logfile>...\n", AppName)
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(*configDir, *storageType, files); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		os.Exit(1)
	}
}

func run(configDir, storageType string, files []string) error {
	// Bootstrap logging to console only until the config is loaded.
	slogManager = logging.NewSlogManager()
	slogManager.Setup(logging.Options{Level: "info"})
	logger = slogManager.Logger()

	if err := config.Load(configDir); err != nil {
		logger.Warn("Failed to load config, using defaults", "error", err)
	}

	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("create logs dir: %w", err)
	}

	logPath := logging.LogFilePath(logsDir, AppName, sessionStart)
	logFile, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		logger.Error("Failed to open log file", "path", logPath, "error", err)
	} else {
		defer logFile.Close()
	}

	if config.GetBool("otel.enabled") {
		otelProvider, err = intOtel.New(intOtel.Config{
			Enabled:      true,
			ServiceName:  config.GetString("otel.serviceName"),
			BatchTimeout: config.GetDuration("otel.batchTimeout"),
			LogWriter:    logFile,
			Endpoint:     config.GetString("otel.endpoint"),
			Insecure:     config.GetBool("otel.insecure"),
		})
		if err != nil {
			logger.Error("Failed to initialize OTel provider", "error", err)
			otelProvider = nil
		}
	}

	var logProvider *sdklog.LoggerProvider
	if otelProvider != nil {
		logProvider = otelProvider.LoggerProvider()
	}
	gelfAddress := ""
	if config.GetBool("graylog.enabled") {
		gelfAddress = config.GetString("graylog.address")
	}

	// Full logging setup: console + file + optional OTel bridge + optional GELF.
	slogManager.Setup(logging.Options{
		File:        logFile,
		Level:       config.GetString("logLevel"),
		Provider:    logProvider,
		GelfAddress: gelfAddress,
	})
	logger = slogManager.Logger()
	logger.Info("Session started", "version", Version, "logFile", logPath)

	if otelProvider != nil {
		defer otelProvider.Shutdown(context.Background())
	}

	if config.GetBool("influx.enabled") {
		backupPath := filepath.Join(logsDir, "influx-backup.gz")
		influxManager = influx.NewManager(
			zerolog.New(os.Stderr).With().Timestamp().Logger(),
			backupPath,
		)
		if err := influxManager.Connect(); err != nil {
			logger.Warn("InfluxDB unavailable, metrics disabled", "error", err)
			influxManager = nil
		} else {
			defer influxManager.Close()
		}
	}

	if config.GetBool("api.enabled") {
		apiClient = api.New(config.GetString("api.url"), config.GetString("api.secret"))
		if err := apiClient.Healthcheck(); err != nil {
			logger.Warn("Viewer frontend unreachable, uploads disabled", "error", err)
			apiClient = nil
		}
	}

	storageCfg, err := config.Storage()
	if err != nil {
		return err
	}
	if storageType != "" {
		storageCfg.Type = storageType
	}

	backend, err := storage.NewBackend(storageCfg, logger)
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("init %s storage: %w", storageCfg.Type, err)
	}
	defer backend.Close()
	logger.Info("Storage backend initialized", "type", storageCfg.Type)

	workerManager := worker.NewManager(backend, logger)
	workerManager.Start()
	defer workerManager.Stop()

	monitorService := monitor.NewService(monitor.Dependencies{
		Logger:     logger,
		Worker:     workerManager,
		Influx:     influxManager,
		Interval:   config.GetDuration("monitor.interval"),
		StatusPath: filepath.Join(logsDir, "status.json"),
	})
	monitorService.Start()
	defer monitorService.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ld := loader.New(logger)

	var failed int
	for _, path := range files {
		monitorService.SetResource(filepath.Base(path))

		if err := decodeFile(ctx, ld, workerManager, backend, path); err != nil {
			if ctx.Err() != nil {
				logger.Warn("Interrupted", "file", path)
				break
			}
			logger.Error("Decode failed", "file", path, "error", err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

// decodeFile decodes one log file and pushes it through the storage pipeline.
func decodeFile(ctx context.Context, ld *loader.Loader, wm *worker.Manager, backend storage.Backend, path string) error {
	started := time.Now()

	res, err := ld.Load(ctx, path)
	if err != nil {
		return err
	}
	log := res.Log.Base()
	logger.Info("Decoded",
		"file", path,
		"snapshots", log.StateCount(),
		"elapsed", time.Since(started).Round(time.Millisecond),
	)

	id := uuid.NewString()
	if err := backend.BeginRecording(id, res.Log.FormatVersion(), log); err != nil {
		return fmt.Errorf("begin recording: %w", err)
	}
	for _, st := range log.States() {
		if err := wm.Enqueue(st); err != nil {
			return err
		}
	}
	if err := wm.Flush(); err != nil {
		return err
	}
	if err := backend.FinishRecording(); err != nil {
		return fmt.Errorf("finish recording: %w", err)
	}

	if ex, ok := backend.(storage.Exportable); ok {
		exported := ex.ExportedFilePath()
		logger.Info("Recording stored", "id", id, "path", exported)

		if apiClient != nil && exported != "" {
			if err := apiClient.Upload(exported, api.MetadataFor(log)); err != nil {
				logger.Warn("Upload to viewer frontend failed", "path", exported, "error", err)
			} else {
				logger.Info("Recording uploaded", "path", exported)
			}
		}
	} else {
		logger.Info("Recording stored", "id", id)
	}

	if influxManager != nil {
		if err := influxManager.WriteMatchResult(ctx, log); err != nil {
			logger.Warn("Error writing match result to InfluxDB", "error", err)
		}
	}

	printSummary(res)
	return nil
}
