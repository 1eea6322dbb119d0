// main package for the broadcast-service
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/book-expert/broadcast-service/internal/broadcast"
	"github.com/book-expert/broadcast-service/internal/config"
	"github.com/book-expert/broadcast-service/internal/objectstore"
	"github.com/book-expert/broadcast-service/internal/worker"
	"github.com/book-expert/logger"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server settings.
const (
	metricsPath              = "/metrics"
	metricsReadHeaderTimeout = 5 * time.Second
	metricsShutdownTimeout   = 5 * time.Second
	natsClientName           = "broadcast-service"
)

// Log messages.
const (
	logBootstrapCreated = "Bootstrap logger created."
	logConfigLoaded     = "Configuration loaded successfully."
	logInitialized      = "Broadcast-Service successfully initialized. Listening for jobs on subject: %s"
	logMetricsListening = "Serving metrics on %s%s"
	logMetricsFailed    = "Metrics server failed: %v"
	logShutdown         = "Shutting down."
)

func setupLogger(logPath, fileName string) (*logger.Logger, error) {
	log, err := logger.New(logPath, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger in %s: %w", logPath, err)
	}

	return log, nil
}

func run(ctx context.Context) error {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	// 1. Create a temporary logger for the bootstrap process
	bootstrapLog, err := setupLogger(os.TempDir(), "broadcast-service-bootstrap.log")
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}
	defer bootstrapLog.Close()

	bootstrapLog.Info(logBootstrapCreated)

	// 2. Load configuration using the central configurator
	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	bootstrapLog.Info(logConfigLoaded)

	// 3. Initialize the final logger based on the loaded configuration
	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir, "broadcast-service.log")
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return err
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	// 4. Connect to NATS and open the buckets
	natsConnection, err := nats.Connect(cfg.NATS.URL, nats.Name(natsClientName))
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
	}
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	scripts, err := objectstore.New(jetstreamContext, cfg.NATS.ScriptObjectStoreBucket)
	if err != nil {
		return err
	}

	audio, err := objectstore.New(jetstreamContext, cfg.NATS.AudioObjectStoreBucket)
	if err != nil {
		return err
	}

	// 5. Build the renderer
	synth, err := broadcast.NewSynthesizer(cfg, nil)
	if err != nil {
		return err
	}

	cacheStore, err := broadcast.NewCacheStore(cfg, jetstreamContext)
	if err != nil {
		return err
	}

	service, err := broadcast.NewService(cfg, synth, cacheStore, finalLog)
	if err != nil {
		return err
	}

	// 6. Serve metrics and run the worker until interrupted
	if cfg.Metrics.ListenAddress != "" {
		metricsServer := startMetricsServer(cfg.Metrics.ListenAddress, finalLog)

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()

			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	renderWorker := worker.NewNatsWorker(
		natsConnection, cfg.NATS.RenderSubject, scripts, audio, service, finalLog, cfg.JobTimeout(),
	)

	finalLog.System(logInitialized, cfg.NATS.RenderSubject)

	err = renderWorker.Run(ctx)

	finalLog.System(logShutdown)

	return err
}

func startMetricsServer(address string, log *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(metricsPath, promhttp.Handler())

	server := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	go func() {
		log.Info(logMetricsListening, address, metricsPath)

		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(logMetricsFailed, err)
		}
	}()

	return server
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
