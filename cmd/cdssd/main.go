package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nephroworks/cdss/internal/adapters/http/api"
	"github.com/nephroworks/cdss/internal/adapters/http/site"
	"github.com/nephroworks/cdss/internal/adapters/modelstore"
	"github.com/nephroworks/cdss/internal/adapters/sheetlog"
	"github.com/nephroworks/cdss/internal/app"
	"github.com/nephroworks/cdss/internal/config"
	"github.com/nephroworks/cdss/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// The custom registry carries only service metrics; drop the default
	// Go collectors.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Load the risk model once. A missing artifact is survivable: the
	// service starts degraded and /assess answers 503 until redeployed.
	var opts []app.Option
	model, err := modelstore.Load(ctx, cfg.ModelPath, modelstore.WithLibraryPath(cfg.ONNXLibPath))
	if err != nil {
		log.Error(ctx, "risk model unavailable; prediction disabled",
			logger.String("model_path", cfg.ModelPath),
			logger.Error(err),
		)
	} else {
		opts = append(opts, app.WithModel(model))
		log.Info(ctx, "risk model loaded",
			logger.String("model_path", cfg.ModelPath),
			logger.Bool("declares_feature_order", model.FeatureOrder() != nil),
		)
	}

	// Case logging is opt-in per request and optional per deployment.
	if cfg.SpreadsheetID != "" {
		writer, err := sheetlog.New(ctx, cfg.CredentialsFile, cfg.SpreadsheetID,
			sheetlog.WithWorksheet(cfg.Worksheet))
		if err != nil {
			log.Error(ctx, "research log unavailable; saves will report failure", logger.Error(err))
		} else {
			opts = append(opts, app.WithCaseWriter(writer))
			log.Info(ctx, "research log configured", logger.String("worksheet", cfg.Worksheet))
		}
	}

	opts = append(opts,
		app.WithLogger(log),
		app.WithRecentCapacity(cfg.RecentCapacity),
		app.WithBaseline(cfg.Baseline),
		app.WithAppendTimeout(time.Duration(cfg.AppendTimeoutMS)*time.Millisecond),
	)

	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	mux := http.NewServeMux()
	site.Register(ctx, mux)
	api.NewServer(svc, svc, cfg.MaxRecentLimit).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}
