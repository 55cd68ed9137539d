// Dashboard service: garden model, telemetry simulator and the HTTP/gRPC surface.
package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/ecogarden/internal/preferences"
	sensorSimulator "github.com/LeonardoBeccarini/ecogarden/internal/sensor-simulator"
	"github.com/LeonardoBeccarini/ecogarden/internal/services/dashboard"
	"github.com/LeonardoBeccarini/ecogarden/internal/services/garden"
	"github.com/LeonardoBeccarini/ecogarden/internal/tracing"
	"github.com/LeonardoBeccarini/ecogarden/pkg/dedup"
)

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}
	return cfg.Build()
}

func main() {
	cfg := loadConfig()

	zl, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("dashboard: logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	logger := zl.Sugar().With("service", "dashboard")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracing.InitTracer(ctx, "ecogarden-dashboard", cfg.OTLPEndpoint)
	if err != nil {
		logger.Fatalw("tracing init failed", "error", err)
	}

	store := garden.NewStore(logger.Named("garden"))
	if cfg.SeedDemoData {
		store.Load(garden.DemoData())
	}

	prefs := preferences.New(cfg.PrefsPath)
	if err := prefs.Load(); err != nil {
		logger.Fatalw("preferences load failed", "path", cfg.PrefsPath, "error", err)
	}

	sim := sensorSimulator.NewSensorSimulator(logger.Named("simulator"), store, store,
		sensorSimulator.WithInterval(cfg.SimInterval))

	api := dashboard.NewAPI(ctx, logger.Named("api"), store, sim, prefs, dedup.New(cfg.DedupTTL, cfg.DedupMax))

	httpSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	healthSrv := dashboard.NewHealthServer(logger.Named("grpc"))

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		logger.Fatalw("grpc listen failed", "port", cfg.GRPCPort, "error", err)
	}
	go func() {
		if err := healthSrv.Serve(lis); err != nil {
			logger.Errorw("grpc server stopped", "error", err)
		}
	}()
	go func() {
		logger.Infow("http listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("http server stopped", "error", err)
			stop()
		}
	}()

	if cfg.SimAutostart {
		sim.Start(ctx)
	}
	api.SetReady(true)
	healthSrv.SetServing(true)
	logger.Infow("dashboard ready",
		"plants", len(store.Plants()), "sensors", len(store.Sensors()),
		"simulator", sim.Running(), "interval", cfg.SimInterval)

	<-ctx.Done()
	logger.Infow("shutting down")
	api.SetReady(false)
	healthSrv.SetServing(false)
	sim.Stop()

	shCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shCtx); err != nil {
		logger.Warnw("http shutdown", "error", err)
	}
	healthSrv.Shutdown(shCtx)
	if err := shutdownTracer(shCtx); err != nil {
		logger.Warnw("tracer shutdown", "error", err)
	}
}
