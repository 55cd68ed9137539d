// Standalone telemetry simulator feeding a running dashboard service over HTTP.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	sensorSimulator "github.com/LeonardoBeccarini/ecogarden/internal/sensor-simulator"
)

func main() {
	// define flags
	target := flag.String("target", "http://localhost:8080", "dashboard base URL")
	interval := flag.Duration("interval", sensorSimulator.DefaultInterval, "publish interval")
	timeout := flag.Duration("timeout", 3*time.Second, "per-request timeout")
	seed := flag.Int64("seed", 0, "random seed, 0 picks one from the clock")
	debug := flag.Bool("debug", false, "development logging")
	flag.Parse()

	var (
		zl  *zap.Logger
		err error
	)
	if *debug {
		zl, err = zap.NewDevelopment()
	} else {
		zl, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()
	logger := zl.Sugar().With("component", "sensor-simulator")

	var rng *rand.Rand
	if *seed != 0 {
		rng = rand.New(rand.NewSource(*seed))
	}

	remote := sensorSimulator.NewRemote(logger, *target, *timeout)
	sim := sensorSimulator.NewSensorSimulator(logger, remote, remote,
		sensorSimulator.WithInterval(*interval),
		sensorSimulator.WithGenerator(sensorSimulator.NewDataGenerator(rng)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sim.Start(ctx)
	logger.Infow("publishing telemetry", "target", *target, "interval", *interval)
	<-ctx.Done()
	sim.Stop()
	logger.Infow("simulator exiting", "deliveries", sim.Status().Deliveries)
}
