package dashboard

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/LeonardoBeccarini/ecogarden/internal/metrics"
	"github.com/LeonardoBeccarini/ecogarden/internal/preferences"
	sensorSimulator "github.com/LeonardoBeccarini/ecogarden/internal/sensor-simulator"
	"github.com/LeonardoBeccarini/ecogarden/internal/services/garden"
	"github.com/LeonardoBeccarini/ecogarden/pkg/dedup"
)

const serviceName = "ecogarden-dashboard"

// Simulator is the control surface of the telemetry simulator.
type Simulator interface {
	Start(ctx context.Context) bool
	Stop() bool
	Reset()
	Status() sensorSimulator.Status
}

// API serves the garden model to the presentation layer.
type API struct {
	ctx    context.Context // service lifetime, outlives requests
	logger *zap.SugaredLogger
	store  *garden.Store
	sim    Simulator
	prefs  *preferences.Store
	dedup  *dedup.Deduper

	rngMu sync.Mutex
	rng   *rand.Rand

	ready atomic.Bool
}

func NewAPI(ctx context.Context, logger *zap.SugaredLogger, store *garden.Store, sim Simulator,
	prefs *preferences.Store, deduper *dedup.Deduper) *API {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if deduper == nil {
		deduper = dedup.New(2*time.Minute, 10000)
	}
	return &API{
		ctx:    ctx,
		logger: logger,
		store:  store,
		sim:    sim,
		prefs:  prefs,
		dedup:  deduper,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetReady flips the /readyz answer.
func (a *API) SetReady(ready bool) {
	a.ready.Store(ready)
}

// Router builds the gin engine with access logging, tracing, recovery and metrics.
func (a *API) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	loggerMiddleware := ginzap.GinzapWithConfig(a.logger.Desugar(), &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/healthz", "/readyz", "/metrics"},
		Context: func(c *gin.Context) []zapcore.Field {
			return []zapcore.Field{
				zap.String("traceID", trace.SpanFromContext(c.Request.Context()).SpanContext().TraceID().String()),
			}
		},
	})

	r.Use(otelgin.Middleware(serviceName, otelgin.WithPropagators(
		propagation.TraceContext{},
	)))
	r.Use(ginzap.RecoveryWithZap(a.logger.Desugar(), true))
	r.Use(latencyMiddleware())

	r.GET("/healthz", a.Healthz)
	r.GET("/readyz", a.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api", loggerMiddleware)
	{
		api.GET("/plants", a.ListPlants)
		api.PUT("/plants", a.PutPlant)
		api.GET("/plants/:id", a.GetPlant)
		api.DELETE("/plants/:id", a.DeletePlant)
		api.GET("/plants/:id/sensors", a.PlantSensors)
		api.GET("/plants/:id/available-sensors", a.AvailableSensors)
		api.GET("/plants/:id/history", a.PlantHistory)
		api.POST("/plants/:id/pump/toggle", a.TogglePump)

		api.GET("/devices", a.ListDevices)
		api.PUT("/devices", a.PutDevice)
		api.DELETE("/devices/:id", a.DeleteDevice)
		api.GET("/devices/:id/sensors", a.DeviceSensors)

		api.GET("/sensors", a.ListSensors)
		api.PUT("/sensors", a.PutSensor)
		api.DELETE("/sensors/:id", a.DeleteSensor)
		api.GET("/sensor-types", a.SensorTypes)

		api.GET("/assignments", a.ListAssignments)
		api.POST("/assignments", a.PostAssignment)

		api.POST("/telemetry", a.PostTelemetry)

		api.GET("/simulator", a.SimulatorStatus)
		api.POST("/simulator/start", a.StartSimulator)
		api.POST("/simulator/stop", a.StopSimulator)
		api.POST("/simulator/reset", a.ResetSimulator)

		api.GET("/stats", a.Stats)
		api.GET("/export", a.Export)

		api.GET("/preferences", a.GetPreferences)
		api.POST("/preferences/dark-mode/toggle", a.ToggleDarkMode)
	}
	return r
}

func latencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HttpRequestLatencySeconds.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
