package sensor_simulator

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/ecogarden/internal/metrics"
	"github.com/LeonardoBeccarini/ecogarden/internal/model"
)

const DefaultInterval = 5 * time.Second

// SensorSource lists the sensors the simulator should speak for.
type SensorSource interface {
	ActiveSensors() []model.Sensor
}

// BatchSink receives each generated batch.
type BatchSink interface {
	Ingest(batch model.Batch) []int64
}

// Ticker is the part of *time.Ticker the simulator uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(d time.Duration) Ticker { return timeTicker{time.NewTicker(d)} }

// Status is the simulator state reported to the dashboard.
type Status struct {
	Running       bool          `json:"running"`
	LastUpdate    *time.Time    `json:"lastUpdate"`
	ActiveSensors int           `json:"activeSensors"`
	Interval      time.Duration `json:"interval"`
	Deliveries    int           `json:"deliveries"`
}

// SensorSimulator periodically fabricates readings for every active sensor and
// hands them to the sink in one batch. It is either Stopped or Running; while
// Running exactly one goroutine owns one ticker.
type SensorSimulator struct {
	mu        sync.Mutex
	logger    *zap.SugaredLogger
	source    SensorSource
	sink      BatchSink
	generator *DataGenerator
	interval  time.Duration
	newTicker func(time.Duration) Ticker
	now       func() time.Time

	running    bool
	cancel     context.CancelFunc
	done       chan struct{}
	lastUpdate time.Time
	deliveries int
}

type Option func(*SensorSimulator)

func WithInterval(d time.Duration) Option {
	return func(s *SensorSimulator) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithGenerator(g *DataGenerator) Option {
	return func(s *SensorSimulator) { s.generator = g }
}

func WithClock(now func() time.Time) Option {
	return func(s *SensorSimulator) { s.now = now }
}

// WithTicker replaces time.NewTicker, letting tests drive the schedule.
func WithTicker(f func(time.Duration) Ticker) Option {
	return func(s *SensorSimulator) { s.newTicker = f }
}

func NewSensorSimulator(logger *zap.SugaredLogger, source SensorSource, sink BatchSink, opts ...Option) *SensorSimulator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &SensorSimulator{
		logger:    logger,
		source:    source,
		sink:      sink,
		interval:  DefaultInterval,
		newTicker: newTimeTicker,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.generator == nil {
		s.generator = NewDataGenerator(nil)
	}
	return s
}

// Start delivers one batch immediately and then one per interval until Stop
// or ctx is done. Starting a running simulator is a no-op and reports false.
func (s *SensorSimulator) Start(ctx context.Context) bool {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.running, s.cancel, s.done = true, cancel, done
	t := s.newTicker(s.interval)
	s.mu.Unlock()

	s.logger.Infow("simulator started", "interval", s.interval)
	s.Tick()
	go s.loop(ctx, t, done)
	return true
}

func (s *SensorSimulator) loop(ctx context.Context, t Ticker, done chan struct{}) {
	defer close(done)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			if s.done == done {
				s.running, s.cancel, s.done = false, nil, nil
			}
			s.mu.Unlock()
			return
		case <-t.C():
			if ctx.Err() != nil {
				continue
			}
			s.Tick()
		}
	}
}

// Stop cancels the schedule and waits for an in-flight delivery to finish.
// It reports false when the simulator was not running.
func (s *SensorSimulator) Stop() bool {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return false
	}
	cancel, done := s.cancel, s.done
	s.running, s.cancel, s.done = false, nil, nil
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Infow("simulator stopped")
	return true
}

// Reset stops the simulator and forgets the last delivery.
func (s *SensorSimulator) Reset() {
	s.Stop()
	s.mu.Lock()
	s.lastUpdate = time.Time{}
	s.deliveries = 0
	s.mu.Unlock()
}

// Tick generates and delivers one batch synchronously. It returns the number of
// readings delivered; with no active sensors nothing is delivered.
func (s *SensorSimulator) Tick() int {
	now := s.now().UTC()
	sensors := s.source.ActiveSensors()
	if len(sensors) == 0 {
		return 0
	}
	batch := make(model.Batch, len(sensors))
	for _, sn := range sensors {
		batch[sn.ID] = model.Update{Data: s.generator.Next(sn, now), Timestamp: now}
	}
	changed := s.sink.Ingest(batch)

	s.mu.Lock()
	s.lastUpdate = now
	s.deliveries++
	s.mu.Unlock()

	metrics.SimulatorDeliveriesTotal.Inc()
	s.logger.Debugw("simulated batch delivered", "readings", len(batch), "plantsChanged", len(changed))
	return len(batch)
}

func (s *SensorSimulator) Status() Status {
	active := len(s.source.ActiveSensors())
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Running:       s.running,
		ActiveSensors: active,
		Interval:      s.interval,
		Deliveries:    s.deliveries,
	}
	if !s.lastUpdate.IsZero() {
		lu := s.lastUpdate
		st.LastUpdate = &lu
	}
	return st
}

func (s *SensorSimulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
