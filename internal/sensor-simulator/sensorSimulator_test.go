package sensor_simulator

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/LeonardoBeccarini/ecogarden/internal/model"
	"github.com/LeonardoBeccarini/ecogarden/internal/model/entities"
)

type fakeSource struct {
	mu      sync.Mutex
	sensors []model.Sensor
}

func (f *fakeSource) ActiveSensors() []model.Sensor {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Sensor(nil), f.sensors...)
}

type recordingSink struct {
	mu      sync.Mutex
	batches []model.Batch
	got     chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{got: make(chan struct{}, 16)}
}

func (r *recordingSink) Ingest(b model.Batch) []int64 {
	r.mu.Lock()
	r.batches = append(r.batches, b)
	r.mu.Unlock()
	r.got <- struct{}{}
	return nil
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

type manualTicker struct {
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop()               { m.once.Do(func() { close(m.stopped) }) }

type tickerFactory struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

func (f *tickerFactory) New(time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &manualTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
	f.tickers = append(f.tickers, t)
	return t
}

func (f *tickerFactory) last() *manualTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tickers[len(f.tickers)-1]
}

func (f *tickerFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers)
}

var simNow = time.Date(2025, 8, 22, 10, 30, 0, 0, time.UTC)

func newTestSimulator(t *testing.T, src SensorSource, sink BatchSink, tf *tickerFactory) *SensorSimulator {
	return NewSensorSimulator(zaptest.NewLogger(t).Sugar(), src, sink,
		WithGenerator(NewDataGenerator(rand.New(rand.NewSource(1)))),
		WithClock(func() time.Time { return simNow }),
		WithTicker(tf.New),
	)
}

func demoSensors() *fakeSource {
	return &fakeSource{sensors: []model.Sensor{
		{ID: 1, Type: entities.WateringUnit, Status: entities.SensorActive},
		{ID: 4, Type: entities.EnvII, Status: entities.SensorActive},
	}}
}

func waitDelivery(t *testing.T, sink *recordingSink) {
	t.Helper()
	select {
	case <-sink.got:
	case <-time.After(2 * time.Second):
		t.Fatal("no delivery")
	}
}

func TestTickDeliversOneBatchPerActiveSensor(t *testing.T) {
	sink := newRecordingSink()
	sim := newTestSimulator(t, demoSensors(), sink, &tickerFactory{})

	assert.Equal(t, 2, sim.Tick())
	require.Equal(t, 1, sink.count())

	b := sink.batches[0]
	require.Len(t, b, 2)
	assert.Equal(t, entities.WateringUnit, b[1].Data.SensorType())
	assert.Equal(t, entities.EnvII, b[4].Data.SensorType())
	assert.Equal(t, simNow, b[1].Timestamp)

	st := sim.Status()
	require.NotNil(t, st.LastUpdate)
	assert.Equal(t, simNow, *st.LastUpdate)
	assert.Equal(t, 2, st.ActiveSensors)
	assert.False(t, st.Running)
}

func TestTickWithoutActiveSensorsDeliversNothing(t *testing.T) {
	sink := newRecordingSink()
	sim := newTestSimulator(t, &fakeSource{}, sink, &tickerFactory{})

	assert.Equal(t, 0, sim.Tick())
	assert.Equal(t, 0, sink.count())
	assert.Nil(t, sim.Status().LastUpdate)
}

func TestStartDeliversImmediatelyThenOnEachTick(t *testing.T) {
	sink := newRecordingSink()
	tf := &tickerFactory{}
	sim := newTestSimulator(t, demoSensors(), sink, tf)

	require.True(t, sim.Start(context.Background()))
	assert.Equal(t, 1, sink.count(), "first delivery happens before any interval")
	waitDelivery(t, sink)

	tf.last().ch <- simNow
	waitDelivery(t, sink)
	tf.last().ch <- simNow
	waitDelivery(t, sink)
	assert.Equal(t, 3, sink.count())

	require.True(t, sim.Stop())
	assert.False(t, sim.Running())
}

func TestStartWhileRunningIsNoop(t *testing.T) {
	sink := newRecordingSink()
	tf := &tickerFactory{}
	sim := newTestSimulator(t, demoSensors(), sink, tf)

	require.True(t, sim.Start(context.Background()))
	assert.False(t, sim.Start(context.Background()))
	assert.Equal(t, 1, tf.count(), "only one ticker may exist")
	assert.Equal(t, 1, sink.count())
	sim.Stop()
}

func TestStopCancelsScheduleAndRestartIsFresh(t *testing.T) {
	sink := newRecordingSink()
	tf := &tickerFactory{}
	sim := newTestSimulator(t, demoSensors(), sink, tf)

	require.True(t, sim.Start(context.Background()))
	first := tf.last()
	require.True(t, sim.Stop())

	select {
	case <-first.stopped:
	default:
		t.Fatal("ticker not stopped")
	}
	assert.False(t, sim.Stop(), "second stop is a no-op")

	require.True(t, sim.Start(context.Background()))
	assert.Equal(t, 2, tf.count())
	assert.NotSame(t, first, tf.last())
	assert.Equal(t, 2, sink.count(), "restart delivers immediately again")
	sim.Stop()
}

func TestParentContextStopsSimulator(t *testing.T) {
	sink := newRecordingSink()
	tf := &tickerFactory{}
	sim := newTestSimulator(t, demoSensors(), sink, tf)

	ctx, cancel := context.WithCancel(context.Background())
	require.True(t, sim.Start(ctx))
	cancel()

	select {
	case <-tf.last().stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit")
	}
	assert.Eventually(t, func() bool { return !sim.Running() }, 2*time.Second, 10*time.Millisecond)
}

func TestReset(t *testing.T) {
	sink := newRecordingSink()
	sim := newTestSimulator(t, demoSensors(), sink, &tickerFactory{})

	require.True(t, sim.Start(context.Background()))
	sim.Reset()

	st := sim.Status()
	assert.False(t, st.Running)
	assert.Nil(t, st.LastUpdate)
	assert.Zero(t, st.Deliveries)
}
