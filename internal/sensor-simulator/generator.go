package sensor_simulator

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/LeonardoBeccarini/ecogarden/internal/model"
	"github.com/LeonardoBeccarini/ecogarden/internal/model/entities"
	"github.com/LeonardoBeccarini/ecogarden/internal/model/messages"
)

// ====== Tunables ======
const (
	moistureMin = 10.0
	moistureMax = 95.0
	// pumpThreshold: the pump may only run below this moisture.
	pumpThreshold = 30.0
	// pumpProbability: chance that a dry reading reports the pump on.
	pumpProbability = 0.3

	daylightStart = 6
	daylightEnd   = 18 // inclusive
)

// DataGenerator synthesises one reading per sensor, shaped by the sensor type.
// Randomness is drawn from a single source so a seeded generator is reproducible.
type DataGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDataGenerator builds a generator on rng; nil seeds one from the clock.
func NewDataGenerator(rng *rand.Rand) *DataGenerator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &DataGenerator{rng: rng}
}

// Next returns the reading sensor would report at now.
func (g *DataGenerator) Next(sensor model.Sensor, now time.Time) model.Reading {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch sensor.Type {
	case entities.WateringUnit:
		return g.watering(now)
	case entities.EnvII:
		return g.environment(now)
	case entities.LightSensor:
		return g.light(now)
	default:
		return messages.GenericReading{Type: sensor.Type, Value: messages.Float(round1(g.rng.Float64() * 100))}
	}
}

// watering: slow sinusoid over wall-clock millis plus noise, bounded to [10, 95].
func (g *DataGenerator) watering(now time.Time) messages.WateringReading {
	wave := math.Sin(float64(now.UnixMilli())/100000) * 15
	moisture := round1(clamp(moistureMin, moistureMax, 45+(g.rng.Float64()-0.5)*20+wave))

	pump := false
	if moisture < pumpThreshold {
		pump = g.rng.Float64() > 1-pumpProbability
	}
	soil := round1(20 + g.rng.Float64()*8)

	return messages.WateringReading{
		Moisture:        messages.Float(moisture),
		PumpStatus:      messages.Bool(pump),
		SoilTemperature: messages.Float(soil),
	}
}

// environment: diurnal temperature and humidity, pressure around sea level.
func (g *DataGenerator) environment(now time.Time) messages.EnvironmentReading {
	h := float64(now.Hour())
	temp := 18 + math.Sin((h-6)*math.Pi/12)*6 + (g.rng.Float64()-0.5)*4
	hum := 55 + math.Sin(h*math.Pi/12)*15 + (g.rng.Float64()-0.5)*10
	press := 1013 + (g.rng.Float64()-0.5)*20

	return messages.EnvironmentReading{
		Temperature: messages.Float(round1(temp)),
		Humidity:    messages.Float(round1(hum)),
		Pressure:    messages.Float(round1(press)),
	}
}

// light: zero at night, half sine across the daylight window.
func (g *DataGenerator) light(now time.Time) messages.LightReading {
	h := now.Hour()
	if h < daylightStart || h > daylightEnd {
		return messages.LightReading{LightLevel: messages.Float(0), UVIndex: messages.Float(0)}
	}
	base := math.Max(0, math.Sin(float64(h-daylightStart)*math.Pi/12)*100)
	level := math.Max(0, base+(g.rng.Float64()-0.5)*20)
	uv := math.Max(0, base/100*8+(g.rng.Float64()-0.5)*2)

	return messages.LightReading{
		LightLevel: messages.Float(round1(level)),
		UVIndex:    messages.Float(round1(uv)),
	}
}

// ===== Helpers =====

func clamp(lo, hi, x float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
