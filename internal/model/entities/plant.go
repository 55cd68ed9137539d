package entities

import (
	"strings"
	"time"
)

// ReadingKind names a slot of Plant.SensorData.
type ReadingKind string

const (
	KindMoisture    ReadingKind = "moisture"
	KindTemperature ReadingKind = "temperature"
	KindHumidity    ReadingKind = "humidity"
	KindPumpStatus  ReadingKind = "pumpStatus"
)

// SensorValue is the latest known value of one reading kind and where it came from.
// Value holds a float64 for numeric kinds and a bool for pumpStatus.
type SensorValue struct {
	Value       any       `json:"value"`
	SensorID    int64     `json:"sensorId"`
	LastReading time.Time `json:"lastReading"`
}

// Float returns Value as float64 when it is numeric.
func (v SensorValue) Float() (float64, bool) {
	switch n := v.Value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Bool returns Value as bool when it is one.
func (v SensorValue) Bool() (bool, bool) {
	b, ok := v.Value.(bool)
	return b, ok
}

// Range is an inclusive [Min, Max] target.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Plant is a monitored entity with optimal-range targets and its latest sensor readings.
type Plant struct {
	ID                 int64                       `json:"id"`
	Name               string                      `json:"name"`
	Species            string                      `json:"species,omitempty"`
	Location           string                      `json:"location"`
	PlantedDate        string                      `json:"plantedDate,omitempty"` // YYYY-MM-DD
	Notes              string                      `json:"notes,omitempty"`
	Photo              string                      `json:"photo,omitempty"`
	LastWatered        time.Time                   `json:"lastWatered"`
	OptimalMoisture    Range                       `json:"optimalMoisture"`
	OptimalTemperature Range                       `json:"optimalTemperature"`
	SensorData         map[ReadingKind]SensorValue `json:"sensorData"`
}

// Reading returns the latest value of kind, if any.
func (p *Plant) Reading(kind ReadingKind) (SensorValue, bool) {
	if p == nil || p.SensorData == nil {
		return SensorValue{}, false
	}
	v, ok := p.SensorData[kind]
	return v, ok
}

// NeedsWater reports whether a moisture reading exists and is below the optimal minimum.
func (p *Plant) NeedsWater() bool {
	v, ok := p.Reading(KindMoisture)
	if !ok {
		return false
	}
	m, ok := v.Float()
	return ok && m < p.OptimalMoisture.Min
}

// Clone returns a deep copy; SensorData is never shared between copies.
func (p *Plant) Clone() *Plant {
	if p == nil {
		return nil
	}
	c := *p
	if p.SensorData != nil {
		c.SensorData = make(map[ReadingKind]SensorValue, len(p.SensorData))
		for k, v := range p.SensorData {
			c.SensorData[k] = v
		}
	}
	return &c
}

// Validate checks the plant form rules.
func (p Plant) Validate() error {
	verr := NewValidationError("plant")
	if strings.TrimSpace(p.Name) == "" {
		verr.Add("name", "Plant name is required")
	}
	if strings.TrimSpace(p.Location) == "" {
		verr.Add("location", "Location is required")
	}
	if p.OptimalMoisture.Min > p.OptimalMoisture.Max {
		verr.Add("optimalMoisture", "Minimum must not exceed maximum")
	}
	if p.OptimalTemperature.Min > p.OptimalTemperature.Max {
		verr.Add("optimalTemperature", "Minimum must not exceed maximum")
	}
	if p.PlantedDate != "" {
		if _, err := time.Parse(time.DateOnly, p.PlantedDate); err != nil {
			verr.Add("plantedDate", "Use YYYY-MM-DD")
		}
	}
	return verr.OrNil()
}
