package entities

import (
	"strings"
	"time"
)

// SensorStatus reports whether a sensor is currently producing readings.
type SensorStatus string

const (
	SensorActive  SensorStatus = "active"
	SensorOffline SensorStatus = "offline"
)

// Sensor is a typed data source attached to a Device.
type Sensor struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Type        SensorType         `json:"type"`
	DeviceID    int64              `json:"deviceId"`
	Shared      bool               `json:"shared"`
	Location    string             `json:"location,omitempty"`
	MQTTTopic   string             `json:"mqttTopic"`
	Calibration map[string]float64 `json:"calibration,omitempty"`
	Status      SensorStatus       `json:"status"`
	LastReading time.Time          `json:"lastReading"`
}

// Active reports whether the simulator and the resolver should consider the sensor.
func (s Sensor) Active() bool {
	return s.Status == SensorActive
}

// Descriptor returns the static descriptor of the sensor type, if the type is known.
func (s Sensor) Descriptor() (SensorTypeInfo, bool) {
	return LookupSensorType(s.Type)
}

// Clone returns a copy that does not share the calibration map.
func (s Sensor) Clone() Sensor {
	if s.Calibration != nil {
		c := make(map[string]float64, len(s.Calibration))
		for k, v := range s.Calibration {
			c[k] = v
		}
		s.Calibration = c
	}
	return s
}

// Validate checks the fields a sensor form requires. Referential checks
// (owning device exists) are left to the store.
func (s Sensor) Validate() error {
	verr := NewValidationError("sensor")
	if strings.TrimSpace(s.Name) == "" {
		verr.Add("name", "Sensor name is required")
	}
	if s.DeviceID == 0 {
		verr.Add("deviceId", "Please select a device")
	}
	if _, ok := LookupSensorType(s.Type); !ok {
		verr.Add("type", "Unknown sensor type")
	}
	if strings.TrimSpace(s.MQTTTopic) == "" {
		verr.Add("mqttTopic", "MQTT topic is required")
	}
	return verr.OrNil()
}

// DefaultTopic derives the MQTT topic shown in the sensor form from its name.
func DefaultTopic(name string) string {
	return "ecogarden/" + Slug(name)
}
