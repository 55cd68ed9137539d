package messages

import "github.com/LeonardoBeccarini/ecogarden/internal/model/entities"

// Reading is one sensor sample. Each variant carries only the fields its
// sensor type produces; nil pointers mean the field is absent.
type Reading interface {
	SensorType() entities.SensorType
	// Values lists the present fields in declaration order.
	Values() []FieldValue
}

// FieldValue is one named field of a Reading.
type FieldValue struct {
	Field string
	Value any
}

// WateringReading is produced by WATERING_UNIT sensors.
type WateringReading struct {
	Moisture        *float64 `json:"moisture,omitempty"`
	PumpStatus      *bool    `json:"pumpStatus,omitempty"`
	SoilTemperature *float64 `json:"soilTemperature,omitempty"`
}

func (WateringReading) SensorType() entities.SensorType { return entities.WateringUnit }

func (r WateringReading) Values() []FieldValue {
	var out []FieldValue
	if r.Moisture != nil {
		out = append(out, FieldValue{"moisture", *r.Moisture})
	}
	if r.PumpStatus != nil {
		out = append(out, FieldValue{"pumpStatus", *r.PumpStatus})
	}
	if r.SoilTemperature != nil {
		out = append(out, FieldValue{"soilTemperature", *r.SoilTemperature})
	}
	return out
}

// EnvironmentReading is produced by ENV_II sensors.
type EnvironmentReading struct {
	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	Pressure    *float64 `json:"pressure,omitempty"`
}

func (EnvironmentReading) SensorType() entities.SensorType { return entities.EnvII }

func (r EnvironmentReading) Values() []FieldValue {
	var out []FieldValue
	if r.Temperature != nil {
		out = append(out, FieldValue{"temperature", *r.Temperature})
	}
	if r.Humidity != nil {
		out = append(out, FieldValue{"humidity", *r.Humidity})
	}
	if r.Pressure != nil {
		out = append(out, FieldValue{"pressure", *r.Pressure})
	}
	return out
}

// LightReading is produced by LIGHT_SENSOR sensors.
type LightReading struct {
	LightLevel *float64 `json:"lightLevel,omitempty"`
	UVIndex    *float64 `json:"uvIndex,omitempty"`
}

func (LightReading) SensorType() entities.SensorType { return entities.LightSensor }

func (r LightReading) Values() []FieldValue {
	var out []FieldValue
	if r.LightLevel != nil {
		out = append(out, FieldValue{"lightLevel", *r.LightLevel})
	}
	if r.UVIndex != nil {
		out = append(out, FieldValue{"uvIndex", *r.UVIndex})
	}
	return out
}

// GenericReading is produced by sensors of any other type.
type GenericReading struct {
	Type  entities.SensorType `json:"-"`
	Value *float64            `json:"value,omitempty"`
}

func (r GenericReading) SensorType() entities.SensorType { return r.Type }

func (r GenericReading) Values() []FieldValue {
	if r.Value == nil {
		return nil
	}
	return []FieldValue{{"value", *r.Value}}
}

// Field returns the value of the named field when r carries it.
func Field(r Reading, name string) (any, bool) {
	if r == nil {
		return nil, false
	}
	for _, fv := range r.Values() {
		if fv.Field == name {
			return fv.Value, true
		}
	}
	return nil, false
}

// Float and Bool build the optional fields of a Reading.
func Float(v float64) *float64 { return &v }
func Bool(v bool) *bool        { return &v }
