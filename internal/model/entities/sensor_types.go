package entities

import "sort"

// SensorType is one of a fixed enumeration of hardware units.
type SensorType string

const (
	WateringUnit SensorType = "WATERING_UNIT"
	EnvII        SensorType = "ENV_II"
	LightSensor  SensorType = "LIGHT_SENSOR"
)

// SensorTypeInfo is the static descriptor of a sensor type.
type SensorTypeInfo struct {
	Type         SensorType `json:"type"`
	Name         string     `json:"name"`
	DataFields   []string   `json:"dataFields"`
	Capabilities []string   `json:"capabilities"`
	Shared       bool       `json:"shared"` // default for new sensors of this type
}

var sensorTypes = map[SensorType]SensorTypeInfo{
	WateringUnit: {
		Type:         WateringUnit,
		Name:         "Watering Unit",
		DataFields:   []string{"moisture", "pumpStatus", "soilTemperature"},
		Capabilities: []string{"moisture_sensing", "pump_control"},
		Shared:       false,
	},
	EnvII: {
		Type:         EnvII,
		Name:         "ENV II Sensor",
		DataFields:   []string{"temperature", "humidity", "pressure"},
		Capabilities: []string{"environmental_monitoring"},
		Shared:       true,
	},
	LightSensor: {
		Type:         LightSensor,
		Name:         "Light Sensor",
		DataFields:   []string{"lightLevel", "uvIndex"},
		Capabilities: []string{"light_monitoring"},
		Shared:       true,
	},
}

// LookupSensorType returns the descriptor for t.
func LookupSensorType(t SensorType) (SensorTypeInfo, bool) {
	info, ok := sensorTypes[t]
	return info, ok
}

// SensorTypes lists every descriptor ordered by type name.
func SensorTypes() []SensorTypeInfo {
	out := make([]SensorTypeInfo, 0, len(sensorTypes))
	for _, info := range sensorTypes {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}
