package garden

import (
	"time"

	"github.com/LeonardoBeccarini/ecogarden/internal/model/entities"
)

// Load replaces every collection with a copy of snap.
func (s *Store) Load(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.plants = make([]*entities.Plant, 0, len(snap.Plants))
	for i := range snap.Plants {
		p := snap.Plants[i].Clone()
		if p.SensorData == nil {
			p.SensorData = map[entities.ReadingKind]entities.SensorValue{}
		}
		s.plants = append(s.plants, p)
	}
	s.devices = append([]entities.Device(nil), snap.Devices...)
	s.sensors = make([]entities.Sensor, 0, len(snap.Sensors))
	for _, sn := range snap.Sensors {
		s.sensors = append(s.sensors, sn.Clone())
	}
	s.assignments = append([]entities.Assignment(nil), snap.Assignments...)
	s.observeLocked()
	s.logger.Infow("store loaded",
		"plants", len(s.plants), "devices", len(s.devices),
		"sensors", len(s.sensors), "assignments", len(s.assignments))
}

func ts(v string) time.Time {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		panic(err)
	}
	return t
}

func intp(v int) *int { return &v }

func reading(v any, sensorID int64, at string) entities.SensorValue {
	return entities.SensorValue{Value: v, SensorID: sensorID, LastReading: ts(at)}
}

// DemoData is the garden the dashboard ships with: four plants, three
// M5Stack devices, four sensors and their seven assignments.
func DemoData() Snapshot {
	plants := []entities.Plant{
		{
			ID: 1, Name: "Monstera", Species: "Monstera deliciosa", Location: "Living Room",
			LastWatered:        ts("2025-08-20T14:30:00Z"),
			OptimalMoisture:    entities.Range{Min: 40, Max: 70},
			OptimalTemperature: entities.Range{Min: 18, Max: 27},
			SensorData: map[entities.ReadingKind]entities.SensorValue{
				entities.KindMoisture:    reading(45.0, 1, "2025-08-22T10:30:00Z"),
				entities.KindTemperature: reading(22.3, 4, "2025-08-22T10:30:00Z"),
				entities.KindHumidity:    reading(65.0, 4, "2025-08-22T10:30:00Z"),
				entities.KindPumpStatus:  reading(false, 1, "2025-08-22T10:30:00Z"),
			},
			PlantedDate: "2024-03-15",
			Notes:       "Thriving in indirect light, watered weekly",
		},
		{
			ID: 2, Name: "Aloe Vera", Species: "Aloe barbadensis", Location: "Kitchen",
			LastWatered:        ts("2025-08-21T08:15:00Z"),
			OptimalMoisture:    entities.Range{Min: 30, Max: 50},
			OptimalTemperature: entities.Range{Min: 16, Max: 24},
			SensorData: map[entities.ReadingKind]entities.SensorValue{
				entities.KindMoisture:    reading(68.0, 2, "2025-08-22T10:29:00Z"),
				entities.KindTemperature: reading(24.1, 4, "2025-08-22T10:30:00Z"),
				entities.KindHumidity:    reading(65.0, 4, "2025-08-22T10:30:00Z"),
				entities.KindPumpStatus:  reading(true, 2, "2025-08-22T10:29:00Z"),
			},
			PlantedDate: "2024-01-10",
			Notes:       "Needs well-draining soil, minimal watering",
		},
		{
			ID: 3, Name: "Snake Plant", Species: "Sansevieria trifasciata", Location: "Bedroom",
			LastWatered:        ts("2025-08-19T16:45:00Z"),
			OptimalMoisture:    entities.Range{Min: 25, Max: 45},
			OptimalTemperature: entities.Range{Min: 15, Max: 24},
			SensorData: map[entities.ReadingKind]entities.SensorValue{
				entities.KindMoisture:    reading(32.0, 3, "2025-08-21T18:45:00Z"),
				entities.KindTemperature: reading(21.8, 4, "2025-08-22T10:30:00Z"),
				entities.KindHumidity:    reading(65.0, 4, "2025-08-22T10:30:00Z"),
				entities.KindPumpStatus:  reading(false, 3, "2025-08-21T18:45:00Z"),
			},
			PlantedDate: "2024-05-20",
			Notes:       "Very drought tolerant, prefers neglect",
		},
		{
			ID: 4, Name: "Fiddle Leaf Fig", Species: "Ficus lyrata", Location: "Office",
			LastWatered:        ts("2025-08-20T11:20:00Z"),
			OptimalMoisture:    entities.Range{Min: 50, Max: 75},
			OptimalTemperature: entities.Range{Min: 18, Max: 26},
			SensorData: map[entities.ReadingKind]entities.SensorValue{
				entities.KindTemperature: reading(23.5, 4, "2025-08-22T10:30:00Z"),
				entities.KindHumidity:    reading(65.0, 4, "2025-08-22T10:30:00Z"),
			},
			PlantedDate: "2024-02-28",
			Notes:       "No dedicated watering sensor yet - needs manual monitoring",
		},
	}

	devices := []entities.Device{
		{
			ID: 1, Name: "M5Stack Core 1", Type: "ESP32-based", MACAddress: "AA:BB:CC:DD:EE:01",
			MQTTClientID: "m5stack_core_1", Status: entities.DeviceConnected,
			LastSeen: ts("2025-08-22T10:30:00Z"), WifiStrength: intp(-45), Location: "Living Room",
		},
		{
			ID: 2, Name: "M5Stack Core 2", Type: "ESP32-based", MACAddress: "AA:BB:CC:DD:EE:02",
			MQTTClientID: "m5stack_core_2", Status: entities.DeviceConnected,
			LastSeen: ts("2025-08-22T10:29:00Z"), WifiStrength: intp(-52), Location: "Kitchen",
		},
		{
			ID: 3, Name: "M5Stack Core 3", Type: "ESP32-based", MACAddress: "AA:BB:CC:DD:EE:03",
			MQTTClientID: "m5stack_core_3", Status: entities.DeviceOffline,
			LastSeen: ts("2025-08-21T18:45:00Z"), Location: "Bedroom",
		},
	}

	sensors := []entities.Sensor{
		{
			ID: 1, Name: "Watering Unit 1", Type: entities.WateringUnit, DeviceID: 1,
			MQTTTopic: "ecogarden/watering1", Shared: false,
			Calibration: map[string]float64{"moistureMin": 0, "moistureMax": 1023, "moistureOffset": 0},
			Status:      entities.SensorActive, LastReading: ts("2025-08-22T10:30:00Z"), Location: "Monstera Bucket",
		},
		{
			ID: 2, Name: "Watering Unit 2", Type: entities.WateringUnit, DeviceID: 2,
			MQTTTopic: "ecogarden/watering2", Shared: false,
			Calibration: map[string]float64{"moistureMin": 0, "moistureMax": 1023, "moistureOffset": -15},
			Status:      entities.SensorActive, LastReading: ts("2025-08-22T10:29:00Z"), Location: "Aloe Vera Bucket",
		},
		{
			ID: 3, Name: "Watering Unit 3", Type: entities.WateringUnit, DeviceID: 3,
			MQTTTopic: "ecogarden/watering3", Shared: false,
			Calibration: map[string]float64{"moistureMin": 0, "moistureMax": 1023, "moistureOffset": 10},
			Status:      entities.SensorOffline, LastReading: ts("2025-08-21T18:45:00Z"), Location: "Snake Plant Bucket",
		},
		{
			ID: 4, Name: "ENV II Living Room", Type: entities.EnvII, DeviceID: 1,
			MQTTTopic: "ecogarden/env_living_room", Shared: true,
			Calibration: map[string]float64{"temperatureOffset": 0, "humidityOffset": 2},
			Status:      entities.SensorActive, LastReading: ts("2025-08-22T10:30:00Z"), Location: "Living Room",
		},
	}

	assignments := []entities.Assignment{
		{PlantID: 1, SensorID: 1, Role: entities.RolePrimaryMoisture},
		{PlantID: 1, SensorID: 4, Role: entities.RoleEnvironmental},
		{PlantID: 2, SensorID: 2, Role: entities.RolePrimaryMoisture},
		{PlantID: 2, SensorID: 4, Role: entities.RoleEnvironmental},
		{PlantID: 3, SensorID: 3, Role: entities.RolePrimaryMoisture},
		{PlantID: 3, SensorID: 4, Role: entities.RoleEnvironmental},
		{PlantID: 4, SensorID: 4, Role: entities.RoleEnvironmental},
	}

	return Snapshot{Plants: plants, Devices: devices, Sensors: sensors, Assignments: assignments}
}
