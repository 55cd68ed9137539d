package garden

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonardoBeccarini/ecogarden/internal/model/entities"
	"github.com/LeonardoBeccarini/ecogarden/internal/model/messages"
)

var batchTime = time.Date(2025, 8, 23, 9, 0, 0, 0, time.UTC)

func TestIngestUnassignedSensorChangesNothing(t *testing.T) {
	s := newDemoStore(t)
	before := s.Plants()
	refs := append([]*entities.Plant(nil), s.plants...)

	_, err := s.UpsertSensor(entities.Sensor{ID: 50, Name: "Spare", Type: entities.WateringUnit, DeviceID: 2})
	require.NoError(t, err)

	changed := s.Ingest(messages.Batch{50: {Data: messages.WateringReading{Moisture: messages.Float(12)}, Timestamp: batchTime}})
	assert.Empty(t, changed)
	assert.Equal(t, before, s.Plants())
	for i := range refs {
		assert.Same(t, refs[i], s.plants[i])
	}
}

func TestIngestPrimaryMoisture(t *testing.T) {
	s := NewStore(nil)
	s.Load(Snapshot{
		Plants: []entities.Plant{{ID: 1, Name: "Monstera", Location: "Living Room",
			SensorData: map[entities.ReadingKind]entities.SensorValue{
				entities.KindTemperature: {Value: 22.3, SensorID: 4, LastReading: fixedNow},
			}}},
		Devices:     []entities.Device{{ID: 1, Name: "Core", MACAddress: "AA:BB:CC:DD:EE:01"}},
		Sensors:     []entities.Sensor{{ID: 7, Name: "Watering", Type: entities.WateringUnit, DeviceID: 1, Status: entities.SensorActive}},
		Assignments: []entities.Assignment{{PlantID: 1, SensorID: 7, Role: entities.RolePrimaryMoisture}},
	})

	changed := s.Ingest(messages.Batch{7: {Data: messages.WateringReading{Moisture: messages.Float(55)}, Timestamp: batchTime}})
	assert.Equal(t, []int64{1}, changed)

	p, _ := s.Plant(1)
	assert.Equal(t, entities.SensorValue{Value: 55.0, SensorID: 7, LastReading: batchTime}, p.SensorData[entities.KindMoisture])
	assert.Equal(t, entities.SensorValue{Value: 22.3, SensorID: 4, LastReading: fixedNow}, p.SensorData[entities.KindTemperature])
	assert.NotContains(t, p.SensorData, entities.KindPumpStatus)
}

func TestIngestAppliesRoleMappingsOnly(t *testing.T) {
	s := newDemoStore(t)
	_, err := s.Assign(4, 1, entities.RoleBackupMoisture)
	require.NoError(t, err)
	before4, _ := s.Plant(4)
	ref2 := s.plants[1]

	changed := s.Ingest(messages.Batch{
		1: {Data: messages.WateringReading{Moisture: messages.Float(28.4), PumpStatus: messages.Bool(true), SoilTemperature: messages.Float(24)}, Timestamp: batchTime},
		4: {Data: messages.EnvironmentReading{Temperature: messages.Float(19.5), Humidity: messages.Float(58), Pressure: messages.Float(1009)}, Timestamp: batchTime},
	})
	assert.ElementsMatch(t, []int64{1, 2, 3, 4}, changed)

	p1, _ := s.Plant(1)
	assert.Equal(t, 28.4, p1.SensorData[entities.KindMoisture].Value)
	assert.Equal(t, true, p1.SensorData[entities.KindPumpStatus].Value)
	assert.Equal(t, 19.5, p1.SensorData[entities.KindTemperature].Value)
	assert.Equal(t, 58.0, p1.SensorData[entities.KindHumidity].Value)
	assert.Len(t, p1.SensorData, 4, "soilTemperature and pressure have no slot")

	// backup_moisture is inert: plant 4 only sees the environmental update.
	p4, _ := s.Plant(4)
	assert.NotContains(t, p4.SensorData, entities.KindMoisture)
	assert.NotEqual(t, before4.SensorData[entities.KindTemperature], p4.SensorData[entities.KindTemperature])

	assert.NotSame(t, ref2, s.plants[1], "changed plants get a fresh copy")
}

func TestIngestKeepsPointerForUntouchedPlants(t *testing.T) {
	s := newDemoStore(t)
	refs := append([]*entities.Plant(nil), s.plants...)

	changed := s.Ingest(messages.Batch{2: {Data: messages.WateringReading{Moisture: messages.Float(40)}, Timestamp: batchTime}})
	assert.Equal(t, []int64{2}, changed)
	assert.Same(t, refs[0], s.plants[0])
	assert.NotSame(t, refs[1], s.plants[1])
	assert.Same(t, refs[2], s.plants[2])
	assert.Same(t, refs[3], s.plants[3])
}

func TestIngestEmptyBatch(t *testing.T) {
	s := newDemoStore(t)
	assert.Nil(t, s.Ingest(nil))
	assert.Nil(t, s.Ingest(messages.Batch{}))
}

func TestTogglePump(t *testing.T) {
	s := NewStore(nil, WithClock(func() time.Time { return fixedNow }))
	s.Load(DemoData())

	ok, err := s.TogglePump(1)
	require.NoError(t, err)
	assert.True(t, ok)
	p, _ := s.Plant(1)
	assert.Equal(t, entities.SensorValue{Value: true, SensorID: 1, LastReading: fixedNow}, p.SensorData[entities.KindPumpStatus])

	ok, err = s.TogglePump(4)
	require.NoError(t, err)
	assert.False(t, ok, "no pump reading, nothing to toggle")

	_, err = s.TogglePump(99)
	assert.ErrorIs(t, err, ErrNotFound)
}
