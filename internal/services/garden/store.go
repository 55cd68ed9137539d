package garden

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/ecogarden/internal/metrics"
	"github.com/LeonardoBeccarini/ecogarden/internal/model/entities"
)

// Store exclusively owns plants, devices, sensors and assignments.
// Every mutation and every ingest runs under mu; readers get copies.
type Store struct {
	mu     sync.RWMutex
	logger *zap.SugaredLogger
	now    func() time.Time

	plants      []*entities.Plant
	devices     []entities.Device
	sensors     []entities.Sensor
	assignments []entities.Assignment
}

type Option func(*Store)

// WithClock replaces time.Now for id allocation and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(logger *zap.SugaredLogger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Store{
		logger: logger,
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Snapshot is a consistent copy of every collection.
type Snapshot struct {
	Plants      []entities.Plant      `json:"plants"`
	Devices     []entities.Device     `json:"devices"`
	Sensors     []entities.Sensor     `json:"sensors"`
	Assignments []entities.Assignment `json:"assignments"`
	TakenAt     time.Time             `json:"takenAt"`
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Plants:      s.plantsLocked(),
		Devices:     append([]entities.Device(nil), s.devices...),
		Sensors:     s.sensorsLocked(),
		Assignments: append([]entities.Assignment(nil), s.assignments...),
		TakenAt:     s.now().UTC(),
	}
}

// ---- plants ----

func (s *Store) Plants() []entities.Plant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plantsLocked()
}

func (s *Store) Plant(id int64) (entities.Plant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.plantIndex(id); i >= 0 {
		return *s.plants[i].Clone(), true
	}
	return entities.Plant{}, false
}

// UpsertPlant replaces the plant with the same id or appends it. Id 0 creates
// a new plant with a fresh id. A nil SensorData keeps the stored readings.
func (s *Store) UpsertPlant(p entities.Plant) (entities.Plant, error) {
	if err := p.Validate(); err != nil {
		return entities.Plant{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := p.Clone()
	i := s.plantIndex(p.ID)
	if i >= 0 {
		if stored.SensorData == nil {
			stored.SensorData = s.plants[i].Clone().SensorData
		}
		s.plants[i] = stored
	} else {
		if stored.ID == 0 {
			stored.ID = s.nextID(func(id int64) bool { return s.plantIndex(id) >= 0 })
		}
		if stored.SensorData == nil {
			stored.SensorData = map[entities.ReadingKind]entities.SensorValue{}
		}
		s.plants = append(s.plants, stored)
	}
	s.observeLocked()
	s.logger.Debugw("plant upserted", "id", stored.ID, "created", i < 0)
	return *stored.Clone(), nil
}

// DeletePlant removes the plant and every assignment referencing it.
// Unknown ids are a no-op.
func (s *Store) DeletePlant(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.plantIndex(id)
	if i < 0 {
		return false
	}
	s.plants = append(s.plants[:i], s.plants[i+1:]...)
	pruned := s.pruneAssignments(func(a entities.Assignment) bool { return a.PlantID == id })
	s.observeLocked()
	s.logger.Infow("plant deleted", "id", id, "assignmentsPruned", pruned)
	return true
}

// ---- devices ----

func (s *Store) Devices() []entities.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.Device(nil), s.devices...)
}

func (s *Store) Device(id int64) (entities.Device, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.deviceIndex(id); i >= 0 {
		return s.devices[i], true
	}
	return entities.Device{}, false
}

// UpsertDevice validates d, normalises its MAC and derives the MQTT client id
// from the name when it is empty. MAC addresses are unique across devices.
func (s *Store) UpsertDevice(d entities.Device) (entities.Device, error) {
	if d.MQTTClientID == "" {
		d.MQTTClientID = entities.DefaultClientID(d.Name)
	}
	if err := d.Validate(); err != nil {
		return entities.Device{}, err
	}
	d.MACAddress = entities.NormalizeMAC(d.MACAddress)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, other := range s.devices {
		if other.ID != d.ID && other.MACAddress == d.MACAddress {
			verr := entities.NewValidationError("device")
			verr.Add("macAddress", fmt.Sprintf("MAC address already used by %q", other.Name))
			return entities.Device{}, verr
		}
	}

	i := s.deviceIndex(d.ID)
	if i >= 0 {
		if d.Status == "" {
			d.Status = s.devices[i].Status
		}
		if d.LastSeen.IsZero() {
			d.LastSeen = s.devices[i].LastSeen
		}
		s.devices[i] = d
	} else {
		if d.ID == 0 {
			d.ID = s.nextID(func(id int64) bool { return s.deviceIndex(id) >= 0 })
		}
		if d.Status == "" {
			d.Status = entities.DeviceConnected
		}
		if d.LastSeen.IsZero() {
			d.LastSeen = s.now().UTC()
		}
		s.devices = append(s.devices, d)
	}
	s.observeLocked()
	s.logger.Debugw("device upserted", "id", d.ID, "mac", d.MACAddress, "created", i < 0)
	return d, nil
}

// DeleteDevice removes a device that no sensor references.
func (s *Store) DeleteDevice(id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.deviceIndex(id)
	if i < 0 {
		return false, nil
	}
	attached := 0
	for _, sn := range s.sensors {
		if sn.DeviceID == id {
			attached++
		}
	}
	if attached > 0 {
		return false, fmt.Errorf("delete device %d: %w (%d)", id, ErrDeviceHasSensors, attached)
	}
	s.devices = append(s.devices[:i], s.devices[i+1:]...)
	s.observeLocked()
	s.logger.Infow("device deleted", "id", id)
	return true, nil
}

// ---- sensors ----

func (s *Store) Sensors() []entities.Sensor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sensorsLocked()
}

func (s *Store) Sensor(id int64) (entities.Sensor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.sensorIndex(id); i >= 0 {
		return s.sensors[i].Clone(), true
	}
	return entities.Sensor{}, false
}

// SensorType reports the declared type of a sensor.
func (s *Store) SensorType(id int64) (entities.SensorType, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.sensorIndex(id); i >= 0 {
		return s.sensors[i].Type, true
	}
	return "", false
}

// UpsertSensor stores sn with its Shared flag taken literally.
func (s *Store) UpsertSensor(sn entities.Sensor) (entities.Sensor, error) {
	shared := sn.Shared
	return s.upsertSensor(sn, &shared)
}

// upsertSensor applies the sensor form. A nil shared keeps the stored flag on
// update and falls back to the type default on create.
func (s *Store) upsertSensor(sn entities.Sensor, shared *bool) (entities.Sensor, error) {
	if sn.MQTTTopic == "" {
		sn.MQTTTopic = entities.DefaultTopic(sn.Name)
	}
	if err := sn.Validate(); err != nil {
		return entities.Sensor{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deviceIndex(sn.DeviceID) < 0 {
		verr := entities.NewValidationError("sensor")
		verr.Add("deviceId", fmt.Sprintf("Device %d does not exist", sn.DeviceID))
		return entities.Sensor{}, verr
	}

	sn = sn.Clone()
	if shared != nil {
		sn.Shared = *shared
	}
	i := s.sensorIndex(sn.ID)
	if i >= 0 {
		prev := s.sensors[i]
		if shared == nil {
			sn.Shared = prev.Shared
		}
		if sn.Status == "" {
			sn.Status = prev.Status
		}
		if sn.LastReading.IsZero() {
			sn.LastReading = prev.LastReading
		}
		s.sensors[i] = sn
	} else {
		if sn.ID == 0 {
			sn.ID = s.nextID(func(id int64) bool { return s.sensorIndex(id) >= 0 })
		}
		if shared == nil {
			info, _ := entities.LookupSensorType(sn.Type)
			sn.Shared = info.Shared
		}
		if sn.Status == "" {
			sn.Status = entities.SensorActive
		}
		if sn.LastReading.IsZero() {
			sn.LastReading = s.now().UTC()
		}
		s.sensors = append(s.sensors, sn)
	}
	s.observeLocked()
	s.logger.Debugw("sensor upserted", "id", sn.ID, "type", sn.Type, "device", sn.DeviceID, "created", i < 0)
	return sn.Clone(), nil
}

// DeleteSensor removes the sensor and every assignment referencing it.
func (s *Store) DeleteSensor(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.sensorIndex(id)
	if i < 0 {
		return false
	}
	s.sensors = append(s.sensors[:i], s.sensors[i+1:]...)
	pruned := s.pruneAssignments(func(a entities.Assignment) bool { return a.SensorID == id })
	s.observeLocked()
	s.logger.Infow("sensor deleted", "id", id, "assignmentsPruned", pruned)
	return true
}

func (s *Store) Assignments() []entities.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.Assignment(nil), s.assignments...)
}

// ---- helpers, callers hold mu ----

func (s *Store) plantsLocked() []entities.Plant {
	out := make([]entities.Plant, 0, len(s.plants))
	for _, p := range s.plants {
		out = append(out, *p.Clone())
	}
	return out
}

func (s *Store) sensorsLocked() []entities.Sensor {
	out := make([]entities.Sensor, 0, len(s.sensors))
	for _, sn := range s.sensors {
		out = append(out, sn.Clone())
	}
	return out
}

func (s *Store) plantIndex(id int64) int {
	for i, p := range s.plants {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) deviceIndex(id int64) int {
	for i, d := range s.devices {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) sensorIndex(id int64) int {
	for i, sn := range s.sensors {
		if sn.ID == id {
			return i
		}
	}
	return -1
}

// nextID derives an id from the clock in milliseconds, bumping until unused.
func (s *Store) nextID(taken func(int64) bool) int64 {
	id := s.now().UnixMilli()
	for id == 0 || taken(id) {
		id++
	}
	return id
}

func (s *Store) pruneAssignments(drop func(entities.Assignment) bool) int {
	kept := s.assignments[:0]
	for _, a := range s.assignments {
		if !drop(a) {
			kept = append(kept, a)
		}
	}
	n := len(s.assignments) - len(kept)
	s.assignments = kept
	return n
}

func (s *Store) observeLocked() {
	metrics.Entities.WithLabelValues("plant").Set(float64(len(s.plants)))
	metrics.Entities.WithLabelValues("device").Set(float64(len(s.devices)))
	metrics.Entities.WithLabelValues("sensor").Set(float64(len(s.sensors)))
	metrics.Entities.WithLabelValues("assignment").Set(float64(len(s.assignments)))
}
