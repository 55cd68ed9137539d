package garden

import (
	"fmt"

	"github.com/LeonardoBeccarini/ecogarden/internal/model/entities"
)

// Assign adds the (plant, sensor, role) triple. It reports false when the
// triple already exists. Exclusivity of non-shared sensors is not enforced
// here; AvailableSensors filters for it.
func (s *Store) Assign(plantID, sensorID int64, role entities.Role) (bool, error) {
	if !role.Valid() {
		return false, fmt.Errorf("assign %q: %w", role, ErrUnknownRole)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.plantIndex(plantID) < 0 {
		return false, fmt.Errorf("assign: plant %d: %w", plantID, ErrNotFound)
	}
	if s.sensorIndex(sensorID) < 0 {
		return false, fmt.Errorf("assign: sensor %d: %w", sensorID, ErrNotFound)
	}
	a := entities.Assignment{PlantID: plantID, SensorID: sensorID, Role: role}
	for _, existing := range s.assignments {
		if existing == a {
			return false, nil
		}
	}
	s.assignments = append(s.assignments, a)
	s.observeLocked()
	s.logger.Debugw("sensor assigned", "plant", plantID, "sensor", sensorID, "role", role)
	return true, nil
}

// Unassign removes the triple if present.
func (s *Store) Unassign(plantID, sensorID int64, role entities.Role) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := entities.Assignment{PlantID: plantID, SensorID: sensorID, Role: role}
	if s.pruneAssignments(func(x entities.Assignment) bool { return x == a }) == 0 {
		return false
	}
	s.observeLocked()
	s.logger.Debugw("sensor unassigned", "plant", plantID, "sensor", sensorID, "role", role)
	return true
}

// SensorsForPlant joins the plant's assignments to the sensor collection.
// Assignments whose sensor no longer exists are skipped.
func (s *Store) SensorsForPlant(plantID int64) []entities.AssignedSensor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.AssignedSensor
	for _, a := range s.assignments {
		if a.PlantID != plantID {
			continue
		}
		i := s.sensorIndex(a.SensorID)
		if i < 0 {
			continue
		}
		out = append(out, entities.AssignedSensor{
			Sensor:   s.sensors[i].Clone(),
			Role:     a.Role,
			RoleName: a.Role.DisplayName(),
		})
	}
	return out
}

// AvailableSensors lists active sensors that can still be offered for plantID:
// those not assigned to it yet, plus shared ones regardless of assignment.
func (s *Store) AvailableSensors(plantID int64) []entities.Sensor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assigned := make(map[int64]struct{})
	for _, a := range s.assignments {
		if a.PlantID == plantID {
			assigned[a.SensorID] = struct{}{}
		}
	}
	var out []entities.Sensor
	for _, sn := range s.sensors {
		if !sn.Active() {
			continue
		}
		if _, taken := assigned[sn.ID]; taken && !sn.Shared {
			continue
		}
		out = append(out, sn.Clone())
	}
	return out
}

// PlantsForSensor returns the ids of plants the sensor is assigned to, once each.
func (s *Store) PlantsForSensor(sensorID int64) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[int64]bool)
	var out []int64
	for _, a := range s.assignments {
		if a.SensorID == sensorID && !seen[a.PlantID] {
			seen[a.PlantID] = true
			out = append(out, a.PlantID)
		}
	}
	return out
}

// DeviceForSensor returns the device hosting the sensor.
func (s *Store) DeviceForSensor(sensorID int64) (entities.Device, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.sensorIndex(sensorID)
	if i < 0 {
		return entities.Device{}, false
	}
	j := s.deviceIndex(s.sensors[i].DeviceID)
	if j < 0 {
		return entities.Device{}, false
	}
	return s.devices[j], true
}

func (s *Store) SensorsByType(t entities.SensorType) []entities.Sensor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.Sensor
	for _, sn := range s.sensors {
		if sn.Type == t {
			out = append(out, sn.Clone())
		}
	}
	return out
}

// DeviceSensors lists the sensors attached to a device.
func (s *Store) DeviceSensors(deviceID int64) []entities.Sensor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.Sensor
	for _, sn := range s.sensors {
		if sn.DeviceID == deviceID {
			out = append(out, sn.Clone())
		}
	}
	return out
}

// ActiveSensors is the simulator's view of the sensor collection.
func (s *Store) ActiveSensors() []entities.Sensor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entities.Sensor
	for _, sn := range s.sensors {
		if sn.Active() {
			out = append(out, sn.Clone())
		}
	}
	return out
}
