package garden

import (
	"fmt"

	"github.com/LeonardoBeccarini/ecogarden/internal/metrics"
	"github.com/LeonardoBeccarini/ecogarden/internal/model/entities"
	"github.com/LeonardoBeccarini/ecogarden/internal/model/messages"
)

type fieldMapping struct {
	role  entities.Role
	field string
	kind  entities.ReadingKind
}

// ingestMappings are the only (role, field) pairs that reach plant sensor data.
// Every other combination, backup_moisture and light_monitoring included, is inert.
var ingestMappings = []fieldMapping{
	{entities.RolePrimaryMoisture, "moisture", entities.KindMoisture},
	{entities.RolePrimaryMoisture, "pumpStatus", entities.KindPumpStatus},
	{entities.RoleEnvironmental, "temperature", entities.KindTemperature},
	{entities.RoleEnvironmental, "humidity", entities.KindHumidity},
}

// Ingest applies batch onto every plant through its assignments and returns the
// ids of plants that changed. A plant without a matching reading keeps its
// stored pointer; a changed plant is replaced by a fresh copy.
func (s *Store) Ingest(batch messages.Batch) []int64 {
	if len(batch) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	byPlant := make(map[int64][]entities.Assignment)
	for _, a := range s.assignments {
		if _, ok := batch[a.SensorID]; ok {
			byPlant[a.PlantID] = append(byPlant[a.PlantID], a)
		}
	}

	var changed []int64
	for i, p := range s.plants {
		var updated *entities.Plant
		for _, a := range byPlant[p.ID] {
			upd := batch[a.SensorID]
			for _, m := range ingestMappings {
				if m.role != a.Role {
					continue
				}
				v, ok := messages.Field(upd.Data, m.field)
				if !ok {
					continue
				}
				if updated == nil {
					updated = p.Clone()
					if updated.SensorData == nil {
						updated.SensorData = map[entities.ReadingKind]entities.SensorValue{}
					}
				}
				updated.SensorData[m.kind] = entities.SensorValue{
					Value:       v,
					SensorID:    a.SensorID,
					LastReading: upd.Timestamp,
				}
				metrics.PlantUpdatesTotal.WithLabelValues(string(m.kind)).Inc()
			}
		}
		if updated != nil {
			s.plants[i] = updated
			changed = append(changed, p.ID)
		}
	}
	metrics.IngestBatchesTotal.Inc()
	s.logger.Debugw("batch ingested", "readings", len(batch), "plantsChanged", len(changed))
	return changed
}

// TogglePump flips the plant's pumpStatus reading. It reports false, without
// error, when the plant has no pumpStatus reading.
func (s *Store) TogglePump(plantID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.plantIndex(plantID)
	if i < 0 {
		return false, fmt.Errorf("toggle pump: plant %d: %w", plantID, ErrNotFound)
	}
	cur, ok := s.plants[i].Reading(entities.KindPumpStatus)
	if !ok {
		return false, nil
	}
	on, ok := cur.Bool()
	if !ok {
		return false, nil
	}
	updated := s.plants[i].Clone()
	cur.Value = !on
	cur.LastReading = s.now().UTC()
	updated.SensorData[entities.KindPumpStatus] = cur
	s.plants[i] = updated
	s.logger.Infow("pump toggled", "plant", plantID, "on", !on)
	return true, nil
}
