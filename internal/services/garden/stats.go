package garden

import (
	"math"
	"time"

	"github.com/LeonardoBeccarini/ecogarden/internal/model/entities"
)

type DeviceStats struct {
	Total     int `json:"total"`
	Connected int `json:"connected"`
	Offline   int `json:"offline"`
}

type SensorStats struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Offline int `json:"offline"`
	Shared  int `json:"shared"`
}

// Stats is the system overview shown on the dashboard landing view.
type Stats struct {
	TotalPlants        int         `json:"totalPlants"`
	PlantsNeedingWater int         `json:"plantsNeedingWater"`
	ActivePumps        int         `json:"activePumps"`
	AvgTemperature     *float64    `json:"avgTemperature"`
	Devices            DeviceStats `json:"devices"`
	Sensors            SensorStats `json:"sensors"`
	Assignments        int         `json:"assignments"`
	LastUpdated        time.Time   `json:"lastUpdated"`
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		TotalPlants: len(s.plants),
		Assignments: len(s.assignments),
		LastUpdated: s.now().UTC(),
	}

	var tempSum float64
	var tempN int
	for _, p := range s.plants {
		if p.NeedsWater() {
			st.PlantsNeedingWater++
		}
		if v, ok := p.Reading(entities.KindPumpStatus); ok {
			if on, _ := v.Bool(); on {
				st.ActivePumps++
			}
		}
		if v, ok := p.Reading(entities.KindTemperature); ok {
			if t, ok := v.Float(); ok {
				tempSum += t
				tempN++
			}
		}
	}
	if tempN > 0 {
		avg := math.Round(tempSum/float64(tempN)*10) / 10
		st.AvgTemperature = &avg
	}

	for _, d := range s.devices {
		st.Devices.Total++
		if d.Status == entities.DeviceConnected {
			st.Devices.Connected++
		} else {
			st.Devices.Offline++
		}
	}
	for _, sn := range s.sensors {
		st.Sensors.Total++
		if sn.Active() {
			st.Sensors.Active++
		} else {
			st.Sensors.Offline++
		}
		if sn.Shared {
			st.Sensors.Shared++
		}
	}
	return st
}
