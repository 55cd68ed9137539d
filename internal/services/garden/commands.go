package garden

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/LeonardoBeccarini/ecogarden/internal/metrics"
	"github.com/LeonardoBeccarini/ecogarden/internal/model/entities"
)

// Command is a user intent processed by Store.Dispatch.
type Command interface {
	Name() string
}

type UpsertPlant struct{ Plant entities.Plant }
type DeletePlant struct{ ID int64 }
type UpsertDevice struct{ Device entities.Device }
type DeleteDevice struct{ ID int64 }

// UpsertSensor carries the sensor form. A nil Shared keeps the stored flag,
// or takes the type default for a new sensor.
type UpsertSensor struct {
	Sensor entities.Sensor
	Shared *bool
}

type DeleteSensor struct{ ID int64 }

type AssignSensor struct {
	PlantID  int64
	SensorID int64
	Role     entities.Role
}

type UnassignSensor struct {
	PlantID  int64
	SensorID int64
	Role     entities.Role
}

type TogglePump struct{ PlantID int64 }

func (UpsertPlant) Name() string    { return "upsert_plant" }
func (DeletePlant) Name() string    { return "delete_plant" }
func (UpsertDevice) Name() string   { return "upsert_device" }
func (DeleteDevice) Name() string   { return "delete_device" }
func (UpsertSensor) Name() string   { return "upsert_sensor" }
func (DeleteSensor) Name() string   { return "delete_sensor" }
func (AssignSensor) Name() string   { return "assign_sensor" }
func (UnassignSensor) Name() string { return "unassign_sensor" }
func (TogglePump) Name() string     { return "toggle_pump" }

// Result reports whether a command changed state and, for upserts, the stored entity.
type Result struct {
	Changed bool `json:"changed"`
	Entity  any  `json:"entity,omitempty"`
}

// Dispatch is the single entry point for user edits.
func (s *Store) Dispatch(cmd Command) (Result, error) {
	if cmd == nil {
		return Result{}, ErrUnknownCommand
	}
	res, err := s.dispatch(cmd)
	metrics.StoreCommandsTotal.WithLabelValues(cmd.Name(), outcome(res, err)).Inc()
	if err != nil {
		s.logger.Debugw("command rejected", "command", cmd.Name(), "error", err)
	}
	return res, err
}

func (s *Store) dispatch(cmd Command) (Result, error) {
	switch c := cmd.(type) {
	case UpsertPlant:
		p, err := s.UpsertPlant(c.Plant)
		if err != nil {
			return Result{}, err
		}
		return Result{Changed: true, Entity: p}, nil
	case DeletePlant:
		return Result{Changed: s.DeletePlant(c.ID)}, nil
	case UpsertDevice:
		d, err := s.UpsertDevice(c.Device)
		if err != nil {
			return Result{}, err
		}
		return Result{Changed: true, Entity: d}, nil
	case DeleteDevice:
		ok, err := s.DeleteDevice(c.ID)
		return Result{Changed: ok}, err
	case UpsertSensor:
		sn, err := s.upsertSensor(c.Sensor, c.Shared)
		if err != nil {
			return Result{}, err
		}
		return Result{Changed: true, Entity: sn}, nil
	case DeleteSensor:
		return Result{Changed: s.DeleteSensor(c.ID)}, nil
	case AssignSensor:
		ok, err := s.Assign(c.PlantID, c.SensorID, c.Role)
		return Result{Changed: ok}, err
	case UnassignSensor:
		return Result{Changed: s.Unassign(c.PlantID, c.SensorID, c.Role)}, nil
	case TogglePump:
		ok, err := s.TogglePump(c.PlantID)
		return Result{Changed: ok}, err
	default:
		return Result{}, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
}

func outcome(res Result, err error) string {
	switch {
	case errors.Is(err, entities.ErrInvalid):
		return "invalid"
	case err != nil:
		return "error"
	case !res.Changed:
		return "noop"
	default:
		return "ok"
	}
}

// ---- wire payloads ----

// DecodePlantCommand turns a plant form payload into UpsertPlant, or DeletePlant
// when it carries `"_delete": true`.
func DecodePlantCommand(data []byte) (Command, error) {
	var w struct {
		entities.Plant
		Delete bool `json:"_delete"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode plant payload: %w", err)
	}
	if w.Delete {
		return DeletePlant{ID: w.ID}, nil
	}
	return UpsertPlant{Plant: w.Plant}, nil
}

func DecodeDeviceCommand(data []byte) (Command, error) {
	var w struct {
		entities.Device
		Delete bool `json:"_delete"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode device payload: %w", err)
	}
	if w.Delete {
		return DeleteDevice{ID: w.ID}, nil
	}
	return UpsertDevice{Device: w.Device}, nil
}

func DecodeSensorCommand(data []byte) (Command, error) {
	var w struct {
		entities.Sensor
		Shared *bool `json:"shared"`
		Delete bool  `json:"_delete"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode sensor payload: %w", err)
	}
	if w.Delete {
		return DeleteSensor{ID: w.ID}, nil
	}
	return UpsertSensor{Sensor: w.Sensor, Shared: w.Shared}, nil
}

// AssignmentPayload is the wire form of an assign or unassign request.
type AssignmentPayload struct {
	PlantID  int64         `json:"plantId"`
	SensorID int64         `json:"sensorId"`
	Role     entities.Role `json:"role"`
	Action   string        `json:"action"`
}

func (p AssignmentPayload) Command() (Command, error) {
	switch p.Action {
	case "", "assign":
		return AssignSensor{PlantID: p.PlantID, SensorID: p.SensorID, Role: p.Role}, nil
	case "unassign":
		return UnassignSensor{PlantID: p.PlantID, SensorID: p.SensorID, Role: p.Role}, nil
	}
	return nil, fmt.Errorf("%w: action %q", ErrUnknownCommand, p.Action)
}
