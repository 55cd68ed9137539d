package messages

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LeonardoBeccarini/ecogarden/internal/model/entities"
)

// Update is one timestamped reading inside a Batch.
type Update struct {
	Data      Reading   `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Batch maps sensor ids to their latest reading.
type Batch map[int64]Update

// SensorIDs returns the ids carried by b, in no particular order.
func (b Batch) SensorIDs() []int64 {
	ids := make([]int64, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	return ids
}

// TypeResolver reports the declared type of a sensor.
type TypeResolver func(sensorID int64) (entities.SensorType, bool)

type rawUpdate struct {
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// DecodeBatch parses a wire batch `{"<sensorId>": {"data": {...}, "timestamp": "..."}}`.
// The variant of each reading follows the sensor's declared type; sensors the
// resolver does not know decode as GenericReading.
func DecodeBatch(payload []byte, typeOf TypeResolver) (Batch, error) {
	var raw map[int64]rawUpdate
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}
	out := make(Batch, len(raw))
	for id, ru := range raw {
		var st entities.SensorType
		if typeOf != nil {
			st, _ = typeOf(id)
		}
		r, err := DecodeReading(st, ru.Data)
		if err != nil {
			return nil, fmt.Errorf("decode reading for sensor %d: %w", id, err)
		}
		out[id] = Update{Data: r, Timestamp: ru.Timestamp}
	}
	return out, nil
}

// DecodeReading unmarshals data into the variant of st. A field the declared
// type does not produce is an error rather than being dropped; readings of
// unknown types decode leniently as GenericReading.
func DecodeReading(st entities.SensorType, data []byte) (Reading, error) {
	if len(data) == 0 || string(data) == "null" {
		data = []byte("{}")
	}
	switch st {
	case entities.WateringUnit:
		var r WateringReading
		err := decodeStrict(st, data, &r)
		return r, err
	case entities.EnvII:
		var r EnvironmentReading
		err := decodeStrict(st, data, &r)
		return r, err
	case entities.LightSensor:
		var r LightReading
		err := decodeStrict(st, data, &r)
		return r, err
	default:
		r := GenericReading{Type: st}
		err := json.Unmarshal(data, &r)
		return r, err
	}
}

func decodeStrict(st entities.SensorType, data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%s reading: %w", st, err)
	}
	return nil
}
