package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/LeonardoBeccarini/ecogarden/internal/model/entities"
	"github.com/LeonardoBeccarini/ecogarden/internal/services/garden"
)

const Measurement = "plant_sensor"

// Format selects the export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatLine Format = "line"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatLine:
		return FormatLine, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// ContentType is the HTTP media type of f.
func (f Format) ContentType() string {
	if f == FormatLine {
		return "text/plain; charset=utf-8"
	}
	return "application/json"
}

// Write encodes snap in format f.
func Write(w io.Writer, f Format, snap garden.Snapshot) error {
	if f == FormatLine {
		_, err := LineProtocol(w, snap.Plants, time.Second)
		return err
	}
	return JSON(w, snap)
}

// JSON writes the whole model as indented JSON.
func JSON(w io.Writer, snap garden.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("export json: %w", err)
	}
	return nil
}

// PlantPoints turns every sensor value of p into an InfluxDB point tagged with
// the plant, the reading kind and the reporting sensor.
func PlantPoints(p entities.Plant) []*write.Point {
	kinds := make([]string, 0, len(p.SensorData))
	for k := range p.SensorData {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	points := make([]*write.Point, 0, len(kinds))
	for _, k := range kinds {
		v := p.SensorData[entities.ReadingKind(k)]
		tags := map[string]string{
			"plant_id":   strconv.FormatInt(p.ID, 10),
			"plant_name": p.Name,
			"kind":       k,
			"sensor_id":  strconv.FormatInt(v.SensorID, 10),
		}
		fields := map[string]interface{}{"value": v.Value}
		points = append(points, influxdb2.NewPoint(Measurement, tags, fields, v.LastReading))
	}
	return points
}

// LineProtocol writes one line per plant sensor value and returns the number of lines.
func LineProtocol(w io.Writer, plants []entities.Plant, precision time.Duration) (int, error) {
	n := 0
	for _, p := range plants {
		for _, pt := range PlantPoints(p) {
			line := write.PointToLineProtocol(pt, precision)
			if !strings.HasSuffix(line, "\n") {
				line += "\n"
			}
			if _, err := io.WriteString(w, line); err != nil {
				return n, fmt.Errorf("export line protocol: %w", err)
			}
			n++
		}
	}
	return n, nil
}
