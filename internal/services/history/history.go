package history

import (
	"fmt"
	"math"
	"math/rand"
)

// Point is one hourly sample of the 24-hour chart.
type Point struct {
	Time        string  `json:"time"` // "HH:00"
	Hour        int     `json:"hour"`
	Moisture    float64 `json:"moisture"`
	Temperature float64 `json:"temperature"`
}

type baseline struct {
	moisture    float64
	temperature float64
}

// baselines per demo plant; any other plant charts like plant 1.
var baselines = map[int64]baseline{
	1: {45, 22},
	2: {68, 24},
	3: {32, 21},
	4: {55, 23},
}

// Generate fabricates a 24-hour moisture/temperature series for plantID.
// The series is synthetic and independent of live sensor data.
func Generate(plantID int64, rng *rand.Rand) []Point {
	b, ok := baselines[plantID]
	if !ok {
		b = baselines[1]
	}
	out := make([]Point, 0, 24)
	for hour := 0; hour < 24; hour++ {
		h := float64(hour)
		moisture := b.moisture + math.Sin(h*0.3)*8 + (rng.Float64()-0.5)*6 - h*0.8
		moisture = math.Max(15, math.Min(85, moisture))
		temperature := b.temperature + math.Sin((h-6)*0.26)*4 + (rng.Float64()-0.5)*2

		out = append(out, Point{
			Time:        fmt.Sprintf("%02d:00", hour),
			Hour:        hour,
			Moisture:    math.Round(moisture*10) / 10,
			Temperature: math.Round(temperature*10) / 10,
		})
	}
	return out
}
