package dashboard

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/LeonardoBeccarini/ecogarden/internal/metrics"
	"github.com/LeonardoBeccarini/ecogarden/internal/model/entities"
	"github.com/LeonardoBeccarini/ecogarden/internal/model/messages"
	"github.com/LeonardoBeccarini/ecogarden/internal/services/export"
	"github.com/LeonardoBeccarini/ecogarden/internal/services/garden"
	"github.com/LeonardoBeccarini/ecogarden/internal/services/history"
)

// ErrorResponse is the body of every 4xx/5xx reply.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (a *API) fail(c *gin.Context, err error) {
	var verr *entities.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: verr.Error(), Fields: verr.Fields})
	case errors.Is(err, garden.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, garden.ErrDeviceHasSensors):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, garden.ErrUnknownRole), errors.Is(err, garden.ErrUnknownCommand):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		a.logger.Errorw("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func (a *API) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid id %q", c.Param("id"))})
		return 0, false
	}
	return id, true
}

func (a *API) dispatch(c *gin.Context, cmd garden.Command) {
	res, err := a.store.Dispatch(cmd)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// decodeAndDispatch reads a form payload, which may carry the _delete marker.
func (a *API) decodeAndDispatch(c *gin.Context, decode func([]byte) (garden.Command, error)) {
	body, err := c.GetRawData()
	if err != nil {
		a.badRequest(c, err)
		return
	}
	cmd, err := decode(body)
	if err != nil {
		a.badRequest(c, err)
		return
	}
	a.dispatch(c, cmd)
}

// ---- plants ----

func (a *API) ListPlants(c *gin.Context) {
	c.JSON(http.StatusOK, a.store.Plants())
}

func (a *API) GetPlant(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	p, found := a.store.Plant(id)
	if !found {
		a.fail(c, fmt.Errorf("plant %d: %w", id, garden.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, p)
}

func (a *API) PutPlant(c *gin.Context) {
	a.decodeAndDispatch(c, garden.DecodePlantCommand)
}

func (a *API) DeletePlant(c *gin.Context) {
	if id, ok := paramID(c); ok {
		a.dispatch(c, garden.DeletePlant{ID: id})
	}
}

func (a *API) PlantSensors(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	out := a.store.SensorsForPlant(id)
	if out == nil {
		out = []entities.AssignedSensor{}
	}
	c.JSON(http.StatusOK, out)
}

func (a *API) AvailableSensors(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, nonNil(a.store.AvailableSensors(id)))
}

func (a *API) PlantHistory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	a.rngMu.Lock()
	points := history.Generate(id, a.rng)
	a.rngMu.Unlock()
	c.JSON(http.StatusOK, points)
}

func (a *API) TogglePump(c *gin.Context) {
	if id, ok := paramID(c); ok {
		a.dispatch(c, garden.TogglePump{PlantID: id})
	}
}

// ---- devices ----

func (a *API) ListDevices(c *gin.Context) {
	out := a.store.Devices()
	if out == nil {
		out = []entities.Device{}
	}
	c.JSON(http.StatusOK, out)
}

func (a *API) PutDevice(c *gin.Context) {
	a.decodeAndDispatch(c, garden.DecodeDeviceCommand)
}

func (a *API) DeleteDevice(c *gin.Context) {
	if id, ok := paramID(c); ok {
		a.dispatch(c, garden.DeleteDevice{ID: id})
	}
}

func (a *API) DeviceSensors(c *gin.Context) {
	if id, ok := paramID(c); ok {
		c.JSON(http.StatusOK, nonNil(a.store.DeviceSensors(id)))
	}
}

// ---- sensors ----

func (a *API) ListSensors(c *gin.Context) {
	c.JSON(http.StatusOK, nonNil(a.store.Sensors()))
}

func (a *API) PutSensor(c *gin.Context) {
	a.decodeAndDispatch(c, garden.DecodeSensorCommand)
}

func (a *API) DeleteSensor(c *gin.Context) {
	if id, ok := paramID(c); ok {
		a.dispatch(c, garden.DeleteSensor{ID: id})
	}
}

func (a *API) SensorTypes(c *gin.Context) {
	c.JSON(http.StatusOK, entities.SensorTypes())
}

// ---- assignments ----

func (a *API) ListAssignments(c *gin.Context) {
	out := a.store.Assignments()
	if out == nil {
		out = []entities.Assignment{}
	}
	c.JSON(http.StatusOK, out)
}

func (a *API) PostAssignment(c *gin.Context) {
	var p garden.AssignmentPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		a.badRequest(c, err)
		return
	}
	cmd, err := p.Command()
	if err != nil {
		a.fail(c, err)
		return
	}
	a.dispatch(c, cmd)
}

// ---- telemetry ----

// TelemetryResponse reports which plants an external batch changed.
type TelemetryResponse struct {
	Duplicate bool    `json:"duplicate"`
	Changed   []int64 `json:"changed"`
}

// PostTelemetry ingests an external batch. Byte-identical replays inside the
// dedup window are acknowledged without being applied again.
func (a *API) PostTelemetry(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		a.badRequest(c, err)
		return
	}
	if !a.dedup.ShouldProcessPayload(body) {
		metrics.DuplicateBatchesTotal.Inc()
		c.JSON(http.StatusOK, TelemetryResponse{Duplicate: true, Changed: []int64{}})
		return
	}
	batch, err := messages.DecodeBatch(body, a.store.SensorType)
	if err != nil {
		a.badRequest(c, err)
		return
	}
	changed := a.store.Ingest(batch)
	if changed == nil {
		changed = []int64{}
	}
	c.JSON(http.StatusOK, TelemetryResponse{Changed: changed})
}

// ---- simulator ----

func (a *API) SimulatorStatus(c *gin.Context) {
	c.JSON(http.StatusOK, a.sim.Status())
}

func (a *API) StartSimulator(c *gin.Context) {
	started := a.sim.Start(a.ctx)
	c.JSON(http.StatusOK, gin.H{"changed": started, "status": a.sim.Status()})
}

func (a *API) StopSimulator(c *gin.Context) {
	stopped := a.sim.Stop()
	c.JSON(http.StatusOK, gin.H{"changed": stopped, "status": a.sim.Status()})
}

func (a *API) ResetSimulator(c *gin.Context) {
	a.sim.Reset()
	c.JSON(http.StatusOK, gin.H{"status": a.sim.Status()})
}

// ---- overview, export, preferences ----

func (a *API) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, a.store.Stats())
}

func (a *API) Export(c *gin.Context) {
	f, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		a.badRequest(c, err)
		return
	}
	ext := "json"
	if f == export.FormatLine {
		ext = "lp"
	}
	c.Header("Content-Type", f.ContentType())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="ecogarden-export.%s"`, ext))
	c.Status(http.StatusOK)
	if err := export.Write(c.Writer, f, a.store.Snapshot()); err != nil {
		a.logger.Errorw("export failed", "format", f, "error", err)
	}
}

type PreferencesResponse struct {
	DarkMode bool `json:"darkMode"`
}

func (a *API) GetPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, PreferencesResponse{DarkMode: a.prefs.DarkMode()})
}

func (a *API) ToggleDarkMode(c *gin.Context) {
	on, err := a.prefs.ToggleDarkMode()
	if err != nil {
		a.fail(c, err)
		return
	}
	a.logger.Infow("dark mode toggled", "darkMode", on)
	c.JSON(http.StatusOK, PreferencesResponse{DarkMode: on})
}

func nonNil(s []entities.Sensor) []entities.Sensor {
	if s == nil {
		return []entities.Sensor{}
	}
	return s
}
