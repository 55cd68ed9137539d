package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/LeonardoBeccarini/ecogarden/internal/model/entities"
	"github.com/LeonardoBeccarini/ecogarden/internal/preferences"
	sensorSimulator "github.com/LeonardoBeccarini/ecogarden/internal/sensor-simulator"
	"github.com/LeonardoBeccarini/ecogarden/internal/services/garden"
	"github.com/LeonardoBeccarini/ecogarden/pkg/dedup"
)

type fakeSimulator struct {
	mu      sync.Mutex
	running bool
	resets  int
	ctx     context.Context
}

func (f *fakeSimulator) Start(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return false
	}
	f.running, f.ctx = true, ctx
	return true
}

func (f *fakeSimulator) Stop() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	was := f.running
	f.running = false
	return was
}

func (f *fakeSimulator) Reset() {
	f.mu.Lock()
	f.resets++
	f.mu.Unlock()
}

func (f *fakeSimulator) Status() sensorSimulator.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return sensorSimulator.Status{Running: f.running, Interval: sensorSimulator.DefaultInterval}
}

type APISuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc
	store  *garden.Store
	sim    *fakeSimulator
	prefs  *preferences.Store
	api    *API
	router *gin.Engine
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	logger := zaptest.NewLogger(s.T()).Sugar()
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.store = garden.NewStore(logger)
	s.store.Load(garden.DemoData())
	s.sim = &fakeSimulator{}
	s.prefs = preferences.New(filepath.Join(s.T().TempDir(), "prefs", "preferences.json"))
	s.Require().NoError(s.prefs.Load())
	s.api = NewAPI(s.ctx, logger, s.store, s.sim, s.prefs, dedup.New(time.Minute, 100))
	s.router = s.api.Router()
	gin.SetMode(gin.TestMode)
}

func (s *APISuite) TearDownTest() {
	s.cancel()
}

func (s *APISuite) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *APISuite) decode(w *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (s *APISuite) TestHealthAndReadiness() {
	w := s.do(http.MethodGet, "/healthz", "")
	s.Equal(http.StatusOK, w.Code)
	var h healthStatus
	s.decode(w, &h)
	s.Equal("ok", h.Status)
	s.Equal(4, h.Plants)

	s.Equal(http.StatusServiceUnavailable, s.do(http.MethodGet, "/readyz", "").Code)
	s.api.SetReady(true)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/readyz", "").Code)
}

func (s *APISuite) TestMetricsEndpoint() {
	s.do(http.MethodGet, "/api/plants", "")
	w := s.do(http.MethodGet, "/metrics", "")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "ecogarden_http_request_latency_seconds")
}

func (s *APISuite) TestListAndGetPlants() {
	var plants []entities.Plant
	s.decode(s.do(http.MethodGet, "/api/plants", ""), &plants)
	s.Len(plants, 4)

	var p entities.Plant
	w := s.do(http.MethodGet, "/api/plants/2", "")
	s.Equal(http.StatusOK, w.Code)
	s.decode(w, &p)
	s.Equal("Aloe Vera", p.Name)

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/plants/99", "").Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/plants/abc", "").Code)
}

func (s *APISuite) TestPutPlantValidation() {
	w := s.do(http.MethodPut, "/api/plants", `{"location":"Hall","optimalMoisture":{"min":60,"max":40}}`)
	s.Equal(http.StatusBadRequest, w.Code)
	var body ErrorResponse
	s.decode(w, &body)
	s.Contains(body.Fields, "name")
	s.Contains(body.Fields, "optimalMoisture")
	s.Len(s.store.Plants(), 4)

	s.Equal(http.StatusBadRequest, s.do(http.MethodPut, "/api/plants", `{"name":`).Code)
}

func (s *APISuite) TestPutPlantCreateAndDeleteMarker() {
	w := s.do(http.MethodPut, "/api/plants", `{"name":"Basil","location":"Balcony","optimalMoisture":{"min":40,"max":60},"optimalTemperature":{"min":18,"max":26}}`)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Changed bool           `json:"changed"`
		Entity  entities.Plant `json:"entity"`
	}
	s.decode(w, &res)
	s.True(res.Changed)
	s.NotZero(res.Entity.ID)
	s.Len(s.store.Plants(), 5)

	w = s.do(http.MethodPut, "/api/plants", `{"id":1,"_delete":true}`)
	s.Equal(http.StatusOK, w.Code)
	_, ok := s.store.Plant(1)
	s.False(ok)
	s.Len(s.store.SensorsForPlant(1), 0)
}

func (s *APISuite) TestDeleteDeviceWithSensorsConflicts() {
	s.Equal(http.StatusConflict, s.do(http.MethodDelete, "/api/devices/1", "").Code)
	s.Len(s.store.Devices(), 3)

	s.Equal(http.StatusOK, s.do(http.MethodDelete, "/api/sensors/3", "").Code)
	w := s.do(http.MethodDelete, "/api/devices/3", "")
	s.Equal(http.StatusOK, w.Code)
	s.Len(s.store.Devices(), 2)
}

func (s *APISuite) TestPutSensorRequiresKnownDevice() {
	w := s.do(http.MethodPut, "/api/sensors", `{"name":"Light 1","type":"LIGHT_SENSOR","deviceId":42}`)
	s.Equal(http.StatusBadRequest, w.Code)
	var body ErrorResponse
	s.decode(w, &body)
	s.Contains(body.Fields, "deviceId")

	w = s.do(http.MethodPut, "/api/sensors", `{"name":"Light 1","type":"LIGHT_SENSOR","deviceId":2}`)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Entity entities.Sensor `json:"entity"`
	}
	s.decode(w, &res)
	s.Equal("ecogarden/light_1", res.Entity.MQTTTopic)
}

func (s *APISuite) TestAssignments() {
	w := s.do(http.MethodPost, "/api/assignments", `{"plantId":1,"sensorId":1,"role":"watering_boss"}`)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/assignments", `{"plantId":1,"sensorId":1,"role":"primary_moisture","action":"unassign"}`)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"changed":true`)

	w = s.do(http.MethodPost, "/api/assignments", `{"plantId":1,"sensorId":1,"role":"primary_moisture","action":"unassign"}`)
	s.Contains(w.Body.String(), `"changed":false`)

	w = s.do(http.MethodPost, "/api/assignments", `{"plantId":1,"sensorId":1,"role":"primary_moisture"}`)
	s.Contains(w.Body.String(), `"changed":true`)

	var list []entities.Assignment
	s.decode(s.do(http.MethodGet, "/api/assignments", ""), &list)
	s.Len(list, 7)
}

func (s *APISuite) TestPlantSensorsAndAvailable() {
	var assigned []entities.AssignedSensor
	s.decode(s.do(http.MethodGet, "/api/plants/1/sensors", ""), &assigned)
	s.Len(assigned, 2)

	var available []entities.Sensor
	s.decode(s.do(http.MethodGet, "/api/plants/4/available-sensors", ""), &available)
	ids := make([]int64, 0, len(available))
	for _, sn := range available {
		ids = append(ids, sn.ID)
	}
	s.ElementsMatch([]int64{1, 2, 4}, ids)

	w := s.do(http.MethodGet, "/api/plants/99/sensors", "")
	s.Equal("[]", strings.TrimSpace(w.Body.String()))
}

func (s *APISuite) TestTelemetryIngestAndReplay() {
	body := `{"1":{"data":{"moisture":55.5,"pumpStatus":true},"timestamp":"2025-08-22T11:00:00Z"}}`
	w := s.do(http.MethodPost, "/api/telemetry", body)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var res TelemetryResponse
	s.decode(w, &res)
	s.False(res.Duplicate)
	s.Equal([]int64{1}, res.Changed)

	p, _ := s.store.Plant(1)
	s.Equal(55.5, p.SensorData[entities.KindMoisture].Value)

	w = s.do(http.MethodPost, "/api/telemetry", body)
	s.decode(w, &res)
	s.True(res.Duplicate)
	s.Empty(res.Changed)

	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/api/telemetry", `[1,2]`).Code)
}

func (s *APISuite) TestTelemetryRejectsFieldOutsideSensorType() {
	_, err := s.store.Assign(3, 4, entities.RolePrimaryMoisture)
	s.Require().NoError(err)
	before, _ := s.store.Plant(3)

	w := s.do(http.MethodPost, "/api/telemetry", `{"4":{"data":{"moisture":55},"timestamp":"2025-08-22T11:00:00Z"}}`)
	s.Equal(http.StatusBadRequest, w.Code)
	var body ErrorResponse
	s.decode(w, &body)
	s.Contains(body.Error, `"moisture"`)

	after, _ := s.store.Plant(3)
	s.Equal(before.SensorData, after.SensorData)
}

func (s *APISuite) TestTogglePump() {
	w := s.do(http.MethodPost, "/api/plants/2/pump/toggle", "")
	s.Equal(http.StatusOK, w.Code)
	p, _ := s.store.Plant(2)
	s.Equal(false, p.SensorData[entities.KindPumpStatus].Value)

	w = s.do(http.MethodPost, "/api/plants/4/pump/toggle", "")
	s.Contains(w.Body.String(), `"changed":false`)

	s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/api/plants/99/pump/toggle", "").Code)
}

func (s *APISuite) TestSimulatorControl() {
	w := s.do(http.MethodPost, "/api/simulator/start", "")
	s.Contains(w.Body.String(), `"changed":true`)
	s.Equal(s.ctx, s.sim.ctx, "simulator outlives the request")

	w = s.do(http.MethodPost, "/api/simulator/start", "")
	s.Contains(w.Body.String(), `"changed":false`)

	var st sensorSimulator.Status
	s.decode(s.do(http.MethodGet, "/api/simulator", ""), &st)
	s.True(st.Running)

	s.do(http.MethodPost, "/api/simulator/reset", "")
	s.Equal(1, s.sim.resets)

	w = s.do(http.MethodPost, "/api/simulator/stop", "")
	s.Contains(w.Body.String(), `"changed":true`)
	s.False(s.sim.Status().Running)
}

func (s *APISuite) TestStatsAndHistory() {
	var st garden.Stats
	s.decode(s.do(http.MethodGet, "/api/stats", ""), &st)
	s.Equal(4, st.TotalPlants)
	s.Equal(1, st.ActivePumps)

	var points []map[string]any
	s.decode(s.do(http.MethodGet, "/api/plants/1/history", ""), &points)
	s.Len(points, 24)
}

func (s *APISuite) TestExport() {
	w := s.do(http.MethodGet, "/api/export?format=line", "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal("text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	s.Contains(w.Header().Get("Content-Disposition"), "ecogarden-export.lp")
	s.True(strings.HasPrefix(w.Body.String(), "plant_sensor,"))

	w = s.do(http.MethodGet, "/api/export", "")
	s.Equal("application/json", w.Header().Get("Content-Type"))
	var snap garden.Snapshot
	s.decode(w, &snap)
	s.Len(snap.Sensors, 4)

	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/export?format=csv", "").Code)
}

func (s *APISuite) TestDarkModePreference() {
	var p PreferencesResponse
	s.decode(s.do(http.MethodGet, "/api/preferences", ""), &p)
	s.False(p.DarkMode)

	s.decode(s.do(http.MethodPost, "/api/preferences/dark-mode/toggle", ""), &p)
	s.True(p.DarkMode)

	reloaded := preferences.New(s.prefs.File)
	s.Require().NoError(reloaded.Load())
	s.True(reloaded.DarkMode())
}

func TestSensorTypesEndpoint(t *testing.T) {
	api := NewAPI(context.Background(), nil, garden.NewStore(nil), &fakeSimulator{}, preferences.New(filepath.Join(t.TempDir(), "p.json")), nil)
	r := api.Router()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sensor-types", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var types []entities.SensorTypeInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &types))
	require.Len(t, types, 3)
	assert.Equal(t, entities.EnvII, types[0].Type)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/plants", nil))
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}
