package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type healthStatus struct {
	Status           string `json:"status"`
	SimulatorRunning bool   `json:"simulator_running"`
	Plants           int    `json:"plants"`
	Sensors          int    `json:"sensors"`
}

// Healthz always answers 200 while the process serves requests.
func (a *API) Healthz(c *gin.Context) {
	st := healthStatus{
		Status:           "ok",
		SimulatorRunning: a.sim.Status().Running,
		Plants:           len(a.store.Plants()),
		Sensors:          len(a.store.Sensors()),
	}
	c.JSON(http.StatusOK, st)
}

// Readyz answers 200 only after startup completed and before shutdown begins.
func (a *API) Readyz(c *gin.Context) {
	ready := a.ready.Load()
	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"ready": ready})
}
