package resources

import (
	"net/http"

	"github.com/itsatony/rahub/internal/hubservice"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Devices     *DeviceHandlers
	HealthCheck func(w http.ResponseWriter, r *http.Request)
}

// NewResources creates a new Resources instance
func NewResources(svc hubservice.DeviceService) *Resources {
	return &Resources{
		Devices:     &DeviceHandlers{devices: svc},
		HealthCheck: defaultHealthCheck,
	}
}

// SetHealthCheck sets the health check handler
func (r *Resources) SetHealthCheck(h func(w http.ResponseWriter, r *http.Request)) {
	r.HealthCheck = h
}

func defaultHealthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
