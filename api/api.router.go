package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/itsatony/rahub/api/middleware"
	"github.com/itsatony/rahub/api/resources"
	"github.com/itsatony/rahub/docs"
	"github.com/itsatony/rahub/internal/hubservice"
	"github.com/swaggo/swag"
	nuts "github.com/vaudience/go-nuts"
)

// Authenticator puts the calling operator into the request context
type Authenticator interface {
	Authenticate(next http.Handler) http.Handler
}

type Router struct {
	router       *mux.Router
	auth         Authenticator
	requiredRole string
	Resources    *resources.Resources
}

// NewRouter wires the admin API. requiredRole may be empty to admit every
// authenticated operator.
func NewRouter(svc hubservice.DeviceService, auth Authenticator, requiredRole string) *Router {
	r := &Router{
		router:       mux.NewRouter(),
		auth:         auth,
		requiredRole: requiredRole,
		Resources:    resources.NewResources(svc),
	}

	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	// API version prefix
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		r.Resources.HealthCheck(w, req)
	}).Methods(http.MethodGet)
	api.HandleFunc("/swagger.json", serveDocs).Methods(http.MethodGet)

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(r.auth.Authenticate)
	if r.requiredRole != "" {
		protected.Use(middleware.RequireRoles(r.requiredRole))
	}

	// Devices
	devices := r.Resources.Devices
	protected.HandleFunc("/devices", devices.CreateDevice).Methods(http.MethodPost)
	protected.HandleFunc("/devices/{id:[0-9]+}", devices.GetDevice).Methods(http.MethodGet)
	protected.HandleFunc("/devices/{id:[0-9]+}", devices.UpdateDevice).Methods(http.MethodPut)
	protected.HandleFunc("/devices/{id:[0-9]+}", devices.DeleteDevice).Methods(http.MethodDelete)
	protected.HandleFunc("/devices/{id:[0-9]+}/detail", devices.GetDeviceDetail).Methods(http.MethodGet)
	protected.HandleFunc("/devices/{id:[0-9]+}/delete-stats", devices.GetDeleteStats).Methods(http.MethodGet)
	protected.HandleFunc("/devices/{id:[0-9]+}/config", devices.SendConfig).Methods(http.MethodPost)

	// Blobs
	protected.HandleFunc("/devices/{id:[0-9]+}/blobs", devices.ListBlobs).Methods(http.MethodGet)
	protected.HandleFunc("/devices/{id:[0-9]+}/blobs/{blobId:[0-9]+}/download", devices.DownloadBlob).Methods(http.MethodGet)
}

func serveDocs(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		nuts.L.Errorf("[API] Failed to render API docs: %v", err)
		http.Error(w, "docs unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(doc))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
