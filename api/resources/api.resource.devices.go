package resources

import (
	"net/http"

	"github.com/itsatony/rahub/internal/hubservice"
	"github.com/itsatony/rahub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// DeviceHandlers encapsulates the device-related HTTP handlers
type DeviceHandlers struct {
	devices hubservice.DeviceService
}

// @Summary Create a new device
// @Description Register a device under the caller's prefix
// @Tags devices
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param device body models.DeviceForm true "Device details"
// @Success 201 {object} models.Device
// @Failure 400 {object} errors.APIError
// @Failure 401 {object} errors.APIError
// @Router /devices [post]
// @Security BearerAuth
func (h *DeviceHandlers) CreateDevice(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var form models.DeviceForm
	if err := decodeBody(r, &form); err != nil {
		respondWithError(w, toAPIError(err, "invalid request body").WithRequestID(requestID))
		return
	}

	device, err := h.devices.CreateDevice(r.Context(), form)
	if err != nil {
		respondWithError(w, toAPIError(err, "failed to create device").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusCreated, device)
}

// @Summary Get a device by ID
// @Description Device with clear-text passphrase and local name, for editing
// @Tags devices
// @Produce json
// @Param id path int true "Device ID"
// @Success 200 {object} models.Device
// @Failure 403 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /devices/{id} [get]
// @Security BearerAuth
func (h *DeviceHandlers) GetDevice(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, toAPIError(err, "invalid device id").WithRequestID(requestID))
		return
	}

	device, err := h.devices.GetDevice(r.Context(), id)
	if err != nil {
		respondWithError(w, toAPIError(err, "failed to get device").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, device)
}

// @Summary Update a device
// @Tags devices
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param id path int true "Device ID"
// @Param device body models.DeviceForm true "Device details"
// @Success 200 {object} models.Device
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /devices/{id} [put]
// @Security BearerAuth
func (h *DeviceHandlers) UpdateDevice(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, toAPIError(err, "invalid device id").WithRequestID(requestID))
		return
	}

	var form models.DeviceForm
	if err := decodeBody(r, &form); err != nil {
		respondWithError(w, toAPIError(err, "invalid request body").WithRequestID(requestID))
		return
	}

	device, err := h.devices.UpdateDevice(r.Context(), id, form)
	if err != nil {
		respondWithError(w, toAPIError(err, "failed to update device").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, device)
}

// @Summary Get device detail
// @Description Device with login problem mark, sensor warnings, blob count and data links
// @Tags devices
// @Produce json
// @Param id path int true "Device ID"
// @Success 200 {object} hubservice.DeviceDetail
// @Failure 404 {object} errors.APIError
// @Router /devices/{id}/detail [get]
// @Security BearerAuth
func (h *DeviceHandlers) GetDeviceDetail(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, toAPIError(err, "invalid device id").WithRequestID(requestID))
		return
	}

	detail, err := h.devices.GetDeviceDetail(r.Context(), id)
	if err != nil {
		respondWithError(w, toAPIError(err, "failed to get device detail").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, detail)
}

// @Summary Get device delete statistics
// @Tags devices
// @Produce json
// @Param id path int true "Device ID"
// @Success 200 {object} hubservice.DeleteStats
// @Failure 404 {object} errors.APIError
// @Router /devices/{id}/delete-stats [get]
// @Security BearerAuth
func (h *DeviceHandlers) GetDeleteStats(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, toAPIError(err, "invalid device id").WithRequestID(requestID))
		return
	}

	stats, err := h.devices.GetDeleteStats(r.Context(), id)
	if err != nil {
		respondWithError(w, toAPIError(err, "failed to get delete statistics").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

// @Summary Delete a device
// @Description Delete a device with all its sensors, measures, blobs and sessions
// @Tags devices
// @Accept json,x-www-form-urlencoded
// @Param id path int true "Device ID"
// @Param confirm body models.DeleteForm true "Confirmation"
// @Success 204 "No Content"
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /devices/{id} [delete]
// @Security BearerAuth
func (h *DeviceHandlers) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, toAPIError(err, "invalid device id").WithRequestID(requestID))
		return
	}

	var form models.DeleteForm
	if r.URL.Query().Get("confirm") != "" {
		form.Confirm = r.URL.Query().Get("confirm") == "true"
	} else if err := decodeBody(r, &form); err != nil {
		respondWithError(w, toAPIError(err, "invalid request body").WithRequestID(requestID))
		return
	}

	if err := h.devices.DeleteDevice(r.Context(), id, form.Confirm); err != nil {
		respondWithError(w, toAPIError(err, "failed to delete device").WithRequestID(requestID))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Send configuration to a device
// @Description Queue a configuration payload; the device's session is dropped so it fetches it on next login
// @Tags devices
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param id path int true "Device ID"
// @Param config body models.ConfigForm true "Configuration"
// @Success 202 {object} models.DeviceConfig
// @Failure 400 {object} errors.APIError
// @Router /devices/{id}/config [post]
// @Security BearerAuth
func (h *DeviceHandlers) SendConfig(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, toAPIError(err, "invalid device id").WithRequestID(requestID))
		return
	}

	var form models.ConfigForm
	if err := decodeBody(r, &form); err != nil {
		respondWithError(w, toAPIError(err, "invalid request body").WithRequestID(requestID))
		return
	}

	config, err := h.devices.SendConfig(r.Context(), id, form.ConfigData)
	if err != nil {
		respondWithError(w, toAPIError(err, "failed to queue config").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusAccepted, config)
}
