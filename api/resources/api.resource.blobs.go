package resources

import (
	"fmt"
	"io"
	"net/http"

	nuts "github.com/vaudience/go-nuts"
)

// @Summary List device blobs
// @Description Files uploaded by the device, newest first
// @Tags blobs
// @Produce json
// @Param id path int true "Device ID"
// @Success 200 {array} models.Blob
// @Failure 404 {object} errors.APIError
// @Router /devices/{id}/blobs [get]
// @Security BearerAuth
func (h *DeviceHandlers) ListBlobs(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, toAPIError(err, "invalid device id").WithRequestID(requestID))
		return
	}

	blobs, err := h.devices.ListBlobs(r.Context(), id)
	if err != nil {
		respondWithError(w, toAPIError(err, "failed to list blobs").WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, blobs)
}

// @Summary Download a blob
// @Description Stream a stored blob as an attachment
// @Tags blobs
// @Produce octet-stream
// @Param id path int true "Device ID"
// @Param blobId path int true "Blob ID"
// @Success 200 {file} file
// @Failure 404 {object} errors.APIError
// @Router /devices/{id}/blobs/{blobId}/download [get]
// @Security BearerAuth
func (h *DeviceHandlers) DownloadBlob(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, toAPIError(err, "invalid device id").WithRequestID(requestID))
		return
	}
	blobID, err := pathID(r, "blobId")
	if err != nil {
		respondWithError(w, toAPIError(err, "invalid blob id").WithRequestID(requestID))
		return
	}

	download, err := h.devices.GetBlobDownload(r.Context(), id, blobID)
	if err != nil {
		respondWithError(w, toAPIError(err, "failed to open blob").WithRequestID(requestID))
		return
	}
	defer download.Body.Close()

	w.Header().Set("Content-Type", download.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.FileName))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, download.Body); err != nil {
		nuts.L.Errorf("[API] Streaming blob %d of device %d failed: %v", blobID, id, err)
	}
}
