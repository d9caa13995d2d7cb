package cleanup

import (
	"context"
	"fmt"

	"github.com/itsatony/rahub/internal/models"
	"github.com/itsatony/rahub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

const (
	EventDeviceDeleted = "device.deleted"
	EventBlobDeleted   = "blob.deleted"
)

// CleanupService coordinates deletion of a device and everything it recorded
type CleanupService struct {
	devices repository.DeviceRepository
	files   repository.FileRepository
	events  *nuts.EventEmitter
}

// New creates a new CleanupService
func New(devices repository.DeviceRepository, files repository.FileRepository) *CleanupService {
	return &CleanupService{
		devices: devices,
		files:   files,
		events:  nuts.NewEventEmitter(),
	}
}

// DeleteDevice removes the device with its measures, sensors, blobs and
// sessions in one transaction. Stored payloads are removed once the rows are
// gone; a file that cannot be removed is logged and left behind.
func (s *CleanupService) DeleteDevice(ctx context.Context, deviceID int64) error {
	// listed up front: the transaction below may hold the only connection
	blobs, err := s.devices.ListBlobs(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("failed to list blobs: %w", err)
	}

	tx, err := s.devices.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Will be ignored if transaction is committed

	if err := s.devices.DeleteWithChildren(ctx, deviceID, tx); err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	for _, blob := range blobs {
		s.removePayload(ctx, blob)
	}

	// Emit event after successful deletion
	s.emit(EventDeviceDeleted, deviceID)
	return nil
}

func (s *CleanupService) removePayload(ctx context.Context, blob *models.Blob) {
	if blob.FileName == nil {
		s.emit(EventBlobDeleted, blob.ID)
		return
	}
	if err := s.files.Delete(ctx, *blob.FileName); err != nil {
		nuts.L.Errorf("[CleanupService] Failed to delete file %s of blob %d: %v", *blob.FileName, blob.ID, err)
		return
	}
	s.emit(EventBlobDeleted, blob.ID)
}

func (s *CleanupService) emit(event string, id int64) {
	if err := s.events.Emit(event, id); err != nil {
		nuts.L.Warnf("[CleanupService] Failed to emit %s for %d: %v", event, id, err)
	}
}

// OnCleanup registers a callback for cleanup events
func (s *CleanupService) OnCleanup(event string, handler func(id int64)) {
	if _, err := s.events.On(event, nuts.NID("hdl", 8), handler); err != nil {
		nuts.L.Errorf("[CleanupService] Failed to register handler for %s: %v", event, err)
	}
}
