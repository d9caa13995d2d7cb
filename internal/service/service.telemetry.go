package service

import (
	"context"
	"io"
	"strings"

	"github.com/itsatony/rahub/internal/errors"
	"github.com/itsatony/rahub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// TelemetryService accepts what an authenticated device sends
type TelemetryService interface {
	DefineChannel(ctx context.Context, sd *models.SessionDevice, def models.ChannelDefinition) error
	RecordReading(ctx context.Context, sd *models.SessionDevice, reading models.Reading, remoteIP string) error
	UploadBlob(ctx context.Context, sd *models.SessionDevice, upload models.BlobUpload, remoteIP string, src io.Reader) (int64, error)
	FetchConfig(ctx context.Context, sd *models.SessionDevice) (*models.DeviceConfig, error)
}

func (s *Service) DefineChannel(ctx context.Context, sd *models.SessionDevice, def models.ChannelDefinition) error {
	if strings.TrimSpace(def.Name) == "" {
		return errors.NewValidationError("sensor name is required", nil)
	}
	return s.telemetry.ProcessChannelDefinition(ctx, sd, def)
}

// RecordReading stores a raw value under the sensor currently bound to the
// reading's channel.
func (s *Service) RecordReading(ctx context.Context, sd *models.SessionDevice, reading models.Reading, remoteIP string) error {
	sensor, err := s.telemetry.GetSensorByChannel(ctx, sd.DeviceID, reading.Channel)
	if err != nil {
		if errors.IsNotFound(err) {
			nuts.L.Warnf("[TelemetryService] Device %d sent data for undefined channel %d", sd.DeviceID, reading.Channel)
		}
		return err
	}

	return s.telemetry.SaveData(ctx, sd, sensor,
		reading.TimeDiff,
		reading.Value,
		remoteIP,
		sensor.OutputValue(reading.Value),
		reading.ImpCount,
		reading.DataSession,
	)
}

// UploadBlob records the blob, writes its payload and only then marks it
// stored. A failed write leaves the blob pending.
func (s *Service) UploadBlob(ctx context.Context, sd *models.SessionDevice, upload models.BlobUpload, remoteIP string, src io.Reader) (int64, error) {
	upload.Extension = strings.ToLower(strings.TrimPrefix(upload.Extension, "."))
	if upload.Extension == "" {
		return 0, errors.NewValidationError("file extension is required", nil)
	}

	blobID, err := s.telemetry.SaveBlob(ctx, sd, upload, remoteIP)
	if err != nil {
		return 0, err
	}

	blob := &models.Blob{
		ID:        blobID,
		DeviceID:  sd.DeviceID,
		DataTime:  upload.Time,
		Extension: upload.Extension,
		FileSize:  upload.FileSize,
	}
	fileName, err := s.files.Store(ctx, blob, src)
	if err != nil {
		nuts.L.Errorf("[TelemetryService] Blob %d of device %d left pending: %v", blobID, sd.DeviceID, err)
		return blobID, err
	}

	if err := s.telemetry.UpdateBlob(ctx, blobID, fileName); err != nil {
		return blobID, err
	}
	return blobID, nil
}

// FetchConfig hands out the queued configuration once. Nil when nothing is queued.
func (s *Service) FetchConfig(ctx context.Context, sd *models.SessionDevice) (*models.DeviceConfig, error) {
	config, err := s.telemetry.GetConfigRequest(ctx, sd.DeviceID)
	if err != nil || config == nil {
		return nil, err
	}
	if err := s.telemetry.DeleteConfigRequest(ctx, sd.DeviceID); err != nil {
		return nil, err
	}
	nuts.L.Infof("[TelemetryService] Device %d fetched config version %d", sd.DeviceID, config.Version)
	return config, nil
}
