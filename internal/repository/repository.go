// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"io"

	"github.com/itsatony/rahub/internal/database"
	"github.com/itsatony/rahub/internal/models"
)

// SessionRepository authenticates devices and owns their sessions
type SessionRepository interface {
	GetDeviceByLogin(ctx context.Context, login string) (*models.Device, error)
	CreateSession(ctx context.Context, deviceID int64, saveFirstLogin bool, hash, sessionKey, remoteIP, appName string) (int64, error)
	BadLogin(ctx context.Context, deviceID int64) error
	CheckSession(ctx context.Context, sessionID int64, sessionHash string) (*models.SessionDevice, error)
	DeleteSessions(ctx context.Context, deviceID int64) error
}

// TelemetryRepository records channel definitions, readings and blobs of a session
type TelemetryRepository interface {
	ProcessChannelDefinition(ctx context.Context, sd *models.SessionDevice, def models.ChannelDefinition) error
	GetSensorByChannel(ctx context.Context, deviceID int64, channel int) (*models.SensorChannel, error)
	SaveData(ctx context.Context, sd *models.SessionDevice, sensor *models.SensorChannel, timeDiff int64, value float64, remoteIP string, outValue float64, impCount int64, dataSession string) error
	SaveBlob(ctx context.Context, sd *models.SessionDevice, upload models.BlobUpload, remoteIP string) (int64, error)
	UpdateBlob(ctx context.Context, blobID int64, fileName string) error
	GetConfigRequest(ctx context.Context, deviceID int64) (*models.DeviceConfig, error)
	DeleteConfigRequest(ctx context.Context, deviceID int64) error
}

// DeviceRepository defines the operator-facing device operations
type DeviceRepository interface {
	database.Repository
	Create(ctx context.Context, device *models.Device) error
	Get(ctx context.Context, id int64) (*models.Device, error)
	Update(ctx context.Context, device *models.Device) error
	ListSensors(ctx context.Context, deviceID int64) ([]*models.Sensor, error)
	CountBlobs(ctx context.Context, deviceID int64) (int64, error)
	ListBlobs(ctx context.Context, deviceID int64) ([]*models.Blob, error)
	GetBlob(ctx context.Context, deviceID, blobID int64) (*models.Blob, error)
	MeasureStats(ctx context.Context, deviceID int64) (*models.MeasureStats, error)
	QueueConfig(ctx context.Context, deviceID int64, configData string) (int64, error)
	DeleteWithChildren(ctx context.Context, id int64, tx database.Transaction) error
}

// FileRepository defines the interface for blob payload storage
type FileRepository interface {
	Store(ctx context.Context, blob *models.Blob, src io.Reader) (string, error)
	Open(ctx context.Context, fileName string) (io.ReadCloser, error)
	Delete(ctx context.Context, fileName string) error
}
