// FilePath: internal/repository/postgres/postgres.blob.go
package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/itsatony/rahub/internal/errors"
	"github.com/itsatony/rahub/internal/models"
)

// SaveBlob records the metadata of an upload before its payload is stored.
func (r *TelemetryRepo) SaveBlob(ctx context.Context, sd *models.SessionDevice, upload models.BlobUpload, remoteIP string) (int64, error) {
	id, err := insert(ctx, r.db.GetDB(), `
		INSERT INTO blobs (
			device_id, data_time, server_time, description, extension,
			session_id, remote_ip, filesize, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		sd.DeviceID, upload.Time.UTC(), r.now(), upload.Description, upload.Extension,
		sd.SessionID, remoteIP, upload.FileSize, models.BlobPending)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to create blob record", err)
	}
	return id, nil
}

// UpdateBlob marks a blob stored once its payload is durably written.
func (r *TelemetryRepo) UpdateBlob(ctx context.Context, blobID int64, fileName string) error {
	rows, err := exec(ctx, r.db.GetDB(), `UPDATE blobs SET filename = ?, status = ? WHERE id = ?`, fileName, models.BlobStored, blobID)
	if err != nil {
		return errors.NewDatabaseError("failed to update blob", err)
	}
	if rows == 0 {
		return errors.NewNotFoundError("blob not found", nil)
	}
	return nil
}

// GetConfigRequest returns the configuration waiting for the device.
func (r *TelemetryRepo) GetConfigRequest(ctx context.Context, deviceID int64) (*models.DeviceConfig, error) {
	var row struct {
		ConfigData *string `db:"config_data"`
		ConfigVer  *int64  `db:"config_ver"`
	}
	err := get(ctx, r.db.GetDB(), &row, `SELECT config_data, config_ver FROM devices WHERE id = ?`, deviceID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("device not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get config request", err)
	}
	if row.ConfigData == nil {
		return nil, nil
	}

	config := &models.DeviceConfig{Data: *row.ConfigData}
	if row.ConfigVer != nil {
		config.Version = *row.ConfigVer
	}
	return config, nil
}

// DeleteConfigRequest clears a configuration the device has fetched.
func (r *TelemetryRepo) DeleteConfigRequest(ctx context.Context, deviceID int64) error {
	if _, err := exec(ctx, r.db.GetDB(), `UPDATE devices SET config_data = NULL WHERE id = ?`, deviceID); err != nil {
		return errors.NewDatabaseError("failed to delete config request", err)
	}
	return nil
}
