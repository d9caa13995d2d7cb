// FilePath: internal/repository/postgres/postgres.device.go
package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/itsatony/rahub/internal/database"
	"github.com/itsatony/rahub/internal/errors"
	"github.com/itsatony/rahub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

type DeviceRepo struct {
	PostgresBaseRepo
}

func NewDeviceRepository(db database.DB) *DeviceRepo {
	return &DeviceRepo{PostgresBaseRepo: newBaseRepo(db)}
}

func (r *DeviceRepo) Create(ctx context.Context, device *models.Device) error {
	device.CreatedAt = r.now()
	id, err := insert(ctx, r.db.GetDB(), `
		INSERT INTO devices (
			name, passphrase, description, user_id, monitoring,
			json_token, blob_token, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		device.Name, device.Passphrase, device.Description, device.UserID, device.Monitoring,
		device.JSONToken, device.BlobToken, device.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return errors.NewValidationError("device name already in use", err)
		}
		return errors.NewDatabaseError("failed to create device", err)
	}
	device.ID = id
	return nil
}

func (r *DeviceRepo) Get(ctx context.Context, id int64) (*models.Device, error) {
	device := &models.Device{}
	err := get(ctx, r.db.GetDB(), device, `SELECT * FROM devices WHERE id = ?`, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("device not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get device", err)
	}
	return device, nil
}

func (r *DeviceRepo) Update(ctx context.Context, device *models.Device) error {
	rows, err := exec(ctx, r.db.GetDB(), `
		UPDATE devices SET
			name = ?,
			passphrase = ?,
			description = ?,
			monitoring = ?,
			json_token = ?,
			blob_token = ?
		WHERE id = ?`,
		device.Name, device.Passphrase, device.Description, device.Monitoring,
		device.JSONToken, device.BlobToken, device.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return errors.NewValidationError("device name already in use", err)
		}
		return errors.NewDatabaseError("failed to update device", err)
	}
	if rows == 0 {
		return errors.NewNotFoundError("device not found", nil)
	}
	return nil
}

func (r *DeviceRepo) ListSensors(ctx context.Context, deviceID int64) ([]*models.Sensor, error) {
	sensors := []*models.Sensor{}
	err := selectAll(ctx, r.db.GetDB(), &sensors, `SELECT * FROM sensors WHERE device_id = ? ORDER BY name`, deviceID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list sensors", err)
	}
	return sensors, nil
}

func (r *DeviceRepo) CountBlobs(ctx context.Context, deviceID int64) (int64, error) {
	var count int64
	if err := get(ctx, r.db.GetDB(), &count, `SELECT COUNT(*) FROM blobs WHERE device_id = ?`, deviceID); err != nil {
		return 0, errors.NewDatabaseError("failed to count blobs", err)
	}
	return count, nil
}

func (r *DeviceRepo) ListBlobs(ctx context.Context, deviceID int64) ([]*models.Blob, error) {
	blobs := []*models.Blob{}
	err := selectAll(ctx, r.db.GetDB(), &blobs, `SELECT * FROM blobs WHERE device_id = ? ORDER BY data_time DESC, id DESC`, deviceID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list blobs", err)
	}
	return blobs, nil
}

func (r *DeviceRepo) GetBlob(ctx context.Context, deviceID, blobID int64) (*models.Blob, error) {
	blob := &models.Blob{}
	err := get(ctx, r.db.GetDB(), blob, `SELECT * FROM blobs WHERE id = ? AND device_id = ?`, blobID, deviceID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("blob not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get blob", err)
	}
	return blob, nil
}

// MeasureStats counts a device's measures and finds the oldest and newest.
func (r *DeviceRepo) MeasureStats(ctx context.Context, deviceID int64) (*models.MeasureStats, error) {
	db := r.db.GetDB()
	stats := &models.MeasureStats{}

	err := get(ctx, db, &stats.Count, `
		SELECT COUNT(*) FROM measures m
		JOIN sensors s ON s.id = m.sensor_id
		WHERE s.device_id = ?`, deviceID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to count measures", err)
	}
	if stats.Count == 0 {
		return stats, nil
	}

	// ORDER BY keeps the column type; MIN/MAX come back as text on sqlite.
	first, err := r.measureBound(ctx, deviceID, "ASC")
	if err != nil {
		return nil, err
	}
	last, err := r.measureBound(ctx, deviceID, "DESC")
	if err != nil {
		return nil, err
	}
	stats.FirstTime = &first.DataTime
	stats.LastTime = &last.DataTime
	return stats, nil
}

func (r *DeviceRepo) measureBound(ctx context.Context, deviceID int64, order string) (*models.Measure, error) {
	measure := &models.Measure{}
	err := get(ctx, r.db.GetDB(), measure, `
		SELECT m.* FROM measures m
		JOIN sensors s ON s.id = m.sensor_id
		WHERE s.device_id = ?
		ORDER BY m.data_time `+order+`
		LIMIT 1`, deviceID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to get measure bounds", err)
	}
	return measure, nil
}

// QueueConfig stores a configuration payload for the device, bumps its
// version and drops its session so the device logs in and fetches it.
func (r *DeviceRepo) QueueConfig(ctx context.Context, deviceID int64, configData string) (int64, error) {
	var version int64
	err := r.withTx(ctx, func(tx database.Transaction) error {
		var current *int64
		if err := get(ctx, tx, &current, `SELECT config_ver FROM devices WHERE id = ?`, deviceID); err != nil {
			if stderrors.Is(err, sql.ErrNoRows) {
				return errors.NewNotFoundError("device not found", err)
			}
			return errors.NewDatabaseError("failed to get config version", err)
		}

		version = 1
		if current != nil && *current > 0 {
			version = *current + 1
		}

		if _, err := exec(ctx, tx, `UPDATE devices SET config_data = ?, config_ver = ? WHERE id = ?`, configData, version, deviceID); err != nil {
			return errors.NewDatabaseError("failed to queue config", err)
		}
		if _, err := exec(ctx, tx, `DELETE FROM sessions WHERE device_id = ?`, deviceID); err != nil {
			return errors.NewDatabaseError("failed to delete sessions", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return version, nil
}

// DeleteWithChildren removes a device together with its sensors, measures,
// blob rows and sessions inside the caller's transaction.
func (r *DeviceRepo) DeleteWithChildren(ctx context.Context, id int64, tx database.Transaction) error {
	steps := []struct {
		what  string
		query string
	}{
		{"measures", `DELETE FROM measures WHERE sensor_id IN (SELECT id FROM sensors WHERE device_id = ?)`},
		{"sensors", `DELETE FROM sensors WHERE device_id = ?`},
		{"blobs", `DELETE FROM blobs WHERE device_id = ?`},
		{"sessions", `DELETE FROM sessions WHERE device_id = ?`},
	}
	for _, step := range steps {
		rows, err := exec(ctx, tx, step.query, id)
		if err != nil {
			return errors.NewDatabaseError("failed to delete "+step.what, err)
		}
		nuts.L.Infof("[DeviceRepo] Deleted %d %s for device %d", rows, step.what, id)
	}

	rows, err := exec(ctx, tx, `DELETE FROM devices WHERE id = ?`, id)
	if err != nil {
		return errors.NewDatabaseError("failed to delete device", err)
	}
	if rows == 0 {
		return errors.NewNotFoundError("device not found", nil)
	}
	return nil
}
