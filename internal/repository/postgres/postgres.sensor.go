// FilePath: internal/repository/postgres/postgres.sensor.go
package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/itsatony/rahub/internal/database"
	"github.com/itsatony/rahub/internal/errors"
	"github.com/itsatony/rahub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// TelemetryRepo stores what an authenticated device sends: channel
// definitions, readings and blob metadata.
type TelemetryRepo struct {
	PostgresBaseRepo
}

func NewTelemetryRepository(db database.DB) *TelemetryRepo {
	return &TelemetryRepo{PostgresBaseRepo: newBaseRepo(db)}
}

// ProcessChannelDefinition creates or rebinds the sensor called def.Name to
// def.Channel and releases that channel from every other sensor of the device.
func (r *TelemetryRepo) ProcessChannelDefinition(ctx context.Context, sd *models.SessionDevice, def models.ChannelDefinition) error {
	return r.withTx(ctx, func(tx database.Transaction) error {
		var sensor struct {
			ID        int64 `db:"id"`
			ChannelID *int  `db:"channel_id"`
		}
		err := get(ctx, tx, &sensor, `SELECT id, channel_id FROM sensors WHERE device_id = ? AND name = ?`, sd.DeviceID, def.Name)

		switch {
		case stderrors.Is(err, sql.ErrNoRows):
			_, err = insert(ctx, tx, `
				INSERT INTO sensors (
					device_id, channel_id, name, device_class, value_type,
					msg_rate, preprocess_data, preprocess_factor
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
				RETURNING id`,
				sd.DeviceID, def.Channel, def.Name, def.DeviceClass, def.ValueType,
				def.MsgRate, def.Factor != nil, def.Factor)
			if err != nil {
				return errors.NewDatabaseError("failed to create sensor", err)
			}
			nuts.L.Debugf("[TelemetryRepo] Device %d: sensor %q created on channel %d", sd.DeviceID, def.Name, def.Channel)

		case err != nil:
			return errors.NewDatabaseError("failed to get sensor", err)

		case sensor.ChannelID == nil || *sensor.ChannelID != def.Channel:
			if _, err := exec(ctx, tx, `UPDATE sensors SET channel_id = ? WHERE id = ?`, def.Channel, sensor.ID); err != nil {
				return errors.NewDatabaseError("failed to rebind sensor channel", err)
			}
			nuts.L.Debugf("[TelemetryRepo] Device %d: sensor %q moved to channel %d", sd.DeviceID, def.Name, def.Channel)
		}

		if _, err := exec(ctx, tx,
			`UPDATE sensors SET channel_id = NULL WHERE device_id = ? AND channel_id = ? AND name <> ?`,
			sd.DeviceID, def.Channel, def.Name); err != nil {
			return errors.NewDatabaseError("failed to release channel", err)
		}
		return nil
	})
}

func (r *TelemetryRepo) GetSensorByChannel(ctx context.Context, deviceID int64, channel int) (*models.SensorChannel, error) {
	sensor := &models.SensorChannel{}
	err := get(ctx, r.db.GetDB(), sensor, `
		SELECT id, preprocess_data, preprocess_factor, device_class, imp_count, data_session
		FROM sensors
		WHERE device_id = ? AND channel_id = ?`, deviceID, channel)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError(fmt.Sprintf("no sensor on channel %d", channel), err)
		}
		return nil, errors.NewDatabaseError("failed to get sensor", err)
	}
	return sensor, nil
}

// SaveData appends a measure and refreshes the sensor's last-value fields in
// the same transaction.
func (r *TelemetryRepo) SaveData(ctx context.Context, sd *models.SessionDevice, sensor *models.SensorChannel, timeDiff int64, value float64, remoteIP string, outValue float64, impCount int64, dataSession string) error {
	now := r.now()
	dataTime := now.Add(-time.Duration(timeDiff) * time.Second)

	return r.withTx(ctx, func(tx database.Transaction) error {
		_, err := insert(ctx, tx, `
			INSERT INTO measures (sensor_id, data_time, server_time, s_value, session_id, remote_ip, out_value)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			RETURNING id`,
			sensor.ID, dataTime, now, value, sd.SessionID, remoteIP, outValue)
		if err != nil {
			return errors.NewDatabaseError("failed to insert measure", err)
		}

		query := `UPDATE sensors SET last_data_time = ?`
		args := []interface{}{dataTime}
		if sensor.DeviceClass != models.DeviceClassImpulse {
			query += `, last_out_value = ?`
			args = append(args, outValue)
		}
		if dataSession != "" {
			query += `, imp_count = ?, data_session = ?`
			args = append(args, impCount, dataSession)
		}
		query += ` WHERE id = ?`
		args = append(args, sensor.ID)

		if _, err := exec(ctx, tx, query, args...); err != nil {
			return errors.NewDatabaseError("failed to update sensor last value", err)
		}
		return nil
	})
}
