package database

import (
	"context"
	"fmt"
	"strings"

	nuts "github.com/vaudience/go-nuts"
)

// identity column per driver; everything else is shared SQL
var idColumns = map[string]string{
	"postgres": "id BIGSERIAL PRIMARY KEY",
	"sqlite":   "id INTEGER PRIMARY KEY AUTOINCREMENT",
	"sqlite3":  "id INTEGER PRIMARY KEY AUTOINCREMENT",
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS devices (
		{id},
		name TEXT NOT NULL UNIQUE,
		passphrase TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		user_id TEXT NOT NULL,
		monitoring BOOLEAN NOT NULL DEFAULT FALSE,
		json_token TEXT,
		blob_token TEXT,
		config_data TEXT,
		config_ver INTEGER,
		app_name TEXT,
		first_login TIMESTAMP,
		last_login TIMESTAMP,
		last_bad_login TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_devices_user ON devices(user_id)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		{id},
		hash TEXT NOT NULL,
		device_id BIGINT NOT NULL,
		session_key TEXT NOT NULL,
		started TIMESTAMP NOT NULL,
		remote_ip TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_device ON sessions(device_id)`,
	`CREATE TABLE IF NOT EXISTS sensors (
		{id},
		device_id BIGINT NOT NULL,
		channel_id INTEGER,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		device_class INTEGER NOT NULL,
		value_type INTEGER NOT NULL,
		msg_rate INTEGER NOT NULL,
		preprocess_data BOOLEAN NOT NULL DEFAULT FALSE,
		preprocess_factor DOUBLE PRECISION,
		last_data_time TIMESTAMP,
		last_out_value DOUBLE PRECISION,
		imp_count BIGINT NOT NULL DEFAULT 0,
		data_session TEXT,
		UNIQUE (device_id, name)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sensors_channel ON sensors(device_id, channel_id)`,
	`CREATE TABLE IF NOT EXISTS measures (
		{id},
		sensor_id BIGINT NOT NULL,
		data_time TIMESTAMP NOT NULL,
		server_time TIMESTAMP NOT NULL,
		s_value DOUBLE PRECISION NOT NULL,
		out_value DOUBLE PRECISION NOT NULL,
		session_id BIGINT NOT NULL,
		remote_ip TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_measures_sensor_time ON measures(sensor_id, data_time)`,
	`CREATE TABLE IF NOT EXISTS blobs (
		{id},
		device_id BIGINT NOT NULL,
		data_time TIMESTAMP NOT NULL,
		server_time TIMESTAMP NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		extension TEXT NOT NULL,
		session_id BIGINT NOT NULL,
		remote_ip TEXT NOT NULL DEFAULT '',
		filesize BIGINT NOT NULL,
		status INTEGER NOT NULL DEFAULT 0,
		filename TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_blobs_device ON blobs(device_id, data_time)`,
}

// Migrate creates the tables the repositories work on if they do not exist yet.
func Migrate(ctx context.Context, db DB) error {
	driver := db.GetDB().DriverName()
	idColumn, ok := idColumns[driver]
	if !ok {
		return fmt.Errorf("unsupported database driver %q", driver)
	}

	for _, stmt := range schema {
		if _, err := db.GetDB().ExecContext(ctx, strings.ReplaceAll(stmt, "{id}", idColumn)); err != nil {
			return fmt.Errorf("error initializing schema: %w", err)
		}
	}

	nuts.L.Infof("[Database] Schema ready (%s)", driver)
	return nil
}
