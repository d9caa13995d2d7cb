// FilePath: internal/models/models.sensor_data.go
package models

import "time"

// Measure is a single appended sensor reading
type Measure struct {
	ID         int64     `json:"id" db:"id"`
	SensorID   int64     `json:"sensor_id" db:"sensor_id"`
	DataTime   time.Time `json:"data_time" db:"data_time"`
	ServerTime time.Time `json:"server_time" db:"server_time"`
	Value      float64   `json:"s_value" db:"s_value"`
	OutValue   float64   `json:"out_value" db:"out_value"`
	SessionID  int64     `json:"session_id" db:"session_id"`
	RemoteIP   string    `json:"remote_ip" db:"remote_ip"`
}

// Reading is a raw value reported by a device for one of its channels.
type Reading struct {
	Channel     int     `json:"channel"`
	TimeDiff    int64   `json:"time_diff"` // seconds before receipt
	Value       float64 `json:"value"`
	ImpCount    int64   `json:"imp_count"`
	DataSession string  `json:"data_session"`
}

// MeasureStats summarises what a device recorded.
type MeasureStats struct {
	Count     int64      `json:"count" db:"count"`
	FirstTime *time.Time `json:"first_time,omitempty" db:"first_time"`
	LastTime  *time.Time `json:"last_time,omitempty" db:"last_time"`
}

type BlobStatus int

const (
	BlobPending BlobStatus = 0
	BlobStored  BlobStatus = 1
)

// Blob represents a file (image/csv) uploaded by a device
type Blob struct {
	ID          int64      `json:"id" db:"id"`
	DeviceID    int64      `json:"device_id" db:"device_id"`
	DataTime    time.Time  `json:"data_time" db:"data_time"`
	ServerTime  time.Time  `json:"server_time" db:"server_time"`
	Description string     `json:"description" db:"description"`
	Extension   string     `json:"extension" db:"extension"`
	SessionID   int64      `json:"session_id" db:"session_id"`
	RemoteIP    string     `json:"remote_ip" db:"remote_ip"`
	FileSize    int64      `json:"filesize" db:"filesize"`
	Status      BlobStatus `json:"status" db:"status"`
	FileName    *string    `json:"filename,omitempty" db:"filename"`
}

// BlobUpload is the metadata a device sends along with a file.
type BlobUpload struct {
	Time        time.Time `json:"time"`
	Description string    `json:"description"`
	Extension   string    `json:"extension"`
	FileSize    int64     `json:"filesize"`
}
