// FilePath: internal/models/models.session.go
package models

import "time"

// Session is the single authenticated context a device holds.
type Session struct {
	ID         int64     `json:"id" db:"id"`
	Hash       string    `json:"-" db:"hash"`
	DeviceID   int64     `json:"device_id" db:"device_id"`
	SessionKey string    `json:"-" db:"session_key"`
	Started    time.Time `json:"started" db:"started"`
	RemoteIP   string    `json:"remote_ip" db:"remote_ip"`
}

// SessionDevice is what a validated session grants to ingestion calls.
type SessionDevice struct {
	SessionID  int64  `json:"session_id"`
	SessionKey string `json:"-"`
	DeviceID   int64  `json:"device_id"`
}
