// FilePath: internal/models/models.device.go
package models

import (
	"strings"
	"time"
)

// DeviceNameSeparator joins the owner's prefix and the local device name.
const DeviceNameSeparator = ":"

// Device is a registered data source. readxs/writexs tags list the roles
// that may read or change a field; "*" is everyone.
type Device struct {
	ID           int64      `json:"id" db:"id" readxs:"*"`
	Name         string     `json:"name" db:"name" readxs:"*" writexs:"owner,superadmin"`
	Passphrase   string     `json:"passphrase,omitempty" db:"passphrase" readxs:"owner,superadmin" writexs:"owner,superadmin"`
	Description  string     `json:"description" db:"description" readxs:"*" writexs:"owner,superadmin"`
	UserID       string     `json:"user_id" db:"user_id" readxs:"*"`
	Monitoring   bool       `json:"monitoring" db:"monitoring" readxs:"*" writexs:"owner,superadmin"`
	JSONToken    *string    `json:"json_token,omitempty" db:"json_token" readxs:"owner,superadmin" writexs:"owner,superadmin"`
	BlobToken    *string    `json:"blob_token,omitempty" db:"blob_token" readxs:"owner,superadmin" writexs:"owner,superadmin"`
	ConfigData   *string    `json:"config_data,omitempty" db:"config_data" readxs:"owner,superadmin"`
	ConfigVer    *int64     `json:"config_ver,omitempty" db:"config_ver" readxs:"*"`
	AppName      *string    `json:"app_name,omitempty" db:"app_name" readxs:"*"`
	FirstLogin   *time.Time `json:"first_login,omitempty" db:"first_login" readxs:"*"`
	LastLogin    *time.Time `json:"last_login,omitempty" db:"last_login" readxs:"*"`
	LastBadLogin *time.Time `json:"last_bad_login,omitempty" db:"last_bad_login" readxs:"*"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at" readxs:"*"`
}

// LocalName returns the device name without the owner's prefix.
func (d *Device) LocalName() string {
	if i := strings.Index(d.Name, DeviceNameSeparator); i >= 0 {
		return d.Name[i+len(DeviceNameSeparator):]
	}
	return d.Name
}

// HasLoginProblem is true when the most recent login attempt failed.
func (d *Device) HasLoginProblem() bool {
	if d.LastBadLogin == nil {
		return false
	}
	if d.LastLogin == nil {
		return true
	}
	return d.LastBadLogin.After(*d.LastLogin)
}

// DeviceForm carries the operator-editable fields of a device.
type DeviceForm struct {
	Name        string `json:"name" schema:"name"`
	Passphrase  string `json:"passphrase" schema:"passphrase"`
	Description string `json:"desc" schema:"desc"`
	JSONToken   string `json:"json_token" schema:"json_token"`
	BlobToken   string `json:"blob_token" schema:"blob_token"`
	Monitoring  bool   `json:"monitoring" schema:"monitoring"`
}

// ConfigForm carries a configuration payload queued for a device.
type ConfigForm struct {
	ConfigData string `json:"config_data" schema:"config_data"`
}

// DeleteForm confirms the removal of a device and everything it recorded.
type DeleteForm struct {
	Confirm bool `json:"confirm" schema:"confirm"`
}

// DeviceConfig is a configuration payload handed to a polling device.
type DeviceConfig struct {
	Version int64  `json:"version"`
	Data    string `json:"data"`
}
