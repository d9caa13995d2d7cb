// FilePath: internal/models/models.sensor.go
package models

import "time"

type DeviceClass int

const (
	DeviceClassAnalog  DeviceClass = 1
	DeviceClassBinary  DeviceClass = 2
	DeviceClassImpulse DeviceClass = 3
)

type WarningIcon int

const (
	WarningNone        WarningIcon = 0
	WarningMonitored   WarningIcon = 1
	WarningUnmonitored WarningIcon = 2
)

type Sensor struct {
	ID               int64       `json:"id" db:"id"`
	DeviceID         int64       `json:"device_id" db:"device_id"`
	ChannelID        *int        `json:"channel_id" db:"channel_id"`
	Name             string      `json:"name" db:"name"`
	Description      string      `json:"description" db:"description"`
	DeviceClass      DeviceClass `json:"device_class" db:"device_class"`
	ValueType        int         `json:"value_type" db:"value_type"`
	MsgRate          int         `json:"msg_rate" db:"msg_rate"`
	PreprocessData   bool        `json:"preprocess_data" db:"preprocess_data"`
	PreprocessFactor *float64    `json:"preprocess_factor,omitempty" db:"preprocess_factor"`
	LastDataTime     *time.Time  `json:"last_data_time,omitempty" db:"last_data_time"`
	LastOutValue     *float64    `json:"last_out_value,omitempty" db:"last_out_value"`
	ImpCount         int64       `json:"imp_count" db:"imp_count"`
	DataSession      *string     `json:"data_session,omitempty" db:"data_session"`
}

// SensorChannel is the projection of a sensor needed to record a reading.
type SensorChannel struct {
	ID               int64       `db:"id"`
	PreprocessData   bool        `db:"preprocess_data"`
	PreprocessFactor *float64    `db:"preprocess_factor"`
	DeviceClass      DeviceClass `db:"device_class"`
	ImpCount         int64       `db:"imp_count"`
	DataSession      *string     `db:"data_session"`
}

// OutputValue applies the sensor's preprocessing to a raw reading.
func (s *SensorChannel) OutputValue(raw float64) float64 {
	if s.PreprocessData && s.PreprocessFactor != nil {
		return raw * *s.PreprocessFactor
	}
	return raw
}

// ChannelDefinition is a device's declaration of one of its channels.
type ChannelDefinition struct {
	Channel     int         `json:"channel"`
	DeviceClass DeviceClass `json:"device_class"`
	ValueType   int         `json:"value_type"`
	MsgRate     int         `json:"msg_rate"`
	Name        string      `json:"name"`
	Factor      *float64    `json:"factor,omitempty"`
}

// SensorStatus is a sensor as shown on the device detail page.
type SensorStatus struct {
	Sensor
	WarningIcon WarningIcon `json:"warning_icon"`
}

// StatusAt derives the warning icon from the sensor's expected message rate.
func (s *Sensor) StatusAt(now time.Time, monitored bool) SensorStatus {
	status := SensorStatus{Sensor: *s}
	if s.LastDataTime == nil {
		return status
	}
	if now.Sub(*s.LastDataTime) > time.Duration(s.MsgRate)*time.Second {
		if monitored {
			status.WarningIcon = WarningMonitored
		} else {
			status.WarningIcon = WarningUnmonitored
		}
	}
	return status
}
