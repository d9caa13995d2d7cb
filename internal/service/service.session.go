package service

import (
	"context"
	"strconv"

	"github.com/itsatony/rahub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// SessionService authenticates devices
type SessionService interface {
	GetDeviceByLogin(ctx context.Context, login string) (*models.Device, error)
	OpenSession(ctx context.Context, login, hash, sessionKey, remoteIP, appName string) (*models.SessionDevice, error)
	RecordBadLogin(ctx context.Context, login string) error
	CheckSession(ctx context.Context, sessionID int64, sessionHash string) (*models.SessionDevice, error)
}

func (s *Service) GetDeviceByLogin(ctx context.Context, login string) (*models.Device, error) {
	return s.sessions.GetDeviceByLogin(ctx, login)
}

// OpenSession replaces the device's session after the protocol layer has
// verified its credentials. The first successful login is stamped once.
func (s *Service) OpenSession(ctx context.Context, login, hash, sessionKey, remoteIP, appName string) (*models.SessionDevice, error) {
	device, err := s.sessions.GetDeviceByLogin(ctx, login)
	if err != nil {
		return nil, err
	}

	sessionID, err := s.sessions.CreateSession(ctx, device.ID, device.FirstLogin == nil, hash, sessionKey, remoteIP, appName)
	if err != nil {
		return nil, err
	}

	nuts.L.Infof("[SessionService] Device %s (%d) logged in from %s, session %d", device.Name, device.ID, remoteIP, sessionID)
	s.record("device.login", map[string]string{
		"device_id": strconv.FormatInt(device.ID, 10),
		"remote_ip": remoteIP,
	})

	return &models.SessionDevice{
		SessionID:  sessionID,
		SessionKey: sessionKey,
		DeviceID:   device.ID,
	}, nil
}

func (s *Service) RecordBadLogin(ctx context.Context, login string) error {
	device, err := s.sessions.GetDeviceByLogin(ctx, login)
	if err != nil {
		return err
	}
	if err := s.sessions.BadLogin(ctx, device.ID); err != nil {
		return err
	}

	nuts.L.Warnf("[SessionService] Bad login for device %s (%d)", device.Name, device.ID)
	s.record("device.bad_login", map[string]string{"device_id": strconv.FormatInt(device.ID, 10)})
	return nil
}

func (s *Service) CheckSession(ctx context.Context, sessionID int64, sessionHash string) (*models.SessionDevice, error) {
	return s.sessions.CheckSession(ctx, sessionID, sessionHash)
}
