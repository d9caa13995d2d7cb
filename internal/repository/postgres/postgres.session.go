// FilePath: internal/repository/postgres/postgres.session.go
package postgres

import (
	"context"
	"crypto/subtle"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/itsatony/rahub/internal/database"
	"github.com/itsatony/rahub/internal/errors"
	"github.com/itsatony/rahub/internal/models"
)

// SessionLifetime is how long a device session stays usable after login.
const SessionLifetime = 24 * time.Hour

type SessionRepo struct {
	PostgresBaseRepo
}

func NewSessionRepository(db database.DB) *SessionRepo {
	return &SessionRepo{PostgresBaseRepo: newBaseRepo(db)}
}

func (r *SessionRepo) GetDeviceByLogin(ctx context.Context, login string) (*models.Device, error) {
	device := &models.Device{}
	err := get(ctx, r.db.GetDB(), device, `SELECT * FROM devices WHERE name = ?`, login)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("device not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get device", err)
	}
	return device, nil
}

// CreateSession replaces every session of the device with a new one and
// stamps the device's login times. Returns the new session id.
func (r *SessionRepo) CreateSession(ctx context.Context, deviceID int64, saveFirstLogin bool, hash, sessionKey, remoteIP, appName string) (int64, error) {
	now := r.now()
	var sessionID int64

	err := r.withTx(ctx, func(tx database.Transaction) error {
		if _, err := exec(ctx, tx, `DELETE FROM sessions WHERE device_id = ?`, deviceID); err != nil {
			return errors.NewDatabaseError("failed to delete old sessions", err)
		}

		id, err := insert(ctx, tx, `
			INSERT INTO sessions (hash, device_id, started, session_key, remote_ip)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id`,
			hash, deviceID, now, sessionKey, remoteIP)
		if err != nil {
			return errors.NewDatabaseError("failed to create session", err)
		}
		sessionID = id

		query := `UPDATE devices SET last_login = ?, app_name = ? WHERE id = ?`
		args := []interface{}{now, appName, deviceID}
		if saveFirstLogin {
			query = `UPDATE devices SET last_login = ?, app_name = ?, first_login = ? WHERE id = ?`
			args = []interface{}{now, appName, now, deviceID}
		}
		if _, err := exec(ctx, tx, query, args...); err != nil {
			return errors.NewDatabaseError("failed to update device login", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return sessionID, nil
}

func (r *SessionRepo) BadLogin(ctx context.Context, deviceID int64) error {
	if _, err := exec(ctx, r.db.GetDB(), `UPDATE devices SET last_bad_login = ? WHERE id = ?`, r.now(), deviceID); err != nil {
		return errors.NewDatabaseError("failed to record bad login", err)
	}
	return nil
}

// CheckSession validates the session proof and lifetime.
func (r *SessionRepo) CheckSession(ctx context.Context, sessionID int64, sessionHash string) (*models.SessionDevice, error) {
	session := &models.Session{}
	err := get(ctx, r.db.GetDB(), session,
		`SELECT id, hash, device_id, started, session_key, remote_ip FROM sessions WHERE id = ?`, sessionID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError(fmt.Sprintf("session %d not found", sessionID), err)
		}
		return nil, errors.NewDatabaseError("failed to get session", err)
	}

	if subtle.ConstantTimeCompare([]byte(session.Hash), []byte(sessionHash)) != 1 {
		return nil, errors.NewSessionError("bad hash", nil)
	}

	if sessionExpired(session.Started, r.now()) {
		return nil, errors.NewSessionError("session expired", nil)
	}

	return &models.SessionDevice{
		SessionID:  session.ID,
		SessionKey: session.SessionKey,
		DeviceID:   session.DeviceID,
	}, nil
}

func (r *SessionRepo) DeleteSessions(ctx context.Context, deviceID int64) error {
	if _, err := exec(ctx, r.db.GetDB(), `DELETE FROM sessions WHERE device_id = ?`, deviceID); err != nil {
		return errors.NewDatabaseError("failed to delete sessions", err)
	}
	return nil
}

// sessionExpired reports whether a whole day or more has elapsed between
// start and now, in either direction.
func sessionExpired(started, now time.Time) bool {
	elapsed := now.Sub(started)
	if elapsed < 0 {
		elapsed = -elapsed
	}
	return elapsed >= SessionLifetime
}
