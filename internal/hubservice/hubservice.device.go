package hubservice

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/itsatony/rahub/internal/errors"
	"github.com/itsatony/rahub/internal/models"
	"github.com/itsatony/struccy"
	gonanoid "github.com/matoous/go-nanoid/v2"
	nuts "github.com/vaudience/go-nuts"
)

const (
	tokenAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	tokenLength   = 40
)

var deviceNamePattern = regexp.MustCompile(`^[0-9A-Za-z]+$`)

// DeviceService handles operator-facing device administration
type DeviceService interface {
	CreateDevice(ctx context.Context, form models.DeviceForm) (*models.Device, error)
	UpdateDevice(ctx context.Context, id int64, form models.DeviceForm) (*models.Device, error)
	GetDevice(ctx context.Context, id int64) (*models.Device, error)
	GetDeviceDetail(ctx context.Context, id int64) (*DeviceDetail, error)
	ListBlobs(ctx context.Context, id int64) ([]*models.Blob, error)
	GetBlobDownload(ctx context.Context, id, blobID int64) (*BlobDownload, error)
	GetDeleteStats(ctx context.Context, id int64) (*DeleteStats, error)
	DeleteDevice(ctx context.Context, id int64, confirmed bool) error
	SendConfig(ctx context.Context, id int64, configData string) (*models.DeviceConfig, error)
}

// DeviceDetail is everything the device page shows.
type DeviceDetail struct {
	Device      *models.Device         `json:"device"`
	ProblemMark bool                   `json:"problem_mark"`
	BlobCount   int64                  `json:"blob_count"`
	Sensors     []*models.SensorStatus `json:"sensors"`
	JSONURL     string                 `json:"json_url"`
	GalleryURL  string                 `json:"gallery_url"`
}

// DeleteStats is what the operator confirms before a device is removed.
type DeleteStats struct {
	DeviceID  int64                `json:"device_id"`
	Name      string               `json:"name"`
	Measures  *models.MeasureStats `json:"measures"`
	BlobCount int64                `json:"blob_count"`
}

func validateDeviceForm(form models.DeviceForm) error {
	if !deviceNamePattern.MatchString(form.Name) {
		return errors.NewValidationError("device name may only contain letters and digits", nil)
	}
	if form.Passphrase == "" {
		return errors.NewValidationError("passphrase is required", nil)
	}
	if strings.TrimSpace(form.Description) == "" {
		return errors.NewValidationError("description is required", nil)
	}
	return nil
}

func newToken() (string, error) {
	token, err := gonanoid.Generate(tokenAlphabet, tokenLength)
	if err != nil {
		return "", errors.NewInternalError("failed to generate token", err)
	}
	return token, nil
}

func tokenOrDefault(value string, current *string) (*string, error) {
	if value != "" {
		return &value, nil
	}
	if current != nil && *current != "" {
		return current, nil
	}
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// applyForm copies the form onto device, prefixing the name with the owner's
// prefix and encrypting the passphrase under the resulting full name.
func (s *HubService) applyForm(device *models.Device, form models.DeviceForm, prefix string) error {
	device.Name = prefix + models.DeviceNameSeparator + form.Name
	device.Description = form.Description
	device.Monitoring = form.Monitoring

	encrypted, err := s.Cipher.Encrypt(form.Passphrase, device.Name)
	if err != nil {
		return errors.NewInternalError("failed to encrypt passphrase", err)
	}
	device.Passphrase = encrypted

	if device.JSONToken, err = tokenOrDefault(form.JSONToken, device.JSONToken); err != nil {
		return err
	}
	if device.BlobToken, err = tokenOrDefault(form.BlobToken, device.BlobToken); err != nil {
		return err
	}
	return nil
}

// CreateDevice registers a new device owned by the current operator
func (s *HubService) CreateDevice(ctx context.Context, form models.DeviceForm) (*models.Device, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user.Prefix == "" {
		return nil, errors.NewValidationError("user has no device prefix", nil)
	}
	if err := validateDeviceForm(form); err != nil {
		return nil, err
	}

	device := &models.Device{UserID: user.ID}
	if err := s.applyForm(device, form, user.Prefix); err != nil {
		return nil, err
	}

	if err := s.Devices.Create(ctx, device); err != nil {
		return nil, err
	}
	nuts.L.Infof("[DeviceService] User %s created device %s (%d)", user.Username, device.Name, device.ID)
	return s.present(ctx, device)
}

// UpdateDevice overwrites the operator-editable fields of a device
func (s *HubService) UpdateDevice(ctx context.Context, id int64, form models.DeviceForm) (*models.Device, error) {
	existing, user, err := s.loadOwnedDevice(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateDeviceForm(form); err != nil {
		return nil, err
	}

	prefix := user.Prefix
	if existing.UserID != user.ID {
		// a superadmin keeps the owner's prefix
		prefix = strings.SplitN(existing.Name, models.DeviceNameSeparator, 2)[0]
	}

	updated := *existing
	if err := s.applyForm(&updated, form, prefix); err != nil {
		return nil, err
	}

	snapshot := *existing
	updatedFields, _, err := struccy.UpdateStructFields(&snapshot, &updated, GetUserRoles(ctx, existing), true, true)
	if err != nil {
		return nil, errors.NewAuthorizationError("unauthorized field update", err)
	}

	if err := s.Devices.Update(ctx, &updated); err != nil {
		return nil, err
	}
	nuts.L.Infof("[DeviceService] Updating device %d, fields changed: %v", id, updatedFields)
	return s.present(ctx, &updated)
}

// GetDevice returns a device ready for the edit form: passphrase in clear
// text and the name without the owner's prefix.
func (s *HubService) GetDevice(ctx context.Context, id int64) (*models.Device, error) {
	device, _, err := s.loadOwnedDevice(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.present(ctx, device)
}

func (s *HubService) present(ctx context.Context, device *models.Device) (*models.Device, error) {
	plain, err := s.Cipher.Decrypt(device.Passphrase, device.Name)
	if err != nil {
		return nil, errors.NewInternalError("failed to decrypt passphrase", err)
	}

	view := *device
	view.Passphrase = plain
	view.Name = device.LocalName()
	return filterDevice(ctx, &view)
}

// filterDevice zeroes the fields the caller's roles may not read
func filterDevice(ctx context.Context, device *models.Device) (*models.Device, error) {
	filtered := &models.Device{}
	if err := struccy.FilterStructTo(device, filtered, GetUserRoles(ctx, device), true); err != nil {
		return nil, errors.NewInternalError("failed to filter device fields", err)
	}
	return filtered, nil
}

// GetDeviceDetail assembles the device page: login problem mark, blob count,
// per-sensor freshness and the public data links.
func (s *HubService) GetDeviceDetail(ctx context.Context, id int64) (*DeviceDetail, error) {
	device, _, err := s.loadOwnedDevice(ctx, id)
	if err != nil {
		return nil, err
	}

	blobCount, err := s.Devices.CountBlobs(ctx, id)
	if err != nil {
		return nil, err
	}

	sensors, err := s.Devices.ListSensors(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	statuses := make([]*models.SensorStatus, 0, len(sensors))
	for _, sensor := range sensors {
		status := sensor.StatusAt(now, device.Monitoring)
		statuses = append(statuses, &status)
	}

	view, err := s.present(ctx, device)
	if err != nil {
		return nil, err
	}

	return &DeviceDetail{
		Device:      view,
		ProblemMark: device.HasLoginProblem(),
		BlobCount:   blobCount,
		Sensors:     statuses,
		JSONURL:     s.link("json/data", device.JSONToken, id),
		GalleryURL:  s.link("gallery", device.BlobToken, id),
	}, nil
}

func (s *HubService) link(path string, token *string, id int64) string {
	t := ""
	if token != nil {
		t = *token
	}
	base := strings.TrimSuffix(s.BaseURL, "/")
	return fmt.Sprintf("%s/%s/%s/%d/", base, path, t, id)
}

// GetDeleteStats summarises what deleting the device would remove
func (s *HubService) GetDeleteStats(ctx context.Context, id int64) (*DeleteStats, error) {
	device, _, err := s.loadOwnedDevice(ctx, id)
	if err != nil {
		return nil, err
	}

	measures, err := s.Devices.MeasureStats(ctx, id)
	if err != nil {
		return nil, err
	}
	blobCount, err := s.Devices.CountBlobs(ctx, id)
	if err != nil {
		return nil, err
	}

	return &DeleteStats{
		DeviceID:  id,
		Name:      device.Name,
		Measures:  measures,
		BlobCount: blobCount,
	}, nil
}

// DeleteDevice removes the device and all its data once the operator confirmed
func (s *HubService) DeleteDevice(ctx context.Context, id int64, confirmed bool) error {
	if !confirmed {
		return errors.NewValidationError("deletion must be confirmed", nil)
	}

	device, user, err := s.loadOwnedDevice(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Cleanup.DeleteDevice(ctx, id); err != nil {
		return err
	}
	nuts.L.Infof("[Audit] User #%s %s deleted device %d %s", user.ID, user.Username, id, device.Name)
	return nil
}

// SendConfig queues a configuration payload for the device. Its session is
// dropped so the next login picks the payload up.
func (s *HubService) SendConfig(ctx context.Context, id int64, configData string) (*models.DeviceConfig, error) {
	if strings.TrimSpace(configData) == "" {
		return nil, errors.NewValidationError("config data is required", nil)
	}

	if _, _, err := s.loadOwnedDevice(ctx, id); err != nil {
		return nil, err
	}

	version, err := s.Devices.QueueConfig(ctx, id, configData)
	if err != nil {
		return nil, err
	}
	nuts.L.Infof("[DeviceService] Config version %d queued for device %d", version, id)
	return &models.DeviceConfig{Version: version, Data: configData}, nil
}
