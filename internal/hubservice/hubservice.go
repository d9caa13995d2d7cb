package hubservice

import (
	"time"

	"github.com/itsatony/rahub/internal/cleanup"
	"github.com/itsatony/rahub/internal/errors"
	"github.com/itsatony/rahub/internal/repository"
	"github.com/itsatony/rahub/internal/secrets"
)

// HubService contains all repositories and service-wide dependencies of the
// operator-facing device administration
type HubService struct {
	Devices repository.DeviceRepository
	Files   repository.FileRepository
	Cipher  *secrets.Cipher
	Cleanup *cleanup.CleanupService

	// BaseURL prefixes the data and gallery links of a device.
	BaseURL string

	clock func() time.Time
}

// New creates a new HubService instance
func New(
	devices repository.DeviceRepository,
	files repository.FileRepository,
	cipher *secrets.Cipher,
	baseURL string,
) *HubService {
	return &HubService{
		Devices: devices,
		Files:   files,
		Cipher:  cipher,
		Cleanup: cleanup.New(devices, files),
		BaseURL: baseURL,
		clock:   time.Now,
	}
}

// SetClock replaces the time source used to judge sensor freshness.
func (s *HubService) SetClock(clock func() time.Time) {
	s.clock = clock
}

// Validate checks if all required repositories are initialized
func (s *HubService) Validate() error {
	if s.Devices == nil {
		return ErrMissingRepository("devices")
	}
	if s.Files == nil {
		return ErrMissingRepository("files")
	}
	if s.Cipher == nil {
		return ErrMissingRepository("cipher")
	}
	return nil
}

func ErrMissingRepository(name string) error {
	return errors.NewInternalError("missing repository: "+name, nil)
}
