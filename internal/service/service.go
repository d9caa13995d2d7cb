package service

import (
	"github.com/itsatony/rahub/internal/errors"
	"github.com/itsatony/rahub/internal/repository"
)

// EventRecorder receives notable device events, e.g. the monitoring service.
type EventRecorder interface {
	RecordEvent(eventName string, labels map[string]string)
}

// Service is what the device protocol layer calls once a request is parsed
type Service struct {
	sessions  repository.SessionRepository
	telemetry repository.TelemetryRepository
	files     repository.FileRepository
	events    EventRecorder
}

// New creates a new service instance. events may be nil.
func New(
	sessions repository.SessionRepository,
	telemetry repository.TelemetryRepository,
	files repository.FileRepository,
	events EventRecorder,
) *Service {
	return &Service{
		sessions:  sessions,
		telemetry: telemetry,
		files:     files,
		events:    events,
	}
}

// Validate checks if all required repositories are initialized
func (s *Service) Validate() error {
	if s.sessions == nil {
		return ErrMissingRepository("sessions")
	}
	if s.telemetry == nil {
		return ErrMissingRepository("telemetry")
	}
	if s.files == nil {
		return ErrMissingRepository("files")
	}
	return nil
}

func ErrMissingRepository(name string) error {
	return errors.NewInternalError("missing repository: "+name, nil)
}

func (s *Service) record(event string, labels map[string]string) {
	if s.events != nil {
		s.events.RecordEvent(event, labels)
	}
}
