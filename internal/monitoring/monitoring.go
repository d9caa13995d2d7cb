package monitoring

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

const publishTimeout = 2 * time.Second

// Config holds monitoring configuration
type Config struct {
	Stream string
}

// EventSink receives every recorded event.
type EventSink interface {
	Publish(ctx context.Context, event string, at time.Time, labels map[string]string) error
}

// Service provides monitoring functionality
type Service struct {
	config Config
	sink   EventSink
}

// NewService creates a new monitoring service. sink may be nil, in which
// case events are only logged.
func NewService(config Config, sink EventSink) *Service {
	return &Service{
		config: config,
		sink:   sink,
	}
}

// RecordEvent records a monitored event with labels
func (s *Service) RecordEvent(eventName string, labels map[string]string) {
	ts := time.Now().UTC()

	nuts.L.Infof("[Monitoring] Event %s recorded at %v with labels: %v", eventName, ts, labels)
	if s.sink == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := s.sink.Publish(ctx, eventName, ts, labels); err != nil {
		nuts.L.Warnf("[Monitoring] Failed to publish event %s: %v", eventName, err)
	}
}

// RedisSink appends events to a Redis stream.
type RedisSink struct {
	client *redis.Client
	stream string
}

func NewRedisSink(client *redis.Client, stream string) *RedisSink {
	return &RedisSink{client: client, stream: stream}
}

func (r *RedisSink) Publish(ctx context.Context, event string, at time.Time, labels map[string]string) error {
	values := map[string]interface{}{
		"event": event,
		"at":    at.Format(time.RFC3339Nano),
	}
	for k, v := range labels {
		values["label."+k] = v
	}
	return r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		Values: values,
	}).Err()
}
