package monitoring

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/matryer/is"
)

type recordingSink struct {
	events []string
	labels []map[string]string
	err    error
}

func (r *recordingSink) Publish(ctx context.Context, event string, at time.Time, labels map[string]string) error {
	r.events = append(r.events, event)
	r.labels = append(r.labels, labels)
	return r.err
}

func TestRecordEventPublishes(t *testing.T) {
	is := is.New(t)
	sink := &recordingSink{}
	svc := NewService(Config{Stream: "ra:events"}, sink)

	svc.RecordEvent("device_deletion", map[string]string{"device_id": "7"})

	is.Equal(sink.events, []string{"device_deletion"})
	is.Equal(sink.labels[0]["device_id"], "7")
}

func TestRecordEventSurvivesSinkFailure(t *testing.T) {
	is := is.New(t)
	sink := &recordingSink{err: fmt.Errorf("redis down")}

	NewService(Config{}, sink).RecordEvent("blob_deletion", nil)
	NewService(Config{}, nil).RecordEvent("blob_deletion", nil)

	is.Equal(len(sink.events), 1)
}
