package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/storefront-backend/internal/media"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

type recordingRemover struct {
	calls [][2]string
	err   error
}

func (r *recordingRemover) DeleteObject(ctx context.Context, bucket, object string) error {
	r.calls = append(r.calls, [2]string{bucket, object})
	return r.err
}

type statusErr struct{ temp bool }

func (e statusErr) Error() string   { return "gcs status" }
func (e statusErr) Temporary() bool { return e.temp }

func newConsumer(t *testing.T, remover *recordingRemover) (*DeletionConsumer, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return &DeletionConsumer{
		remover:       remover,
		defaultBucket: "default-bucket",
		metrics:       metrics.NewJobMetrics(reg),
		logg:          logger.Nop(),
	}, reg
}

func deletionMessage(t *testing.T, event media.DeletionEvent) *pubsub.Message {
	t.Helper()
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return &pubsub.Message{
		ID:         "msg-1",
		Data:       data,
		Attributes: map[string]string{media.EventTypeAttr: media.DeletionRequestedEvent},
	}
}

func TestProcessDeletesObject(t *testing.T) {
	remover := &recordingRemover{}
	c, reg := newConsumer(t, remover)

	key := media.ObjectKey("product-images", uuid.New(), "front.jpg")
	result := c.process(context.Background(), deletionMessage(t, media.DeletionEvent{ObjectKey: key}))
	if !result.ack || result.nack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(remover.calls) != 1 || remover.calls[0] != [2]string{"default-bucket", key} {
		t.Fatalf("unexpected calls %v", remover.calls)
	}
	if success := jobCounter(t, reg, "job_success_total"); success != 1 {
		t.Fatalf("expected 1 success, got %v", success)
	}
}

func TestProcessSkipsOtherEvents(t *testing.T) {
	remover := &recordingRemover{}
	c, _ := newConsumer(t, remover)

	msg := deletionMessage(t, media.DeletionEvent{ObjectKey: "a/b/c.jpg"})
	msg.Attributes[media.EventTypeAttr] = "OBJECT_FINALIZE"
	if result := c.process(context.Background(), msg); !result.ack {
		t.Fatalf("expected ack for skipped event, got %+v", result)
	}
	if len(remover.calls) != 0 {
		t.Fatal("expected no deletion for non-delete event")
	}
}

func TestProcessAcksMalformedPayload(t *testing.T) {
	remover := &recordingRemover{}
	c, _ := newConsumer(t, remover)

	msg := deletionMessage(t, media.DeletionEvent{})
	if result := c.process(context.Background(), msg); !result.ack {
		t.Fatalf("expected ack for empty key, got %+v", result)
	}
	msg.Data = []byte("{not json")
	if result := c.process(context.Background(), msg); !result.ack {
		t.Fatalf("expected ack for bad json, got %+v", result)
	}
	if len(remover.calls) != 0 {
		t.Fatal("expected no deletion for malformed events")
	}
}

func TestProcessRetriesTransientFailures(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantNack bool
	}{
		{"temporary", statusErr{temp: true}, true},
		{"deadline", fmt.Errorf("delete: %w", context.DeadlineExceeded), true},
		{"permanent", statusErr{temp: false}, false},
		{"plain", errors.New("forbidden"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			remover := &recordingRemover{err: tc.err}
			c, reg := newConsumer(t, remover)
			result := c.process(context.Background(), deletionMessage(t, media.DeletionEvent{ObjectKey: "k", Bucket: "b"}))
			if result.nack != tc.wantNack {
				t.Fatalf("expected nack=%v, got %+v", tc.wantNack, result)
			}
			if remover.calls[0][0] != "b" {
				t.Fatalf("expected event bucket to win, got %s", remover.calls[0][0])
			}
			if failures := jobCounter(t, reg, "job_failure_total"); failures != 1 {
				t.Fatalf("expected 1 failure, got %v", failures)
			}
		})
	}
}

func TestNewDeletionConsumerRequiresDependencies(t *testing.T) {
	if _, err := NewDeletionConsumer(nil, "", &pubsub.Subscriber{}, nil, logger.Nop()); err == nil {
		t.Fatal("expected error for missing remover")
	}
	if _, err := NewDeletionConsumer(&recordingRemover{}, "", nil, nil, logger.Nop()); err == nil {
		t.Fatal("expected error for missing subscription")
	}
}

func jobCounter(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if hasLabel(m, "job", jobName) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func hasLabel(m *dto.Metric, name, value string) bool {
	for _, label := range m.GetLabel() {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
