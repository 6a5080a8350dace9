package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/storefront-backend/internal/media"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

const jobName = "media_delete"

type objectRemover interface {
	DeleteObject(ctx context.Context, bucket, object string) error
}

type temporary interface {
	Temporary() bool
}

// DeletionConsumer removes product images queued by the media service.
type DeletionConsumer struct {
	remover       objectRemover
	defaultBucket string
	subscription  *pubsub.Subscriber
	metrics       *metrics.JobMetrics
	logg          *logger.Logger
}

type processResult struct {
	ack  bool
	nack bool
}

// NewDeletionConsumer wires the worker. defaultBucket is used for events that
// do not carry a bucket.
func NewDeletionConsumer(remover objectRemover, defaultBucket string, subscription *pubsub.Subscriber, jobs *metrics.JobMetrics, logg *logger.Logger) (*DeletionConsumer, error) {
	if remover == nil {
		return nil, errors.New("object remover is required")
	}
	if subscription == nil {
		return nil, errors.New("media deletion subscription is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &DeletionConsumer{
		remover:       remover,
		defaultBucket: defaultBucket,
		subscription:  subscription,
		metrics:       jobs,
		logg:          logg,
	}, nil
}

// Run processes deletion requests until the context is canceled.
func (c *DeletionConsumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (c *DeletionConsumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": msg.Attributes[media.EventTypeAttr],
	})

	if msg.Attributes[media.EventTypeAttr] != media.DeletionRequestedEvent {
		c.logg.Info(logCtx, "skipping non-delete event")
		return processResult{ack: true}
	}

	var event media.DeletionEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		c.logg.Error(logCtx, "failed to decode deletion event", err)
		return processResult{ack: true}
	}
	key := strings.TrimSpace(event.ObjectKey)
	if key == "" {
		c.logg.Warn(logCtx, "deletion event missing object key")
		return processResult{ack: true}
	}
	bucket := event.Bucket
	if bucket == "" {
		bucket = c.defaultBucket
	}
	logCtx = c.logg.WithFields(logCtx, map[string]any{"bucket": bucket, "object_key": key})

	start := time.Now()
	err := c.remover.DeleteObject(ctx, bucket, key)
	c.metrics.Observe(jobName, time.Since(start), err)
	if err != nil {
		c.logg.Error(logCtx, "media object deletion failed", err)
		if isTransient(err) {
			return processResult{nack: true}
		}
		return processResult{ack: true}
	}

	c.logg.Info(logCtx, "media object deleted")
	return processResult{ack: true}
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var temp temporary
	if errors.As(err, &temp) {
		return temp.Temporary()
	}
	return false
}
