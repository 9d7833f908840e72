package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/guichethq/guichet/internal/claim"
)

// jobTypeNotification is the job type attribute understood by the worker.
const jobTypeNotification = "notification_send"

// Publisher enqueues notification messages on a Pub/Sub topic. It implements
// claim.Notifier. Publishing is retried with exponential backoff; a message
// that still fails is dropped and logged, delivery is best effort.
type Publisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	logger    zerolog.Logger

	maxRetries      uint64
	initialInterval time.Duration
}

// PublisherConfig holds configuration for the publisher.
type PublisherConfig struct {
	ProjectID string
	TopicName string
	Logger    zerolog.Logger

	// MaxRetries bounds publish retries. Default: 3.
	MaxRetries uint64
	// InitialInterval is the first backoff interval. Default: 200ms.
	InitialInterval time.Duration
}

// NewPublisher creates a new Pub/Sub notification publisher.
func NewPublisher(ctx context.Context, cfg PublisherConfig) (*Publisher, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}
	initialInterval := cfg.InitialInterval
	if initialInterval == 0 {
		initialInterval = 200 * time.Millisecond
	}

	return &Publisher{
		client:          client,
		publisher:       client.Publisher(cfg.TopicName),
		logger:          cfg.Logger,
		maxRetries:      maxRetries,
		initialInterval: initialInterval,
	}, nil
}

// Close flushes pending messages and closes the client.
func (p *Publisher) Close() error {
	p.publisher.Stop()
	return p.client.Close()
}

// ClaimSubmitted enqueues the "claim submitted" notification.
func (p *Publisher) ClaimSubmitted(ctx context.Context, c *claim.Claim) error {
	return p.publish(ctx, messageFor(EventSubmitted, c, c.Content))
}

// ClaimAnswered enqueues the "claim answered" notification.
func (p *Publisher) ClaimAnswered(ctx context.Context, c *claim.Claim) error {
	answer := ""
	if c.Answer != nil {
		answer = *c.Answer
	}
	return p.publish(ctx, messageFor(EventAnswered, c, answer))
}

// messageFor builds the queued payload for a claim event. The locale is the
// claim's stored language, never the caller's.
func messageFor(event Event, c *claim.Claim, body string) *Message {
	return &Message{
		Event:           event,
		Kind:            string(c.Kind),
		KindLabel:       c.Kind.Label(),
		Email:           c.Email,
		DisplayName:     c.DisplayName,
		Language:        c.Language,
		ReferenceNumber: c.ReferenceNumber,
		Body:            body,
	}
}

// publish sends one message with bounded exponential-backoff retries.
func (p *Publisher) publish(ctx context.Context, msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.initialInterval
	bo.MaxElapsedTime = 0

	operation := func() error {
		result := p.publisher.Publish(ctx, &pubsub.Message{
			Data: data,
			Attributes: map[string]string{
				"job_type": jobTypeNotification,
				"event":    string(msg.Event),
			},
		})
		_, err := result.Get(ctx)
		return err
	}

	err = backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, p.maxRetries), ctx))
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}

	p.logger.Debug().
		Str("event", string(msg.Event)).
		Str("reference", msg.ReferenceNumber).
		Str("language", msg.Language).
		Msg("notification enqueued")
	return nil
}

// Ensure Publisher implements claim.Notifier.
var _ claim.Notifier = (*Publisher)(nil)
