package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/guichethq/guichet/internal/notify"
	"github.com/guichethq/guichet/internal/retention"
)

// Job types carried in the message attributes.
const (
	jobNotificationSend = "notification_send"
	jobClaimsArchive    = "claims_archive"
	jobClaimsPurge      = "claims_purge"
	jobFilesSweep       = "files_sweep"
)

// PubSubHandler handles Pub/Sub messages for the worker.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	mailer           notify.Mailer
	retention        *retention.Jobs
	fileSweepDays    int
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	Mailer           notify.Mailer
	Retention        *retention.Jobs
	// FileSweepDays is used when a files_sweep message carries no days
	// attribute. Default: 30.
	FileSweepDays int
	Logger        zerolog.Logger
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// Configure receive settings.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	fileSweepDays := cfg.FileSweepDays
	if fileSweepDays <= 0 {
		fileSweepDays = retention.DefaultFileSweepDays
	}

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		mailer:           cfg.Mailer,
		retention:        cfg.Retention,
		fileSweepDays:    fileSweepDays,
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()

	jobType := msg.Attributes["job_type"]
	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("job_type", jobType).
		Logger()

	logger.Debug().Msg("received pubsub message")

	var err error
	switch jobType {
	case jobNotificationSend:
		err = h.handleNotification(ctx, msg.Data)
	case jobClaimsArchive:
		err = h.runRetention(ctx, h.retention.Archive)
	case jobClaimsPurge:
		err = h.runRetention(ctx, h.retention.Purge)
	case jobFilesSweep:
		err = h.handleFileSweep(ctx, msg.Attributes["days"])
	default:
		logger.Warn().Msg("unknown job type")
		msg.Ack() // Ack unknown messages to prevent redelivery
		return
	}

	if err != nil {
		logger.Error().Err(err).Msg("job failed")
		msg.Nack()
		return
	}

	logger.Info().
		Dur("duration", time.Since(startTime)).
		Msg("job completed successfully")

	msg.Ack()
}

// handleNotification renders the queued message in the claimant's language
// and delivers it over SMTP.
func (h *PubSubHandler) handleNotification(ctx context.Context, data []byte) error {
	var msg notify.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("parse notification: %w", err)
	}

	email, err := notify.Render(&msg)
	if err != nil {
		return fmt.Errorf("render notification: %w", err)
	}

	if err := h.mailer.Send(ctx, email); err != nil {
		if errors.Is(err, notify.ErrMailUnavailable) {
			h.logger.Warn().
				Str("reference", msg.ReferenceNumber).
				Msg("mail transport unavailable, message will be redelivered")
		}
		return err
	}

	h.logger.Info().
		Str("event", string(msg.Event)).
		Str("reference", msg.ReferenceNumber).
		Str("language", msg.Language).
		Msg("notification delivered")
	return nil
}

func (h *PubSubHandler) runRetention(ctx context.Context, job func(context.Context) (*retention.Report, error)) error {
	report, err := job(ctx)
	if err != nil {
		return err
	}
	h.logger.Info().
		Str("job", report.Job).
		Int("total", report.Total()).
		Msg("retention job completed")
	return nil
}

func (h *PubSubHandler) handleFileSweep(ctx context.Context, rawDays string) error {
	days := h.fileSweepDays
	if rawDays != "" {
		n, err := strconv.Atoi(rawDays)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid days attribute %q", rawDays)
		}
		days = n
	}

	report, err := h.retention.FileSweep(ctx, days)
	if err != nil {
		return err
	}
	h.logger.Info().
		Int("days", days).
		Int("total", report.Total()).
		Msg("file sweep completed")
	return nil
}
