package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	mail "github.com/wneessen/go-mail"

	"github.com/guichethq/guichet/internal/resilience"
	"github.com/guichethq/guichet/internal/telemetry"
)

// ErrMailUnavailable is returned when the mail circuit breaker is open.
var ErrMailUnavailable = errors.New("mail transport unavailable")

// Mailer delivers rendered emails.
type Mailer interface {
	Send(ctx context.Context, email *Email) error
}

// SMTPConfig holds configuration for the SMTP mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// From is the sender address, e.g. "no-reply@guichet.city".
	From string
	// FromName is the sender display name.
	FromName string
}

// SMTPMailer sends emails over SMTP. Sends go through a circuit breaker so a
// broken relay fails fast and lets the queue redeliver later.
type SMTPMailer struct {
	client  *mail.Client
	cfg     SMTPConfig
	breaker *gobreaker.CircuitBreaker[any]
	metrics *telemetry.DependencyMetrics
}

// NewSMTPMailer creates a new SMTP mailer.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}

	metrics, _ := telemetry.NewDependencyMetrics()
	return &SMTPMailer{
		client:  client,
		cfg:     cfg,
		breaker: resilience.NewCircuitBreaker[any](resilience.DefaultCircuitBreakerConfig("smtp")),
		metrics: metrics,
	}, nil
}

// Send delivers one email.
func (m *SMTPMailer) Send(ctx context.Context, email *Email) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.AddToFormat(email.ToName, email.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextPlain, email.Body)

	start := time.Now()
	_, err := m.breaker.Execute(func() (any, error) {
		return nil, m.client.DialAndSendWithContext(ctx, msg)
	})
	m.metrics.RecordCall("smtp", "send", time.Since(start), err)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", ErrMailUnavailable, err)
		}
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// InMemoryMailer records sent emails.
// This is intended for testing. Production should use SMTPMailer.
type InMemoryMailer struct {
	mu   sync.Mutex
	sent []*Email

	// FailNext makes the next Send return an error. Test helper.
	FailNext error
}

// NewInMemoryMailer creates a new in-memory mailer.
func NewInMemoryMailer() *InMemoryMailer {
	return &InMemoryMailer{}
}

// Send records the email.
func (m *InMemoryMailer) Send(_ context.Context, email *Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNext != nil {
		err := m.FailNext
		m.FailNext = nil
		return err
	}
	m.sent = append(m.sent, email)
	return nil
}

// Sent returns a copy of the recorded emails.
func (m *InMemoryMailer) Sent() []*Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Email(nil), m.sent...)
}

// Ensure implementations satisfy Mailer.
var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = (*InMemoryMailer)(nil)
)
