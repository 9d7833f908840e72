package claim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/guichethq/guichet/internal/api/models"
)

// Validation constants.
const (
	MaxContentLength     = 5000
	MaxAnswerLength      = 5000
	MaxDisplayNameLength = 120
	MaxIdentityLength    = 32
)

// referenceRetries is how many times Submit regenerates a reference number
// after a unique-constraint collision.
const referenceRetries = 3

// emailRegex accepts the loose local@domain.tld shape; strict RFC validation
// is not worth the false negatives for a public form.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// FileStore stores claim attachments addressed by path.
type FileStore interface {
	Put(ctx context.Context, path string, content io.Reader) error
	Delete(ctx context.Context, path string) error
}

// Notifier enqueues claimant-facing notifications. Dispatch is asynchronous
// and best effort; the claim operations never fail on a notifier error.
type Notifier interface {
	ClaimSubmitted(ctx context.Context, c *Claim) error
	ClaimAnswered(ctx context.Context, c *Claim) error
}

// FileUpload is one attachment received with a submission.
type FileUpload struct {
	Name    string
	Content io.Reader
}

// SubmitInput carries a normalized public submission.
type SubmitInput struct {
	Kind        Kind
	Identity    string
	Email       string
	DisplayName string
	Language    string
	Content     string
	Files       []FileUpload
}

// Service provides claim operations.
type Service struct {
	repo     Repository
	files    FileStore
	notifier Notifier
	logger   zerolog.Logger
}

// ServiceConfig holds configuration for the claim service.
type ServiceConfig struct {
	Repository Repository
	Files      FileStore
	Notifier   Notifier
	Logger     zerolog.Logger
}

// NewService creates a new claim service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:     cfg.Repository,
		files:    cfg.Files,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
	}
}

// HasReachedLimit reports whether an identity already holds the maximum
// number of claims of one kind. Read-only; the check-then-insert window in
// Submit is not locked, so concurrent submissions for the same identity can
// both pass.
func (s *Service) HasReachedLimit(ctx context.Context, kind Kind, identity string) (bool, error) {
	count, err := s.repo.CountByIdentity(ctx, kind, identity)
	if err != nil {
		return false, err
	}
	return count >= MaxOpenClaimsPerIdentity, nil
}

// Submit creates a new pending claim, stores its attachments, and enqueues
// the "submitted" notification in the claimant's language.
func (s *Service) Submit(ctx context.Context, input *SubmitInput) (*models.Claim, error) {
	if fieldErrors := s.validateSubmitInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	limited, err := s.HasReachedLimit(ctx, input.Kind, input.Identity)
	if err != nil {
		return nil, err
	}
	if limited {
		return nil, ErrRateLimitReached
	}

	now := time.Now()
	c := &Claim{
		ID:          "clm_" + uuid.New().String()[:22],
		Kind:        input.Kind,
		Identity:    strings.TrimSpace(input.Identity),
		Email:       strings.TrimSpace(input.Email),
		DisplayName: strings.TrimSpace(input.DisplayName),
		Language:    normalizeLanguage(input.Language),
		Content:     input.Content,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	c.Files = s.storeUploads(ctx, c, input.Files)

	if err := s.createWithReference(ctx, c); err != nil {
		return nil, err
	}

	if err := s.notifier.ClaimSubmitted(ctx, c); err != nil {
		s.logger.Warn().Err(err).
			Str("claim_id", c.ID).
			Str("reference", c.ReferenceNumber).
			Msg("failed to enqueue submitted notification")
	}

	result := toAPIClaim(c)
	return &result, nil
}

// createWithReference inserts the claim, regenerating the reference number on
// a unique-constraint collision.
func (s *Service) createWithReference(ctx context.Context, c *Claim) error {
	for attempt := 0; attempt < referenceRetries; attempt++ {
		ref, err := NewReferenceNumber(c.Kind, c.CreatedAt)
		if err != nil {
			return err
		}
		c.ReferenceNumber = ref

		err = s.repo.Create(ctx, c)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrDuplicateReference) {
			return err
		}
	}
	return fmt.Errorf("allocate reference number: %w", ErrDuplicateReference)
}

// storeUploads writes attachments to the file store and returns the stored
// paths. A failed upload is logged and skipped; it never blocks submission.
func (s *Service) storeUploads(ctx context.Context, c *Claim, uploads []FileUpload) []string {
	var paths []string
	for i, upload := range uploads {
		p := fmt.Sprintf("claims/%s/%s/%d_%s", c.Kind, c.ID, i+1, sanitizeFilename(upload.Name))
		if err := s.files.Put(ctx, p, upload.Content); err != nil {
			s.logger.Error().Err(err).
				Str("claim_id", c.ID).
				Str("path", p).
				Msg("failed to store attachment")
			continue
		}
		paths = append(paths, p)
	}
	return paths
}

// Get retrieves a claim by kind and ID.
func (s *Service) Get(ctx context.Context, kind Kind, id string) (*models.Claim, error) {
	c, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	result := toAPIClaim(c)
	return &result, nil
}

// List retrieves claims of one kind, newest first, optionally filtered by status.
func (s *Service) List(ctx context.Context, kind Kind, opts ListOptions) (*models.PagedClaims, error) {
	if opts.Limit <= 0 {
		opts.Limit = 20
	}

	result, err := s.repo.List(ctx, kind, opts)
	if err != nil {
		return nil, err
	}

	items := make([]models.Claim, 0, len(result.Items))
	for _, c := range result.Items {
		items = append(items, toAPIClaim(c))
	}

	return &models.PagedClaims{
		Items: items,
		Meta: models.PagedResponseMeta{
			Limit:  opts.Limit,
			Offset: opts.Offset,
			Total:  result.Total,
		},
	}, nil
}

// Answer transitions a pending claim to answered, setting answer and
// answeredAt together, and enqueues the "answered" notification. An already
// answered or archived claim is rejected with ErrAlreadyAnswered.
func (s *Service) Answer(ctx context.Context, kind Kind, id, answer string) (*models.Claim, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, &ValidationError{Errors: []models.FieldError{
			{Field: "answer", Message: "is required"},
		}}
	}
	if len(answer) > MaxAnswerLength {
		return nil, &ValidationError{Errors: []models.FieldError{
			{Field: "answer", Message: fmt.Sprintf("must be at most %d characters", MaxAnswerLength)},
		}}
	}

	c, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	if c.Answered() || !c.Status.CanTransitionTo(StatusAnswered) {
		return nil, ErrAlreadyAnswered
	}

	now := time.Now()
	c.Status = StatusAnswered
	c.Answer = &answer
	c.AnsweredAt = &now
	c.UpdatedAt = now

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	if err := s.notifier.ClaimAnswered(ctx, c); err != nil {
		s.logger.Warn().Err(err).
			Str("claim_id", c.ID).
			Str("reference", c.ReferenceNumber).
			Msg("failed to enqueue answered notification")
	}

	result := toAPIClaim(c)
	return &result, nil
}

// Delete hard-deletes a claim and its stored files. File deletion is best
// effort; a storage failure never blocks row removal.
func (s *Service) Delete(ctx context.Context, kind Kind, id string) error {
	c, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return err
	}

	for _, p := range c.Files {
		if err := s.files.Delete(ctx, p); err != nil {
			s.logger.Error().Err(err).
				Str("claim_id", c.ID).
				Str("path", p).
				Msg("failed to delete attachment")
		}
	}

	return s.repo.Delete(ctx, kind, id)
}

// validateSubmitInput validates a public submission.
func (s *Service) validateSubmitInput(input *SubmitInput) []models.FieldError {
	var errs []models.FieldError

	if !input.Kind.IsValid() {
		errs = append(errs, models.FieldError{Field: "kind", Message: "must be citizen, company or organization"})
	}

	identity := strings.TrimSpace(input.Identity)
	if identity == "" {
		errs = append(errs, models.FieldError{Field: "identity", Message: "is required"})
	} else if len(identity) > MaxIdentityLength {
		errs = append(errs, models.FieldError{Field: "identity", Message: fmt.Sprintf("must be at most %d characters", MaxIdentityLength)})
	}

	email := strings.TrimSpace(input.Email)
	if email == "" {
		errs = append(errs, models.FieldError{Field: "email", Message: "is required"})
	} else if !emailRegex.MatchString(email) {
		errs = append(errs, models.FieldError{Field: "email", Message: "must be a valid email address"})
	}

	name := strings.TrimSpace(input.DisplayName)
	if name == "" {
		errs = append(errs, models.FieldError{Field: "displayName", Message: "is required"})
	} else if len(name) > MaxDisplayNameLength {
		errs = append(errs, models.FieldError{Field: "displayName", Message: fmt.Sprintf("must be at most %d characters", MaxDisplayNameLength)})
	}

	if input.Content == "" {
		errs = append(errs, models.FieldError{Field: "content", Message: "is required"})
	} else if len(input.Content) > MaxContentLength {
		errs = append(errs, models.FieldError{Field: "content", Message: fmt.Sprintf("must be at most %d characters", MaxContentLength)})
	}

	if len(input.Files) > MaxFilesPerClaim {
		errs = append(errs, models.FieldError{Field: "files", Message: fmt.Sprintf("at most %d files are allowed", MaxFilesPerClaim)})
	}
	for _, f := range input.Files {
		if strings.TrimSpace(f.Name) == "" {
			errs = append(errs, models.FieldError{Field: "files", Message: "file name is required"})
			break
		}
	}

	return errs
}

// normalizeLanguage lowercases and trims a language tag. The notification
// renderer falls back to the default locale for unsupported tags.
func normalizeLanguage(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

// sanitizeFilename strips directory components and characters that are not
// safe in an object key.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}

// toAPIClaim converts a domain Claim to an API Claim.
func toAPIClaim(c *Claim) models.Claim {
	api := models.Claim{
		ID:              c.ID,
		Kind:            string(c.Kind),
		ReferenceNumber: c.ReferenceNumber,
		Identity:        c.Identity,
		Email:           c.Email,
		DisplayName:     c.DisplayName,
		Language:        c.Language,
		Content:         c.Content,
		Files:           c.Files,
		Status:          string(c.Status),
		Answer:          c.Answer,
		CreatedAt:       models.Timestamp(c.CreatedAt),
		UpdatedAt:       models.Timestamp(c.UpdatedAt),
	}
	if c.AnsweredAt != nil {
		at := models.Timestamp(*c.AnsweredAt)
		api.AnsweredAt = &at
	}
	return api
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
