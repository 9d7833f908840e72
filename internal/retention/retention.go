// Package retention ages claims through the end of their lifecycle: archival
// of old claims, deletion of stored files, and the final purge of answered
// claims past the retention window.
package retention

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/guichethq/guichet/internal/claim"
	"github.com/guichethq/guichet/internal/storage"
)

// Default thresholds.
const (
	// DefaultArchiveAge is how old a claim must be, from creation, before
	// the archive job marks it archived.
	DefaultArchiveAge = 3 * 30 * 24 * time.Hour

	// DefaultPurgeAge is how long after answering a claim is kept before
	// the purge job removes the row.
	DefaultPurgeAge = 30 * 24 * time.Hour

	// DefaultFileSweepDays is the default age, in days from answering,
	// after which the file sweep deletes stored attachments.
	DefaultFileSweepDays = 30
)

// Policy holds the retention thresholds.
type Policy struct {
	// ArchiveAge is the age from createdAt after which claims are archived.
	ArchiveAge time.Duration
	// PurgeAge is the age from answeredAt after which answered claims are
	// hard-deleted.
	PurgeAge time.Duration
	// FileSweepDays is the default day threshold for the file sweep.
	FileSweepDays int
}

// DefaultPolicy returns the default retention policy.
func DefaultPolicy() Policy {
	return Policy{
		ArchiveAge:    DefaultArchiveAge,
		PurgeAge:      DefaultPurgeAge,
		FileSweepDays: DefaultFileSweepDays,
	}
}

// Report holds per-kind row counts from one job run.
type Report struct {
	Job    string
	Counts map[claim.Kind]int
}

// Total sums the per-kind counts.
func (r *Report) Total() int {
	total := 0
	for _, n := range r.Counts {
		total += n
	}
	return total
}

// Jobs runs the retention jobs over all claim kinds.
type Jobs struct {
	repo   claim.Repository
	files  storage.Store
	policy Policy
	logger zerolog.Logger
}

// JobsConfig holds configuration for the retention jobs.
type JobsConfig struct {
	Repository claim.Repository
	Files      storage.Store
	Policy     Policy
	Logger     zerolog.Logger
}

// NewJobs creates the retention job runner.
func NewJobs(cfg JobsConfig) *Jobs {
	policy := cfg.Policy
	if policy.ArchiveAge == 0 {
		policy.ArchiveAge = DefaultArchiveAge
	}
	if policy.PurgeAge == 0 {
		policy.PurgeAge = DefaultPurgeAge
	}
	if policy.FileSweepDays == 0 {
		policy.FileSweepDays = DefaultFileSweepDays
	}
	return &Jobs{
		repo:   cfg.Repository,
		files:  cfg.Files,
		policy: policy,
		logger: cfg.Logger,
	}
}

// Archive marks every claim older than the archive threshold as archived,
// regardless of current status. Already-archived rows are rewritten with the
// same value, so the job is idempotent. No per-row notifications are sent.
func (j *Jobs) Archive(ctx context.Context) (*Report, error) {
	cutoff := time.Now().Add(-j.policy.ArchiveAge)
	report := &Report{Job: "archive", Counts: make(map[claim.Kind]int, len(claim.Kinds))}

	for _, kind := range claim.Kinds {
		count, err := j.repo.ArchiveOlderThan(ctx, kind, cutoff)
		if err != nil {
			return nil, err
		}
		report.Counts[kind] = count
	}

	j.logger.Info().
		Time("cutoff", cutoff).
		Int("total", report.Total()).
		Msg("archive job completed")
	return report, nil
}

// Purge hard-deletes answered claims whose answeredAt is older than the purge
// threshold. Any files the earlier sweep has not removed are deleted first so
// no object outlives its row. A storage failure on one file is logged and
// does not keep the row alive.
func (j *Jobs) Purge(ctx context.Context) (*Report, error) {
	cutoff := time.Now().Add(-j.policy.PurgeAge)
	report := &Report{Job: "purge", Counts: make(map[claim.Kind]int, len(claim.Kinds))}

	for _, kind := range claim.Kinds {
		claims, err := j.repo.ListAnsweredBefore(ctx, kind, cutoff, false)
		if err != nil {
			return nil, err
		}

		for _, c := range claims {
			j.deleteFiles(ctx, c)
			if err := j.repo.Delete(ctx, kind, c.ID); err != nil {
				// A concurrent run may have deleted the row already.
				j.logger.Warn().Err(err).
					Str("claim_id", c.ID).
					Msg("failed to purge claim row")
				continue
			}
			report.Counts[kind]++
		}
	}

	j.logger.Info().
		Time("cutoff", cutoff).
		Int("total", report.Total()).
		Msg("purge job completed")
	return report, nil
}

// FileSweep deletes stored attachments of answered claims older than the
// given day threshold and clears their files column. Rows are kept; only
// objects go. days <= 0 uses the policy default.
func (j *Jobs) FileSweep(ctx context.Context, days int) (*Report, error) {
	if days <= 0 {
		days = j.policy.FileSweepDays
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	report := &Report{Job: "file_sweep", Counts: make(map[claim.Kind]int, len(claim.Kinds))}

	for _, kind := range claim.Kinds {
		claims, err := j.repo.ListAnsweredBefore(ctx, kind, cutoff, true)
		if err != nil {
			return nil, err
		}

		for _, c := range claims {
			if !j.deleteFiles(ctx, c) {
				// Keep the stale paths so the next run retries them.
				continue
			}
			c.Files = nil
			c.UpdatedAt = time.Now()
			if err := j.repo.Update(ctx, c); err != nil {
				j.logger.Warn().Err(err).
					Str("claim_id", c.ID).
					Msg("failed to clear files column")
				continue
			}
			report.Counts[kind]++
		}
	}

	j.logger.Info().
		Time("cutoff", cutoff).
		Int("days", days).
		Int("total", report.Total()).
		Msg("file sweep completed")
	return report, nil
}

// deleteFiles removes every stored object of a claim. Returns false if any
// delete failed.
func (j *Jobs) deleteFiles(ctx context.Context, c *claim.Claim) bool {
	ok := true
	for _, p := range c.Files {
		if err := j.files.Delete(ctx, p); err != nil {
			j.logger.Error().Err(err).
				Str("claim_id", c.ID).
				Str("path", p).
				Msg("failed to delete stored file")
			ok = false
		}
	}
	return ok
}
