package claim

import (
	"context"
	"time"
)

// ListOptions contains options for listing claims.
type ListOptions struct {
	// Status filters by lifecycle state when non-nil.
	Status *Status
	Limit  int
	Offset int
}

// ListResult contains the results of listing claims.
type ListResult struct {
	Items []*Claim
	Total int
}

// Repository defines the interface for claim persistence. Every method
// operates on the table selected by the claim kind.
type Repository interface {
	// Get retrieves a claim by kind and ID.
	// Returns ErrClaimNotFound if the claim doesn't exist.
	Get(ctx context.Context, kind Kind, id string) (*Claim, error)

	// List retrieves claims of one kind ordered by creation time descending.
	List(ctx context.Context, kind Kind, opts ListOptions) (*ListResult, error)

	// Create inserts a new claim.
	// Returns ErrDuplicateReference if the reference number is already taken.
	Create(ctx context.Context, c *Claim) error

	// Update persists mutable claim fields (status, answer, files, timestamps).
	Update(ctx context.Context, c *Claim) error

	// Delete hard-deletes a claim row, bypassing soft delete.
	Delete(ctx context.Context, kind Kind, id string) error

	// CountByIdentity counts claims of one kind whose identity field equals
	// identity. Soft-deleted rows are excluded.
	CountByIdentity(ctx context.Context, kind Kind, identity string) (int, error)

	// ArchiveOlderThan sets status=archived on all rows created at or before
	// cutoff, regardless of current status, and returns the affected count.
	ArchiveOlderThan(ctx context.Context, kind Kind, cutoff time.Time) (int, error)

	// ListAnsweredBefore returns answered claims whose answeredAt is at or
	// before cutoff. When withFiles is true, only rows that still reference
	// stored files are returned.
	ListAnsweredBefore(ctx context.Context, kind Kind, cutoff time.Time, withFiles bool) ([]*Claim, error)
}
