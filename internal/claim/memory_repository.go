package claim

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu     sync.RWMutex
	claims map[Kind]map[string]*Claim
}

// NewInMemoryRepository creates a new in-memory claim repository.
func NewInMemoryRepository() *InMemoryRepository {
	claims := make(map[Kind]map[string]*Claim, len(Kinds))
	for _, k := range Kinds {
		claims[k] = make(map[string]*Claim)
	}
	return &InMemoryRepository{claims: claims}
}

// Get retrieves a claim by kind and ID.
func (r *InMemoryRepository) Get(_ context.Context, kind Kind, id string) (*Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	table, ok := r.claims[kind]
	if !ok {
		return nil, ErrInvalidKind
	}
	c, ok := table[id]
	if !ok || c.DeletedAt != nil {
		return nil, ErrClaimNotFound
	}

	cpy := copyClaim(c)
	return cpy, nil
}

// List retrieves claims of one kind ordered by creation time descending.
func (r *InMemoryRepository) List(_ context.Context, kind Kind, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	table, ok := r.claims[kind]
	if !ok {
		return nil, ErrInvalidKind
	}

	var matched []*Claim
	for _, c := range table {
		if c.DeletedAt != nil {
			continue
		}
		if opts.Status != nil && c.Status != *opts.Status {
			continue
		}
		matched = append(matched, copyClaim(c))
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	start := opts.Offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &ListResult{Items: matched[start:end], Total: total}, nil
}

// Create inserts a new claim.
func (r *InMemoryRepository) Create(_ context.Context, c *Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	table, ok := r.claims[c.Kind]
	if !ok {
		return ErrInvalidKind
	}
	for _, existing := range table {
		if existing.ReferenceNumber == c.ReferenceNumber {
			return ErrDuplicateReference
		}
	}

	table[c.ID] = copyClaim(c)
	return nil
}

// Update persists mutable claim fields.
func (r *InMemoryRepository) Update(_ context.Context, c *Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	table, ok := r.claims[c.Kind]
	if !ok {
		return ErrInvalidKind
	}
	if _, ok := table[c.ID]; !ok {
		return ErrClaimNotFound
	}

	table[c.ID] = copyClaim(c)
	return nil
}

// Delete hard-deletes a claim.
func (r *InMemoryRepository) Delete(_ context.Context, kind Kind, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	table, ok := r.claims[kind]
	if !ok {
		return ErrInvalidKind
	}
	if _, ok := table[id]; !ok {
		return ErrClaimNotFound
	}

	delete(table, id)
	return nil
}

// CountByIdentity counts live claims of one kind for one identity.
func (r *InMemoryRepository) CountByIdentity(_ context.Context, kind Kind, identity string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	table, ok := r.claims[kind]
	if !ok {
		return 0, ErrInvalidKind
	}

	count := 0
	for _, c := range table {
		if c.DeletedAt == nil && c.Identity == identity {
			count++
		}
	}
	return count, nil
}

// ArchiveOlderThan archives all rows created at or before cutoff.
func (r *InMemoryRepository) ArchiveOlderThan(_ context.Context, kind Kind, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	table, ok := r.claims[kind]
	if !ok {
		return 0, ErrInvalidKind
	}

	count := 0
	for _, c := range table {
		if c.DeletedAt == nil && !c.CreatedAt.After(cutoff) {
			c.Status = StatusArchived
			c.UpdatedAt = time.Now()
			count++
		}
	}
	return count, nil
}

// ListAnsweredBefore returns answered claims with answeredAt at or before cutoff.
func (r *InMemoryRepository) ListAnsweredBefore(_ context.Context, kind Kind, cutoff time.Time, withFiles bool) ([]*Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	table, ok := r.claims[kind]
	if !ok {
		return nil, ErrInvalidKind
	}

	var matched []*Claim
	for _, c := range table {
		if c.Status != StatusAnswered || c.AnsweredAt == nil || c.AnsweredAt.After(cutoff) {
			continue
		}
		if withFiles && len(c.Files) == 0 {
			continue
		}
		matched = append(matched, copyClaim(c))
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].AnsweredAt.Before(*matched[j].AnsweredAt)
	})
	return matched, nil
}

// copyClaim returns a deep copy so callers cannot mutate stored state.
func copyClaim(c *Claim) *Claim {
	cpy := *c
	if c.Files != nil {
		cpy.Files = append([]string(nil), c.Files...)
	}
	if c.Answer != nil {
		answer := *c.Answer
		cpy.Answer = &answer
	}
	if c.AnsweredAt != nil {
		at := *c.AnsweredAt
		cpy.AnsweredAt = &at
	}
	if c.DeletedAt != nil {
		at := *c.DeletedAt
		cpy.DeletedAt = &at
	}
	return &cpy
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
