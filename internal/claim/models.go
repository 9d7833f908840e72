// Package claim provides the municipal claims domain: submission, admin
// answering, and the retention lifecycle.
package claim

import (
	"errors"
	"time"
)

// Domain errors.
var (
	ErrClaimNotFound      = errors.New("claim not found")
	ErrAlreadyAnswered    = errors.New("claim already answered")
	ErrRateLimitReached   = errors.New("claim limit reached for identity")
	ErrInvalidKind        = errors.New("invalid claim kind")
	ErrDuplicateReference = errors.New("reference number already exists")
)

// MaxFilesPerClaim is the maximum number of attachments accepted at submission.
const MaxFilesPerClaim = 3

// MaxOpenClaimsPerIdentity caps how many claims one identity may have per kind.
const MaxOpenClaimsPerIdentity = 3

// Kind identifies which claimant population a claim belongs to. Each kind is
// stored in its own table.
type Kind string

const (
	KindCitizen      Kind = "citizen"
	KindCompany      Kind = "company"
	KindOrganization Kind = "organization"
)

// Kinds lists all claim kinds in a stable order, used by the retention jobs.
var Kinds = []Kind{KindCitizen, KindCompany, KindOrganization}

// IsValid checks if the kind is one of the supported enum values.
func (k Kind) IsValid() bool {
	switch k {
	case KindCitizen, KindCompany, KindOrganization:
		return true
	}
	return false
}

// Label returns the human-readable claim-type label used in notifications.
func (k Kind) Label() string {
	switch k {
	case KindCitizen:
		return "Citizen claim"
	case KindCompany:
		return "Company claim"
	case KindOrganization:
		return "Organization claim"
	}
	return string(k)
}

// Status is the lifecycle state of a claim. Transitions only move forward:
// pending -> answered -> archived, or pending -> archived.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAnswered Status = "answered"
	StatusArchived Status = "archived"
)

// IsValid checks if the status is one of the supported enum values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAnswered, StatusArchived:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is a forward
// transition. Status never reverts.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusAnswered || next == StatusArchived
	case StatusAnswered:
		return next == StatusArchived
	}
	return false
}

// Claim represents a submitted claim of any kind. The identity field holds
// the citizen NIN or the company/organization register number depending on
// the kind; it drives the per-identity submission cap.
type Claim struct {
	ID              string
	Kind            Kind
	ReferenceNumber string
	Identity        string
	Email           string
	DisplayName     string
	Language        string
	Content         string
	Files           []string
	Status          Status
	Answer          *string
	AnsweredAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

// Answered reports whether the claim carries an answer. Answer and AnsweredAt
// are always set together.
func (c *Claim) Answered() bool {
	return c.Answer != nil && c.AnsweredAt != nil
}
