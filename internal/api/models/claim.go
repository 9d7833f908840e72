package models

// Claim is the admin-facing representation of a submitted claim.
type Claim struct {
	ID              string     `json:"id"`
	Kind            string     `json:"kind"`
	ReferenceNumber string     `json:"referenceNumber"`
	Identity        string     `json:"identity"`
	Email           string     `json:"email"`
	DisplayName     string     `json:"displayName"`
	Language        string     `json:"language"`
	Content         string     `json:"content"`
	Files           []string   `json:"files,omitempty"`
	Status          string     `json:"status"`
	Answer          *string    `json:"answer,omitempty"`
	AnsweredAt      *Timestamp `json:"answeredAt,omitempty"`
	CreatedAt       Timestamp  `json:"createdAt"`
	UpdatedAt       Timestamp  `json:"updatedAt"`
}

// PagedClaims is a paginated list of claims.
type PagedClaims struct {
	Items []Claim           `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// ClaimSubmitted is the public response to a successful submission. Only the
// reference number is claimant-facing; internal IDs stay private.
type ClaimSubmitted struct {
	Success         bool   `json:"success"`
	ReferenceNumber string `json:"reference_number"`
	Status          string `json:"status"`
}

// AnswerRequest is the admin request body for answering a claim.
type AnswerRequest struct {
	Answer string `json:"answer"`
}

// JobReport holds per-kind row counts from a retention job run.
type JobReport struct {
	Job    string         `json:"job"`
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}
