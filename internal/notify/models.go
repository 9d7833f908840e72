// Package notify provides claimant email notifications: queue publishing on
// the API side, and rendering plus SMTP delivery on the worker side.
package notify

// Event identifies which lifecycle event a notification announces.
type Event string

const (
	// EventSubmitted is sent right after a claim is created.
	EventSubmitted Event = "submitted"
	// EventAnswered is sent when municipal staff answer a claim.
	EventAnswered Event = "answered"
)

// Message is the queued notification payload. It carries everything the
// worker needs to render and send the email without reading the claim back:
// the claim may be answered, archived, or even purged by the time the
// message is delivered.
type Message struct {
	Event           Event  `json:"event"`
	Kind            string `json:"kind"`
	KindLabel       string `json:"kind_label"`
	Email           string `json:"email"`
	DisplayName     string `json:"display_name"`
	Language        string `json:"language"`
	ReferenceNumber string `json:"reference_number"`
	// Body is the claim content for EventSubmitted and the answer text for
	// EventAnswered.
	Body string `json:"body"`
}

// Email is a rendered message ready for transport.
type Email struct {
	To      string
	ToName  string
	Subject string
	Body    string
}
