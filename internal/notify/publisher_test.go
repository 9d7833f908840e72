package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/guichethq/guichet/internal/claim"
)

func queuedClaim() *claim.Claim {
	answer := "Une équipe interviendra sous 48h."
	answeredAt := time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC)
	return &claim.Claim{
		ID:              "clm_8f2a1c",
		Kind:            claim.KindCitizen,
		ReferenceNumber: "CIT-20260314-X7K2M9",
		Identity:        "123456789012",
		Email:           "amina.b@example.org",
		DisplayName:     "Amina Benali",
		Language:        "fr",
		Content:         "Le lampadaire devant le 12 rue des Oliviers est cassé.",
		Status:          claim.StatusAnswered,
		Answer:          &answer,
		AnsweredAt:      &answeredAt,
	}
}

func TestMessageFor_CarriesStoredLanguage(t *testing.T) {
	c := queuedClaim()

	for _, lang := range []string{"fr", "ar", "en"} {
		c.Language = lang
		msg := messageFor(EventSubmitted, c, c.Content)
		assert.Equal(t, lang, msg.Language)
	}
}

func TestMessageFor_SubmittedFields(t *testing.T) {
	c := queuedClaim()

	msg := messageFor(EventSubmitted, c, c.Content)

	assert.Equal(t, EventSubmitted, msg.Event)
	assert.Equal(t, "citizen", msg.Kind)
	assert.Equal(t, c.Kind.Label(), msg.KindLabel)
	assert.Equal(t, "amina.b@example.org", msg.Email)
	assert.Equal(t, "Amina Benali", msg.DisplayName)
	assert.Equal(t, "fr", msg.Language)
	assert.Equal(t, "CIT-20260314-X7K2M9", msg.ReferenceNumber)
	assert.Equal(t, c.Content, msg.Body)
}

func TestMessageFor_AnsweredBody(t *testing.T) {
	c := queuedClaim()

	msg := messageFor(EventAnswered, c, *c.Answer)

	assert.Equal(t, EventAnswered, msg.Event)
	assert.Equal(t, "fr", msg.Language)
	assert.Equal(t, "Une équipe interviendra sous 48h.", msg.Body)
}
