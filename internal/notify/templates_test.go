package notify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guichethq/guichet/internal/notify"
)

func submittedMessage(language string) *notify.Message {
	return &notify.Message{
		Event:           notify.EventSubmitted,
		Kind:            "citizen",
		KindLabel:       "réclamation citoyenne",
		Email:           "amina.b@example.org",
		DisplayName:     "Amina Benali",
		Language:        language,
		ReferenceNumber: "CIT-20260314-X7K2M9",
		Body:            "Le lampadaire est cassé.",
	}
}

func TestRender_SubmittedFrench(t *testing.T) {
	email, err := notify.Render(submittedMessage("fr"))
	require.NoError(t, err)

	assert.Equal(t, "amina.b@example.org", email.To)
	assert.Equal(t, "Amina Benali", email.ToName)
	assert.Equal(t, "Votre réclamation CIT-20260314-X7K2M9 a bien été reçue", email.Subject)
	assert.Contains(t, email.Body, "Bonjour Amina Benali")
	assert.Contains(t, email.Body, "CIT-20260314-X7K2M9")
	assert.Contains(t, email.Body, "Le lampadaire est cassé.")
}

func TestRender_SubmittedArabic(t *testing.T) {
	email, err := notify.Render(submittedMessage("ar"))
	require.NoError(t, err)

	assert.Contains(t, email.Subject, "تم استلام مطلبكم")
	assert.Contains(t, email.Body, "Amina Benali")
	assert.Contains(t, email.Body, "CIT-20260314-X7K2M9")
}

func TestRender_SubmittedEnglish(t *testing.T) {
	email, err := notify.Render(submittedMessage("en"))
	require.NoError(t, err)

	assert.Equal(t, "Your claim CIT-20260314-X7K2M9 has been received", email.Subject)
	assert.Contains(t, email.Body, "Dear Amina Benali")
}

func TestRender_Answered(t *testing.T) {
	msg := &notify.Message{
		Event:           notify.EventAnswered,
		Kind:            "company",
		KindLabel:       "réclamation d'entreprise",
		Email:           "contact@acme.example",
		DisplayName:     "ACME SARL",
		Language:        "fr",
		ReferenceNumber: "COM-20260314-P4Q8R2",
		Body:            "Une équipe interviendra sous 48h.",
	}

	email, err := notify.Render(msg)
	require.NoError(t, err)

	assert.Equal(t, "Réponse à votre réclamation COM-20260314-P4Q8R2", email.Subject)
	assert.Contains(t, email.Body, "Une équipe interviendra sous 48h.")
	assert.Contains(t, email.Body, "COM-20260314-P4Q8R2")
}

func TestRender_FallsBackToFrench(t *testing.T) {
	tests := []string{"", "de", "es-MX", "unknown"}

	for _, lang := range tests {
		t.Run("lang="+lang, func(t *testing.T) {
			email, err := notify.Render(submittedMessage(lang))
			require.NoError(t, err)
			assert.Contains(t, email.Subject, "Votre réclamation")
		})
	}
}

func TestRender_CaseInsensitiveLanguage(t *testing.T) {
	email, err := notify.Render(submittedMessage("EN"))
	require.NoError(t, err)
	assert.Contains(t, email.Subject, "has been received")
}

func TestRender_UnknownEvent(t *testing.T) {
	msg := submittedMessage("fr")
	msg.Event = notify.Event("deleted")

	_, err := notify.Render(msg)
	assert.ErrorIs(t, err, notify.ErrUnknownEvent)
}

func TestSupportedLanguages(t *testing.T) {
	assert.Equal(t, []string{"fr", "ar", "en"}, notify.SupportedLanguages())
}
