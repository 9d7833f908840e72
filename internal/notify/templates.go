package notify

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultLanguage is used when a message carries an unsupported language tag.
const DefaultLanguage = "fr"

// ErrUnknownEvent is returned when a message carries an event the renderer
// does not know.
var ErrUnknownEvent = errors.New("unknown notification event")

// locale holds the subject and body formats for one language. Bodies are
// fmt format strings; see render for the argument order.
type locale struct {
	submittedSubject string
	submittedBody    string
	answeredSubject  string
	answeredBody     string
}

// locales is keyed by lowercase two-letter language tag.
var locales = map[string]locale{
	"fr": {
		submittedSubject: "Votre réclamation %s a bien été reçue",
		submittedBody: "Bonjour %s,\n\n" +
			"Nous avons bien reçu votre réclamation (%s). Votre numéro de référence est %s.\n\n" +
			"Contenu de la réclamation :\n%s\n\n" +
			"Nos services vous répondront dans les meilleurs délais.\n\n" +
			"La municipalité",
		answeredSubject: "Réponse à votre réclamation %s",
		answeredBody: "Bonjour %s,\n\n" +
			"Votre réclamation (%s) portant la référence %s a reçu la réponse suivante :\n\n%s\n\n" +
			"La municipalité",
	},
	"ar": {
		submittedSubject: "تم استلام مطلبكم %s",
		submittedBody: "السيد(ة) %s،\n\n" +
			"لقد تم استلام مطلبكم (%s). الرقم المرجعي الخاص بكم هو %s.\n\n" +
			"محتوى المطلب:\n%s\n\n" +
			"سيتم الرد عليكم في أقرب الآجال.\n\n" +
			"البلدية",
		answeredSubject: "الرد على مطلبكم %s",
		answeredBody: "السيد(ة) %s،\n\n" +
			"مطلبكم (%s) ذو المرجع %s تلقى الرد التالي:\n\n%s\n\n" +
			"البلدية",
	},
	"en": {
		submittedSubject: "Your claim %s has been received",
		submittedBody: "Dear %s,\n\n" +
			"We have received your claim (%s). Your reference number is %s.\n\n" +
			"Claim content:\n%s\n\n" +
			"Our services will get back to you as soon as possible.\n\n" +
			"The municipality",
		answeredSubject: "Answer to your claim %s",
		answeredBody: "Dear %s,\n\n" +
			"Your claim (%s) with reference %s received the following answer:\n\n%s\n\n" +
			"The municipality",
	},
}

// Render builds the localized email for a queued message. The language is
// always the claim's stored language; unsupported tags fall back to
// DefaultLanguage.
func Render(msg *Message) (*Email, error) {
	loc, ok := locales[strings.ToLower(msg.Language)]
	if !ok {
		loc = locales[DefaultLanguage]
	}

	var subject, body string
	switch msg.Event {
	case EventSubmitted:
		subject = fmt.Sprintf(loc.submittedSubject, msg.ReferenceNumber)
		body = fmt.Sprintf(loc.submittedBody, msg.DisplayName, msg.KindLabel, msg.ReferenceNumber, msg.Body)
	case EventAnswered:
		subject = fmt.Sprintf(loc.answeredSubject, msg.ReferenceNumber)
		body = fmt.Sprintf(loc.answeredBody, msg.DisplayName, msg.KindLabel, msg.ReferenceNumber, msg.Body)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, msg.Event)
	}

	return &Email{
		To:      msg.Email,
		ToName:  msg.DisplayName,
		Subject: subject,
		Body:    body,
	}, nil
}

// SupportedLanguages returns the language tags with translations, for the
// metadata endpoint and tests.
func SupportedLanguages() []string {
	return []string{"fr", "ar", "en"}
}
