package claim

import (
	"crypto/rand"
	"fmt"
	"time"
)

// referenceAlphabet excludes ambiguous characters (0/O, 1/I/L) so claimants
// can read a reference number back over the phone.
const referenceAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// referenceSuffixLength is the number of random characters in a reference.
const referenceSuffixLength = 6

// referencePrefix returns the claimant-facing prefix for a claim kind.
func referencePrefix(kind Kind) string {
	switch kind {
	case KindCitizen:
		return "CIT"
	case KindCompany:
		return "COM"
	case KindOrganization:
		return "ORG"
	}
	return "CLM"
}

// NewReferenceNumber generates a claimant-facing reference number such as
// CIT-20260830-K4PQ7M. Uniqueness is enforced by the database; callers retry
// on ErrDuplicateReference.
func NewReferenceNumber(kind Kind, now time.Time) (string, error) {
	suffix := make([]byte, 0, referenceSuffixLength)
	buf := make([]byte, referenceSuffixLength)
	// Rejection sampling keeps the suffix characters uniform: 248 is the
	// largest multiple of len(referenceAlphabet) below 256.
	const limit = 256 - 256%len(referenceAlphabet)
	for len(suffix) < referenceSuffixLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate reference suffix: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			suffix = append(suffix, referenceAlphabet[int(b)%len(referenceAlphabet)])
			if len(suffix) == referenceSuffixLength {
				break
			}
		}
	}
	return fmt.Sprintf("%s-%s-%s", referencePrefix(kind), now.Format("20060102"), suffix), nil
}
