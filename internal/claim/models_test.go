package claim_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/guichethq/guichet/internal/claim"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    claim.Status
		to      claim.Status
		allowed bool
	}{
		{claim.StatusPending, claim.StatusAnswered, true},
		{claim.StatusPending, claim.StatusArchived, true},
		{claim.StatusPending, claim.StatusPending, false},
		{claim.StatusAnswered, claim.StatusArchived, true},
		{claim.StatusAnswered, claim.StatusPending, false},
		{claim.StatusAnswered, claim.StatusAnswered, false},
		{claim.StatusArchived, claim.StatusPending, false},
		{claim.StatusArchived, claim.StatusAnswered, false},
		{claim.StatusArchived, claim.StatusArchived, false},
		{claim.Status("deleted"), claim.StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

// Applying random transition attempts from pending must never move a status
// backward: once answered, pending is unreachable; once archived, the status
// is terminal.
func TestStatus_RandomSequencesOnlyMoveForward(t *testing.T) {
	order := map[claim.Status]int{
		claim.StatusPending:  0,
		claim.StatusAnswered: 1,
		claim.StatusArchived: 2,
	}
	all := []claim.Status{claim.StatusPending, claim.StatusAnswered, claim.StatusArchived}
	rng := rand.New(rand.NewSource(42))

	for seq := 0; seq < 100; seq++ {
		current := claim.StatusPending
		for step := 0; step < 10; step++ {
			next := all[rng.Intn(len(all))]
			if !current.CanTransitionTo(next) {
				continue
			}
			assert.Greater(t, order[next], order[current],
				"transition %s -> %s accepted but moves backward", current, next)
			current = next
		}
		assert.True(t, claim.StatusArchived == current || current.CanTransitionTo(claim.StatusArchived),
			"status %s is stuck short of archived", current)
	}
}

func TestStatus_IsValid(t *testing.T) {
	assert.True(t, claim.StatusPending.IsValid())
	assert.True(t, claim.StatusAnswered.IsValid())
	assert.True(t, claim.StatusArchived.IsValid())
	assert.False(t, claim.Status("").IsValid())
	assert.False(t, claim.Status("open").IsValid())
}
