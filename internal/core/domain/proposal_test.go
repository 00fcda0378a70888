package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveState(t *testing.T) {
	now := time.Now()
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	tests := []struct {
		name    string
		status  ProposalStatus
		endDate time.Time
		want    EffectiveState
	}{
		{"active within window", ProposalStatusActive, future, StateActive},
		{"active past end date reads as expired", ProposalStatusActive, past, StateExpired},
		{"active ending exactly now reads as expired", ProposalStatusActive, now, StateExpired},
		{"completed stays completed", ProposalStatusCompleted, past, StateCompleted},
		{"completed before end date stays completed", ProposalStatusCompleted, future, StateCompleted},
		{"pending stays pending", ProposalStatusPending, future, StatePending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Proposal{Status: tt.status, EndDate: tt.endDate}
			assert.Equal(t, tt.want, p.EffectiveState(now))
		})
	}
}

func TestAcceptsVotes(t *testing.T) {
	now := time.Now()

	active := &Proposal{Status: ProposalStatusActive, EndDate: now.Add(time.Hour)}
	assert.True(t, active.AcceptsVotes(now))

	expired := &Proposal{Status: ProposalStatusActive, EndDate: now.Add(-time.Hour)}
	assert.False(t, expired.AcceptsVotes(now))

	pending := &Proposal{Status: ProposalStatusPending, EndDate: now.Add(time.Hour)}
	assert.False(t, pending.AcceptsVotes(now))
}

func TestHasOption(t *testing.T) {
	p := &Proposal{Options: []string{"Yes", "No"}}

	assert.True(t, p.HasOption("Yes"))
	assert.False(t, p.HasOption("Maybe"))
	assert.False(t, p.HasOption("yes"))
}
