package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProposalStatus is the status stored with a proposal. It is never
// advanced by the passage of time; display and voting eligibility use
// EffectiveState instead.
type ProposalStatus string

const (
	ProposalStatusPending   ProposalStatus = "pending"
	ProposalStatusActive    ProposalStatus = "active"
	ProposalStatusCompleted ProposalStatus = "completed"
)

// EffectiveState is the state a proposal is in once the voting window
// is taken into account.
type EffectiveState string

const (
	StatePending   EffectiveState = "pending"
	StateActive    EffectiveState = "active"
	StateCompleted EffectiveState = "completed"
	StateExpired   EffectiveState = "expired"
)

type Proposal struct {
	ID          uuid.UUID        `json:"id"`
	ProjectID   string           `json:"project_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Options     []string         `json:"options"`
	StartDate   time.Time        `json:"start_date"`
	EndDate     time.Time        `json:"end_date"`
	CreatorID   string           `json:"creator_id"`
	Status      ProposalStatus   `json:"status"`
	Results     map[string]int64 `json:"results,omitempty"`
}

// EffectiveState derives the display state from the stored status and
// the clock. An active proposal whose end date has passed without
// being marked completed reads as expired.
func (p *Proposal) EffectiveState(now time.Time) EffectiveState {
	switch p.Status {
	case ProposalStatusPending:
		return StatePending
	case ProposalStatusCompleted:
		return StateCompleted
	}
	if now.Before(p.EndDate) {
		return StateActive
	}
	return StateExpired
}

// AcceptsVotes reports whether a vote may be cast at the given time.
func (p *Proposal) AcceptsVotes(now time.Time) bool {
	return p.EffectiveState(now) == StateActive
}

// HasOption reports whether opt is one of the proposal's options.
func (p *Proposal) HasOption(opt string) bool {
	for _, o := range p.Options {
		if o == opt {
			return true
		}
	}
	return false
}
