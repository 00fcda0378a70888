package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivestarter/governance/internal/adapters/repository/jsonfile"
	"github.com/hivestarter/governance/internal/core/domain"
	"github.com/hivestarter/governance/internal/core/ports"
)

type fakeNotifier struct {
	notifications []ports.Notification
}

func (n *fakeNotifier) Notify(t ports.Notification) {
	n.notifications = append(n.notifications, t)
}

func newTestService(t *testing.T) (ports.GovernanceService, *jsonfile.Store, *fakeNotifier) {
	t.Helper()

	store := jsonfile.NewStore(filepath.Join(t.TempDir(), "governance.json"))
	notifier := &fakeNotifier{}
	svc := NewGovernanceService(store, store, store, store, notifier)
	return svc, store, notifier
}

func seedOwner(t *testing.T, store *jsonfile.Store, projectID, username string) {
	t.Helper()
	require.NoError(t, store.SetProjectOwner(context.Background(), projectID, username))
}

func seedTokens(t *testing.T, store *jsonfile.Store, projectID, username string, balance int64) {
	t.Helper()
	require.NoError(t, store.SetGovernanceTokens(context.Background(), projectID, username, balance))
}

func validInput(projectID string) ports.CreateProposalInput {
	return ports.CreateProposalInput{
		ProjectID:   projectID,
		Title:       "Fund the next milestone",
		Description: "Decide whether the project should release milestone funds now.",
		Options:     []string{"Yes", "No"},
		EndDate:     time.Now().Add(7 * 24 * time.Hour),
	}
}

func TestCreateProposal(t *testing.T) {
	svc, store, notifier := newTestService(t)
	ctx := context.Background()
	seedOwner(t, store, "project-1", "alice")

	proposal, err := svc.CreateProposal(ctx, "alice", validInput("project-1"))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, proposal.ID)
	assert.Equal(t, domain.ProposalStatusActive, proposal.Status)
	assert.Equal(t, "alice", proposal.CreatorID)
	assert.Empty(t, proposal.Results)
	assert.False(t, proposal.StartDate.IsZero())

	stored, err := store.GetByID(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, proposal.Title, stored.Title)

	require.NotEmpty(t, notifier.notifications)
	assert.Equal(t, ports.SeverityInfo, notifier.notifications[0].Severity)
}

func TestCreateProposalValidation(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	seedOwner(t, store, "project-1", "alice")

	tests := []struct {
		name   string
		mutate func(*ports.CreateProposalInput)
	}{
		{"short title", func(in *ports.CreateProposalInput) { in.Title = "Hi" }},
		{"short description", func(in *ports.CreateProposalInput) { in.Description = "too short" }},
		{"single option", func(in *ports.CreateProposalInput) { in.Options = []string{"Yes"} }},
		{"duplicate options", func(in *ports.CreateProposalInput) { in.Options = []string{"Yes", "Yes"} }},
		{"blank options only", func(in *ports.CreateProposalInput) { in.Options = []string{"Yes", "  "} }},
		{"end date in the past", func(in *ports.CreateProposalInput) { in.EndDate = time.Now().Add(-time.Hour) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput("project-1")
			tt.mutate(&input)

			_, err := svc.CreateProposal(ctx, "alice", input)

			var validationErr *domain.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}

	proposals, err := store.ListByProject(ctx, "project-1")
	require.NoError(t, err)
	assert.Empty(t, proposals, "invalid input must not persist a proposal")
}

func TestCreateProposalRequiresAuth(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateProposal(context.Background(), "", validInput("project-1"))
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestCreateProposalRequiresOwnership(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateProposal(context.Background(), "mallory", validInput("project-1"))
	assert.ErrorIs(t, err, domain.ErrNotProjectOwner)
}

func createProposal(t *testing.T, svc ports.GovernanceService, store *jsonfile.Store, projectID string) *domain.Proposal {
	t.Helper()
	seedOwner(t, store, projectID, "owner")
	proposal, err := svc.CreateProposal(context.Background(), "owner", validInput(projectID))
	require.NoError(t, err)
	return proposal
}

func TestCastVoteAndTally(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	proposal := createProposal(t, svc, store, "project-1")

	seedTokens(t, store, "project-1", "alice", 40)
	seedTokens(t, store, "project-1", "bob", 60)

	require.NoError(t, svc.CastVote(ctx, "alice", ports.CastVoteInput{ProposalID: proposal.ID, Option: "Yes"}))
	require.NoError(t, svc.CastVote(ctx, "bob", ports.CastVoteInput{ProposalID: proposal.ID, Option: "No"}))

	results, err := svc.Results(ctx, proposal.ID.String())
	require.NoError(t, err)

	assert.Equal(t, 2, results.Voters)
	assert.Equal(t, domain.OptionResult{Count: 40, Percentage: 40}, results.Options["Yes"])
	assert.Equal(t, domain.OptionResult{Count: 60, Percentage: 60}, results.Options["No"])

	stored, err := store.GetByID(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"Yes": 40, "No": 60}, stored.Results)
}

func TestCastVoteIdempotent(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	proposal := createProposal(t, svc, store, "project-1")
	seedTokens(t, store, "project-1", "alice", 25)

	input := ports.CastVoteInput{ProposalID: proposal.ID, Option: "Yes"}
	require.NoError(t, svc.CastVote(ctx, "alice", input))
	require.NoError(t, svc.CastVote(ctx, "alice", input))

	votes, err := store.ListByProposal(ctx, proposal.ID)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, "Yes", votes[0].Option)

	stored, err := store.GetByID(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"Yes": 25}, stored.Results)
}

func TestCastVoteReplacesPrior(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	proposal := createProposal(t, svc, store, "project-1")
	seedTokens(t, store, "project-1", "alice", 40)

	require.NoError(t, svc.CastVote(ctx, "alice", ports.CastVoteInput{ProposalID: proposal.ID, Option: "Yes"}))
	require.NoError(t, svc.CastVote(ctx, "alice", ports.CastVoteInput{ProposalID: proposal.ID, Option: "No"}))

	votes, err := store.ListByProposal(ctx, proposal.ID)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, "No", votes[0].Option)

	results, err := svc.Results(ctx, proposal.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.OptionResult{Count: 0, Percentage: 0}, results.Options["Yes"])
	assert.Equal(t, domain.OptionResult{Count: 40, Percentage: 100}, results.Options["No"])
}

func TestCastVoteClosedForVoting(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	expired := &domain.Proposal{
		ID:          uuid.New(),
		ProjectID:   "project-1",
		Title:       "Closed proposal",
		Description: "A proposal whose voting window has already lapsed.",
		Options:     []string{"Yes", "No"},
		StartDate:   time.Now().Add(-48 * time.Hour),
		EndDate:     time.Now().Add(-24 * time.Hour),
		CreatorID:   "owner",
		Status:      domain.ProposalStatusActive,
	}
	require.NoError(t, store.Save(ctx, expired))
	seedTokens(t, store, "project-1", "alice", 10)

	err := svc.CastVote(ctx, "alice", ports.CastVoteInput{ProposalID: expired.ID, Option: "Yes"})
	assert.ErrorIs(t, err, domain.ErrClosedForVoting)
}

func TestCastVoteNotEligible(t *testing.T) {
	svc, store, _ := newTestService(t)
	proposal := createProposal(t, svc, store, "project-1")

	err := svc.CastVote(context.Background(), "alice", ports.CastVoteInput{ProposalID: proposal.ID, Option: "Yes"})
	assert.ErrorIs(t, err, domain.ErrNotEligible)
}

func TestCastVoteInvalidOption(t *testing.T) {
	svc, store, _ := newTestService(t)
	proposal := createProposal(t, svc, store, "project-1")
	seedTokens(t, store, "project-1", "alice", 10)

	err := svc.CastVote(context.Background(), "alice", ports.CastVoteInput{ProposalID: proposal.ID, Option: "Maybe"})
	assert.ErrorIs(t, err, domain.ErrInvalidOption)
}

func TestCastVoteRequiresAuth(t *testing.T) {
	svc, store, _ := newTestService(t)
	proposal := createProposal(t, svc, store, "project-1")

	err := svc.CastVote(context.Background(), "", ports.CastVoteInput{ProposalID: proposal.ID, Option: "Yes"})
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestCastVoteUnknownProposal(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.CastVote(context.Background(), "alice", ports.CastVoteInput{ProposalID: uuid.New(), Option: "Yes"})
	assert.ErrorIs(t, err, domain.ErrProposalNotFound)
}

func TestListProposalsStateFilter(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	seedOwner(t, store, "project-1", "owner")

	active, err := svc.CreateProposal(ctx, "owner", validInput("project-1"))
	require.NoError(t, err)

	expired := &domain.Proposal{
		ID:          uuid.New(),
		ProjectID:   "project-1",
		Title:       "Old proposal",
		Description: "A proposal whose voting window has already lapsed.",
		Options:     []string{"Yes", "No"},
		StartDate:   time.Now().Add(-48 * time.Hour),
		EndDate:     time.Now().Add(-24 * time.Hour),
		CreatorID:   "owner",
		Status:      domain.ProposalStatusActive,
	}
	require.NoError(t, store.Save(ctx, expired))

	activeList, err := svc.ListProposals(ctx, ports.ListProposalsInput{ProjectID: "project-1", State: "active"})
	require.NoError(t, err)
	require.Len(t, activeList, 1)
	assert.Equal(t, active.ID, activeList[0].ID)

	completedList, err := svc.ListProposals(ctx, ports.ListProposalsInput{ProjectID: "project-1", State: "completed"})
	require.NoError(t, err)
	require.Len(t, completedList, 1)
	assert.Equal(t, expired.ID, completedList[0].ID)

	all, err := svc.ListProposals(ctx, ports.ListProposalsInput{ProjectID: "project-1"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Most recent first.
	assert.Equal(t, active.ID, all[0].ID)

	_, err = svc.ListProposals(ctx, ports.ListProposalsInput{ProjectID: "project-1", State: "bogus"})
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestUserVotes(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	proposal := createProposal(t, svc, store, "project-1")
	seedTokens(t, store, "project-1", "alice", 15)

	require.NoError(t, svc.CastVote(ctx, "alice", ports.CastVoteInput{ProposalID: proposal.ID, Option: "No"}))

	votes, err := svc.UserVotes(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{proposal.ID.String(): "No"}, votes)

	_, err = svc.UserVotes(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestResultsUnknownProposal(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Results(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrProposalNotFound)

	_, err = svc.Results(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrInvalidProposalID)
}
