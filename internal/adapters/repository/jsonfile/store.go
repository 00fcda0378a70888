// Package jsonfile persists governance state as a single JSON
// document, the server-side analog of the browser-local blobs the web
// client keeps under the same key names.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/hivestarter/governance/internal/core/domain"
	"github.com/hivestarter/governance/internal/core/ports"
)

const schemaVersion = 1

type document struct {
	SchemaVersion int                `json:"schemaVersion"`
	Proposals     []*domain.Proposal `json:"governanceProposals"`
	Votes         []*domain.Vote     `json:"governanceVotes"`
	// username -> owned project ids
	ProjectOwners map[string][]string `json:"userOwnedProjects"`
	// "projectID/username" -> balance
	Tokens map[string]int64 `json:"governanceTokens"`
}

// Store implements the proposal and vote repositories plus the
// platform lookups on top of one JSON file. Every mutation rewrites
// the file under a single lock, so writers are serialized.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Save(ctx context.Context, proposal *domain.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Proposals = append(doc.Proposals, proposal)
	return s.write(doc)
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*domain.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, p := range doc.Proposals {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrProposalNotFound
}

func (s *Store) ListByProject(ctx context.Context, projectID string) ([]*domain.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	var proposals []*domain.Proposal
	for _, p := range doc.Proposals {
		if p.ProjectID == projectID {
			proposals = append(proposals, p)
		}
	}
	sort.Slice(proposals, func(i, j int) bool {
		return proposals[i].StartDate.After(proposals[j].StartDate)
	})
	return proposals, nil
}

func (s *Store) GetAll(ctx context.Context) ([]*domain.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Proposals, nil
}

func (s *Store) UpdateResults(ctx context.Context, id uuid.UUID, results map[string]int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	for _, p := range doc.Proposals {
		if p.ID == id {
			p.Results = results
			return s.write(doc)
		}
	}
	return domain.ErrProposalNotFound
}

// RecordVote drops any prior vote by the same user on the same
// proposal before appending, the same filter-then-push the web client
// applied to its vote blob.
func (s *Store) RecordVote(ctx context.Context, vote *domain.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	kept := doc.Votes[:0]
	for _, v := range doc.Votes {
		if v.UserID == vote.UserID && v.ProposalID == vote.ProposalID {
			continue
		}
		kept = append(kept, v)
	}
	doc.Votes = append(kept, vote)
	return s.write(doc)
}

func (s *Store) ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]*domain.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	var votes []*domain.Vote
	for _, v := range doc.Votes {
		if v.ProposalID == proposalID {
			votes = append(votes, v)
		}
	}
	return votes, nil
}

func (s *Store) VotesForUser(ctx context.Context, userID string) (map[uuid.UUID]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	votes := make(map[uuid.UUID]string)
	for _, v := range doc.Votes {
		if v.UserID == userID {
			votes[v.ProposalID] = v.Option
		}
	}
	return votes, nil
}

func (s *Store) UserOwnsProject(ctx context.Context, projectID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return false, err
	}
	for _, owned := range doc.ProjectOwners[userID] {
		if owned == projectID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) GovernanceTokens(ctx context.Context, projectID, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return 0, err
	}
	return doc.Tokens[tokenKey(projectID, userID)], nil
}

// SetProjectOwner grants ownership of a project, for seeding dev and
// test environments.
func (s *Store) SetProjectOwner(ctx context.Context, projectID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	for _, owned := range doc.ProjectOwners[userID] {
		if owned == projectID {
			return nil
		}
	}
	doc.ProjectOwners[userID] = append(doc.ProjectOwners[userID], projectID)
	return s.write(doc)
}

// SetGovernanceTokens sets a user's token balance for a project.
func (s *Store) SetGovernanceTokens(ctx context.Context, projectID, userID string, balance int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Tokens[tokenKey(projectID, userID)] = balance
	return s.write(doc)
}

func (s *Store) load() (*document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &document{
				SchemaVersion: schemaVersion,
				ProjectOwners: make(map[string][]string),
				Tokens:        make(map[string]int64),
			}, nil
		}
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse store file: %w", err)
	}
	if doc.SchemaVersion != schemaVersion {
		return nil, fmt.Errorf("unsupported store schema version %d", doc.SchemaVersion)
	}
	if doc.ProjectOwners == nil {
		doc.ProjectOwners = make(map[string][]string)
	}
	if doc.Tokens == nil {
		doc.Tokens = make(map[string]int64)
	}
	return &doc, nil
}

func (s *Store) write(doc *document) error {
	doc.SchemaVersion = schemaVersion
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}

func tokenKey(projectID, userID string) string {
	return projectID + "/" + userID
}

var (
	_ ports.ProposalRepository   = (*Store)(nil)
	_ ports.VoteRepository       = (*Store)(nil)
	_ ports.OwnershipChecker     = (*Store)(nil)
	_ ports.TokenBalanceProvider = (*Store)(nil)
)
