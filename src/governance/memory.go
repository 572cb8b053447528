package governance

import (
	"context"
	"sync"
	"time"

	"github.com/stake-plus/groupgov/src/types"
)

// MemoryStore is an in-memory implementation of Store for tests and
// single-process deployments.
type MemoryStore struct {
	mu        sync.Mutex
	proposals map[string]types.Proposal
	ballots   map[string]map[string]types.Ballot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		proposals: make(map[string]types.Proposal),
		ballots:   make(map[string]map[string]types.Ballot),
	}
}

func (s *MemoryStore) CreateProposal(ctx context.Context, p *types.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proposals[p.ID] = *p
	return nil
}

func (s *MemoryStore) GetProposal(ctx context.Context, id string) (*types.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := p
	return &copy, nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id, from, to string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	s.proposals[id] = p
	return true, nil
}

func (s *MemoryStore) SetLastReminder(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	if !ok {
		return ErrNotFound
	}
	p.LastReminderAt = &at
	s.proposals[id] = p
	return nil
}

func (s *MemoryStore) PutBallot(ctx context.Context, b *types.Ballot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.ballots[b.ProposalID]
	if !ok {
		rows = make(map[string]types.Ballot)
		s.ballots[b.ProposalID] = rows
	}
	rows[b.VoterID] = *b
	return nil
}

func (s *MemoryStore) ListBallots(ctx context.Context, proposalID string) ([]types.Ballot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.ballots[proposalID]
	out := make([]types.Ballot, 0, len(rows))
	for _, b := range rows {
		out = append(out, b)
	}
	return out, nil
}

func (s *MemoryStore) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]types.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var stale []types.Proposal
	for _, p := range s.proposals {
		if p.Status == types.StatusPending && p.CreatedAt.Before(cutoff) {
			stale = append(stale, p)
		}
	}
	return stale, nil
}

func (s *MemoryStore) ListPendingByGroup(ctx context.Context, groupID string) ([]types.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var open []types.Proposal
	for _, p := range s.proposals {
		if p.Status == types.StatusPending && p.GroupID == groupID {
			open = append(open, p)
		}
	}
	return open, nil
}
