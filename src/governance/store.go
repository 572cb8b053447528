package governance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stake-plus/groupgov/src/types"
)

// Store is the durable record of proposals and ballots.
type Store interface {
	CreateProposal(ctx context.Context, p *types.Proposal) error
	GetProposal(ctx context.Context, id string) (*types.Proposal, error)

	// UpdateStatus flips a proposal from one status to another and
	// reports whether this caller performed the flip. Concurrent
	// evaluators race on it; only the winner may run side effects.
	UpdateStatus(ctx context.Context, id, from, to string) (bool, error)

	SetLastReminder(ctx context.Context, id string, at time.Time) error

	// PutBallot upserts the ballot keyed on (proposal, voter),
	// overwriting any prior choice.
	PutBallot(ctx context.Context, b *types.Ballot) error
	ListBallots(ctx context.Context, proposalID string) ([]types.Ballot, error)

	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]types.Proposal, error)
	ListPendingByGroup(ctx context.Context, groupID string) ([]types.Proposal, error)
}

// SQLStore implements Store on gorm/MySQL.
type SQLStore struct {
	db *gorm.DB
}

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) CreateProposal(ctx context.Context, p *types.Proposal) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("%w: create proposal: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *SQLStore) GetProposal(ctx context.Context, id string) (*types.Proposal, error) {
	var p types.Proposal
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: get proposal: %v", ErrStoreUnavailable, err)
	}
	return &p, nil
}

func (s *SQLStore) UpdateStatus(ctx context.Context, id, from, to string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&types.Proposal{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, fmt.Errorf("%w: update status: %v", ErrStoreUnavailable, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *SQLStore) SetLastReminder(ctx context.Context, id string, at time.Time) error {
	err := s.db.WithContext(ctx).Model(&types.Proposal{}).
		Where("id = ?", id).
		Update("last_reminder_at", at).Error
	if err != nil {
		return fmt.Errorf("%w: set last reminder: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *SQLStore) PutBallot(ctx context.Context, b *types.Ballot) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "proposal_id"}, {Name: "voter_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"choice", "cast_at"}),
	}).Create(b).Error
	if err != nil {
		return fmt.Errorf("%w: put ballot: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *SQLStore) ListBallots(ctx context.Context, proposalID string) ([]types.Ballot, error) {
	var ballots []types.Ballot
	err := s.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Find(&ballots).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list ballots: %v", ErrStoreUnavailable, err)
	}
	return ballots, nil
}

func (s *SQLStore) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]types.Proposal, error) {
	var stale []types.Proposal
	err := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", types.StatusPending, cutoff).
		Find(&stale).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list pending: %v", ErrStoreUnavailable, err)
	}
	return stale, nil
}

func (s *SQLStore) ListPendingByGroup(ctx context.Context, groupID string) ([]types.Proposal, error) {
	var open []types.Proposal
	err := s.db.WithContext(ctx).
		Where("group_id = ? AND status = ?", groupID, types.StatusPending).
		Order("created_at").
		Find(&open).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list pending by group: %v", ErrStoreUnavailable, err)
	}
	return open, nil
}
