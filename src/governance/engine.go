package governance

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/stake-plus/groupgov/src/types"
)

const (
	// ExpiryHorizon is how long a proposal may stay pending before it
	// expires regardless of voting activity.
	ExpiryHorizon = 30 * 24 * time.Hour

	// ReminderCooldown is the minimum interval between non-voter pings
	// for one proposal.
	ReminderCooldown = 24 * time.Hour

	// PassThreshold is the weighted yes-score needed to pass. An exact
	// 50.0 passes; with two equal-weight admins voting oppositely the
	// proposal goes through.
	PassThreshold = 50.0
)

// Engine runs the proposal lifecycle: creation, ballot casting,
// consensus evaluation, reminders and cancellation.
type Engine struct {
	store    Store
	roster   RosterProvider
	executor Executor
	notifier Notifier
	now      func() time.Time
}

func NewEngine(store Store, roster RosterProvider, executor Executor, notifier Notifier) *Engine {
	return &Engine{
		store:    store,
		roster:   roster,
		executor: executor,
		notifier: notifier,
		now:      time.Now,
	}
}

// Propose creates a pending proposal, announces it to the current
// roster and records the proposer's implicit yes ballot. The self
// ballot runs the full cast path, evaluation included, but does not
// re-notify.
func (e *Engine) Propose(ctx context.Context, groupID, proposerID, category, target, value string) (string, error) {
	switch category {
	case types.CategoryConfig, types.CategoryBlacklistAdd, types.CategoryBlacklistRemove,
		types.CategorySuggestionStatus, types.CategoryReportStatus:
	default:
		return "", fmt.Errorf("unknown category %q", category)
	}

	p := &types.Proposal{
		ID:         uuid.NewString(),
		GroupID:    groupID,
		ProposerID: proposerID,
		Category:   category,
		Target:     target,
		Value:      value,
		Status:     types.StatusPending,
		CreatedAt:  e.now().UTC(),
	}
	if err := e.store.CreateProposal(ctx, p); err != nil {
		return "", err
	}

	if roster, err := e.roster.Roster(ctx, groupID); err != nil {
		log.Printf("governance: roster for announce %s: %v", p.ID, err)
	} else if err := e.notifier.Announce(ctx, p, sortedEligible(roster)); err != nil {
		log.Printf("governance: announce %s: %v", p.ID, err)
	}

	if err := e.CastBallot(ctx, p.ID, proposerID, types.ChoiceYes); err != nil {
		log.Printf("governance: self ballot %s: %v", p.ID, err)
	}

	return p.ID, nil
}

// CastBallot records or revises one voter's choice on a pending
// proposal and evaluates consensus afterwards. The caller is
// acknowledged as soon as the ballot is durable; outcome broadcasts
// happen as part of evaluation.
func (e *Engine) CastBallot(ctx context.Context, proposalID, voterID, choice string) error {
	if choice != types.ChoiceYes && choice != types.ChoiceNo {
		return fmt.Errorf("invalid choice %q", choice)
	}

	p, err := e.store.GetProposal(ctx, proposalID)
	if err != nil {
		return err
	}
	if p.Status != types.StatusPending {
		return ErrClosed
	}
	if e.now().Sub(p.CreatedAt) > ExpiryHorizon {
		// Staleness noticed on access commits the expiry immediately
		// rather than waiting for the sweep.
		won, err := e.store.UpdateStatus(ctx, proposalID, types.StatusPending, types.StatusExpired)
		if err != nil {
			return err
		}
		if won {
			e.broadcast(ctx, p, types.StatusExpired)
		}
		return ErrExpired
	}

	ballot := &types.Ballot{
		ProposalID: proposalID,
		VoterID:    voterID,
		Choice:     choice,
		CastAt:     e.now().UTC(),
	}
	if err := e.store.PutBallot(ctx, ballot); err != nil {
		return err
	}

	if err := e.evaluate(ctx, p); err != nil {
		// A transient roster or store failure leaves the proposal
		// pending; the next ballot or the sweep retries. The ballot
		// itself is already durable, so the cast still succeeds.
		log.Printf("governance: evaluate %s: %v", proposalID, err)
	}
	return nil
}

// evaluate decides whether the electorate is complete and, if so,
// computes the weighted outcome and closes the proposal. Exactly one
// evaluator wins the status flip; losers no-op.
func (e *Engine) evaluate(ctx context.Context, p *types.Proposal) error {
	roster, err := e.roster.Roster(ctx, p.GroupID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRosterUnavailable, err)
	}
	eligible := roster.Eligible()
	if len(eligible) == 0 {
		return nil
	}

	ballots, err := e.store.ListBallots(ctx, p.ID)
	if err != nil {
		return err
	}
	voted := make(map[string]string, len(ballots))
	for _, b := range ballots {
		if _, ok := eligible[b.VoterID]; ok {
			voted[b.VoterID] = b.Choice
		}
	}

	// Attendance gate: every currently eligible voter must have cast a
	// ballot before any result is declared. A silent admin blocks
	// finality until they vote, leave the roster, or expiry fires.
	if len(voted) < len(eligible) {
		return nil
	}

	table := Weights(roster, p.Category)
	if len(table) == 0 {
		// No weighted electorate for this category yet.
		return nil
	}

	var scoreYes float64
	for id, choice := range voted {
		if choice == types.ChoiceYes {
			scoreYes += table[id]
		}
	}

	outcome := types.StatusRejected
	if scoreYes >= PassThreshold {
		outcome = types.StatusPassed
	}

	won, err := e.store.UpdateStatus(ctx, p.ID, types.StatusPending, outcome)
	if err != nil {
		return err
	}
	if !won {
		return nil
	}

	if outcome == types.StatusPassed {
		if err := e.executor.Execute(ctx, p); err != nil {
			log.Printf("governance: execute %s: %v", p.ID, err)
		}
	}
	e.broadcast(ctx, p, outcome)
	return nil
}

// PingNonvoters DMs every eligible voter who has not yet cast a ballot.
// Proposer-only, throttled to one ping per 24 hours.
func (e *Engine) PingNonvoters(ctx context.Context, proposalID, requesterID string) error {
	p, err := e.store.GetProposal(ctx, proposalID)
	if err != nil {
		return err
	}
	if p.ProposerID != requesterID {
		return ErrForbidden
	}
	if p.Status != types.StatusPending {
		return ErrClosed
	}

	now := e.now()
	if p.LastReminderAt != nil && now.Sub(*p.LastReminderAt) < ReminderCooldown {
		return ErrCooldown
	}

	roster, err := e.roster.Roster(ctx, p.GroupID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRosterUnavailable, err)
	}
	ballots, err := e.store.ListBallots(ctx, proposalID)
	if err != nil {
		return err
	}
	voted := make(map[string]struct{}, len(ballots))
	for _, b := range ballots {
		voted[b.VoterID] = struct{}{}
	}

	var waiting []string
	for id := range roster.Eligible() {
		if _, ok := voted[id]; !ok {
			waiting = append(waiting, id)
		}
	}
	sort.Strings(waiting)

	if err := e.notifier.Remind(ctx, p, waiting); err != nil {
		log.Printf("governance: remind %s: %v", proposalID, err)
	}
	return e.store.SetLastReminder(ctx, proposalID, now.UTC())
}

// Cancel withdraws a pending proposal. Proposer-only; no effect fires.
func (e *Engine) Cancel(ctx context.Context, proposalID, requesterID string) error {
	p, err := e.store.GetProposal(ctx, proposalID)
	if err != nil {
		return err
	}
	if p.ProposerID != requesterID {
		return ErrForbidden
	}
	if p.Status != types.StatusPending {
		return ErrClosed
	}

	won, err := e.store.UpdateStatus(ctx, proposalID, types.StatusPending, types.StatusCancelled)
	if err != nil {
		return err
	}
	if !won {
		return ErrClosed
	}
	return nil
}

// Pending lists a group's open proposals.
func (e *Engine) Pending(ctx context.Context, groupID string) ([]types.Proposal, error) {
	return e.store.ListPendingByGroup(ctx, groupID)
}

func (e *Engine) broadcast(ctx context.Context, p *types.Proposal, status string) {
	if err := e.notifier.Outcome(ctx, p, status); err != nil {
		log.Printf("governance: outcome %s: %v", p.ID, err)
	}
}

func sortedEligible(r Roster) []string {
	ids := make([]string, 0, len(r.AdminIDs)+1)
	for id := range r.Eligible() {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
