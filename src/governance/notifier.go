package governance

import (
	"context"

	"github.com/stake-plus/groupgov/src/types"
)

// Notifier delivers proposal announcements, reminders and outcomes.
// Delivery is best-effort: the engine logs failures and never lets them
// affect a state transition that already committed. Outcome messages
// carry only the terminal status; per-voter choices and tallies stay
// secret.
type Notifier interface {
	Announce(ctx context.Context, p *types.Proposal, voters []string) error
	Remind(ctx context.Context, p *types.Proposal, voters []string) error
	Outcome(ctx context.Context, p *types.Proposal, status string) error
}

// Executor applies a passed proposal's effect. The engine calls it at
// most once per proposal: only the evaluator that wins the status flip
// from pending reaches it.
type Executor interface {
	Execute(ctx context.Context, p *types.Proposal) error
}

// MultiNotifier fans out to several notifiers and reports the first
// failure after attempting all of them.
type MultiNotifier []Notifier

func (m MultiNotifier) Announce(ctx context.Context, p *types.Proposal, voters []string) error {
	var first error
	for _, n := range m {
		if err := n.Announce(ctx, p, voters); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m MultiNotifier) Remind(ctx context.Context, p *types.Proposal, voters []string) error {
	var first error
	for _, n := range m {
		if err := n.Remind(ctx, p, voters); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m MultiNotifier) Outcome(ctx context.Context, p *types.Proposal, status string) error {
	var first error
	for _, n := range m {
		if err := n.Outcome(ctx, p, status); err != nil && first == nil {
			first = err
		}
	}
	return first
}
