package data

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/stake-plus/groupgov/src/types"
)

// Events publishes proposal lifecycle events to the shared redis stream
// so other services can follow governance activity. It implements
// governance.Notifier and carries only what the outcome broadcast may
// reveal: never ballots or tallies.
type Events struct {
	rdb *redis.Client
}

func NewEvents(rdb *redis.Client) *Events {
	return &Events{rdb: rdb}
}

func (e *Events) Announce(ctx context.Context, p *types.Proposal, voters []string) error {
	return PublishEvent(ctx, e.rdb, map[string]interface{}{
		"event":    "announced",
		"proposal": p.ID,
		"group":    p.GroupID,
		"category": p.Category,
	})
}

func (e *Events) Remind(ctx context.Context, p *types.Proposal, voters []string) error {
	return PublishEvent(ctx, e.rdb, map[string]interface{}{
		"event":    "reminded",
		"proposal": p.ID,
		"group":    p.GroupID,
	})
}

func (e *Events) Outcome(ctx context.Context, p *types.Proposal, status string) error {
	return PublishEvent(ctx, e.rdb, map[string]interface{}{
		"event":    "closed",
		"proposal": p.ID,
		"group":    p.GroupID,
		"category": p.Category,
		"status":   status,
	})
}
