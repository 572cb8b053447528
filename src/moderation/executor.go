package moderation

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stake-plus/groupgov/src/types"
)

// Executor applies passed governance proposals to the moderation
// stores. Each category maps to exactly one effect; the governance
// engine guarantees Execute runs at most once per proposal.
type Executor struct {
	settings  *Settings
	blacklist *Blacklist
	feedback  *Feedback
}

func NewExecutor(settings *Settings, blacklist *Blacklist, feedback *Feedback) *Executor {
	return &Executor{
		settings:  settings,
		blacklist: blacklist,
		feedback:  feedback,
	}
}

func (e *Executor) Execute(ctx context.Context, p *types.Proposal) error {
	switch p.Category {
	case types.CategoryConfig:
		return e.settings.Set(ctx, p.GroupID, p.Target, p.Value)
	case types.CategoryBlacklistAdd:
		return e.blacklist.Upsert(ctx, p.GroupID, p.Target, p.ProposerID)
	case types.CategoryBlacklistRemove:
		return e.blacklist.Delete(ctx, p.GroupID, p.Target)
	case types.CategorySuggestionStatus:
		id, err := strconv.ParseUint(p.Target, 10, 64)
		if err != nil {
			return fmt.Errorf("bad suggestion id %q: %w", p.Target, err)
		}
		return e.feedback.DeleteSuggestion(ctx, id)
	case types.CategoryReportStatus:
		id, err := strconv.ParseUint(p.Target, 10, 64)
		if err != nil {
			return fmt.Errorf("bad report id %q: %w", p.Target, err)
		}
		return e.feedback.DeleteReport(ctx, id)
	}
	return fmt.Errorf("unknown category %q", p.Category)
}
