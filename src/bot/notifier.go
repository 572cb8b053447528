package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/stake-plus/groupgov/src/moderation"
	"github.com/stake-plus/groupgov/src/types"
)

// SettingGovernanceChannel names the per-group setting holding the
// channel proposal announcements and outcomes go to. Without it,
// messages fall back to the proposer's DMs.
const SettingGovernanceChannel = "governance_channel"

// Notifier delivers governance messages over Discord. Outcome messages
// say only pass/fail/expired; ballots and tallies are never included.
type Notifier struct {
	session  *discordgo.Session
	settings *moderation.Settings
}

func NewNotifier(session *discordgo.Session, settings *moderation.Settings) *Notifier {
	return &Notifier{session: session, settings: settings}
}

func (n *Notifier) Announce(ctx context.Context, p *types.Proposal, voters []string) error {
	text := fmt.Sprintf(
		"New proposal `%s` by <@%s>: %s\nVote with `/vote %s yes|no` — DMs work and keep your ballot secret.",
		p.ID, p.ProposerID, describe(p), p.ID,
	)
	if err := n.toChannel(ctx, p.GroupID, text); err != nil {
		log.Printf("bot: announce channel %s: %v", p.ID, err)
	}
	var failed []string
	for _, id := range voters {
		if id == p.ProposerID {
			continue
		}
		if err := n.dm(id, text); err != nil {
			failed = append(failed, id)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("announce %s: could not DM %s", p.ID, strings.Join(failed, ", "))
	}
	return nil
}

func (n *Notifier) Remind(ctx context.Context, p *types.Proposal, voters []string) error {
	text := fmt.Sprintf(
		"Reminder: proposal `%s` (%s) is still waiting on your ballot. `/vote %s yes|no`",
		p.ID, describe(p), p.ID,
	)
	var failed []string
	for _, id := range voters {
		if err := n.dm(id, text); err != nil {
			failed = append(failed, id)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("remind %s: could not DM %s", p.ID, strings.Join(failed, ", "))
	}
	return nil
}

func (n *Notifier) Outcome(ctx context.Context, p *types.Proposal, status string) error {
	var text string
	switch status {
	case types.StatusPassed:
		text = fmt.Sprintf("Proposal `%s` passed and was applied: %s", p.ID, describe(p))
	case types.StatusRejected:
		text = fmt.Sprintf("Proposal `%s` was rejected: %s", p.ID, describe(p))
	case types.StatusExpired:
		text = fmt.Sprintf("Proposal `%s` expired after 30 days without a result: %s", p.ID, describe(p))
	default:
		text = fmt.Sprintf("Proposal `%s` is now %s.", p.ID, status)
	}
	if err := n.toChannel(ctx, p.GroupID, text); err == nil {
		return nil
	}
	return n.dm(p.ProposerID, text)
}

func (n *Notifier) toChannel(ctx context.Context, groupID, text string) error {
	channelID, err := n.settings.Get(ctx, groupID, SettingGovernanceChannel)
	if err != nil {
		return err
	}
	if channelID == "" {
		return fmt.Errorf("no governance channel configured for %s", groupID)
	}
	_, err = n.session.ChannelMessageSend(channelID, text)
	return err
}

func (n *Notifier) dm(userID, text string) error {
	ch, err := n.session.UserChannelCreate(userID)
	if err != nil {
		return err
	}
	_, err = n.session.ChannelMessageSend(ch.ID, text)
	return err
}

func describe(p *types.Proposal) string {
	switch p.Category {
	case types.CategoryConfig:
		return fmt.Sprintf("set `%s` to `%s`", p.Target, p.Value)
	case types.CategoryBlacklistAdd:
		return fmt.Sprintf("add `%s` to the blacklist", p.Target)
	case types.CategoryBlacklistRemove:
		return fmt.Sprintf("remove `%s` from the blacklist", p.Target)
	case types.CategorySuggestionStatus:
		return fmt.Sprintf("close suggestion #%s", p.Target)
	case types.CategoryReportStatus:
		return fmt.Sprintf("close report #%s", p.Target)
	}
	return fmt.Sprintf("%s %s", p.Category, p.Target)
}
