package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/stake-plus/groupgov/src/data"
	"github.com/stake-plus/groupgov/src/governance"
	"github.com/stake-plus/groupgov/src/moderation"
	"github.com/stake-plus/groupgov/src/types"
)

const (
	CommandPropose   = "propose"
	CommandVote      = "vote"
	CommandPing      = "ping"
	CommandCancel    = "cancel"
	CommandProposals = "proposals"
	CommandSuggest   = "suggest"
	CommandReport    = "report"
	CommandLink      = "link"
)

var commandDefinitions = map[string]*discordgo.ApplicationCommand{
	CommandPropose: {
		Name:        CommandPropose,
		Description: "Put a group change to an admin vote",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "config",
				Description: "Toggle a group policy setting",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "key",
						Description: "Setting name",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "value",
						Description: "on or off",
						Required:    true,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "on", Value: "on"},
							{Name: "off", Value: "off"},
						},
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "blacklist",
				Description: "Add or remove a blacklisted word",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "action",
						Description: "add or remove",
						Required:    true,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "add", Value: "add"},
							{Name: "remove", Value: "remove"},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "word",
						Description: "The word",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "resolve",
				Description: "Close a suggestion or report",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "kind",
						Description: "suggestion or report",
						Required:    true,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "suggestion", Value: "suggestion"},
							{Name: "report", Value: "report"},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "id",
						Description: "Record id",
						Required:    true,
					},
				},
			},
		},
	},
	CommandVote: {
		Name:        CommandVote,
		Description: "Cast or change your ballot (also works in DM)",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "proposal",
				Description: "Proposal id",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "choice",
				Description: "yes or no",
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "yes", Value: types.ChoiceYes},
					{Name: "no", Value: types.ChoiceNo},
				},
			},
		},
	},
	CommandPing: {
		Name:        CommandPing,
		Description: "Remind voters who have not cast a ballot yet",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "proposal",
				Description: "Proposal id",
				Required:    true,
			},
		},
	},
	CommandCancel: {
		Name:        CommandCancel,
		Description: "Withdraw your own pending proposal",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "proposal",
				Description: "Proposal id",
				Required:    true,
			},
		},
	},
	CommandProposals: {
		Name:        CommandProposals,
		Description: "List this group's open proposals",
	},
	CommandSuggest: {
		Name:        CommandSuggest,
		Description: "Submit a suggestion for the admins",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "text",
				Description: "Your suggestion",
				Required:    true,
			},
		},
	},
	CommandReport: {
		Name:        CommandReport,
		Description: "Report a user to the admins",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "Who to report",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "reason",
				Description: "What happened",
				Required:    true,
			},
		},
	},
	CommandLink: {
		Name:        CommandLink,
		Description: "Confirm a web login code",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "code",
				Description: "The code shown on the website",
				Required:    true,
			},
		},
	},
}

var defaultCommandOrder = []string{
	CommandPropose,
	CommandVote,
	CommandPing,
	CommandCancel,
	CommandProposals,
	CommandSuggest,
	CommandReport,
	CommandLink,
}

// RegisterSlashCommands registers the requested slash commands for a
// guild. When no command names are provided, all known commands are
// registered.
func RegisterSlashCommands(s *discordgo.Session, guildID string, names ...string) error {
	if guildID == "" {
		return fmt.Errorf("bot: guildID is required to register slash commands")
	}

	if len(names) == 0 {
		names = defaultCommandOrder
	}

	var failures []string
	for _, name := range names {
		definition, ok := commandDefinitions[name]
		if !ok {
			log.Printf("bot: unknown slash command %q", name)
			continue
		}
		if _, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, definition); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			log.Printf("bot: failed to register command %q: %v", name, err)
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("bot: slash command registration errors: %s", strings.Join(failures, "; "))
	}
	return nil
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	ctx := context.Background()
	cmd := i.ApplicationCommandData()

	switch cmd.Name {
	case CommandPropose:
		b.handlePropose(ctx, s, i, cmd)
	case CommandVote:
		b.handleVote(ctx, s, i, cmd)
	case CommandPing:
		b.handlePing(ctx, s, i, cmd)
	case CommandCancel:
		b.handleCancel(ctx, s, i, cmd)
	case CommandProposals:
		b.handleProposals(ctx, s, i)
	case CommandSuggest:
		b.handleSuggest(ctx, s, i, cmd)
	case CommandReport:
		b.handleReport(ctx, s, i, cmd)
	case CommandLink:
		b.handleLink(ctx, s, i, cmd)
	}
}

func (b *Bot) handlePropose(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, cmd discordgo.ApplicationCommandInteractionData) {
	if i.GuildID == "" {
		respond(s, i, "Proposals are created from inside the group.")
		return
	}
	user := interactionUser(i)
	isOwner, isAdmin, err := b.requesterRole(i, user.ID)
	if err != nil {
		respond(s, i, "Could not verify your role, try again.")
		return
	}
	if !isAdmin {
		respond(s, i, "Only administrators can create proposals.")
		return
	}

	sub := cmd.Options[0]
	opts := optionMap(sub.Options)

	var category, target, value string
	switch sub.Name {
	case "config":
		key := opts["key"].StringValue()
		if moderation.IsSensitive(key) && !isOwner {
			respond(s, i, fmt.Sprintf("Only the group owner can propose changes to `%s`.", key))
			return
		}
		category = types.CategoryConfig
		target = key
		value = opts["value"].StringValue()
	case "blacklist":
		if opts["action"].StringValue() == "add" {
			category = types.CategoryBlacklistAdd
		} else {
			category = types.CategoryBlacklistRemove
		}
		target = opts["word"].StringValue()
	case "resolve":
		if opts["kind"].StringValue() == "suggestion" {
			category = types.CategorySuggestionStatus
		} else {
			category = types.CategoryReportStatus
		}
		target = opts["id"].StringValue()
	default:
		respond(s, i, "Unknown proposal type.")
		return
	}

	id, err := b.engine.Propose(ctx, i.GuildID, user.ID, category, target, value)
	if err != nil {
		respond(s, i, userMessage(err))
		return
	}
	respond(s, i, fmt.Sprintf("Proposal `%s` created. Your yes ballot is already in.", id))
}

func (b *Bot) handleVote(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, cmd discordgo.ApplicationCommandInteractionData) {
	opts := optionMap(cmd.Options)
	user := interactionUser(i)

	err := b.engine.CastBallot(ctx, opts["proposal"].StringValue(), user.ID, opts["choice"].StringValue())
	if err != nil {
		respond(s, i, userMessage(err))
		return
	}
	// The acknowledgment never reveals the running tally.
	respond(s, i, "Ballot recorded. You can change it until the proposal closes.")
}

func (b *Bot) handlePing(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, cmd discordgo.ApplicationCommandInteractionData) {
	opts := optionMap(cmd.Options)
	user := interactionUser(i)

	err := b.engine.PingNonvoters(ctx, opts["proposal"].StringValue(), user.ID)
	if err != nil {
		respond(s, i, userMessage(err))
		return
	}
	respond(s, i, "Reminders sent to everyone still missing.")
}

func (b *Bot) handleCancel(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, cmd discordgo.ApplicationCommandInteractionData) {
	opts := optionMap(cmd.Options)
	user := interactionUser(i)

	err := b.engine.Cancel(ctx, opts["proposal"].StringValue(), user.ID)
	if err != nil {
		respond(s, i, userMessage(err))
		return
	}
	respond(s, i, "Proposal cancelled.")
}

func (b *Bot) handleProposals(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		respond(s, i, "Run this inside the group.")
		return
	}
	open, err := b.engine.Pending(ctx, i.GuildID)
	if err != nil {
		respond(s, i, userMessage(err))
		return
	}
	if len(open) == 0 {
		respond(s, i, "No open proposals.")
		return
	}
	var sb strings.Builder
	sb.WriteString("Open proposals:\n")
	for _, p := range open {
		fmt.Fprintf(&sb, "• `%s` — %s (by <@%s>, since %s)\n",
			p.ID, describe(&p), p.ProposerID, p.CreatedAt.Format("2006-01-02"))
	}
	respond(s, i, sb.String())
}

func (b *Bot) handleSuggest(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, cmd discordgo.ApplicationCommandInteractionData) {
	if i.GuildID == "" {
		respond(s, i, "Run this inside the group.")
		return
	}
	opts := optionMap(cmd.Options)
	user := interactionUser(i)

	id, err := b.feedback.Suggest(ctx, i.GuildID, user.ID, opts["text"].StringValue())
	if err != nil {
		respond(s, i, "Could not record the suggestion, try again.")
		return
	}
	respond(s, i, fmt.Sprintf("Suggestion #%d recorded. The admins will vote on it.", id))
}

func (b *Bot) handleReport(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, cmd discordgo.ApplicationCommandInteractionData) {
	if i.GuildID == "" {
		respond(s, i, "Run this inside the group.")
		return
	}
	opts := optionMap(cmd.Options)
	user := interactionUser(i)
	target := opts["user"].UserValue(s)

	id, err := b.feedback.Report(ctx, i.GuildID, user.ID, target.ID, "", opts["reason"].StringValue())
	if err != nil {
		respond(s, i, "Could not record the report, try again.")
		return
	}
	respond(s, i, fmt.Sprintf("Report #%d submitted. Moderators have been notified.", id))
}

func (b *Bot) handleLink(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, cmd discordgo.ApplicationCommandInteractionData) {
	opts := optionMap(cmd.Options)
	user := interactionUser(i)

	pending, err := data.PendingNonce(ctx, b.rdb, user.ID)
	if err != nil || pending != opts["code"].StringValue() {
		respond(s, i, "That code is unknown or expired. Request a new one on the website.")
		return
	}
	if err := data.ConfirmNonce(ctx, b.rdb, user.ID); err != nil {
		respond(s, i, "Could not confirm the code, try again.")
		return
	}
	respond(s, i, "Confirmed. Go back to the website to finish signing in.")
}

// requesterRole reports whether the interaction's author is the guild
// owner and whether they hold administrator permission.
func (b *Bot) requesterRole(i *discordgo.InteractionCreate, userID string) (isOwner, isAdmin bool, err error) {
	guild, err := b.session.State.Guild(i.GuildID)
	if err != nil {
		guild, err = b.session.Guild(i.GuildID)
		if err != nil {
			return false, false, err
		}
	}
	isOwner = guild.OwnerID == userID
	if isOwner {
		return true, true, nil
	}
	if i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator != 0 {
		return false, true, nil
	}
	return false, false, nil
}

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, text string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: text,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("bot: interaction respond: %v", err)
	}
}

// userMessage maps engine errors onto replies that never leak ballots
// or tallies.
func userMessage(err error) string {
	switch {
	case errors.Is(err, governance.ErrNotFound):
		return "No proposal with that id."
	case errors.Is(err, governance.ErrClosed):
		return "That proposal is already closed."
	case errors.Is(err, governance.ErrExpired):
		return "That proposal expired after 30 days."
	case errors.Is(err, governance.ErrForbidden):
		return "Only the proposer can do that."
	case errors.Is(err, governance.ErrCooldown):
		return "Reminders can go out once per 24 hours."
	case governance.IsRetryable(err):
		return "Temporary problem talking to the backend, try again in a moment."
	}
	return "That did not work: " + err.Error()
}
