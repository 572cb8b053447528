package bot

import (
	"context"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/stake-plus/groupgov/src/governance"
	"github.com/stake-plus/groupgov/src/moderation"
)

type Config struct {
	Token    string
	DB       *gorm.DB
	Redis    *redis.Client
	Store    governance.Store
	Executor governance.Executor
	// Events is an optional extra notifier fanned out alongside the
	// Discord one (e.g. the redis stream publisher).
	Events governance.Notifier
}

type Bot struct {
	session   *discordgo.Session
	db        *gorm.DB
	rdb       *redis.Client
	engine    *governance.Engine
	roster    *GuildRoster
	notifier  governance.Notifier
	groups    *moderation.Groups
	settings  *moderation.Settings
	blacklist *moderation.Blacklist
	feedback  *moderation.Feedback
}

func New(cfg Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, err
	}

	settings := moderation.NewSettings(cfg.DB)
	discordNotifier := NewNotifier(dg, settings)

	var notifier governance.Notifier = discordNotifier
	if cfg.Events != nil {
		notifier = governance.MultiNotifier{discordNotifier, cfg.Events}
	}

	roster := NewGuildRoster(dg)
	engine := governance.NewEngine(cfg.Store, roster, cfg.Executor, notifier)

	b := &Bot{
		session:   dg,
		db:        cfg.DB,
		rdb:       cfg.Redis,
		engine:    engine,
		roster:    roster,
		notifier:  notifier,
		groups:    moderation.NewGroups(cfg.DB),
		settings:  settings,
		blacklist: moderation.NewBlacklist(cfg.DB),
		feedback:  moderation.NewFeedback(cfg.DB),
	}

	dg.AddHandler(b.handleReady)
	dg.AddHandler(b.handleGuildCreate)
	dg.AddHandler(b.handleInteraction)

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsDirectMessages

	return b, nil
}

// Engine exposes the governance engine built around this bot's roster
// and notifier, for the API service and the expiry scheduler.
func (b *Bot) Engine() *governance.Engine {
	return b.engine
}

// Roster exposes the guild roster provider for the API service.
func (b *Bot) Roster() governance.RosterProvider {
	return b.roster
}

// Notifier exposes the fanned-out notifier for the expiry scheduler.
func (b *Bot) Notifier() governance.Notifier {
	return b.notifier
}

func (b *Bot) Start() error {
	return b.session.Open()
}

func (b *Bot) Stop() {
	b.session.Close()
}

func (b *Bot) handleReady(s *discordgo.Session, event *discordgo.Ready) {
	log.Printf("bot: logged in as %s", event.User.Username)
	for _, g := range event.Guilds {
		if err := RegisterSlashCommands(s, g.ID); err != nil {
			log.Printf("bot: register commands for %s: %v", g.ID, err)
		}
	}
}

func (b *Bot) handleGuildCreate(s *discordgo.Session, event *discordgo.GuildCreate) {
	if err := b.groups.Ensure(context.Background(), event.ID, event.Name); err != nil {
		log.Printf("bot: ensure group %s: %v", event.ID, err)
	}
	if err := RegisterSlashCommands(s, event.ID); err != nil {
		log.Printf("bot: register commands for %s: %v", event.ID, err)
	}
}
