package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/stake-plus/groupgov/src/governance"
)

const memberPageSize = 1000

// GuildRoster resolves the live owner/administrator roster of a guild.
// It implements governance.RosterProvider; the engine calls it fresh on
// every evaluation.
type GuildRoster struct {
	session *discordgo.Session
}

func NewGuildRoster(session *discordgo.Session) *GuildRoster {
	return &GuildRoster{session: session}
}

func (g *GuildRoster) Roster(ctx context.Context, groupID string) (governance.Roster, error) {
	guild, err := g.session.State.Guild(groupID)
	if err != nil {
		guild, err = g.session.Guild(groupID)
		if err != nil {
			return governance.Roster{}, fmt.Errorf("fetch guild %s: %w", groupID, err)
		}
	}

	roles, err := g.session.GuildRoles(groupID)
	if err != nil {
		return governance.Roster{}, fmt.Errorf("fetch roles %s: %w", groupID, err)
	}
	adminRoles := make(map[string]struct{})
	for _, role := range roles {
		if role.Permissions&discordgo.PermissionAdministrator != 0 {
			adminRoles[role.ID] = struct{}{}
		}
	}

	var admins []string
	after := ""
	for {
		members, err := g.session.GuildMembers(groupID, after, memberPageSize)
		if err != nil {
			return governance.Roster{}, fmt.Errorf("fetch members %s: %w", groupID, err)
		}
		for _, m := range members {
			if m.User == nil || m.User.Bot || m.User.ID == guild.OwnerID {
				continue
			}
			if hasAdminRole(m.Roles, adminRoles) {
				admins = append(admins, m.User.ID)
			}
		}
		if len(members) < memberPageSize {
			break
		}
		after = members[len(members)-1].User.ID
	}

	return governance.Roster{OwnerID: guild.OwnerID, AdminIDs: admins}, nil
}

func hasAdminRole(memberRoles []string, adminRoles map[string]struct{}) bool {
	for _, id := range memberRoles {
		if _, ok := adminRoles[id]; ok {
			return true
		}
	}
	return false
}
