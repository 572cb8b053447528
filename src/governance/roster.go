package governance

import "context"

// Roster is the live owner/administrator set for a group. Providers
// exclude bot accounts before returning it.
type Roster struct {
	OwnerID  string
	AdminIDs []string
}

// RosterProvider resolves the current roster from the chat platform.
// The engine calls it on every evaluation rather than caching a snapshot
// at proposal creation; admins can be promoted or demoted while a vote
// is in flight, and a stale roster would count the wrong electorate.
type RosterProvider interface {
	Roster(ctx context.Context, groupID string) (Roster, error)
}

// Eligible returns the set of voters whose ballots count: the owner (if
// any) plus every administrator.
func (r Roster) Eligible() map[string]struct{} {
	eligible := make(map[string]struct{}, len(r.AdminIDs)+1)
	if r.OwnerID != "" {
		eligible[r.OwnerID] = struct{}{}
	}
	for _, id := range r.AdminIDs {
		eligible[id] = struct{}{}
	}
	return eligible
}
