package governance

import "github.com/stake-plus/groupgov/src/types"

// Weights maps each voter to a fractional share of 100 for the given
// proposal category, recomputed from the live roster on every
// evaluation.
//
// Blacklist edits exclude the owner entirely and split the full 100
// across administrators, favoring responsive moderation over
// deliberation. Every other category caps the owner at 50 while
// administrators exist, so no single actor can force a policy change
// unilaterally.
func Weights(r Roster, category string) map[string]float64 {
	admins := make([]string, 0, len(r.AdminIDs))
	for _, id := range r.AdminIDs {
		if id != r.OwnerID {
			admins = append(admins, id)
		}
	}

	table := make(map[string]float64)

	switch category {
	case types.CategoryBlacklistAdd, types.CategoryBlacklistRemove:
		if len(admins) == 0 {
			// Nobody holds weight; the proposal rides until an admin
			// exists or the 30-day horizon expires it.
			return table
		}
		share := 100.0 / float64(len(admins))
		for _, id := range admins {
			table[id] = share
		}
		return table
	}

	switch {
	case r.OwnerID != "" && len(admins) > 0:
		table[r.OwnerID] = 50.0
		share := 50.0 / float64(len(admins))
		for _, id := range admins {
			table[id] = share
		}
	case r.OwnerID != "":
		table[r.OwnerID] = 100.0
	case len(admins) > 0:
		share := 100.0 / float64(len(admins))
		for _, id := range admins {
			table[id] = share
		}
	}

	return table
}
