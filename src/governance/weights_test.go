package governance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stake-plus/groupgov/src/governance"
	"github.com/stake-plus/groupgov/src/types"
)

func tableSum(table map[string]float64) float64 {
	var sum float64
	for _, w := range table {
		sum += w
	}
	return sum
}

func TestWeightsOwnerAndAdmins(t *testing.T) {
	roster := governance.Roster{
		OwnerID:  "owner",
		AdminIDs: []string{"a1", "a2", "a3"},
	}

	table := governance.Weights(roster, types.CategoryConfig)

	assert.InDelta(t, 100.0, tableSum(table), 1e-9)
	assert.Equal(t, 50.0, table["owner"])
	assert.InDelta(t, 50.0/3.0, table["a1"], 1e-9)
	assert.InDelta(t, 50.0/3.0, table["a2"], 1e-9)
	assert.InDelta(t, 50.0/3.0, table["a3"], 1e-9)
}

func TestWeightsOwnerAlone(t *testing.T) {
	roster := governance.Roster{OwnerID: "owner"}

	for _, category := range []string{types.CategoryConfig, types.CategorySuggestionStatus, types.CategoryReportStatus} {
		table := governance.Weights(roster, category)
		assert.Equal(t, 100.0, table["owner"], "category %s", category)
		assert.Len(t, table, 1)
	}
}

func TestWeightsBlacklistExcludesOwner(t *testing.T) {
	roster := governance.Roster{
		OwnerID:  "owner",
		AdminIDs: []string{"a1", "a2"},
	}

	for _, category := range []string{types.CategoryBlacklistAdd, types.CategoryBlacklistRemove} {
		table := governance.Weights(roster, category)
		assert.Zero(t, table["owner"], "category %s", category)
		assert.Equal(t, 50.0, table["a1"])
		assert.Equal(t, 50.0, table["a2"])
		assert.InDelta(t, 100.0, tableSum(table), 1e-9)
	}
}

func TestWeightsBlacklistNoAdmins(t *testing.T) {
	roster := governance.Roster{OwnerID: "owner"}

	table := governance.Weights(roster, types.CategoryBlacklistAdd)
	assert.Empty(t, table)
}

func TestWeightsAdminsOnly(t *testing.T) {
	roster := governance.Roster{AdminIDs: []string{"a1", "a2", "a3", "a4"}}

	table := governance.Weights(roster, types.CategoryConfig)
	assert.InDelta(t, 100.0, tableSum(table), 1e-9)
	for _, id := range roster.AdminIDs {
		assert.Equal(t, 25.0, table[id])
	}
}

func TestWeightsEmptyRoster(t *testing.T) {
	table := governance.Weights(governance.Roster{}, types.CategoryConfig)
	assert.Empty(t, table)
}

func TestWeightsOwnerListedAsAdmin(t *testing.T) {
	// Some platforms report the owner inside the admin list as well;
	// the owner must not be double counted.
	roster := governance.Roster{
		OwnerID:  "owner",
		AdminIDs: []string{"owner", "a1"},
	}

	table := governance.Weights(roster, types.CategoryConfig)
	assert.Equal(t, 50.0, table["owner"])
	assert.Equal(t, 50.0, table["a1"])
	assert.InDelta(t, 100.0, tableSum(table), 1e-9)
}
