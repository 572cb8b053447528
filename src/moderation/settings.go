package moderation

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stake-plus/groupgov/src/types"
)

// Settings stores per-group policy toggles. Writes arrive only through
// passed proposals.
type Settings struct {
	db *gorm.DB
}

func NewSettings(db *gorm.DB) *Settings {
	return &Settings{db: db}
}

// sensitiveKeys lists settings only the group owner may propose changes
// to; anything else is open to any administrator.
var sensitiveKeys = map[string]struct{}{
	"engagement_tracking": {},
	"anonymous_relay":     {},
	"subscription_gate":   {},
}

// IsSensitive reports whether proposing a change to the key is
// owner-gated.
func IsSensitive(key string) bool {
	_, ok := sensitiveKeys[key]
	return ok
}

func (s *Settings) Set(ctx context.Context, groupID, name, value string) error {
	row := types.GroupSetting{GroupID: groupID, Name: name, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("set group setting: %w", err)
	}
	return nil
}

func (s *Settings) Get(ctx context.Context, groupID, name string) (string, error) {
	var row types.GroupSetting
	err := s.db.WithContext(ctx).
		First(&row, "group_id = ? AND name = ?", groupID, name).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", fmt.Errorf("get group setting: %w", err)
	}
	return row.Value, nil
}
