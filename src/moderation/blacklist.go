package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stake-plus/groupgov/src/types"
)

// Blacklist stores per-group banned words. Edits arrive only through
// passed proposals.
type Blacklist struct {
	db *gorm.DB
}

func NewBlacklist(db *gorm.DB) *Blacklist {
	return &Blacklist{db: db}
}

// NormalizeWord canonicalizes a blacklist entry so duplicate proposals
// collapse onto one row.
func NormalizeWord(word string) string {
	return strings.ToLower(strings.Join(strings.Fields(word), " "))
}

func (b *Blacklist) Upsert(ctx context.Context, groupID, word, addedBy string) error {
	word = NormalizeWord(word)
	if word == "" {
		return fmt.Errorf("empty blacklist word")
	}
	row := types.BlacklistWord{
		GroupID:   groupID,
		Word:      word,
		AddedBy:   addedBy,
		CreatedAt: time.Now().UTC(),
	}
	err := b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}, {Name: "word"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert blacklist word: %w", err)
	}
	return nil
}

func (b *Blacklist) Delete(ctx context.Context, groupID, word string) error {
	err := b.db.WithContext(ctx).
		Delete(&types.BlacklistWord{}, "group_id = ? AND word = ?", groupID, NormalizeWord(word)).Error
	if err != nil {
		return fmt.Errorf("delete blacklist word: %w", err)
	}
	return nil
}

func (b *Blacklist) Words(ctx context.Context, groupID string) ([]string, error) {
	var rows []types.BlacklistWord
	err := b.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("word").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list blacklist: %w", err)
	}
	words := make([]string, len(rows))
	for i, row := range rows {
		words[i] = row.Word
	}
	return words, nil
}
