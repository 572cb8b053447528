package moderation

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/stake-plus/groupgov/src/types"
)

// Groups tracks which groups the service manages.
type Groups struct {
	db *gorm.DB
}

func NewGroups(db *gorm.DB) *Groups {
	return &Groups{db: db}
}

// Ensure registers a group on first contact. Called on every command
// but exits quickly once the row exists.
func (g *Groups) Ensure(ctx context.Context, id, title string) error {
	row := types.Group{ID: id, Title: title, CreatedAt: time.Now().UTC()}
	return g.db.WithContext(ctx).
		Where(types.Group{ID: id}).
		FirstOrCreate(&row).Error
}
