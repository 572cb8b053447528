package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/stake-plus/groupgov/src/types"
)

// Feedback stores user suggestions and reports. Their disposition is
// decided by governance votes; a passed suggestion_status or
// report_status proposal removes the record.
type Feedback struct {
	db     *gorm.DB
	policy *bluemonday.Policy
}

func NewFeedback(db *gorm.DB) *Feedback {
	return &Feedback{
		db:     db,
		policy: bluemonday.StrictPolicy(),
	}
}

func (f *Feedback) sanitize(body string) string {
	return strings.TrimSpace(f.policy.Sanitize(body))
}

func (f *Feedback) Suggest(ctx context.Context, groupID, authorID, body string) (uint64, error) {
	body = f.sanitize(body)
	if body == "" {
		return 0, fmt.Errorf("empty suggestion")
	}
	row := types.Suggestion{
		GroupID:   groupID,
		AuthorID:  authorID,
		Body:      body,
		Status:    "open",
		CreatedAt: time.Now().UTC(),
	}
	if err := f.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("create suggestion: %w", err)
	}
	return row.ID, nil
}

func (f *Feedback) Report(ctx context.Context, groupID, reporterID, targetID, messageID, body string) (uint64, error) {
	row := types.Report{
		GroupID:    groupID,
		ReporterID: reporterID,
		TargetID:   targetID,
		MessageID:  messageID,
		Body:       f.sanitize(body),
		Status:     "open",
		CreatedAt:  time.Now().UTC(),
	}
	if err := f.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("create report: %w", err)
	}
	return row.ID, nil
}

func (f *Feedback) DeleteSuggestion(ctx context.Context, id uint64) error {
	if err := f.db.WithContext(ctx).Delete(&types.Suggestion{}, id).Error; err != nil {
		return fmt.Errorf("delete suggestion: %w", err)
	}
	return nil
}

func (f *Feedback) DeleteReport(ctx context.Context, id uint64) error {
	if err := f.db.WithContext(ctx).Delete(&types.Report{}, id).Error; err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	return nil
}

func (f *Feedback) OpenSuggestions(ctx context.Context, groupID string) ([]types.Suggestion, error) {
	var rows []types.Suggestion
	err := f.db.WithContext(ctx).
		Where("group_id = ? AND status = ?", groupID, "open").
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	return rows, nil
}

func (f *Feedback) OpenReports(ctx context.Context, groupID string) ([]types.Report, error) {
	var rows []types.Report
	err := f.db.WithContext(ctx).
		Where("group_id = ? AND status = ?", groupID, "open").
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return rows, nil
}
