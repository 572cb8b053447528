package types

import "time"

// Managed groups
type Group struct {
	ID        string `gorm:"primaryKey;size:64"`
	Title     string `gorm:"size:255"`
	CreatedAt time.Time
}

// Per-group policy toggles, changed only through passed proposals
type GroupSetting struct {
	GroupID string `gorm:"primaryKey;size:64"`
	Name    string `gorm:"primaryKey;size:64"`
	Value   string `gorm:"size:256;not null"`
}

// Service-wide settings
type Setting struct {
	ID    uint8  `gorm:"primaryKey"`
	Name  string `gorm:"size:32;not null"`
	Value string `gorm:"size:256;not null"`
}

// Blacklisted words per group
type BlacklistWord struct {
	GroupID   string `gorm:"primaryKey;size:64"`
	Word      string `gorm:"primaryKey;size:128"`
	AddedBy   string `gorm:"size:64"`
	CreatedAt time.Time
}

// User-submitted suggestions awaiting disposition
type Suggestion struct {
	ID        uint64 `gorm:"primaryKey"`
	GroupID   string `gorm:"index;size:64;not null"`
	AuthorID  string `gorm:"size:64;not null"`
	Body      string `gorm:"type:text;not null"`
	Status    string `gorm:"size:32;default:open"`
	CreatedAt time.Time
}

// User reports against messages awaiting disposition
type Report struct {
	ID         uint64 `gorm:"primaryKey"`
	GroupID    string `gorm:"index;size:64;not null"`
	ReporterID string `gorm:"size:64;not null"`
	TargetID   string `gorm:"size:64"`
	MessageID  string `gorm:"size:64"`
	Body       string `gorm:"type:text"`
	Status     string `gorm:"size:32;default:open"`
	CreatedAt  time.Time
}

// Proposal categories; each maps to exactly one execution effect.
const (
	CategoryConfig           = "config"
	CategoryBlacklistAdd     = "blacklist_add"
	CategoryBlacklistRemove  = "blacklist_remove"
	CategorySuggestionStatus = "suggestion_status"
	CategoryReportStatus     = "report_status"
)

// Proposal lifecycle states. Everything after pending is terminal.
const (
	StatusPending   = "pending"
	StatusPassed    = "passed"
	StatusRejected  = "rejected"
	StatusExpired   = "expired"
	StatusCancelled = "cancelled"
)

// Ballot choices
const (
	ChoiceYes = "yes"
	ChoiceNo  = "no"
)

// Governance proposals
type Proposal struct {
	ID             string `gorm:"primaryKey;size:36"`
	GroupID        string `gorm:"index;size:64;not null"`
	ProposerID     string `gorm:"size:64;not null"`
	Category       string `gorm:"size:32;not null"`
	Target         string `gorm:"size:255;not null"`
	Value          string `gorm:"size:255"`
	Status         string `gorm:"index;size:16;not null;default:pending"`
	CreatedAt      time.Time
	LastReminderAt *time.Time
}

// Ballots, one per proposal and voter, revisable until the proposal closes
type Ballot struct {
	ProposalID string `gorm:"primaryKey;size:36"`
	VoterID    string `gorm:"primaryKey;size:64"`
	Choice     string `gorm:"size:8;not null"`
	CastAt     time.Time
}
