package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Bug statuses. No status is terminal — REOPENED exists to bring a
// closed-like bug back into active work.
const (
	BugStatusOpen        = "OPEN"
	BugStatusInProgress  = "IN_PROGRESS"
	BugStatusClaimed     = "CLAIMED"
	BugStatusUnderReview = "UNDER_REVIEW"
	BugStatusResolved    = "RESOLVED"
	BugStatusVerified    = "VERIFIED"
	BugStatusClosed      = "CLOSED"
	BugStatusReopened    = "REOPENED"
	BugStatusDuplicate   = "DUPLICATE"
)

// ValidBugStatuses is the closed set accepted by the status-change endpoint.
var ValidBugStatuses = map[string]bool{
	BugStatusOpen:        true,
	BugStatusInProgress:  true,
	BugStatusClaimed:     true,
	BugStatusUnderReview: true,
	BugStatusResolved:    true,
	BugStatusVerified:    true,
	BugStatusClosed:      true,
	BugStatusReopened:    true,
	BugStatusDuplicate:   true,
}

// Informational enums — they never affect transition legality.
var (
	ValidCategories = map[string]bool{"frontend": true, "backend": true, "mobile": true, "infrastructure": true, "security": true, "other": true}
	ValidPriorities = map[string]bool{"low": true, "medium": true, "high": true, "urgent": true}
	ValidSeverities = map[string]bool{"trivial": true, "minor": true, "major": true, "critical": true}
)

// Bug is a reported defect with an attached monetary bounty.
type Bug struct {
	ID           string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Title        string  `gorm:"not null" json:"title"`
	Slug         string  `gorm:"uniqueIndex;not null" json:"slug"`
	Description  string  `gorm:"type:text;not null" json:"description"`
	StackTrace   string  `gorm:"type:text" json:"stack_trace,omitempty"`
	CodeSnippet  string  `gorm:"type:text" json:"code_snippet,omitempty"`
	BountyAmount float64 `gorm:"not null" json:"bounty_amount"`

	// Tags stored as a comma-separated string (see TagList / JoinTags).
	Tags string `gorm:"type:text" json:"tags"`

	Status   string `gorm:"index;not null;default:'OPEN'" json:"status"`
	Category string `gorm:"type:varchar(32)" json:"category,omitempty"`
	Priority string `gorm:"type:varchar(16)" json:"priority,omitempty"`
	Severity string `gorm:"type:varchar(16)" json:"severity,omitempty"`

	// AuthorID is set at creation and never changes.
	AuthorID     string  `gorm:"index;not null" json:"author_id"`
	AssignedToID *string `gorm:"index" json:"assigned_to_id,omitempty"`

	Submissions []Submission    `gorm:"foreignKey:BugID" json:"submissions,omitempty"`
	Transitions []Transition    `gorm:"foreignKey:BugID" json:"transitions,omitempty"`
	Attachments []BugAttachment `gorm:"foreignKey:BugID" json:"attachments,omitempty"`

	Timestamps
}

// TagList splits the stored tag string into a clean slice.
func (b *Bug) TagList() []string {
	return SplitTags(b.Tags)
}

// SplitTags parses a comma-separated tag string, trimming blanks.
func SplitTags(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// JoinTags normalizes a tag slice into the stored comma-separated form.
func JoinTags(tags []string) string {
	var clean []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			clean = append(clean, t)
		}
	}
	return strings.Join(clean, ",")
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
