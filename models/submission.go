package models

// Submission statuses.
const (
	SubmissionStatusPending  = "PENDING"
	SubmissionStatusApproved = "APPROVED"
	SubmissionStatusRejected = "REJECTED"
)

// Submission is a proposed fix for a bug, made by a user other than its
// author. Only one submission may ever reach APPROVED per bug — enforced
// by the bug-status guard in the arbitration flow, not here.
type Submission struct {
	ID          string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	BugID       string `gorm:"index;not null" json:"bug_id"`
	SubmitterID string `gorm:"index;not null" json:"submitter_id"`
	Description string `gorm:"type:text" json:"description"`
	Solution    string `gorm:"type:text;not null" json:"solution"`
	Language    string `gorm:"type:varchar(32)" json:"language,omitempty"`
	Status      string `gorm:"index;not null;default:'PENDING'" json:"status"`

	Timestamps
}
