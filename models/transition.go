package models

import "time"

// Transition is an immutable audit record of a bug's status or assignment
// change. Rows are only ever inserted; ordering by created_at ascending is
// the canonical history of a bug.
type Transition struct {
	ID    string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	BugID string `gorm:"index;not null" json:"bug_id"`

	// FromStatus is nil for the creation record.
	FromStatus *string `gorm:"type:varchar(16)" json:"from_status"`
	ToStatus   string  `gorm:"type:varchar(16);not null" json:"to_status"`

	// AssignedTo snapshots the assignee at the time of the change.
	AssignedTo *string `json:"assigned_to,omitempty"`

	Notes string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
