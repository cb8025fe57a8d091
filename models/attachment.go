package models

import "time"

// BugAttachment = a file (screenshot, log, repro archive) attached to a bug.
// The file itself lives in R2 (or the local uploads dir in dev); we keep the URL.
type BugAttachment struct {
	ID         string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	BugID      string    `gorm:"index;not null" json:"bug_id"`
	FileName   string    `gorm:"not null" json:"file_name"`
	URL        string    `gorm:"not null" json:"url"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedBy string    `gorm:"index;not null" json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}
