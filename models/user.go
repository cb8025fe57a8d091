package models

import (
	"time"

	"gorm.io/gorm"
)

// BountyUser is a local snapshot of user data needed by the bounty service.
// Populated via sync worker from the Profile Service; the reputation column
// is owned locally and is only ever written by the arbitration flow, as the
// materialized sum of ReputationEvent deltas.
type BountyUser struct {
	ID                string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID    string  `gorm:"uniqueIndex;not null" json:"external_user_id"`
	Username          string  `gorm:"index;not null" json:"username"`
	Email             string  `json:"email,omitempty"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`
	FirstName         *string `json:"first_name,omitempty"`
	LastName          *string `json:"last_name,omitempty"`

	Reputation int `gorm:"not null;default:0" json:"reputation"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// DisplayName returns the best human name we have for notifications.
func (u *BountyUser) DisplayName() string {
	if u.FirstName != nil && *u.FirstName != "" {
		return *u.FirstName
	}
	return u.Username
}

// Reputation event types. Approval of a submission is currently the only
// path that grants reputation.
const (
	ReputationEventSubmissionApproved = "submission_approved"
)

// ReputationEvent is one signed delta in the reputation ledger. The unique
// (event_type, event_id) index makes a duplicate grant for the same approval
// fail at insert time instead of silently double-counting.
type ReputationEvent struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	Delta     int       `gorm:"not null" json:"delta"`
	EventType string    `gorm:"uniqueIndex:idx_reputation_event,priority:1;not null" json:"event_type"`
	EventID   string    `gorm:"uniqueIndex:idx_reputation_event,priority:2;not null" json:"event_id"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Actor is the identity the gateway resolved for the current request.
// Reputation arrives as an already-resolved fact from the session service;
// passing it explicitly keeps the permission checks pure.
type Actor struct {
	ID         string `json:"id"`
	Reputation int    `json:"reputation"`
}
