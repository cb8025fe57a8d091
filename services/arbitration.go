package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"bug-bounty-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ArbitrationService handles submission approval and rejection. This is the
// only code path in the system permitted to write the reputation ledger.
type ArbitrationService struct {
	DB       *gorm.DB
	Notifier *Notifier
}

func NewArbitrationService(db *gorm.DB, notifier *Notifier) *ArbitrationService {
	return &ArbitrationService{DB: db, Notifier: notifier}
}

// ReputationDelta is the bounty-to-reputation formula: one point per 100
// currency units, rounded down. A bounty of 0-99 yields zero reputation.
func ReputationDelta(bountyAmount float64) int {
	if bountyAmount <= 0 {
		return 0
	}
	return int(math.Floor(bountyAmount / 100))
}

// resolvedLike reports whether the bug has already left the approvable part
// of its lifecycle. Approving a second submission on such a bug must fail.
func resolvedLike(status string) bool {
	switch status {
	case models.BugStatusResolved, models.BugStatusVerified, models.BugStatusClosed:
		return true
	}
	return false
}

// AuthorizeArbitration permits exactly the bug's author — not the assignee,
// not a trusted reviewer. Stricter than the status-change rule on purpose:
// only the person paying the bounty decides who earns it.
func AuthorizeArbitration(actor models.Actor, bug *models.Bug) error {
	if actor.ID == "" {
		return fmt.Errorf("%w: missing actor", ErrUnauthenticated)
	}
	if actor.ID != bug.AuthorID {
		return fmt.Errorf("%w: only the bug author may approve or reject submissions", ErrUnauthorized)
	}
	return nil
}

func (s *ArbitrationService) loadBugAndSubmission(bugID, submissionID string) (*models.Bug, *models.Submission, error) {
	var bug models.Bug
	if err := s.DB.First(&bug, "id = ?", bugID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, fmt.Errorf("%w: bug %s", ErrNotFound, bugID)
		}
		return nil, nil, err
	}
	var sub models.Submission
	if err := s.DB.First(&sub, "id = ? AND bug_id = ?", submissionID, bugID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, fmt.Errorf("%w: submission %s on bug %s", ErrNotFound, submissionID, bugID)
		}
		return nil, nil, err
	}
	return &bug, &sub, nil
}

// Approve atomically marks the submission APPROVED, moves the bug to
// RESOLVED, credits the submitter's reputation ledger, and appends the audit
// record. The bug-status update is a compare-and-swap against the status read
// at the start: if a concurrent approval already resolved the bug, this one
// fails with a conflict and nothing is written. At most one approval can ever
// succeed per bug.
func (s *ArbitrationService) Approve(actor models.Actor, bugID, submissionID string) (*models.Submission, error) {
	bug, sub, err := s.loadBugAndSubmission(bugID, submissionID)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeArbitration(actor, bug); err != nil {
		return nil, err
	}
	if resolvedLike(bug.Status) {
		return nil, fmt.Errorf("%w: bug is already %s and no longer accepts approvals", ErrConflict, bug.Status)
	}

	prev := bug.Status
	delta := ReputationDelta(bug.BountyAmount)

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// CAS on bug.status: the write only lands if nobody else resolved the
		// bug since we read it.
		res := tx.Model(&models.Bug{}).
			Where("id = ? AND status = ?", bug.ID, prev).
			Update("status", models.BugStatusResolved)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("%w: bug status changed concurrently, approval aborted", ErrConflict)
		}

		if err := tx.Model(&models.Submission{}).
			Where("id = ?", sub.ID).
			Update("status", models.SubmissionStatusApproved).Error; err != nil {
			return err
		}

		// Ledger entry keyed by the submission: the unique (event_type,
		// event_id) index rejects a second grant for the same approval.
		if err := s.creditReputation(tx, sub.SubmitterID, delta, sub.ID); err != nil {
			return err
		}

		transition := models.Transition{
			ID:         uuid.NewString(),
			BugID:      bug.ID,
			FromStatus: &prev,
			ToStatus:   models.BugStatusResolved,
			AssignedTo: bug.AssignedToID,
			Notes:      statusChangeNote(prev, models.BugStatusResolved),
		}
		return tx.Create(&transition).Error
	})
	if err != nil {
		return nil, err
	}

	sub.Status = models.SubmissionStatusApproved
	log.Printf("[ARBITRATION] Bug %s: submission %s approved, +%d reputation to %s",
		bug.ID, sub.ID, delta, sub.SubmitterID)

	s.notifyDecision(bug, sub, true)
	return sub, nil
}

// Reject marks the submission REJECTED. Bug status and reputation are untouched.
func (s *ArbitrationService) Reject(actor models.Actor, bugID, submissionID string) (*models.Submission, error) {
	bug, sub, err := s.loadBugAndSubmission(bugID, submissionID)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeArbitration(actor, bug); err != nil {
		return nil, err
	}

	if err := s.DB.Model(&models.Submission{}).
		Where("id = ?", sub.ID).
		Update("status", models.SubmissionStatusRejected).Error; err != nil {
		return nil, err
	}

	sub.Status = models.SubmissionStatusRejected
	log.Printf("[ARBITRATION] Bug %s: submission %s rejected", bug.ID, sub.ID)

	s.notifyDecision(bug, sub, false)
	return sub, nil
}

// creditReputation appends the ledger event and bumps the materialized
// counter inside the caller's transaction. The submitter mirror row is
// created on the fly if the sync worker hasn't seen the user yet.
func (s *ArbitrationService) creditReputation(tx *gorm.DB, submitterID string, delta int, submissionID string) error {
	var user models.BountyUser
	err := tx.Where("external_user_id = ?", submitterID).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		user = models.BountyUser{
			ID:             uuid.NewString(),
			ExternalUserID: submitterID,
			Username:       submitterID,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	event := models.ReputationEvent{
		ID:        uuid.NewString(),
		UserID:    submitterID,
		Delta:     delta,
		EventType: models.ReputationEventSubmissionApproved,
		EventID:   submissionID,
	}
	if err := tx.Create(&event).Error; err != nil {
		return fmt.Errorf("reputation event for submission %s: %w", submissionID, err)
	}

	return tx.Model(&models.BountyUser{}).
		Where("external_user_id = ?", submitterID).
		UpdateColumn("reputation", gorm.Expr("reputation + ?", delta)).Error
}

// notifyDecision tells the submitter about the outcome. Strictly best-effort
// and outside the transaction: a notifier failure is logged and swallowed,
// never surfaced to the caller.
func (s *ArbitrationService) notifyDecision(bug *models.Bug, sub *models.Submission, approved bool) {
	if s.Notifier == nil {
		return
	}

	var submitter models.BountyUser
	if err := s.DB.Where("external_user_id = ?", sub.SubmitterID).First(&submitter).Error; err != nil {
		log.Printf("[ARBITRATION] ⚠️ No user record for submitter %s, skipping notification: %v", sub.SubmitterID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	if approved {
		err = s.Notifier.NotifyApproval(ctx, submitter.Email, bug.Title, bug.BountyAmount, submitter.DisplayName())
	} else {
		err = s.Notifier.NotifyRejection(ctx, submitter.Email, bug.Title, submitter.DisplayName())
	}
	if err != nil {
		log.Printf("[ARBITRATION] ⚠️ Failed to notify %s about submission %s: %v", sub.SubmitterID, sub.ID, err)
	}
}
