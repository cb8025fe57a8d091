package services

import (
	"fmt"
	"log"

	"bug-bounty-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssignmentService struct {
	DB *gorm.DB
}

func NewAssignmentService(db *gorm.DB) *AssignmentService {
	return &AssignmentService{DB: db}
}

// AuthorizeAssignment allows only the bug author or the current assignee to
// change who is working a bug. Deliberately narrower than the status rule:
// reputation alone grants no assignment authority.
func AuthorizeAssignment(actor models.Actor, bug *models.Bug) error {
	if actor.ID == "" {
		return fmt.Errorf("%w: missing actor", ErrUnauthenticated)
	}
	if actor.ID == bug.AuthorID {
		return nil
	}
	if bug.AssignedToID != nil && *bug.AssignedToID == actor.ID {
		return nil
	}
	return fmt.Errorf("%w: only the author or current assignee may change assignment", ErrUnauthorized)
}

// assignmentNote is the generated default for assignment audit records.
func assignmentNote(newAssignee *string) string {
	if newAssignee == nil {
		return "Bug unassigned from user"
	}
	return "Bug assigned to user"
}

func sameAssignee(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// SetAssignment updates the bug's assignee. An unchanged assignee is a no-op
// and writes no Transition record. Status is untouched: the audit row carries
// from_status == to_status so readers can tell it was an assignment change.
func (s *AssignmentService) SetAssignment(actor models.Actor, bugID string, newAssignee *string, notes string) (*models.Bug, error) {
	var bug models.Bug
	if err := s.DB.First(&bug, "id = ?", bugID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: bug %s", ErrNotFound, bugID)
		}
		return nil, err
	}

	if err := AuthorizeAssignment(actor, &bug); err != nil {
		return nil, err
	}

	if sameAssignee(bug.AssignedToID, newAssignee) {
		return &bug, nil
	}

	if notes == "" {
		notes = assignmentNote(newAssignee)
	}

	status := bug.Status
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Bug{}).Where("id = ?", bug.ID).Update("assigned_to_id", newAssignee).Error; err != nil {
			return err
		}
		transition := models.Transition{
			ID:         uuid.NewString(),
			BugID:      bug.ID,
			FromStatus: &status,
			ToStatus:   status,
			AssignedTo: newAssignee,
			Notes:      notes,
		}
		return tx.Create(&transition).Error
	})
	if err != nil {
		return nil, err
	}

	bug.AssignedToID = newAssignee
	if newAssignee == nil {
		log.Printf("[ASSIGNMENT] Bug %s unassigned (by %s)", bug.ID, actor.ID)
	} else {
		log.Printf("[ASSIGNMENT] Bug %s assigned to %s (by %s)", bug.ID, *newAssignee, actor.ID)
	}
	return &bug, nil
}
