package services

import (
	"fmt"
	"log"
	"strings"

	"bug-bounty-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubmissionService struct {
	DB *gorm.DB
}

func NewSubmissionService(db *gorm.DB) *SubmissionService {
	return &SubmissionService{DB: db}
}

// CreateSubmissionInput is the JSON body for submitting a solution.
type CreateSubmissionInput struct {
	Description string `json:"description"`
	Solution    string `json:"solution"`
	Language    string `json:"language"`
}

// CreateSubmission records a PENDING solution. The submitter must not be the
// bug's author, and the bug must still be OPEN.
func (s *SubmissionService) CreateSubmission(actor models.Actor, bugID string, in *CreateSubmissionInput) (*models.Submission, error) {
	if actor.ID == "" {
		return nil, fmt.Errorf("%w: missing actor", ErrUnauthenticated)
	}
	if strings.TrimSpace(in.Solution) == "" {
		return nil, invalidf("solution is required")
	}

	var bug models.Bug
	if err := s.DB.First(&bug, "id = ?", bugID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: bug %s", ErrNotFound, bugID)
		}
		return nil, err
	}

	if actor.ID == bug.AuthorID {
		return nil, fmt.Errorf("%w: bug author cannot submit a solution to their own bug", ErrUnauthorized)
	}
	if bug.Status != models.BugStatusOpen {
		return nil, fmt.Errorf("%w: bug is %s and not accepting submissions", ErrConflict, bug.Status)
	}

	sub := models.Submission{
		ID:          uuid.NewString(),
		BugID:       bug.ID,
		SubmitterID: actor.ID,
		Description: in.Description,
		Solution:    in.Solution,
		Language:    in.Language,
		Status:      models.SubmissionStatusPending,
	}
	if err := s.DB.Create(&sub).Error; err != nil {
		return nil, err
	}

	log.Printf("[SUBMISSIONS] New submission %s on bug %s by %s", sub.ID, bug.ID, actor.ID)
	return &sub, nil
}

// ListSubmissions returns the bug's submissions. The bug author sees all of
// them; everyone else sees only their own.
func (s *SubmissionService) ListSubmissions(actor models.Actor, bugID string) ([]models.Submission, error) {
	if actor.ID == "" {
		return nil, fmt.Errorf("%w: missing actor", ErrUnauthenticated)
	}

	var bug models.Bug
	if err := s.DB.First(&bug, "id = ?", bugID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: bug %s", ErrNotFound, bugID)
		}
		return nil, err
	}

	query := s.DB.Where("bug_id = ?", bugID)
	if actor.ID != bug.AuthorID {
		query = query.Where("submitter_id = ?", actor.ID)
	}

	var subs []models.Submission
	err := query.Order("created_at ASC").Find(&subs).Error
	return subs, err
}
