package services

import (
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"

	"bug-bounty-system/models"
	"bug-bounty-system/utils"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type BugService struct {
	DB *gorm.DB
}

func NewBugService(db *gorm.DB) *BugService {
	return &BugService{DB: db}
}

// CreateBugInput is the JSON body for bug creation.
type CreateBugInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	StackTrace   string   `json:"stack_trace"`
	CodeSnippet  string   `json:"code_snippet"`
	BountyAmount float64  `json:"bounty_amount"`
	Tags         []string `json:"tags"`
	Category     string   `json:"category"`
	Priority     string   `json:"priority"`
	Severity     string   `json:"severity"`
}

// CreateBug validates the report, creates it OPEN, and writes the creation
// audit record (from_status nil) in the same transaction.
func (s *BugService) CreateBug(actor models.Actor, in *CreateBugInput) (*models.Bug, error) {
	if actor.ID == "" {
		return nil, fmt.Errorf("%w: missing actor", ErrUnauthenticated)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, invalidf("title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, invalidf("description is required")
	}
	if in.BountyAmount <= 0 {
		return nil, invalidf("bounty_amount must be positive")
	}
	if in.Category != "" && !models.ValidCategories[in.Category] {
		return nil, invalidf("unknown category %q", in.Category)
	}
	if in.Priority != "" && !models.ValidPriorities[in.Priority] {
		return nil, invalidf("unknown priority %q", in.Priority)
	}
	if in.Severity != "" && !models.ValidSeverities[in.Severity] {
		return nil, invalidf("unknown severity %q", in.Severity)
	}

	bug := models.Bug{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		StackTrace:   in.StackTrace,
		CodeSnippet:  in.CodeSnippet,
		BountyAmount: in.BountyAmount,
		Tags:         models.JoinTags(in.Tags),
		Status:       models.BugStatusOpen,
		Category:     in.Category,
		Priority:     in.Priority,
		Severity:     in.Severity,
		AuthorID:     actor.ID,
	}
	// Slug needs a unique suffix: titles collide, bug IDs don't.
	bug.Slug = slug.Make(bug.Title) + "-" + bug.ID[:8]

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&bug).Error; err != nil {
			return err
		}
		transition := models.Transition{
			ID:       uuid.NewString(),
			BugID:    bug.ID,
			ToStatus: models.BugStatusOpen,
			Notes:    "Bug reported",
		}
		return tx.Create(&transition).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[BUGS] Created bug %s (%s) with bounty %.2f by %s", bug.ID, bug.Slug, bug.BountyAmount, actor.ID)
	return &bug, nil
}

// BugFilter holds the list query parameters.
type BugFilter struct {
	Status     string
	Tag        string
	AuthorID   string
	AssigneeID string
	Search     string
	Page       int
	Limit      int
}

// ListBugs returns a filtered, paginated page of bugs plus the total count.
func (s *BugService) ListBugs(f *BugFilter) ([]models.Bug, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}

	query := s.DB.Model(&models.Bug{})
	if f.Status != "" {
		if !models.ValidBugStatuses[f.Status] {
			return nil, 0, invalidf("unknown status %q", f.Status)
		}
		query = query.Where("status = ?", f.Status)
	}
	if f.Tag != "" {
		query = query.Where("tags ILIKE ?", "%"+f.Tag+"%")
	}
	if f.AuthorID != "" {
		query = query.Where("author_id = ?", f.AuthorID)
	}
	if f.AssigneeID != "" {
		query = query.Where("assigned_to_id = ?", f.AssigneeID)
	}
	if f.Search != "" {
		query = query.Where("title ILIKE ? OR description ILIKE ?", "%"+f.Search+"%", "%"+f.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bugs []models.Bug
	err := query.Order("created_at DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&bugs).Error
	return bugs, total, err
}

// GetBug returns a bug with its attachments preloaded.
func (s *BugService) GetBug(bugID string) (*models.Bug, error) {
	var bug models.Bug
	err := s.DB.Preload("Attachments").First(&bug, "id = ?", bugID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("%w: bug %s", ErrNotFound, bugID)
	}
	if err != nil {
		return nil, err
	}
	return &bug, nil
}

// GetTransitions returns the bug's audit history, oldest first. This is the
// canonical reconstruction order.
func (s *BugService) GetTransitions(bugID string) ([]models.Transition, error) {
	if _, err := s.GetBug(bugID); err != nil {
		return nil, err
	}
	var transitions []models.Transition
	err := s.DB.Where("bug_id = ?", bugID).
		Order("created_at ASC").
		Find(&transitions).Error
	return transitions, err
}

// AddAttachment stores the file (R2 when configured, local uploads dir
// otherwise) and records it against the bug.
func (s *BugService) AddAttachment(actor models.Actor, bugID string, file *multipart.FileHeader) (*models.BugAttachment, error) {
	if actor.ID == "" {
		return nil, fmt.Errorf("%w: missing actor", ErrUnauthenticated)
	}
	bug, err := s.GetBug(bugID)
	if err != nil {
		return nil, err
	}

	ext := filepath.Ext(file.Filename)
	key := fmt.Sprintf("attachments/%s/%s%s", bug.ID, uuid.NewString(), ext)

	var url string
	if utils.R2Enabled() {
		url, err = utils.UploadFileToR2(file, key)
		if err != nil {
			return nil, fmt.Errorf("failed to store attachment: %w", err)
		}
	} else {
		dest := utils.GetUploadPath(key)
		if err := utils.SaveFile(file, dest); err != nil {
			return nil, fmt.Errorf("failed to store attachment: %w", err)
		}
		url = "/" + dest
	}

	attachment := models.BugAttachment{
		ID:         uuid.NewString(),
		BugID:      bug.ID,
		FileName:   file.Filename,
		URL:        url,
		SizeBytes:  file.Size,
		UploadedBy: actor.ID,
	}
	if err := s.DB.Create(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}
