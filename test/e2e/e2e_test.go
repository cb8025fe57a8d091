//go:build e2e

package e2e

import (
	"fmt"
	"os"
	"sync"
	"testing"

	"bug-bounty-system/models"
	"bug-bounty-system/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// openDB connects to the database given by E2E_DSN, or skips the test.
func openDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("E2E_DSN")
	if dsn == "" {
		t.Skip("E2E_DSN not set, skipping end-to-end test")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Bug{},
		&models.Submission{},
		&models.Transition{},
		&models.BugAttachment{},
		&models.BountyUser{},
		&models.ReputationEvent{},
	))
	return db
}

func reputationOf(t *testing.T, db *gorm.DB, userID string) int {
	t.Helper()
	var user models.BountyUser
	require.NoError(t, db.Where("external_user_id = ?", userID).First(&user).Error)
	return user.Reputation
}

func TestApprovalFlow(t *testing.T) {
	db := openDB(t)

	author := models.Actor{ID: fmt.Sprintf("author-%d", os.Getpid())}
	submitter := models.Actor{ID: fmt.Sprintf("hunter-%d", os.Getpid())}

	bugs := services.NewBugService(db)
	submissions := services.NewSubmissionService(db)
	arbitration := services.NewArbitrationService(db, nil)
	lifecycle := services.NewLifecycleService(db)
	assignments := services.NewAssignmentService(db)

	bug, err := bugs.CreateBug(author, &services.CreateBugInput{
		Title:        "Login button crashes on click",
		Description:  "Repro: click login twice in a row",
		BountyAmount: 500,
		Tags:         []string{"ui", "login"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.BugStatusOpen, bug.Status)

	// Creation wrote the first audit record with a nil from_status.
	history, err := bugs.GetTransitions(bug.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].FromStatus)
	assert.Equal(t, models.BugStatusOpen, history[0].ToStatus)

	// The author cannot submit against their own bug.
	_, err = submissions.CreateSubmission(author, bug.ID, &services.CreateSubmissionInput{Solution: "self-fix"})
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	sub, err := submissions.CreateSubmission(submitter, bug.ID, &services.CreateSubmissionInput{
		Description: "Debounce the click handler",
		Solution:    "diff --git a/auth.go b/auth.go ...",
		Language:    "go",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusPending, sub.Status)

	// Only the author may approve.
	_, err = arbitration.Approve(submitter, bug.ID, sub.ID)
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	approved, err := arbitration.Approve(author, bug.ID, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusApproved, approved.Status)

	// Bounty 500 => +5 reputation, bug RESOLVED, one more audit record.
	assert.Equal(t, 5, reputationOf(t, db, submitter.ID))

	resolved, err := bugs.GetBug(bug.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BugStatusResolved, resolved.Status)

	history, err = bugs.GetTransitions(bug.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.NotNil(t, history[1].FromStatus)
	assert.Equal(t, models.BugStatusOpen, *history[1].FromStatus)
	assert.Equal(t, models.BugStatusResolved, history[1].ToStatus)

	// A resolved bug accepts no further submissions.
	second := models.Actor{ID: fmt.Sprintf("hunter2-%d", os.Getpid())}
	_, err = submissions.CreateSubmission(second, bug.ID, &services.CreateSubmissionInput{Solution: "another fix"})
	assert.ErrorIs(t, err, services.ErrConflict)

	// Approving the same submission again conflicts: the bug already left
	// its approvable state, and the ledger would refuse the duplicate grant.
	_, err = arbitration.Approve(author, bug.ID, sub.ID)
	assert.ErrorIs(t, err, services.ErrConflict)
	assert.Equal(t, 5, reputationOf(t, db, submitter.ID))

	// Same-status change is a no-op: no extra audit record.
	_, err = lifecycle.ChangeStatus(author, bug.ID, models.BugStatusResolved, "")
	require.NoError(t, err)
	history, err = bugs.GetTransitions(bug.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	// Reopen, then check assignment audit semantics.
	_, err = lifecycle.ChangeStatus(author, bug.ID, models.BugStatusReopened, "")
	require.NoError(t, err)

	assignee := fmt.Sprintf("dev-%d", os.Getpid())
	_, err = assignments.SetAssignment(author, bug.ID, &assignee, "")
	require.NoError(t, err)

	// Assigning the same user again writes nothing.
	_, err = assignments.SetAssignment(author, bug.ID, &assignee, "")
	require.NoError(t, err)

	history, err = bugs.GetTransitions(bug.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)

	last := history[3]
	require.NotNil(t, last.FromStatus)
	assert.Equal(t, last.ToStatus, *last.FromStatus) // assignment change leaves status alone
	require.NotNil(t, last.AssignedTo)
	assert.Equal(t, assignee, *last.AssignedTo)
	assert.Equal(t, "Bug assigned to user", last.Notes)
}

func TestRejectionFlow(t *testing.T) {
	db := openDB(t)

	author := models.Actor{ID: fmt.Sprintf("author-rej-%d", os.Getpid())}
	submitter := models.Actor{ID: fmt.Sprintf("hunter-rej-%d", os.Getpid())}

	bugs := services.NewBugService(db)
	submissions := services.NewSubmissionService(db)
	arbitration := services.NewArbitrationService(db, nil)

	bug, err := bugs.CreateBug(author, &services.CreateBugInput{
		Title:        "Checkout totals drift by one cent",
		Description:  "Rounding error when cart has 3+ items",
		BountyAmount: 300,
	})
	require.NoError(t, err)

	sub, err := submissions.CreateSubmission(submitter, bug.ID, &services.CreateSubmissionInput{
		Solution: "use integer cents",
	})
	require.NoError(t, err)

	rejected, err := arbitration.Reject(author, bug.ID, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusRejected, rejected.Status)

	// Rejection moves no money and no state: bug stays OPEN, no reputation.
	got, err := bugs.GetBug(bug.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BugStatusOpen, got.Status)

	var count int64
	require.NoError(t, db.Model(&models.ReputationEvent{}).
		Where("event_id = ?", sub.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestConcurrentApprovals(t *testing.T) {
	db := openDB(t)

	author := models.Actor{ID: fmt.Sprintf("race-author-%d", os.Getpid())}
	hunterA := models.Actor{ID: fmt.Sprintf("race-hunter-a-%d", os.Getpid())}
	hunterB := models.Actor{ID: fmt.Sprintf("race-hunter-b-%d", os.Getpid())}

	bugs := services.NewBugService(db)
	submissions := services.NewSubmissionService(db)
	arbitration := services.NewArbitrationService(db, nil)

	bug, err := bugs.CreateBug(author, &services.CreateBugInput{
		Title:        "Checkout total off by one cent",
		Description:  "Rounding error when tax is applied per line item",
		BountyAmount: 500,
		Tags:         []string{"billing"},
	})
	require.NoError(t, err)

	subA, err := submissions.CreateSubmission(hunterA, bug.ID, &services.CreateSubmissionInput{
		Solution: "round once on the order total",
	})
	require.NoError(t, err)
	subB, err := submissions.CreateSubmission(hunterB, bug.ID, &services.CreateSubmissionInput{
		Solution: "accumulate tax in integer cents",
	})
	require.NoError(t, err)

	// Approve both submissions at once. The status guard in the approval
	// transaction must let exactly one through.
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, subID := range []string{subA.ID, subB.ID} {
		wg.Add(1)
		go func(i int, subID string) {
			defer wg.Done()
			_, errs[i] = arbitration.Approve(author, bug.ID, subID)
		}(i, subID)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, services.ErrConflict)
			lost++
		}
	}
	assert.Equal(t, 1, won, "exactly one approval must win")
	assert.Equal(t, 1, lost)

	var resolved models.Bug
	require.NoError(t, db.First(&resolved, "id = ?", bug.ID).Error)
	assert.Equal(t, models.BugStatusResolved, resolved.Status)

	// The bounty was credited exactly once across both attempts.
	var events int64
	require.NoError(t, db.Model(&models.ReputationEvent{}).
		Where("event_type = ? AND event_id IN ?",
			models.ReputationEventSubmissionApproved, []string{subA.ID, subB.ID}).
		Count(&events).Error)
	assert.Equal(t, int64(1), events)

	winner := hunterA.ID
	if errs[0] != nil {
		winner = hunterB.ID
	}
	assert.Equal(t, 5, reputationOf(t, db, winner))
}
