package services_test

import (
	"errors"
	"testing"

	"bug-bounty-system/models"
	"bug-bounty-system/services"

	"github.com/stretchr/testify/assert"
)

func TestAuthorizeAssignment(t *testing.T) {
	bug := &models.Bug{
		ID:           "bug-1",
		AuthorID:     "author",
		AssignedToID: strPtr("assignee"),
		Status:       models.BugStatusInProgress,
	}

	tests := []struct {
		name    string
		actor   models.Actor
		wantErr error
	}{
		{
			name:  "author may reassign",
			actor: models.Actor{ID: "author"},
		},
		{
			name:  "current assignee may reassign",
			actor: models.Actor{ID: "assignee"},
		},
		{
			// Assignment is narrower than the status rule: reputation alone
			// grants nothing here.
			name:    "high-reputation stranger is denied",
			actor:   models.Actor{ID: "stranger", Reputation: 500},
			wantErr: services.ErrUnauthorized,
		},
		{
			name:    "missing actor is unauthenticated",
			actor:   models.Actor{},
			wantErr: services.ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := services.AuthorizeAssignment(tt.actor, bug)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
			}
		})
	}
}
