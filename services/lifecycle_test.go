package services_test

import (
	"errors"
	"testing"

	"bug-bounty-system/models"
	"bug-bounty-system/services"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestAuthorizeTransition(t *testing.T) {
	bug := &models.Bug{
		ID:           "bug-1",
		AuthorID:     "author",
		AssignedToID: strPtr("assignee"),
		Status:       models.BugStatusOpen,
	}

	tests := []struct {
		name    string
		actor   models.Actor
		wantErr error
	}{
		{
			name:  "author may change status",
			actor: models.Actor{ID: "author"},
		},
		{
			name:  "assignee may change status",
			actor: models.Actor{ID: "assignee"},
		},
		{
			name:  "trusted reviewer at threshold may change status",
			actor: models.Actor{ID: "stranger", Reputation: 100},
		},
		{
			name:  "trusted reviewer above threshold may change status",
			actor: models.Actor{ID: "stranger", Reputation: 5000},
		},
		{
			name:    "reputation just below threshold is denied",
			actor:   models.Actor{ID: "stranger", Reputation: 99},
			wantErr: services.ErrUnauthorized,
		},
		{
			name:    "zero-reputation stranger is denied",
			actor:   models.Actor{ID: "stranger"},
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
			err := services.AuthorizeTransition(tt.actor, bug)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthorizeTransitionUnassignedBug(t *testing.T) {
	bug := &models.Bug{ID: "bug-2", AuthorID: "author", Status: models.BugStatusOpen}

	// Nobody is assigned, so only the author or a trusted reviewer gets in.
	err := services.AuthorizeTransition(models.Actor{ID: "somebody", Reputation: 50}, bug)
	assert.True(t, errors.Is(err, services.ErrUnauthorized))

	assert.NoError(t, services.AuthorizeTransition(models.Actor{ID: "author"}, bug))
}
