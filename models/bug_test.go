package models_test

import (
	"testing"

	"bug-bounty-system/models"

	"github.com/stretchr/testify/assert"
)

func TestTagRoundTrip(t *testing.T) {
	assert.Equal(t, "ui,login", models.JoinTags([]string{" ui ", "login", ""}))
	assert.Equal(t, []string{"ui", "login"}, models.SplitTags("ui, login ,,"))
	assert.Nil(t, models.SplitTags(""))

	bug := models.Bug{Tags: "backend , db"}
	assert.Equal(t, []string{"backend", "db"}, bug.TagList())
}
