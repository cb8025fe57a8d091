package services_test

import (
	"testing"

	"bug-bounty-system/models"
	"bug-bounty-system/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarityScoreIdentical(t *testing.T) {
	q := &services.DuplicateQuery{
		Title:       "Login button crashes on click",
		Description: "Clicking the login button throws a null pointer",
		Tags:        []string{"ui", "login"},
		StackTrace:  "at auth.Login()\nat main.main()",
	}
	candidate := &models.Bug{
		Title:       "Login button crashes on click",
		Description: "Clicking the login button throws a null pointer",
		Tags:        models.JoinTags([]string{"ui", "login"}),
		StackTrace:  "at auth.Login()\nat main.main()",
	}

	assert.Equal(t, 100, services.SimilarityScore(q, candidate))
}

func TestSimilarityScoreBounds(t *testing.T) {
	tests := []struct {
		name      string
		query     services.DuplicateQuery
		candidate models.Bug
	}{
		{"empty both", services.DuplicateQuery{}, models.Bug{}},
		{"query only", services.DuplicateQuery{Title: "a b c"}, models.Bug{}},
		{"candidate only", services.DuplicateQuery{}, models.Bug{Title: "x y z"}},
		{
			"no overlap",
			services.DuplicateQuery{Title: "one two", Tags: []string{"a"}},
			models.Bug{Title: "three four", Tags: "b"},
		},
		{
			"full overlap",
			services.DuplicateQuery{Title: "same", Description: "same", Tags: []string{"t"}, StackTrace: "s"},
			models.Bug{Title: "same", Description: "same", Tags: "t", StackTrace: "s"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := services.SimilarityScore(&tt.query, &tt.candidate)
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 100)
		})
	}
}

func TestSimilarityScorePartialOverlap(t *testing.T) {
	// Title: 2 shared of 5 tokens each side -> 2/5 * 40 = 16
	// Tags: both tags shared -> 2/2 * 30 = 30
	q := &services.DuplicateQuery{
		Title: "login button crashes on click",
		Tags:  []string{"ui", "login"},
	}
	candidate := &models.Bug{
		Title: "login button crash when clicked",
		Tags:  "login,ui",
	}

	assert.Equal(t, 46, services.SimilarityScore(q, candidate))
}

func TestSimilarityScoreRounding(t *testing.T) {
	// 2 shared of 3 title tokens -> 2/3 * 40 = 26.67, rounds to 27
	q := &services.DuplicateQuery{Title: "alpha beta gamma"}
	candidate := &models.Bug{Title: "alpha beta delta"}

	assert.Equal(t, 27, services.SimilarityScore(q, candidate))
}

func TestSimilarityScoreCaseInsensitive(t *testing.T) {
	q := &services.DuplicateQuery{Title: "LOGIN Button Crashes"}
	candidate := &models.Bug{Title: "login button crashes"}

	assert.Equal(t, 40, services.SimilarityScore(q, candidate))
}

func TestSimilarityScoreStackTraceByLine(t *testing.T) {
	// 2 shared of 3 lines -> 2/3 * 10 = 6.67, rounds to 7. Word-level overlap
	// inside differing lines must not count.
	q := &services.DuplicateQuery{StackTrace: "at a.Foo()\nat b.Bar()\nat c.Baz()"}
	candidate := &models.Bug{StackTrace: "at a.Foo()\nat b.Bar()\nat d.Qux()"}

	assert.Equal(t, 7, services.SimilarityScore(q, candidate))
}

func TestRankDuplicates(t *testing.T) {
	q := &services.DuplicateQuery{
		Title: "login button crashes on click",
		Tags:  []string{"ui", "login"},
	}
	candidates := []models.Bug{
		{ID: "low", Title: "payment form rejects valid card"},                   // no overlap -> dropped
		{ID: "borderline", Title: "login button glitch sometimes blinks oddly"}, // 2/6*40 ~= 13 -> dropped
		{ID: "partial", Title: "login button crash when clicked", Tags: "login,ui"},
		{ID: "exact", Title: "login button crashes on click", Tags: "ui,login"},
	}

	matches := services.RankDuplicates(q, candidates)
	require.Len(t, matches, 2)

	// Sorted descending by score, each above the threshold.
	assert.Equal(t, "exact", matches[0].ID)
	assert.Equal(t, 70, matches[0].SimilarityScore)
	assert.Equal(t, "partial", matches[1].ID)
	assert.Equal(t, 46, matches[1].SimilarityScore)

	for _, m := range matches {
		assert.Greater(t, m.SimilarityScore, services.DuplicateScoreThreshold)
	}
}

func TestRankDuplicatesThresholdBoundary(t *testing.T) {
	// Exactly 1/2 of title tokens shared -> 0.5 * 40 = 20, which is at the
	// threshold and must be excluded.
	q := &services.DuplicateQuery{Title: "alpha beta"}
	candidates := []models.Bug{{ID: "at-threshold", Title: "alpha gamma"}}

	assert.Empty(t, services.RankDuplicates(q, candidates))
}

func TestCheckDuplicatesStackTraceOnly(t *testing.T) {
	// A stack-trace-only query cannot produce a score above the threshold
	// (stack weight 10 < threshold 20), so the check short-circuits without
	// touching the database.
	svc := services.NewDuplicateService(nil)
	q := &services.DuplicateQuery{StackTrace: "at auth.Login()\nat main.main()"}

	matches, err := svc.CheckDuplicates(q)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
