package services

import (
	"math"
	"sort"
	"strings"

	"bug-bounty-system/models"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

// Scoring weights for the duplicate heuristic. A candidate identical in all
// four fields scores exactly 100.
const (
	TitleWeight       = 40.0
	TagWeight         = 30.0
	DescriptionWeight = 20.0
	StackTraceWeight  = 10.0

	// Candidates at or below this rounded score are discarded.
	DuplicateScoreThreshold = 20

	// Upper bound on candidates fetched from the coarse SQL prefilter.
	DuplicateCandidateLimit = 10
)

// DuplicateQuery is a prospective bug report to check against existing bugs.
// At least one field must be populated.
type DuplicateQuery struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	StackTrace  string   `json:"stack_trace"`
}

func (q *DuplicateQuery) empty() bool {
	return q.Title == "" && q.Description == "" && len(q.Tags) == 0 && q.StackTrace == ""
}

// DuplicateMatch is a candidate bug annotated with its similarity score.
type DuplicateMatch struct {
	models.Bug
	SimilarityScore int `json:"similarity_score"`
}

type DuplicateService struct {
	DB *gorm.DB
}

func NewDuplicateService(db *gorm.DB) *DuplicateService {
	return &DuplicateService{DB: db}
}

// foldToken lowercases and NFKC-normalizes a token so that visually identical
// text pasted from different sources (IDEs love fancy unicode) compares equal.
func foldToken(s string) string {
	return norm.NFKC.String(strings.ToLower(s))
}

// wordSet tokenizes on whitespace, case-insensitive.
func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[foldToken(tok)] = struct{}{}
	}
	return set
}

// lineSet tokenizes a stack trace by newline into trimmed lines, not words.
func lineSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			set[foldToken(line)] = struct{}{}
		}
	}
	return set
}

func tagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			set[foldToken(t)] = struct{}{}
		}
	}
	return set
}

// overlapTerm is intersection-over-max-cardinality scaled by weight. Zero when
// either set is empty, which also guards the denominator.
func overlapTerm(a, b map[string]struct{}, weight float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	common := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			common++
		}
	}
	denom := len(a)
	if len(b) > denom {
		denom = len(b)
	}
	return float64(common) / float64(denom) * weight
}

// SimilarityScore computes the weighted token-overlap score between a query
// and a candidate bug, rounded to the nearest integer. Always in [0, 100].
// Each term only contributes when both sides have the field.
func SimilarityScore(q *DuplicateQuery, candidate *models.Bug) int {
	score := overlapTerm(wordSet(q.Title), wordSet(candidate.Title), TitleWeight)
	score += overlapTerm(tagSet(q.Tags), tagSet(candidate.TagList()), TagWeight)
	score += overlapTerm(wordSet(q.Description), wordSet(candidate.Description), DescriptionWeight)
	score += overlapTerm(lineSet(q.StackTrace), lineSet(candidate.StackTrace), StackTraceWeight)
	return int(math.Round(score))
}

// RankDuplicates scores every candidate, drops those at or below the
// threshold, and returns the rest sorted by score descending. Pure: the
// candidate set comes from the caller.
func RankDuplicates(q *DuplicateQuery, candidates []models.Bug) []DuplicateMatch {
	matches := make([]DuplicateMatch, 0, len(candidates))
	for i := range candidates {
		score := SimilarityScore(q, &candidates[i])
		if score <= DuplicateScoreThreshold {
			continue
		}
		matches = append(matches, DuplicateMatch{Bug: candidates[i], SimilarityScore: score})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].SimilarityScore > matches[j].SimilarityScore
	})
	return matches
}

// CheckDuplicates runs the coarse SQL prefilter and ranks the survivors.
// The prefilter is deliberately loose (any title/description token or tag
// overlap); the scoring engine does the real discrimination and a human
// makes the final duplicate judgment.
func (s *DuplicateService) CheckDuplicates(q *DuplicateQuery) ([]DuplicateMatch, error) {
	if q.empty() {
		return nil, invalidf("at least one of title, description, tags, or stack_trace is required")
	}

	var conds []string
	var args []any
	for _, tok := range strings.Fields(q.Title) {
		conds = append(conds, "title ILIKE ?")
		args = append(args, "%"+tok+"%")
	}
	for _, tag := range q.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		conds = append(conds, "tags ILIKE ?")
		args = append(args, "%"+tag+"%")
	}
	if len(conds) == 0 {
		// Description/stack-trace-only queries: fall back to description match.
		for _, tok := range strings.Fields(q.Description) {
			conds = append(conds, "description ILIKE ?")
			args = append(args, "%"+tok+"%")
		}
	}
	if len(conds) == 0 {
		// Stack-trace-only query: the stack trace weight (10) can never
		// clear the score threshold (20), so no candidate could match.
		return []DuplicateMatch{}, nil
	}
	query := s.DB.Model(&models.Bug{}).Limit(DuplicateCandidateLimit).
		Where(strings.Join(conds, " OR "), args...)

	var candidates []models.Bug
	if err := query.Order("created_at DESC").Find(&candidates).Error; err != nil {
		return nil, err
	}

	return RankDuplicates(q, candidates), nil
}
