package catalog

import (
	"sort"
	"strings"

	"patternhub/internal/models"
)

// Relevance weights. A title hit always outranks any number of tag hits, and
// a tag hit outranks a description hit.
const (
	scoreTitle       = 100
	scoreTag         = 10
	scoreDescription = 1
)

// Query selects and ranks patterns. All fields are optional: an empty Text
// matches everything, empty Category/Difficulty skip that filter, and a nil
// Limit returns all matches.
type Query struct {
	Text       string
	Category   string
	Difficulty string
	Limit      *int
}

// Search returns the patterns matching q, ordered by relevance to the query
// text. When no text is given, catalog order is preserved. Ties are broken by
// catalog order (stable sort). Unrecognized category or difficulty values
// yield an empty result rather than an error; malformed inputs are rejected
// upstream by request validation.
func Search(patterns []models.Pattern, q Query) []models.Pattern {
	if q.Limit != nil && *q.Limit <= 0 {
		return []models.Pattern{}
	}

	text := strings.ToLower(strings.TrimSpace(q.Text))

	type scored struct {
		pattern models.Pattern
		score   int
	}

	matches := []scored{}
	for _, p := range patterns {
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if q.Difficulty != "" && p.Difficulty != q.Difficulty {
			continue
		}

		score := 0
		if text != "" {
			score = relevance(p, text)
			if score == 0 {
				continue
			}
		}

		matches = append(matches, scored{pattern: p, score: score})
	}

	// Stable: equal scores keep catalog order
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	results := make([]models.Pattern, 0, len(matches))
	for _, m := range matches {
		results = append(results, m.pattern)
	}

	if q.Limit != nil && *q.Limit < len(results) {
		results = results[:*q.Limit]
	}

	return results
}

// relevance scores a single pattern against a lowercased query string.
// Case-insensitive substring match over title, tags, then description.
func relevance(p models.Pattern, text string) int {
	score := 0
	if strings.Contains(strings.ToLower(p.Title), text) {
		score += scoreTitle
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), text) {
			score += scoreTag
			break
		}
	}
	if strings.Contains(strings.ToLower(p.Description), text) {
		score += scoreDescription
	}
	return score
}

// GetByID returns the pattern with the given id. The boolean is false when no
// pattern matches; ids are unique within a snapshot so at most one can.
func GetByID(patterns []models.Pattern, id string) (models.Pattern, bool) {
	for _, p := range patterns {
		if p.ID == id {
			return p, true
		}
	}
	return models.Pattern{}, false
}

// ToSummary projects a pattern into its list-view summary. Fields are taken
// verbatim; no failure mode.
func ToSummary(p models.Pattern) models.PatternSummary {
	return models.PatternSummary{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Difficulty:  p.Difficulty,
		Tags:        p.Tags,
	}
}

// Summarize projects a slice of patterns, preserving order.
func Summarize(patterns []models.Pattern) []models.PatternSummary {
	summaries := make([]models.PatternSummary, 0, len(patterns))
	for _, p := range patterns {
		summaries = append(summaries, ToSummary(p))
	}
	return summaries
}
