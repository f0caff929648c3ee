package components

import (
	"strings"

	"github.com/rebeliceyang/lazyprod/internal/models"
)

// SearchQuery represents a parsed value search query
type SearchQuery struct {
	Pattern    string              // The search pattern (after removing prefix/type)
	Negate     bool                // True if query starts with !
	TypeFilter models.PropertyType // Value kind filter, empty for any
}

var typePrefixes = map[string]models.PropertyType{
	"s:":      models.TypeString,
	"n:":      models.TypeNumber,
	"string:": models.TypeString,
	"number:": models.TypeNumber,
}

// ParseSearchQuery parses a search query string into structured form
// Examples:
//   - "bl" → {Pattern: "bl"}
//   - "!bl" → {Pattern: "bl", Negate: true}
//   - "n:1" → {Pattern: "1", TypeFilter: "number"}
func ParseSearchQuery(query string) SearchQuery {
	q := SearchQuery{}

	if strings.HasPrefix(query, "!") {
		q.Negate = true
		query = query[1:]
	}

	queryLower := strings.ToLower(query)
	for prefix, t := range typePrefixes {
		if strings.HasPrefix(queryLower, prefix) {
			q.TypeFilter = t
			query = query[len(prefix):]
			break
		}
	}

	q.Pattern = query
	return q
}

// FuzzyMatch performs fuzzy subsequence matching
// Returns whether the pattern matches and the positions of matched characters
// Matching is case-insensitive
func FuzzyMatch(pattern, target string) (bool, []int) {
	if pattern == "" {
		return true, []int{}
	}

	patternLower := strings.ToLower(pattern)
	targetLower := strings.ToLower(target)

	positions := make([]int, 0, len(pattern))
	patternIdx := 0

	for i := 0; i < len(targetLower) && patternIdx < len(patternLower); i++ {
		if targetLower[i] == patternLower[patternIdx] {
			positions = append(positions, i)
			patternIdx++
		}
	}

	if patternIdx == len(patternLower) {
		return true, positions
	}
	return false, nil
}

// Matches reports whether a candidate value passes the query
func (q SearchQuery) Matches(v models.Value) bool {
	typeMatches := q.TypeFilter == "" || v.Type() == q.TypeFilter
	patternMatches, _ := FuzzyMatch(q.Pattern, v.String())

	if q.Negate {
		if q.TypeFilter != "" && !typeMatches {
			return true
		}
		if q.Pattern == "" {
			return false
		}
		return typeMatches && !patternMatches
	}
	return typeMatches && patternMatches
}

// FilterCandidates returns the candidates matching query, order preserved
func FilterCandidates(candidates []models.PropertyValue, query string) []models.PropertyValue {
	q := ParseSearchQuery(query)
	matches := make([]models.PropertyValue, 0, len(candidates))
	for _, c := range candidates {
		if q.Matches(c.Value) {
			matches = append(matches, c)
		}
	}
	return matches
}
