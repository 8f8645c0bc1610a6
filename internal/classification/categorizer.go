// Package classification assigns spending categories to transaction descriptions.
package classification

import (
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/finsight/internal/model"
)

// Keyword match weights.
const (
	weightExact      = 10
	weightAffix      = 7
	weightSubstring  = 5
	weightSimilarity = 2

	// minWordLength is the length a word must exceed to count for similarity.
	minWordLength = 3

	// minScore is the highest score that still falls back to Other.
	minScore = 3

	otherConfidence  = 0.3
	baseConfidence   = 0.4
	confidencePerHit = 0.2
	maxConfidence    = 0.9
)

// Categorizer scores descriptions against a fixed keyword table. It holds no
// mutable state and is safe for concurrent use.
type Categorizer struct {
	profiles []CategoryProfile
	index    map[model.Category]CategoryProfile
}

// NewCategorizer creates a categorizer over the given profiles. Profile order
// decides ties.
func NewCategorizer(profiles []CategoryProfile) *Categorizer {
	index := make(map[model.Category]CategoryProfile, len(profiles)+1)
	lowered := make([]CategoryProfile, len(profiles))
	for i, p := range profiles {
		keywords := make([]string, len(p.Keywords))
		for j, kw := range p.Keywords {
			keywords[j] = strings.ToLower(kw)
		}
		p.Keywords = keywords
		lowered[i] = p
		index[p.Name] = p
	}
	if _, ok := index[model.CategoryOther]; !ok {
		index[model.CategoryOther] = otherProfile
	}

	return &Categorizer{profiles: lowered, index: index}
}

// NewDefaultCategorizer creates a categorizer over DefaultProfiles.
func NewDefaultCategorizer() *Categorizer {
	return NewCategorizer(DefaultProfiles())
}

// Categorize returns the best category for a description and the confidence
// of that choice.
func (c *Categorizer) Categorize(description string) (model.Category, float64) {
	desc := strings.ToLower(strings.TrimSpace(description))
	if desc == "" {
		return model.CategoryOther, otherConfidence
	}

	words := strings.Fields(desc)
	best := model.CategoryOther
	bestScore := 0
	var bestProfile *CategoryProfile

	for i := range c.profiles {
		p := &c.profiles[i]
		score := scoreKeywords(desc, words, p.Keywords)
		if score > bestScore {
			bestScore = score
			best = p.Name
			bestProfile = p
		}
	}

	if bestScore <= minScore || bestProfile == nil {
		return model.CategoryOther, otherConfidence
	}

	hits := 0
	for _, kw := range bestProfile.Keywords {
		if strings.Contains(desc, kw) {
			hits++
		}
	}

	confidence := baseConfidence + confidencePerHit*float64(hits)
	if confidence > maxConfidence {
		confidence = maxConfidence
	}
	return best, confidence
}

// Profile returns the static data for a category. Unknown categories get the
// Other profile.
func (c *Categorizer) Profile(category model.Category) CategoryProfile {
	if p, ok := c.index[category]; ok {
		return p
	}
	return c.index[model.CategoryOther]
}

// SavingRate returns the fraction of spending considered recoverable in a category.
func (c *Categorizer) SavingRate(category model.Category) float64 {
	if p, ok := c.index[category]; ok && p.SavingRate > 0 {
		return p.SavingRate
	}
	return defaultSavingRate
}

func scoreKeywords(desc string, words, keywords []string) int {
	score := 0

	for _, kw := range keywords {
		if !strings.Contains(desc, kw) {
			continue
		}
		switch {
		case desc == kw:
			score += weightExact
		case strings.HasPrefix(desc, kw) || strings.HasSuffix(desc, kw):
			score += weightAffix
		default:
			score += weightSubstring
		}
	}

	for _, kw := range keywords {
		kwLen := utf8.RuneCountInString(kw)
		for _, word := range words {
			if utf8.RuneCountInString(word) > minWordLength && strings.Contains(kw, word) {
				score += weightSimilarity
			}
			if kwLen > minWordLength && strings.Contains(word, kw) {
				score += weightSimilarity
			}
		}
	}

	return score
}
