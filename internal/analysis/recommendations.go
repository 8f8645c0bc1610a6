package analysis

import (
	"fmt"
	"sort"

	"github.com/Veraticus/finsight/internal/classification"
	"github.com/Veraticus/finsight/internal/model"
)

const (
	optimizationMinTotal = 300.0
	optimizationMinShare = 15.0
	strongShare          = 25.0
	uncategorizedShare   = 30.0
)

// GenerateRecommendations suggests where spending can be cut, largest
// potential saving first.
func GenerateRecommendations(data ProcessedData, categorizer *classification.Categorizer) []Recommendation {
	recommendations := []Recommendation{}

	for _, c := range data.Categories {
		if c.Total <= optimizationMinTotal || c.Percentage <= optimizationMinShare {
			continue
		}

		profile := categorizer.Profile(c.Name)

		priority, confidence := PriorityMedium, 0.7
		if c.Percentage > strongShare {
			priority, confidence = PriorityHigh, 0.9
		}

		recommendations = append(recommendations, Recommendation{
			Type:  RecommendationCategoryOptimization,
			Title: fmt.Sprintf("%s Optimize %s spending", profile.Icon, c.Name),
			Description: fmt.Sprintf("You spend %s on %s (%.1f%% of the total)",
				FormatCurrency(c.Total), c.Name, c.Percentage),
			Priority:        priority,
			Category:        c.Name,
			Difficulty:      string(profile.Difficulty),
			Tips:            append([]string(nil), profile.Tips...),
			PotentialSaving: c.Total * categorizer.SavingRate(c.Name),
			Confidence:      confidence,
			Actionable:      true,
		})
	}

	if other, ok := data.Category(model.CategoryOther); ok && other.Percentage > uncategorizedShare {
		recommendations = append(recommendations, Recommendation{
			Type:        RecommendationCategorization,
			Title:       "Improve expense categorization",
			Description: fmt.Sprintf("%.1f%% of spending could not be categorized automatically", other.Percentage),
			Priority:    PriorityMedium,
			Difficulty:  string(classification.DifficultyEasy),
			Tips: []string{
				"Use more specific descriptions",
				"Standardize the names of frequent merchants",
				"Review uncategorized expenses manually",
			},
			Confidence: 0.8,
			Actionable: true,
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].PotentialSaving > recommendations[j].PotentialSaving
	})

	return recommendations
}
