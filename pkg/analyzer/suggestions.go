package analyzer

import (
	"fmt"
	"sort"
	"strings"
)

// Thresholds for optimization suggestions, as percentages except the
// position cutoff which is an ordinal rank.
const (
	lowMentionRateThreshold    = 50.0
	lowPositiveSentimentCutoff = 60.0
	lateMentionPositionCutoff  = 3.0
	maxCompetitorsListed       = 3
)

// OptimizationSuggestions derives actionable advice from a positioning run.
// A brand with no weak spots gets a single confirmation message.
func OptimizationSuggestions(result *PositioningResult) []string {
	var suggestions []string

	metrics := result.OverallMetrics

	if metrics.MentionRate < lowMentionRateThreshold {
		suggestions = append(suggestions, fmt.Sprintf(
			"Your brand is mentioned in only %.1f%% of relevant queries. Consider creating more authoritative content about your core services to improve LLM training data presence.",
			metrics.MentionRate))
	}

	if metrics.PositivePositioning < lowPositiveSentimentCutoff {
		suggestions = append(suggestions, fmt.Sprintf(
			"Only %.1f%% of your brand mentions are positive. Focus on building positive brand associations through customer success stories and thought leadership content.",
			metrics.PositivePositioning))
	}

	if metrics.AverageMentionPosition > lateMentionPositionCutoff {
		suggestions = append(suggestions, fmt.Sprintf(
			"Your brand appears at position %.1f on average when mentioned. Strengthen your market positioning to be recommended earlier in LLM responses.",
			metrics.AverageMentionPosition))
	}

	if strong := strongCompetitors(result); len(strong) > 0 {
		suggestions = append(suggestions, fmt.Sprintf(
			"Competitors like %s are frequently mentioned. Analyze their content strategy and differentiate your positioning.",
			strings.Join(strong, ", ")))
	}

	if len(suggestions) == 0 {
		suggestions = append(suggestions,
			"Great job! Your brand shows strong performance across LLM models. Continue monitoring and maintaining your current content strategy.")
	}

	return suggestions
}

// strongCompetitors lists competitors mentioned more often than the brand
// itself, most-mentioned first, capped at maxCompetitorsListed.
func strongCompetitors(result *PositioningResult) []string {
	brandMentions := result.OverallMetrics.MentionRate / 100 * float64(result.TotalQueriesTested)

	type ranked struct {
		name     string
		mentions int
	}

	var strong []ranked
	for name, summary := range result.CompetitorAnalysis {
		if float64(summary.Mentions) > brandMentions {
			strong = append(strong, ranked{name: name, mentions: summary.Mentions})
		}
	}

	sort.Slice(strong, func(i, j int) bool {
		if strong[i].mentions != strong[j].mentions {
			return strong[i].mentions > strong[j].mentions
		}
		return strong[i].name < strong[j].name
	})

	if len(strong) > maxCompetitorsListed {
		strong = strong[:maxCompetitorsListed]
	}

	names := make([]string, 0, len(strong))
	for _, c := range strong {
		names = append(names, c.name)
	}
	return names
}
