package adoption

import (
	"strings"

	"github.com/kiranshivaraju/rfpmarket/pkg/models"
)

const (
	utilizationWeight = 0.6
	sentimentWeight   = 0.4
)

// Score bands shared by recommendations and summaries.
const (
	bandExcellent = 80
	bandGood      = 60
	bandModerate  = 40
)

// ScoreItems computes the calculated score of each item:
// round(0.6*utilization + 0.4*(sentiment/10*100)).
func ScoreItems(items []models.AuditItem) []models.ScoredItem {
	scored := make([]models.ScoredItem, len(items))
	for i, it := range items {
		score := roundHalfUp(it.Utilization*utilizationWeight + (it.Sentiment/10*100)*sentimentWeight)
		scored[i] = models.ScoredItem{AuditItem: it, CalculatedScore: int(score)}
	}
	return scored
}

// OverallScore is the rounded mean of the calculated scores, 0 when empty.
func OverallScore(scored []models.ScoredItem) int {
	if len(scored) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scored {
		sum += s.CalculatedScore
	}
	return int(roundHalfUp(float64(sum) / float64(len(scored))))
}

// DefaultRecommendation returns the canned advice for a tool score.
func DefaultRecommendation(score int) string {
	switch {
	case score >= bandExcellent:
		return "Excellent adoption. Continue current practices and consider sharing best practices across teams."
	case score >= bandGood:
		return "Good adoption with room for improvement. Focus on user training and gathering feedback."
	case score >= bandModerate:
		return "Moderate adoption. Investigate barriers to usage and consider UX improvements or additional training."
	default:
		return "Low adoption requires immediate attention. Conduct user interviews to identify pain points and blockers."
	}
}

// DefaultSummary returns the canned executive summary for an overall score.
func DefaultSummary(overall int) string {
	switch {
	case overall >= bandExcellent:
		return "The airline demonstrates strong digital tool adoption across evaluated systems. User engagement and satisfaction are high, indicating effective implementation strategies."
	case overall >= bandGood:
		return "Overall digital adoption is satisfactory with opportunities for improvement. Some tools show strong engagement while others require attention to boost utilization."
	case overall >= bandModerate:
		return "Digital adoption is below optimal levels. A comprehensive review of training programs and tool usability is recommended to improve engagement."
	default:
		return "Critical gaps exist in digital tool adoption. Immediate intervention is needed to address usability concerns and user resistance."
	}
}

// MergeRecommendations pairs each scored item with the suggestion whose tool
// name matches case-insensitively, falling back to DefaultRecommendation.
func MergeRecommendations(scored []models.ScoredItem, suggestions []models.ToolSuggestion) []models.Recommendation {
	recs := make([]models.Recommendation, len(scored))
	for i, s := range scored {
		text := ""
		for _, sug := range suggestions {
			if strings.EqualFold(sug.ToolName, s.ToolName) {
				text = strings.TrimSpace(sug.Recommendation)
				break
			}
		}
		if text == "" {
			text = DefaultRecommendation(s.CalculatedScore)
		}
		recs[i] = models.Recommendation{
			ToolName:       s.ToolName,
			Score:          s.CalculatedScore,
			Recommendation: text,
		}
	}
	return recs
}
