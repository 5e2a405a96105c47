// Package adoption turns raw tool-usage data into scored adoption audits.
package adoption

import (
	"math"
	"sort"

	"github.com/kiranshivaraju/rfpmarket/pkg/models"
)

// UnknownTool names the group for rows without a tool name.
const UnknownTool = "Unknown Tool"

// Usage levels that count as full adoption, and their weights in the
// utilization score.
const (
	fullLoginCount      = 20.0
	fullSessionMinutes  = 60.0
	loginWeight         = 0.6
	sessionWeight       = 0.4
	defaultAvgSentiment = 5.0
	maxAvgSessions      = math.MaxInt32
)

// Aggregate groups rows by tool name and reduces each group to a
// ToolUsageAggregate. Results are sorted by tool name.
// Returns empty slice for empty input (never nil).
func Aggregate(rows []models.UsageRecord) []models.ToolUsageAggregate {
	if len(rows) == 0 {
		return []models.ToolUsageAggregate{}
	}

	type toolState struct {
		users          map[string]struct{}
		active         int
		loginSum       int
		loginCount     int
		sessionSum     float64
		sessionCount   int
		sentimentSum   float64
		sentimentCount int
	}

	groups := make(map[string]*toolState)

	for _, row := range rows {
		name := row.ToolName
		if name == "" {
			name = UnknownTool
		}
		ts, exists := groups[name]
		if !exists {
			ts = &toolState{users: make(map[string]struct{})}
			groups[name] = ts
		}

		if row.UserID != "" {
			ts.users[row.UserID] = struct{}{}
		}
		if row.LoginCount != nil {
			ts.loginSum += *row.LoginCount
			ts.loginCount++
			if *row.LoginCount > 0 {
				ts.active++
			}
		}
		if row.SessionDurationMinutes != nil {
			ts.sessionSum += *row.SessionDurationMinutes
			ts.sessionCount++
		}
		if row.SentimentRating != nil {
			ts.sentimentSum += *row.SentimentRating
			ts.sentimentCount++
		}
	}

	aggs := make([]models.ToolUsageAggregate, 0, len(groups))
	for name, ts := range groups {
		avgLogins := mean(float64(ts.loginSum), ts.loginCount)
		avgSessions := math.Min(mean(ts.sessionSum, ts.sessionCount), maxAvgSessions)

		avgSentiment := defaultAvgSentiment
		if ts.sentimentCount > 0 {
			avgSentiment = roundHalfUp(ts.sentimentSum/float64(ts.sentimentCount)*10) / 10
		}

		aggs = append(aggs, models.ToolUsageAggregate{
			ToolName:         name,
			TotalUsers:       len(ts.users),
			ActiveUsers:      ts.active,
			AvgSessions:      int(roundHalfUp(avgSessions)),
			AvgSentiment:     avgSentiment,
			UtilizationScore: UtilizationScore(avgLogins, avgSessions),
		})
	}

	sort.Slice(aggs, func(i, j int) bool {
		return aggs[i].ToolName < aggs[j].ToolName
	})

	return aggs
}

// UtilizationScore blends login frequency and session length into a 0-100
// score. Each component saturates at its full-adoption level.
func UtilizationScore(avgLogins, avgSessionMinutes float64) int {
	loginScore := math.Min(100, avgLogins/fullLoginCount*100)
	sessionScore := math.Min(100, avgSessionMinutes/fullSessionMinutes*100)
	return int(roundHalfUp(loginScore*loginWeight + sessionScore*sessionWeight))
}

// ToAuditItems projects aggregates onto the evaluation input.
func ToAuditItems(aggs []models.ToolUsageAggregate) []models.AuditItem {
	items := make([]models.AuditItem, len(aggs))
	for i, a := range aggs {
		items[i] = models.AuditItem{
			ToolName:    a.ToolName,
			Utilization: float64(a.UtilizationScore),
			Sentiment:   roundHalfUp(a.AvgSentiment),
		}
	}
	return items
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// roundHalfUp rounds to the nearest integer with halves going toward
// positive infinity.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
