package models

// UsageRecord is one row of uploaded adoption data. Optional numeric columns
// are nil when the cell was absent or blank.
type UsageRecord struct {
	ToolName               string   `json:"tool_name"`
	UserID                 string   `json:"user_id,omitempty"`
	LoginCount             *int     `json:"login_count,omitempty" validate:"omitempty,gte=0"`
	LastLogin              string   `json:"last_login,omitempty"`
	SessionDurationMinutes *float64 `json:"session_duration_minutes,omitempty" validate:"omitempty,gte=0,lte=525600"`
	SentimentRating        *float64 `json:"sentiment_rating,omitempty" validate:"omitempty,gte=0,lte=10"`
}

// ToolUsageAggregate is the per-tool reduction of a batch of UsageRecords.
type ToolUsageAggregate struct {
	ToolName         string  `json:"tool_name"`
	TotalUsers       int     `json:"total_users"`
	ActiveUsers      int     `json:"active_users"`
	AvgSessions      int     `json:"avg_sessions"`
	AvgSentiment     float64 `json:"avg_sentiment"`
	UtilizationScore int     `json:"utilization_score"`
}

// AuditItem is one tool's metrics as submitted for evaluation.
type AuditItem struct {
	ToolName    string  `json:"tool_name" validate:"required,max=100,toolname"`
	Utilization float64 `json:"utilization" validate:"min=0,max=100"`
	Sentiment   float64 `json:"sentiment" validate:"min=0,max=10"`
}

// AuditRequest is the body of an adoption evaluation. Exactly one of
// AirlineID and AirlineName identifies the airline.
type AuditRequest struct {
	AirlineID   string      `json:"airline_id,omitempty" validate:"omitempty,uuid"`
	AirlineName string      `json:"airline_name,omitempty" validate:"omitempty,max=100"`
	Items       []AuditItem `json:"items" validate:"required,min=1,max=50,dive"`
}

// ScoredItem is an AuditItem with its calculated score.
type ScoredItem struct {
	AuditItem
	CalculatedScore int
}

// ToolSuggestion is a model-written recommendation for a named tool.
type ToolSuggestion struct {
	ToolName       string `json:"tool_name"`
	Recommendation string `json:"recommendation"`
}

// Recommendation is the per-tool outcome returned to the caller.
type Recommendation struct {
	ToolName       string `json:"tool_name"`
	Score          int    `json:"score"`
	Recommendation string `json:"recommendation"`
}

// AuditResult is the response of an adoption evaluation.
type AuditResult struct {
	AuditID         string           `json:"audit_id"`
	OverallScore    int              `json:"overall_score"`
	Summary         string           `json:"summary"`
	Recommendations []Recommendation `json:"recommendations"`
}
