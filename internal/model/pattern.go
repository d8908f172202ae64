package model

type Pattern struct {
	ID          string         `json:"id"`
	PatternType string         `json:"pattern_type"`
	PatternKey  string         `json:"pattern_key"`
	Payload     map[string]any `json:"payload"`
	Frequency   int            `json:"frequency"`
	FirstSeen   string         `json:"first_seen"`
	LastSeen    string         `json:"last_seen"`
}

type GetPatternsRequest struct {
	PatternType string `form:"pattern_type" json:"pattern_type"`
}

type GetPatternsResponse struct {
	Patterns []Pattern `json:"patterns"`
}

type AnalyzePatternsRequest struct {
	// Timeframe of the synthesized insights. Empty means month.
	Timeframe string `json:"timeframe"`
}

type AnalyzePatternsResponse struct {
	Patterns []Pattern `json:"patterns"`
	Insights []Insight `json:"insights"`
}
