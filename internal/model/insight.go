package model

type Insight struct {
	ID          string         `json:"id"`
	InsightType string         `json:"insight_type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Suggestion  string         `json:"suggestion,omitempty"`
	DataPoints  map[string]any `json:"data_points"`
	Confidence  float64        `json:"confidence"`
	Priority    string         `json:"priority"`
	Status      string         `json:"status"`
	Actionable  bool           `json:"actionable"`
	Timeframe   string         `json:"timeframe"`
	WindowStart string         `json:"window_start"`
	WindowEnd   string         `json:"window_end"`
	CreatedAt   string         `json:"created_at"`
}

type GetInsightsRequest struct {
	Status string `form:"status" json:"status"`
}

type GetInsightsResponse struct {
	Insights []Insight `json:"insights"`
}

type SynthesizeInsightsRequest struct {
	Timeframe string `json:"timeframe"`
}

type SynthesizeInsightsResponse struct {
	Insights []Insight `json:"insights"`
}

type UpdateInsightStatusRequest struct {
	InsightID string `json:"insight_id"`
	Status    string `json:"status"`
}

type UpdateInsightStatusResponse struct{}
