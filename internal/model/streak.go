package model

type Streak struct {
	StreakType       string `json:"streak_type"`
	TargetID         string `json:"target_id,omitempty"`
	CurrentStreak    int    `json:"current_streak"`
	LongestStreak    int    `json:"longest_streak"`
	LastActivityDate string `json:"last_activity_date"`
	StreakStartDate  string `json:"streak_start_date"`
	IsActive         bool   `json:"is_active"`

	// AtRisk is true when the last activity was yesterday, so the streak
	// breaks if nothing happens today.
	AtRisk   bool `json:"at_risk"`
	IsBroken bool `json:"is_broken"`
}

type GetStreaksRequest struct{}

type GetStreaksResponse struct {
	Streaks []Streak `json:"streaks"`
}
