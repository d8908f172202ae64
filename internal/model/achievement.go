package model

type Achievement struct {
	ID          string         `json:"id"`
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Requirement map[string]any `json:"requirement,omitempty"`
	XPReward    int64          `json:"xp_reward"`
	Rarity      string         `json:"rarity"`
	IsSecret    bool           `json:"is_secret"`
}

type Unlock struct {
	AchievementID string `json:"achievement_id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	Rarity        string `json:"rarity"`
	XPReward      int64  `json:"xp_reward"`
	EarnedAt      string `json:"earned_at"`
}

type UnlockedAchievement struct {
	Achievement Achievement `json:"achievement"`
	EarnedAt    string      `json:"earned_at"`
}

type AchievementProgress struct {
	Achievement Achievement `json:"achievement"`
	Progress    float64     `json:"progress"`
}

type GetAchievementsRequest struct{}

type GetAchievementsResponse struct {
	Unlocked   []UnlockedAchievement `json:"unlocked"`
	InProgress []AchievementProgress `json:"in_progress"`
}
