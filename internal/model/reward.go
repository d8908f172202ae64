package model

type Reward struct {
	ID            string `json:"id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	Kind          string `json:"kind"`
	RequiredLevel int    `json:"required_level"`
	GrantedAt     string `json:"granted_at,omitempty"`
}

type ChallengeCompletion struct {
	ChallengeID string `json:"challenge_id"`
	Code        string `json:"code"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	XPAwarded   int64  `json:"xp_awarded"`
	CompletedAt string `json:"completed_at"`
}

type GetRewardsRequest struct {
	// Date filters the challenge completions of a day. Empty means today.
	Date string `form:"date" json:"date"`
}

type GetRewardsResponse struct {
	Rewards     []Reward              `json:"rewards"`
	Completions []ChallengeCompletion `json:"completions"`
}
