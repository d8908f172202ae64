package model

type Ledger struct {
	UserID        string `json:"user_id"`
	TotalXP       int64  `json:"total_xp"`
	Level         int    `json:"level"`
	CurrentXP     int64  `json:"current_xp"`
	XPToNextLevel int64  `json:"xp_to_next_level"`
	Title         string `json:"title"`
}

type GetLedgerRequest struct{}

type GetLedgerResponse Ledger
