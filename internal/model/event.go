package model

import "time"

// Event is the envelope of an activity which happened in another module.
type Event struct {
	EventID    string         `json:"event_id"`
	UserID     string         `json:"user_id"`
	DomainType string         `json:"domain_type"`
	Timestamp  time.Time      `json:"timestamp"`
	Payload    map[string]any `json:"payload"`
}

// EventPayload lists the payload keys read by the engine. Other keys are
// kept in the stored payload.
type EventPayload struct {
	HabitID     string `mapstructure:"habit_id"`
	ChallengeID string `mapstructure:"challenge_id"`
	MoodScore   *int64 `mapstructure:"mood_score"`
	EnergyLevel *int64 `mapstructure:"energy_level"`
}

type IngestEventRequest Event

type IngestEventResponse struct {
	EventID     string                `json:"event_id"`
	Duplicate   bool                  `json:"duplicate"`
	Ledger      Ledger                `json:"ledger"`
	Unlocks     []Unlock              `json:"unlocks"`
	Completions []ChallengeCompletion `json:"completions"`
	Rewards     []Reward              `json:"rewards"`
}

// UnlockNotification is published after the transaction of an event is
// committed.
type UnlockNotification struct {
	EventID     string                `json:"event_id"`
	UserID      string                `json:"user_id"`
	Ledger      Ledger                `json:"ledger"`
	LeveledUp   bool                  `json:"leveled_up"`
	Unlocks     []Unlock              `json:"unlocks,omitempty"`
	Completions []ChallengeCompletion `json:"completions,omitempty"`
	Rewards     []Reward              `json:"rewards,omitempty"`
}

type RegisterUserRequest struct {
	Name         string    `json:"name"`
	RegisteredAt time.Time `json:"registered_at"`
}

type RegisterUserResponse struct {
	Created bool `json:"created"`
}
