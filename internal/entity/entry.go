package entity

import (
	"database/sql"
	"time"

	"github.com/questx-lab/progression/pkg/enum"
	"gorm.io/datatypes"
)

type DomainType string

var (
	HabitCompletion     = enum.New(DomainType("habit_completion"))
	MoodEntry           = enum.New(DomainType("mood_entry"))
	DreamEntry          = enum.New(DomainType("dream_entry"))
	DecisionFinalized   = enum.New(DomainType("decision_finalized"))
	ChallengeCompletion = enum.New(DomainType("challenge_completion"))
)

// LevelUp is the internal trigger of a level change. It is not registered as
// an activity domain, so it never comes from an event.
const LevelUp DomainType = "level_up"

// Entry is a normalized activity event. Its ID is the event id, which is only
// unique per user.
type Entry struct {
	UserID string     `gorm:"primarykey;index:idx_entries_user_domain"`
	ID     string     `gorm:"primarykey"`
	Domain DomainType `gorm:"not null;index:idx_entries_user_domain"`

	// TargetID is the habit id of habit completions or the challenge id of
	// challenge completions.
	TargetID   string
	OccurredAt time.Time `gorm:"index"`
	Day        string    `gorm:"index"`

	// Themes, Symbols and Emotions are json arrays of strings which are
	// attached upstream. They are decoded leniently by readers.
	Themes   datatypes.JSON
	Symbols  datatypes.JSON
	Emotions datatypes.JSON

	MoodScore   sql.NullInt64
	EnergyLevel sql.NullInt64

	Payload   datatypes.JSON
	CreatedAt time.Time
}

// ActivityDomains returns all domains which can come from an event.
func ActivityDomains() []DomainType {
	return enum.Values[DomainType]()
}
