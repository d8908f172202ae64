package entity

import "github.com/questx-lab/progression/pkg/enum"

type StreakType string

var (
	StreakDailyActivity  = enum.New(StreakType("daily_activity"))
	StreakHabit          = enum.New(StreakType("habit"))
	StreakMoodLog        = enum.New(StreakType("mood_log"))
	StreakDreamJournal   = enum.New(StreakType("dream_journal"))
	StreakDailyChallenge = enum.New(StreakType("daily_challenge"))
)

// Streak is never physically deleted. A streak without target stores an
// empty TargetID, so the unique index also covers it.
type Streak struct {
	Base

	UserID     string     `gorm:"not null;uniqueIndex:idx_streaks_user_type_target"`
	User       User       `gorm:"foreignKey:UserID"`
	StreakType StreakType `gorm:"not null;uniqueIndex:idx_streaks_user_type_target"`
	TargetID   string     `gorm:"not null;default:'';uniqueIndex:idx_streaks_user_type_target"`

	CurrentStreak    int
	LongestStreak    int
	LastActivityDate string
	StreakStartDate  string
	IsActive         bool `gorm:"index"`
}

// Domains returns the activity domains which feed the streak type.
func (t StreakType) Domains() []DomainType {
	switch t {
	case StreakDailyActivity:
		return ActivityDomains()
	case StreakHabit:
		return []DomainType{HabitCompletion}
	case StreakMoodLog:
		return []DomainType{MoodEntry}
	case StreakDreamJournal:
		return []DomainType{DreamEntry}
	case StreakDailyChallenge:
		return []DomainType{ChallengeCompletion}
	}

	return nil
}
