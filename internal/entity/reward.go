package entity

import (
	"time"

	"gorm.io/datatypes"
)

type Reward struct {
	Base

	Code string `gorm:"unique"`
	Name string

	// Kind is the cosmetic category, for example theme or avatar_frame.
	Kind          string
	RequiredLevel int
}

type UserReward struct {
	UserID string `gorm:"primaryKey"`
	User   User   `gorm:"foreignKey:UserID"`

	RewardID string `gorm:"primaryKey"`
	Reward   Reward `gorm:"foreignKey:RewardID"`

	GrantedAt time.Time
}

type DailyChallenge struct {
	Base

	Code        string `gorm:"unique"`
	Title       string
	Description string

	Requirement   datatypes.JSON
	RequiredLevel int
	XPReward      int64

	// BonusXP is awarded additionally when the challenge is completed before
	// BonusBeforeHour in the engine timezone. Zero BonusBeforeHour means no
	// bonus.
	BonusXP         int64
	BonusBeforeHour int

	// ActiveDate limits the challenge to a single day. An empty value means
	// the challenge is available every day.
	ActiveDate string
}

type DailyChallengeCompletion struct {
	UserID      string `gorm:"primaryKey"`
	ChallengeID string `gorm:"primaryKey"`
	Date        string `gorm:"primaryKey"`

	Challenge DailyChallenge `gorm:"foreignKey:ChallengeID"`

	CompletedAt time.Time
	XPAwarded   int64
}
