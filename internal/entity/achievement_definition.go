package entity

import (
	"time"

	"github.com/questx-lab/progression/pkg/enum"
	"gorm.io/datatypes"
)

type Rarity string

var (
	RarityCommon    = enum.New(Rarity("common"))
	RarityRare      = enum.New(Rarity("rare"))
	RarityEpic      = enum.New(Rarity("epic"))
	RarityLegendary = enum.New(Rarity("legendary"))
)

type AchievementDefinition struct {
	Base

	Code        string `gorm:"unique"`
	Name        string
	Description string

	// Requirement is a tagged specification, for example
	// {"kind": "streak", "streak_type": "habit", "value": 7}.
	Requirement datatypes.JSON
	XPReward    int64
	Rarity      Rarity
	IsSecret    bool
}

// AchievementUnlock is created exactly once per user and achievement, then
// never updated.
type AchievementUnlock struct {
	UserID string `gorm:"primaryKey"`
	User   User   `gorm:"foreignKey:UserID"`

	AchievementID string                `gorm:"primaryKey"`
	Achievement   AchievementDefinition `gorm:"foreignKey:AchievementID"`

	EarnedAt time.Time
	Progress float64
}
