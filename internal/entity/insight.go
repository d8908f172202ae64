package entity

import (
	"time"

	"github.com/questx-lab/progression/pkg/enum"
	"gorm.io/datatypes"
)

type InsightType string

var (
	PatternHighlight   = enum.New(InsightType("pattern_highlight"))
	MoodDistribution   = enum.New(InsightType("mood_distribution"))
	EnergyDistribution = enum.New(InsightType("energy_distribution"))
	HabitAdherence     = enum.New(InsightType("habit_adherence"))
)

type InsightStatus string

var (
	InsightActive       = enum.New(InsightStatus("active"))
	InsightAcknowledged = enum.New(InsightStatus("acknowledged"))
	InsightDismissed    = enum.New(InsightStatus("dismissed"))
)

type InsightPriority string

var (
	PriorityLow    = enum.New(InsightPriority("low"))
	PriorityMedium = enum.New(InsightPriority("medium"))
	PriorityHigh   = enum.New(InsightPriority("high"))
	PriorityUrgent = enum.New(InsightPriority("urgent"))
)

type Timeframe string

var (
	TimeframeWeek    = enum.New(Timeframe("week"))
	TimeframeMonth   = enum.New(Timeframe("month"))
	TimeframeQuarter = enum.New(Timeframe("quarter"))
	TimeframeYear    = enum.New(Timeframe("year"))
)

type Insight struct {
	ID          string      `gorm:"primarykey"`
	UserID      string      `gorm:"not null;index:idx_insights_user_status"`
	InsightType InsightType `gorm:"not null"`

	Title       string
	Description string
	Suggestion  string
	DataPoints  datatypes.JSON

	Confidence float64
	Priority   InsightPriority
	Status     InsightStatus `gorm:"not null;index:idx_insights_user_status"`
	Actionable bool

	// PriorityRank orders insights by priority in queries, urgent is 3 and
	// low is 0.
	PriorityRank int

	Timeframe   Timeframe
	WindowStart time.Time
	WindowEnd   time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
