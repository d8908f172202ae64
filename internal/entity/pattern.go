package entity

import (
	"time"

	"github.com/questx-lab/progression/pkg/enum"
	"gorm.io/datatypes"
)

type PatternType string

var (
	RecurringTheme  = enum.New(PatternType("recurring_theme"))
	SymbolFrequency = enum.New(PatternType("symbol_frequency"))
	EmotionalTrend  = enum.New(PatternType("emotional_trend"))
)

// Pattern rows are replaced wholesale by each mining run, so they are hard
// deleted and carry no DeletedAt.
type Pattern struct {
	ID          string      `gorm:"primarykey"`
	UserID      string      `gorm:"not null;uniqueIndex:idx_patterns_user_type_key"`
	PatternType PatternType `gorm:"not null;uniqueIndex:idx_patterns_user_type_key"`
	PatternKey  string      `gorm:"not null;uniqueIndex:idx_patterns_user_type_key"`

	Payload   datatypes.JSON
	Frequency int
	FirstSeen time.Time
	LastSeen  time.Time
	CreatedAt time.Time
}
