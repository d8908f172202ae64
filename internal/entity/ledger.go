package entity

import "time"

// XPLedger only stores the total experience of a user. Level, current
// experience and title are always derived from TotalXP.
type XPLedger struct {
	UserID string `gorm:"primaryKey"`
	User   User   `gorm:"foreignKey:UserID"`

	TotalXP   int64 `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// XPAward is the receipt of an applied award. The primary key makes a
// re-delivered award a no-op.
type XPAward struct {
	UserID  string `gorm:"primaryKey"`
	EventID string `gorm:"primaryKey"`

	Amount    int64
	Source    string
	CreatedAt time.Time
}
