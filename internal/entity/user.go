package entity

import "time"

type User struct {
	Base
	Name string

	// RegisteredAt is the registration time of the user profile. It is used
	// by date-gated requirements.
	RegisteredAt time.Time
}
