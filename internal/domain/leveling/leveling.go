// Package leveling derives the level state of a user from the total
// experience. Nothing in this package is stored, every value is recomputed
// from the total experience.
package leveling

import (
	"math"
	"math/big"

	mathUtil "github.com/pkg/math"
)

const (
	baseThreshold = 100

	// The threshold grows by 6/5 each level.
	growthNum = 6
	growthDen = 5
)

type State struct {
	TotalXP       int64
	Level         int
	CurrentXP     int64
	XPToNextLevel int64
	Title         string
}

// Threshold returns the experience needed to go from level n to n+1, which is
// floor(100 * 1.2^(n-1)). It is computed on integers so that no level is off
// by one because of float rounding.
func Threshold(n int) int64 {
	n = mathUtil.MaxInt(n, 1)
	num := new(big.Int).Exp(big.NewInt(growthNum), big.NewInt(int64(n-1)), nil)
	num.Mul(num, big.NewInt(baseThreshold))
	den := new(big.Int).Exp(big.NewInt(growthDen), big.NewInt(int64(n-1)), nil)
	num.Quo(num, den)

	if !num.IsInt64() {
		return math.MaxInt64
	}

	return num.Int64()
}

// Derive returns the level state of totalXP. Negative values are treated as
// zero.
func Derive(totalXP int64) State {
	totalXP = mathUtil.MaxInt64(totalXP, 0)

	level := 1
	remainder := totalXP
	for {
		threshold := Threshold(level)
		if remainder < threshold {
			return State{
				TotalXP:       totalXP,
				Level:         level,
				CurrentXP:     remainder,
				XPToNextLevel: threshold,
				Title:         Title(level),
			}
		}

		remainder -= threshold
		level++
	}
}

func Title(level int) string {
	switch {
	case level < 5:
		return "Beginner"
	case level < 10:
		return "Explorer"
	case level < 20:
		return "Achiever"
	case level < 35:
		return "Expert"
	case level < 50:
		return "Master"
	default:
		return "Grandmaster"
	}
}
