// Package requirement parses and evaluates the declarative requirement
// specifications of achievements and daily challenges.
//
// A specification is a json object tagged by "kind" (or the legacy "type"
// key), for example {"kind": "count", "domain": "mood_entry", "value": 10}.
// The set of kinds is closed, an unknown kind is rejected instead of being
// guessed.
package requirement

import (
	"context"
	"time"

	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/pkg/enum"
)

type Kind string

var (
	Streak     = enum.New(Kind("streak"))
	Count      = enum.New(Kind("count"))
	DateBefore = enum.New(Kind("date_before"))
	Level      = enum.New(Kind("level"))
	TotalXP    = enum.New(Kind("total_xp"))
)

type Window string

var (
	WindowAll = enum.New(Window("all"))
	WindowDay = enum.New(Window("day"))
)

// Metrics gives the current state of one user at the evaluated moment.
type Metrics interface {
	TotalXP(ctx context.Context) (int64, error)
	Level(ctx context.Context) (int, error)

	// StreakValue returns the current streak of the type and target. An empty
	// target returns the best current streak over all targets of the type.
	// Broken streaks count as zero.
	StreakValue(ctx context.Context, streakType entity.StreakType, targetID string) (int, error)

	// Count returns the number of entries of the domain. WindowDay only
	// counts the entries of the evaluated day.
	Count(ctx context.Context, domain entity.DomainType, window Window) (int64, error)

	RegisteredAt(ctx context.Context) (time.Time, error)
}

type Result struct {
	Satisfied bool

	// Progress is in [0, 1] and equals to 1 when Satisfied.
	Progress float64
}

type Requirement interface {
	Kind() Kind

	// Matches returns true if an event of the domain can change the result
	// of this requirement.
	Matches(domain entity.DomainType) bool

	Evaluate(ctx context.Context, metrics Metrics) (Result, error)
}

func progress(current, target float64) Result {
	if target <= 0 || current >= target {
		return Result{Satisfied: true, Progress: 1}
	}

	if current <= 0 {
		return Result{}
	}

	return Result{Progress: current / target}
}

func isActivityDomain(domain entity.DomainType) bool {
	return enum.IsValid(domain)
}
