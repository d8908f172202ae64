package requirement

import (
	"context"
	"time"

	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/pkg/dateutil"
	"golang.org/x/exp/slices"
)

type streakRequirement struct {
	StreakType string `mapstructure:"streak_type" structs:"streak_type"`
	TargetID   string `mapstructure:"target_id" structs:"target_id,omitempty"`
	Value      int    `mapstructure:"value" structs:"value"`

	streakType entity.StreakType
}

func (r *streakRequirement) Kind() Kind {
	return Streak
}

func (r *streakRequirement) Matches(domain entity.DomainType) bool {
	return slices.Contains(r.streakType.Domains(), domain)
}

func (r *streakRequirement) Evaluate(ctx context.Context, metrics Metrics) (Result, error) {
	current, err := metrics.StreakValue(ctx, r.streakType, r.TargetID)
	if err != nil {
		return Result{}, err
	}

	return progress(float64(current), float64(r.Value)), nil
}

type countRequirement struct {
	Domain string `mapstructure:"domain" structs:"domain"`
	Value  int64  `mapstructure:"value" structs:"value"`
	Window string `mapstructure:"window" structs:"window,omitempty"`

	domain entity.DomainType
	window Window
}

func (r *countRequirement) Kind() Kind {
	return Count
}

func (r *countRequirement) Matches(domain entity.DomainType) bool {
	return r.domain == domain
}

func (r *countRequirement) Evaluate(ctx context.Context, metrics Metrics) (Result, error) {
	current, err := metrics.Count(ctx, r.domain, r.window)
	if err != nil {
		return Result{}, err
	}

	return progress(float64(current), float64(r.Value)), nil
}

type dateBeforeRequirement struct {
	Value string `mapstructure:"value" structs:"value"`

	date time.Time
}

func (r *dateBeforeRequirement) Kind() Kind {
	return DateBefore
}

func (r *dateBeforeRequirement) Matches(domain entity.DomainType) bool {
	return isActivityDomain(domain)
}

func (r *dateBeforeRequirement) Evaluate(ctx context.Context, metrics Metrics) (Result, error) {
	registeredAt, err := metrics.RegisteredAt(ctx)
	if err != nil {
		return Result{}, err
	}

	if registeredAt.IsZero() || !registeredAt.Before(r.date) {
		return Result{}, nil
	}

	return Result{Satisfied: true, Progress: 1}, nil
}

type levelRequirement struct {
	Value int `mapstructure:"value" structs:"value"`
}

func (r *levelRequirement) Kind() Kind {
	return Level
}

func (r *levelRequirement) Matches(domain entity.DomainType) bool {
	return domain == entity.LevelUp || isActivityDomain(domain)
}

func (r *levelRequirement) Evaluate(ctx context.Context, metrics Metrics) (Result, error) {
	current, err := metrics.Level(ctx)
	if err != nil {
		return Result{}, err
	}

	return progress(float64(current), float64(r.Value)), nil
}

type totalXPRequirement struct {
	Value int64 `mapstructure:"value" structs:"value"`
}

func (r *totalXPRequirement) Kind() Kind {
	return TotalXP
}

func (r *totalXPRequirement) Matches(domain entity.DomainType) bool {
	return domain == entity.LevelUp || isActivityDomain(domain)
}

func (r *totalXPRequirement) Evaluate(ctx context.Context, metrics Metrics) (Result, error) {
	current, err := metrics.TotalXP(ctx)
	if err != nil {
		return Result{}, err
	}

	return progress(float64(current), float64(r.Value)), nil
}

func parseDate(value string) (time.Time, error) {
	return time.Parse(dateutil.DayLayout, value)
}
