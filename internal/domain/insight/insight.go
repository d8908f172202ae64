// Package insight turns patterns and entries of a time window into scored
// insight candidates. It does not read or write storage.
package insight

import (
	"fmt"
	"math"
	"time"

	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/pkg/errorx"
)

var timeframeDays = map[entity.Timeframe]int{
	entity.TimeframeWeek:    7,
	entity.TimeframeMonth:   30,
	entity.TimeframeQuarter: 90,
	entity.TimeframeYear:    365,
}

type Window struct {
	Start time.Time
	End   time.Time
	Days  int
}

// WindowOf returns the window of the timeframe which ends at now.
func WindowOf(timeframe entity.Timeframe, now time.Time) (Window, error) {
	days, ok := timeframeDays[timeframe]
	if !ok {
		return Window{}, errorx.New(errorx.BadRequest, "Invalid timeframe %s", timeframe)
	}

	return Window{
		Start: now.AddDate(0, 0, -days),
		End:   now,
		Days:  days,
	}, nil
}

type Options struct {
	SampleThreshold int
	TopPatterns     int
	LowMood         float64
	LowEnergy       float64
	Adherence       float64
}

type Candidate struct {
	Type        entity.InsightType
	Title       string
	Description string
	Suggestion  string
	DataPoints  map[string]any
	Sample      int
	Actionable  bool
}

type Scored struct {
	Candidate

	Confidence float64
	Priority   entity.InsightPriority
	Rank       int
}

// Confidence grows linearly with the sample size until threshold.
func Confidence(sample, threshold int) float64 {
	if threshold <= 0 {
		return 1
	}

	return math.Min(1, float64(sample)/float64(threshold))
}

// Priority is monotone in both the confidence and the actionability. The
// rank orders priorities from low (0) to urgent (3).
func Priority(confidence float64, actionable bool) (entity.InsightPriority, int) {
	score := confidence
	if actionable {
		score += 0.5
	}

	switch {
	case score >= 1.3:
		return entity.PriorityUrgent, 3
	case score >= 0.9:
		return entity.PriorityHigh, 2
	case score >= 0.5:
		return entity.PriorityMedium, 1
	default:
		return entity.PriorityLow, 0
	}
}

// Score drops the candidates without sample and scores the others.
func Score(candidates []Candidate, threshold int) []Scored {
	result := []Scored{}
	for _, c := range candidates {
		if c.Sample <= 0 {
			continue
		}

		confidence := Confidence(c.Sample, threshold)
		priority, rank := Priority(confidence, c.Actionable)
		result = append(result, Scored{
			Candidate:  c,
			Confidence: confidence,
			Priority:   priority,
			Rank:       rank,
		})
	}

	return result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}
