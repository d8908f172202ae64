package insight

import (
	"fmt"

	"github.com/questx-lab/progression/internal/domain/pattern"
	"github.com/questx-lab/progression/internal/entity"
	"golang.org/x/exp/slices"
)

var patternTitles = map[entity.PatternType]string{
	entity.RecurringTheme:  "Recurring themes",
	entity.SymbolFrequency: "Frequent symbols",
	entity.EmotionalTrend:  "Emotional patterns",
}

// HighlightedPattern is a pattern which was seen inside the window.
type HighlightedPattern struct {
	Type      entity.PatternType
	Key       string
	Display   string
	Frequency int
}

// PatternHighlights creates one candidate per pattern type. The sample is the
// sum of the frequencies, the top patterns become the data points.
func PatternHighlights(patterns []HighlightedPattern, top int) []Candidate {
	byType := map[entity.PatternType][]HighlightedPattern{}
	for _, p := range patterns {
		byType[p.Type] = append(byType[p.Type], p)
	}

	result := []Candidate{}
	for _, patternType := range pattern.Types() {
		group := byType[patternType]
		if len(group) == 0 {
			continue
		}

		slices.SortStableFunc(group, func(a, b HighlightedPattern) bool {
			if a.Frequency != b.Frequency {
				return a.Frequency > b.Frequency
			}
			return a.Key < b.Key
		})

		sample := 0
		for _, p := range group {
			sample += p.Frequency
		}

		if len(group) > top {
			group = group[:top]
		}

		points := []map[string]any{}
		for _, p := range group {
			points = append(points, map[string]any{
				"key":       p.Key,
				"display":   p.Display,
				"frequency": p.Frequency,
			})
		}

		result = append(result, Candidate{
			Type:  entity.PatternHighlight,
			Title: patternTitles[patternType],
			Description: fmt.Sprintf("%q came up %d times in this period.",
				group[0].Display, group[0].Frequency),
			DataPoints: map[string]any{
				"pattern_type": string(patternType),
				"top":          points,
			},
			Sample: sample,
		})
	}

	return result
}

// Distribution creates the histogram candidate of mood scores or energy
// levels. Scores outside 1-10 are ignored. It is actionable when the mean is
// below low.
func Distribution(insightType entity.InsightType, scores []int64, low float64) Candidate {
	histogram := make([]int, 10)
	sum, sample := int64(0), 0
	for _, s := range scores {
		if s < 1 || s > 10 {
			continue
		}

		histogram[s-1]++
		sum += s
		sample++
	}

	name := "Mood"
	if insightType == entity.EnergyDistribution {
		name = "Energy"
	}

	c := Candidate{
		Type:   insightType,
		Title:  name + " overview",
		Sample: sample,
		DataPoints: map[string]any{
			"histogram": histogram,
		},
	}

	if sample == 0 {
		return c
	}

	mean := float64(sum) / float64(sample)
	c.DataPoints["mean"] = round2(mean)
	c.Description = fmt.Sprintf("%s averaged %.1f out of 10 over %d logs.", name, mean, sample)
	if mean < low {
		c.Actionable = true
		c.Suggestion = fmt.Sprintf("%s has been low lately. Consider what drains it and plan some recovery time.", name)
	}

	return c
}

// HabitCompletion is one completion of a habit inside the window.
type HabitCompletion struct {
	HabitID string
	Day     string
}

// HabitAdherence creates one candidate per habit with the rate of distinct
// completion days over the days of the window. It is actionable when the
// rate is below threshold.
func HabitAdherence(completions []HabitCompletion, windowDays int, threshold float64) []Candidate {
	days := map[string]map[string]struct{}{}
	for _, c := range completions {
		if c.HabitID == "" {
			continue
		}

		if days[c.HabitID] == nil {
			days[c.HabitID] = map[string]struct{}{}
		}
		days[c.HabitID][c.Day] = struct{}{}
	}

	habitIDs := make([]string, 0, len(days))
	for id := range days {
		habitIDs = append(habitIDs, id)
	}
	slices.Sort(habitIDs)

	result := []Candidate{}
	for _, id := range habitIDs {
		count := len(days[id])
		rate := float64(count) / float64(windowDays)
		if rate > 1 {
			rate = 1
		}

		c := Candidate{
			Type:        entity.HabitAdherence,
			Title:       "Habit consistency",
			Description: fmt.Sprintf("Completed on %d of %d days (%s).", count, windowDays, percent(rate)),
			DataPoints: map[string]any{
				"habit_id":       id,
				"completed_days": count,
				"window_days":    windowDays,
				"rate":           round2(rate),
			},
			Sample: count,
		}

		if rate < threshold {
			c.Actionable = true
			c.Suggestion = "Try attaching this habit to an existing daily routine to make it easier to keep."
		}

		result = append(result, c)
	}

	return result
}
