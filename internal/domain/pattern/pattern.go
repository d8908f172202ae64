// Package pattern mines recurring signals out of the entries of one user.
// Mining is a pure full recompute: the same entries always produce the same
// patterns, so a run can be retried or abandoned at any moment.
package pattern

import (
	"time"

	"github.com/questx-lab/progression/internal/entity"
	"golang.org/x/exp/slices"
	"gorm.io/datatypes"
)

const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendSteady  = "steady"
)

type Options struct {
	// MinSupport is the minimum frequency of a kept pattern.
	MinSupport int

	// MaxSamples limits the sample entry ids of a pattern.
	MaxSamples int
}

// Mined is one pattern of a mining run.
type Mined struct {
	Type      entity.PatternType
	Key       string
	Display   string
	Frequency int
	FirstSeen time.Time
	LastSeen  time.Time
	Domains   map[string]int
	SampleIDs []string

	// Trend is only set for emotional trends.
	Trend string

	spellings   map[string]int
	occurrences []time.Time
}

// Payload is the stored payload of the pattern.
func (m *Mined) Payload() map[string]any {
	payload := map[string]any{
		"display":          m.Display,
		"domains":          m.Domains,
		"sample_entry_ids": m.SampleIDs,
	}

	if m.Trend != "" {
		payload["trend"] = m.Trend
	}

	return payload
}

// Corruption is a signal column which could not be decoded. The entry adds
// nothing to the pattern type of the column.
type Corruption struct {
	EntryID     string
	PatternType entity.PatternType
	Err         error
}

// Types returns the mined pattern types.
func Types() []entity.PatternType {
	return []entity.PatternType{entity.RecurringTheme, entity.SymbolFrequency, entity.EmotionalTrend}
}

func signalOf(entry *entity.Entry, patternType entity.PatternType) datatypes.JSON {
	switch patternType {
	case entity.RecurringTheme:
		return entry.Themes
	case entity.SymbolFrequency:
		return entry.Symbols
	case entity.EmotionalTrend:
		return entry.Emotions
	}

	return nil
}

// Mine counts the signals of entries. Each entry counts at most once per key.
// The result is ordered by frequency desc, then type and key.
func Mine(entries []entity.Entry, opts Options) ([]*Mined, []Corruption) {
	sorted := make([]*entity.Entry, 0, len(entries))
	for i := range entries {
		sorted = append(sorted, &entries[i])
	}

	slices.SortStableFunc(sorted, func(a, b *entity.Entry) bool {
		if !a.OccurredAt.Equal(b.OccurredAt) {
			return a.OccurredAt.Before(b.OccurredAt)
		}
		return a.ID < b.ID
	})

	var corruptions []Corruption
	mined := map[entity.PatternType]map[string]*Mined{}
	for _, patternType := range Types() {
		mined[patternType] = map[string]*Mined{}
	}

	for _, entry := range sorted {
		for _, patternType := range Types() {
			values, err := DecodeSignal(signalOf(entry, patternType))
			if err != nil {
				corruptions = append(corruptions, Corruption{
					EntryID:     entry.ID,
					PatternType: patternType,
					Err:         err,
				})
				continue
			}

			seen := map[string]bool{}
			for _, v := range values {
				key := NormalizeKey(v)
				if key == "" {
					continue
				}

				m, ok := mined[patternType][key]
				if !ok {
					m = &Mined{
						Type:      patternType,
						Key:       key,
						FirstSeen: entry.OccurredAt,
						Domains:   map[string]int{},
						SampleIDs: []string{},
						spellings: map[string]int{},
					}
					mined[patternType][key] = m
				}

				m.spellings[displayForm(v)]++
				if seen[key] {
					continue
				}
				seen[key] = true

				m.Frequency++
				m.LastSeen = entry.OccurredAt
				m.Domains[string(entry.Domain)]++
				m.occurrences = append(m.occurrences, entry.OccurredAt)
				if len(m.SampleIDs) < opts.MaxSamples {
					m.SampleIDs = append(m.SampleIDs, entry.ID)
				}
			}
		}
	}

	result := []*Mined{}
	for _, patternType := range Types() {
		for _, m := range mined[patternType] {
			if m.Frequency < opts.MinSupport {
				continue
			}

			m.Display = mostCommon(m.spellings)
			if patternType == entity.EmotionalTrend {
				m.Trend = trendOf(m.occurrences, m.FirstSeen, m.LastSeen)
			}

			result = append(result, m)
		}
	}

	slices.SortFunc(result, func(a, b *Mined) bool {
		if a.Frequency != b.Frequency {
			return a.Frequency > b.Frequency
		}

		if a.Type != b.Type {
			return a.Type < b.Type
		}

		return a.Key < b.Key
	})

	return result, corruptions
}

// mostCommon returns the most used spelling. Ties are broken by the smallest
// spelling so the result does not depend on map order.
func mostCommon(spellings map[string]int) string {
	best, bestCount := "", 0
	for s, count := range spellings {
		if count > bestCount || (count == bestCount && s < best) {
			best, bestCount = s, count
		}
	}

	return best
}

// trendOf compares the occurrences of the first and the second half of the
// span between first and last.
func trendOf(occurrences []time.Time, first, last time.Time) string {
	if !last.After(first) {
		return TrendSteady
	}

	middle := first.Add(last.Sub(first) / 2)
	before, after := 0, 0
	for _, t := range occurrences {
		if t.Before(middle) {
			before++
		} else {
			after++
		}
	}

	switch {
	case after > before:
		return TrendRising
	case after < before:
		return TrendFalling
	default:
		return TrendSteady
	}
}
