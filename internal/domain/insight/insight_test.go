package insight

import (
	"testing"
	"time"

	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/pkg/errorx"
	"github.com/stretchr/testify/require"
)

func Test_WindowOf(t *testing.T) {
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)

	w, err := WindowOf(entity.TimeframeWeek, now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 24, 12, 0, 0, 0, time.UTC), w.Start)
	require.Equal(t, now, w.End)
	require.Equal(t, 7, w.Days)

	w, err = WindowOf(entity.TimeframeYear, now)
	require.NoError(t, err)
	require.Equal(t, 365, w.Days)

	_, err = WindowOf(entity.Timeframe("decade"), now)
	require.ErrorIs(t, err, errorx.New(errorx.BadRequest, ""))
}

func Test_Confidence(t *testing.T) {
	require.Equal(t, 0.0, Confidence(0, 10))
	require.Equal(t, 0.5, Confidence(5, 10))
	require.Equal(t, 1.0, Confidence(10, 10))
	require.Equal(t, 1.0, Confidence(25, 10))
	require.Equal(t, 1.0, Confidence(1, 0))
}

func Test_Priority_Monotone(t *testing.T) {
	previous := -1
	for sample := 0; sample <= 12; sample++ {
		_, rank := Priority(Confidence(sample, 10), false)
		require.GreaterOrEqual(t, rank, previous)
		previous = rank
	}

	for sample := 0; sample <= 12; sample++ {
		_, passive := Priority(Confidence(sample, 10), false)
		_, actionable := Priority(Confidence(sample, 10), true)
		require.GreaterOrEqual(t, actionable, passive)
	}

	tests := []struct {
		confidence float64
		actionable bool
		want       entity.InsightPriority
	}{
		{confidence: 0.1, actionable: false, want: entity.PriorityLow},
		{confidence: 0.5, actionable: false, want: entity.PriorityMedium},
		{confidence: 1, actionable: false, want: entity.PriorityHigh},
		{confidence: 0.5, actionable: true, want: entity.PriorityHigh},
		{confidence: 0.9, actionable: true, want: entity.PriorityUrgent},
	}

	for _, tt := range tests {
		got, _ := Priority(tt.confidence, tt.actionable)
		require.Equal(t, tt.want, got)
	}
}

func Test_Score(t *testing.T) {
	scored := Score([]Candidate{
		{Type: entity.MoodDistribution, Sample: 0},
		{Type: entity.EnergyDistribution, Sample: 6, Actionable: true},
	}, 10)

	require.Len(t, scored, 1)
	require.Equal(t, entity.EnergyDistribution, scored[0].Type)
	require.Equal(t, 0.6, scored[0].Confidence)
	require.Equal(t, entity.PriorityHigh, scored[0].Priority)
	require.Equal(t, 2, scored[0].Rank)
}

func Test_Distribution(t *testing.T) {
	c := Distribution(entity.MoodDistribution, []int64{2, 3, 3, 11, 0}, 4)
	require.Equal(t, 3, c.Sample)
	require.True(t, c.Actionable)
	require.Equal(t, []int{0, 1, 2, 0, 0, 0, 0, 0, 0, 0}, c.DataPoints["histogram"])
	require.Equal(t, 2.67, c.DataPoints["mean"])
	require.Equal(t, "Mood averaged 2.7 out of 10 over 3 logs.", c.Description)

	c = Distribution(entity.EnergyDistribution, []int64{7, 9}, 4)
	require.False(t, c.Actionable)
	require.Empty(t, c.Suggestion)
	require.Equal(t, "Energy overview", c.Title)

	c = Distribution(entity.EnergyDistribution, nil, 4)
	require.Equal(t, 0, c.Sample)
	require.NotContains(t, c.DataPoints, "mean")
}

func Test_HabitAdherence(t *testing.T) {
	candidates := HabitAdherence([]HabitCompletion{
		{HabitID: "walk", Day: "2024-03-01"},
		{HabitID: "walk", Day: "2024-03-01"},
		{HabitID: "walk", Day: "2024-03-02"},
		{HabitID: "read", Day: "2024-03-01"},
		{HabitID: "", Day: "2024-03-01"},
	}, 4, 0.5)

	require.Len(t, candidates, 2)
	require.Equal(t, "read", candidates[0].DataPoints["habit_id"])
	require.Equal(t, 0.25, candidates[0].DataPoints["rate"])
	require.True(t, candidates[0].Actionable)

	require.Equal(t, "walk", candidates[1].DataPoints["habit_id"])
	require.Equal(t, 2, candidates[1].Sample)
	require.Equal(t, 0.5, candidates[1].DataPoints["rate"])
	require.False(t, candidates[1].Actionable)
	require.Equal(t, "Completed on 2 of 4 days (50%).", candidates[1].Description)
}

func Test_PatternHighlights(t *testing.T) {
	candidates := PatternHighlights([]HighlightedPattern{
		{Type: entity.RecurringTheme, Key: "water", Display: "Water", Frequency: 3},
		{Type: entity.RecurringTheme, Key: "flying", Display: "Flying", Frequency: 5},
		{Type: entity.RecurringTheme, Key: "school", Display: "school", Frequency: 2},
		{Type: entity.EmotionalTrend, Key: "calm", Display: "calm", Frequency: 4},
	}, 2)

	require.Len(t, candidates, 2)
	require.Equal(t, "Recurring themes", candidates[0].Title)
	require.Equal(t, 10, candidates[0].Sample)
	require.Equal(t, `"Flying" came up 5 times in this period.`, candidates[0].Description)
	require.Len(t, candidates[0].DataPoints["top"], 2)

	require.Equal(t, "Emotional patterns", candidates[1].Title)
	require.Equal(t, "emotional_trend", candidates[1].DataPoints["pattern_type"])
}
