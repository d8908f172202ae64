package requirement

import (
	"context"
	"testing"
	"time"

	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/pkg/errorx"
	"github.com/stretchr/testify/require"
)

type fakeMetrics struct {
	totalXP      int64
	level        int
	streaks      map[entity.StreakType]int
	counts       map[entity.DomainType]int64
	dayCounts    map[entity.DomainType]int64
	registeredAt time.Time
}

func (m *fakeMetrics) TotalXP(context.Context) (int64, error) { return m.totalXP, nil }
func (m *fakeMetrics) Level(context.Context) (int, error)     { return m.level, nil }

func (m *fakeMetrics) StreakValue(_ context.Context, t entity.StreakType, _ string) (int, error) {
	return m.streaks[t], nil
}

func (m *fakeMetrics) Count(_ context.Context, d entity.DomainType, w Window) (int64, error) {
	if w == WindowDay {
		return m.dayCounts[d], nil
	}

	return m.counts[d], nil
}

func (m *fakeMetrics) RegisteredAt(context.Context) (time.Time, error) { return m.registeredAt, nil }

func TestParse(t *testing.T) {
	testCases := []struct {
		name    string
		raw     string
		kind    Kind
		wantErr bool
	}{
		{name: "streak", raw: `{"kind":"streak","streak_type":"habit","value":7}`, kind: Streak},
		{name: "streak default type", raw: `{"kind":"streak","value":3}`, kind: Streak},
		{name: "legacy type key", raw: `{"type":"streak","value":7}`, kind: Streak},
		{name: "count", raw: `{"kind":"count","domain":"mood_entry","value":10}`, kind: Count},
		{name: "count per day", raw: `{"kind":"count","domain":"mood_entry","value":1,"window":"day"}`, kind: Count},
		{name: "date before", raw: `{"kind":"date_before","value":"2024-03-01"}`, kind: DateBefore},
		{name: "legacy date before", raw: `{"type":"dateBefore","value":"2024-03-01"}`, kind: DateBefore},
		{name: "level", raw: `{"kind":"level","value":5}`, kind: Level},
		{name: "total xp", raw: `{"kind":"total_xp","value":1000}`, kind: TotalXP},
		{name: "unknown kind", raw: `{"kind":"moon_phase","value":1}`, wantErr: true},
		{name: "no kind", raw: `{"value":1}`, wantErr: true},
		{name: "kind is not string", raw: `{"kind":1}`, wantErr: true},
		{name: "not json", raw: `streak:7`, wantErr: true},
		{name: "unknown field", raw: `{"kind":"level","value":5,"extra":true}`, wantErr: true},
		{name: "invalid value", raw: `{"kind":"level","value":"five"}`, wantErr: true},
		{name: "zero value", raw: `{"kind":"count","domain":"mood_entry","value":0}`, wantErr: true},
		{name: "unknown domain", raw: `{"kind":"count","domain":"trip","value":1}`, wantErr: true},
		{name: "unknown window", raw: `{"kind":"count","domain":"mood_entry","value":1,"window":"year"}`, wantErr: true},
		{name: "unknown streak type", raw: `{"kind":"streak","streak_type":"sleep","value":1}`, wantErr: true},
		{name: "invalid date", raw: `{"kind":"date_before","value":"03/01/2024"}`, wantErr: true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse([]byte(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				require.Equal(t, errorx.InvalidRequirement, errorx.CodeOf(err))
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.kind, r.Kind())
		})
	}
}

func TestMatches(t *testing.T) {
	streak, err := Parse([]byte(`{"kind":"streak","streak_type":"habit","value":7}`))
	require.NoError(t, err)
	require.True(t, streak.Matches(entity.HabitCompletion))
	require.False(t, streak.Matches(entity.MoodEntry))
	require.False(t, streak.Matches(entity.LevelUp))

	daily, err := Parse([]byte(`{"kind":"streak","value":7}`))
	require.NoError(t, err)
	require.True(t, daily.Matches(entity.MoodEntry))
	require.True(t, daily.Matches(entity.DreamEntry))

	count, err := Parse([]byte(`{"kind":"count","domain":"dream_entry","value":1}`))
	require.NoError(t, err)
	require.True(t, count.Matches(entity.DreamEntry))
	require.False(t, count.Matches(entity.HabitCompletion))

	level, err := Parse([]byte(`{"kind":"level","value":2}`))
	require.NoError(t, err)
	require.True(t, level.Matches(entity.LevelUp))
	require.True(t, level.Matches(entity.DecisionFinalized))

	date, err := Parse([]byte(`{"kind":"date_before","value":"2024-03-01"}`))
	require.NoError(t, err)
	require.True(t, date.Matches(entity.MoodEntry))
	require.False(t, date.Matches(entity.LevelUp))
}

func TestEvaluate(t *testing.T) {
	ctx := context.Background()
	metrics := &fakeMetrics{
		totalXP:      250,
		level:        3,
		streaks:      map[entity.StreakType]int{entity.StreakHabit: 3},
		counts:       map[entity.DomainType]int64{entity.MoodEntry: 10},
		dayCounts:    map[entity.DomainType]int64{entity.MoodEntry: 1},
		registeredAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}

	testCases := []struct {
		name string
		raw  string
		want Result
	}{
		{
			name: "streak not reached",
			raw:  `{"kind":"streak","streak_type":"habit","value":6}`,
			want: Result{Progress: 0.5},
		},
		{
			name: "streak reached",
			raw:  `{"kind":"streak","streak_type":"habit","value":3}`,
			want: Result{Satisfied: true, Progress: 1},
		},
		{
			name: "count equal",
			raw:  `{"kind":"count","domain":"mood_entry","value":10}`,
			want: Result{Satisfied: true, Progress: 1},
		},
		{
			name: "count of the day",
			raw:  `{"kind":"count","domain":"mood_entry","value":2,"window":"day"}`,
			want: Result{Progress: 0.5},
		},
		{
			name: "count zero",
			raw:  `{"kind":"count","domain":"dream_entry","value":2}`,
			want: Result{},
		},
		{
			name: "registered before",
			raw:  `{"kind":"date_before","value":"2024-02-01"}`,
			want: Result{Satisfied: true, Progress: 1},
		},
		{
			name: "registered after",
			raw:  `{"kind":"date_before","value":"2024-01-15"}`,
			want: Result{},
		},
		{
			name: "level",
			raw:  `{"kind":"level","value":3}`,
			want: Result{Satisfied: true, Progress: 1},
		},
		{
			name: "total xp",
			raw:  `{"kind":"total_xp","value":1000}`,
			want: Result{Progress: 0.25},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse([]byte(tt.raw))
			require.NoError(t, err)

			got, err := r.Evaluate(ctx, metrics)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestToMap(t *testing.T) {
	r, err := Parse([]byte(`{"type":"count","domain":"mood_entry","value":10}`))
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"kind":   "count",
		"domain": "mood_entry",
		"value":  int64(10),
		"window": "all",
	}, ToMap(r))

	r, err = Parse([]byte(`{"kind":"streak","value":7}`))
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"kind":        "streak",
		"streak_type": "daily_activity",
		"value":       7,
	}, ToMap(r))
}
