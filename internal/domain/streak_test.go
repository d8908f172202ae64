package domain

import (
	"testing"

	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/internal/model"
	"github.com/questx-lab/progression/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_streakDomain_RecordActivity(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	e := newTestEngine()

	record := func(d string) *entity.Streak {
		streak, err := e.streak.RecordActivity(ctx, testutil.User1.ID, entity.StreakMoodLog, "", day(d))
		require.NoError(t, err)
		return streak
	}

	record("2024-03-01")
	record("2024-03-02")
	streak := record("2024-03-03")
	require.Equal(t, 3, streak.CurrentStreak)
	require.Equal(t, 3, streak.LongestStreak)
	require.Equal(t, "2024-03-01", streak.StreakStartDate)

	// A second activity of the same day changes nothing.
	streak = record("2024-03-03")
	require.Equal(t, 3, streak.CurrentStreak)

	// Missing 2024-03-04 breaks the streak.
	streak = record("2024-03-05")
	require.Equal(t, 1, streak.CurrentStreak)
	require.Equal(t, 3, streak.LongestStreak)
	require.Equal(t, "2024-03-05", streak.StreakStartDate)

	// A late activity does not rewrite the history.
	streak = record("2024-03-04")
	require.Equal(t, 1, streak.CurrentStreak)
	require.Equal(t, "2024-03-05", streak.LastActivityDate)

	stored, err := e.streakRepo.Get(ctx, testutil.User1.ID, entity.StreakMoodLog, "")
	require.NoError(t, err)
	require.Equal(t, 1, stored.CurrentStreak)
	require.Equal(t, 3, stored.LongestStreak)
}

func Test_streakDomain_RecordActivity_PerTarget(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	e := newTestEngine()

	_, err := e.streak.RecordActivity(ctx, testutil.User1.ID, entity.StreakHabit, "habit1", day("2024-03-01"))
	require.NoError(t, err)
	_, err = e.streak.RecordActivity(ctx, testutil.User1.ID, entity.StreakHabit, "habit1", day("2024-03-02"))
	require.NoError(t, err)
	streak, err := e.streak.RecordActivity(ctx, testutil.User1.ID, entity.StreakHabit, "habit2", day("2024-03-02"))
	require.NoError(t, err)
	require.Equal(t, 1, streak.CurrentStreak)

	streaks, err := e.streakRepo.GetByUserID(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Len(t, streaks, 2)
}

func Test_streakDomain_RecordActivity_InvalidType(t *testing.T) {
	ctx := testutil.MockContext()
	e := newTestEngine()

	_, err := e.streak.RecordActivity(ctx, testutil.User1.ID, entity.StreakType("weekly"), "", day("2024-03-01"))
	require.Error(t, err)
}

func Test_streakDomain_GetStreaks(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	e := newTestEngine()

	_, err := e.streak.RecordActivity(ctx, testutil.User1.ID, entity.StreakDreamJournal, "", day("2024-03-01"))
	require.NoError(t, err)

	tests := []struct {
		name     string
		today    string
		atRisk   bool
		isBroken bool
	}{
		{name: "same day", today: "2024-03-01"},
		{name: "next day", today: "2024-03-02", atRisk: true},
		{name: "after a gap", today: "2024-03-03", isBroken: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := e.streak.GetStreaks(at(asUser(ctx, testutil.User1.ID), day(tt.today)), &model.GetStreaksRequest{})
			require.NoError(t, err)
			require.Len(t, resp.Streaks, 1)
			require.Equal(t, tt.atRisk, resp.Streaks[0].AtRisk)
			require.Equal(t, tt.isBroken, resp.Streaks[0].IsBroken)
		})
	}
}

func Test_streakDomain_DeactivateStale(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	e := newTestEngine()

	_, err := e.streak.RecordActivity(ctx, testutil.User1.ID, entity.StreakMoodLog, "", day("2024-03-01"))
	require.NoError(t, err)
	_, err = e.streak.RecordActivity(ctx, testutil.User1.ID, entity.StreakDreamJournal, "", day("2024-03-04"))
	require.NoError(t, err)

	n, err := e.streak.DeactivateStale(at(ctx, day("2024-03-05")))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	mood, err := e.streakRepo.Get(ctx, testutil.User1.ID, entity.StreakMoodLog, "")
	require.NoError(t, err)
	require.False(t, mood.IsActive)

	dream, err := e.streakRepo.Get(ctx, testutil.User1.ID, entity.StreakDreamJournal, "")
	require.NoError(t, err)
	require.True(t, dream.IsActive)
}
