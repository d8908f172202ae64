package domain

import (
	"testing"

	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/internal/model"
	"github.com/questx-lab/progression/pkg/testutil"
	"github.com/questx-lab/progression/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func Test_achievementDomain_Evaluate_Once(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	e := newTestEngine()

	def := testutil.InsertAchievement(ctx, "first_mood",
		map[string]any{"kind": "count", "domain": "mood_entry", "value": 1}, 50)
	testutil.InsertEntry(ctx, &entity.Entry{
		UserID:     testutil.User1.ID,
		Domain:     entity.MoodEntry,
		OccurredAt: day("2024-03-01"),
	})

	unlocks, err := e.achievement.Evaluate(ctx, testutil.User1.ID, entity.MoodEntry, day("2024-03-01"))
	require.NoError(t, err)
	require.Len(t, unlocks, 1)
	require.Equal(t, def.ID, unlocks[0].AchievementID)
	require.Equal(t, int64(50), unlocks[0].XPReward)

	// The same trigger again neither unlocks nor awards twice.
	unlocks, err = e.achievement.Evaluate(ctx, testutil.User1.ID, entity.MoodEntry, day("2024-03-01"))
	require.NoError(t, err)
	require.Empty(t, unlocks)

	stored, err := e.achievementRepo.GetUnlocks(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)

	state, err := e.ledger.State(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(50), state.TotalXP)
}

func Test_achievementDomain_Evaluate_NotMatchingDomain(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	e := newTestEngine()

	testutil.InsertAchievement(ctx, "first_mood",
		map[string]any{"kind": "count", "domain": "mood_entry", "value": 1}, 50)
	testutil.InsertEntry(ctx, &entity.Entry{
		UserID:     testutil.User1.ID,
		Domain:     entity.MoodEntry,
		OccurredAt: day("2024-03-01"),
	})

	unlocks, err := e.achievement.Evaluate(ctx, testutil.User1.ID, entity.DreamEntry, day("2024-03-01"))
	require.NoError(t, err)
	require.Empty(t, unlocks)
}

func Test_achievementDomain_Evaluate_LevelUpCascade(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	e := newTestEngine()

	// Definitions are evaluated by code, so the level achievement is checked
	// before the mood achievement raises the level.
	testutil.InsertAchievement(ctx, "a_level_two", map[string]any{"kind": "level", "value": 2}, 10)
	testutil.InsertAchievement(ctx, "b_first_mood",
		map[string]any{"kind": "count", "domain": "mood_entry", "value": 1}, 100)
	testutil.InsertEntry(ctx, &entity.Entry{
		UserID:     testutil.User1.ID,
		Domain:     entity.MoodEntry,
		OccurredAt: day("2024-03-01"),
	})

	unlocks, err := e.achievement.Evaluate(ctx, testutil.User1.ID, entity.MoodEntry, day("2024-03-01"))
	require.NoError(t, err)
	require.Len(t, unlocks, 2)
	require.Equal(t, "b_first_mood", unlocks[0].Code)
	require.Equal(t, "a_level_two", unlocks[1].Code)

	state, err := e.ledger.State(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(110), state.TotalXP)
	require.Equal(t, 2, state.Level)
}

func Test_achievementDomain_Evaluate_SkipMalformed(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	e := newTestEngine()

	testutil.InsertAchievement(ctx, "broken", map[string]any{"kind": "moon_phase", "value": 3}, 10)
	testutil.InsertAchievement(ctx, "wrong_field",
		map[string]any{"kind": "count", "domain": "mood_entry", "amount": 1}, 10)
	testutil.InsertAchievement(ctx, "first_mood",
		map[string]any{"type": "count", "domain": "mood_entry", "value": 1}, 20)
	testutil.InsertEntry(ctx, &entity.Entry{
		UserID:     testutil.User1.ID,
		Domain:     entity.MoodEntry,
		OccurredAt: day("2024-03-01"),
	})

	unlocks, err := e.achievement.Evaluate(ctx, testutil.User1.ID, entity.MoodEntry, day("2024-03-01"))
	require.NoError(t, err)
	require.Len(t, unlocks, 1)
	require.Equal(t, "first_mood", unlocks[0].Code)
}

func Test_achievementDomain_Evaluate_Streak(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	e := newTestEngine()

	testutil.InsertAchievement(ctx, "three_days",
		map[string]any{"kind": "streak", "streak_type": "dream_journal", "value": 3}, 30)

	for _, d := range []string{"2024-03-01", "2024-03-02", "2024-03-03"} {
		_, err := e.streak.RecordActivity(ctx, testutil.User1.ID, entity.StreakDreamJournal, "", day(d))
		require.NoError(t, err)

		unlocks, err := e.achievement.Evaluate(ctx, testutil.User1.ID, entity.DreamEntry, day(d))
		require.NoError(t, err)
		if d != "2024-03-03" {
			require.Empty(t, unlocks)
		} else {
			require.Len(t, unlocks, 1)
		}
	}
}

func Test_achievementDomain_GetAchievements(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	e := newTestEngine()

	testutil.InsertAchievement(ctx, "first_mood",
		map[string]any{"kind": "count", "domain": "mood_entry", "value": 1}, 20)
	testutil.InsertAchievement(ctx, "ten_moods",
		map[string]any{"kind": "count", "domain": "mood_entry", "value": 10}, 20)
	secret := testutil.InsertAchievement(ctx, "secret",
		map[string]any{"kind": "total_xp", "value": 100000}, 0)
	require.NoError(t, xcontext.DB(ctx).Model(secret).Update("is_secret", true).Error)

	for i := 0; i < 4; i++ {
		testutil.InsertEntry(ctx, &entity.Entry{
			UserID:     testutil.User1.ID,
			Domain:     entity.MoodEntry,
			OccurredAt: day("2024-03-01"),
		})
	}

	_, err := e.achievement.Evaluate(ctx, testutil.User1.ID, entity.MoodEntry, day("2024-03-01"))
	require.NoError(t, err)

	resp, err := e.achievement.GetAchievements(asUser(ctx, testutil.User1.ID), &model.GetAchievementsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Unlocked, 1)
	require.Equal(t, "first_mood", resp.Unlocked[0].Achievement.Code)
	require.Equal(t, "count", resp.Unlocked[0].Achievement.Requirement["kind"])

	require.Len(t, resp.InProgress, 1)
	require.Equal(t, "ten_moods", resp.InProgress[0].Achievement.Code)
	require.InDelta(t, 0.4, resp.InProgress[0].Progress, 1e-9)
}
