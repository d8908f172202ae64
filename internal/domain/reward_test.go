package domain

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/internal/model"
	"github.com/questx-lab/progression/pkg/errorx"
	"github.com/questx-lab/progression/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func insertChallenge(t *testing.T, ctx context.Context, e *testEngine, c *entity.DailyChallenge) *entity.DailyChallenge {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	if c.Title == "" {
		c.Title = c.Code
	}

	require.NoError(t, e.challengeRepo.Upsert(ctx, c))
	return c
}

func Test_rewardDomain_EvaluateChallenges_Bonus(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	e := newTestEngine()

	challenge := insertChallenge(t, ctx, e, &entity.DailyChallenge{
		Code:            "early_mood",
		Requirement:     testutil.JSON(map[string]any{"kind": "count", "domain": "mood_entry", "value": 1, "window": "day"}),
		XPReward:        20,
		BonusXP:         10,
		BonusBeforeHour: 9,
	})

	early := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	late := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	testutil.InsertEntry(ctx, &entity.Entry{UserID: testutil.User1.ID, Domain: entity.MoodEntry, OccurredAt: early})
	testutil.InsertEntry(ctx, &entity.Entry{UserID: testutil.User2.ID, Domain: entity.MoodEntry, OccurredAt: late})

	completions, err := e.reward.EvaluateChallenges(ctx, testutil.User1.ID, entity.MoodEntry, "", early)
	require.NoError(t, err)
	require.Len(t, completions, 1)
	require.Equal(t, challenge.ID, completions[0].ChallengeID)
	require.Equal(t, "2024-03-01", completions[0].Date)
	require.Equal(t, int64(30), completions[0].XPAwarded)

	completions, err = e.reward.EvaluateChallenges(ctx, testutil.User2.ID, entity.MoodEntry, "", late)
	require.NoError(t, err)
	require.Len(t, completions, 1)
	require.Equal(t, int64(20), completions[0].XPAwarded)

	// A challenge is completed at most once per day.
	completions, err = e.reward.EvaluateChallenges(ctx, testutil.User1.ID, entity.MoodEntry, "", late)
	require.NoError(t, err)
	require.Empty(t, completions)

	state, err := e.ledger.State(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(30), state.TotalXP)

	// The next day the count of the day starts again from zero.
	nextDay := early.AddDate(0, 0, 1)
	completions, err = e.reward.EvaluateChallenges(ctx, testutil.User1.ID, entity.MoodEntry, "", nextDay)
	require.NoError(t, err)
	require.Empty(t, completions)
}

func Test_rewardDomain_EvaluateChallenges_LevelGated(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	e := newTestEngine()

	insertChallenge(t, ctx, e, &entity.DailyChallenge{
		Code:          "advanced",
		Requirement:   testutil.JSON(map[string]any{"kind": "count", "domain": "dream_entry", "value": 1}),
		RequiredLevel: 2,
		XPReward:      50,
	})
	testutil.InsertEntry(ctx, &entity.Entry{UserID: testutil.User1.ID, Domain: entity.DreamEntry, OccurredAt: day("2024-03-01")})

	completions, err := e.reward.EvaluateChallenges(ctx, testutil.User1.ID, entity.DreamEntry, "", day("2024-03-01"))
	require.NoError(t, err)
	require.Empty(t, completions)

	_, err = e.ledger.ApplyAward(ctx, testutil.User1.ID, 100, "event1", "test")
	require.NoError(t, err)

	completions, err = e.reward.EvaluateChallenges(ctx, testutil.User1.ID, entity.DreamEntry, "", day("2024-03-01"))
	require.NoError(t, err)
	require.Len(t, completions, 1)
}

func Test_rewardDomain_EvaluateChallenges_ExplicitChallenge(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	e := newTestEngine()

	challenge := insertChallenge(t, ctx, e, &entity.DailyChallenge{
		Code:        "habit_today",
		Requirement: testutil.JSON(map[string]any{"kind": "streak", "streak_type": "habit", "value": 1}),
		XPReward:    15,
	})

	_, err := e.streak.RecordActivity(ctx, testutil.User1.ID, entity.StreakHabit, "habit1", day("2024-03-01"))
	require.NoError(t, err)

	// The requirement does not match the domain of the event.
	completions, err := e.reward.EvaluateChallenges(
		ctx, testutil.User1.ID, entity.ChallengeCompletion, "", day("2024-03-01"))
	require.NoError(t, err)
	require.Empty(t, completions)

	completions, err = e.reward.EvaluateChallenges(
		ctx, testutil.User1.ID, entity.ChallengeCompletion, challenge.ID, day("2024-03-01"))
	require.NoError(t, err)
	require.Len(t, completions, 1)
	require.Equal(t, int64(15), completions[0].XPAwarded)
}

func Test_rewardDomain_EvaluateChallenges_ActiveDate(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	e := newTestEngine()

	insertChallenge(t, ctx, e, &entity.DailyChallenge{
		Code:        "leap_day",
		Requirement: testutil.JSON(map[string]any{"kind": "count", "domain": "mood_entry", "value": 1}),
		XPReward:    29,
		ActiveDate:  "2024-02-29",
	})
	testutil.InsertEntry(ctx, &entity.Entry{UserID: testutil.User1.ID, Domain: entity.MoodEntry, OccurredAt: day("2024-03-01")})

	completions, err := e.reward.EvaluateChallenges(ctx, testutil.User1.ID, entity.MoodEntry, "", day("2024-03-01"))
	require.NoError(t, err)
	require.Empty(t, completions)

	completions, err = e.reward.EvaluateChallenges(ctx, testutil.User1.ID, entity.MoodEntry, "", day("2024-02-29"))
	require.NoError(t, err)
	require.Len(t, completions, 1)
}

func Test_rewardDomain_GrantRewards(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	e := newTestEngine()

	for code, level := range map[string]int{"starter_theme": 1, "bronze_frame": 2, "gold_frame": 5} {
		require.NoError(t, e.rewardRepo.Upsert(ctx, &entity.Reward{
			Base:          entity.Base{ID: uuid.NewString()},
			Code:          code,
			Name:          code,
			Kind:          "theme",
			RequiredLevel: level,
		}))
	}

	_, err := e.ledger.ApplyAward(ctx, testutil.User1.ID, 150, "event1", "test")
	require.NoError(t, err)

	granted, err := e.reward.GrantRewards(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Len(t, granted, 2)

	granted, err = e.reward.GrantRewards(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Empty(t, granted)

	resp, err := e.reward.GetRewards(asUser(ctx, testutil.User1.ID), &model.GetRewardsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Rewards, 2)
	require.Empty(t, resp.Completions)

	_, err = e.reward.GetRewards(asUser(ctx, testutil.User1.ID), &model.GetRewardsRequest{Date: "yesterday"})
	require.ErrorIs(t, err, errorx.New(errorx.BadRequest, ""))
}
