package domain

import (
	"database/sql"
	"testing"

	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/internal/model"
	"github.com/questx-lab/progression/pkg/errorx"
	"github.com/questx-lab/progression/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_insightDomain_SynthesizeInsights(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	e := newTestEngine()

	// Ten low moods in the last week make an urgent mood insight.
	for i, d := range []string{
		"2024-03-04", "2024-03-04", "2024-03-05", "2024-03-05", "2024-03-06",
		"2024-03-06", "2024-03-07", "2024-03-08", "2024-03-09", "2024-03-09",
	} {
		testutil.InsertEntry(ctx, &entity.Entry{
			UserID:     testutil.User1.ID,
			Domain:     entity.MoodEntry,
			OccurredAt: day(d),
			MoodScore:  sql.NullInt64{Int64: int64(2 + i%2), Valid: true},
		})
	}

	// One completion of a habit in a week is a low adherence.
	testutil.InsertEntry(ctx, &entity.Entry{
		UserID:     testutil.User1.ID,
		Domain:     entity.HabitCompletion,
		TargetID:   "habit1",
		OccurredAt: day("2024-03-08"),
	})

	// Entries out of the window are ignored.
	testutil.InsertEntry(ctx, &entity.Entry{
		UserID:      testutil.User1.ID,
		Domain:      entity.MoodEntry,
		OccurredAt:  day("2024-01-01"),
		EnergyLevel: sql.NullInt64{Int64: 9, Valid: true},
	})

	ctx = at(asUser(ctx, testutil.User1.ID), day("2024-03-10"))
	resp, err := e.insight.SynthesizeInsights(ctx, &model.SynthesizeInsightsRequest{Timeframe: "week"})
	require.NoError(t, err)
	require.Len(t, resp.Insights, 2)

	mood := resp.Insights[0]
	require.Equal(t, "mood_distribution", mood.InsightType)
	require.Equal(t, "urgent", mood.Priority)
	require.Equal(t, float64(1), mood.Confidence)
	require.True(t, mood.Actionable)
	require.NotEmpty(t, mood.Suggestion)
	require.Equal(t, 2.5, mood.DataPoints["mean"])
	require.Equal(t, "active", mood.Status)

	habit := resp.Insights[1]
	require.Equal(t, "habit_adherence", habit.InsightType)
	require.Equal(t, "medium", habit.Priority)
	require.Equal(t, 0.1, habit.Confidence)
	require.Equal(t, "habit1", habit.DataPoints["habit_id"])
	require.Equal(t, 0.14, habit.DataPoints["rate"])

	// Synthesizing again replaces the active insights.
	_, err = e.insight.SynthesizeInsights(ctx, &model.SynthesizeInsightsRequest{Timeframe: "week"})
	require.NoError(t, err)

	list, err := e.insight.GetInsights(ctx, &model.GetInsightsRequest{})
	require.NoError(t, err)
	require.Len(t, list.Insights, 2)
	require.Equal(t, "mood_distribution", list.Insights[0].InsightType)

	_, err = e.insight.SynthesizeInsights(ctx, &model.SynthesizeInsightsRequest{Timeframe: "decade"})
	require.ErrorIs(t, err, errorx.New(errorx.BadRequest, ""))
}

func Test_insightDomain_SynthesizeInsights_NoData(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	e := newTestEngine()

	ctx = at(asUser(ctx, testutil.User1.ID), day("2024-03-10"))
	resp, err := e.insight.SynthesizeInsights(ctx, &model.SynthesizeInsightsRequest{})
	require.NoError(t, err)
	require.Empty(t, resp.Insights)
}

func Test_insightDomain_SynthesizeInsights_PatternFrequencyOfWindow(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	e := newTestEngine()

	dreams := map[string]string{"2024-03-09": `["flying"]`}
	for _, d := range []string{
		"2023-01-01", "2023-01-02", "2023-01-03", "2023-01-04", "2023-01-05",
		"2023-01-06", "2023-01-07", "2023-01-08", "2023-01-09", "2023-01-10",
	} {
		dreams[d] = `["flying"]`
	}
	insertDreams(ctx, testutil.User1.ID, dreams)

	stored, err := e.pattern.MinePatterns(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)

	// The stored pattern counts eleven dreams, only one of them is in the week.
	ctx = at(asUser(ctx, testutil.User1.ID), day("2024-03-10"))
	resp, err := e.insight.SynthesizeInsights(ctx, &model.SynthesizeInsightsRequest{Timeframe: "week"})
	require.NoError(t, err)
	require.Len(t, resp.Insights, 1)

	highlight := resp.Insights[0]
	require.Equal(t, "pattern_highlight", highlight.InsightType)
	require.Equal(t, 0.1, highlight.Confidence)
	require.Contains(t, highlight.Description, "came up 1 times")

	top := highlight.DataPoints["top"].([]any)
	require.Len(t, top, 1)
	require.Equal(t, float64(1), top[0].(map[string]any)["frequency"])
}

func Test_insightDomain_UpdateInsightStatus(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	e := newTestEngine()

	for _, d := range []string{"2024-03-07", "2024-03-08", "2024-03-09"} {
		testutil.InsertEntry(ctx, &entity.Entry{
			UserID:      testutil.User1.ID,
			Domain:      entity.MoodEntry,
			OccurredAt:  day(d),
			EnergyLevel: sql.NullInt64{Int64: 8, Valid: true},
		})
	}

	userCtx := at(asUser(ctx, testutil.User1.ID), day("2024-03-10"))
	resp, err := e.insight.SynthesizeInsights(userCtx, &model.SynthesizeInsightsRequest{Timeframe: "week"})
	require.NoError(t, err)
	require.Len(t, resp.Insights, 1)
	insightID := resp.Insights[0].ID

	// Another user cannot see the insight.
	_, err = e.insight.UpdateInsightStatus(asUser(ctx, testutil.User2.ID), &model.UpdateInsightStatusRequest{
		InsightID: insightID, Status: "dismissed",
	})
	require.ErrorIs(t, err, errorx.New(errorx.NotFound, ""))

	_, err = e.insight.UpdateInsightStatus(userCtx, &model.UpdateInsightStatusRequest{
		InsightID: "unknown", Status: "dismissed",
	})
	require.ErrorIs(t, err, errorx.New(errorx.NotFound, ""))

	_, err = e.insight.UpdateInsightStatus(userCtx, &model.UpdateInsightStatusRequest{
		InsightID: insightID, Status: "dismissed",
	})
	require.NoError(t, err)

	for _, status := range []string{"active", "acknowledged", "dismissed", "archived"} {
		_, err = e.insight.UpdateInsightStatus(userCtx, &model.UpdateInsightStatusRequest{
			InsightID: insightID, Status: status,
		})
		require.ErrorIs(t, err, errorx.New(errorx.BadRequest, ""), status)
	}

	// A new synthesis keeps the dismissed insight.
	_, err = e.insight.SynthesizeInsights(userCtx, &model.SynthesizeInsightsRequest{Timeframe: "week"})
	require.NoError(t, err)

	dismissed, err := e.insight.GetInsights(userCtx, &model.GetInsightsRequest{Status: "dismissed"})
	require.NoError(t, err)
	require.Len(t, dismissed.Insights, 1)
	require.Equal(t, insightID, dismissed.Insights[0].ID)

	active, err := e.insight.GetInsights(userCtx, &model.GetInsightsRequest{Status: "active"})
	require.NoError(t, err)
	require.Len(t, active.Insights, 1)
	require.NotEqual(t, insightID, active.Insights[0].ID)
}
