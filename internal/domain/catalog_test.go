package domain

import (
	"testing"

	"github.com/questx-lab/progression/internal/model"
	"github.com/questx-lab/progression/pkg/errorx"
	"github.com/questx-lab/progression/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func testCatalog() *model.Catalog {
	return &model.Catalog{
		Achievements: []model.CatalogAchievement{
			{
				Code:        "week_warrior",
				Name:        "Week Warrior",
				Requirement: map[string]any{"kind": "streak", "streak_type": "habit", "value": int64(7)},
				XPReward:    100,
				Rarity:      "rare",
			},
		},
		Rewards: []model.CatalogReward{
			{Code: "theme_dark", Name: "Dark theme", Kind: "theme", RequiredLevel: 5},
		},
		Challenges: []model.CatalogChallenge{
			{
				Code:            "early_bird",
				Title:           "Early bird",
				Requirement:     map[string]any{"type": "count", "domain": "habit_completion", "value": int64(1), "window": "day"},
				XPReward:        20,
				BonusXP:         10,
				BonusBeforeHour: 9,
			},
		},
	}
}

func Test_catalogDomain_Seed(t *testing.T) {
	ctx := testutil.MockContext()
	e := newTestEngine()

	require.NoError(t, e.catalog.Seed(ctx, testCatalog()))

	catalog := testCatalog()
	catalog.Achievements[0].XPReward = 150
	require.NoError(t, e.catalog.Seed(ctx, catalog))

	defs, err := e.achievementRepo.GetDefinitions(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	require.Equal(t, "week_warrior", defs[0].Code)
	require.Equal(t, int64(150), defs[0].XPReward)
	require.Equal(t, "rare", string(defs[0].Rarity))
	require.JSONEq(t, `{"kind":"streak","streak_type":"habit","value":7}`, string(defs[0].Requirement))

	rewards, err := e.rewardRepo.GetUpToLevel(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rewards, 1)

	rewards, err = e.rewardRepo.GetUpToLevel(ctx, 4)
	require.NoError(t, err)
	require.Empty(t, rewards)

	challenges, err := e.challengeRepo.GetActiveOn(ctx, "2024-03-01")
	require.NoError(t, err)
	require.Len(t, challenges, 1)
	require.Equal(t, 9, challenges[0].BonusBeforeHour)
	require.JSONEq(t, `{"kind":"count","domain":"habit_completion","value":1,"window":"day"}`,
		string(challenges[0].Requirement))
}

func Test_catalogDomain_Seed_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*model.Catalog)
		wantErr error
	}{
		{
			name: "unknown requirement kind",
			modify: func(c *model.Catalog) {
				c.Achievements[0].Requirement = map[string]any{"kind": "karma", "value": int64(1)}
			},
			wantErr: errorx.New(errorx.InvalidRequirement, ""),
		},
		{
			name: "invalid challenge requirement",
			modify: func(c *model.Catalog) {
				c.Challenges[0].Requirement = map[string]any{"kind": "count", "domain": "sleep", "value": int64(1)}
			},
			wantErr: errorx.New(errorx.InvalidRequirement, ""),
		},
		{
			name: "invalid rarity",
			modify: func(c *model.Catalog) {
				c.Achievements[0].Rarity = "mythic"
			},
			wantErr: errorx.New(errorx.BadRequest, ""),
		},
		{
			name: "invalid active date",
			modify: func(c *model.Catalog) {
				c.Challenges[0].ActiveDate = "2024-13-01"
			},
			wantErr: errorx.New(errorx.BadRequest, ""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.MockContext()
			e := newTestEngine()

			catalog := testCatalog()
			tt.modify(catalog)
			require.ErrorIs(t, e.catalog.Seed(ctx, catalog), tt.wantErr)

			// Nothing of a rejected catalog is written.
			defs, err := e.achievementRepo.GetDefinitions(ctx)
			require.NoError(t, err)
			require.Empty(t, defs)
		})
	}
}
