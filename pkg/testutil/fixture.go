package testutil

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/pkg/xcontext"
	"gorm.io/datatypes"
)

var (
	User1 = &entity.User{
		Base:         entity.Base{ID: "user1"},
		Name:         "User 1",
		RegisteredAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	User2 = &entity.User{
		Base:         entity.Base{ID: "user2"},
		Name:         "User 2",
		RegisteredAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
)

// CreateFixtureDb inserts the default users into the database of ctx.
func CreateFixtureDb(ctx context.Context) {
	InsertUsers(ctx, User1, User2)
}

func InsertUsers(ctx context.Context, users ...*entity.User) {
	for _, u := range users {
		copied := *u
		if err := xcontext.DB(ctx).Create(&copied).Error; err != nil {
			panic(err)
		}
	}
}

// JSON encodes v for datatypes.JSON columns in fixtures.
func JSON(v any) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}

	return datatypes.JSON(b)
}

func InsertAchievement(
	ctx context.Context, code string, requirement any, xpReward int64,
) *entity.AchievementDefinition {
	def := &entity.AchievementDefinition{
		Base:        entity.Base{ID: uuid.NewString()},
		Code:        code,
		Name:        code,
		Requirement: JSON(requirement),
		XPReward:    xpReward,
		Rarity:      entity.RarityCommon,
	}

	if err := xcontext.DB(ctx).Create(def).Error; err != nil {
		panic(err)
	}

	return def
}

func InsertEntry(ctx context.Context, entry *entity.Entry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	if entry.Day == "" {
		entry.Day = entry.OccurredAt.UTC().Format("2006-01-02")
	}

	if err := xcontext.DB(ctx).Create(entry).Error; err != nil {
		panic(err)
	}
}
