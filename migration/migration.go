package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/pkg/xcontext"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// AllVersions runs every migrator in version order.
const AllVersions = "all"

var Migrators = map[string]func(context.Context) error{
	"0000": AutoMigrate,
	"0001": migrate0001,
	"0002": migrate0002,
}

// AutoMigrate creates or updates all tables to the latest version.
func AutoMigrate(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&entity.User{},
		&entity.XPLedger{},
		&entity.XPAward{},
		&entity.Streak{},
		&entity.AchievementDefinition{},
		&entity.AchievementUnlock{},
		&entity.Reward{},
		&entity.UserReward{},
		&entity.DailyChallenge{},
		&entity.DailyChallengeCompletion{},
		&entity.Entry{},
		&entity.Pattern{},
		&entity.Insight{},
	)
}

// Versions returns the versions of Migrators in ascending order.
func Versions() []string {
	versions := maps.Keys(Migrators)
	slices.Sort(versions)
	return versions
}

// Run applies one version, or every version when it is AllVersions. All
// migrators can be run again on an up to date database.
func Run(ctx context.Context, version string) error {
	versions := []string{version}
	if version == AllVersions {
		versions = Versions()
	}

	for _, v := range versions {
		migrator, ok := Migrators[v]
		if !ok {
			return fmt.Errorf("not found version %s", v)
		}

		start := time.Now()
		if err := migrator(ctx); err != nil {
			return fmt.Errorf("cannot migrate version %s: %w", v, err)
		}

		xcontext.Logger(ctx).Infof("Migrated version %s in %s", v, time.Since(start))
	}

	return nil
}
