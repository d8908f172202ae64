package migration

import (
	"context"
	"testing"

	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/pkg/xcontext"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newMemoryContext(t *testing.T) context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	return xcontext.WithDB(context.Background(), db)
}

func Test_migrate0001(t *testing.T) {
	ctx := newMemoryContext(t)
	require.NoError(t, AutoMigrate(ctx))

	db := xcontext.DB(ctx)
	require.NoError(t, db.Exec("ALTER TABLE xp_ledgers ADD COLUMN level integer").Error)
	require.NoError(t, db.Exec("ALTER TABLE xp_ledgers ADD COLUMN title text").Error)
	require.True(t, db.Migrator().HasColumn(&entity.XPLedger{}, "level"))

	require.NoError(t, Migrators["0001"](ctx))
	require.False(t, db.Migrator().HasColumn(&entity.XPLedger{}, "level"))
	require.False(t, db.Migrator().HasColumn(&entity.XPLedger{}, "title"))
	require.True(t, db.Migrator().HasColumn(&entity.XPLedger{}, "total_xp"))

	// Running it again is a no-op.
	require.NoError(t, Migrators["0001"](ctx))
}

func Test_migrate0002(t *testing.T) {
	ctx := newMemoryContext(t)
	db := xcontext.DB(ctx)

	// The entries table as it was created with a single column primary key.
	require.NoError(t, db.Exec(`CREATE TABLE entries (
		id text PRIMARY KEY, user_id text NOT NULL, domain text NOT NULL,
		target_id text, occurred_at datetime, day text,
		themes JSON, symbols JSON, emotions JSON,
		mood_score integer, energy_level integer,
		payload JSON, created_at datetime)`).Error)
	require.NoError(t, db.Exec("CREATE INDEX idx_entries_user_domain ON entries(user_id, domain)").Error)
	require.NoError(t, db.Exec("CREATE INDEX idx_entries_day ON entries(day)").Error)
	require.NoError(t, db.Exec(
		"INSERT INTO entries (id, user_id, domain, occurred_at, day, created_at) " +
			"VALUES ('event1', 'user1', 'mood_entry', '2024-03-01 00:00:00', '2024-03-01', '2024-03-01 00:00:00')").Error)

	require.NoError(t, Migrators["0002"](ctx))
	require.False(t, db.Migrator().HasTable("entries_0001"))

	var entries []entity.Entry
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Equal(t, "user1", entries[0].UserID)
	require.Equal(t, "2024-03-01", entries[0].Day)

	// Another user can use the same event id now.
	require.NoError(t, db.Create(&entity.Entry{
		UserID: "user2",
		ID:     "event1",
		Domain: entity.MoodEntry,
	}).Error)

	// Running it again is a no-op.
	require.NoError(t, Migrators["0002"](ctx))
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 2)
}

func Test_migrate0002_FreshTable(t *testing.T) {
	ctx := newMemoryContext(t)
	require.NoError(t, AutoMigrate(ctx))
	require.NoError(t, Migrators["0002"](ctx))
	require.True(t, xcontext.DB(ctx).Migrator().HasTable(&entity.Entry{}))
}

func Test_Run(t *testing.T) {
	ctx := newMemoryContext(t)

	require.Equal(t, []string{"0000", "0001", "0002"}, Versions())
	require.NoError(t, Run(ctx, AllVersions))
	require.True(t, xcontext.DB(ctx).Migrator().HasTable(&entity.Entry{}))

	// An up to date database can be migrated again.
	require.NoError(t, Run(ctx, AllVersions))
	require.NoError(t, Run(ctx, "0001"))

	require.ErrorContains(t, Run(ctx, "9999"), "not found version 9999")
}
