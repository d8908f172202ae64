package testutil

import (
	"context"

	"github.com/questx-lab/progression/config"
	"github.com/questx-lab/progression/migration"
	"github.com/questx-lab/progression/pkg/logger"
	"github.com/questx-lab/progression/pkg/xcontext"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MockContext returns a context with default configs, a silent logger and a
// fresh migrated in-memory database.
func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// Every connection to :memory: opens a different database.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, config.Default())
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithDB(ctx, db)

	if err := migration.AutoMigrate(ctx); err != nil {
		panic(err)
	}

	return ctx
}

// MockContextWithConfigs is the same as MockContext but allows the caller to
// change the default configs.
func MockContextWithConfigs(modify func(cfg *config.Configs)) context.Context {
	ctx := MockContext()
	cfg := xcontext.Configs(ctx)
	modify(&cfg)
	return xcontext.WithConfigs(ctx, cfg)
}
