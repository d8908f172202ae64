package main

import (
	"github.com/questx-lab/progression/migration"
	"github.com/questx-lab/progression/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

// startMigrate applies the requested version on top of the current schema.
// Entries written before 0002 need "--version 0002" or "--version all".
func (s *srv) startMigrate(cctx *cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())

	version := cctx.String("version")
	if version != migration.AllVersions {
		// Corrective migrators expect the tables to exist.
		s.migrateDB()
	}

	return migration.Run(s.ctx, version)
}
