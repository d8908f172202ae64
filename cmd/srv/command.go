package main

import (
	"github.com/questx-lab/progression/migration"
	"github.com/urfave/cli/v2"
)

func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "progression"
	s.app.Usage = "Progression, streak and pattern mining engine"
	s.app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path of the toml configuration file",
			EnvVars: []string{"PROGRESSION_CONFIG"},
		},
	}
	s.app.Before = s.before
	s.app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Used to start the http api, including event ingestion and /metrics.`,
		},
		{
			Action:      s.startConsumer,
			Name:        "consumer",
			Usage:       "Start event consumer",
			Category:    "Worker",
			Description: `Used to consume activity events from the kafka event topic.`,
		},
		{
			Action:      s.startCron,
			Name:        "cron",
			Usage:       "Start cron jobs",
			Category:    "Worker",
			Description: `Used to sweep stale streaks and mine patterns of active users periodically.`,
		},
		{
			Action:   s.startMigrate,
			Name:     "migrate",
			Usage:    "Migrate the database",
			Category: "Tool",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "version",
					Value: migration.AllVersions,
					Usage: "Version of the migration to run, or all to run every version in order",
				},
			},
		},
		{
			Action:    s.startSeed,
			Name:      "seed",
			Usage:     "Seed achievements, rewards and challenges",
			ArgsUsage: "<catalogPath>",
			Category:  "Tool",
		},
		{
			Action:    s.startToken,
			Name:      "token",
			Usage:     "Generate an access token of a user",
			ArgsUsage: "<userID>",
			Category:  "Tool",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "name",
					Usage: "Display name attached to the token",
				},
			},
		},
	}
}
