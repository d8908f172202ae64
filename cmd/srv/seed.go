package main

import (
	"errors"

	"github.com/BurntSushi/toml"
	"github.com/questx-lab/progression/internal/model"
	"github.com/urfave/cli/v2"
)

func (s *srv) startSeed(cctx *cli.Context) error {
	path := cctx.Args().First()
	if path == "" {
		return errors.New("missing catalog path")
	}

	var catalog model.Catalog
	if _, err := toml.DecodeFile(path, &catalog); err != nil {
		return err
	}

	s.loadAll()
	s.loadDomains()
	return s.catalogDomain.Seed(s.ctx, &catalog)
}
