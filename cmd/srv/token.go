package main

import (
	"errors"
	"fmt"

	"github.com/questx-lab/progression/internal/model"
	"github.com/questx-lab/progression/pkg/jwt"
	"github.com/questx-lab/progression/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startToken(cctx *cli.Context) error {
	userID := cctx.Args().First()
	if userID == "" {
		return errors.New("missing user id")
	}

	cfg := xcontext.Configs(s.ctx).ApiServer
	if cfg.TokenSecret == "" {
		return errors.New("token_secret is not configured")
	}

	engine := jwt.NewEngine[model.AccessToken](cfg.TokenSecret, cfg.TokenIssuer, cfg.TokenExpiration.Std())
	token, err := engine.Generate(userID, model.AccessToken{Name: cctx.String("name")})
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
