package main

import (
	"net/http"

	"github.com/questx-lab/progression/internal/middleware"
	"github.com/questx-lab/progression/internal/model"
	"github.com/questx-lab/progression/pkg/jwt"
	"github.com/questx-lab/progression/pkg/prometheus"
	"github.com/questx-lab/progression/pkg/router"
	"github.com/questx-lab/progression/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	s.loadAll()
	s.loadPublisher()
	s.loadDomains()
	s.loadRouter()

	cfg := xcontext.Configs(s.ctx).ApiServer
	httpSrv := &http.Server{
		Addr:    cfg.Address(),
		Handler: s.router.Handler(),
	}

	xcontext.Logger(s.ctx).Infof("Starting server on port: %s", cfg.Port)
	if err := httpSrv.ListenAndServe(); err != nil {
		return err
	}

	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)
	s.router.AddCloser(middleware.Logger())
	s.router.AddCloser(middleware.Prometheus())
	s.router.Handle(http.MethodGet, "/metrics", prometheus.NewHandler())

	// Without a token secret, the upstream gateway authenticates the user and
	// forwards its id.
	var verifier *jwt.Verifier[model.AccessToken]
	if cfg := xcontext.Configs(s.ctx).ApiServer; cfg.TokenSecret != "" {
		verifier = jwt.NewVerifier[model.AccessToken](cfg.TokenSecret, cfg.TokenIssuer)
	}

	userRouter := s.router.Branch()
	userRouter.Before(middleware.RequestUserID(verifier))
	{
		// Progression API
		router.GET(userRouter, "/getLedger", s.ledgerDomain.GetLedger)
		router.GET(userRouter, "/getStreaks", s.streakDomain.GetStreaks)
		router.GET(userRouter, "/getAchievements", s.achievementDomain.GetAchievements)
		router.GET(userRouter, "/getRewards", s.rewardDomain.GetRewards)

		// Intake API
		router.POST(userRouter, "/ingestEvent", s.intakeDomain.IngestEvent)
		router.POST(userRouter, "/registerUser", s.intakeDomain.RegisterUser)

		// Pattern and insight API
		router.GET(userRouter, "/getPatterns", s.patternDomain.GetPatterns)
		router.POST(userRouter, "/analyzePatterns", s.patternDomain.AnalyzePatterns)
		router.GET(userRouter, "/getInsights", s.insightDomain.GetInsights)
		router.POST(userRouter, "/synthesizeInsights", s.insightDomain.SynthesizeInsights)
		router.POST(userRouter, "/updateInsightStatus", s.insightDomain.UpdateInsightStatus)
	}
}
