package domain

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/questx-lab/progression/internal/common"
	"github.com/questx-lab/progression/internal/domain/pattern"
	"github.com/questx-lab/progression/internal/domain/scope"
	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/internal/model"
	"github.com/questx-lab/progression/internal/repository"
	"github.com/questx-lab/progression/pkg/enum"
	"github.com/questx-lab/progression/pkg/errorx"
	"github.com/questx-lab/progression/pkg/xcontext"
	"gorm.io/datatypes"
)

type PatternDomain interface {
	GetPatterns(context.Context, *model.GetPatternsRequest) (*model.GetPatternsResponse, error)

	// AnalyzePatterns mines the patterns of the request user then synthesizes
	// the insights of the requested timeframe.
	AnalyzePatterns(context.Context, *model.AnalyzePatternsRequest) (*model.AnalyzePatternsResponse, error)

	// MinePatterns recomputes the patterns of the user from all entries. The
	// previous patterns are kept if the run fails or ctx is cancelled.
	MinePatterns(ctx context.Context, userID string) ([]model.Pattern, error)
}

type patternDomain struct {
	patternRepo   repository.PatternRepository
	entryRepo     repository.EntryRepository
	insightDomain InsightDomain
	jobGuard      *scope.JobGuard
}

func NewPatternDomain(
	patternRepo repository.PatternRepository,
	entryRepo repository.EntryRepository,
	insightDomain InsightDomain,
	jobGuard *scope.JobGuard,
) *patternDomain {
	return &patternDomain{
		patternRepo:   patternRepo,
		entryRepo:     entryRepo,
		insightDomain: insightDomain,
		jobGuard:      jobGuard,
	}
}

func (d *patternDomain) GetPatterns(
	ctx context.Context, req *model.GetPatternsRequest,
) (*model.GetPatternsResponse, error) {
	filter := repository.GetPatternFilter{UserID: xcontext.RequestUserID(ctx)}
	if req.PatternType != "" {
		patternType, err := enum.ToEnum[entity.PatternType](req.PatternType)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid pattern type %s", req.PatternType)
		}
		filter.PatternType = patternType
	}

	patterns, err := d.patternRepo.GetList(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get patterns: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetPatternsResponse{Patterns: []model.Pattern{}}
	for i := range patterns {
		resp.Patterns = append(resp.Patterns, model.ConvertPattern(&patterns[i]))
	}

	return resp, nil
}

func (d *patternDomain) AnalyzePatterns(
	ctx context.Context, req *model.AnalyzePatternsRequest,
) (*model.AnalyzePatternsResponse, error) {
	timeframe, err := parseTimeframe(req.Timeframe)
	if err != nil {
		return nil, err
	}

	userID := xcontext.RequestUserID(ctx)
	ctx, release, err := d.jobGuard.TryAcquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	patterns, err := d.MinePatterns(ctx, userID)
	if err != nil {
		return nil, err
	}

	insights, err := d.insightDomain.Synthesize(ctx, userID, timeframe)
	if err != nil {
		return nil, err
	}

	return &model.AnalyzePatternsResponse{Patterns: patterns, Insights: insights}, nil
}

func (d *patternDomain) MinePatterns(ctx context.Context, userID string) ([]model.Pattern, error) {
	ctx, release, err := d.jobGuard.TryAcquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	defer func() {
		common.PromHistograms[common.MiningRunDurationSeconds].
			WithLabelValues("mine").Observe(time.Since(start).Seconds())
	}()

	entries, err := d.entryRepo.GetByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get entries of user %s: %v", userID, err)
		return nil, errorx.Unknown
	}

	cfg := xcontext.Configs(ctx).Progression
	mined, corruptions := pattern.Mine(entries, pattern.Options{
		MinSupport: cfg.PatternMinSupport,
		MaxSamples: cfg.PatternSampleEntryIDs,
	})

	for _, c := range corruptions {
		xcontext.Logger(ctx).Warnf("Skip corrupt %s signal of entry %s: %v", c.PatternType, c.EntryID, c.Err)
	}

	now := xcontext.Now(ctx)
	patterns := make([]entity.Pattern, 0, len(mined))
	for _, m := range mined {
		payload, err := json.Marshal(m.Payload())
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot marshal payload of pattern %s: %v", m.Key, err)
			return nil, errorx.Unknown
		}

		patterns = append(patterns, entity.Pattern{
			ID:          uuid.NewString(),
			UserID:      userID,
			PatternType: m.Type,
			PatternKey:  m.Key,
			Payload:     datatypes.JSON(payload),
			Frequency:   m.Frequency,
			FirstSeen:   m.FirstSeen,
			LastSeen:    m.LastSeen,
			CreatedAt:   now,
		})
	}

	err = xcontext.Transaction(ctx, func(ctx context.Context) error {
		if err := d.patternRepo.Replace(ctx, userID, pattern.Types(), patterns); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot replace patterns of user %s: %v", userID, err)
			return errorx.Unknown
		}

		// A cancelled run must not replace the previous snapshot.
		return ctx.Err()
	})
	if err != nil {
		return nil, err
	}

	result := make([]model.Pattern, 0, len(patterns))
	for i := range patterns {
		result = append(result, model.ConvertPattern(&patterns[i]))
	}

	return result, nil
}

func parseTimeframe(s string) (entity.Timeframe, error) {
	if s == "" {
		return entity.TimeframeMonth, nil
	}

	timeframe, err := enum.ToEnum[entity.Timeframe](s)
	if err != nil {
		return "", errorx.New(errorx.BadRequest, "Invalid timeframe %s", s)
	}

	return timeframe, nil
}
