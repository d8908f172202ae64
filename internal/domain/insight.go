package domain

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/questx-lab/progression/internal/common"
	"github.com/questx-lab/progression/internal/domain/insight"
	"github.com/questx-lab/progression/internal/domain/pattern"
	"github.com/questx-lab/progression/internal/domain/scope"
	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/internal/model"
	"github.com/questx-lab/progression/internal/repository"
	"github.com/questx-lab/progression/pkg/enum"
	"github.com/questx-lab/progression/pkg/errorx"
	"github.com/questx-lab/progression/pkg/xcontext"
	"golang.org/x/exp/slices"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type InsightDomain interface {
	GetInsights(context.Context, *model.GetInsightsRequest) (*model.GetInsightsResponse, error)
	SynthesizeInsights(context.Context, *model.SynthesizeInsightsRequest) (*model.SynthesizeInsightsResponse, error)
	UpdateInsightStatus(context.Context, *model.UpdateInsightStatusRequest) (*model.UpdateInsightStatusResponse, error)

	// Synthesize replaces the active insights of the timeframe with the ones
	// computed from the current patterns and entries.
	Synthesize(ctx context.Context, userID string, timeframe entity.Timeframe) ([]model.Insight, error)
}

type insightDomain struct {
	insightRepo repository.InsightRepository
	patternRepo repository.PatternRepository
	entryRepo   repository.EntryRepository
	jobGuard    *scope.JobGuard
}

func NewInsightDomain(
	insightRepo repository.InsightRepository,
	patternRepo repository.PatternRepository,
	entryRepo repository.EntryRepository,
	jobGuard *scope.JobGuard,
) *insightDomain {
	return &insightDomain{
		insightRepo: insightRepo,
		patternRepo: patternRepo,
		entryRepo:   entryRepo,
		jobGuard:    jobGuard,
	}
}

func (d *insightDomain) GetInsights(
	ctx context.Context, req *model.GetInsightsRequest,
) (*model.GetInsightsResponse, error) {
	var status entity.InsightStatus
	if req.Status != "" {
		var err error
		status, err = enum.ToEnum[entity.InsightStatus](req.Status)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid status %s", req.Status)
		}
	}

	insights, err := d.insightRepo.GetList(ctx, xcontext.RequestUserID(ctx), status)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get insights: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetInsightsResponse{Insights: []model.Insight{}}
	for i := range insights {
		resp.Insights = append(resp.Insights, model.ConvertInsight(&insights[i]))
	}

	return resp, nil
}

func (d *insightDomain) SynthesizeInsights(
	ctx context.Context, req *model.SynthesizeInsightsRequest,
) (*model.SynthesizeInsightsResponse, error) {
	timeframe, err := parseTimeframe(req.Timeframe)
	if err != nil {
		return nil, err
	}

	insights, err := d.Synthesize(ctx, xcontext.RequestUserID(ctx), timeframe)
	if err != nil {
		return nil, err
	}

	return &model.SynthesizeInsightsResponse{Insights: insights}, nil
}

func (d *insightDomain) UpdateInsightStatus(
	ctx context.Context, req *model.UpdateInsightStatusRequest,
) (*model.UpdateInsightStatusResponse, error) {
	status, err := enum.ToEnum[entity.InsightStatus](req.Status)
	if err != nil || status == entity.InsightActive {
		return nil, errorx.New(errorx.BadRequest, "Insight can only be acknowledged or dismissed")
	}

	current, err := d.insightRepo.GetByID(ctx, req.InsightID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found insight")
		}

		xcontext.Logger(ctx).Errorf("Cannot get insight %s: %v", req.InsightID, err)
		return nil, errorx.Unknown
	}

	if current.UserID != xcontext.RequestUserID(ctx) {
		return nil, errorx.New(errorx.NotFound, "Not found insight")
	}

	if current.Status != entity.InsightActive {
		return nil, errorx.New(errorx.BadRequest, "Insight is already %s", current.Status)
	}

	ok, err := d.insightRepo.UpdateStatus(ctx, current.ID, entity.InsightActive, status)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update status of insight %s: %v", current.ID, err)
		return nil, errorx.Unknown
	}

	if !ok {
		return nil, errorx.New(errorx.BadRequest, "Insight is no longer active")
	}

	return &model.UpdateInsightStatusResponse{}, nil
}

func (d *insightDomain) Synthesize(
	ctx context.Context, userID string, timeframe entity.Timeframe,
) ([]model.Insight, error) {
	ctx, release, err := d.jobGuard.TryAcquire(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	defer func() {
		common.PromHistograms[common.MiningRunDurationSeconds].
			WithLabelValues("synthesize").Observe(time.Since(start).Seconds())
	}()

	window, err := insight.WindowOf(timeframe, xcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	candidates, err := d.candidates(ctx, userID, window)
	if err != nil {
		return nil, err
	}

	cfg := xcontext.Configs(ctx).Progression
	scored := insight.Score(candidates, cfg.InsightSampleThreshold)
	slices.SortStableFunc(scored, func(a, b insight.Scored) bool {
		if a.Rank != b.Rank {
			return a.Rank > b.Rank
		}
		return a.Confidence > b.Confidence
	})

	now := xcontext.Now(ctx)
	insights := make([]entity.Insight, 0, len(scored))
	for _, s := range scored {
		dataPoints, err := json.Marshal(s.DataPoints)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot marshal data points of insight %s: %v", s.Type, err)
			return nil, errorx.Unknown
		}

		insights = append(insights, entity.Insight{
			ID:           uuid.NewString(),
			UserID:       userID,
			InsightType:  s.Type,
			Title:        s.Title,
			Description:  s.Description,
			Suggestion:   s.Suggestion,
			DataPoints:   datatypes.JSON(dataPoints),
			Confidence:   s.Confidence,
			Priority:     s.Priority,
			Status:       entity.InsightActive,
			Actionable:   s.Actionable,
			PriorityRank: s.Rank,
			Timeframe:    timeframe,
			WindowStart:  window.Start,
			WindowEnd:    window.End,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	err = xcontext.Transaction(ctx, func(ctx context.Context) error {
		if err := d.insightRepo.ReplaceActive(ctx, userID, timeframe, insights); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot replace insights of user %s: %v", userID, err)
			return errorx.Unknown
		}

		return ctx.Err()
	})
	if err != nil {
		return nil, err
	}

	result := make([]model.Insight, 0, len(insights))
	for i := range insights {
		result = append(result, model.ConvertInsight(&insights[i]))
	}

	return result, nil
}

func (d *insightDomain) candidates(
	ctx context.Context, userID string, window insight.Window,
) ([]insight.Candidate, error) {
	cfg := xcontext.Configs(ctx).Progression

	entries, err := d.entryRepo.GetInWindow(ctx, userID, window.Start, window.End.Add(time.Nanosecond))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get entries of user %s: %v", userID, err)
		return nil, errorx.Unknown
	}

	patterns, err := d.patternRepo.GetList(ctx, repository.GetPatternFilter{
		UserID:        userID,
		LastSeenSince: window.Start,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get patterns of user %s: %v", userID, err)
		return nil, errorx.Unknown
	}

	// Stored patterns carry the all-time frequency. Only occurrences inside
	// the window count toward the highlight.
	inWindow := map[entity.PatternType]map[string]int{}
	mined, _ := pattern.Mine(entries, pattern.Options{MinSupport: 1})
	for _, m := range mined {
		if inWindow[m.Type] == nil {
			inWindow[m.Type] = map[string]int{}
		}
		inWindow[m.Type][m.Key] = m.Frequency
	}

	highlighted := make([]insight.HighlightedPattern, 0, len(patterns))
	for _, p := range patterns {
		frequency := inWindow[p.PatternType][p.PatternKey]
		if frequency == 0 {
			continue
		}

		var payload struct {
			Display string `json:"display"`
		}
		if err := json.Unmarshal(p.Payload, &payload); err != nil || payload.Display == "" {
			payload.Display = p.PatternKey
		}

		highlighted = append(highlighted, insight.HighlightedPattern{
			Type:      p.PatternType,
			Key:       p.PatternKey,
			Display:   payload.Display,
			Frequency: frequency,
		})
	}

	var moods, energies []int64
	var completions []insight.HabitCompletion
	for _, e := range entries {
		if e.MoodScore.Valid {
			moods = append(moods, e.MoodScore.Int64)
		}

		if e.EnergyLevel.Valid {
			energies = append(energies, e.EnergyLevel.Int64)
		}

		if e.Domain == entity.HabitCompletion {
			completions = append(completions, insight.HabitCompletion{HabitID: e.TargetID, Day: e.Day})
		}
	}

	candidates := insight.PatternHighlights(highlighted, cfg.InsightTopPatterns)
	candidates = append(candidates,
		insight.Distribution(entity.MoodDistribution, moods, cfg.LowMoodThreshold),
		insight.Distribution(entity.EnergyDistribution, energies, cfg.LowEnergyThreshold),
	)
	candidates = append(candidates,
		insight.HabitAdherence(completions, window.Days, cfg.AdherenceThreshold)...)

	return candidates, nil
}
