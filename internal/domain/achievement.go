package domain

import (
	"context"
	"time"

	"github.com/questx-lab/progression/internal/common"
	"github.com/questx-lab/progression/internal/domain/requirement"
	"github.com/questx-lab/progression/internal/domain/scope"
	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/internal/model"
	"github.com/questx-lab/progression/internal/repository"
	"github.com/questx-lab/progression/pkg/errorx"
	"github.com/questx-lab/progression/pkg/xcontext"
	"golang.org/x/exp/slices"
)

type AchievementDomain interface {
	GetAchievements(context.Context, *model.GetAchievementsRequest) (*model.GetAchievementsResponse, error)

	// Evaluate unlocks every achievement whose requirement matches the
	// triggering domain and is satisfied now. When an unlock raises the level,
	// the evaluation continues with the level_up trigger.
	Evaluate(ctx context.Context, userID string, domain entity.DomainType, at time.Time) ([]model.Unlock, error)
}

type achievementDomain struct {
	achievementRepo repository.AchievementRepository
	ledgerDomain    LedgerDomain
	scopeManager    *scope.Manager
	metrics         *metricsLoader
}

type parsedAchievement struct {
	definition  *entity.AchievementDefinition
	requirement requirement.Requirement
}

func NewAchievementDomain(
	achievementRepo repository.AchievementRepository,
	ledgerRepo repository.LedgerRepository,
	streakRepo repository.StreakRepository,
	entryRepo repository.EntryRepository,
	userRepo repository.UserRepository,
	ledgerDomain LedgerDomain,
	scopeManager *scope.Manager,
) *achievementDomain {
	return &achievementDomain{
		achievementRepo: achievementRepo,
		ledgerDomain:    ledgerDomain,
		scopeManager:    scopeManager,
		metrics:         newMetricsLoader(ledgerRepo, streakRepo, entryRepo, userRepo),
	}
}

func (d *achievementDomain) GetAchievements(
	ctx context.Context, req *model.GetAchievementsRequest,
) (*model.GetAchievementsResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	definitions, err := d.achievementRepo.GetDefinitions(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get achievement definitions: %v", err)
		return nil, errorx.Unknown
	}

	unlocks, err := d.achievementRepo.GetUnlocks(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get unlocks: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetAchievementsResponse{
		Unlocked:   []model.UnlockedAchievement{},
		InProgress: []model.AchievementProgress{},
	}

	earnedAt := map[string]time.Time{}
	for _, u := range unlocks {
		earnedAt[u.AchievementID] = u.EarnedAt
	}

	metrics := d.metrics.load(ctx, userID, xcontext.Now(ctx))
	for i := range definitions {
		def := &definitions[i]
		spec, err := requirement.Parse(def.Requirement)
		var specMap map[string]any
		if err == nil {
			specMap = requirement.ToMap(spec)
		}

		if t, ok := earnedAt[def.ID]; ok {
			resp.Unlocked = append(resp.Unlocked, model.UnlockedAchievement{
				Achievement: model.ConvertAchievement(def, specMap),
				EarnedAt:    t.Format(model.DefaultTimeLayout),
			})
			continue
		}

		if def.IsSecret || err != nil {
			continue
		}

		result, err := spec.Evaluate(ctx, metrics)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot evaluate achievement %s: %v", def.Code, err)
			return nil, errorx.Unknown
		}

		resp.InProgress = append(resp.InProgress, model.AchievementProgress{
			Achievement: model.ConvertAchievement(def, specMap),
			Progress:    result.Progress,
		})
	}

	slices.SortStableFunc(resp.InProgress, func(a, b model.AchievementProgress) bool {
		return a.Progress > b.Progress
	})

	return resp, nil
}

func (d *achievementDomain) Evaluate(
	ctx context.Context, userID string, domain entity.DomainType, at time.Time,
) ([]model.Unlock, error) {
	unlocks := []model.Unlock{}
	err := d.scopeManager.Do(ctx, userID, func(ctx context.Context) error {
		definitions, err := d.loadDefinitions(ctx)
		if err != nil {
			return err
		}

		existing, err := d.achievementRepo.GetUnlocks(ctx, userID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get unlocks of user %s: %v", userID, err)
			return errorx.Unknown
		}

		unlocked := map[string]bool{}
		for _, u := range existing {
			unlocked[u.AchievementID] = true
		}

		metrics := d.metrics.load(ctx, userID, at)
		triggers := []entity.DomainType{domain}
		for len(triggers) > 0 {
			trigger := triggers[0]
			triggers = triggers[1:]

			leveledUp := false
			for _, a := range definitions {
				if unlocked[a.definition.ID] || !a.requirement.Matches(trigger) {
					continue
				}

				result, err := a.requirement.Evaluate(ctx, metrics)
				if err != nil {
					xcontext.Logger(ctx).Errorf("Cannot evaluate achievement %s: %v", a.definition.Code, err)
					return errorx.Unknown
				}

				if !result.Satisfied {
					continue
				}

				unlock, award, err := d.unlock(ctx, userID, a.definition)
				if err != nil {
					return err
				}

				unlocked[a.definition.ID] = true
				if unlock == nil {
					continue
				}

				unlocks = append(unlocks, model.ConvertUnlock(a.definition, unlock.EarnedAt))
				if award.LeveledUp {
					leveledUp = true
				}
			}

			if leveledUp {
				triggers = append(triggers, entity.LevelUp)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return unlocks, nil
}

// unlock inserts the unlock and applies its experience in one savepoint. It
// returns a nil unlock if the achievement had already been unlocked.
func (d *achievementDomain) unlock(
	ctx context.Context, userID string, definition *entity.AchievementDefinition,
) (*entity.AchievementUnlock, *AwardResult, error) {
	unlock := &entity.AchievementUnlock{
		UserID:        userID,
		AchievementID: definition.ID,
		EarnedAt:      xcontext.Now(ctx),
		Progress:      1,
	}

	var created bool
	var award *AwardResult
	err := xcontext.Transaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = d.achievementRepo.CreateUnlock(ctx, unlock)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create unlock of %s: %v", definition.Code, err)
			return errorx.Unknown
		}

		if !created {
			return nil
		}

		award, err = d.ledgerDomain.ApplyAward(
			ctx, userID, definition.XPReward, "achievement:"+definition.ID, "achievement")
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	if !created {
		return nil, nil, nil
	}

	common.PromCounters[common.AchievementUnlockedTotal].WithLabelValues(string(definition.Rarity)).Inc()
	return unlock, award, nil
}

// loadDefinitions returns the definitions with a valid requirement. Malformed
// definitions are logged and skipped.
func (d *achievementDomain) loadDefinitions(ctx context.Context) ([]parsedAchievement, error) {
	definitions, err := d.achievementRepo.GetDefinitions(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get achievement definitions: %v", err)
		return nil, errorx.Unknown
	}

	result := []parsedAchievement{}
	for i := range definitions {
		spec, err := requirement.Parse(definitions[i].Requirement)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Skip achievement %s: %v", definitions[i].Code, err)
			common.PromCounters[common.MalformedRequirementTotal].WithLabelValues("achievement").Inc()
			continue
		}

		result = append(result, parsedAchievement{definition: &definitions[i], requirement: spec})
	}

	return result, nil
}
