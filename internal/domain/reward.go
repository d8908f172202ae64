package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/questx-lab/progression/internal/common"
	"github.com/questx-lab/progression/internal/domain/requirement"
	"github.com/questx-lab/progression/internal/domain/scope"
	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/internal/model"
	"github.com/questx-lab/progression/internal/repository"
	"github.com/questx-lab/progression/pkg/dateutil"
	"github.com/questx-lab/progression/pkg/errorx"
	"github.com/questx-lab/progression/pkg/xcontext"
)

type RewardDomain interface {
	GetRewards(context.Context, *model.GetRewardsRequest) (*model.GetRewardsResponse, error)

	// GrantRewards grants every reward whose required level has been reached
	// and which the user does not own yet.
	GrantRewards(ctx context.Context, userID string) ([]model.Reward, error)

	// EvaluateChallenges completes the challenges of the day of at which
	// match the domain and whose requirement is satisfied. A non-empty
	// challengeID evaluates that challenge even if it does not match the
	// domain.
	EvaluateChallenges(ctx context.Context, userID string, domain entity.DomainType, challengeID string, at time.Time) ([]model.ChallengeCompletion, error)
}

type rewardDomain struct {
	rewardRepo    repository.RewardRepository
	challengeRepo repository.ChallengeRepository
	ledgerDomain  LedgerDomain
	scopeManager  *scope.Manager
	metrics       *metricsLoader
}

func NewRewardDomain(
	rewardRepo repository.RewardRepository,
	challengeRepo repository.ChallengeRepository,
	ledgerRepo repository.LedgerRepository,
	streakRepo repository.StreakRepository,
	entryRepo repository.EntryRepository,
	userRepo repository.UserRepository,
	ledgerDomain LedgerDomain,
	scopeManager *scope.Manager,
) *rewardDomain {
	return &rewardDomain{
		rewardRepo:    rewardRepo,
		challengeRepo: challengeRepo,
		ledgerDomain:  ledgerDomain,
		scopeManager:  scopeManager,
		metrics:       newMetricsLoader(ledgerRepo, streakRepo, entryRepo, userRepo),
	}
}

func (d *rewardDomain) GetRewards(
	ctx context.Context, req *model.GetRewardsRequest,
) (*model.GetRewardsResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	loc := xcontext.Configs(ctx).Progression.Location()
	day := req.Date
	if day == "" {
		day = dateutil.DayKey(xcontext.Now(ctx), loc)
	} else if _, err := dateutil.ParseDay(day, loc); err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid date %s", req.Date)
	}

	userRewards, err := d.rewardRepo.GetUserRewards(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get rewards: %v", err)
		return nil, errorx.Unknown
	}

	completions, err := d.challengeRepo.GetCompletions(ctx, userID, day)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get challenge completions: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetRewardsResponse{
		Rewards:     []model.Reward{},
		Completions: []model.ChallengeCompletion{},
	}

	for i := range userRewards {
		resp.Rewards = append(resp.Rewards,
			model.ConvertReward(&userRewards[i].Reward, userRewards[i].GrantedAt))
	}

	for i := range completions {
		resp.Completions = append(resp.Completions,
			model.ConvertChallengeCompletion(&completions[i], &completions[i].Challenge))
	}

	return resp, nil
}

func (d *rewardDomain) GrantRewards(ctx context.Context, userID string) ([]model.Reward, error) {
	granted := []model.Reward{}
	err := d.scopeManager.Do(ctx, userID, func(ctx context.Context) error {
		state, err := d.ledgerDomain.State(ctx, userID)
		if err != nil {
			return err
		}

		rewards, err := d.rewardRepo.GetUpToLevel(ctx, state.Level)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get rewards up to level %d: %v", state.Level, err)
			return errorx.Unknown
		}

		now := xcontext.Now(ctx)
		for i := range rewards {
			created, err := d.rewardRepo.CreateUserReward(ctx, &entity.UserReward{
				UserID:    userID,
				RewardID:  rewards[i].ID,
				GrantedAt: now,
			})
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot grant reward %s: %v", rewards[i].Code, err)
				return errorx.Unknown
			}

			if created {
				granted = append(granted, model.ConvertReward(&rewards[i], now))
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return granted, nil
}

func (d *rewardDomain) EvaluateChallenges(
	ctx context.Context, userID string, domain entity.DomainType, challengeID string, at time.Time,
) ([]model.ChallengeCompletion, error) {
	loc := xcontext.Configs(ctx).Progression.Location()
	day := dateutil.DayKey(at, loc)

	completions := []model.ChallengeCompletion{}
	err := d.scopeManager.Do(ctx, userID, func(ctx context.Context) error {
		challenges, err := d.challengeRepo.GetActiveOn(ctx, day)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get challenges of %s: %v", day, err)
			return errorx.Unknown
		}

		if len(challenges) == 0 {
			return nil
		}

		done, err := d.challengeRepo.GetCompletions(ctx, userID, day)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get completions of user %s: %v", userID, err)
			return errorx.Unknown
		}

		completed := map[string]bool{}
		for _, c := range done {
			completed[c.ChallengeID] = true
		}

		metrics := d.metrics.load(ctx, userID, at)
		for i := range challenges {
			challenge := &challenges[i]
			if completed[challenge.ID] {
				continue
			}

			spec, err := requirement.Parse(challenge.Requirement)
			if err != nil {
				xcontext.Logger(ctx).Warnf("Skip challenge %s: %v", challenge.Code, err)
				common.PromCounters[common.MalformedRequirementTotal].WithLabelValues("challenge").Inc()
				continue
			}

			if challenge.ID != challengeID && !spec.Matches(domain) {
				continue
			}

			level, err := metrics.Level(ctx)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot get level of user %s: %v", userID, err)
				return errorx.Unknown
			}

			if level < challenge.RequiredLevel {
				continue
			}

			result, err := spec.Evaluate(ctx, metrics)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot evaluate challenge %s: %v", challenge.Code, err)
				return errorx.Unknown
			}

			if !result.Satisfied {
				continue
			}

			completion, err := d.complete(ctx, userID, challenge, day, at)
			if err != nil {
				return err
			}

			if completion != nil {
				completions = append(completions, model.ConvertChallengeCompletion(completion, challenge))
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return completions, nil
}

// complete records the completion and applies its experience in one
// savepoint. It returns nil if the challenge was already completed on day.
func (d *rewardDomain) complete(
	ctx context.Context, userID string, challenge *entity.DailyChallenge, day string, at time.Time,
) (*entity.DailyChallengeCompletion, error) {
	loc := xcontext.Configs(ctx).Progression.Location()
	bonus := challenge.BonusBeforeHour > 0 && at.In(loc).Hour() < challenge.BonusBeforeHour

	completion := &entity.DailyChallengeCompletion{
		UserID:      userID,
		ChallengeID: challenge.ID,
		Date:        day,
		CompletedAt: xcontext.Now(ctx),
		XPAwarded:   challenge.XPReward,
	}
	if bonus {
		completion.XPAwarded += challenge.BonusXP
	}

	var created bool
	err := xcontext.Transaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = d.challengeRepo.CreateCompletion(ctx, completion)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create completion of %s: %v", challenge.Code, err)
			return errorx.Unknown
		}

		if !created {
			return nil
		}

		eventID := fmt.Sprintf("challenge:%s:%s", challenge.ID, day)
		_, err = d.ledgerDomain.ApplyAward(ctx, userID, completion.XPAwarded, eventID, "challenge")
		return err
	})
	if err != nil {
		return nil, err
	}

	if !created {
		return nil, nil
	}

	common.PromCounters[common.ChallengeCompletedTotal].WithLabelValues(fmt.Sprint(bonus)).Inc()
	return completion, nil
}
