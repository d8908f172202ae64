package domain

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/questx-lab/progression/internal/domain/requirement"
	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/internal/model"
	"github.com/questx-lab/progression/internal/repository"
	"github.com/questx-lab/progression/pkg/dateutil"
	"github.com/questx-lab/progression/pkg/enum"
	"github.com/questx-lab/progression/pkg/errorx"
	"github.com/questx-lab/progression/pkg/xcontext"
	"gorm.io/datatypes"
)

// catalogNamespace derives stable ids from codes, so seeding twice updates
// the same rows.
var catalogNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("progression/catalog"))

type CatalogDomain interface {
	// Seed creates or updates the definitions of the catalog by code. The
	// whole catalog is rejected if one requirement is invalid.
	Seed(ctx context.Context, catalog *model.Catalog) error
}

type catalogDomain struct {
	achievementRepo repository.AchievementRepository
	rewardRepo      repository.RewardRepository
	challengeRepo   repository.ChallengeRepository
}

func NewCatalogDomain(
	achievementRepo repository.AchievementRepository,
	rewardRepo repository.RewardRepository,
	challengeRepo repository.ChallengeRepository,
) *catalogDomain {
	return &catalogDomain{
		achievementRepo: achievementRepo,
		rewardRepo:      rewardRepo,
		challengeRepo:   challengeRepo,
	}
}

func (d *catalogDomain) Seed(ctx context.Context, catalog *model.Catalog) error {
	achievements := make([]*entity.AchievementDefinition, 0, len(catalog.Achievements))
	for _, a := range catalog.Achievements {
		raw, err := normalizeRequirement(a.Code, a.Requirement)
		if err != nil {
			return err
		}

		rarity := entity.RarityCommon
		if a.Rarity != "" {
			rarity, err = enum.ToEnum[entity.Rarity](a.Rarity)
			if err != nil {
				return errorx.New(errorx.BadRequest, "Invalid rarity %s of %s", a.Rarity, a.Code)
			}
		}

		achievements = append(achievements, &entity.AchievementDefinition{
			Base:        entity.Base{ID: catalogID("achievement", a.Code)},
			Code:        a.Code,
			Name:        a.Name,
			Description: a.Description,
			Requirement: raw,
			XPReward:    a.XPReward,
			Rarity:      rarity,
			IsSecret:    a.IsSecret,
		})
	}

	challenges := make([]*entity.DailyChallenge, 0, len(catalog.Challenges))
	for _, c := range catalog.Challenges {
		raw, err := normalizeRequirement(c.Code, c.Requirement)
		if err != nil {
			return err
		}

		if c.ActiveDate != "" {
			if _, err := dateutil.ParseDay(c.ActiveDate, xcontext.Configs(ctx).Progression.Location()); err != nil {
				return errorx.New(errorx.BadRequest, "Invalid active date %s of %s", c.ActiveDate, c.Code)
			}
		}

		challenges = append(challenges, &entity.DailyChallenge{
			Base:            entity.Base{ID: catalogID("challenge", c.Code)},
			Code:            c.Code,
			Title:           c.Title,
			Description:     c.Description,
			Requirement:     raw,
			RequiredLevel:   c.RequiredLevel,
			XPReward:        c.XPReward,
			BonusXP:         c.BonusXP,
			BonusBeforeHour: c.BonusBeforeHour,
			ActiveDate:      c.ActiveDate,
		})
	}

	return xcontext.Transaction(ctx, func(ctx context.Context) error {
		for _, a := range achievements {
			if err := d.achievementRepo.UpsertDefinition(ctx, a); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot upsert achievement %s: %v", a.Code, err)
				return errorx.Unknown
			}
		}

		for _, r := range catalog.Rewards {
			err := d.rewardRepo.Upsert(ctx, &entity.Reward{
				Base:          entity.Base{ID: catalogID("reward", r.Code)},
				Code:          r.Code,
				Name:          r.Name,
				Kind:          r.Kind,
				RequiredLevel: r.RequiredLevel,
			})
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot upsert reward %s: %v", r.Code, err)
				return errorx.Unknown
			}
		}

		for _, c := range challenges {
			if err := d.challengeRepo.Upsert(ctx, c); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot upsert challenge %s: %v", c.Code, err)
				return errorx.Unknown
			}
		}

		xcontext.Logger(ctx).Infof("Seeded %d achievements, %d rewards and %d challenges",
			len(achievements), len(catalog.Rewards), len(challenges))
		return nil
	})
}

// normalizeRequirement validates the requirement and stores it in the
// canonical form.
func normalizeRequirement(code string, data map[string]any) (datatypes.JSON, error) {
	req, err := requirement.FromMap(data)
	if err != nil {
		return nil, errorx.New(errorx.InvalidRequirement, "Invalid requirement of %s: %v", code, err)
	}

	b, err := json.Marshal(requirement.ToMap(req))
	if err != nil {
		return nil, err
	}

	return datatypes.JSON(b), nil
}

func catalogID(kind, code string) string {
	return uuid.NewSHA1(catalogNamespace, []byte(kind+":"+code)).String()
}
