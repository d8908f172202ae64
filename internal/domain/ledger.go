package domain

import (
	"context"
	"errors"

	"github.com/questx-lab/progression/internal/common"
	"github.com/questx-lab/progression/internal/domain/leveling"
	"github.com/questx-lab/progression/internal/domain/scope"
	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/internal/model"
	"github.com/questx-lab/progression/internal/repository"
	"github.com/questx-lab/progression/pkg/errorx"
	"github.com/questx-lab/progression/pkg/xcontext"
	"gorm.io/gorm"
)

type LedgerDomain interface {
	GetLedger(context.Context, *model.GetLedgerRequest) (*model.GetLedgerResponse, error)

	// ApplyAward adds amount to the total experience of the user. The same
	// eventID is only applied once, a re-delivered award returns the current
	// state without changing it.
	ApplyAward(ctx context.Context, userID string, amount int64, eventID, source string) (*AwardResult, error)

	State(ctx context.Context, userID string) (leveling.State, error)
}

type AwardResult struct {
	State leveling.State

	// Applied is false if the award had been applied before.
	Applied   bool
	LeveledUp bool
}

type ledgerDomain struct {
	ledgerRepo   repository.LedgerRepository
	userRepo     repository.UserRepository
	scopeManager *scope.Manager
}

func NewLedgerDomain(
	ledgerRepo repository.LedgerRepository,
	userRepo repository.UserRepository,
	scopeManager *scope.Manager,
) *ledgerDomain {
	return &ledgerDomain{
		ledgerRepo:   ledgerRepo,
		userRepo:     userRepo,
		scopeManager: scopeManager,
	}
}

func (d *ledgerDomain) GetLedger(
	ctx context.Context, req *model.GetLedgerRequest,
) (*model.GetLedgerResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	state, err := d.State(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := model.GetLedgerResponse(model.ConvertLedger(userID, state))
	return &resp, nil
}

// State returns the derived level state of the user. Unknown users have the
// state of zero experience.
func (d *ledgerDomain) State(ctx context.Context, userID string) (leveling.State, error) {
	ledger, err := d.ledgerRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leveling.Derive(0), nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get ledger of user %s: %v", userID, err)
		return leveling.State{}, errorx.Unknown
	}

	return leveling.Derive(ledger.TotalXP), nil
}

func (d *ledgerDomain) ApplyAward(
	ctx context.Context, userID string, amount int64, eventID, source string,
) (*AwardResult, error) {
	if userID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty user id")
	}

	if eventID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty event id")
	}

	if amount < 0 {
		return nil, errorx.New(errorx.BadRequest, "Award amount must not be negative")
	}

	var result AwardResult
	err := d.scopeManager.Do(ctx, userID, func(ctx context.Context) error {
		_, err := d.userRepo.CreateIfNotExists(ctx, &entity.User{
			Base:         entity.Base{ID: userID},
			RegisteredAt: xcontext.Now(ctx),
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create user %s: %v", userID, err)
			return errorx.Unknown
		}

		if err := d.ledgerRepo.CreateIfNotExists(ctx, userID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create ledger of user %s: %v", userID, err)
			return errorx.Unknown
		}

		ledger, err := d.ledgerRepo.Get(ctx, userID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get ledger of user %s: %v", userID, err)
			return errorx.Unknown
		}

		before := leveling.Derive(ledger.TotalXP)
		applied, err := d.ledgerRepo.CreateAward(ctx, &entity.XPAward{
			UserID:  userID,
			EventID: eventID,
			Amount:  amount,
			Source:  source,
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create award %s of user %s: %v", eventID, userID, err)
			return errorx.Unknown
		}

		if !applied {
			result = AwardResult{State: before}
			return nil
		}

		if amount > 0 {
			if err := d.ledgerRepo.IncreaseTotalXP(ctx, userID, amount); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot increase total xp of user %s: %v", userID, err)
				return errorx.Unknown
			}
		}

		after := leveling.Derive(ledger.TotalXP + amount)
		result = AwardResult{
			State:     after,
			Applied:   true,
			LeveledUp: after.Level > before.Level,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Applied && amount > 0 {
		common.PromCounters[common.XPAwardedTotal].WithLabelValues(source).Add(float64(amount))
	}

	return &result, nil
}
