package domain

import (
	"context"
	"database/sql"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/questx-lab/progression/internal/common"
	"github.com/questx-lab/progression/internal/domain/scope"
	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/internal/model"
	"github.com/questx-lab/progression/internal/repository"
	"github.com/questx-lab/progression/pkg/dateutil"
	"github.com/questx-lab/progression/pkg/enum"
	"github.com/questx-lab/progression/pkg/errorx"
	"github.com/questx-lab/progression/pkg/pubsub"
	"github.com/questx-lab/progression/pkg/xcontext"
	"golang.org/x/exp/slices"
	"gorm.io/datatypes"
)

// eventNamespace is the namespace of event ids derived from the envelope.
var eventNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("progression/events"))

type IntakeDomain interface {
	IngestEvent(context.Context, *model.IngestEventRequest) (*model.IngestEventResponse, error)
	RegisterUser(context.Context, *model.RegisterUserRequest) (*model.RegisterUserResponse, error)

	// HandleEvent is the subscribe handler of the event topic.
	HandleEvent(ctx context.Context, pack *pubsub.Pack, t time.Time) error
}

type intakeDomain struct {
	userRepo  repository.UserRepository
	entryRepo repository.EntryRepository

	ledgerDomain      LedgerDomain
	streakDomain      StreakDomain
	achievementDomain AchievementDomain
	rewardDomain      RewardDomain

	scopeManager *scope.Manager
	publisher    pubsub.Publisher
}

// NewIntakeDomain creates the intake. The publisher is optional, no unlock
// notification is sent without it.
func NewIntakeDomain(
	userRepo repository.UserRepository,
	entryRepo repository.EntryRepository,
	ledgerDomain LedgerDomain,
	streakDomain StreakDomain,
	achievementDomain AchievementDomain,
	rewardDomain RewardDomain,
	scopeManager *scope.Manager,
	publisher pubsub.Publisher,
) *intakeDomain {
	return &intakeDomain{
		userRepo:          userRepo,
		entryRepo:         entryRepo,
		ledgerDomain:      ledgerDomain,
		streakDomain:      streakDomain,
		achievementDomain: achievementDomain,
		rewardDomain:      rewardDomain,
		scopeManager:      scopeManager,
		publisher:         publisher,
	}
}

func (d *intakeDomain) IngestEvent(
	ctx context.Context, req *model.IngestEventRequest,
) (*model.IngestEventResponse, error) {
	event := model.Event(*req)
	requestUserID := xcontext.RequestUserID(ctx)
	if event.UserID == "" {
		event.UserID = requestUserID
	} else if requestUserID != "" && event.UserID != requestUserID {
		return nil, errorx.New(errorx.PermissionDenied, "Cannot ingest events of another user")
	}

	return d.ingest(ctx, &event)
}

func (d *intakeDomain) HandleEvent(ctx context.Context, pack *pubsub.Pack, t time.Time) error {
	var event model.Event
	if err := json.Unmarshal(pack.Msg, &event); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot decode event envelope: %v", err)
		common.PromCounters[common.EventsIngestedTotal].WithLabelValues("", "rejected").Inc()
		return errorx.New(errorx.BadRequest, "Invalid event envelope")
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = t
	}

	_, err := d.ingest(ctx, &event)
	return err
}

func (d *intakeDomain) RegisterUser(
	ctx context.Context, req *model.RegisterUserRequest,
) (*model.RegisterUserResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	registeredAt := req.RegisteredAt
	if registeredAt.IsZero() {
		registeredAt = xcontext.Now(ctx)
	}

	created, err := d.userRepo.CreateIfNotExists(ctx, &entity.User{
		Base:         entity.Base{ID: userID},
		Name:         req.Name,
		RegisteredAt: registeredAt,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create user %s: %v", userID, err)
		return nil, errorx.Unknown
	}

	if !created && req.Name != "" {
		if err := d.userRepo.UpdateProfile(ctx, userID, req.Name); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot update profile of user %s: %v", userID, err)
			return nil, errorx.Unknown
		}
	}

	return &model.RegisterUserResponse{Created: created}, nil
}

func (d *intakeDomain) ingest(ctx context.Context, event *model.Event) (*model.IngestEventResponse, error) {
	domain, err := enum.ToEnum[entity.DomainType](event.DomainType)
	if err != nil {
		common.PromCounters[common.EventsIngestedTotal].WithLabelValues("", "rejected").Inc()
		return nil, errorx.New(errorx.BadRequest, "Invalid domain type %s", event.DomainType)
	}

	if event.UserID == "" {
		common.PromCounters[common.EventsIngestedTotal].WithLabelValues(string(domain), "rejected").Inc()
		return nil, errorx.New(errorx.BadRequest, "Not allow empty user id")
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = xcontext.Now(ctx)
	}

	if event.EventID == "" {
		event.EventID = deriveEventID(event)
	}

	var payload model.EventPayload
	if err := decodePayload(event.Payload, &payload); err != nil {
		common.PromCounters[common.EventsIngestedTotal].WithLabelValues(string(domain), "rejected").Inc()
		return nil, errorx.New(errorx.BadRequest, "Invalid payload: %v", err)
	}

	if err := validateScore(payload.MoodScore); err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid mood_score: %v", err)
	}

	if err := validateScore(payload.EnergyLevel); err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid energy_level: %v", err)
	}

	entry, err := newEntry(ctx, event, domain, &payload)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot build entry of event %s: %v", event.EventID, err)
		return nil, errorx.Unknown
	}

	resp := &model.IngestEventResponse{
		EventID:     event.EventID,
		Unlocks:     []model.Unlock{},
		Completions: []model.ChallengeCompletion{},
		Rewards:     []model.Reward{},
	}

	leveledUp := false
	err = d.scopeManager.Do(ctx, event.UserID, func(ctx context.Context) error {
		_, err := d.userRepo.CreateIfNotExists(ctx, &entity.User{
			Base:         entity.Base{ID: event.UserID},
			RegisteredAt: event.Timestamp,
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create user %s: %v", event.UserID, err)
			return errorx.Unknown
		}

		created, err := d.entryRepo.CreateIfNotExists(ctx, entry)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create entry %s: %v", event.EventID, err)
			return errorx.Unknown
		}

		if !created {
			resp.Duplicate = true
			state, err := d.ledgerDomain.State(ctx, event.UserID)
			if err != nil {
				return err
			}
			resp.Ledger = model.ConvertLedger(event.UserID, state)
			return nil
		}

		before, err := d.ledgerDomain.State(ctx, event.UserID)
		if err != nil {
			return err
		}

		baseXP := xcontext.Configs(ctx).Progression.DomainXP[string(domain)]
		if _, err := d.ledgerDomain.ApplyAward(ctx, event.UserID, baseXP, event.EventID, string(domain)); err != nil {
			return err
		}

		d.recordStreaks(ctx, event.UserID, domain, &payload, event.Timestamp)

		unlocks, err := d.achievementDomain.Evaluate(ctx, event.UserID, domain, event.Timestamp)
		if err != nil {
			return err
		}
		resp.Unlocks = append(resp.Unlocks, unlocks...)

		completions, err := d.rewardDomain.EvaluateChallenges(
			ctx, event.UserID, domain, payload.ChallengeID, event.Timestamp)
		if err != nil {
			return err
		}
		resp.Completions = append(resp.Completions, completions...)

		state, err := d.ledgerDomain.State(ctx, event.UserID)
		if err != nil {
			return err
		}

		if state.Level > before.Level {
			leveledUp = true
			unlocks, err := d.achievementDomain.Evaluate(ctx, event.UserID, entity.LevelUp, event.Timestamp)
			if err != nil {
				return err
			}
			resp.Unlocks = append(resp.Unlocks, unlocks...)
		}

		rewards, err := d.rewardDomain.GrantRewards(ctx, event.UserID)
		if err != nil {
			return err
		}
		resp.Rewards = append(resp.Rewards, rewards...)

		state, err = d.ledgerDomain.State(ctx, event.UserID)
		if err != nil {
			return err
		}
		resp.Ledger = model.ConvertLedger(event.UserID, state)

		return nil
	})
	if err != nil {
		common.PromCounters[common.EventsIngestedTotal].WithLabelValues(string(domain), "failed").Inc()
		return nil, err
	}

	if resp.Duplicate {
		common.PromCounters[common.EventsIngestedTotal].WithLabelValues(string(domain), "duplicate").Inc()
		return resp, nil
	}

	common.PromCounters[common.EventsIngestedTotal].WithLabelValues(string(domain), "applied").Inc()
	d.notify(ctx, event.UserID, resp, leveledUp)
	return resp, nil
}

// recordStreaks advances every streak fed by the domain. A failing streak is
// logged and does not abort the event.
func (d *intakeDomain) recordStreaks(
	ctx context.Context, userID string, domain entity.DomainType, payload *model.EventPayload, at time.Time,
) {
	for _, streakType := range enum.Values[entity.StreakType]() {
		if !slices.Contains(streakType.Domains(), domain) {
			continue
		}

		targetID := ""
		if streakType == entity.StreakHabit {
			if payload.HabitID == "" {
				continue
			}
			targetID = payload.HabitID
		}

		if _, err := d.streakDomain.RecordActivity(ctx, userID, streakType, targetID, at); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot record %s streak of user %s: %v", streakType, userID, err)
		}
	}
}

func (d *intakeDomain) notify(ctx context.Context, userID string, resp *model.IngestEventResponse, leveledUp bool) {
	if d.publisher == nil {
		return
	}

	if !leveledUp && len(resp.Unlocks) == 0 && len(resp.Completions) == 0 && len(resp.Rewards) == 0 {
		return
	}

	b, err := json.Marshal(model.UnlockNotification{
		EventID:     resp.EventID,
		UserID:      userID,
		Ledger:      resp.Ledger,
		LeveledUp:   leveledUp,
		Unlocks:     resp.Unlocks,
		Completions: resp.Completions,
		Rewards:     resp.Rewards,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal unlock notification: %v", err)
		return
	}

	topic := xcontext.Configs(ctx).Kafka.UnlockTopic
	if err := d.publisher.Publish(ctx, topic, &pubsub.Pack{Key: []byte(userID), Msg: b}); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot publish unlock notification of event %s: %v", resp.EventID, err)
	}
}

// deriveEventID returns a deterministic id of an envelope without event id,
// so a re-delivered envelope is recognized as a duplicate.
func deriveEventID(event *model.Event) string {
	b, err := json.Marshal(struct {
		UserID     string         `json:"user_id"`
		DomainType string         `json:"domain_type"`
		Timestamp  string         `json:"timestamp"`
		Payload    map[string]any `json:"payload"`
	}{
		UserID:     event.UserID,
		DomainType: event.DomainType,
		Timestamp:  event.Timestamp.UTC().Format(time.RFC3339Nano),
		Payload:    event.Payload,
	})
	if err != nil {
		return uuid.NewString()
	}

	return uuid.NewSHA1(eventNamespace, b).String()
}

func decodePayload(raw map[string]any, payload *model.EventPayload) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           payload,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(raw)
}

func validateScore(score *int64) error {
	if score == nil {
		return nil
	}

	if *score < 1 || *score > 10 {
		return errorx.New(errorx.BadRequest, "%d is out of range 1-10", *score)
	}

	return nil
}

func newEntry(
	ctx context.Context, event *model.Event, domain entity.DomainType, payload *model.EventPayload,
) (*entity.Entry, error) {
	rawPayload, err := json.Marshal(event.Payload)
	if err != nil {
		return nil, err
	}

	entry := &entity.Entry{
		ID:         event.EventID,
		UserID:     event.UserID,
		Domain:     domain,
		OccurredAt: event.Timestamp,
		Day:        dateutil.DayKey(event.Timestamp, xcontext.Configs(ctx).Progression.Location()),
		Payload:    datatypes.JSON(rawPayload),
	}

	switch domain {
	case entity.HabitCompletion:
		entry.TargetID = payload.HabitID
	case entity.ChallengeCompletion:
		entry.TargetID = payload.ChallengeID
	}

	if payload.MoodScore != nil {
		entry.MoodScore = sql.NullInt64{Int64: *payload.MoodScore, Valid: true}
	}

	if payload.EnergyLevel != nil {
		entry.EnergyLevel = sql.NullInt64{Int64: *payload.EnergyLevel, Valid: true}
	}

	// Signals are stored as sent. Readers decode them leniently.
	for key, column := range map[string]*datatypes.JSON{
		"themes":   &entry.Themes,
		"symbols":  &entry.Symbols,
		"emotions": &entry.Emotions,
	} {
		v, ok := event.Payload[key]
		if !ok {
			continue
		}

		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		*column = datatypes.JSON(b)
	}

	return entry, nil
}
