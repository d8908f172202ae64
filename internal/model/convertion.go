package model

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/questx-lab/progression/internal/domain/leveling"
	"github.com/questx-lab/progression/internal/entity"
	"gorm.io/datatypes"
)

const DefaultTimeLayout string = time.RFC3339Nano

func ConvertLedger(userID string, state leveling.State) Ledger {
	return Ledger{
		UserID:        userID,
		TotalXP:       state.TotalXP,
		Level:         state.Level,
		CurrentXP:     state.CurrentXP,
		XPToNextLevel: state.XPToNextLevel,
		Title:         state.Title,
	}
}

func ConvertStreak(s *entity.Streak, atRisk, isBroken bool) Streak {
	return Streak{
		StreakType:       string(s.StreakType),
		TargetID:         s.TargetID,
		CurrentStreak:    s.CurrentStreak,
		LongestStreak:    s.LongestStreak,
		LastActivityDate: s.LastActivityDate,
		StreakStartDate:  s.StreakStartDate,
		IsActive:         s.IsActive,
		AtRisk:           atRisk,
		IsBroken:         isBroken,
	}
}

func ConvertAchievement(def *entity.AchievementDefinition, requirement map[string]any) Achievement {
	return Achievement{
		ID:          def.ID,
		Code:        def.Code,
		Name:        def.Name,
		Description: def.Description,
		Requirement: requirement,
		XPReward:    def.XPReward,
		Rarity:      string(def.Rarity),
		IsSecret:    def.IsSecret,
	}
}

func ConvertUnlock(def *entity.AchievementDefinition, earnedAt time.Time) Unlock {
	return Unlock{
		AchievementID: def.ID,
		Code:          def.Code,
		Name:          def.Name,
		Rarity:        string(def.Rarity),
		XPReward:      def.XPReward,
		EarnedAt:      earnedAt.Format(DefaultTimeLayout),
	}
}

func ConvertReward(r *entity.Reward, grantedAt time.Time) Reward {
	result := Reward{
		ID:            r.ID,
		Code:          r.Code,
		Name:          r.Name,
		Kind:          r.Kind,
		RequiredLevel: r.RequiredLevel,
	}

	if !grantedAt.IsZero() {
		result.GrantedAt = grantedAt.Format(DefaultTimeLayout)
	}

	return result
}

func ConvertChallengeCompletion(c *entity.DailyChallengeCompletion, challenge *entity.DailyChallenge) ChallengeCompletion {
	return ChallengeCompletion{
		ChallengeID: c.ChallengeID,
		Code:        challenge.Code,
		Title:       challenge.Title,
		Date:        c.Date,
		XPAwarded:   c.XPAwarded,
		CompletedAt: c.CompletedAt.Format(DefaultTimeLayout),
	}
}

func ConvertPattern(p *entity.Pattern) Pattern {
	return Pattern{
		ID:          p.ID,
		PatternType: string(p.PatternType),
		PatternKey:  p.PatternKey,
		Payload:     decodeObject(p.Payload),
		Frequency:   p.Frequency,
		FirstSeen:   p.FirstSeen.Format(DefaultTimeLayout),
		LastSeen:    p.LastSeen.Format(DefaultTimeLayout),
	}
}

func ConvertInsight(i *entity.Insight) Insight {
	return Insight{
		ID:          i.ID,
		InsightType: string(i.InsightType),
		Title:       i.Title,
		Description: i.Description,
		Suggestion:  i.Suggestion,
		DataPoints:  decodeObject(i.DataPoints),
		Confidence:  i.Confidence,
		Priority:    string(i.Priority),
		Status:      string(i.Status),
		Actionable:  i.Actionable,
		Timeframe:   string(i.Timeframe),
		WindowStart: i.WindowStart.Format(DefaultTimeLayout),
		WindowEnd:   i.WindowEnd.Format(DefaultTimeLayout),
		CreatedAt:   i.CreatedAt.Format(DefaultTimeLayout),
	}
}

func decodeObject(raw datatypes.JSON) map[string]any {
	if len(raw) == 0 {
		return nil
	}

	result := map[string]any{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil
	}

	return result
}
