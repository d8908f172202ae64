package requirement

import (
	"strings"

	"github.com/fatih/structs"
	"github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"
	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/pkg/enum"
	"github.com/questx-lab/progression/pkg/errorx"
)

// legacyKinds maps the spellings found in older definitions to their kind.
var legacyKinds = map[string]Kind{
	"dateBefore": DateBefore,
	"date":       DateBefore,
	"totalXP":    TotalXP,
	"total_xp":   TotalXP,
	"xp":         TotalXP,
	"streaks":    Streak,
}

// Parse decodes a json specification into a Requirement. A specification
// with an unknown kind or a malformed body returns an InvalidRequirement
// error.
func Parse(raw []byte) (Requirement, error) {
	data := map[string]any{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errorx.New(errorx.InvalidRequirement, "Requirement is not a json object: %v", err)
	}

	return FromMap(data)
}

// FromMap is the same as Parse but takes an already decoded object.
func FromMap(data map[string]any) (Requirement, error) {
	kind, err := kindOf(data)
	if err != nil {
		return nil, err
	}

	body := make(map[string]any, len(data))
	for k, v := range data {
		if k != "kind" && k != "type" {
			body[k] = v
		}
	}

	var requirement Requirement
	switch kind {
	case Streak:
		requirement, err = newStreakRequirement(body)
	case Count:
		requirement, err = newCountRequirement(body)
	case DateBefore:
		requirement, err = newDateBeforeRequirement(body)
	case Level:
		requirement, err = newLevelRequirement(body)
	case TotalXP:
		requirement, err = newTotalXPRequirement(body)
	default:
		return nil, errorx.New(errorx.InvalidRequirement, "Unknown requirement kind %s", kind)
	}

	if err != nil {
		return nil, err
	}

	return requirement, nil
}

// ToMap renders the requirement back into its json object form.
func ToMap(r Requirement) map[string]any {
	m := structs.Map(r)
	m["kind"] = string(r.Kind())
	return m
}

func kindOf(data map[string]any) (Kind, error) {
	raw, ok := data["kind"]
	if !ok {
		raw, ok = data["type"]
	}

	if !ok {
		return "", errorx.New(errorx.InvalidRequirement, "Requirement has no kind")
	}

	s, ok := raw.(string)
	if !ok {
		return "", errorx.New(errorx.InvalidRequirement, "Requirement kind must be a string")
	}

	if kind, ok := legacyKinds[s]; ok {
		return kind, nil
	}

	kind, err := enum.ToEnum[Kind](strings.ToLower(s))
	if err != nil {
		return "", errorx.New(errorx.InvalidRequirement, "Unknown requirement kind %s", s)
	}

	return kind, nil
}

func decode(body map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return err
	}

	if err := decoder.Decode(body); err != nil {
		return errorx.New(errorx.InvalidRequirement, "Malformed requirement: %v", err)
	}

	return nil
}

func newStreakRequirement(body map[string]any) (*streakRequirement, error) {
	r := streakRequirement{}
	if err := decode(body, &r); err != nil {
		return nil, err
	}

	if r.StreakType == "" {
		r.StreakType = string(entity.StreakDailyActivity)
	}

	streakType, err := enum.ToEnum[entity.StreakType](r.StreakType)
	if err != nil {
		return nil, errorx.New(errorx.InvalidRequirement, "Unknown streak type %s", r.StreakType)
	}
	r.streakType = streakType

	if r.Value < 1 {
		return nil, errorx.New(errorx.InvalidRequirement, "Streak value must be positive")
	}

	return &r, nil
}

func newCountRequirement(body map[string]any) (*countRequirement, error) {
	r := countRequirement{}
	if err := decode(body, &r); err != nil {
		return nil, err
	}

	domain, err := enum.ToEnum[entity.DomainType](r.Domain)
	if err != nil {
		return nil, errorx.New(errorx.InvalidRequirement, "Unknown count domain %s", r.Domain)
	}
	r.domain = domain

	if r.Window == "" {
		r.Window = string(WindowAll)
	}

	window, err := enum.ToEnum[Window](r.Window)
	if err != nil {
		return nil, errorx.New(errorx.InvalidRequirement, "Unknown count window %s", r.Window)
	}
	r.window = window

	if r.Value < 1 {
		return nil, errorx.New(errorx.InvalidRequirement, "Count value must be positive")
	}

	return &r, nil
}

func newDateBeforeRequirement(body map[string]any) (*dateBeforeRequirement, error) {
	r := dateBeforeRequirement{}
	if err := decode(body, &r); err != nil {
		return nil, err
	}

	date, err := parseDate(r.Value)
	if err != nil {
		return nil, errorx.New(errorx.InvalidRequirement, "Invalid date %s", r.Value)
	}
	r.date = date

	return &r, nil
}

func newLevelRequirement(body map[string]any) (*levelRequirement, error) {
	r := levelRequirement{}
	if err := decode(body, &r); err != nil {
		return nil, err
	}

	if r.Value < 1 {
		return nil, errorx.New(errorx.InvalidRequirement, "Level value must be positive")
	}

	return &r, nil
}

func newTotalXPRequirement(body map[string]any) (*totalXPRequirement, error) {
	r := totalXPRequirement{}
	if err := decode(body, &r); err != nil {
		return nil, err
	}

	if r.Value < 1 {
		return nil, errorx.New(errorx.InvalidRequirement, "Total xp value must be positive")
	}

	return &r, nil
}
