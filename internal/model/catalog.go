package model

// Catalog is the content of a seed file. Requirements are written as tables,
// for example requirement = { kind = "streak", streak_type = "habit", value = 7 }.
type Catalog struct {
	Achievements []CatalogAchievement `toml:"achievements"`
	Rewards      []CatalogReward      `toml:"rewards"`
	Challenges   []CatalogChallenge   `toml:"challenges"`
}

type CatalogAchievement struct {
	Code        string         `toml:"code"`
	Name        string         `toml:"name"`
	Description string         `toml:"description"`
	Requirement map[string]any `toml:"requirement"`
	XPReward    int64          `toml:"xp_reward"`
	Rarity      string         `toml:"rarity"`
	IsSecret    bool           `toml:"is_secret"`
}

type CatalogReward struct {
	Code          string `toml:"code"`
	Name          string `toml:"name"`
	Kind          string `toml:"kind"`
	RequiredLevel int    `toml:"required_level"`
}

type CatalogChallenge struct {
	Code            string         `toml:"code"`
	Title           string         `toml:"title"`
	Description     string         `toml:"description"`
	Requirement     map[string]any `toml:"requirement"`
	RequiredLevel   int            `toml:"required_level"`
	XPReward        int64          `toml:"xp_reward"`
	BonusXP         int64          `toml:"bonus_xp"`
	BonusBeforeHour int            `toml:"bonus_before_hour"`
	ActiveDate      string         `toml:"active_date"`
}
