package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

type Configs struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`

	Database    DatabaseConfigs    `toml:"database"`
	ApiServer   ServerConfigs      `toml:"api_server"`
	Redis       RedisConfigs       `toml:"redis"`
	Kafka       KafkaConfigs       `toml:"kafka"`
	Progression ProgressionConfigs `toml:"progression"`
	Cron        CronConfigs        `toml:"cron"`
}

type DatabaseConfigs struct {
	// Driver is either mysql or sqlite.
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`

	// SqlitePath is only used by the sqlite driver.
	SqlitePath string `toml:"sqlite_path"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`

	AllowedOrigins []string `toml:"allowed_origins"`
	UserIDHeader   string   `toml:"user_id_header"`

	// TokenSecret enables bearer tokens. When it is set, the user id comes
	// from the token subject and UserIDHeader is ignored.
	TokenSecret     string   `toml:"token_secret"`
	TokenIssuer     string   `toml:"token_issuer"`
	TokenExpiration Duration `toml:"token_expiration"`
}

func (s *ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type RedisConfigs struct {
	// Addr is empty when the engine runs as a single instance. In this case,
	// the per-user scope only uses in-process locks.
	Addr    string   `toml:"addr"`
	LockTTL Duration `toml:"lock_ttl"`

	// JobTTL bounds how long a crashed analysis can block the next one.
	JobTTL Duration `toml:"job_ttl"`
}

type KafkaConfigs struct {
	Addrs       []string `toml:"addrs"`
	ClientID    string   `toml:"client_id"`
	GroupID     string   `toml:"group_id"`
	EventTopic  string   `toml:"event_topic"`
	UnlockTopic string   `toml:"unlock_topic"`
}

type ProgressionConfigs struct {
	// DomainXP is the base experience awarded for each activity domain.
	DomainXP map[string]int64 `toml:"domain_xp"`

	// StreakTimezone is the IANA timezone which decides the calendar day of
	// an activity. It is applied to every user.
	StreakTimezone string `toml:"streak_timezone"`

	PatternMinSupport     int `toml:"pattern_min_support"`
	PatternSampleEntryIDs int `toml:"pattern_sample_entry_ids"`

	InsightSampleThreshold int     `toml:"insight_sample_threshold"`
	InsightTopPatterns     int     `toml:"insight_top_patterns"`
	LowMoodThreshold       float64 `toml:"low_mood_threshold"`
	LowEnergyThreshold     float64 `toml:"low_energy_threshold"`
	AdherenceThreshold     float64 `toml:"adherence_threshold"`
}

// Location returns the location of StreakTimezone, or UTC if it is invalid.
func (p ProgressionConfigs) Location() *time.Location {
	if p.StreakTimezone == "" {
		return time.UTC
	}

	loc, err := time.LoadLocation(p.StreakTimezone)
	if err != nil {
		return time.UTC
	}

	return loc
}

type CronConfigs struct {
	StreakSweepInterval Duration `toml:"streak_sweep_interval"`
	MiningInterval      Duration `toml:"mining_interval"`
	MiningConcurrency   int      `toml:"mining_concurrency"`
	MiningTimeframe     string   `toml:"mining_timeframe"`
}

// Duration is a time.Duration which is written as "10s", "1h30m" in
// configuration files.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}

	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func Default() Configs {
	return Configs{
		Env:      "local",
		LogLevel: "info",
		Database: DatabaseConfigs{
			Driver:     "sqlite",
			SqlitePath: "progression.db",
		},
		ApiServer: ServerConfigs{
			Host:            "0.0.0.0",
			Port:            "8080",
			AllowedOrigins:  []string{"*"},
			UserIDHeader:    "X-User-ID",
			TokenIssuer:     "progression",
			TokenExpiration: Duration(24 * time.Hour),
		},
		Redis: RedisConfigs{
			LockTTL: Duration(10 * time.Second),
			JobTTL:  Duration(10 * time.Minute),
		},
		Kafka: KafkaConfigs{
			ClientID:    "progression",
			GroupID:     "progression-engine",
			EventTopic:  "progression.events",
			UnlockTopic: "progression.unlocks",
		},
		Progression: ProgressionConfigs{
			DomainXP: map[string]int64{
				"habit_completion":     10,
				"mood_entry":           5,
				"dream_entry":          15,
				"decision_finalized":   20,
				"challenge_completion": 0,
			},
			StreakTimezone:         "UTC",
			PatternMinSupport:      2,
			PatternSampleEntryIDs:  10,
			InsightSampleThreshold: 10,
			InsightTopPatterns:     5,
			LowMoodThreshold:       4,
			LowEnergyThreshold:     4,
			AdherenceThreshold:     0.5,
		},
		Cron: CronConfigs{
			StreakSweepInterval: Duration(time.Hour),
			MiningInterval:      Duration(24 * time.Hour),
			MiningConcurrency:   4,
			MiningTimeframe:     "month",
		},
	}
}

// Load reads the toml file at path on top of the default configurations. An
// empty path returns the default configurations.
func Load(path string) (Configs, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Configs{}, fmt.Errorf("cannot decode config file %s: %w", path, err)
	}

	return cfg, nil
}
