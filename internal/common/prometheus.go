package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	EventsIngestedTotal        = "progression_events_ingested_total"
	XPAwardedTotal             = "progression_xp_awarded_total"
	AchievementUnlockedTotal   = "progression_achievements_unlocked_total"
	ChallengeCompletedTotal    = "progression_challenges_completed_total"
	MalformedRequirementTotal  = "progression_malformed_requirements_total"
	MiningRunDurationSeconds   = "progression_mining_run_duration_seconds"
	CronJobDurationSeconds     = "progression_cron_job_duration_seconds"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"method", "status_code"}),
		EventsIngestedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: EventsIngestedTotal,
			Help: "Count of ingested activity events",
		}, []string{"domain", "result"}),
		XPAwardedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: XPAwardedTotal,
			Help: "Sum of experience awarded",
		}, []string{"source"}),
		AchievementUnlockedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: AchievementUnlockedTotal,
			Help: "Count of achievement unlocks",
		}, []string{"rarity"}),
		ChallengeCompletedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: ChallengeCompletedTotal,
			Help: "Count of daily challenge completions",
		}, []string{"bonus"}),
		MalformedRequirementTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MalformedRequirementTotal,
			Help: "Count of skipped malformed requirement specifications",
		}, []string{"owner"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"method", "status_code"}),
		MiningRunDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: MiningRunDurationSeconds,
			Help: "Duration of pattern mining and insight synthesis runs",
		}, []string{"job"}),
		CronJobDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: CronJobDurationSeconds,
			Help: "Duration of cron job runs",
		}, []string{"job", "result"}),
	}
)
