package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Engine Metrics
var (
	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsProcessed,
			Help: HelpTextEventsProcessed,
		},
		[]string{LabelEventType},
	)

	EventErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventErrors,
			Help: HelpTextEventErrors,
		},
		[]string{LabelEventType},
	)

	EventsDeadLettered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameEventsDeadLettered,
			Help: HelpTextEventsDeadLettered,
		},
	)

	EventQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameEventQueueDepth,
			Help: HelpTextEventQueueDepth,
		},
	)

	RulesFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRulesFired,
			Help: HelpTextRulesFired,
		},
		[]string{LabelEventType},
	)

	RewardsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRewardsIssued,
			Help: HelpTextRewardsIssued,
		},
		[]string{LabelRewardType},
	)

	RewardFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRewardFailures,
			Help: HelpTextRewardFailures,
		},
		[]string{LabelRewardType},
	)

	SpendingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameSpendingFailures,
			Help: HelpTextSpendingFailures,
		},
	)

	DryRunsPerformed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameDryRunsPerformed,
			Help: HelpTextDryRunsPerformed,
		},
	)
)

// Leaderboard Metrics
var (
	LeaderboardCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameLeaderboardCacheHit,
			Help: HelpTextLeaderboardCacheHit,
		},
		[]string{LabelKind},
	)

	LeaderboardCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameLeaderboardCacheMiss,
			Help: HelpTextLeaderboardCacheMiss,
		},
		[]string{LabelKind},
	)
)
