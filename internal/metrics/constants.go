package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Engine metric names
const (
	MetricNameEventsProcessed      = "engine_events_processed_total"
	MetricNameEventErrors          = "engine_event_errors_total"
	MetricNameEventsDeadLettered   = "engine_events_dead_lettered_total"
	MetricNameEventQueueDepth      = "engine_event_queue_depth"
	MetricNameRulesFired           = "engine_rules_fired_total"
	MetricNameRewardsIssued        = "engine_rewards_issued_total"
	MetricNameRewardFailures       = "engine_reward_failures_total"
	MetricNameSpendingFailures     = "engine_spending_failures_total"
	MetricNameDryRunsPerformed     = "engine_dry_runs_total"
	MetricNameLeaderboardCacheHit  = "leaderboard_cache_hits_total"
	MetricNameLeaderboardCacheMiss = "leaderboard_cache_misses_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Engine metric help text
const (
	HelpTextEventsProcessed      = "Total number of events processed by the queue processor"
	HelpTextEventErrors          = "Total number of event processing errors"
	HelpTextEventsDeadLettered   = "Total number of events moved to the dead-letter file"
	HelpTextEventQueueDepth      = "Current number of events waiting in the queue"
	HelpTextRulesFired           = "Total number of rules that matched an event"
	HelpTextRewardsIssued        = "Total number of rewards executed successfully"
	HelpTextRewardFailures       = "Total number of reward executions recorded as failed"
	HelpTextSpendingFailures     = "Total number of spending executions recorded as failed"
	HelpTextDryRunsPerformed     = "Total number of sandbox dry-run evaluations"
	HelpTextLeaderboardCacheHit  = "Total number of leaderboard cache hits"
	HelpTextLeaderboardCacheMiss = "Total number of leaderboard cache misses"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod     = "method"
	LabelPath       = "path"
	LabelStatus     = "status"
	LabelEventType  = "event_type"
	LabelRewardType = "reward_type"
	LabelKind       = "kind"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds. These buckets range from 1ms to 10s to capture various latency
// patterns: fast (1-10ms), normal (10-100ms), slow (100ms-1s), very slow (1-10s)
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
