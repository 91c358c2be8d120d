package domain

import "time"

// Leaderboard kinds.
type LeaderboardKind string

const (
	LeaderboardPoints   LeaderboardKind = "points"
	LeaderboardBadges   LeaderboardKind = "badges"
	LeaderboardTrophies LeaderboardKind = "trophies"
	LeaderboardLevel    LeaderboardKind = "level"
)

// ValidLeaderboardKind reports whether k is a recognized kind.
func ValidLeaderboardKind(k LeaderboardKind) bool {
	switch k {
	case LeaderboardPoints, LeaderboardBadges, LeaderboardTrophies, LeaderboardLevel:
		return true
	}
	return false
}

// Leaderboard time ranges.
type TimeRange string

const (
	RangeDaily   TimeRange = "daily"
	RangeWeekly  TimeRange = "weekly"
	RangeMonthly TimeRange = "monthly"
	RangeAllTime TimeRange = "alltime"
)

// ValidTimeRange reports whether r is a recognized range.
func ValidTimeRange(r TimeRange) bool {
	switch r {
	case RangeDaily, RangeWeekly, RangeMonthly, RangeAllTime:
		return true
	}
	return false
}

// LeaderboardEntry is one ranked row. Rank numbers are dense over the whole
// dataset and independent of pagination.
type LeaderboardEntry struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`
	Points      int64  `json:"points"`
	Rank        int    `json:"rank"`
}

// Leaderboard is a fully ranked projection for one (kind, category, range,
// window) tuple.
type Leaderboard struct {
	Kind        LeaderboardKind    `json:"kind"`
	Category    string             `json:"category,omitempty"`
	TimeRange   TimeRange          `json:"timeRange"`
	WindowStart time.Time          `json:"windowStart,omitempty"`
	WindowEnd   time.Time          `json:"windowEnd,omitempty"`
	Entries     []LeaderboardEntry `json:"entries"`
	GeneratedAt time.Time          `json:"generatedAt"`
}

// Page returns the 1-based page of entries along with the total entry count.
func (l *Leaderboard) Page(page, pageSize int) ([]LeaderboardEntry, int) {
	total := len(l.Entries)
	start := (page - 1) * pageSize
	if start >= total {
		return []LeaderboardEntry{}, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return l.Entries[start:end], total
}
