// Package leaderboard projects ranked views over balances, achievement
// counts and levels. Projections are cached with a short TTL and concurrent
// builds for the same key collapse to a single computation.
package leaderboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/osmith/BadgeForge_Go/internal/catalog"
	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/metrics"
	"github.com/osmith/BadgeForge_Go/internal/repository"
)

const cacheSize = 256

// Projector builds and caches leaderboards.
type Projector struct {
	wallets repository.Wallet
	states  repository.UserState
	history repository.RewardHistory
	catalog *catalog.Catalog

	cache *expirable.LRU[string, *domain.Leaderboard]
	group singleflight.Group

	// now is swapped in tests to pin the reference date.
	now func() time.Time
}

// New creates a projector with the given cache TTL.
func New(wallets repository.Wallet, states repository.UserState, history repository.RewardHistory, cat *catalog.Catalog, ttl time.Duration) *Projector {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Projector{
		wallets: wallets,
		states:  states,
		history: history,
		catalog: cat,
		cache:   expirable.NewLRU[string, *domain.Leaderboard](cacheSize, nil, ttl),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// window computes the UTC calendar window for a range relative to ref.
// Boundaries are inclusive-start, exclusive-end. The alltime range has no
// window.
func window(timeRange domain.TimeRange, ref time.Time) (time.Time, time.Time, bool) {
	ref = ref.UTC()
	switch timeRange {
	case domain.RangeDaily:
		start := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 0, 1), true
	case domain.RangeWeekly:
		// ISO weeks start on Monday.
		weekday := int(ref.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1-weekday)
		return start, start.AddDate(0, 0, 7), true
	case domain.RangeMonthly:
		start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0), true
	}
	return time.Time{}, time.Time{}, false
}

func cacheKey(kind domain.LeaderboardKind, category string, timeRange domain.TimeRange, windowStart time.Time) string {
	return fmt.Sprintf("%s|%s|%s|%d", kind, category, timeRange, windowStart.Unix())
}

// Get returns the leaderboard for the tuple, building it on a cache miss.
func (p *Projector) Get(ctx context.Context, kind domain.LeaderboardKind, category string, timeRange domain.TimeRange) (*domain.Leaderboard, error) {
	if !domain.ValidLeaderboardKind(kind) {
		return nil, fmt.Errorf("%w: unknown leaderboard kind %q", domain.ErrInvalidInput, kind)
	}
	if !domain.ValidTimeRange(timeRange) {
		return nil, fmt.Errorf("%w: unknown time range %q", domain.ErrInvalidInput, timeRange)
	}
	if kind == domain.LeaderboardPoints || kind == domain.LeaderboardLevel {
		if _, ok := p.catalog.PointCategory(category); !ok {
			return nil, fmt.Errorf("%w: %q", domain.ErrCategoryNotFound, category)
		}
	}

	start, end, windowed := window(timeRange, p.now())
	key := cacheKey(kind, category, timeRange, start)

	if board, ok := p.cache.Get(key); ok {
		metrics.LeaderboardCacheHits.WithLabelValues(string(kind)).Inc()
		return board, nil
	}
	metrics.LeaderboardCacheMisses.WithLabelValues(string(kind)).Inc()

	result, err, _ := p.group.Do(key, func() (any, error) {
		if board, ok := p.cache.Get(key); ok {
			return board, nil
		}
		board, err := p.build(ctx, kind, category, timeRange, start, end, windowed)
		if err != nil {
			return nil, err
		}
		p.cache.Add(key, board)
		return board, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Leaderboard), nil
}

func (p *Projector) build(ctx context.Context, kind domain.LeaderboardKind, category string, timeRange domain.TimeRange, start, end time.Time, windowed bool) (*domain.Leaderboard, error) {
	var (
		rows []domain.LeaderboardEntry
		err  error
	)
	switch kind {
	case domain.LeaderboardPoints:
		rows, err = p.pointsRows(ctx, category, start, end, windowed)
	case domain.LeaderboardBadges:
		rows, err = p.countRows(ctx, domain.RewardBadge, start, end, windowed)
	case domain.LeaderboardTrophies:
		rows, err = p.countRows(ctx, domain.RewardTrophy, start, end, windowed)
	case domain.LeaderboardLevel:
		// Levels are derived from current balances; time ranges do not
		// apply.
		rows, err = p.levelRows(ctx, category)
	}
	if err != nil {
		return nil, err
	}

	rank(rows)
	board := &domain.Leaderboard{
		Kind:        kind,
		Category:    category,
		TimeRange:   timeRange,
		Entries:     rows,
		GeneratedAt: p.now(),
	}
	if windowed && kind != domain.LeaderboardLevel {
		board.WindowStart = start
		board.WindowEnd = end
	}
	return board, nil
}

func (p *Projector) pointsRows(ctx context.Context, category string, start, end time.Time, windowed bool) ([]domain.LeaderboardEntry, error) {
	if windowed {
		sums, err := p.wallets.SumByTypeInWindow(ctx, category, domain.TxEarn, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to sum earnings: %w", err)
		}
		rows := make([]domain.LeaderboardEntry, 0, len(sums))
		for _, s := range sums {
			rows = append(rows, domain.LeaderboardEntry{UserID: s.UserID, Points: s.Amount})
		}
		return rows, nil
	}

	balances, err := p.wallets.ListBalances(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}
	rows := make([]domain.LeaderboardEntry, 0, len(balances))
	for _, b := range balances {
		rows = append(rows, domain.LeaderboardEntry{UserID: b.UserID, Points: b.Balance})
	}
	return rows, nil
}

func (p *Projector) countRows(ctx context.Context, rewardType string, start, end time.Time, windowed bool) ([]domain.LeaderboardEntry, error) {
	var (
		counts []domain.UserCount
		err    error
	)
	if windowed {
		counts, err = p.history.CountByTypeInWindow(ctx, rewardType, start, end)
	} else if rewardType == domain.RewardBadge {
		counts, err = p.states.ListBadgeCounts(ctx)
	} else {
		counts, err = p.states.ListTrophyCounts(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to count achievements: %w", err)
	}
	rows := make([]domain.LeaderboardEntry, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, domain.LeaderboardEntry{UserID: c.UserID, Points: c.Count})
	}
	return rows, nil
}

func (p *Projector) levelRows(ctx context.Context, category string) ([]domain.LeaderboardEntry, error) {
	balances, err := p.wallets.ListBalances(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}
	var rows []domain.LeaderboardEntry
	for _, b := range balances {
		level, ok := p.catalog.CurrentLevel(category, b.Balance)
		if !ok {
			continue
		}
		rows = append(rows, domain.LeaderboardEntry{
			UserID:      b.UserID,
			DisplayName: level.Name,
			Points:      level.MinPoints,
		})
	}
	return rows, nil
}

// rank sorts metric descending with userId ascending tie-break and assigns
// dense rank numbers.
func rank(rows []domain.LeaderboardEntry) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].UserID < rows[j].UserID
	})
	current := 0
	var prev int64
	for i := range rows {
		if current == 0 || rows[i].Points != prev {
			current++
			prev = rows[i].Points
		}
		rows[i].Rank = current
	}
}

// UserRank returns the user's entry on a leaderboard, with found=false when
// the user has no metric there.
func (p *Projector) UserRank(ctx context.Context, kind domain.LeaderboardKind, category string, timeRange domain.TimeRange, userID string) (domain.LeaderboardEntry, bool, error) {
	board, err := p.Get(ctx, kind, category, timeRange)
	if err != nil {
		return domain.LeaderboardEntry{}, false, err
	}
	for _, entry := range board.Entries {
		if entry.UserID == userID {
			return entry, true, nil
		}
	}
	return domain.LeaderboardEntry{}, false, nil
}

// InvalidateCategory evicts cached points and level boards for a category.
// An empty category purges the whole cache.
func (p *Projector) InvalidateCategory(category string) {
	if category == "" {
		p.cache.Purge()
		return
	}
	for _, key := range p.cache.Keys() {
		parts := strings.SplitN(key, "|", 3)
		if len(parts) >= 2 && parts[1] == category {
			p.cache.Remove(key)
		}
	}
}

// InvalidateKind evicts every cached board of one kind.
func (p *Projector) InvalidateKind(kind domain.LeaderboardKind) {
	prefix := string(kind) + "|"
	for _, key := range p.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			p.cache.Remove(key)
		}
	}
}

// Refresh evicts the cache entry for one tuple so the next read rebuilds it.
func (p *Projector) Refresh(kind domain.LeaderboardKind, category string, timeRange domain.TimeRange) {
	start, _, _ := window(timeRange, p.now())
	p.cache.Remove(cacheKey(kind, category, timeRange, start))
}
