package leaderboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmith/BadgeForge_Go/internal/catalog"
	"github.com/osmith/BadgeForge_Go/internal/domain"
	"github.com/osmith/BadgeForge_Go/internal/memstore"
)

var refNow = time.Date(2025, 6, 18, 15, 30, 0, 0, time.UTC) // a Wednesday

type fixture struct {
	projector *Projector
	wallets   *memstore.WalletStore
	states    *memstore.UserStateStore
	history   *memstore.RewardHistoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	entities := memstore.NewEntityStore()
	require.NoError(t, entities.CreatePointCategory(ctx, domain.PointCategory{ID: "xp", Name: "Experience", Aggregation: domain.AggregationSum}))
	require.NoError(t, entities.CreateLevel(ctx, domain.Level{ID: "bronze", Name: "Bronze", Category: "xp", MinPoints: 0, Visible: true}))
	require.NoError(t, entities.CreateLevel(ctx, domain.Level{ID: "silver", Name: "Silver", Category: "xp", MinPoints: 100, Visible: true}))
	cat, err := catalog.New(ctx, entities)
	require.NoError(t, err)

	f := &fixture{
		wallets: memstore.NewWalletStore(),
		states:  memstore.NewUserStateStore(),
		history: memstore.NewRewardHistoryStore(),
	}
	f.projector = New(f.wallets, f.states, f.history, cat, time.Minute)
	f.projector.now = func() time.Time { return refNow }
	return f
}

func (f *fixture) earn(t *testing.T, userID string, amount int64, at time.Time) {
	t.Helper()
	require.NoError(t, f.wallets.RecordTransaction(context.Background(), domain.WalletTransaction{
		ID: userID + at.String(), UserID: userID, CategoryID: "xp",
		Type: domain.TxEarn, Amount: amount, Timestamp: at,
	}))
}

func (f *fixture) spend(t *testing.T, userID string, amount int64, at time.Time) {
	t.Helper()
	require.NoError(t, f.wallets.RecordTransaction(context.Background(), domain.WalletTransaction{
		ID: userID + "spend" + at.String(), UserID: userID, CategoryID: "xp",
		Type: domain.TxSpend, Amount: -amount, Timestamp: at,
	}))
}

func TestWindow_CalendarBoundaries(t *testing.T) {
	// CASE 1: daily window is the UTC day
	start, end, ok := window(domain.RangeDaily, refNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 6, 19, 0, 0, 0, 0, time.UTC), end)

	// CASE 2: weekly window starts Monday
	start, end, ok = window(domain.RangeWeekly, refNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC), end)

	// CASE 3: weekly window on a Sunday still starts the previous Monday
	sunday := time.Date(2025, 6, 22, 10, 0, 0, 0, time.UTC)
	start, _, ok = window(domain.RangeWeekly, sunday)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), start)

	// CASE 4: monthly window covers the calendar month
	start, end, ok = window(domain.RangeMonthly, refNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), end)

	// CASE 5: alltime has no window
	_, _, ok = window(domain.RangeAllTime, refNow)
	assert.False(t, ok)
}

func TestGet_PointsAllTime_RanksByBalance(t *testing.T) {
	// ARRANGE
	f := newFixture(t)
	f.earn(t, "alice", 100, refNow.Add(-time.Hour))
	f.earn(t, "bob", 300, refNow.Add(-time.Hour))
	f.earn(t, "carol", 100, refNow.Add(-time.Hour))

	// ACT
	board, err := f.projector.Get(context.Background(), domain.LeaderboardPoints, "xp", domain.RangeAllTime)

	// ASSERT: metric descending, ties broken by userId ascending, dense ranks
	require.NoError(t, err)
	require.Len(t, board.Entries, 3)
	assert.Equal(t, "bob", board.Entries[0].UserID)
	assert.Equal(t, 1, board.Entries[0].Rank)
	assert.Equal(t, "alice", board.Entries[1].UserID)
	assert.Equal(t, 2, board.Entries[1].Rank)
	assert.Equal(t, "carol", board.Entries[2].UserID)
	assert.Equal(t, 2, board.Entries[2].Rank)
}

func TestGet_PointsDaily_CountsOnlyEarnInWindow(t *testing.T) {
	// ARRANGE: alice earned today and yesterday, and spent today
	f := newFixture(t)
	f.earn(t, "alice", 50, refNow.Add(-time.Hour))
	f.earn(t, "alice", 500, refNow.Add(-30*time.Hour))
	f.spend(t, "alice", 40, refNow.Add(-time.Minute))
	f.earn(t, "bob", 10, refNow.Add(-time.Hour))

	// ACT
	board, err := f.projector.Get(context.Background(), domain.LeaderboardPoints, "xp", domain.RangeDaily)

	// ASSERT: only today's earn entries count, spends are ignored
	require.NoError(t, err)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, "alice", board.Entries[0].UserID)
	assert.Equal(t, int64(50), board.Entries[0].Points)
	assert.Equal(t, "bob", board.Entries[1].UserID)
	assert.Equal(t, int64(10), board.Entries[1].Points)
	assert.Equal(t, time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC), board.WindowStart)
}

func TestGet_BadgesAllTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := domain.NewUserState("alice")
	alice.GrantBadge("b1")
	alice.GrantBadge("b2")
	require.NoError(t, f.states.Save(ctx, alice))
	bob := domain.NewUserState("bob")
	bob.GrantBadge("b1")
	require.NoError(t, f.states.Save(ctx, bob))

	board, err := f.projector.Get(ctx, domain.LeaderboardBadges, "", domain.RangeAllTime)

	require.NoError(t, err)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, "alice", board.Entries[0].UserID)
	assert.Equal(t, int64(2), board.Entries[0].Points)
}

func TestGet_BadgesWeekly_UsesRewardHistory(t *testing.T) {
	// ARRANGE: one badge this week, one long before
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.history.Append(ctx, domain.RewardHistory{
		ID: "h1", UserID: "alice", RewardType: domain.RewardBadge,
		TriggerEventID: "e1", RuleID: "r1", Position: 0,
		AwardedAt: refNow.Add(-24 * time.Hour), Success: true,
	}))
	require.NoError(t, f.history.Append(ctx, domain.RewardHistory{
		ID: "h2", UserID: "alice", RewardType: domain.RewardBadge,
		TriggerEventID: "e2", RuleID: "r1", Position: 0,
		AwardedAt: refNow.Add(-30 * 24 * time.Hour), Success: true,
	}))

	// ACT
	board, err := f.projector.Get(ctx, domain.LeaderboardBadges, "", domain.RangeWeekly)

	// ASSERT
	require.NoError(t, err)
	require.Len(t, board.Entries, 1)
	assert.Equal(t, int64(1), board.Entries[0].Points)
}

func TestGet_Level_RanksByThreshold(t *testing.T) {
	f := newFixture(t)
	f.earn(t, "alice", 150, refNow.Add(-time.Hour))
	f.earn(t, "bob", 20, refNow.Add(-time.Hour))

	board, err := f.projector.Get(context.Background(), domain.LeaderboardLevel, "xp", domain.RangeAllTime)

	require.NoError(t, err)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, "alice", board.Entries[0].UserID)
	assert.Equal(t, "Silver", board.Entries[0].DisplayName)
	assert.Equal(t, int64(100), board.Entries[0].Points)
	assert.Equal(t, "bob", board.Entries[1].UserID)
	assert.Equal(t, "Bronze", board.Entries[1].DisplayName)
}

func TestGet_UnknownKindOrRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.projector.Get(ctx, "karma", "xp", domain.RangeAllTime)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.projector.Get(ctx, domain.LeaderboardPoints, "xp", "decade")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.projector.Get(ctx, domain.LeaderboardPoints, "no-such-category", domain.RangeAllTime)
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestGet_CachesUntilInvalidated(t *testing.T) {
	// ARRANGE
	f := newFixture(t)
	ctx := context.Background()
	f.earn(t, "alice", 100, refNow.Add(-time.Hour))

	first, err := f.projector.Get(ctx, domain.LeaderboardPoints, "xp", domain.RangeAllTime)
	require.NoError(t, err)
	require.Len(t, first.Entries, 1)

	// ACT: a later earn is invisible until the cache is invalidated
	f.earn(t, "bob", 200, refNow.Add(-time.Minute))
	cached, err := f.projector.Get(ctx, domain.LeaderboardPoints, "xp", domain.RangeAllTime)
	require.NoError(t, err)
	assert.Len(t, cached.Entries, 1)

	f.projector.InvalidateCategory("xp")
	fresh, err := f.projector.Get(ctx, domain.LeaderboardPoints, "xp", domain.RangeAllTime)
	require.NoError(t, err)

	// ASSERT
	require.Len(t, fresh.Entries, 2)
	assert.Equal(t, "bob", fresh.Entries[0].UserID)
}

func TestRefresh_EvictsSingleTuple(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.earn(t, "alice", 100, refNow.Add(-time.Hour))

	_, err := f.projector.Get(ctx, domain.LeaderboardPoints, "xp", domain.RangeAllTime)
	require.NoError(t, err)
	_, err = f.projector.Get(ctx, domain.LeaderboardPoints, "xp", domain.RangeDaily)
	require.NoError(t, err)

	f.earn(t, "bob", 200, refNow.Add(-time.Minute))
	f.projector.Refresh(domain.LeaderboardPoints, "xp", domain.RangeAllTime)

	// The refreshed tuple rebuilds, the daily board stays cached.
	alltime, err := f.projector.Get(ctx, domain.LeaderboardPoints, "xp", domain.RangeAllTime)
	require.NoError(t, err)
	assert.Len(t, alltime.Entries, 2)

	daily, err := f.projector.Get(ctx, domain.LeaderboardPoints, "xp", domain.RangeDaily)
	require.NoError(t, err)
	assert.Len(t, daily.Entries, 1)
}

func TestUserRank(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.earn(t, "alice", 100, refNow.Add(-time.Hour))
	f.earn(t, "bob", 300, refNow.Add(-time.Hour))

	entry, found, err := f.projector.UserRank(ctx, domain.LeaderboardPoints, "xp", domain.RangeAllTime, "alice")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, entry.Rank)

	_, found, err = f.projector.UserRank(ctx, domain.LeaderboardPoints, "xp", domain.RangeAllTime, "nobody")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLeaderboard_Pagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i, user := range []string{"u1", "u2", "u3", "u4", "u5"} {
		f.earn(t, user, int64(100-i*10), refNow.Add(-time.Hour))
	}

	board, err := f.projector.Get(ctx, domain.LeaderboardPoints, "xp", domain.RangeAllTime)
	require.NoError(t, err)

	page, total := board.Page(2, 2)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	// Ranks are dataset-wide, not page-relative.
	assert.Equal(t, 3, page[0].Rank)
	assert.Equal(t, "u3", page[0].UserID)

	empty, total := board.Page(4, 2)
	assert.Equal(t, 5, total)
	assert.Empty(t, empty)
}
