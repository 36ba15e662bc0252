package button

import (
	"context"
	"testing"
	"time"
)

func TestComputeStatsEmptyHistory(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	stats, err := ComputeStats(ctx, store, "T1")
	if err != nil {
		t.Fatalf("compute stats: %v", err)
	}
	if len(stats.Leaderboard) != 0 {
		t.Fatalf("expected empty leaderboard, got %d entries", len(stats.Leaderboard))
	}
	if stats.TotalWins != 0 {
		t.Fatalf("expected zero total wins, got %d", stats.TotalWins)
	}
	if !stats.FirstWin.IsZero() || !stats.LastWin.IsZero() {
		t.Fatalf("expected zero first/last win instants")
	}
}

func TestComputeStatsRanking(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	base := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)

	for i, user := range []string{"A", "A", "B"} {
		store.AppendWinRecord(ctx, &WinRecord{
			TeamID: "T1",
			UserID: user,
			WonAt:  base.Add(time.Duration(i) * time.Hour),
		})
	}

	stats, err := ComputeStats(ctx, store, "T1")
	if err != nil {
		t.Fatalf("compute stats: %v", err)
	}

	if stats.TotalWins != 3 {
		t.Fatalf("expected 3 total wins, got %d", stats.TotalWins)
	}
	want := []struct {
		user string
		wins int
	}{{"A", 2}, {"B", 1}}
	if len(stats.Leaderboard) != len(want) {
		t.Fatalf("expected %d leaderboard entries, got %d", len(want), len(stats.Leaderboard))
	}
	for i, w := range want {
		got := stats.Leaderboard[i]
		if got.UserID != w.user || got.Wins != w.wins {
			t.Fatalf("entry %d: expected (%s,%d), got (%s,%d)", i, w.user, w.wins, got.UserID, got.Wins)
		}
	}
	if !stats.FirstWin.Equal(base) {
		t.Fatalf("expected first win %v, got %v", base, stats.FirstWin)
	}
	if !stats.LastWin.Equal(base.Add(2 * time.Hour)) {
		t.Fatalf("expected last win %v, got %v", base.Add(2*time.Hour), stats.LastWin)
	}
}

func TestComputeStatsTieBreakByFirstWin(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	base := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)

	// B's first (and only) win precedes A's, so on equal counts B ranks first.
	store.AppendWinRecord(ctx, &WinRecord{TeamID: "T1", UserID: "B", WonAt: base})
	store.AppendWinRecord(ctx, &WinRecord{TeamID: "T1", UserID: "A", WonAt: base.Add(time.Hour)})

	stats, err := ComputeStats(ctx, store, "T1")
	if err != nil {
		t.Fatalf("compute stats: %v", err)
	}

	if stats.Leaderboard[0].UserID != "B" || stats.Leaderboard[1].UserID != "A" {
		t.Fatalf("expected tie broken by earliest first win (B before A), got %v", stats.Leaderboard)
	}
}

func TestComputeStatsDoesNotMixTeams(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	now := time.Now().UTC()

	store.AppendWinRecord(ctx, &WinRecord{TeamID: "T1", UserID: "A", WonAt: now})
	store.AppendWinRecord(ctx, &WinRecord{TeamID: "T2", UserID: "Z", WonAt: now})

	stats, err := ComputeStats(ctx, store, "T1")
	if err != nil {
		t.Fatalf("compute stats: %v", err)
	}
	if stats.TotalWins != 1 || stats.Leaderboard[0].UserID != "A" {
		t.Fatalf("expected only T1 wins, got %+v", stats)
	}
}
