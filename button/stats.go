package button

import (
	"context"
	"fmt"
	"sort"
)

// ComputeStats aggregates a team's win history into a ranked leaderboard
// plus summary counts. Ordering is by win count descending, ties broken by
// earliest first win, so the result is deterministic. An empty history
// yields an empty leaderboard and zero totals, not an error.
func ComputeStats(ctx context.Context, store Store, teamID string) (*Stats, error) {
	records, err := store.ListWinRecords(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("compute stats: list wins for team %s: %w", teamID, err)
	}

	stats := &Stats{}
	if len(records) == 0 {
		return stats, nil
	}

	// Records arrive ordered by WonAt ascending, so the first occurrence of
	// a user is their first win.
	byUser := map[string]*LeaderboardEntry{}
	for _, rec := range records {
		entry, ok := byUser[rec.UserID]
		if !ok {
			entry = &LeaderboardEntry{UserID: rec.UserID, FirstWin: rec.WonAt}
			byUser[rec.UserID] = entry
		}
		entry.Wins++
	}

	stats.Leaderboard = make([]LeaderboardEntry, 0, len(byUser))
	for _, entry := range byUser {
		stats.Leaderboard = append(stats.Leaderboard, *entry)
	}
	sort.Slice(stats.Leaderboard, func(i, j int) bool {
		a, b := stats.Leaderboard[i], stats.Leaderboard[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.FirstWin.Before(b.FirstWin)
	})

	stats.TotalWins = len(records)
	stats.FirstWin = records[0].WonAt
	stats.LastWin = records[len(records)-1].WonAt
	return stats, nil
}
