package domain

import "sort"

// Rank orders players by score (desc), then total time (asc). Name and id
// break any remaining ties so the order is stable across snapshots. Ranked
// entries carry the public id only.
func Rank(players []*Player) []RankedPlayer {
	sorted := make([]*Player, 0, len(players))
	for _, p := range players {
		if p != nil {
			sorted = append(sorted, p)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.TotalTime != b.TotalTime {
			return a.TotalTime < b.TotalTime
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})

	ranked := make([]RankedPlayer, len(sorted))
	for i, p := range sorted {
		ranked[i] = RankedPlayer{
			Rank:      i + 1,
			ID:        p.PublicID,
			Name:      p.Name,
			IconURL:   p.IconURL,
			Score:     p.Score,
			TotalTime: p.TotalTime,
		}
	}
	return ranked
}

// SortLeaderboard orders solo entries by score (desc), total time (asc), then submission time.
func SortLeaderboard(entries []LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.TotalTime != b.TotalTime {
			return a.TotalTime < b.TotalTime
		}
		return a.Timestamp.Before(b.Timestamp)
	})
}
