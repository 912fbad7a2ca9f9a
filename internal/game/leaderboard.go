// leaderboard.go

package game

import (
	"sort"

	"github.com/sathunter/SatHunter-Server/internal/models"
)

// ProjectLeaderboard 从玩家集合投影排行榜
// 击杀数降序，相同时按赚取sats降序。每次按需重新计算，
// 不做增量维护，避免缓存视图与源字段产生漂移
func ProjectLeaderboard(players []*models.Player) []models.LeaderboardEntry {
	entries := make([]models.LeaderboardEntry, 0, len(players))
	for _, p := range players {
		entries = append(entries, models.LeaderboardEntry{
			ID:          p.ID,
			Name:        p.Name,
			Kills:       p.Kills,
			Deaths:      p.Deaths,
			DamageDealt: p.DamageDealt,
			SatsEarned:  p.SatsEarned,
			SatsLost:    p.SatsLost,
			Balance:     p.Balance,
			IsAlive:     p.IsAlive,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Kills != entries[j].Kills {
			return entries[i].Kills > entries[j].Kills
		}
		return entries[i].SatsEarned > entries[j].SatsEarned
	})

	return entries
}
