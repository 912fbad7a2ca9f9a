// session.go

package models

import (
	"time"
)

// SessionStatus 会话状态
type SessionStatus string

const (
	// SessionWaiting 等待中
	SessionWaiting SessionStatus = "waiting"
	// SessionActive 对局中
	SessionActive SessionStatus = "active"
	// SessionEnded 已结束
	SessionEnded SessionStatus = "ended"
)

// Session 游戏会话(大厅/竞技场)
type Session struct {
	ID         string        `json:"id"` // 名称即ID，大小写不敏感唯一
	Status     SessionStatus `json:"status"`
	MaxPlayers int           `json:"max_players"`
	CreatedAt  time.Time     `json:"created_at"`
	StartedAt  time.Time     `json:"started_at,omitempty"`
	EndedAt    time.Time     `json:"ended_at,omitempty"`
	WinnerID   string        `json:"winner_id,omitempty"`
}

// SessionInfo 会话列表投影(只读，供HTTP接口使用)
type SessionInfo struct {
	ID          string        `json:"id"`
	PlayerCount int           `json:"player_count"`
	MaxPlayers  int           `json:"max_players"`
	Status      SessionStatus `json:"status"`
}

// LeaderboardEntry 排行榜条目，按需投影，从不持久化
type LeaderboardEntry struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Kills       int     `json:"kills"`
	Deaths      int     `json:"deaths"`
	DamageDealt float64 `json:"damage_dealt"`
	SatsEarned  int64   `json:"sats_earned"`
	SatsLost    int64   `json:"sats_lost"`
	Balance     int64   `json:"balance"`
	IsAlive     bool    `json:"is_alive"`
}
