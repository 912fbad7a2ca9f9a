// player.go

package models

import (
	"time"
)

// Vector3D 三维向量
type Vector3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// WalletInfo 外部钱包凭证句柄，由支付服务创建
type WalletInfo struct {
	WalletID   string `json:"wallet_id"`
	AdminKey   string `json:"-"` // 不序列化管理密钥
	InvoiceKey string `json:"invoice_key"`
	Simulated  bool   `json:"simulated"` // 支付服务降级为模拟模式
}

// Player 玩家模型
// 血量使用float64: 命中区域与职业倍率会产生0.5的小数伤害，
// 货币换算时向下取整为整数sats
type Player struct {
	ID   string `json:"id"` // 连接作用域ID
	Name string `json:"name"`

	// 外部钱包凭证
	Wallet WalletInfo `json:"wallet"`

	// 战斗属性
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"max_health"`
	IsAlive   bool    `json:"is_alive"`
	ClassType ClassID `json:"class_type"`

	// 经济属性
	Balance         int64 `json:"balance"`
	PaymentVerified bool  `json:"payment_verified"`

	// 位置与朝向
	Position Vector3D `json:"position"`
	Rotation Vector3D `json:"rotation"`

	// 武器
	Weapons       []WeaponID `json:"weapons"`
	CurrentWeapon WeaponID   `json:"current_weapon"`
	LastShot      time.Time  `json:"-"`

	// 会话归属，空字符串表示不在会话中
	SessionID string `json:"session_id,omitempty"`

	// 累计统计(会话内重生不清零)
	Kills       int     `json:"kills"`
	Deaths      int     `json:"deaths"`
	DamageDealt float64 `json:"damage_dealt"`
	SatsEarned  int64   `json:"sats_earned"`
	SatsLost    int64   `json:"sats_lost"`

	CreatedAt time.Time `json:"created_at"`
}

// OwnsWeapon 检查玩家是否拥有指定武器
func (p *Player) OwnsWeapon(id WeaponID) bool {
	for _, w := range p.Weapons {
		if w == id {
			return true
		}
	}
	return false
}

// Grade 计算玩家当前段位
func (p *Player) Grade() GradeTier {
	return GradeFromPoints(GradePoints(p.Kills, p.DamageDealt))
}

// PlayerInfo 广播给其他玩家的公开信息
type PlayerInfo struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	ClassType ClassID  `json:"class_type"`
	Health    float64  `json:"health"`
	MaxHealth float64  `json:"max_health"`
	IsAlive   bool     `json:"is_alive"`
	Position  Vector3D `json:"position"`
	Rotation  Vector3D `json:"rotation"`
}

// Info 生成玩家公开信息
func (p *Player) Info() PlayerInfo {
	return PlayerInfo{
		ID:        p.ID,
		Name:      p.Name,
		ClassType: p.ClassType,
		Health:    p.Health,
		MaxHealth: p.MaxHealth,
		IsAlive:   p.IsAlive,
		Position:  p.Position,
		Rotation:  p.Rotation,
	}
}
