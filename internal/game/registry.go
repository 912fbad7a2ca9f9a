// registry.go

package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/sathunter/SatHunter-Server/internal/models"
)

// PlayerRegistry 玩家注册表，独占管理所有玩家的可变状态
// 写操作全部来自调度协程；读写锁只用于保护HTTP接口的跨协程读取
type PlayerRegistry struct {
	players map[string]*models.Player
	mutex   sync.RWMutex
}

// NewPlayerRegistry 创建玩家注册表
func NewPlayerRegistry() *PlayerRegistry {
	return &PlayerRegistry{
		players: make(map[string]*models.Player),
	}
}

// CreatePlayer 创建新玩家
// 连接ID重复时返回错误(幂等保护，正常流程不会触发)
func (r *PlayerRegistry) CreatePlayer(connID, name string, wallet models.WalletInfo) (*models.Player, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.players[connID]; exists {
		return nil, fmt.Errorf("连接 %s 已注册玩家", connID)
	}

	class, _ := models.ClassByID(models.ClassAssassin)
	maxHealth := models.MaxHealthFor(class)

	player := &models.Player{
		ID:            connID,
		Name:          name,
		Wallet:        wallet,
		Health:        maxHealth,
		MaxHealth:     maxHealth,
		IsAlive:       true,
		ClassType:     models.ClassAssassin,
		Balance:       models.EntryCost,
		Weapons:       []models.WeaponID{models.WeaponPistol},
		CurrentWeapon: models.WeaponPistol,
		CreatedAt:     time.Now(),
	}

	r.players[connID] = player
	return player, nil
}

// Get 获取玩家
func (r *PlayerRegistry) Get(playerID string) (*models.Player, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	player, exists := r.players[playerID]
	return player, exists
}

// Remove 移除玩家(断开连接时)
func (r *PlayerRegistry) Remove(playerID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.players, playerID)
}

// Count 当前玩家数量
func (r *PlayerRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.players)
}

// ChangeClass 切换玩家职业，重新计算最大血量
// 存活状态下切换不会向下钳制当前血量，直到下次伤害/治疗事件
func (r *PlayerRegistry) ChangeClass(playerID string, classID models.ClassID) (float64, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	player, exists := r.players[playerID]
	if !exists {
		return 0, false
	}

	class, ok := models.ClassByID(classID)
	if !ok {
		return 0, false
	}

	player.ClassType = classID
	player.MaxHealth = models.MaxHealthFor(class)

	return player.MaxHealth, true
}

// ConfirmPayment 入场支付确认后更新玩家余额
// 重复确认是安全的，余额固定重置为入场费
func (r *PlayerRegistry) ConfirmPayment(playerID string) (int64, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	player, exists := r.players[playerID]
	if !exists {
		return 0, false
	}

	player.Balance = models.EntryCost
	player.PaymentVerified = true
	return player.Balance, true
}

// ResetForStart 对局开始时重置玩家战斗状态
// 按职业重新计算最大血量并回满，复活，设置出生点
func (r *PlayerRegistry) ResetForStart(playerID string, spawn models.Vector3D) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	player, exists := r.players[playerID]
	if !exists {
		return false
	}

	class, ok := models.ClassByID(player.ClassType)
	if !ok {
		return false
	}

	player.MaxHealth = models.MaxHealthFor(class)
	player.Health = player.MaxHealth
	player.IsAlive = true
	player.Position = spawn

	return true
}

// DamageResult 伤害应用结果
type DamageResult struct {
	NewHealth  float64
	HealthLost float64 // 实际扣除的血量，不含溢出部分
	Killed     bool    // 仅在存活→死亡的转换上为true
}

// ApplyDamage 对玩家应用伤害
// 血量在0处钳制；死亡转换恰好发生一次；对已死亡目标为无操作，
// 保证一名受害者无论并发致命攻击的到达顺序如何，最多产生一次击杀
func (r *PlayerRegistry) ApplyDamage(playerID string, damage float64) DamageResult {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	player, exists := r.players[playerID]
	if !exists || !player.IsAlive {
		return DamageResult{NewHealth: 0, Killed: false}
	}

	lost := damage
	if lost > player.Health {
		lost = player.Health
	}

	player.Health -= damage
	player.SatsLost += int64(lost * models.HealthToSatsRatio)

	if player.Health <= 0 {
		player.Health = 0
		player.IsAlive = false
		player.Deaths++
		return DamageResult{NewHealth: 0, HealthLost: lost, Killed: true}
	}

	return DamageResult{NewHealth: player.Health, HealthLost: lost, Killed: false}
}

// CreditKill 记录击杀并转入战利品
// 战利品金额由战斗规则引擎按受害者死亡时的剩余血量计算
func (r *PlayerRegistry) CreditKill(killerID string, loot int64) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	killer, exists := r.players[killerID]
	if !exists {
		return
	}

	killer.Kills++
	killer.SatsEarned += loot
	killer.Balance += loot
}

// AddDamageDealt 累计攻击者造成的伤害
func (r *PlayerRegistry) AddDamageDealt(playerID string, damage float64) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if player, exists := r.players[playerID]; exists {
		player.DamageDealt += damage
	}
}

// TryFireRateGate 射速闸门
// 距上次射击不足武器冷却时间则拒绝；通过时无条件先更新LastShot，
// 再进行伤害计算，封堵并发重复事件的连发利用窗口
func (r *PlayerRegistry) TryFireRateGate(playerID string, weapon models.Weapon, now time.Time) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	player, exists := r.players[playerID]
	if !exists {
		return false
	}

	cooldown := time.Duration(weapon.FireRateMs) * time.Millisecond
	if now.Sub(player.LastShot) < cooldown {
		return false
	}

	player.LastShot = now
	return true
}

// PurchaseStatus 购买结果状态
type PurchaseStatus int

const (
	// PurchaseOK 购买成功
	PurchaseOK PurchaseStatus = iota
	// PurchaseUnknownPlayer 玩家不存在
	PurchaseUnknownPlayer
	// PurchaseUnknownWeapon 武器不存在
	PurchaseUnknownWeapon
	// PurchaseAlreadyOwned 已拥有该武器
	PurchaseAlreadyOwned
	// PurchaseInsufficientBalance 余额不足
	PurchaseInsufficientBalance
	// PurchaseGradeTooLow 段位不足
	PurchaseGradeTooLow
)

// PurchaseWeapon 购买武器，原子操作
// 任何失败分支下余额与武器集合均保持不变
func (r *PlayerRegistry) PurchaseWeapon(playerID string, weaponID models.WeaponID) PurchaseStatus {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	player, exists := r.players[playerID]
	if !exists {
		return PurchaseUnknownPlayer
	}

	weapon, ok := models.WeaponByID(weaponID)
	if !ok {
		return PurchaseUnknownWeapon
	}

	if player.OwnsWeapon(weaponID) {
		return PurchaseAlreadyOwned
	}

	if player.Balance < weapon.Price {
		return PurchaseInsufficientBalance
	}

	if player.Grade() < weapon.RequiredGrade {
		return PurchaseGradeTooLow
	}

	player.Balance -= weapon.Price
	player.Weapons = append(player.Weapons, weaponID)

	return PurchaseOK
}

// EquipWeapon 装备已拥有的武器
func (r *PlayerRegistry) EquipWeapon(playerID string, weaponID models.WeaponID) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	player, exists := r.players[playerID]
	if !exists || !player.OwnsWeapon(weaponID) {
		return false
	}

	player.CurrentWeapon = weaponID
	return true
}

// SetPosition 覆盖玩家位置与朝向
func (r *PlayerRegistry) SetPosition(playerID string, pos, rot models.Vector3D) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	player, exists := r.players[playerID]
	if !exists || !player.IsAlive {
		return false
	}

	player.Position = pos
	player.Rotation = rot
	return true
}

// ResetForRespawn 重新买入后重置玩家
// 血量回满、余额重置为入场费、复活并分配出生点、清零SatsLost；
// 击杀/死亡等生涯统计保留
func (r *PlayerRegistry) ResetForRespawn(playerID string, spawn models.Vector3D) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	player, exists := r.players[playerID]
	if !exists {
		return false
	}

	player.Health = player.MaxHealth
	player.Balance = models.EntryCost
	player.IsAlive = true
	player.Position = spawn
	player.SatsLost = 0

	return true
}
