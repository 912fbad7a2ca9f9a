// catalog.go

package models

import "math"

// 游戏经济常量
const (
	// EntryCost 入场费用(sats)
	EntryCost int64 = 1000
	// HealthToSatsRatio 血量与sats兑换比率: 1 PV = 100 sats
	HealthToSatsRatio = 100
	// BaseHealth 基础血量
	BaseHealth = 10.0
	// MaxPlayersPerSession 每个会话最大玩家数
	MaxPlayersPerSession = 10
)

// WeaponID 武器ID
type WeaponID string

const (
	// WeaponPistol 手枪
	WeaponPistol WeaponID = "pistol"
	// WeaponSMG 冲锋枪
	WeaponSMG WeaponID = "smg"
	// WeaponSniper 狙击枪
	WeaponSniper WeaponID = "sniper"
	// WeaponRocket 火箭筒
	WeaponRocket WeaponID = "rocket"
)

// WeaponCategory 武器类别
type WeaponCategory string

const (
	// CategoryHandgun 手枪类
	CategoryHandgun WeaponCategory = "handgun"
	// CategoryAutomatic 自动武器类
	CategoryAutomatic WeaponCategory = "automatic"
	// CategorySniper 狙击类
	CategorySniper WeaponCategory = "sniper"
	// CategoryExplosive 爆炸类
	CategoryExplosive WeaponCategory = "explosive"
)

// Weapon 武器数据(静态目录，不可变)
type Weapon struct {
	ID            WeaponID       `json:"id"`
	Name          string         `json:"name"`
	Damage        float64        `json:"damage"`
	FireRateMs    int64          `json:"fire_rate"` // 射击冷却(毫秒)
	Range         float64        `json:"range"`
	Price         int64          `json:"price"`
	RequiredGrade GradeTier      `json:"required_grade"`
	Category      WeaponCategory `json:"category"`
}

// WeaponByID 按ID查找武器，未知ID返回false
func WeaponByID(id WeaponID) (Weapon, bool) {
	switch id {
	case WeaponPistol:
		return Weapon{ID: WeaponPistol, Name: "Pistol", Damage: 1, FireRateMs: 500, Range: 50, Price: 0, RequiredGrade: GradeBronze, Category: CategoryHandgun}, true
	case WeaponSMG:
		return Weapon{ID: WeaponSMG, Name: "SMG", Damage: 1.5, FireRateMs: 150, Range: 40, Price: 1000, RequiredGrade: GradeSilver, Category: CategoryAutomatic}, true
	case WeaponSniper:
		return Weapon{ID: WeaponSniper, Name: "Sniper Rifle", Damage: 5, FireRateMs: 2000, Range: 200, Price: 5000, RequiredGrade: GradeGold, Category: CategorySniper}, true
	case WeaponRocket:
		return Weapon{ID: WeaponRocket, Name: "Rocket Launcher", Damage: 10, FireRateMs: 3000, Range: 100, Price: 20000, RequiredGrade: GradePlatinum, Category: CategoryExplosive}, true
	default:
		return Weapon{}, false
	}
}

// AllWeapons 返回完整武器目录
func AllWeapons() []Weapon {
	ids := []WeaponID{WeaponPistol, WeaponSMG, WeaponSniper, WeaponRocket}
	weapons := make([]Weapon, 0, len(ids))
	for _, id := range ids {
		w, _ := WeaponByID(id)
		weapons = append(weapons, w)
	}
	return weapons
}

// ClassID 职业ID
type ClassID string

const (
	// ClassTank 坦克
	ClassTank ClassID = "tank"
	// ClassAssassin 刺客
	ClassAssassin ClassID = "assassin"
	// ClassHacker 黑客
	ClassHacker ClassID = "hacker"
)

// Class 职业数据(静态目录，不可变)
type Class struct {
	ID                 ClassID `json:"id"`
	Name               string  `json:"name"`
	HealthMultiplier   float64 `json:"health_multiplier"`
	SpeedMultiplier    float64 `json:"speed_multiplier"`
	DamageMultiplier   float64 `json:"damage_multiplier"`
	BackstabMultiplier float64 `json:"backstab_multiplier,omitempty"`
	CanSeeBalances     bool    `json:"can_see_balances,omitempty"`
}

// ClassByID 按ID查找职业，未知ID返回false
func ClassByID(id ClassID) (Class, bool) {
	switch id {
	case ClassTank:
		return Class{ID: ClassTank, Name: "Tank", HealthMultiplier: 1.5, SpeedMultiplier: 0.7, DamageMultiplier: 1}, true
	case ClassAssassin:
		return Class{ID: ClassAssassin, Name: "Assassin", HealthMultiplier: 1, SpeedMultiplier: 1.3, DamageMultiplier: 2, BackstabMultiplier: 2}, true
	case ClassHacker:
		return Class{ID: ClassHacker, Name: "Hacker", HealthMultiplier: 1, SpeedMultiplier: 1, DamageMultiplier: 1, CanSeeBalances: true}, true
	default:
		return Class{}, false
	}
}

// MaxHealthFor 计算职业对应的最大血量
func MaxHealthFor(class Class) float64 {
	return BaseHealth * class.HealthMultiplier
}

// HitZone 命中区域
type HitZone string

const (
	// ZoneHead 头部
	ZoneHead HitZone = "head"
	// ZoneBody 身体
	ZoneBody HitZone = "body"
	// ZoneLeg 腿部
	ZoneLeg HitZone = "leg"
)

// ZoneMultiplier 命中区域伤害倍率，未知区域按身体计算
func ZoneMultiplier(zone HitZone) float64 {
	switch zone {
	case ZoneHead:
		return 3
	case ZoneLeg:
		return 0.5
	default:
		return 1
	}
}

// GradeTier 段位等级，按顺序可比较
type GradeTier int

const (
	// GradeBronze 青铜
	GradeBronze GradeTier = iota
	// GradeSilver 白银
	GradeSilver
	// GradeGold 黄金
	GradeGold
	// GradePlatinum 铂金
	GradePlatinum
)

// String 返回段位名称
func (g GradeTier) String() string {
	switch g {
	case GradeSilver:
		return "silver"
	case GradeGold:
		return "gold"
	case GradePlatinum:
		return "platinum"
	default:
		return "bronze"
	}
}

// GradePoints 计算段位积分: 击杀×100 + 伤害×10
func GradePoints(kills int, damageDealt float64) int64 {
	return int64(kills)*100 + int64(math.Floor(damageDealt*10))
}

// GradeFromPoints 根据积分计算段位
func GradeFromPoints(points int64) GradeTier {
	switch {
	case points >= 5000:
		return GradePlatinum
	case points >= 2000:
		return GradeGold
	case points >= 500:
		return GradeSilver
	default:
		return GradeBronze
	}
}

// spawnPoints 固定出生点表，按加入顺序循环使用
var spawnPoints = []Vector3D{
	{X: -50, Y: 0, Z: -50},
	{X: 50, Y: 0, Z: -50},
	{X: -50, Y: 0, Z: 50},
	{X: 50, Y: 0, Z: 50},
	{X: 0, Y: 0, Z: -80},
	{X: 0, Y: 0, Z: 80},
	{X: -80, Y: 0, Z: 0},
	{X: 80, Y: 0, Z: 0},
	{X: -30, Y: 0, Z: -30},
	{X: 30, Y: 0, Z: 30},
}

// SpawnPosition 按序号获取出生点，超出表长循环复用
func SpawnPosition(index int) Vector3D {
	if index < 0 {
		index = -index
	}
	return spawnPoints[index%len(spawnPoints)]
}
