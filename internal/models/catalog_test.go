// catalog_test.go

package models

import (
	"testing"
)

func TestWeaponCatalog(t *testing.T) {
	tests := []struct {
		id       WeaponID
		damage   float64
		price    int64
		grade    GradeTier
		fireRate int64
	}{
		{WeaponPistol, 1, 0, GradeBronze, 500},
		{WeaponSMG, 1.5, 1000, GradeSilver, 150},
		{WeaponSniper, 5, 5000, GradeGold, 2000},
		{WeaponRocket, 10, 20000, GradePlatinum, 3000},
	}

	for _, tt := range tests {
		weapon, ok := WeaponByID(tt.id)
		if !ok {
			t.Fatalf("WeaponByID(%s) 未找到", tt.id)
		}
		if weapon.Damage != tt.damage {
			t.Errorf("%s 伤害 = %v, 期望 %v", tt.id, weapon.Damage, tt.damage)
		}
		if weapon.Price != tt.price {
			t.Errorf("%s 价格 = %d, 期望 %d", tt.id, weapon.Price, tt.price)
		}
		if weapon.RequiredGrade != tt.grade {
			t.Errorf("%s 段位要求 = %v, 期望 %v", tt.id, weapon.RequiredGrade, tt.grade)
		}
		if weapon.FireRateMs != tt.fireRate {
			t.Errorf("%s 射速 = %d, 期望 %d", tt.id, weapon.FireRateMs, tt.fireRate)
		}
	}

	if _, ok := WeaponByID("bazooka"); ok {
		t.Error("未知武器ID不应命中目录")
	}

	if got := len(AllWeapons()); got != 4 {
		t.Errorf("武器目录数量 = %d, 期望 4", got)
	}
}

func TestClassCatalog(t *testing.T) {
	tank, ok := ClassByID(ClassTank)
	if !ok || tank.HealthMultiplier != 1.5 || tank.SpeedMultiplier != 0.7 {
		t.Errorf("坦克属性错误: %+v", tank)
	}
	if MaxHealthFor(tank) != 15 {
		t.Errorf("坦克最大血量 = %v, 期望 15", MaxHealthFor(tank))
	}

	assassin, _ := ClassByID(ClassAssassin)
	if assassin.DamageMultiplier != 2 || assassin.BackstabMultiplier != 2 {
		t.Errorf("刺客属性错误: %+v", assassin)
	}

	hacker, _ := ClassByID(ClassHacker)
	if !hacker.CanSeeBalances {
		t.Error("黑客应能看到余额")
	}
	if MaxHealthFor(hacker) != BaseHealth {
		t.Errorf("黑客最大血量 = %v, 期望 %v", MaxHealthFor(hacker), BaseHealth)
	}

	if _, ok := ClassByID("wizard"); ok {
		t.Error("未知职业ID不应命中目录")
	}
}

func TestZoneMultiplier(t *testing.T) {
	tests := []struct {
		zone HitZone
		want float64
	}{
		{ZoneHead, 3},
		{ZoneBody, 1},
		{ZoneLeg, 0.5},
		{"elbow", 1}, // 未知区域按身体计算
		{"", 1},
	}

	for _, tt := range tests {
		if got := ZoneMultiplier(tt.zone); got != tt.want {
			t.Errorf("ZoneMultiplier(%q) = %v, 期望 %v", tt.zone, got, tt.want)
		}
	}
}

func TestGradeProgression(t *testing.T) {
	tests := []struct {
		kills  int
		damage float64
		want   GradeTier
	}{
		{0, 0, GradeBronze},
		{4, 9.9, GradeBronze},  // 499分
		{5, 0, GradeSilver},    // 500分
		{0, 50, GradeSilver},   // 500分，纯伤害
		{19, 9.9, GradeSilver}, // 1999分
		{20, 0, GradeGold},     // 2000分
		{49, 9.9, GradeGold},   // 4999分
		{50, 0, GradePlatinum}, // 5000分
		{100, 500, GradePlatinum},
	}

	for _, tt := range tests {
		points := GradePoints(tt.kills, tt.damage)
		if got := GradeFromPoints(points); got != tt.want {
			t.Errorf("GradeFromPoints(%d击杀, %.1f伤害 = %d分) = %v, 期望 %v",
				tt.kills, tt.damage, points, got, tt.want)
		}
	}
}

func TestGradeOrdering(t *testing.T) {
	if !(GradeBronze < GradeSilver && GradeSilver < GradeGold && GradeGold < GradePlatinum) {
		t.Error("段位等级必须按顺序可比较")
	}
}

func TestSpawnPositionCycles(t *testing.T) {
	if len(spawnPoints) != 10 {
		t.Fatalf("出生点表长度 = %d, 期望 10", len(spawnPoints))
	}

	// 超出表长的序号循环复用
	for i := 0; i < len(spawnPoints); i++ {
		if SpawnPosition(i) != SpawnPosition(i+len(spawnPoints)) {
			t.Errorf("出生点 %d 与 %d 应一致", i, i+len(spawnPoints))
		}
	}

	seen := make(map[Vector3D]bool)
	for i := 0; i < len(spawnPoints); i++ {
		seen[SpawnPosition(i)] = true
	}
	if len(seen) != len(spawnPoints) {
		t.Errorf("前 %d 个出生点应互不相同, 实际 %d 个", len(spawnPoints), len(seen))
	}
}

func TestPlayerGrade(t *testing.T) {
	p := &Player{Kills: 20, DamageDealt: 0}
	if p.Grade() != GradeGold {
		t.Errorf("玩家段位 = %v, 期望 %v", p.Grade(), GradeGold)
	}

	// 段位积分不含货币项
	p2 := &Player{SatsEarned: 1000000}
	if p2.Grade() != GradeBronze {
		t.Errorf("sats不应计入段位积分, 得到 %v", p2.Grade())
	}

	// 伤害积分向下取整
	if got := GradePoints(0, 0.19); got != 1 {
		t.Errorf("GradePoints(0, 0.19) = %d, 期望 1", got)
	}
}
