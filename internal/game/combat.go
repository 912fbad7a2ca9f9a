// combat.go

package game

import (
	"math"

	"github.com/sathunter/SatHunter-Server/internal/models"
)

// Damage 计算单次攻击伤害，纯函数
// 伤害 = 武器基础伤害 × 命中区域倍率 × 职业伤害倍率 × 背刺倍率(仅刺客)
func Damage(weapon models.Weapon, zone models.HitZone, attackerClass models.Class, isBackstab bool) float64 {
	damage := weapon.Damage * models.ZoneMultiplier(zone)
	damage *= attackerClass.DamageMultiplier

	if isBackstab && attackerClass.ID == models.ClassAssassin {
		damage *= attackerClass.BackstabMultiplier
	}

	return damage
}

// SatsForDamage 伤害对应的sats价值，向下取整
// 仅作为攻击者的参考信息，实际转账只在击杀时发生
func SatsForDamage(damage float64) int64 {
	return int64(math.Floor(damage * models.HealthToSatsRatio))
}

// LootForKill 击杀战利品: 受害者死亡时的剩余血量按固定比率兑换
// 超出剩余血量的溢出伤害不计入
func LootForKill(remainingHealth float64) int64 {
	return int64(math.Floor(remainingHealth * models.HealthToSatsRatio))
}
