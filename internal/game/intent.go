package game

import "github.com/inkveil/engine/internal/content"

// debuffBonusDamage is a fixed table of conditional intent bonuses keyed
// "<enemyId>:<abilityName>". When the ability lands while the player
// carries a qualifying debuff, the bonus is added before damage is
// computed. Preview and resolution read the same table through the same
// predicate, so the displayed forecast always equals what resolves.
var debuffBonusDamage = map[string]int{
	"medusa:Stone Crush":         8,
	"inkbound_shade:Smother":     3,
	"palimpsest:Overwrite":       5,
	"unwritten_king:Blank Verse": 6,
}

// BonusDamageIfPlayerDebuffed returns the registered bonus for an enemy
// ability, or (0, false) when none is registered.
func BonusDamageIfPlayerDebuffed(enemyID, abilityName string) (int, bool) {
	bonus, ok := debuffBonusDamage[enemyID+":"+abilityName]
	return bonus, ok
}

// HasPlayerDebuffForEnemyBonus reports whether the player carries any
// debuff that triggers conditional intent bonuses: WEAK, VULNERABLE, or
// POISON with stacks above zero.
func HasPlayerDebuffForEnemyBonus(buffs []BuffInstance) bool {
	for _, b := range buffs {
		if b.Stacks <= 0 {
			continue
		}
		switch b.Type {
		case content.BuffWeak, content.BuffVulnerable, content.BuffPoison:
			return true
		}
	}
	return false
}

// intentBonus combines the lookup and the debuff predicate: the bonus
// applies only when both hold.
func intentBonus(enemyID, abilityName string, playerBuffs []BuffInstance) int {
	bonus, ok := BonusDamageIfPlayerDebuffed(enemyID, abilityName)
	if !ok || !HasPlayerDebuffForEnemyBonus(playerBuffs) {
		return 0
	}
	return bonus
}

// EnemyIntent is the player-facing forecast of one enemy's queued ability.
type EnemyIntent struct {
	EnemyInstanceID string `json:"enemyInstanceId"`
	EnemyName       string `json:"enemyName"`
	AbilityName     string `json:"abilityName"`
	// Damage is the total post-modifier attack damage the ability will
	// deal if it resolves against the player's current buffs, including
	// any conditional debuff bonus. Zero for non-attacking abilities.
	Damage int `json:"damage"`
	// BonusApplied reports whether the conditional debuff bonus is
	// currently live for this intent.
	BonusApplied bool `json:"bonusApplied"`
}

// queuedAbility returns the enemy's currently queued ability, resolving
// the intent index against the definition's rotation. Unknown definitions
// or empty ability lists yield (zero, false).
func queuedAbility(cat *content.Catalog, e *EnemyState) (content.EnemyAbility, bool) {
	def, ok := cat.Enemy(e.DefinitionID)
	if !ok || len(def.Abilities) == 0 {
		return content.EnemyAbility{}, false
	}
	return def.Abilities[e.IntentIndex%len(def.Abilities)], true
}

// EnemyIntents computes the declared next action of every living enemy.
// It shares enemyAttackDamage and intentBonus with actual resolution;
// the two agreeing bit-for-bit is a correctness invariant, not a UI
// nicety.
func EnemyIntents(c *CombatState, cat *content.Catalog) []EnemyIntent {
	var intents []EnemyIntent
	for i := range c.Enemies {
		e := &c.Enemies[i]
		if !e.Alive() {
			continue
		}
		ability, ok := queuedAbility(cat, e)
		if !ok {
			continue
		}

		name := e.DefinitionID
		if def, defOK := cat.Enemy(e.DefinitionID); defOK {
			name = def.Name
		}

		bonus := intentBonus(e.DefinitionID, ability.Name, c.Player.Buffs)
		total := 0
		pending := bonus
		for _, eff := range ability.Effects {
			if eff.Type != content.EffectDamage {
				continue
			}
			total += enemyAttackDamage(eff.Value, e, &c.Player, pending)
			pending = 0
		}

		intents = append(intents, EnemyIntent{
			EnemyInstanceID: e.InstanceID,
			EnemyName:       name,
			AbilityName:     ability.Name,
			Damage:          total,
			BonusApplied:    bonus > 0,
		})
	}
	return intents
}
