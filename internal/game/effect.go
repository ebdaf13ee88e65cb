package game

import (
	"fmt"

	"github.com/inkveil/engine/internal/content"
	"github.com/inkveil/engine/internal/engine"
)

// effectContext carries everything one effect application may touch: the
// acting side, the resolved targets, catalog access, and the combat's
// seeded stream. The interpreter mutates the combat state it was handed
// and appends human-independent event strings describing what happened.
type effectContext struct {
	run    *RunState
	combat *CombatState
	cat    *content.Catalog
	rng    *engine.Stream

	// actorEnemy is set when an enemy is acting; nil means the player
	// (or an ally on the player's side) is acting.
	actorEnemy *EnemyState

	// targets are the enemy targets for player-side DAMAGE/APPLY_DEBUFF.
	targets []*EnemyState

	// pendingBonus is the intent resolver's conditional bonus, consumed
	// by the first DAMAGE effect of the ability it was computed for.
	pendingBonus int

	exhaust bool
	events  []string
}

func (ctx *effectContext) addEvent(format string, args ...any) {
	ctx.events = append(ctx.events, fmt.Sprintf(format, args...))
}

func (ctx *effectContext) enemyName(e *EnemyState) string {
	if def, ok := ctx.cat.Enemy(e.DefinitionID); ok {
		return def.Name
	}
	return e.DefinitionID
}

// applyEffect evaluates a single declarative effect. It never fails for a
// well-typed effect; an unknown card or ally reference no-ops that one
// sub-effect so a bad reference cannot abort the surrounding list.
func applyEffect(eff content.Effect, ctx *effectContext) {
	switch eff.Type {
	case content.EffectDamage:
		if ctx.actorEnemy != nil {
			amount := enemyAttackDamage(eff.Value, ctx.actorEnemy, &ctx.combat.Player, ctx.pendingBonus)
			ctx.pendingBonus = 0
			dealDamageToPlayer(ctx, ctx.enemyName(ctx.actorEnemy), amount)
			return
		}
		for _, t := range ctx.targets {
			if !t.Alive() {
				continue
			}
			amount := playerAttackDamage(eff.Value, &ctx.combat.Player, t)
			dealDamageToEnemy(ctx, t, amount)
		}

	case content.EffectBlock:
		if ctx.actorEnemy != nil {
			ctx.actorEnemy.Block += eff.Value
			ctx.addEvent("%s gains %d block", ctx.enemyName(ctx.actorEnemy), eff.Value)
			return
		}
		ctx.combat.Player.Block += eff.Value
		ctx.addEvent("player gains %d block", eff.Value)

	case content.EffectHeal:
		if ctx.actorEnemy != nil {
			healed := heal(&ctx.actorEnemy.CurrentHP, ctx.actorEnemy.MaxHP, eff.Value)
			ctx.addEvent("%s heals %d HP", ctx.enemyName(ctx.actorEnemy), healed)
			return
		}
		healed := heal(&ctx.combat.Player.CurrentHP, ctx.combat.Player.MaxHP, eff.Value)
		ctx.addEvent("player heals %d HP", healed)

	case content.EffectDrawCards:
		if ctx.actorEnemy != nil {
			return
		}
		drawn := drawCards(ctx.combat, ctx.rng, eff.Value)
		ctx.addEvent("player draws %d cards", drawn)

	case content.EffectGainEnergy:
		if ctx.actorEnemy != nil {
			return
		}
		ctx.combat.Player.Energy += eff.Value
		ctx.addEvent("player gains %d energy", eff.Value)

	case content.EffectGainInk:
		if ctx.actorEnemy != nil {
			return
		}
		gained := gainInk(&ctx.combat.Player, eff.Value)
		ctx.addEvent("player gains %d ink", gained)

	case content.EffectGainGold:
		if ctx.actorEnemy != nil || ctx.run == nil {
			return
		}
		ctx.run.Gold += eff.Value
		ctx.addEvent("player gains %d gold", eff.Value)

	case content.EffectApplyBuff:
		if ctx.actorEnemy != nil {
			ctx.actorEnemy.Buffs = applyBuff(ctx.actorEnemy.Buffs, eff.Buff, eff.Value, eff.Duration)
			ctx.addEvent("%s gains %d %s", ctx.enemyName(ctx.actorEnemy), eff.Value, eff.Buff)
			return
		}
		ctx.combat.Player.Buffs = applyBuff(ctx.combat.Player.Buffs, eff.Buff, eff.Value, eff.Duration)
		ctx.addEvent("player gains %d %s", eff.Value, eff.Buff)

	case content.EffectApplyDebuff:
		if ctx.actorEnemy != nil {
			ctx.combat.Player.Buffs = applyBuff(ctx.combat.Player.Buffs, eff.Buff, eff.Value, eff.Duration)
			ctx.addEvent("player suffers %d %s", eff.Value, eff.Buff)
			return
		}
		for _, t := range ctx.targets {
			if !t.Alive() {
				continue
			}
			t.Buffs = applyBuff(t.Buffs, eff.Buff, eff.Value, eff.Duration)
			ctx.addEvent("%s suffers %d %s", ctx.enemyName(t), eff.Value, eff.Buff)
		}

	case content.EffectExhaust:
		ctx.exhaust = true

	case content.EffectAddCardToDiscard:
		if ctx.actorEnemy != nil || ctx.run == nil {
			return
		}
		def, ok := ctx.cat.Card(eff.CardID)
		if !ok {
			return
		}
		inst := CardInstance{InstanceID: newInstanceID(ctx.run), DefinitionID: def.ID}
		ctx.combat.DiscardPile = append(ctx.combat.DiscardPile, inst)
		ctx.addEvent("a %s is added to the discard pile", def.Name)

	default:
		// Unknown effect types are local no-ops by the missing-reference
		// policy; they must not abort the rest of the effect list.
	}
}

// playerAttackDamage applies the player's strength and the WEAK/VULNERABLE
// modifiers to a base damage value. Block and HP subtraction happen later.
func playerAttackDamage(base int, p *PlayerState, target *EnemyState) int {
	d := base + p.Strength + buffStacks(p.Buffs, content.BuffStrength)
	if buffStacks(p.Buffs, content.BuffWeak) > 0 {
		d = d * 3 / 4
	}
	if buffStacks(target.Buffs, content.BuffVulnerable) > 0 {
		d = d * 3 / 2
	}
	if d < 0 {
		d = 0
	}
	return d
}

// enemyAttackDamage is the single damage formula shared by enemy resolution
// and the intent preview, so the displayed forecast always matches what
// resolution produces. bonus is the resolver's conditional debuff bonus.
// The player's own debuffs feed that bonus rather than multiplying here;
// VULNERABLE amplifies only damage the player deals.
func enemyAttackDamage(base int, e *EnemyState, p *PlayerState, bonus int) int {
	d := base + buffStacks(e.Buffs, content.BuffStrength) + bonus
	if buffStacks(e.Buffs, content.BuffWeak) > 0 {
		d = d * 3 / 4
	}
	if d < 0 {
		d = 0
	}
	return d
}

// dealDamageToEnemy drains block first, then HP, and ends the encounter
// immediately when the last enemy falls.
func dealDamageToEnemy(ctx *effectContext, e *EnemyState, amount int) {
	blocked := amount
	if blocked > e.Block {
		blocked = e.Block
	}
	e.Block -= blocked
	hpLoss := amount - blocked
	e.CurrentHP -= hpLoss
	if e.CurrentHP < 0 {
		e.CurrentHP = 0
	}

	ctx.addEvent("%s takes %d damage", ctx.enemyName(e), hpLoss)
	if !e.Alive() {
		ctx.addEvent("%s is defeated", ctx.enemyName(e))
	}
	checkVictory(ctx.combat)

	// Thorns on the struck enemy lash back at the player. Only attacks
	// from the player's side trigger it; the reflection ignores block.
	if thorns := buffStacks(e.Buffs, content.BuffThorns); thorns > 0 && ctx.actorEnemy == nil {
		p := &ctx.combat.Player
		p.CurrentHP -= thorns
		if p.CurrentHP < 0 {
			p.CurrentHP = 0
		}
		ctx.addEvent("%s's thorns deal %d damage to player", ctx.enemyName(e), thorns)
		checkDefeat(ctx.combat)
	}
}

// dealDamageToPlayer applies the single-use first-hit reduction, then
// block, then HP, and flips the combat to DEFEAT the moment HP reaches 0.
func dealDamageToPlayer(ctx *effectContext, sourceName string, amount int) {
	p := &ctx.combat.Player
	if p.FirstHitDamageReductionPercent > 0 && !p.FirstHitReductionUsed {
		amount -= amount * p.FirstHitDamageReductionPercent / 100
		p.FirstHitReductionUsed = true
	}

	blocked := amount
	if blocked > p.Block {
		blocked = p.Block
	}
	p.Block -= blocked
	hpLoss := amount - blocked
	p.CurrentHP -= hpLoss
	if p.CurrentHP < 0 {
		p.CurrentHP = 0
	}

	ctx.addEvent("%s hits player for %d damage", sourceName, hpLoss)
	checkDefeat(ctx.combat)

	if thorns := buffStacks(p.Buffs, content.BuffThorns); thorns > 0 && ctx.actorEnemy != nil && ctx.actorEnemy.Alive() {
		e := ctx.actorEnemy
		e.CurrentHP -= thorns
		if e.CurrentHP < 0 {
			e.CurrentHP = 0
		}
		ctx.addEvent("player's thorns deal %d damage to %s", thorns, ctx.enemyName(e))
		if !e.Alive() {
			ctx.addEvent("%s is defeated", ctx.enemyName(e))
		}
		checkVictory(ctx.combat)
	}
}

func heal(hp *int, maxHP, amount int) int {
	healed := amount
	if *hp+healed > maxHP {
		healed = maxHP - *hp
	}
	if healed < 0 {
		healed = 0
	}
	*hp += healed
	return healed
}

func gainInk(p *PlayerState, amount int) int {
	gained := amount
	if p.Ink+gained > p.MaxInk {
		gained = p.MaxInk - p.Ink
	}
	if gained < 0 {
		gained = 0
	}
	p.Ink += gained
	return gained
}

// drawCards moves up to n cards from the draw pile into the hand,
// reshuffling the discard pile into the draw pile via the combat stream
// when the draw pile runs dry mid-draw. Draws as many as are available;
// an empty draw is not an error.
func drawCards(c *CombatState, rng *engine.Stream, n int) int {
	drawn := 0
	for i := 0; i < n; i++ {
		if len(c.DrawPile) == 0 {
			if len(c.DiscardPile) == 0 {
				break
			}
			c.DrawPile = c.DiscardPile
			c.DiscardPile = nil
			rng.Shuffle(len(c.DrawPile), func(a, b int) {
				c.DrawPile[a], c.DrawPile[b] = c.DrawPile[b], c.DrawPile[a]
			})
		}
		c.Hand = append(c.Hand, c.DrawPile[0])
		c.DrawPile = c.DrawPile[1:]
		drawn++
	}
	return drawn
}

func checkVictory(c *CombatState) {
	if c.Phase == PhaseVictory || c.Phase == PhaseDefeat {
		return
	}
	for i := range c.Enemies {
		if c.Enemies[i].Alive() {
			return
		}
	}
	c.Phase = PhaseVictory
}

func checkDefeat(c *CombatState) {
	if c.Phase == PhaseVictory || c.Phase == PhaseDefeat {
		return
	}
	if c.Player.CurrentHP <= 0 {
		c.Phase = PhaseDefeat
	}
}
