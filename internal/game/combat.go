package game

import (
	"fmt"

	"github.com/inkveil/engine/internal/content"
	"github.com/inkveil/engine/internal/engine"
)

// combatSeed derives the sub-seed for the current fight's randomness from
// the run seed and the room position, so each encounter has an independent
// stream that is still fully determined by the run seed.
func combatSeed(run *RunState) string {
	return engine.DeriveSeed(run.Seed, fmt.Sprintf("combat-%d-%d", run.Floor, run.CurrentRoom))
}

// combatStream resumes the fight's stream at its persisted cursor.
func combatStream(run *RunState) *engine.Stream {
	return engine.NewStreamAt(combatSeed(run), run.Combat.RngCursor)
}

// startCombat initializes a CombatState from the run and the room's enemy
// list: the player built from run HP plus relic modifiers, the full deck
// shuffled into the draw pile, enemies instantiated with difficulty-scaled
// HP, and the opening hand drawn.
func startCombat(run *RunState, room RoomNode, cat *content.Catalog) (*ActionResult, error) {
	player := PlayerState{
		CurrentHP:        run.PlayerHP,
		MaxHP:            run.PlayerMaxHP,
		MaxEnergy:        content.BaseMaxEnergy,
		MaxInk:           content.BaseMaxInk,
		InkPerCardChance: content.BaseInkPerCardChance,
		InkPerCardValue:  content.BaseInkPerCardValue,
		DrawCount:        content.BaseDrawCount,
	}
	for _, relicID := range run.RelicIDs {
		relic, ok := cat.Relic(relicID)
		if !ok {
			continue
		}
		m := relic.Modifier
		player.MaxHP += m.MaxHPBonus
		player.CurrentHP += m.MaxHPBonus
		player.RegenPerTurn += m.RegenPerTurn
		player.FirstHitDamageReductionPercent += m.FirstHitReductionPercent
		player.DrawCount += m.DrawBonus
		player.InkPerCardChance += m.InkPerCardChanceBonus
		if m.RetainBlock {
			player.RetainBlock = true
		}
	}
	player.Energy = player.MaxEnergy

	hpScale := 100
	if diff, ok := cat.Difficulty(run.DifficultyID); ok {
		hpScale = diff.EnemyHPScalePercent
	}

	var enemies []EnemyState
	for _, enemyID := range room.EnemyIDs {
		def, ok := cat.Enemy(enemyID)
		if !ok {
			continue
		}
		maxHP := def.MaxHP * hpScale / 100
		if maxHP < 1 {
			maxHP = 1
		}
		enemies = append(enemies, EnemyState{
			InstanceID:   newInstanceID(run),
			DefinitionID: def.ID,
			CurrentHP:    maxHP,
			MaxHP:        maxHP,
		})
	}
	if len(enemies) == 0 {
		return nil, fmt.Errorf("%w: room %d has no resolvable enemies", ErrInvalidRoom, room.Index)
	}

	var allies []AllyState
	for _, allyID := range run.AllyIDs {
		if _, ok := cat.Ally(allyID); !ok {
			continue
		}
		allies = append(allies, AllyState{InstanceID: newInstanceID(run), DefinitionID: allyID})
	}

	combat := &CombatState{
		Player:     player,
		Enemies:    enemies,
		DrawPile:   append([]CardInstance(nil), run.Deck...),
		Allies:     allies,
		TurnNumber: 1,
		Phase:      PhasePlayerTurn,
	}
	run.Combat = combat

	rng := combatStream(run)
	rng.Shuffle(len(combat.DrawPile), func(a, b int) {
		combat.DrawPile[a], combat.DrawPile[b] = combat.DrawPile[b], combat.DrawPile[a]
	})

	ctx := &effectContext{run: run, combat: combat, cat: cat, rng: rng}
	drawn := drawCards(combat, rng, player.DrawCount)
	ctx.addEvent("combat begins: player draws %d cards", drawn)
	runAllyEffects(ctx)
	combat.RngCursor = rng.Cursor()

	result := &ActionResult{Events: ctx.events, Phase: combat.Phase}
	foldCombatIfOver(run, result)
	return result, nil
}

// PlayCard plays one card from the hand. useInked selects the card's inked
// variant, paid in ink in lieu of energy. targetID names a living enemy
// instance and is required only for single-enemy cards. Invalid requests
// are rejected with a reason code and the combat state is left untouched.
func PlayCard(run *RunState, cat *content.Catalog, instanceID, targetID string, useInked bool) (*ActionResult, error) {
	if err := validateRun(run); err != nil {
		return nil, err
	}
	if run.Status != RunInProgress {
		return nil, ErrRunFinished
	}
	combat := run.Combat
	if combat == nil {
		return nil, ErrNoCombat
	}
	if combat.Phase != PhasePlayerTurn {
		return nil, ErrNotPlayerTurn
	}

	handIdx := -1
	for i, inst := range combat.Hand {
		if inst.InstanceID == instanceID {
			handIdx = i
			break
		}
	}
	if handIdx == -1 {
		return nil, ErrCardNotInHand
	}

	def, ok := cat.Card(combat.Hand[handIdx].DefinitionID)
	if !ok {
		return nil, ErrUnknownCard
	}

	effects := def.Effects
	player := &combat.Player
	if useInked {
		if def.Inked == nil {
			return nil, ErrNoInkedVariant
		}
		if player.Ink < def.Inked.InkCost {
			return nil, ErrInsufficientInk
		}
		effects = def.Inked.Effects
	} else if player.Energy < def.Cost {
		return nil, ErrInsufficientEnergy
	}

	targets, err := resolveTargets(combat, def.Target, targetID)
	if err != nil {
		return nil, err
	}

	// Validation complete; from here the action is committed.
	if useInked {
		player.Ink -= def.Inked.InkCost
	} else {
		player.Energy -= def.Cost
	}

	rng := combatStream(run)
	ctx := &effectContext{run: run, combat: combat, cat: cat, rng: rng, targets: targets}
	ctx.addEvent("player plays %s", def.Name)

	inkGained := 0
	if !useInked && rng.Float() < player.InkPerCardChance {
		inkGained = gainInk(player, player.InkPerCardValue)
		if inkGained > 0 {
			ctx.addEvent("the quill yields %d ink", inkGained)
		}
	}

	for _, eff := range effects {
		applyEffect(eff, ctx)
		if combat.Phase == PhaseVictory || combat.Phase == PhaseDefeat {
			break
		}
	}

	// The played instance leaves the hand even when the fight ended
	// mid-list, so pile accounting stays consistent.
	played := combat.Hand[handIdx]
	combat.Hand = append(combat.Hand[:handIdx], combat.Hand[handIdx+1:]...)
	if ctx.exhaust {
		combat.ExhaustPile = append(combat.ExhaustPile, played)
	} else {
		combat.DiscardPile = append(combat.DiscardPile, played)
	}

	combat.RngCursor = rng.Cursor()
	result := &ActionResult{Events: ctx.events, Phase: combat.Phase, InkGained: inkGained}
	foldCombatIfOver(run, result)
	return result, nil
}

// resolveTargets maps a card's targeting mode to concrete enemy targets.
// A single-enemy card requires a live target; self/none cards ignore
// targetID entirely.
func resolveTargets(c *CombatState, mode content.TargetMode, targetID string) ([]*EnemyState, error) {
	switch mode {
	case content.TargetSingleEnemy:
		for i := range c.Enemies {
			e := &c.Enemies[i]
			if e.InstanceID == targetID && e.Alive() {
				return []*EnemyState{e}, nil
			}
		}
		return nil, ErrInvalidTarget
	case content.TargetAllEnemies:
		var targets []*EnemyState
		for i := range c.Enemies {
			if c.Enemies[i].Alive() {
				targets = append(targets, &c.Enemies[i])
			}
		}
		return targets, nil
	default:
		return nil, nil
	}
}

// EndPlayerTurn discards the hand, runs the player's end-of-turn ticks,
// resolves every living enemy's queued ability in initiative order, and
// starts the next player turn. Terminal phases are checked after every
// HP-affecting step, not only at turn boundaries.
func EndPlayerTurn(run *RunState, cat *content.Catalog) (*ActionResult, error) {
	if err := validateRun(run); err != nil {
		return nil, err
	}
	if run.Status != RunInProgress {
		return nil, ErrRunFinished
	}
	combat := run.Combat
	if combat == nil {
		return nil, ErrNoCombat
	}
	if combat.Phase != PhasePlayerTurn {
		return nil, ErrNotPlayerTurn
	}

	rng := combatStream(run)
	ctx := &effectContext{run: run, combat: combat, cat: cat, rng: rng}

	combat.DiscardPile = append(combat.DiscardPile, combat.Hand...)
	combat.Hand = nil

	tickPlayerEndOfTurn(ctx)

	if combat.Phase == PhasePlayerTurn {
		combat.Phase = PhaseEnemyTurn
		resolveEnemyTurn(ctx)
	}

	if combat.Phase == PhaseEnemyTurn {
		startPlayerTurn(ctx)
	}

	combat.RngCursor = rng.Cursor()
	result := &ActionResult{Events: ctx.events, Phase: combat.Phase}
	foldCombatIfOver(run, result)
	return result, nil
}

// tickPlayerEndOfTurn applies the player's regen and poison, then the
// duration decrement and pruning pass.
func tickPlayerEndOfTurn(ctx *effectContext) {
	p := &ctx.combat.Player
	if regen := buffStacks(p.Buffs, content.BuffRegen); regen > 0 {
		healed := heal(&p.CurrentHP, p.MaxHP, regen)
		if healed > 0 {
			ctx.addEvent("player regenerates %d HP", healed)
		}
	}
	if poison := buffStacks(p.Buffs, content.BuffPoison); poison > 0 {
		p.CurrentHP -= poison
		if p.CurrentHP < 0 {
			p.CurrentHP = 0
		}
		ctx.addEvent("player suffers %d poison damage", poison)
		p.Buffs = decayPoison(p.Buffs)
		checkDefeat(ctx.combat)
	}
	p.Buffs = tickBuffs(p.Buffs)
}

// resolveEnemyTurn resolves each living enemy in initiative order (speed
// descending, stable by position) and advances its intent so the next
// turn's forecast is knowable before it executes.
func resolveEnemyTurn(ctx *effectContext) {
	combat := ctx.combat
	order := initiativeOrder(combat, ctx.cat)

	for _, idx := range order {
		if combat.Phase != PhaseEnemyTurn {
			return
		}
		e := &combat.Enemies[idx]
		if !e.Alive() {
			continue
		}

		ability, ok := queuedAbility(ctx.cat, e)
		if ok {
			ctx.actorEnemy = e
			ctx.pendingBonus = intentBonus(e.DefinitionID, ability.Name, combat.Player.Buffs)
			ctx.addEvent("%s uses %s", ctx.enemyName(e), ability.Name)
			for _, eff := range ability.Effects {
				applyEffect(eff, ctx)
				if combat.Phase != PhaseEnemyTurn {
					break
				}
			}
			ctx.actorEnemy = nil
			ctx.pendingBonus = 0
		}
		e.IntentIndex++

		// Enemy end-of-turn tick: regen, its own poison, then the
		// duration pass.
		if regen := buffStacks(e.Buffs, content.BuffRegen); regen > 0 && e.Alive() {
			healed := heal(&e.CurrentHP, e.MaxHP, regen)
			if healed > 0 {
				ctx.addEvent("%s regenerates %d HP", ctx.enemyName(e), healed)
			}
		}
		if poison := buffStacks(e.Buffs, content.BuffPoison); poison > 0 && e.Alive() {
			e.CurrentHP -= poison
			if e.CurrentHP < 0 {
				e.CurrentHP = 0
			}
			ctx.addEvent("%s suffers %d poison damage", ctx.enemyName(e), poison)
			e.Buffs = decayPoison(e.Buffs)
			checkVictory(combat)
		}
		e.Buffs = tickBuffs(e.Buffs)
	}
}

// initiativeOrder returns enemy indices sorted by speed descending; ties
// keep room order. Insertion sort keeps the ordering stable without
// pulling in a comparator helper.
func initiativeOrder(c *CombatState, cat *content.Catalog) []int {
	speed := func(i int) int {
		if def, ok := cat.Enemy(c.Enemies[i].DefinitionID); ok {
			return def.Speed
		}
		return 0
	}

	order := make([]int, len(c.Enemies))
	for i := range order {
		order[i] = i
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && speed(order[j]) > speed(order[j-1]); j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	return order
}

// startPlayerTurn begins the next player turn: turn counter, block clear
// (unless a relic retains it), energy refill, draw, regen, ally effects,
// and the single-turn modifier reset.
func startPlayerTurn(ctx *effectContext) {
	combat := ctx.combat
	p := &combat.Player

	combat.Phase = PhasePlayerTurn
	combat.TurnNumber++
	if !p.RetainBlock {
		p.Block = 0
	}
	p.Energy = p.MaxEnergy
	p.FirstHitReductionUsed = false

	drawn := drawCards(combat, ctx.rng, p.DrawCount)
	ctx.addEvent("turn %d: player draws %d cards", combat.TurnNumber, drawn)

	if p.RegenPerTurn > 0 {
		healed := heal(&p.CurrentHP, p.MaxHP, p.RegenPerTurn)
		if healed > 0 {
			ctx.addEvent("player regenerates %d HP", healed)
		}
	}

	runAllyEffects(ctx)
}

// runAllyEffects fires each ally's turn effects on the player's side.
// Damage-dealing allies strike a random living enemy via the combat
// stream. Unknown ally definitions are skipped.
func runAllyEffects(ctx *effectContext) {
	combat := ctx.combat
	for _, ally := range combat.Allies {
		def, ok := ctx.cat.Ally(ally.DefinitionID)
		if !ok {
			continue
		}
		for _, eff := range def.TurnEffects {
			if combat.Phase != PhasePlayerTurn {
				return
			}
			if eff.Type == content.EffectDamage {
				target := randomLivingEnemy(combat, ctx.rng)
				if target == nil {
					continue
				}
				ctx.targets = []*EnemyState{target}
			} else {
				ctx.targets = nil
			}
			applyEffect(eff, ctx)
		}
	}
	ctx.targets = nil
}

func randomLivingEnemy(c *CombatState, rng *engine.Stream) *EnemyState {
	var living []*EnemyState
	for i := range c.Enemies {
		if c.Enemies[i].Alive() {
			living = append(living, &c.Enemies[i])
		}
	}
	if len(living) == 0 {
		return nil
	}
	return living[rng.IntN(len(living))]
}

// foldCombatIfOver folds a terminal combat back into the run: player HP is
// written back, the room is completed, victory pays out, and the combat
// value is destroyed. Defeat ends the whole run.
func foldCombatIfOver(run *RunState, result *ActionResult) {
	combat := run.Combat
	if combat == nil || (combat.Phase != PhaseVictory && combat.Phase != PhaseDefeat) {
		return
	}

	// Relic max-HP bonuses exist only inside the fight; the write-back
	// clamps so run HP never exceeds the run's own maximum.
	run.PlayerHP = combat.Player.CurrentHP
	if run.PlayerHP > run.PlayerMaxHP {
		run.PlayerHP = run.PlayerMaxHP
	}

	if combat.Phase == PhaseDefeat {
		run.Status = RunDefeat
		run.Combat = nil
		result.Events = append(result.Events, "the run ends in defeat")
		return
	}

	rooms := run.CurrentFloorRooms()
	if run.CurrentRoom < len(rooms) {
		rooms[run.CurrentRoom].Completed = true
	}

	rng := engine.NewStream(engine.DeriveSeed(run.Seed, fmt.Sprintf("reward-%d-%d", run.Floor, run.CurrentRoom)))
	gold := 10 + 3*run.Floor + rng.IntN(8)
	run.Gold += gold
	drops := 3 + 2*run.Floor
	run.Resources["ink_drops"] += drops
	result.Events = append(result.Events,
		fmt.Sprintf("victory: player gains %d gold and %d ink drops", gold, drops))

	run.Combat = nil
	advanceFloorIfCleared(run, result)
}

// advanceFloorIfCleared moves the run to the next floor once every room on
// the current floor is completed, and ends the run in victory after the
// final floor's boss.
func advanceFloorIfCleared(run *RunState, result *ActionResult) {
	for _, room := range run.CurrentFloorRooms() {
		if !room.Completed {
			return
		}
	}

	if run.Floor >= len(run.Map) {
		run.Status = RunVictory
		result.Events = append(result.Events, "the final chapter closes: victory")
		return
	}

	run.Floor++
	run.CurrentRoom = 0
	run.Resources["story_embers"] += 5
	result.Events = append(result.Events, fmt.Sprintf("floor %d begins", run.Floor))
}

// Abandon marks the run abandoned and destroys any active combat.
func Abandon(run *RunState) error {
	if run.Status != RunInProgress {
		return ErrRunFinished
	}
	if run.Combat != nil {
		run.PlayerHP = run.Combat.Player.CurrentHP
		if run.PlayerHP > run.PlayerMaxHP {
			run.PlayerHP = run.PlayerMaxHP
		}
		run.Combat = nil
	}
	run.Status = RunAbandoned
	return nil
}

// validateRun fails fast on structural invariant violations in
// caller-supplied state rather than repairing them or letting them reach
// a terminal-phase decision.
func validateRun(run *RunState) error {
	if run == nil {
		return fmt.Errorf("%w: nil run", ErrInvalidState)
	}
	if run.PlayerHP < 0 || run.PlayerMaxHP <= 0 || run.PlayerHP > run.PlayerMaxHP {
		return fmt.Errorf("%w: player HP %d/%d", ErrInvalidState, run.PlayerHP, run.PlayerMaxHP)
	}

	combat := run.Combat
	if combat == nil {
		return nil
	}
	if combat.Player.CurrentHP < 0 || combat.Player.MaxHP <= 0 {
		return fmt.Errorf("%w: combat player HP %d/%d", ErrInvalidState, combat.Player.CurrentHP, combat.Player.MaxHP)
	}

	seen := make(map[string]bool)
	for _, pile := range [][]CardInstance{combat.DrawPile, combat.Hand, combat.DiscardPile, combat.ExhaustPile} {
		for _, inst := range pile {
			if seen[inst.InstanceID] {
				return fmt.Errorf("%w: duplicate card instance %s", ErrInvalidState, inst.InstanceID)
			}
			seen[inst.InstanceID] = true
		}
	}
	for _, b := range combat.Player.Buffs {
		if b.Stacks < 0 {
			return fmt.Errorf("%w: negative buff stacks for %s", ErrInvalidState, b.Type)
		}
	}
	return nil
}
