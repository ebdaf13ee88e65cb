package content

// Baseline player values for a new run. Difficulties and relics adjust
// from here; the run generator reads them so no number is buried in the
// engine itself.
const (
	BaseMaxHP            = 70
	BaseMaxEnergy        = 3
	BaseDrawCount        = 5
	BaseMaxInk           = 10
	BaseInkPerCardChance = 0.25
	BaseInkPerCardValue  = 1
)

// DefaultAllies is the built-in companion roster.
var DefaultAllies = []AllyDefinition{
	{
		ID:          "margin_cat",
		Name:        "Margin Cat",
		Description: "Gains you 3 block at the start of each turn.",
		TurnEffects: []Effect{{Type: EffectBlock, Value: 3}},
	},
	{
		ID:          "glossist",
		Name:        "The Glossist",
		Description: "Deals 2 damage to a random enemy at the start of each turn.",
		TurnEffects: []Effect{{Type: EffectDamage, Value: 2}},
	},
	{
		ID:          "candle_imp",
		Name:        "Candle Imp",
		Description: "Grants 1 ink at the start of each turn.",
		TurnEffects: []Effect{{Type: EffectGainInk, Value: 1}},
	},
}

// DefaultRelics is the built-in relic table.
var DefaultRelics = []RelicDefinition{
	{
		ID:          "wax_sigil",
		Name:        "Wax Sigil",
		Description: "The first hit you take each turn deals 50% less damage.",
		Modifier:    RelicModifier{FirstHitReductionPercent: 50},
	},
	{
		ID:          "gilded_bookmark",
		Name:        "Gilded Bookmark",
		Description: "Draw an extra card each turn.",
		Modifier:    RelicModifier{DrawBonus: 1},
	},
	{
		ID:          "living_binding",
		Name:        "Living Binding",
		Description: "Regenerate 2 HP at the start of each turn.",
		Modifier:    RelicModifier{RegenPerTurn: 2},
	},
	{
		ID:          "inkstone",
		Name:        "Inkstone",
		Description: "Block is not cleared at the start of your turn.",
		Modifier:    RelicModifier{RetainBlock: true},
	},
	{
		ID:          "bottomless_well",
		Name:        "Bottomless Well",
		Description: "Cards are 15% more likely to yield ink.",
		Modifier:    RelicModifier{InkPerCardChanceBonus: 0.15},
	},
}

// DefaultDifficulties scales runs; "standard" is assumed when unspecified.
var DefaultDifficulties = []RunDifficulty{
	{ID: "standard", Name: "Standard", Floors: 3, EnemyHPScalePercent: 100, StartingGold: 40},
	{ID: "harrowing", Name: "Harrowing", Floors: 3, EnemyHPScalePercent: 125, StartingGold: 25},
	{ID: "prologue", Name: "Prologue", Floors: 2, EnemyHPScalePercent: 85, StartingGold: 50},
}

// DefaultConditions are optional run mutators.
var DefaultConditions = []RunCondition{
	{
		ID:          "torn_cover",
		Name:        "Torn Cover",
		Description: "Begin the run with a Torn Binding curse in your deck.",
		AddCardID:   "torn_binding",
	},
	{
		ID:           "faded_script",
		Name:         "Faded Script",
		Description:  "Begin the run with 10 less max HP.",
		MaxHPPenalty: 10,
	},
}

// Default returns the catalog of built-in content. It is rebuilt on each
// call; callers treat the result as immutable for the process lifetime.
func Default() *Catalog {
	return NewCatalog(
		DefaultCards,
		DefaultEnemies,
		DefaultAllies,
		DefaultRelics,
		DefaultDifficulties,
		DefaultConditions,
	)
}
