package content

// DefaultCards is the built-in card set. Hosts may replace it wholesale by
// constructing their own catalog; ids are referenced by starter decks,
// merchant offers, and unlock conditions below.
var DefaultCards = []CardDefinition{
	{
		ID:          "quill_slash",
		Name:        "Quill Slash",
		Type:        CardAttack,
		Cost:        1,
		Target:      TargetSingleEnemy,
		Rarity:      RarityStarter,
		Description: "Deal 6 damage.",
		Effects:     []Effect{{Type: EffectDamage, Value: 6}},
		Inked: &InkedVariant{
			Description: "Deal 10 damage.",
			Effects:     []Effect{{Type: EffectDamage, Value: 10}},
			InkCost:     2,
		},
		Starter:     true,
		Collectible: true,
	},
	{
		ID:          "blot_guard",
		Name:        "Blot Guard",
		Type:        CardSkill,
		Cost:        1,
		Target:      TargetSelf,
		Rarity:      RarityStarter,
		Description: "Gain 5 block.",
		Effects:     []Effect{{Type: EffectBlock, Value: 5}},
		Starter:     true,
		Collectible: true,
	},
	{
		ID:          "ink_splash",
		Name:        "Ink Splash",
		Type:        CardAttack,
		Cost:        1,
		Target:      TargetAllEnemies,
		Rarity:      RarityCommon,
		Description: "Deal 4 damage to all enemies.",
		Effects:     []Effect{{Type: EffectDamage, Value: 4}},
		Collectible: true,
	},
	{
		ID:          "smudge",
		Name:        "Smudge",
		Type:        CardSkill,
		Cost:        1,
		Target:      TargetSingleEnemy,
		Rarity:      RarityCommon,
		Description: "Apply 2 Weak.",
		Effects:     []Effect{{Type: EffectApplyDebuff, Buff: BuffWeak, Value: 2, Duration: 2}},
		Collectible: true,
	},
	{
		ID:          "venom_nib",
		Name:        "Venom Nib",
		Type:        CardAttack,
		Cost:        1,
		Target:      TargetSingleEnemy,
		Rarity:      RarityCommon,
		Description: "Deal 3 damage. Apply 3 Poison.",
		Effects: []Effect{
			{Type: EffectDamage, Value: 3},
			{Type: EffectApplyDebuff, Buff: BuffPoison, Value: 3},
		},
		Unlock:      &UnlockCondition{Type: ConditionResource, Resource: "ink_drops", Threshold: 50},
		Collectible: true,
	},
	{
		ID:          "second_draft",
		Name:        "Second Draft",
		Type:        CardSkill,
		Cost:        1,
		Target:      TargetNone,
		Rarity:      RarityCommon,
		Description: "Draw 2 cards.",
		Effects:     []Effect{{Type: EffectDrawCards, Value: 2}},
		Collectible: true,
	},
	{
		ID:          "bold_stroke",
		Name:        "Bold Stroke",
		Type:        CardAttack,
		Cost:        2,
		Target:      TargetSingleEnemy,
		Rarity:      RarityUncommon,
		Description: "Deal 12 damage. Exhaust.",
		Effects: []Effect{
			{Type: EffectDamage, Value: 12},
			{Type: EffectExhaust},
		},
		Inked: &InkedVariant{
			Description: "Deal 12 damage to all enemies. Exhaust.",
			Effects: []Effect{
				{Type: EffectDamage, Value: 12},
				{Type: EffectExhaust},
			},
			InkCost: 4,
		},
		Unlock:      &UnlockCondition{Type: ConditionResource, Resource: "story_embers", Threshold: 20},
		Collectible: true,
	},
	{
		ID:          "iron_gall",
		Name:        "Iron Gall",
		Type:        CardPower,
		Cost:        1,
		Target:      TargetSelf,
		Rarity:      RarityUncommon,
		Description: "Gain 2 Strength.",
		Effects:     []Effect{{Type: EffectApplyBuff, Buff: BuffStrength, Value: 2}},
		Collectible: true,
	},
	{
		ID:          "restorative_wash",
		Name:        "Restorative Wash",
		Type:        CardSkill,
		Cost:        1,
		Target:      TargetSelf,
		Rarity:      RarityUncommon,
		Description: "Heal 6 HP. Exhaust.",
		Effects: []Effect{
			{Type: EffectHeal, Value: 6},
			{Type: EffectExhaust},
		},
		Unlock:      &UnlockCondition{Type: ConditionStory, StoryID: "story_three"},
		Collectible: true,
	},
	{
		ID:          "sealed_page",
		Name:        "Sealed Page",
		Type:        CardSkill,
		Cost:        0,
		Target:      TargetNone,
		Rarity:      RarityRare,
		Description: "Gain 2 energy and 2 ink. Exhaust.",
		Effects: []Effect{
			{Type: EffectGainEnergy, Value: 2},
			{Type: EffectGainInk, Value: 2},
			{Type: EffectExhaust},
		},
		Unlock:      &UnlockCondition{Type: ConditionStory, StoryID: "story_seven"},
		Collectible: true,
	},
	{
		ID:          "marginalia",
		Name:        "Marginalia",
		Type:        CardSkill,
		Cost:        0,
		Target:      TargetNone,
		Rarity:      RarityRare,
		Description: "Apply 1 Vulnerable to all enemies. Add a Smudge to your discard pile.",
		Effects: []Effect{
			{Type: EffectApplyDebuff, Buff: BuffVulnerable, Value: 1, Duration: 2},
			{Type: EffectAddCardToDiscard, CardID: "smudge"},
		},
		Unlock:      &UnlockCondition{Type: ConditionResource, Resource: "veil_shards", Threshold: 5},
		Collectible: true,
	},
	{
		ID:          "ink_blot",
		Name:        "Ink Blot",
		Type:        CardStatus,
		Cost:        1,
		Target:      TargetNone,
		Rarity:      RarityCommon,
		Description: "Does nothing.",
		Effects:     nil,
	},
	{
		ID:          "torn_binding",
		Name:        "Torn Binding",
		Type:        CardCurse,
		Cost:        1,
		Target:      TargetNone,
		Rarity:      RarityCommon,
		Description: "Unplayable weight. Does nothing when played.",
		Effects:     nil,
	},
}

// DefaultStarterDeck is the deck composition a new run receives when the
// caller does not supply one.
var DefaultStarterDeck = []string{
	"quill_slash", "quill_slash", "quill_slash", "quill_slash", "quill_slash",
	"blot_guard", "blot_guard", "blot_guard", "blot_guard",
	"second_draft",
}
