package content

// DefaultEnemies is the built-in bestiary. Tier gates which floors an enemy
// may appear on; bosses terminate a floor of their tier.
var DefaultEnemies = []EnemyDefinition{
	{
		ID:    "gloom_wisp",
		Name:  "Gloom Wisp",
		MaxHP: 14,
		Speed: 4,
		Tier:  1,
		Abilities: []EnemyAbility{
			{Name: "Flicker", Effects: []Effect{{Type: EffectDamage, Value: 4}}},
			{Name: "Dim", Effects: []Effect{{Type: EffectApplyDebuff, Buff: BuffWeak, Value: 1, Duration: 1}}},
		},
	},
	{
		ID:    "page_mite",
		Name:  "Page Mite",
		MaxHP: 10,
		Speed: 6,
		Tier:  1,
		Abilities: []EnemyAbility{
			{Name: "Nibble", Effects: []Effect{{Type: EffectDamage, Value: 3}}},
			{Name: "Burrow", Effects: []Effect{{Type: EffectBlock, Value: 4}}},
		},
	},
	{
		ID:    "inkbound_shade",
		Name:  "Inkbound Shade",
		MaxHP: 22,
		Speed: 3,
		Tier:  2,
		Abilities: []EnemyAbility{
			{Name: "Smother", Effects: []Effect{{Type: EffectDamage, Value: 7}}},
			{Name: "Seep", Effects: []Effect{
				{Type: EffectApplyDebuff, Buff: BuffPoison, Value: 2},
				{Type: EffectDamage, Value: 2},
			}},
		},
	},
	{
		ID:    "vellum_golem",
		Name:  "Vellum Golem",
		MaxHP: 30,
		Speed: 1,
		Tier:  2,
		Abilities: []EnemyAbility{
			{Name: "Crumple", Effects: []Effect{{Type: EffectDamage, Value: 9}}},
			{Name: "Rebind", Effects: []Effect{{Type: EffectBlock, Value: 6}}},
			{Name: "Harden", Effects: []Effect{{Type: EffectApplyBuff, Buff: BuffStrength, Value: 1}}},
		},
	},
	{
		ID:    "medusa",
		Name:  "Medusa",
		MaxHP: 32,
		Speed: 5,
		Tier:  3,
		Abilities: []EnemyAbility{
			{Name: "Stone Crush", Effects: []Effect{{Type: EffectDamage, Value: 10}}},
			{Name: "Petrifying Gaze", Effects: []Effect{{Type: EffectApplyDebuff, Buff: BuffVulnerable, Value: 1, Duration: 2}}},
		},
	},
	{
		ID:     "chapter_warden",
		Name:   "Chapter Warden",
		MaxHP:  48,
		Speed:  2,
		Tier:   1,
		IsBoss: true,
		Abilities: []EnemyAbility{
			{Name: "Heavy Tome", Effects: []Effect{{Type: EffectDamage, Value: 10}}},
			{Name: "Closing Argument", Effects: []Effect{
				{Type: EffectDamage, Value: 6},
				{Type: EffectApplyDebuff, Buff: BuffWeak, Value: 1, Duration: 2},
			}},
			{Name: "Bind", Effects: []Effect{{Type: EffectBlock, Value: 8}}},
		},
	},
	{
		ID:     "palimpsest",
		Name:   "The Palimpsest",
		MaxHP:  64,
		Speed:  3,
		Tier:   2,
		IsBoss: true,
		Abilities: []EnemyAbility{
			{Name: "Overwrite", Effects: []Effect{{Type: EffectDamage, Value: 12}}},
			{Name: "Erase", Effects: []Effect{
				{Type: EffectApplyDebuff, Buff: BuffVulnerable, Value: 1, Duration: 2},
				{Type: EffectDamage, Value: 5},
			}},
			{Name: "Layered Script", Effects: []Effect{{Type: EffectApplyBuff, Buff: BuffStrength, Value: 2}}},
		},
	},
	{
		ID:     "unwritten_king",
		Name:   "The Unwritten King",
		MaxHP:  90,
		Speed:  4,
		Tier:   3,
		IsBoss: true,
		Abilities: []EnemyAbility{
			{Name: "Blank Verse", Effects: []Effect{{Type: EffectDamage, Value: 14}}},
			{Name: "Royal Decree", Effects: []Effect{
				{Type: EffectDamage, Value: 8},
				{Type: EffectApplyDebuff, Buff: BuffPoison, Value: 3},
			}},
			{Name: "Crown of Margins", Effects: []Effect{
				{Type: EffectBlock, Value: 10},
				{Type: EffectApplyBuff, Buff: BuffStrength, Value: 2},
			}},
		},
	},
}
