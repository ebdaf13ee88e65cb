package content

// CardType classifies how a card behaves when played.
type CardType string

const (
	CardAttack CardType = "ATTACK"
	CardSkill  CardType = "SKILL"
	CardPower  CardType = "POWER"
	CardStatus CardType = "STATUS"
	CardCurse  CardType = "CURSE"
)

// TargetMode declares what a card may legally target.
type TargetMode string

const (
	TargetSingleEnemy TargetMode = "SINGLE_ENEMY"
	TargetAllEnemies  TargetMode = "ALL_ENEMIES"
	TargetSelf        TargetMode = "SELF"
	TargetNone        TargetMode = "NONE"
)

// Rarity buckets drive merchant and reward weighting.
type Rarity string

const (
	RarityStarter  Rarity = "STARTER"
	RarityCommon   Rarity = "COMMON"
	RarityUncommon Rarity = "UNCOMMON"
	RarityRare     Rarity = "RARE"
)

// EffectType discriminates the Effect sum type. The combat interpreter
// dispatches on it exhaustively; adding a value here requires a matching
// interpreter case.
type EffectType string

const (
	EffectDamage           EffectType = "DAMAGE"
	EffectBlock            EffectType = "BLOCK"
	EffectHeal             EffectType = "HEAL"
	EffectDrawCards        EffectType = "DRAW_CARDS"
	EffectGainEnergy       EffectType = "GAIN_ENERGY"
	EffectGainInk          EffectType = "GAIN_INK"
	EffectGainGold         EffectType = "GAIN_GOLD"
	EffectApplyBuff        EffectType = "APPLY_BUFF"
	EffectApplyDebuff      EffectType = "APPLY_DEBUFF"
	EffectExhaust          EffectType = "EXHAUST"
	EffectAddCardToDiscard EffectType = "ADD_CARD_TO_DISCARD"
)

// BuffType identifies a buff or debuff. Stack-based types accumulate
// additively; duration-based types expire on the end-of-turn tick.
type BuffType string

const (
	BuffStrength   BuffType = "STRENGTH"
	BuffRegen      BuffType = "REGEN"
	BuffThorns     BuffType = "THORNS"
	BuffWeak       BuffType = "WEAK"
	BuffVulnerable BuffType = "VULNERABLE"
	BuffPoison     BuffType = "POISON"
)

// Effect is a declarative instruction carried by cards and enemy abilities.
// Which fields matter depends on Type: Value is the magnitude, Buff and
// Duration apply to APPLY_BUFF/APPLY_DEBUFF, CardID to pile manipulation.
type Effect struct {
	Type     EffectType `json:"type"`
	Value    int        `json:"value,omitempty"`
	Buff     BuffType   `json:"buff,omitempty"`
	Duration int        `json:"duration,omitempty"`
	CardID   string     `json:"cardId,omitempty"`
}

// InkedVariant is a card's alternate form, played with ink instead of energy.
type InkedVariant struct {
	Description string   `json:"description"`
	Effects     []Effect `json:"effects"`
	InkCost     int      `json:"inkCost"`
}

// ConditionType discriminates unlock conditions.
type ConditionType string

const (
	ConditionResource ConditionType = "RESOURCE"
	ConditionStory    ConditionType = "STORY"
)

// UnlockCondition gates a collectible card behind accumulated progression.
type UnlockCondition struct {
	Type      ConditionType `json:"type"`
	Resource  string        `json:"resource,omitempty"`
	Threshold int           `json:"threshold,omitempty"`
	StoryID   string        `json:"storyId,omitempty"`
}

// CardDefinition is an immutable catalog entry. Never mutated after load;
// per-copy identity lives on CardInstance in the game package.
type CardDefinition struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Type        CardType         `json:"type"`
	Cost        int              `json:"cost"`
	Target      TargetMode       `json:"target"`
	Rarity      Rarity           `json:"rarity"`
	Description string           `json:"description"`
	Effects     []Effect         `json:"effects"`
	Inked       *InkedVariant    `json:"inkedVariant,omitempty"`
	Unlock      *UnlockCondition `json:"unlock,omitempty"`
	Starter     bool             `json:"starter,omitempty"`
	Collectible bool             `json:"collectible,omitempty"`
}

// EnemyAbility is one entry in an enemy's rotating attack pattern.
type EnemyAbility struct {
	Name    string   `json:"name"`
	Effects []Effect `json:"effects"`
}

// EnemyDefinition is an immutable catalog entry for an enemy archetype.
type EnemyDefinition struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	MaxHP     int            `json:"maxHp"`
	Speed     int            `json:"speed"`
	Abilities []EnemyAbility `json:"abilities"`
	IsBoss    bool           `json:"isBoss,omitempty"`
	Tier      int            `json:"tier"`
}

// AllyDefinition describes a companion whose TurnEffects fire at the start
// of each player turn it accompanies.
type AllyDefinition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TurnEffects []Effect `json:"turnEffects"`
}

// RelicModifier captures the passive adjustments a relic grants for the
// whole run. Zero values mean no adjustment.
type RelicModifier struct {
	MaxHPBonus               int     `json:"maxHpBonus,omitempty"`
	RegenPerTurn             int     `json:"regenPerTurn,omitempty"`
	FirstHitReductionPercent int     `json:"firstHitReductionPercent,omitempty"`
	DrawBonus                int     `json:"drawBonus,omitempty"`
	InkPerCardChanceBonus    float64 `json:"inkPerCardChanceBonus,omitempty"`
	RetainBlock              bool    `json:"retainBlock,omitempty"`
}

// RelicDefinition is an immutable catalog entry for a relic.
type RelicDefinition struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Modifier    RelicModifier `json:"modifier"`
}

// RunDifficulty scales a whole run.
type RunDifficulty struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Floors             int    `json:"floors"`
	EnemyHPScalePercent int   `json:"enemyHpScalePercent"`
	StartingGold       int    `json:"startingGold"`
}

// RunCondition is an optional run mutator chosen before the run starts.
type RunCondition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// AddCardID is shuffled into the starting deck when set.
	AddCardID string `json:"addCardId,omitempty"`
	// MaxHPPenalty is subtracted from starting max HP.
	MaxHPPenalty int `json:"maxHpPenalty,omitempty"`
}
