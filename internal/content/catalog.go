package content

import "sort"

// Catalog bundles every definition table behind total lookup functions.
// Lookups return (zero, false) for unknown ids rather than failing; callers
// treat misses as local no-ops. The id slices are sorted once at build time
// so iteration order is stable regardless of map layout.
type Catalog struct {
	cards        map[string]CardDefinition
	enemies      map[string]EnemyDefinition
	allies       map[string]AllyDefinition
	relics       map[string]RelicDefinition
	difficulties map[string]RunDifficulty
	conditions   map[string]RunCondition

	cardIDs  []string
	enemyIDs []string
	allyIDs  []string
	relicIDs []string
}

// NewCatalog builds an indexed catalog from flat definition arrays. Later
// duplicates of an id silently replace earlier ones.
func NewCatalog(
	cards []CardDefinition,
	enemies []EnemyDefinition,
	allies []AllyDefinition,
	relics []RelicDefinition,
	difficulties []RunDifficulty,
	conditions []RunCondition,
) *Catalog {
	c := &Catalog{
		cards:        make(map[string]CardDefinition, len(cards)),
		enemies:      make(map[string]EnemyDefinition, len(enemies)),
		allies:       make(map[string]AllyDefinition, len(allies)),
		relics:       make(map[string]RelicDefinition, len(relics)),
		difficulties: make(map[string]RunDifficulty, len(difficulties)),
		conditions:   make(map[string]RunCondition, len(conditions)),
	}

	for _, d := range cards {
		c.cards[d.ID] = d
	}
	for _, d := range enemies {
		if d.Tier <= 0 {
			d.Tier = 1
		}
		c.enemies[d.ID] = d
	}
	for _, d := range allies {
		c.allies[d.ID] = d
	}
	for _, d := range relics {
		c.relics[d.ID] = d
	}
	for _, d := range difficulties {
		c.difficulties[d.ID] = d
	}
	for _, d := range conditions {
		c.conditions[d.ID] = d
	}

	c.cardIDs = sortedKeys(c.cards)
	c.enemyIDs = sortedKeys(c.enemies)
	c.allyIDs = sortedKeys(c.allies)
	c.relicIDs = sortedKeys(c.relics)

	return c
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Card looks up a card definition by id.
func (c *Catalog) Card(id string) (CardDefinition, bool) {
	d, ok := c.cards[id]
	return d, ok
}

// Enemy looks up an enemy definition by id.
func (c *Catalog) Enemy(id string) (EnemyDefinition, bool) {
	d, ok := c.enemies[id]
	return d, ok
}

// Ally looks up an ally definition by id.
func (c *Catalog) Ally(id string) (AllyDefinition, bool) {
	d, ok := c.allies[id]
	return d, ok
}

// Relic looks up a relic definition by id.
func (c *Catalog) Relic(id string) (RelicDefinition, bool) {
	d, ok := c.relics[id]
	return d, ok
}

// Difficulty looks up a run difficulty by id.
func (c *Catalog) Difficulty(id string) (RunDifficulty, bool) {
	d, ok := c.difficulties[id]
	return d, ok
}

// Condition looks up a run condition by id.
func (c *Catalog) Condition(id string) (RunCondition, bool) {
	d, ok := c.conditions[id]
	return d, ok
}

// CardIDs returns every card id in sorted order. All id accessors hand out
// copies so callers cannot corrupt the catalog's indexes.
func (c *Catalog) CardIDs() []string { return copyIDs(c.cardIDs) }

// EnemyIDs returns every enemy id in sorted order.
func (c *Catalog) EnemyIDs() []string { return copyIDs(c.enemyIDs) }

// AllyIDs returns every ally id in sorted order.
func (c *Catalog) AllyIDs() []string { return copyIDs(c.allyIDs) }

// RelicIDs returns every relic id in sorted order.
func (c *Catalog) RelicIDs() []string { return copyIDs(c.relicIDs) }

func copyIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// EnemiesByMaxTier returns the sorted ids of non-boss enemies whose tier is
// at most maxTier. Used by the run generator to scale encounters by depth.
func (c *Catalog) EnemiesByMaxTier(maxTier int) []string {
	var ids []string
	for _, id := range c.enemyIDs {
		d := c.enemies[id]
		if !d.IsBoss && d.Tier <= maxTier {
			ids = append(ids, id)
		}
	}
	return ids
}

// BossesByTier returns the sorted ids of boss enemies of exactly the given
// tier.
func (c *Catalog) BossesByTier(tier int) []string {
	var ids []string
	for _, id := range c.enemyIDs {
		d := c.enemies[id]
		if d.IsBoss && d.Tier == tier {
			ids = append(ids, id)
		}
	}
	return ids
}

// CollectibleCardIDs returns the sorted ids of non-starter collectible
// cards, the pool evaluated by the unlock tracker and offered by merchants.
func (c *Catalog) CollectibleCardIDs() []string {
	var ids []string
	for _, id := range c.cardIDs {
		d := c.cards[id]
		if d.Collectible && !d.Starter {
			ids = append(ids, id)
		}
	}
	return ids
}
