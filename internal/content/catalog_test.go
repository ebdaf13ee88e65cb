package content

import "testing"

func TestMissingLookupsReturnFalse(t *testing.T) {
	cat := Default()

	if _, ok := cat.Card("no-such-card"); ok {
		t.Error("Card() found a card that does not exist")
	}
	if _, ok := cat.Enemy("no-such-enemy"); ok {
		t.Error("Enemy() found an enemy that does not exist")
	}
	if _, ok := cat.Difficulty(""); ok {
		t.Error("Difficulty() found an empty id")
	}
}

func TestDefaultCatalogIntegrity(t *testing.T) {
	cat := Default()

	t.Run("card references", func(t *testing.T) {
		for _, id := range cat.CardIDs() {
			card, _ := cat.Card(id)
			if card.ID != id {
				t.Errorf("card %q registered under wrong key %q", card.ID, id)
			}
			// Status and curse cards are dead weight on purpose.
			if len(card.Effects) == 0 && card.Type != CardStatus && card.Type != CardCurse {
				t.Errorf("card %q has no effects", id)
			}
			if card.Inked != nil && len(card.Inked.Effects) == 0 {
				t.Errorf("card %q inked variant has no effects", id)
			}
		}
	})

	t.Run("enemy abilities", func(t *testing.T) {
		for _, id := range cat.EnemyIDs() {
			enemy, _ := cat.Enemy(id)
			if enemy.MaxHP <= 0 {
				t.Errorf("enemy %q has MaxHP %d", id, enemy.MaxHP)
			}
			if len(enemy.Abilities) == 0 {
				t.Errorf("enemy %q has no abilities", id)
			}
		}
	})

	t.Run("condition card references", func(t *testing.T) {
		cond, ok := cat.Condition("faded_script")
		if !ok {
			t.Fatal("condition faded_script missing")
		}
		if cond.AddCardID != "" {
			if _, ok := cat.Card(cond.AddCardID); !ok {
				t.Errorf("condition adds unknown card %q", cond.AddCardID)
			}
		}
		if _, ok := cat.Difficulty("harrowing"); !ok {
			t.Error("difficulty harrowing missing")
		}
	})

	t.Run("bosses per tier", func(t *testing.T) {
		for tier := 1; tier <= 3; tier++ {
			if len(cat.BossesByTier(tier)) == 0 {
				t.Errorf("no boss registered for tier %d", tier)
			}
			if len(cat.EnemiesByMaxTier(tier)) == 0 {
				t.Errorf("no regular enemies at or below tier %d", tier)
			}
		}
	})
}

func TestIDSlicesAreCopies(t *testing.T) {
	cat := Default()

	accessors := map[string]func() []string{
		"CardIDs":            cat.CardIDs,
		"EnemyIDs":           cat.EnemyIDs,
		"AllyIDs":            cat.AllyIDs,
		"RelicIDs":           cat.RelicIDs,
		"CollectibleCardIDs": cat.CollectibleCardIDs,
	}
	for name, fn := range accessors {
		ids := fn()
		if len(ids) == 0 {
			t.Fatalf("%s() returned no ids", name)
		}
		ids[0] = "mutated"
		if again := fn(); again[0] == "mutated" {
			t.Errorf("%s() shares its backing array between calls", name)
		}
	}
}
