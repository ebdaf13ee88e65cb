package game

import (
	"fmt"

	"github.com/inkveil/engine/internal/content"
	"github.com/inkveil/engine/internal/engine"
)

// OfferType classifies a start-merchant offer.
type OfferType string

const (
	OfferCard       OfferType = "CARD"
	OfferRelic      OfferType = "RELIC"
	OfferUsableItem OfferType = "USABLE_ITEM"
	OfferAlly       OfferType = "ALLY"
	OfferBonusGold  OfferType = "BONUS_GOLD"
	OfferBonusMaxHP OfferType = "BONUS_MAX_HP"
)

// StartMerchantOffer is one purchasable entry in the pre-run merchant,
// priced in convertible meta-resources. Offers never change once generated
// for a seed; only the remaining-resources view moves as purchases
// accumulate.
type StartMerchantOffer struct {
	ID          string         `json:"id"`
	Type        OfferType      `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	// RefID points at the catalog entry granted by CARD/RELIC/ALLY offers.
	RefID string         `json:"refId,omitempty"`
	Value int            `json:"value,omitempty"`
	Cost  map[string]int `json:"cost"`
}

// usableItems is the fixed consumable table for USABLE_ITEM offers.
var usableItems = []struct {
	id, name, description string
}{
	{"oil_of_erasure", "Oil of Erasure", "Remove a card from your deck before the run."},
	{"bottled_candlelight", "Bottled Candlelight", "Reveal the next floor's room types."},
	{"binders_glue", "Binder's Glue", "Restore 15 HP once, at any time."},
}

// cardOfferCost prices a collectible card by rarity.
func cardOfferCost(r content.Rarity) map[string]int {
	switch r {
	case content.RarityRare:
		return map[string]int{"ink_drops": 60, "veil_shards": 2}
	case content.RarityUncommon:
		return map[string]int{"ink_drops": 35, "story_embers": 5}
	default:
		return map[string]int{"ink_drops": 20}
	}
}

// GenerateStartMerchantOffers produces the fixed-size, deterministic-for-
// seed offer list: three collectible cards, one relic, one usable item,
// one ally, and the flat gold and max-HP bonuses. The generator only
// reads state; purchase bookkeeping lives on the run.
func GenerateStartMerchantOffers(run *RunState, cat *content.Catalog) []StartMerchantOffer {
	rng := engine.NewStream(engine.DeriveSeed(run.Seed, "start-merchant"))

	var offers []StartMerchantOffer
	addOffer := func(o StartMerchantOffer) {
		o.ID = fmt.Sprintf("offer_%d_%s", len(offers), o.RefID)
		if o.RefID == "" {
			o.ID = fmt.Sprintf("offer_%d_%s", len(offers), string(o.Type))
		}
		offers = append(offers, o)
	}

	// Three distinct collectible cards.
	pool := cat.CollectibleCardIDs()
	for i := 0; i < 3 && len(pool) > 0; i++ {
		idx := rng.IntN(len(pool))
		cardID := pool[idx]
		pool = append(pool[:idx], pool[idx+1:]...)

		card, ok := cat.Card(cardID)
		if !ok {
			continue
		}
		addOffer(StartMerchantOffer{
			Type:        OfferCard,
			Name:        card.Name,
			Description: card.Description,
			RefID:       card.ID,
			Cost:        cardOfferCost(card.Rarity),
		})
	}

	if relicIDs := cat.RelicIDs(); len(relicIDs) > 0 {
		relic, _ := cat.Relic(relicIDs[rng.IntN(len(relicIDs))])
		addOffer(StartMerchantOffer{
			Type:        OfferRelic,
			Name:        relic.Name,
			Description: relic.Description,
			RefID:       relic.ID,
			Cost:        map[string]int{"ink_drops": 45, "story_embers": 8},
		})
	}

	item := usableItems[rng.IntN(len(usableItems))]
	addOffer(StartMerchantOffer{
		Type:        OfferUsableItem,
		Name:        item.name,
		Description: item.description,
		RefID:       item.id,
		Cost:        map[string]int{"ink_drops": 25},
	})

	if allyIDs := cat.AllyIDs(); len(allyIDs) > 0 {
		ally, _ := cat.Ally(allyIDs[rng.IntN(len(allyIDs))])
		addOffer(StartMerchantOffer{
			Type:        OfferAlly,
			Name:        ally.Name,
			Description: ally.Description,
			RefID:       ally.ID,
			Cost:        map[string]int{"ink_drops": 40, "story_embers": 6},
		})
	}

	addOffer(StartMerchantOffer{
		Type:        OfferBonusGold,
		Name:        "Coin Pouch",
		Description: "Begin the run with 30 extra gold.",
		Value:       30,
		Cost:        map[string]int{"ink_drops": 15},
	})
	addOffer(StartMerchantOffer{
		Type:        OfferBonusMaxHP,
		Name:        "Sturdy Spine",
		Description: "Begin the run with 8 extra max HP.",
		Value:       8,
		Cost:        map[string]int{"ink_drops": 30, "story_embers": 4},
	})

	return offers
}

// RemainingStartMerchantResources subtracts the cost of every already
// purchased offer from the run's convertible resources. Purchased ids are
// deduplicated so a doubled id cannot double-subtract.
func RemainingStartMerchantResources(run *RunState, cat *content.Catalog) map[string]int {
	remaining := make(map[string]int, len(run.Resources))
	for k, v := range run.Resources {
		remaining[k] = v
	}

	offers := GenerateStartMerchantOffers(run, cat)
	byID := make(map[string]StartMerchantOffer, len(offers))
	for _, o := range offers {
		byID[o.ID] = o
	}

	seen := make(map[string]bool, len(run.StartMerchantPurchasedOfferIDs))
	for _, id := range run.StartMerchantPurchasedOfferIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		offer, ok := byID[id]
		if !ok {
			continue
		}
		for k, v := range offer.Cost {
			remaining[k] -= v
		}
	}
	return remaining
}

// Affordable reports whether every resource key of the offer's cost is
// covered by the remaining resources; missing keys count as zero.
func Affordable(offer StartMerchantOffer, remaining map[string]int) bool {
	for k, v := range offer.Cost {
		if remaining[k] < v {
			return false
		}
	}
	return true
}

// PurchaseStartMerchantOffer applies one offer to the run: it rejects
// repeat purchases and unaffordable offers, then grants the offer's
// benefit and records the purchase. Resource subtraction stays derived
// (RemainingStartMerchantResources) rather than mutating the raw totals.
func PurchaseStartMerchantOffer(run *RunState, cat *content.Catalog, offerID string) (*StartMerchantOffer, error) {
	if run.Status != RunInProgress {
		return nil, ErrRunFinished
	}

	var offer *StartMerchantOffer
	for _, o := range GenerateStartMerchantOffers(run, cat) {
		if o.ID == offerID {
			offer = &o
			break
		}
	}
	if offer == nil {
		return nil, ErrOfferNotFound
	}

	for _, purchased := range run.StartMerchantPurchasedOfferIDs {
		if purchased == offerID {
			return nil, ErrAlreadyPurchased
		}
	}
	if !Affordable(*offer, RemainingStartMerchantResources(run, cat)) {
		return nil, ErrUnaffordable
	}

	switch offer.Type {
	case OfferCard:
		if _, ok := cat.Card(offer.RefID); ok {
			run.Deck = append(run.Deck, CardInstance{
				InstanceID:   newInstanceID(run),
				DefinitionID: offer.RefID,
			})
		}
	case OfferRelic:
		run.RelicIDs = append(run.RelicIDs, offer.RefID)
	case OfferAlly:
		run.AllyIDs = append(run.AllyIDs, offer.RefID)
	case OfferBonusGold:
		run.Gold += offer.Value
	case OfferBonusMaxHP:
		run.PlayerMaxHP += offer.Value
		run.PlayerHP += offer.Value
	case OfferUsableItem:
		// Items are consumed outside combat by the host; owning one is
		// recorded as a resource counter.
		run.Resources["item:"+offer.RefID]++
	}

	run.StartMerchantPurchasedOfferIDs = append(run.StartMerchantPurchasedOfferIDs, offerID)
	return offer, nil
}
