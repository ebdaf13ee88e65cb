package game

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/inkveil/engine/internal/content"
)

func merchantRun(t *testing.T, resources map[string]int) *RunState {
	t.Helper()
	cat := content.Default()
	run, err := NewRun("run-1", "merchant-seed", RunOptions{Resources: resources}, cat)
	if err != nil {
		t.Fatalf("NewRun() error: %v", err)
	}
	return run
}

func TestStartMerchantOffersDeterministic(t *testing.T) {
	cat := content.Default()
	run := merchantRun(t, nil)

	a, _ := json.Marshal(GenerateStartMerchantOffers(run, cat))
	b, _ := json.Marshal(GenerateStartMerchantOffers(run, cat))
	if string(a) != string(b) {
		t.Error("same run produced different offer lists")
	}
}

func TestStartMerchantOfferShape(t *testing.T) {
	cat := content.Default()
	run := merchantRun(t, nil)

	offers := GenerateStartMerchantOffers(run, cat)
	if len(offers) != 8 {
		t.Fatalf("got %d offers, want 8", len(offers))
	}

	counts := make(map[OfferType]int)
	ids := make(map[string]bool)
	for _, o := range offers {
		counts[o.Type]++
		if ids[o.ID] {
			t.Errorf("duplicate offer id %s", o.ID)
		}
		ids[o.ID] = true
		if len(o.Cost) == 0 {
			t.Errorf("offer %s has no cost", o.ID)
		}
	}

	want := map[OfferType]int{
		OfferCard:       3,
		OfferRelic:      1,
		OfferUsableItem: 1,
		OfferAlly:       1,
		OfferBonusGold:  1,
		OfferBonusMaxHP: 1,
	}
	for typ, n := range want {
		if counts[typ] != n {
			t.Errorf("%s offers = %d, want %d", typ, counts[typ], n)
		}
	}

	cardIDs := make(map[string]bool)
	for _, o := range offers {
		if o.Type != OfferCard {
			continue
		}
		if cardIDs[o.RefID] {
			t.Errorf("card %s offered twice", o.RefID)
		}
		cardIDs[o.RefID] = true
	}
}

func TestRemainingWithNoPurchasesEqualsTotals(t *testing.T) {
	cat := content.Default()
	run := merchantRun(t, map[string]int{"ink_drops": 120, "story_embers": 9})

	remaining := RemainingStartMerchantResources(run, cat)
	if remaining["ink_drops"] != 120 || remaining["story_embers"] != 9 {
		t.Errorf("remaining = %v, want the raw totals back", remaining)
	}
}

func TestRemainingDedupsPurchasedIDs(t *testing.T) {
	cat := content.Default()
	run := merchantRun(t, map[string]int{"ink_drops": 100})

	var goldOffer StartMerchantOffer
	for _, o := range GenerateStartMerchantOffers(run, cat) {
		if o.Type == OfferBonusGold {
			goldOffer = o
		}
	}

	// A doubled id in the purchase log must not subtract twice.
	run.StartMerchantPurchasedOfferIDs = []string{goldOffer.ID, goldOffer.ID}
	remaining := RemainingStartMerchantResources(run, cat)
	if got, want := remaining["ink_drops"], 100-goldOffer.Cost["ink_drops"]; got != want {
		t.Errorf("remaining ink_drops = %d, want %d", got, want)
	}
}

func TestPurchaseGrantsAndRecords(t *testing.T) {
	cat := content.Default()
	run := merchantRun(t, map[string]int{"ink_drops": 200, "story_embers": 40, "veil_shards": 10})

	goldBefore := run.Gold
	deckBefore := len(run.Deck)

	for _, o := range GenerateStartMerchantOffers(run, cat) {
		switch o.Type {
		case OfferBonusGold:
			if _, err := PurchaseStartMerchantOffer(run, cat, o.ID); err != nil {
				t.Fatalf("purchase gold bonus: %v", err)
			}
			if run.Gold != goldBefore+o.Value {
				t.Errorf("gold = %d, want %d", run.Gold, goldBefore+o.Value)
			}
		case OfferCard:
			if _, err := PurchaseStartMerchantOffer(run, cat, o.ID); err != nil {
				t.Fatalf("purchase card %s: %v", o.RefID, err)
			}
		}
	}

	if len(run.Deck) != deckBefore+3 {
		t.Errorf("deck grew by %d cards, want 3", len(run.Deck)-deckBefore)
	}
	if len(run.StartMerchantPurchasedOfferIDs) != 4 {
		t.Errorf("purchase log has %d entries, want 4", len(run.StartMerchantPurchasedOfferIDs))
	}
}

func TestPurchaseRejections(t *testing.T) {
	cat := content.Default()
	run := merchantRun(t, map[string]int{"ink_drops": 15})

	if _, err := PurchaseStartMerchantOffer(run, cat, "offer_99_nothing"); !errors.Is(err, ErrOfferNotFound) {
		t.Errorf("unknown offer error = %v, want ErrOfferNotFound", err)
	}

	var goldOffer, hpOffer StartMerchantOffer
	for _, o := range GenerateStartMerchantOffers(run, cat) {
		switch o.Type {
		case OfferBonusGold:
			goldOffer = o
		case OfferBonusMaxHP:
			hpOffer = o
		}
	}

	// 15 ink_drops covers the gold bonus exactly; the max-HP bonus needs 30.
	if _, err := PurchaseStartMerchantOffer(run, cat, hpOffer.ID); !errors.Is(err, ErrUnaffordable) {
		t.Errorf("unaffordable offer error = %v, want ErrUnaffordable", err)
	}

	if _, err := PurchaseStartMerchantOffer(run, cat, goldOffer.ID); err != nil {
		t.Fatalf("first purchase failed: %v", err)
	}
	if _, err := PurchaseStartMerchantOffer(run, cat, goldOffer.ID); !errors.Is(err, ErrAlreadyPurchased) {
		t.Errorf("repeat purchase error = %v, want ErrAlreadyPurchased", err)
	}

	// The single purchase spent everything; nothing else is affordable.
	remaining := RemainingStartMerchantResources(run, cat)
	if remaining["ink_drops"] != 0 {
		t.Errorf("remaining ink_drops = %d, want 0", remaining["ink_drops"])
	}
	if Affordable(hpOffer, remaining) {
		t.Error("hp offer should not be affordable with drained resources")
	}
}
