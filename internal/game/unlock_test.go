package game

import (
	"testing"

	"github.com/inkveil/engine/internal/content"
)

func TestUnlockProgressFromResources(t *testing.T) {
	progress := UnlockProgressFromResources(map[string]int{
		"ink_drops":           42,
		"gold":                999,
		"item:oil_of_erasure": 1,
	})

	if progress["ink_drops"] != 42 {
		t.Errorf("ink_drops = %d, want 42", progress["ink_drops"])
	}
	if progress["story_embers"] != 0 || progress["veil_shards"] != 0 {
		t.Errorf("missing counters should read zero, got %v", progress)
	}
	if _, ok := progress["gold"]; ok {
		t.Error("gold is not a progression resource")
	}
}

func TestCardUnlockDetails(t *testing.T) {
	cat := content.Default()
	progress := UnlockProgress{"ink_drops": 30, "story_embers": 20, "veil_shards": 5}
	details := CardUnlockDetails(cat, progress, []string{"story_three"})

	// No declared condition unlocks immediately.
	if d := details["second_draft"]; !d.Unlocked || d.MissingCondition != "" {
		t.Errorf("second_draft = %+v, want unconditionally unlocked", d)
	}

	// Resource threshold not yet met.
	if d := details["venom_nib"]; d.Unlocked {
		t.Errorf("venom_nib unlocked at 30/50 ink drops")
	} else {
		if d.MissingCondition != "RESOURCE:ink_drops>=50" {
			t.Errorf("venom_nib missing condition = %q", d.MissingCondition)
		}
		if d.Progress != "30/50" {
			t.Errorf("venom_nib progress = %q, want 30/50", d.Progress)
		}
	}

	// Resource threshold met exactly.
	if d := details["marginalia"]; !d.Unlocked {
		t.Errorf("marginalia locked at 5/5 veil shards: %+v", d)
	}

	// Story id held.
	if d := details["restorative_wash"]; !d.Unlocked || d.Progress != "present" {
		t.Errorf("restorative_wash = %+v, want unlocked by story_three", d)
	}

	// Story id not held.
	if d := details["sealed_page"]; d.Unlocked {
		t.Error("sealed_page unlocked without story_seven")
	} else {
		if d.MissingCondition != "STORY:story_seven" {
			t.Errorf("sealed_page missing condition = %q", d.MissingCondition)
		}
		if d.Progress != "absent" {
			t.Errorf("sealed_page progress = %q, want absent", d.Progress)
		}
	}
}

func TestSealedPageUnlocksWithStorySeven(t *testing.T) {
	cat := content.Default()
	details := CardUnlockDetails(cat, UnlockProgress{}, []string{"story_seven"})

	d := details["sealed_page"]
	if !d.Unlocked {
		t.Fatalf("sealed_page = %+v, want unlocked", d)
	}
	if d.MissingCondition != "" {
		t.Errorf("unlocked card still reports missing condition %q", d.MissingCondition)
	}
	if d.Condition != "STORY:story_seven" {
		t.Errorf("condition = %q, want STORY:story_seven", d.Condition)
	}
}
