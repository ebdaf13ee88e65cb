package game

import (
	"fmt"

	"github.com/inkveil/engine/internal/content"
)

// progressionResources are the resource keys that count toward unlock
// conditions; anything else in the resource bag is ignored by the tracker.
var progressionResources = []string{"ink_drops", "story_embers", "veil_shards"}

// UnlockProgress is the unlock-relevant slice of the resource bag.
type UnlockProgress map[string]int

// UnlockProgressFromResources extracts the progression counters from a
// generic resource mapping. Missing keys read as zero.
func UnlockProgressFromResources(resources map[string]int) UnlockProgress {
	progress := make(UnlockProgress, len(progressionResources))
	for _, key := range progressionResources {
		progress[key] = resources[key]
	}
	return progress
}

// CardUnlockDetail reports one card's unlock state. MissingCondition is
// empty when the card is unlocked; otherwise it is the machine-readable
// condition still standing, with Progress showing how far along it is.
type CardUnlockDetail struct {
	Unlocked         bool   `json:"unlocked"`
	Condition        string `json:"condition,omitempty"`
	MissingCondition string `json:"missingCondition,omitempty"`
	Progress         string `json:"progress,omitempty"`
}

// renderCondition formats an unlock condition machine-readably; the host
// localizes it for display.
func renderCondition(c *content.UnlockCondition) string {
	switch c.Type {
	case content.ConditionResource:
		return fmt.Sprintf("RESOURCE:%s>=%d", c.Resource, c.Threshold)
	case content.ConditionStory:
		return "STORY:" + c.StoryID
	default:
		return string(c.Type)
	}
}

// CardUnlockDetails evaluates the unlock state of every non-starter
// collectible card against accumulated progress and unlocked story ids.
// Cards with no declared condition are unlocked. The tracker is read-only
// and safe to call on every render.
func CardUnlockDetails(cat *content.Catalog, progress UnlockProgress, unlockedStoryIDs []string) map[string]CardUnlockDetail {
	stories := make(map[string]bool, len(unlockedStoryIDs))
	for _, id := range unlockedStoryIDs {
		stories[id] = true
	}

	details := make(map[string]CardUnlockDetail)
	for _, cardID := range cat.CollectibleCardIDs() {
		card, ok := cat.Card(cardID)
		if !ok {
			continue
		}
		if card.Unlock == nil {
			details[cardID] = CardUnlockDetail{Unlocked: true}
			continue
		}

		cond := renderCondition(card.Unlock)
		detail := CardUnlockDetail{Condition: cond}

		switch card.Unlock.Type {
		case content.ConditionResource:
			have := progress[card.Unlock.Resource]
			detail.Unlocked = have >= card.Unlock.Threshold
			detail.Progress = fmt.Sprintf("%d/%d", have, card.Unlock.Threshold)
		case content.ConditionStory:
			detail.Unlocked = stories[card.Unlock.StoryID]
			if detail.Unlocked {
				detail.Progress = "present"
			} else {
				detail.Progress = "absent"
			}
		}

		if !detail.Unlocked {
			detail.MissingCondition = cond
		}
		details[cardID] = detail
	}
	return details
}
