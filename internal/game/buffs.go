package game

import "github.com/inkveil/engine/internal/content"

// Stacking rule: stacks accumulate additively; for buffs that also carry a
// duration, the longer of the existing and incoming durations wins
// (max-replace). Duration governs expiry, stacks govern magnitude.
func applyBuff(buffs []BuffInstance, t content.BuffType, stacks, duration int) []BuffInstance {
	if stacks < 0 {
		stacks = 0
	}
	for i := range buffs {
		if buffs[i].Type != t {
			continue
		}
		buffs[i].Stacks += stacks
		if duration > buffs[i].Duration {
			buffs[i].Duration = duration
		}
		return buffs
	}
	return append(buffs, BuffInstance{Type: t, Stacks: stacks, Duration: duration})
}

// tickBuffs performs the end-of-turn decrement for one side's buffs: every
// duration-based buff loses one turn, and buffs that reach zero duration or
// zero stacks are pruned before the next turn begins.
func tickBuffs(buffs []BuffInstance) []BuffInstance {
	kept := buffs[:0]
	for _, b := range buffs {
		if b.Duration > 0 {
			b.Duration--
			if b.Duration == 0 {
				continue
			}
		}
		if b.Stacks <= 0 {
			continue
		}
		kept = append(kept, b)
	}
	return kept
}

// decayPoison reduces a poison stack count by one after it deals its
// damage. Poison is stack-based: stacks are both magnitude and lifetime.
func decayPoison(buffs []BuffInstance) []BuffInstance {
	kept := buffs[:0]
	for _, b := range buffs {
		if b.Type == content.BuffPoison {
			b.Stacks--
			if b.Stacks <= 0 {
				continue
			}
		}
		kept = append(kept, b)
	}
	return kept
}
