package scripting

import (
	"fmt"

	"github.com/inkveil/engine/internal/content"
	"github.com/inkveil/engine/internal/game"
)

// Action is one decision a policy makes when driving a run.
type Action struct {
	Type       string `json:"type"`
	InstanceID string `json:"instanceId,omitempty"`
	TargetID   string `json:"targetId,omitempty"`
	RoomIndex  int    `json:"roomIndex,omitempty"`
	Inked      bool   `json:"inked,omitempty"`
}

// Action types a policy may return.
const (
	ActionPlayCard  = "PLAY_CARD"
	ActionEndTurn   = "END_TURN"
	ActionEnterRoom = "ENTER_ROOM"
	ActionAbandon   = "ABANDON"
)

// Policy decides the next action for a run in progress.
type Policy interface {
	Name() string
	Decide(run *game.RunState) (Action, error)
}

// ScriptPolicy drives a run from a user-supplied decide() script.
type ScriptPolicy struct {
	vm   *VM
	name string
}

// NewScriptPolicy compiles the source and verifies it defines decide().
func NewScriptPolicy(name, source string) (*ScriptPolicy, error) {
	vm := NewVM()
	if err := vm.Execute(source); err != nil {
		return nil, err
	}
	if !vm.HasDecideFunc() {
		return nil, fmt.Errorf("script %q does not define decide()", name)
	}
	return &ScriptPolicy{vm: vm, name: name}, nil
}

func (p *ScriptPolicy) Name() string { return p.name }

// Decide passes the run snapshot into the script. A stop() call from the
// script translates to an abandon action; the flag is consumed so a policy
// reused across runs starts the next one clean.
func (p *ScriptPolicy) Decide(run *game.RunState) (Action, error) {
	action, err := p.vm.CallDecide(run)
	if err != nil {
		return Action{}, err
	}
	if p.vm.IsStopRequested() {
		p.vm.ClearStopRequest()
		return Action{Type: ActionAbandon}, nil
	}
	return action, nil
}

// Logs exposes the script's log buffer.
func (p *ScriptPolicy) Logs() []LogEntry { return p.vm.GetLogs() }

// GreedyPolicy is the built-in baseline: play the highest-damage affordable
// attack into the weakest living enemy, then any other affordable card,
// then end the turn. Outside combat it enters the next uncompleted room.
type GreedyPolicy struct {
	Catalog *content.Catalog
}

func (p *GreedyPolicy) Name() string { return "greedy" }

func (p *GreedyPolicy) Decide(run *game.RunState) (Action, error) {
	if run.Combat == nil {
		for _, room := range run.CurrentFloorRooms() {
			if !room.Completed {
				return Action{Type: ActionEnterRoom, RoomIndex: room.Index}, nil
			}
		}
		return Action{}, fmt.Errorf("no room to enter and no combat active")
	}

	combat := run.Combat
	target := weakestEnemy(combat)

	// Best affordable attack first.
	bestDamage := 0
	var best *game.CardInstance
	for i := range combat.Hand {
		inst := &combat.Hand[i]
		def, ok := p.Catalog.Card(inst.DefinitionID)
		if !ok || def.Cost > combat.Player.Energy {
			continue
		}
		if def.Target == content.TargetSingleEnemy && target == "" {
			continue
		}
		if dmg := totalDamage(def); dmg > bestDamage {
			bestDamage = dmg
			best = inst
		}
	}
	if best != nil {
		def, _ := p.Catalog.Card(best.DefinitionID)
		action := Action{Type: ActionPlayCard, InstanceID: best.InstanceID}
		if def.Target == content.TargetSingleEnemy {
			action.TargetID = target
		}
		return action, nil
	}

	// Then any affordable non-attack with an effect.
	for i := range combat.Hand {
		inst := &combat.Hand[i]
		def, ok := p.Catalog.Card(inst.DefinitionID)
		if !ok || def.Cost > combat.Player.Energy || len(def.Effects) == 0 {
			continue
		}
		if def.Target == content.TargetSingleEnemy {
			if target == "" {
				continue
			}
			return Action{Type: ActionPlayCard, InstanceID: inst.InstanceID, TargetID: target}, nil
		}
		return Action{Type: ActionPlayCard, InstanceID: inst.InstanceID}, nil
	}

	return Action{Type: ActionEndTurn}, nil
}

func weakestEnemy(combat *game.CombatState) string {
	id := ""
	lowest := 0
	for i := range combat.Enemies {
		e := &combat.Enemies[i]
		if !e.Alive() {
			continue
		}
		if id == "" || e.CurrentHP < lowest {
			id = e.InstanceID
			lowest = e.CurrentHP
		}
	}
	return id
}

func totalDamage(def content.CardDefinition) int {
	total := 0
	for _, eff := range def.Effects {
		if eff.Type == content.EffectDamage {
			total += eff.Value
		}
	}
	return total
}
