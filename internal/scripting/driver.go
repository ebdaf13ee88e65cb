package scripting

import (
	"fmt"

	"github.com/inkveil/engine/internal/content"
	"github.com/inkveil/engine/internal/game"
)

// Outcome summarizes one policy-driven run.
type Outcome struct {
	Status       game.RunStatus `json:"status"`
	FloorReached int            `json:"floorReached"`
	FinalHP      int            `json:"finalHp"`
	Turns        int            `json:"turns"`
	Steps        int            `json:"steps"`
}

// Driver plays a run to completion under a policy. MaxSteps bounds the
// total number of policy decisions so a pathological script cannot loop
// forever; a run that exhausts the budget is abandoned.
type Driver struct {
	Policy   Policy
	Catalog  *content.Catalog
	MaxSteps int
}

const defaultMaxSteps = 2000

// PlayRun drives the run until it terminates. Invalid card plays from the
// policy degrade to ending the turn; the run always reaches a terminal
// status.
func (d *Driver) PlayRun(run *game.RunState) (Outcome, error) {
	maxSteps := d.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}

	turns := 0
	steps := 0
	for ; steps < maxSteps && run.Status == game.RunInProgress; steps++ {
		action, err := d.Policy.Decide(run)
		if err != nil {
			return Outcome{}, fmt.Errorf("policy %s: %w", d.Policy.Name(), err)
		}

		switch action.Type {
		case ActionPlayCard:
			if run.Combat == nil {
				return Outcome{}, fmt.Errorf("policy %s played a card outside combat", d.Policy.Name())
			}
			if _, err := game.PlayCard(run, d.Catalog, action.InstanceID, action.TargetID, action.Inked); err != nil {
				// A rejected play costs the policy its turn instead of
				// stalling the run.
				if _, endErr := game.EndPlayerTurn(run, d.Catalog); endErr != nil {
					return Outcome{}, endErr
				}
				turns++
			}

		case ActionEndTurn:
			if run.Combat == nil {
				return Outcome{}, fmt.Errorf("policy %s ended a turn outside combat", d.Policy.Name())
			}
			if _, err := game.EndPlayerTurn(run, d.Catalog); err != nil {
				return Outcome{}, err
			}
			turns++

		case ActionEnterRoom:
			if _, err := game.EnterRoom(run, d.Catalog, action.RoomIndex); err != nil {
				return Outcome{}, fmt.Errorf("policy %s entered room %d: %w", d.Policy.Name(), action.RoomIndex, err)
			}

		case ActionAbandon:
			if err := game.Abandon(run); err != nil {
				return Outcome{}, err
			}

		default:
			return Outcome{}, fmt.Errorf("policy %s returned unknown action %q", d.Policy.Name(), action.Type)
		}
	}

	if run.Status == game.RunInProgress {
		if err := game.Abandon(run); err != nil {
			return Outcome{}, err
		}
	}

	return Outcome{
		Status:       run.Status,
		FloorReached: run.Floor,
		FinalHP:      run.PlayerHP,
		Turns:        turns,
		Steps:        steps,
	}, nil
}
