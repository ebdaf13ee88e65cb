package game

import (
	"fmt"

	"github.com/inkveil/engine/internal/content"
	"github.com/inkveil/engine/internal/engine"
)

// RunOptions are the caller's choices for a new run. Zero values fall back
// to the catalog defaults: the built-in starter deck and the "standard"
// difficulty with no condition.
type RunOptions struct {
	StarterCards []string
	DifficultyID string
	ConditionID  string
	Resources    map[string]int
}

// NewRun builds the initial RunState for a seed: starter deck, baseline
// HP and resources, and the floor/room map. All randomness funnels through
// the map sub-stream, so the same seed always yields the same run.
func NewRun(runID, seed string, opts RunOptions, cat *content.Catalog) (*RunState, error) {
	difficultyID := opts.DifficultyID
	if difficultyID == "" {
		difficultyID = "standard"
	}
	diff, ok := cat.Difficulty(difficultyID)
	if !ok {
		diff = content.RunDifficulty{ID: difficultyID, Floors: 3, EnemyHPScalePercent: 100}
	}

	run := &RunState{
		RunID:        runID,
		Seed:         seed,
		Status:       RunInProgress,
		DifficultyID: difficultyID,
		Floor:        1,
		PlayerMaxHP:  content.BaseMaxHP,
		Gold:         diff.StartingGold,
		Resources:    map[string]int{},
	}
	for k, v := range opts.Resources {
		run.Resources[k] = v
	}

	starter := opts.StarterCards
	if len(starter) == 0 {
		starter = content.DefaultStarterDeck
	}
	// Unknown ids are dropped rather than failing the whole run.
	for _, cardID := range starter {
		if _, ok := cat.Card(cardID); !ok {
			continue
		}
		run.Deck = append(run.Deck, CardInstance{
			InstanceID:   newInstanceID(run),
			DefinitionID: cardID,
		})
	}

	if opts.ConditionID != "" {
		cond, condOK := cat.Condition(opts.ConditionID)
		if condOK {
			run.ConditionID = cond.ID
			run.PlayerMaxHP -= cond.MaxHPPenalty
			if run.PlayerMaxHP < 1 {
				run.PlayerMaxHP = 1
			}
			if cond.AddCardID != "" {
				if _, ok := cat.Card(cond.AddCardID); ok {
					run.Deck = append(run.Deck, CardInstance{
						InstanceID:   newInstanceID(run),
						DefinitionID: cond.AddCardID,
					})
				}
			}
		}
	}
	run.PlayerHP = run.PlayerMaxHP

	rng := engine.NewStream(engine.DeriveSeed(seed, "map"))
	run.Map = generateMap(rng, diff.Floors, cat)
	if len(run.Map) == 0 {
		return nil, fmt.Errorf("map generation produced no floors for seed %q", seed)
	}

	return run, nil
}

// Room type weights for non-terminal rooms.
var roomTypeWeights = []struct {
	roomType RoomType
	weight   int
}{
	{RoomCombat, 55},
	{RoomMerchant, 14},
	{RoomRest, 15},
	{RoomEvent, 16},
}

// generateMap builds the floor/room graph. Guarantees: every floor ends in
// exactly one BOSS room; COMBAT rooms carry a non-empty enemy list scaled
// by floor depth; no two identical non-combat types sit adjacent.
func generateMap(rng *engine.Stream, floors int, cat *content.Catalog) [][]RoomNode {
	if floors < 1 {
		floors = 1
	}

	gameMap := make([][]RoomNode, 0, floors)
	for floor := 1; floor <= floors; floor++ {
		roomCount := 6 + rng.IntN(3)
		rooms := make([]RoomNode, 0, roomCount+1)

		prevType := RoomType("")
		for i := 0; i < roomCount; i++ {
			roomType := pickRoomType(rng)
			// Bounded repetition: a repeated non-combat type collapses
			// into a combat room instead.
			if roomType != RoomCombat && roomType == prevType {
				roomType = RoomCombat
			}
			// The floor opens with a fight.
			if i == 0 {
				roomType = RoomCombat
			}

			node := RoomNode{Index: i, Type: roomType}
			if roomType == RoomCombat {
				node.EnemyIDs = pickEncounter(rng, floor, cat)
			}
			rooms = append(rooms, node)
			prevType = roomType
		}

		rooms = append(rooms, RoomNode{
			Index:    roomCount,
			Type:     RoomBoss,
			EnemyIDs: pickBoss(rng, floor, cat),
		})
		gameMap = append(gameMap, rooms)
	}
	return gameMap
}

func pickRoomType(rng *engine.Stream) RoomType {
	weights := make([]int, len(roomTypeWeights))
	for i, w := range roomTypeWeights {
		weights[i] = w.weight
	}
	return roomTypeWeights[rng.WeightedIndex(weights)].roomType
}

// pickEncounter draws a depth-scaled enemy group: deeper floors allow more
// and higher-tier enemies.
func pickEncounter(rng *engine.Stream, floor int, cat *content.Catalog) []string {
	pool := cat.EnemiesByMaxTier(floor)
	if len(pool) == 0 {
		pool = cat.EnemiesByMaxTier(99)
	}
	if len(pool) == 0 {
		return nil
	}

	count := 1 + rng.IntN(floor)
	if count > 3 {
		count = 3
	}
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		ids = append(ids, pool[rng.IntN(len(pool))])
	}
	return ids
}

// pickBoss selects the floor's terminal boss, preferring a boss of the
// floor's tier and falling back to any boss.
func pickBoss(rng *engine.Stream, floor int, cat *content.Catalog) []string {
	bosses := cat.BossesByTier(floor)
	if len(bosses) == 0 {
		for tier := 1; tier <= 9 && len(bosses) == 0; tier++ {
			bosses = cat.BossesByTier(tier)
		}
	}
	if len(bosses) == 0 {
		return nil
	}
	return []string{bosses[rng.IntN(len(bosses))]}
}

// RoomResult reports what entering a room did.
type RoomResult struct {
	Events        []string `json:"events"`
	CombatStarted bool     `json:"combatStarted"`
}

// EnterRoom advances the run into the given room on the current floor.
// Rooms are visited in order: the index must be the first uncompleted one.
// Combat-bearing rooms initialize a CombatState; the other types resolve
// immediately.
func EnterRoom(run *RunState, cat *content.Catalog, index int) (*RoomResult, error) {
	if err := validateRun(run); err != nil {
		return nil, err
	}
	if run.Status != RunInProgress {
		return nil, ErrRunFinished
	}
	if run.Combat != nil {
		return nil, ErrCombatActive
	}

	rooms := run.CurrentFloorRooms()
	expected := -1
	for _, room := range rooms {
		if !room.Completed {
			expected = room.Index
			break
		}
	}
	if expected == -1 || index != expected {
		return nil, fmt.Errorf("%w: next room is %d", ErrInvalidRoom, expected)
	}
	// combatSeed reads CurrentRoom, so it must move before startCombat;
	// any rejection below rolls it back so the run state stays untouched.
	prevRoom := run.CurrentRoom
	run.CurrentRoom = index
	room := rooms[index]

	switch room.Type {
	case RoomCombat, RoomBoss:
		actionResult, err := startCombat(run, room, cat)
		if err != nil {
			run.CurrentRoom = prevRoom
			return nil, err
		}
		return &RoomResult{Events: actionResult.Events, CombatStarted: true}, nil

	case RoomRest:
		healed := run.PlayerMaxHP * 30 / 100
		if run.PlayerHP+healed > run.PlayerMaxHP {
			healed = run.PlayerMaxHP - run.PlayerHP
		}
		run.PlayerHP += healed
		result := &RoomResult{Events: []string{fmt.Sprintf("player rests and recovers %d HP", healed)}}
		completeRoom(run, index, result)
		return result, nil

	case RoomEvent:
		rng := engine.NewStream(engine.DeriveSeed(run.Seed, fmt.Sprintf("event-%d-%d", run.Floor, index)))
		result := &RoomResult{}
		switch rng.IntN(3) {
		case 0:
			gold := 8 + rng.IntN(12)
			run.Gold += gold
			result.Events = append(result.Events, fmt.Sprintf("a forgotten purse yields %d gold", gold))
		case 1:
			drops := 4 + rng.IntN(6)
			run.Resources["ink_drops"] += drops
			result.Events = append(result.Events, fmt.Sprintf("a cracked well yields %d ink drops", drops))
		default:
			run.Resources["veil_shards"]++
			result.Events = append(result.Events, "a veil shard glints between the pages")
		}
		completeRoom(run, index, result)
		return result, nil

	case RoomMerchant:
		// In-run merchants trade in gold; the offer surface lives with
		// the host. Entering just marks the stop.
		result := &RoomResult{Events: []string{"the merchant nods as you pass the stall"}}
		completeRoom(run, index, result)
		return result, nil

	default:
		run.CurrentRoom = prevRoom
		return nil, fmt.Errorf("%w: unknown room type %q", ErrInvalidRoom, room.Type)
	}
}

func completeRoom(run *RunState, index int, result *RoomResult) {
	rooms := run.CurrentFloorRooms()
	if index < len(rooms) {
		rooms[index].Completed = true
	}
	action := &ActionResult{}
	advanceFloorIfCleared(run, action)
	result.Events = append(result.Events, action.Events...)
}
