package game

import (
	"errors"
	"strconv"

	"github.com/google/uuid"

	"github.com/inkveil/engine/internal/content"
)

// Phase is the combat state machine's current state.
type Phase string

const (
	PhasePlayerTurn Phase = "PLAYER_TURN"
	PhaseEnemyTurn  Phase = "ENEMY_TURN"
	PhaseVictory    Phase = "VICTORY"
	PhaseDefeat     Phase = "DEFEAT"
)

// RunStatus is the overall state of a run.
type RunStatus string

const (
	RunInProgress RunStatus = "IN_PROGRESS"
	RunVictory    RunStatus = "VICTORY"
	RunDefeat     RunStatus = "DEFEAT"
	RunAbandoned  RunStatus = "ABANDONED"
)

// RoomType classifies a node in a floor's path.
type RoomType string

const (
	RoomCombat   RoomType = "COMBAT"
	RoomMerchant RoomType = "MERCHANT"
	RoomRest     RoomType = "REST"
	RoomEvent    RoomType = "EVENT"
	RoomBoss     RoomType = "BOSS"
)

// Invalid-action reason codes. These reject the request synchronously and
// leave state untouched; the API layer maps them to structured responses.
var (
	ErrRunFinished        = errors.New("run is not in progress")
	ErrNoCombat           = errors.New("no combat in progress")
	ErrCombatActive       = errors.New("combat already in progress")
	ErrNotPlayerTurn      = errors.New("not the player's turn")
	ErrCardNotInHand      = errors.New("card not in hand")
	ErrUnknownCard        = errors.New("card definition not found")
	ErrInsufficientEnergy = errors.New("insufficient energy")
	ErrInsufficientInk    = errors.New("insufficient ink")
	ErrNoInkedVariant     = errors.New("card has no inked variant")
	ErrInvalidTarget      = errors.New("invalid or dead target")
	ErrInvalidRoom        = errors.New("room cannot be entered")
	ErrOfferNotFound      = errors.New("merchant offer not found")
	ErrAlreadyPurchased   = errors.New("offer already purchased")
	ErrUnaffordable       = errors.New("insufficient resources for offer")
)

// ErrInvalidState marks a caller-supplied state that violates a structural
// invariant (negative HP, duplicate instance ids). This is a contract
// violation, not an invalid action: the engine fails fast instead of
// propagating an impossible state into a terminal-phase decision.
var ErrInvalidState = errors.New("structurally invalid state")

// CardInstance is one physical copy of a card. Identity lives on the
// instance so duplicate copies are individually trackable across piles.
type CardInstance struct {
	InstanceID   string `json:"instanceId"`
	DefinitionID string `json:"definitionId"`
}

// BuffInstance is an active buff or debuff. Stacks carry magnitude;
// Duration, when set, governs expiry on the end-of-turn tick. A buff with
// zero stacks is inert and pruned at the next tick.
type BuffInstance struct {
	Type     content.BuffType `json:"type"`
	Stacks   int              `json:"stacks"`
	Duration int              `json:"duration,omitempty"`
}

// PlayerState is the player's side of a combat.
type PlayerState struct {
	CurrentHP int `json:"currentHp"`
	MaxHP     int `json:"maxHp"`
	Energy    int `json:"energy"`
	MaxEnergy int `json:"maxEnergy"`
	Block     int `json:"block"`

	Ink              int     `json:"ink"`
	MaxInk           int     `json:"maxInk"`
	InkPerCardChance float64 `json:"inkPerCardChance"`
	InkPerCardValue  int     `json:"inkPerCardValue"`

	RegenPerTurn                   int  `json:"regenPerTurn"`
	FirstHitDamageReductionPercent int  `json:"firstHitDamageReductionPercent"`
	FirstHitReductionUsed          bool `json:"firstHitReductionUsed"`
	RetainBlock                    bool `json:"retainBlock,omitempty"`

	DrawCount int            `json:"drawCount"`
	Strength  int            `json:"strength"`
	Buffs     []BuffInstance `json:"buffs"`
}

// EnemyState instantiates an EnemyDefinition for one combat.
type EnemyState struct {
	InstanceID   string         `json:"instanceId"`
	DefinitionID string         `json:"definitionId"`
	CurrentHP    int            `json:"currentHp"`
	MaxHP        int            `json:"maxHp"`
	Block        int            `json:"block"`
	Buffs        []BuffInstance `json:"buffs"`
	IntentIndex  int            `json:"intentIndex"`
}

// Alive reports whether the enemy can still act or be targeted.
func (e *EnemyState) Alive() bool { return e.CurrentHP > 0 }

// AllyState instantiates an AllyDefinition accompanying the player.
type AllyState struct {
	InstanceID   string `json:"instanceId"`
	DefinitionID string `json:"definitionId"`
}

// RoomNode is one node in a floor's path. EnemyIDs is present exactly for
// the combat-bearing room types (COMBAT and BOSS) and absent otherwise.
type RoomNode struct {
	Index     int      `json:"index"`
	Type      RoomType `json:"type"`
	EnemyIDs  []string `json:"enemyIds,omitempty"`
	Completed bool     `json:"completed"`
}

// CombatState is the full state of an active fight. RngCursor records how
// many bytes of the combat sub-stream have been consumed so a persisted
// combat resumes with identical randomness.
type CombatState struct {
	Player      PlayerState    `json:"player"`
	Enemies     []EnemyState   `json:"enemies"`
	DrawPile    []CardInstance `json:"drawPile"`
	Hand        []CardInstance `json:"hand"`
	DiscardPile []CardInstance `json:"discardPile"`
	ExhaustPile []CardInstance `json:"exhaustPile"`
	Allies      []AllyState    `json:"allies"`
	TurnNumber  int            `json:"turnNumber"`
	Phase       Phase          `json:"phase"`
	RngCursor   uint64         `json:"rngCursor"`
}

// RunState is the persistent state of one playthrough. It is created once
// by NewRun and threaded through every engine operation; the engine never
// stores it anywhere itself.
type RunState struct {
	RunID        string    `json:"runId"`
	Seed         string    `json:"seed"`
	Status       RunStatus `json:"status"`
	DifficultyID string    `json:"difficultyId,omitempty"`
	ConditionID  string    `json:"conditionId,omitempty"`

	Floor       int `json:"floor"`
	CurrentRoom int `json:"currentRoom"`

	PlayerHP    int `json:"playerHp"`
	PlayerMaxHP int `json:"playerMaxHp"`

	Deck []CardInstance `json:"deck"`
	Map  [][]RoomNode   `json:"map"`

	Gold      int            `json:"gold"`
	AllyIDs   []string       `json:"allyIds"`
	RelicIDs  []string       `json:"relicIds"`
	Resources map[string]int `json:"resources"`

	StartMerchantPurchasedOfferIDs []string `json:"startMerchantPurchasedOfferIds"`

	// InstanceSeq feeds deterministic instance id generation. Every card,
	// enemy, or ally instance created for this run increments it.
	InstanceSeq int `json:"instanceSeq"`

	Combat *CombatState `json:"combat"`
}

// ActionResult describes what one engine operation did, as plain data for
// the host's presentation layer. The engine does no formatting beyond
// these event strings and never localizes them.
type ActionResult struct {
	Events    []string `json:"events"`
	Phase     Phase    `json:"phase,omitempty"`
	InkGained int      `json:"inkGained,omitempty"`
}

// newInstanceID derives a deterministic instance id from the run seed and
// the run's instance sequence, so the same seed always yields the same ids.
func newInstanceID(run *RunState) string {
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(run.Seed+":inst:"+strconv.Itoa(run.InstanceSeq)))
	run.InstanceSeq++
	return id.String()
}

// CurrentFloorRooms returns the room list for the run's current floor, or
// nil when the floor index is out of range.
func (r *RunState) CurrentFloorRooms() []RoomNode {
	idx := r.Floor - 1
	if idx < 0 || idx >= len(r.Map) {
		return nil
	}
	return r.Map[idx]
}

// buffStacks returns the stacks of the given buff type, zero when absent.
func buffStacks(buffs []BuffInstance, t content.BuffType) int {
	for _, b := range buffs {
		if b.Type == t {
			return b.Stacks
		}
	}
	return 0
}
