package api

import (
	"github.com/inkveil/engine/internal/game"
	"github.com/inkveil/engine/internal/policystore"
	"github.com/inkveil/engine/internal/scan"
	"github.com/inkveil/engine/internal/store"
)

// EngineError represents a structured error response with context
type EngineError struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty"`
}

// Error implements the error interface
func (e EngineError) Error() string {
	return e.Message
}

// Error types with proper categorization
const (
	// Input validation errors
	ErrTypeValidation = "validation_error"

	// Rejected game actions. The request was well formed but the engine
	// refused it; state is unchanged.
	ErrTypeInvalidAction = "invalid_action"

	// Resource errors
	ErrTypeRunNotFound    = "run_not_found"
	ErrTypeScanNotFound   = "scan_not_found"
	ErrTypePolicyNotFound = "policy_not_found"

	// System errors
	ErrTypeCorruptState = "corrupt_state"
	ErrTypeTimeout      = "timeout"
	ErrTypeInternal     = "internal_error"
)

// ErrorCategory represents error categories for monitoring
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryAction     ErrorCategory = "action"
	CategorySystem     ErrorCategory = "system"
	CategoryTimeout    ErrorCategory = "timeout"
)

// GetErrorCategory returns the category for an error type
func GetErrorCategory(errType string) ErrorCategory {
	switch errType {
	case ErrTypeValidation:
		return CategoryValidation
	case ErrTypeInvalidAction, ErrTypeRunNotFound, ErrTypeScanNotFound, ErrTypePolicyNotFound:
		return CategoryAction
	case ErrTypeTimeout:
		return CategoryTimeout
	default:
		return CategorySystem
	}
}

// VersionInfo contains engine version information
type VersionInfo struct {
	EngineVersion string `json:"engine_version"`
	GitCommit     string `json:"git_commit,omitempty"`
	BuildTime     string `json:"build_time,omitempty"`
}

// CreateRunRequest starts a new run.
type CreateRunRequest struct {
	Seed         string   `json:"seed"`
	StarterCards []string `json:"starter_cards,omitempty"`
	DifficultyID string   `json:"difficulty_id,omitempty"`
	ConditionID  string   `json:"condition_id,omitempty"`
	PurchaseIDs  []string `json:"purchase_ids,omitempty"`
	Resources    map[string]int `json:"resources,omitempty"`
}

// RunResponse wraps a run state with its storage id.
type RunResponse struct {
	ID            string         `json:"id"`
	Run           *game.RunState `json:"run"`
	EngineVersion string         `json:"engine_version"`
}

// RunListResponse is the paginated run listing.
type RunListResponse struct {
	Runs          []store.RunRecord `json:"runs"`
	TotalCount    int               `json:"totalCount"`
	Page          int               `json:"page"`
	PerPage       int               `json:"perPage"`
	TotalPages    int               `json:"totalPages"`
	EngineVersion string            `json:"engine_version"`
}

// ActionResponse reports one engine operation applied to a stored run.
type ActionResponse struct {
	ID            string             `json:"id"`
	Run           *game.RunState     `json:"run"`
	Events        []string           `json:"events,omitempty"`
	Intents       []game.EnemyIntent `json:"intents,omitempty"`
	EngineVersion string             `json:"engine_version"`
}

// PlayCardRequest plays one card from the hand.
type PlayCardRequest struct {
	InstanceID string `json:"instance_id"`
	TargetID   string `json:"target_id,omitempty"`
	Inked      bool   `json:"inked,omitempty"`
}

// EnterRoomRequest is intentionally empty; the room index rides the URL.
type EnterRoomRequest struct{}

// MerchantOffersResponse lists the start-merchant offers with affordability.
type MerchantOffersResponse struct {
	Offers        []MerchantOfferView `json:"offers"`
	Remaining     map[string]int      `json:"remaining"`
	EngineVersion string              `json:"engine_version"`
}

// MerchantOfferView is one offer plus its purchase state for this run.
type MerchantOfferView struct {
	game.StartMerchantOffer
	Affordable bool `json:"affordable"`
	Purchased  bool `json:"purchased"`
}

// PurchaseRequest buys one start-merchant offer.
type PurchaseRequest struct {
	OfferID string `json:"offer_id"`
}

// UnlocksResponse reports per-card unlock state.
type UnlocksResponse struct {
	Cards         map[string]game.CardUnlockDetail `json:"cards"`
	EngineVersion string                           `json:"engine_version"`
}

// ScanAPIRequest is a batch simulation request. A saved policy can be
// referenced by id instead of inlining the script source.
type ScanAPIRequest struct {
	scan.ScanRequest
	PolicyID string `json:"policy_id,omitempty"`
}

// SavePolicyRequest creates or updates a saved autoplay policy.
type SavePolicyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
}

// PolicyResponse wraps a stored policy.
type PolicyResponse struct {
	Policy        *policystore.Policy `json:"policy"`
	EngineVersion string              `json:"engine_version"`
}

// ScanResponse wraps a completed batch simulation with its storage id.
type ScanResponse struct {
	ID            string           `json:"id"`
	Result        *scan.ScanResult `json:"result"`
	EngineVersion string           `json:"engine_version"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status        string `json:"status"`
	EngineVersion string `json:"engine_version"`
	Timestamp     string `json:"timestamp"`
}
