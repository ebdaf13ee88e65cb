package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/inkveil/engine/internal/game"
)

// ErrorBuilder helps construct structured errors with context
type ErrorBuilder struct {
	errType   string
	message   string
	context   map[string]interface{}
	requestID string
	cause     error
}

// NewError creates a new error builder
func NewError(errType, message string) *ErrorBuilder {
	return &ErrorBuilder{
		errType: errType,
		message: message,
		context: make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (eb *ErrorBuilder) WithContext(key string, value interface{}) *ErrorBuilder {
	eb.context[key] = value
	return eb
}

// WithRequestID adds request ID to the error
func (eb *ErrorBuilder) WithRequestID(requestID string) *ErrorBuilder {
	eb.requestID = requestID
	return eb
}

// WithCause adds the underlying cause error
func (eb *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	eb.cause = err
	if err != nil {
		eb.context["cause"] = err.Error()
	}
	return eb
}

// Build creates the final EngineError
func (eb *ErrorBuilder) Build() EngineError {
	return EngineError{
		Type:      eb.errType,
		Message:   eb.message,
		Context:   eb.context,
		RequestID: eb.requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// actionReasonCodes maps engine rejection sentinels to stable reason
// strings for the invalid_action payload.
var actionReasonCodes = []struct {
	err  error
	code string
}{
	{game.ErrRunFinished, "RUN_FINISHED"},
	{game.ErrNoCombat, "NO_COMBAT"},
	{game.ErrCombatActive, "COMBAT_ACTIVE"},
	{game.ErrNotPlayerTurn, "NOT_PLAYER_TURN"},
	{game.ErrCardNotInHand, "CARD_NOT_IN_HAND"},
	{game.ErrUnknownCard, "UNKNOWN_CARD"},
	{game.ErrInsufficientEnergy, "INSUFFICIENT_ENERGY"},
	{game.ErrInsufficientInk, "INSUFFICIENT_INK"},
	{game.ErrNoInkedVariant, "NO_INKED_VARIANT"},
	{game.ErrInvalidTarget, "INVALID_TARGET"},
	{game.ErrInvalidRoom, "INVALID_ROOM"},
	{game.ErrOfferNotFound, "OFFER_NOT_FOUND"},
	{game.ErrAlreadyPurchased, "ALREADY_PURCHASED"},
	{game.ErrUnaffordable, "UNAFFORDABLE"},
}

// actionReason returns the reason code for a rejected engine action, or
// ("", false) when the error is not a rejection sentinel.
func actionReason(err error) (string, bool) {
	for _, entry := range actionReasonCodes {
		if errors.Is(err, entry.err) {
			return entry.code, true
		}
	}
	return "", false
}

// ErrorHandler provides centralized error handling with logging
type ErrorHandler struct {
	logger *log.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *log.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleEngineError classifies an engine error: rejection sentinels
// become 422 invalid_action responses with a reason code, structural
// violations become 500 corrupt_state, anything else is internal.
func (eh *ErrorHandler) HandleEngineError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetReqID(r.Context())

	if reason, ok := actionReason(err); ok {
		engineErr := NewError(ErrTypeInvalidAction, err.Error()).
			WithRequestID(requestID).
			WithContext("reason", reason).
			WithContext("path", r.URL.Path).
			Build()
		eh.logError(r, engineErr, http.StatusUnprocessableEntity)
		eh.writeErrorResponse(w, http.StatusUnprocessableEntity, engineErr)
		return
	}

	if errors.Is(err, game.ErrInvalidState) {
		engineErr := NewError(ErrTypeCorruptState, err.Error()).
			WithRequestID(requestID).
			WithContext("path", r.URL.Path).
			Build()
		eh.logError(r, engineErr, http.StatusInternalServerError)
		eh.writeErrorResponse(w, http.StatusInternalServerError, engineErr)
		return
	}

	engineErr := NewError(ErrTypeInternal, err.Error()).
		WithRequestID(requestID).
		WithContext("path", r.URL.Path).
		WithContext("method", r.Method).
		Build()
	eh.logError(r, engineErr, http.StatusInternalServerError)
	eh.writeErrorResponse(w, http.StatusInternalServerError, engineErr)
}

// HandleValidationError handles validation-specific errors
func (eh *ErrorHandler) HandleValidationError(w http.ResponseWriter, r *http.Request, field, message string) {
	requestID := middleware.GetReqID(r.Context())

	engineErr := NewError(ErrTypeValidation, fmt.Sprintf("Validation failed: %s", message)).
		WithRequestID(requestID).
		WithContext("field", field).
		WithContext("path", r.URL.Path).
		WithContext("method", r.Method).
		Build()

	eh.logError(r, engineErr, http.StatusBadRequest)
	eh.writeErrorResponse(w, http.StatusBadRequest, engineErr)
}

// logError logs the error with appropriate level and context
func (eh *ErrorHandler) logError(r *http.Request, engineErr EngineError, status int) {
	category := GetErrorCategory(engineErr.Type)

	logLevel := "ERROR"
	if category == CategoryValidation || category == CategoryAction {
		logLevel = "WARN"
	}

	eh.logger.Printf(
		"error_occurred level=%s type=%s category=%s status=%d request_id=%s path=%s message=%q context=%+v",
		logLevel, engineErr.Type, category, status, engineErr.RequestID, r.URL.Path, engineErr.Message, engineErr.Context,
	)
}

// writeErrorResponse writes the error response as JSON
func (eh *ErrorHandler) writeErrorResponse(w http.ResponseWriter, status int, engineErr EngineError) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.Header().Set("X-Error-Type", engineErr.Type)
	w.Header().Set("X-Error-Category", string(GetErrorCategory(engineErr.Type)))
	w.WriteHeader(status)

	if err := writeJSONBody(w, engineErr); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// RecoveryHandler provides panic recovery with structured error logging
func (eh *ErrorHandler) RecoveryHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				requestID := middleware.GetReqID(r.Context())

				eh.logger.Printf(
					"panic_recovered request_id=%s path=%s method=%s panic=%v",
					requestID, r.URL.Path, r.Method, rvr,
				)

				engineErr := NewError(ErrTypeInternal, "Internal server error").
					WithRequestID(requestID).
					WithContext("panic", fmt.Sprintf("%v", rvr)).
					WithContext("path", r.URL.Path).
					WithContext("method", r.Method).
					Build()

				eh.writeErrorResponse(w, http.StatusInternalServerError, engineErr)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
