package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/inkveil/engine/internal/game"
	"github.com/inkveil/engine/internal/policystore"
	"github.com/inkveil/engine/internal/scan"
	"github.com/inkveil/engine/internal/scripting"
	"github.com/inkveil/engine/internal/store"
)

// loadRun fetches a stored run and deserializes its state. A false return
// means the response has already been written.
func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (*store.RunRecord, *game.RunState, bool) {
	runID := chi.URLParam(r, "runID")

	record, err := s.db.GetRun(runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.writeError(w, http.StatusNotFound, ErrTypeRunNotFound, fmt.Sprintf("run %q not found", runID), nil)
			return nil, nil, false
		}
		s.errorHandler.HandleEngineError(w, r, err)
		return nil, nil, false
	}

	var run game.RunState
	if err := json.Unmarshal([]byte(record.StateJSON), &run); err != nil {
		s.writeError(w, http.StatusInternalServerError, ErrTypeCorruptState, "stored run state is unreadable", map[string]interface{}{
			"run_id": runID,
		})
		return nil, nil, false
	}
	return record, &run, true
}

// persistRun serializes the run back into its record and updates the
// denormalized columns.
func (s *Server) persistRun(record *store.RunRecord, run *game.RunState) error {
	state, err := json.Marshal(run)
	if err != nil {
		return err
	}
	record.StateJSON = string(state)
	record.Status = string(run.Status)
	record.Floor = run.Floor
	record.PlayerHP = run.PlayerHP
	record.PlayerMaxHP = run.PlayerMaxHP
	return s.db.UpdateRun(record)
}

// actionResponse assembles the post-operation view, including enemy
// intents whenever a combat is live.
func (s *Server) actionResponse(record *store.RunRecord, run *game.RunState, events []string) ActionResponse {
	resp := ActionResponse{
		ID:            record.ID,
		Run:           run,
		Events:        events,
		EngineVersion: EngineVersion,
	}
	if run.Combat != nil {
		resp.Intents = game.EnemyIntents(run.Combat, s.catalog)
	}
	return resp
}

// handleCreateRun starts a run from a seed and persists it.
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, "Invalid JSON format", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if req.Seed == "" {
		s.errorHandler.HandleValidationError(w, r, "seed", "seed is required")
		return
	}

	runID := uuid.New().String()
	run, err := game.NewRun(runID, req.Seed, game.RunOptions{
		StarterCards: req.StarterCards,
		DifficultyID: req.DifficultyID,
		ConditionID:  req.ConditionID,
		Resources:    req.Resources,
	}, s.catalog)
	if err != nil {
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}

	// Pre-run merchant purchases apply before the first room.
	for _, offerID := range req.PurchaseIDs {
		if _, err := game.PurchaseStartMerchantOffer(run, s.catalog, offerID); err != nil {
			s.errorHandler.HandleEngineError(w, r, err)
			return
		}
	}

	state, err := json.Marshal(run)
	if err != nil {
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}
	record := &store.RunRecord{
		ID:            runID,
		Seed:          req.Seed,
		Status:        string(run.Status),
		DifficultyID:  run.DifficultyID,
		ConditionID:   run.ConditionID,
		Floor:         run.Floor,
		PlayerHP:      run.PlayerHP,
		PlayerMaxHP:   run.PlayerMaxHP,
		StateJSON:     string(state),
		EngineVersion: EngineVersion,
	}
	if err := s.db.SaveRun(record); err != nil {
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}

	s.logger.Printf("run_created run_id=%s difficulty=%s deck_size=%d", runID, run.DifficultyID, len(run.Deck))
	s.writeJSON(w, http.StatusCreated, RunResponse{ID: runID, Run: run, EngineVersion: EngineVersion})
}

// handleListRuns returns stored runs with pagination.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	list, err := s.db.ListRuns(store.RunsQuery{
		Status:  r.URL.Query().Get("status"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, RunListResponse{
		Runs:          list.Runs,
		TotalCount:    list.TotalCount,
		Page:          list.Page,
		PerPage:       list.PerPage,
		TotalPages:    list.TotalPages,
		EngineVersion: EngineVersion,
	})
}

// handleGetRun returns one run's full state.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	record, run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.actionResponse(record, run, nil))
}

// handleDeleteRun removes a stored run.
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	if err := s.db.DeleteRun(runID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.writeError(w, http.StatusNotFound, ErrTypeRunNotFound, fmt.Sprintf("run %q not found", runID), nil)
			return
		}
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleEnterRoom enters the room at the URL index.
func (s *Server) handleEnterRoom(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.errorHandler.HandleValidationError(w, r, "index", "room index must be an integer")
		return
	}

	record, run, ok := s.loadRun(w, r)
	if !ok {
		return
	}

	result, err := game.EnterRoom(run, s.catalog, index)
	if err != nil {
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}
	if err := s.persistRun(record, run); err != nil {
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}

	s.logger.Printf("room_entered run_id=%s floor=%d index=%d combat=%t", record.ID, run.Floor, index, result.CombatStarted)
	s.writeJSON(w, http.StatusOK, s.actionResponse(record, run, result.Events))
}

// handlePlayCard plays one card in the active combat.
func (s *Server) handlePlayCard(w http.ResponseWriter, r *http.Request) {
	var req PlayCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, "Invalid JSON format", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if req.InstanceID == "" {
		s.errorHandler.HandleValidationError(w, r, "instance_id", "instance_id is required")
		return
	}

	record, run, ok := s.loadRun(w, r)
	if !ok {
		return
	}

	result, err := game.PlayCard(run, s.catalog, req.InstanceID, req.TargetID, req.Inked)
	if err != nil {
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}
	if err := s.persistRun(record, run); err != nil {
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, s.actionResponse(record, run, result.Events))
}

// handleEndTurn ends the player turn and resolves enemies.
func (s *Server) handleEndTurn(w http.ResponseWriter, r *http.Request) {
	record, run, ok := s.loadRun(w, r)
	if !ok {
		return
	}

	result, err := game.EndPlayerTurn(run, s.catalog)
	if err != nil {
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}
	if err := s.persistRun(record, run); err != nil {
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, s.actionResponse(record, run, result.Events))
}

// handleAbandonRun forfeits the run.
func (s *Server) handleAbandonRun(w http.ResponseWriter, r *http.Request) {
	record, run, ok := s.loadRun(w, r)
	if !ok {
		return
	}

	if err := game.Abandon(run); err != nil {
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}
	if err := s.persistRun(record, run); err != nil {
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}

	s.logger.Printf("run_abandoned run_id=%s floor=%d", record.ID, run.Floor)
	s.writeJSON(w, http.StatusOK, s.actionResponse(record, run, nil))
}

// handleMerchantOffers lists the run's start-merchant offers with
// affordability against remaining resources.
func (s *Server) handleMerchantOffers(w http.ResponseWriter, r *http.Request) {
	_, run, ok := s.loadRun(w, r)
	if !ok {
		return
	}

	offers := game.GenerateStartMerchantOffers(run, s.catalog)
	remaining := game.RemainingStartMerchantResources(run, s.catalog)

	purchased := make(map[string]bool, len(run.StartMerchantPurchasedOfferIDs))
	for _, id := range run.StartMerchantPurchasedOfferIDs {
		purchased[id] = true
	}

	views := make([]MerchantOfferView, len(offers))
	for i, offer := range offers {
		views[i] = MerchantOfferView{
			StartMerchantOffer: offer,
			Affordable:         game.Affordable(offer, remaining),
			Purchased:          purchased[offer.ID],
		}
	}

	s.writeJSON(w, http.StatusOK, MerchantOffersResponse{
		Offers:        views,
		Remaining:     remaining,
		EngineVersion: EngineVersion,
	})
}

// handleMerchantPurchase buys one offer for the run.
func (s *Server) handleMerchantPurchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, "Invalid JSON format", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if req.OfferID == "" {
		s.errorHandler.HandleValidationError(w, r, "offer_id", "offer_id is required")
		return
	}

	record, run, ok := s.loadRun(w, r)
	if !ok {
		return
	}

	offer, err := game.PurchaseStartMerchantOffer(run, s.catalog, req.OfferID)
	if err != nil {
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}
	if err := s.persistRun(record, run); err != nil {
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}

	s.logger.Printf("offer_purchased run_id=%s offer_id=%s type=%s", record.ID, offer.ID, offer.Type)
	s.writeJSON(w, http.StatusOK, s.actionResponse(record, run, []string{fmt.Sprintf("purchased %s", offer.Name)}))
}

// handleUnlocks evaluates card unlock state for the supplied progress.
// resources is a comma list of key:value pairs, stories a comma list of
// story ids.
func (s *Server) handleUnlocks(w http.ResponseWriter, r *http.Request) {
	resources := map[string]int{}
	if raw := r.URL.Query().Get("resources"); raw != "" {
		for _, pair := range strings.Split(raw, ",") {
			key, value, found := strings.Cut(pair, ":")
			if !found {
				s.errorHandler.HandleValidationError(w, r, "resources", fmt.Sprintf("malformed pair %q, want key:value", pair))
				return
			}
			n, err := strconv.Atoi(value)
			if err != nil {
				s.errorHandler.HandleValidationError(w, r, "resources", fmt.Sprintf("non-numeric value in %q", pair))
				return
			}
			resources[key] = n
		}
	}

	var stories []string
	if raw := r.URL.Query().Get("stories"); raw != "" {
		stories = strings.Split(raw, ",")
	}

	details := game.CardUnlockDetails(s.catalog, game.UnlockProgressFromResources(resources), stories)
	s.writeJSON(w, http.StatusOK, UnlocksResponse{Cards: details, EngineVersion: EngineVersion})
}

// handleScan runs a batch simulation and persists the results.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var apiReq ScanAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&apiReq); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, "Invalid JSON format", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	req := apiReq.ScanRequest
	if apiReq.PolicyID != "" {
		policy, err := s.policies.Get(apiReq.PolicyID)
		if err != nil {
			if errors.Is(err, policystore.ErrNotFound) {
				s.writeError(w, http.StatusNotFound, ErrTypePolicyNotFound, fmt.Sprintf("policy %q not found", apiReq.PolicyID), nil)
				return
			}
			s.errorHandler.HandleEngineError(w, r, err)
			return
		}
		req.PolicySource = policy.Source
		req.PolicyName = policy.Name
	}

	s.logger.Printf("scan_request base_seed=%s count=%d policy=%s", req.BaseSeed, req.Count, req.PolicyName)

	result, err := s.scanner.Scan(r.Context(), req)
	if err != nil {
		if errors.Is(err, scan.ErrInvalidRequest) || errors.Is(err, scan.ErrInvalidPolicy) {
			s.writeError(w, http.StatusBadRequest, ErrTypeValidation, err.Error(), nil)
			return
		}
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}

	paramsJSON, _ := json.Marshal(req)
	record := &store.ScanRecord{
		BaseSeed:      req.BaseSeed,
		PolicyName:    result.PolicyName,
		RunCount:      result.Summary.RunCount,
		Victories:     result.Summary.Victories,
		Defeats:       result.Summary.Defeats,
		AvgFloor:      result.Summary.AvgFloor,
		AvgFinalHP:    result.Summary.AvgFinalHP,
		ParamsJSON:    string(paramsJSON),
		EngineVersion: EngineVersion,
	}
	if err := s.db.SaveScan(record); err != nil {
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}

	samples := make([]store.Sample, len(result.Samples))
	for i, sample := range result.Samples {
		samples[i] = store.Sample{
			ScanID:       record.ID,
			Seed:         sample.Seed,
			Status:       string(sample.Status),
			FloorReached: sample.FloorReached,
			FinalHP:      sample.FinalHP,
			Turns:        sample.Turns,
		}
	}
	if err := s.db.SaveSamples(record.ID, samples); err != nil {
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}
	if apiReq.PolicyID != "" {
		if err := s.policies.MarkUsed(apiReq.PolicyID); err != nil {
			s.logger.Printf("policy_usage_update_failed policy_id=%s err=%v", apiReq.PolicyID, err)
		}
	}

	s.logger.Printf("scan_completed scan_id=%s runs=%d win_rate=%.3f", record.ID, result.Summary.RunCount, result.Summary.WinRate)
	s.writeJSON(w, http.StatusCreated, ScanResponse{ID: record.ID, Result: result, EngineVersion: EngineVersion})
}

// handleListScans returns stored scan summaries.
func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	list, err := s.db.ListScans(page, perPage)
	if err != nil {
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

// handleGetScan returns one scan summary.
func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	scanID := chi.URLParam(r, "scanID")
	record, err := s.db.GetScan(scanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.writeError(w, http.StatusNotFound, ErrTypeScanNotFound, fmt.Sprintf("scan %q not found", scanID), nil)
			return
		}
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, record)
}

// handleCreatePolicy validates and saves a new autoplay policy.
func (s *Server) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req SavePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, "Invalid JSON format", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if req.Name == "" || req.Source == "" {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, "name and source are required", nil)
		return
	}
	if _, err := scripting.NewScriptPolicy(req.Name, req.Source); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, "policy script is invalid", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	policy := &policystore.Policy{Name: req.Name, Description: req.Description, Source: req.Source}
	id, err := s.policies.Create(policy)
	if err != nil {
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}

	stored, err := s.policies.Get(id)
	if err != nil {
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}
	s.logger.Printf("policy_created policy_id=%s name=%s", id, req.Name)
	s.writeJSON(w, http.StatusCreated, PolicyResponse{Policy: stored, EngineVersion: EngineVersion})
}

// handleListPolicies returns stored policies with pagination.
func (s *Server) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	list, err := s.policies.List(page, perPage)
	if err != nil {
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

// handleGetPolicy returns one stored policy.
func (s *Server) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	policyID := chi.URLParam(r, "policyID")
	policy, err := s.policies.Get(policyID)
	if err != nil {
		if errors.Is(err, policystore.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, ErrTypePolicyNotFound, fmt.Sprintf("policy %q not found", policyID), nil)
			return
		}
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, PolicyResponse{Policy: policy, EngineVersion: EngineVersion})
}

// handleUpdatePolicy replaces a stored policy's name, description and source.
func (s *Server) handleUpdatePolicy(w http.ResponseWriter, r *http.Request) {
	policyID := chi.URLParam(r, "policyID")

	var req SavePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, "Invalid JSON format", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if req.Name == "" || req.Source == "" {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, "name and source are required", nil)
		return
	}
	if _, err := scripting.NewScriptPolicy(req.Name, req.Source); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrTypeValidation, "policy script is invalid", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	err := s.policies.Update(&policystore.Policy{
		ID:          policyID,
		Name:        req.Name,
		Description: req.Description,
		Source:      req.Source,
	})
	if err != nil {
		if errors.Is(err, policystore.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, ErrTypePolicyNotFound, fmt.Sprintf("policy %q not found", policyID), nil)
			return
		}
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}

	stored, err := s.policies.Get(policyID)
	if err != nil {
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, PolicyResponse{Policy: stored, EngineVersion: EngineVersion})
}

// handleDeletePolicy removes a stored policy.
func (s *Server) handleDeletePolicy(w http.ResponseWriter, r *http.Request) {
	policyID := chi.URLParam(r, "policyID")
	if err := s.policies.Delete(policyID); err != nil {
		if errors.Is(err, policystore.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, ErrTypePolicyNotFound, fmt.Sprintf("policy %q not found", policyID), nil)
			return
		}
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetScanSamples returns one scan's samples with pagination.
func (s *Server) handleGetScanSamples(w http.ResponseWriter, r *http.Request) {
	scanID := chi.URLParam(r, "scanID")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	samples, err := s.db.GetScanSamples(scanID, page, perPage)
	if err != nil {
		s.errorHandler.HandleEngineError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, samples)
}
