package scan

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/inkveil/engine/internal/content"
	"github.com/inkveil/engine/internal/engine"
	"github.com/inkveil/engine/internal/game"
	"github.com/inkveil/engine/internal/scripting"
)

const engineVersion = "1.0.0"

// ScanRequest describes one batch simulation: Count runs with seeds derived
// from BaseSeed, each driven to completion by the chosen policy.
type ScanRequest struct {
	BaseSeed     string   `json:"base_seed"`
	Count        int      `json:"count"`
	DifficultyID string   `json:"difficulty_id,omitempty"`
	ConditionID  string   `json:"condition_id,omitempty"`
	StarterCards []string `json:"starter_cards,omitempty"`
	PolicySource string   `json:"policy_source,omitempty"` // empty means the built-in greedy policy
	PolicyName   string   `json:"policy_name,omitempty"`
	MaxSteps     int      `json:"max_steps,omitempty"`
	TimeoutMs    int      `json:"timeout_ms,omitempty"`
	Workers      int      `json:"workers,omitempty"`
}

// Sample is the outcome of one simulated run.
type Sample struct {
	Index        int            `json:"index"`
	Seed         string         `json:"seed"`
	Status       game.RunStatus `json:"status"`
	FloorReached int            `json:"floor_reached"`
	FinalHP      int            `json:"final_hp"`
	Turns        int            `json:"turns"`
}

// Summary contains aggregate statistics
type Summary struct {
	RunCount   int     `json:"run_count"`
	Victories  int     `json:"victories"`
	Defeats    int     `json:"defeats"`
	Abandoned  int     `json:"abandoned"`
	WinRate    float64 `json:"win_rate"`
	AvgFloor   float64 `json:"avg_floor"`
	AvgFinalHP float64 `json:"avg_final_hp"`
	TimedOut   bool    `json:"timed_out,omitempty"`
}

// ScanResult contains the complete scan results
type ScanResult struct {
	Samples       []Sample    `json:"samples"`
	Summary       Summary     `json:"summary"`
	PolicyName    string      `json:"policy_name"`
	EngineVersion string      `json:"engine_version"`
	Echo          ScanRequest `json:"echo"`
}

// Scanner runs batch simulations across a worker pool. Each worker owns
// its own policy instance, so script policies never share a VM.
type Scanner struct {
	workerCount int
	catalog     *content.Catalog
}

// NewScanner creates a scanner sized to the available CPUs.
func NewScanner(cat *content.Catalog) *Scanner {
	return &Scanner{
		workerCount: runtime.GOMAXPROCS(0),
		catalog:     cat,
	}
}

// Scan simulates req.Count runs in parallel and aggregates the outcomes.
// Samples come back ordered by index, so a scan is reproducible sample for
// sample regardless of worker scheduling.
func (s *Scanner) Scan(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	if req.Count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive", ErrInvalidRequest)
	}
	if req.BaseSeed == "" {
		return nil, fmt.Errorf("%w: base seed is required", ErrInvalidRequest)
	}

	// Validate the script once up front before spinning up workers.
	if req.PolicySource != "" {
		if _, err := scripting.NewScriptPolicy(s.policyName(req), req.PolicySource); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
		}
	}

	if req.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	workerCount := req.Workers
	if workerCount <= 0 {
		workerCount = s.workerCount
	}
	if workerCount > req.Count {
		workerCount = req.Count
	}

	jobs := make(chan int, workerCount*2)
	samples := make(chan Sample, workerCount*2)
	errs := make(chan error, workerCount)

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.runWorker(ctx, req, jobs, samples); err != nil {
				select {
				case errs <- err:
				default:
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < req.Count; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(samples)
	}()

	var collected []Sample
	for sample := range samples {
		collected = append(collected, sample)
	}

	select {
	case err := <-errs:
		return nil, err
	default:
	}

	sort.Slice(collected, func(i, j int) bool { return collected[i].Index < collected[j].Index })

	summary := summarize(collected)
	summary.TimedOut = ctx.Err() != nil && len(collected) < req.Count

	return &ScanResult{
		Samples:       collected,
		Summary:       summary,
		PolicyName:    s.policyName(req),
		EngineVersion: engineVersion,
		Echo:          req,
	}, nil
}

func (s *Scanner) policyName(req ScanRequest) string {
	if req.PolicySource == "" {
		return "greedy"
	}
	if req.PolicyName != "" {
		return req.PolicyName
	}
	return "script"
}

// runWorker simulates runs for every index it receives.
func (s *Scanner) runWorker(ctx context.Context, req ScanRequest, jobs <-chan int, samples chan<- Sample) error {
	var policy scripting.Policy
	if req.PolicySource != "" {
		p, err := scripting.NewScriptPolicy(s.policyName(req), req.PolicySource)
		if err != nil {
			return err
		}
		policy = p
	} else {
		policy = &scripting.GreedyPolicy{Catalog: s.catalog}
	}
	driver := &scripting.Driver{Policy: policy, Catalog: s.catalog, MaxSteps: req.MaxSteps}

	for {
		select {
		case index, ok := <-jobs:
			if !ok {
				return nil
			}
			sample, err := s.simulate(req, index, driver)
			if err != nil {
				return err
			}
			select {
			case samples <- sample:
			case <-ctx.Done():
				return nil
			}

		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Scanner) simulate(req ScanRequest, index int, driver *scripting.Driver) (Sample, error) {
	seed := engine.DeriveSeed(req.BaseSeed, fmt.Sprintf("sample-%d", index))
	run, err := game.NewRun(fmt.Sprintf("scan-%d", index), seed, game.RunOptions{
		StarterCards: req.StarterCards,
		DifficultyID: req.DifficultyID,
		ConditionID:  req.ConditionID,
	}, s.catalog)
	if err != nil {
		return Sample{}, err
	}

	outcome, err := driver.PlayRun(run)
	if err != nil {
		return Sample{}, err
	}

	return Sample{
		Index:        index,
		Seed:         seed,
		Status:       outcome.Status,
		FloorReached: outcome.FloorReached,
		FinalHP:      outcome.FinalHP,
		Turns:        outcome.Turns,
	}, nil
}

func summarize(samples []Sample) Summary {
	summary := Summary{RunCount: len(samples)}
	if len(samples) == 0 {
		return summary
	}

	floorSum := 0
	hpSum := 0
	for _, sample := range samples {
		switch sample.Status {
		case game.RunVictory:
			summary.Victories++
		case game.RunDefeat:
			summary.Defeats++
		case game.RunAbandoned:
			summary.Abandoned++
		}
		floorSum += sample.FloorReached
		hpSum += sample.FinalHP
	}

	n := float64(len(samples))
	summary.WinRate = float64(summary.Victories) / n
	summary.AvgFloor = float64(floorSum) / n
	summary.AvgFinalHP = float64(hpSum) / n
	return summary
}
