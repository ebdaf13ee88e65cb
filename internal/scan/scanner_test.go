package scan

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/inkveil/engine/internal/content"
	"github.com/inkveil/engine/internal/game"
)

func TestScanValidation(t *testing.T) {
	scanner := NewScanner(content.Default())

	if _, err := scanner.Scan(context.Background(), ScanRequest{BaseSeed: "x"}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("zero count error = %v, want ErrInvalidRequest", err)
	}
	if _, err := scanner.Scan(context.Background(), ScanRequest{Count: 1}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("empty seed error = %v, want ErrInvalidRequest", err)
	}
	if _, err := scanner.Scan(context.Background(), ScanRequest{
		BaseSeed: "x", Count: 1, PolicySource: "this is not javascript ((",
	}); !errors.Is(err, ErrInvalidPolicy) {
		t.Errorf("broken script error = %v, want ErrInvalidPolicy", err)
	}
}

func TestScanGreedyBatch(t *testing.T) {
	scanner := NewScanner(content.Default())

	result, err := scanner.Scan(context.Background(), ScanRequest{
		BaseSeed: "batch-seed",
		Count:    8,
	})
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	if len(result.Samples) != 8 {
		t.Fatalf("got %d samples, want 8", len(result.Samples))
	}
	if result.PolicyName != "greedy" {
		t.Errorf("policy name = %q, want greedy", result.PolicyName)
	}

	seeds := make(map[string]bool)
	for i, sample := range result.Samples {
		if sample.Index != i {
			t.Errorf("sample %d has index %d, samples must come back ordered", i, sample.Index)
		}
		if sample.Status == game.RunInProgress {
			t.Errorf("sample %d did not terminate", i)
		}
		if seeds[sample.Seed] {
			t.Errorf("seed %s used twice", sample.Seed)
		}
		seeds[sample.Seed] = true
	}

	summary := result.Summary
	if summary.RunCount != 8 {
		t.Errorf("summary run count = %d", summary.RunCount)
	}
	if summary.Victories+summary.Defeats+summary.Abandoned != 8 {
		t.Errorf("summary outcomes do not add up: %+v", summary)
	}
	if summary.WinRate < 0 || summary.WinRate > 1 {
		t.Errorf("win rate = %f", summary.WinRate)
	}
}

func TestScanIsDeterministic(t *testing.T) {
	scanner := NewScanner(content.Default())
	req := ScanRequest{BaseSeed: "repeat-seed", Count: 4, Workers: 2}

	first, err := scanner.Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("first Scan() error: %v", err)
	}
	second, err := scanner.Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("second Scan() error: %v", err)
	}

	a, _ := json.Marshal(first.Samples)
	b, _ := json.Marshal(second.Samples)
	if string(a) != string(b) {
		t.Error("same request produced different samples")
	}
}

func TestScanWithScriptPolicy(t *testing.T) {
	scanner := NewScanner(content.Default())

	result, err := scanner.Scan(context.Background(), ScanRequest{
		BaseSeed:   "script-batch",
		Count:      3,
		PolicyName: "pass-only",
		PolicySource: `
			function decide(state) {
				if (state.combat) {
					return {type: "END_TURN"};
				}
				var rooms = state.map[state.floor - 1];
				for (var i = 0; i < rooms.length; i++) {
					if (!rooms[i].completed) {
						return {type: "ENTER_ROOM", roomIndex: i};
					}
				}
				return {type: "ABANDON"};
			}
		`,
	})
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	if result.PolicyName != "pass-only" {
		t.Errorf("policy name = %q", result.PolicyName)
	}
	for _, sample := range result.Samples {
		if sample.Status != game.RunDefeat {
			t.Errorf("sample %d status = %s, a pass-only policy should always lose", sample.Index, sample.Status)
		}
	}
}
