package scripting

import (
	"strings"
	"testing"
	"time"

	"github.com/inkveil/engine/internal/content"
	"github.com/inkveil/engine/internal/game"
)

func newRun(t *testing.T, seed string) (*game.RunState, *content.Catalog) {
	t.Helper()
	cat := content.Default()
	run, err := game.NewRun("run-1", seed, game.RunOptions{}, cat)
	if err != nil {
		t.Fatalf("NewRun() error: %v", err)
	}
	return run, cat
}

func TestGreedyPolicyCompletesRun(t *testing.T) {
	run, cat := newRun(t, "greedy-seed")

	driver := &Driver{Policy: &GreedyPolicy{Catalog: cat}, Catalog: cat}
	outcome, err := driver.PlayRun(run)
	if err != nil {
		t.Fatalf("PlayRun() error: %v", err)
	}

	if outcome.Status == game.RunInProgress {
		t.Error("run did not reach a terminal status")
	}
	if run.Combat != nil {
		t.Error("combat state survived the end of the run")
	}
	if outcome.Steps == 0 {
		t.Error("outcome recorded no steps")
	}
}

func TestGreedyPolicyIsDeterministic(t *testing.T) {
	runA, cat := newRun(t, "det-seed")
	runB, _ := newRun(t, "det-seed")

	driver := &Driver{Policy: &GreedyPolicy{Catalog: cat}, Catalog: cat}
	outA, err := driver.PlayRun(runA)
	if err != nil {
		t.Fatalf("first PlayRun() error: %v", err)
	}
	outB, err := driver.PlayRun(runB)
	if err != nil {
		t.Fatalf("second PlayRun() error: %v", err)
	}

	if outA != outB {
		t.Errorf("same seed diverged: %+v vs %+v", outA, outB)
	}
}

const passOnlyScript = `
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
`

func TestScriptPolicyDrivesRun(t *testing.T) {
	run, cat := newRun(t, "script-seed")

	policy, err := NewScriptPolicy("pass-only", passOnlyScript)
	if err != nil {
		t.Fatalf("NewScriptPolicy() error: %v", err)
	}

	driver := &Driver{Policy: policy, Catalog: cat}
	outcome, err := driver.PlayRun(run)
	if err != nil {
		t.Fatalf("PlayRun() error: %v", err)
	}

	// Never attacking loses every combat eventually.
	if outcome.Status != game.RunDefeat {
		t.Errorf("status = %s, want %s", outcome.Status, game.RunDefeat)
	}
	if outcome.Turns == 0 {
		t.Error("no turns were taken")
	}
}

func TestScriptPolicyRequiresDecide(t *testing.T) {
	if _, err := NewScriptPolicy("empty", `var x = 1;`); err == nil {
		t.Error("expected an error for a script without decide()")
	}
}

func TestScriptStopAbandonsRun(t *testing.T) {
	run, cat := newRun(t, "stop-seed")

	policy, err := NewScriptPolicy("stopper", `
		function decide(state) {
			stop();
			return {type: "END_TURN"};
		}
	`)
	if err != nil {
		t.Fatalf("NewScriptPolicy() error: %v", err)
	}

	driver := &Driver{Policy: policy, Catalog: cat}
	start := time.Now()
	outcome, err := driver.PlayRun(run)
	if err != nil {
		t.Fatalf("PlayRun() error: %v", err)
	}
	if outcome.Status != game.RunAbandoned {
		t.Errorf("status = %s, want %s", outcome.Status, game.RunAbandoned)
	}
	// stop() fires during the first decide() call; hitting the interrupt
	// timeout here means the callback blocked against the VM lock.
	if elapsed := time.Since(start); elapsed >= scriptCallTimeout {
		t.Errorf("abandon took %s, timeout is %s", elapsed, scriptCallTimeout)
	}
}

func TestStopDoesNotLeakAcrossRuns(t *testing.T) {
	// The scanner reuses one ScriptPolicy per worker, so a consumed stop()
	// must not bleed into the next run's first decision.
	policy, err := NewScriptPolicy("stop-once", `
		var calls = 0;
		function decide(state) {
			calls++;
			if (calls === 1) {
				stop();
			}
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
	`)
	if err != nil {
		t.Fatalf("NewScriptPolicy() error: %v", err)
	}

	runA, cat := newRun(t, "leak-seed-a")
	driver := &Driver{Policy: policy, Catalog: cat}
	first, err := driver.PlayRun(runA)
	if err != nil {
		t.Fatalf("first PlayRun() error: %v", err)
	}
	if first.Status != game.RunAbandoned {
		t.Fatalf("first run status = %s, want %s", first.Status, game.RunAbandoned)
	}

	runB, _ := newRun(t, "leak-seed-b")
	second, err := driver.PlayRun(runB)
	if err != nil {
		t.Fatalf("second PlayRun() error: %v", err)
	}
	if second.Status != game.RunDefeat {
		t.Errorf("second run status = %s, want %s", second.Status, game.RunDefeat)
	}
	if second.Steps <= 1 {
		t.Errorf("second run ended after %d steps, stop flag leaked", second.Steps)
	}
}

func TestScriptLogCapture(t *testing.T) {
	policy, err := NewScriptPolicy("logger", `
		log("hello", 42);
		function decide(state) { return {type: "ABANDON"}; }
	`)
	if err != nil {
		t.Fatalf("NewScriptPolicy() error: %v", err)
	}

	logs := policy.Logs()
	if len(logs) != 1 {
		t.Fatalf("got %d log entries, want 1", len(logs))
	}
	if !strings.Contains(logs[0].Message, "hello 42") {
		t.Errorf("log message = %q", logs[0].Message)
	}
}

func TestSandboxBlocksEval(t *testing.T) {
	policy, err := NewScriptPolicy("evil", `
		function decide(state) { return eval("({type: 'END_TURN'})"); }
	`)
	if err != nil {
		t.Fatalf("NewScriptPolicy() error: %v", err)
	}

	run, _ := newRun(t, "sandbox-seed")
	if _, err := policy.Decide(run); err == nil {
		t.Error("expected eval to be blocked")
	}
}

func TestScriptRejectsMissingAction(t *testing.T) {
	policy, err := NewScriptPolicy("silent", `function decide(state) {}`)
	if err != nil {
		t.Fatalf("NewScriptPolicy() error: %v", err)
	}

	run, _ := newRun(t, "silent-seed")
	if _, err := policy.Decide(run); err == nil {
		t.Error("expected an error for a script returning nothing")
	}
}
