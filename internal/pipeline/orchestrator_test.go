package pipeline

import (
	"context"
	"testing"
	"time"
)

// stubRunner returns a canned report, or panics.
type stubRunner struct {
	name   string
	report *ScrapeReport
	panics bool
}

func (s *stubRunner) Name() string { return s.name }

func (s *stubRunner) Run(context.Context) *ScrapeReport {
	if s.panics {
		panic("index out of range")
	}
	s.report.Pipeline = s.name
	s.report.Timestamp = time.Now()
	return s.report
}

func ok(name string, accepted int) *stubRunner {
	return &stubRunner{name: name, report: &ScrapeReport{Success: true, RowsAccepted: accepted, RowsPersisted: accepted}}
}

func bad(name string) *stubRunner {
	return &stubRunner{name: name, report: &ScrapeReport{Error: "fetch failed"}}
}

func TestRunAllFullySuccessful(t *testing.T) {
	orch := NewOrchestrator(ok("batting", 10), ok("pitching", 10), ok("rankings", 10))

	agg := orch.RunAll(context.Background())

	if !agg.Success || !agg.FullySuccessful {
		t.Fatalf("Success/FullySuccessful = %v/%v", agg.Success, agg.FullySuccessful)
	}
	if agg.Succeeded != 3 || agg.Failed != 0 {
		t.Errorf("Succeeded/Failed = %d/%d", agg.Succeeded, agg.Failed)
	}
	if agg.TotalAccepted != 30 {
		t.Errorf("TotalAccepted = %d, want 30", agg.TotalAccepted)
	}
	if len(agg.Results) != 3 {
		t.Errorf("Results = %d entries", len(agg.Results))
	}
}

func TestRunAllOneFailureContinues(t *testing.T) {
	// A failing pipeline must not stop the ones after it.
	third := ok("fielding", 10)
	orch := NewOrchestrator(ok("batting", 10), bad("pitching"), third, ok("baserunning", 10))

	agg := orch.RunAll(context.Background())

	if !agg.Success {
		t.Fatal("Success = false with three passing pipelines")
	}
	if agg.FullySuccessful {
		t.Fatal("FullySuccessful = true with a failed pipeline")
	}
	if agg.Succeeded != 3 || agg.Failed != 1 {
		t.Errorf("Succeeded/Failed = %d/%d, want 3/1", agg.Succeeded, agg.Failed)
	}
	if _, found := agg.FailedPipelines["pitching"]; !found {
		t.Errorf("FailedPipelines = %v, missing pitching", agg.FailedPipelines)
	}
	if len(agg.Results) != 4 {
		t.Errorf("Results = %d entries, want 4", len(agg.Results))
	}
}

func TestRunAllAllFailed(t *testing.T) {
	orch := NewOrchestrator(bad("batting"), bad("pitching"))

	agg := orch.RunAll(context.Background())

	if agg.Success {
		t.Fatal("Success = true with no passing pipelines")
	}
	if agg.Failed != 2 {
		t.Errorf("Failed = %d, want 2", agg.Failed)
	}
}

func TestRunAllPanicIsolated(t *testing.T) {
	orch := NewOrchestrator(
		&stubRunner{name: "batting", panics: true},
		ok("pitching", 10),
	)

	agg := orch.RunAll(context.Background())

	if !agg.Success {
		t.Fatal("Success = false; panic should not poison the cycle")
	}
	if agg.Failed != 1 {
		t.Errorf("Failed = %d, want 1", agg.Failed)
	}
	if msg := agg.FailedPipelines["batting"]; msg == "" {
		t.Errorf("FailedPipelines = %v, missing panic entry", agg.FailedPipelines)
	}
}

func TestRunAllDeterministicOrder(t *testing.T) {
	orch := NewOrchestrator(ok("batting", 1), ok("pitching", 1), ok("fielding", 1))

	agg := orch.RunAll(context.Background())

	want := []string{"batting", "pitching", "fielding"}
	for i, r := range agg.Results {
		if r.Pipeline != want[i] {
			t.Errorf("Results[%d] = %s, want %s", i, r.Pipeline, want[i])
		}
	}
}

func TestOnCompleteHook(t *testing.T) {
	tests := []struct {
		name     string
		runner   *stubRunner
		wantCall bool
	}{
		{name: "fires after writes", runner: ok("batting", 5), wantCall: true},
		{name: "skipped when nothing written", runner: ok("batting", 0), wantCall: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orch := NewOrchestrator(tt.runner)

			called := false
			orch.OnComplete(func(context.Context, *AggregateReport) { called = true })

			orch.RunAll(context.Background())
			if called != tt.wantCall {
				t.Errorf("hook called = %v, want %v", called, tt.wantCall)
			}
		})
	}
}

func TestOrchestratorFind(t *testing.T) {
	orch := NewOrchestrator(ok("batting", 1), ok("games", 1))

	if r := orch.Find("games"); r == nil || r.Name() != "games" {
		t.Errorf("Find(games) = %v", r)
	}
	if r := orch.Find("hockey"); r != nil {
		t.Errorf("Find(hockey) = %v, want nil", r)
	}
}
