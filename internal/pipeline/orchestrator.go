package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Orchestrator runs a fixed set of pipelines sequentially, in registration
// order. Sequential on purpose: the runs hit the same upstream host, and
// one polite request at a time is the point.
type Orchestrator struct {
	runners []Runner

	// onComplete runs after every cycle that persisted anything; used to
	// drop read-side caches.
	onComplete func(ctx context.Context, report *AggregateReport)
}

// NewOrchestrator creates an orchestrator over the given pipelines.
func NewOrchestrator(runners ...Runner) *Orchestrator {
	return &Orchestrator{runners: runners}
}

// OnComplete registers a hook invoked at the end of every RunAll.
func (o *Orchestrator) OnComplete(fn func(ctx context.Context, report *AggregateReport)) {
	o.onComplete = fn
}

// Names returns the registered pipeline names, in run order.
func (o *Orchestrator) Names() []string {
	names := make([]string, len(o.runners))
	for i, r := range o.runners {
		names[i] = r.Name()
	}
	return names
}

// Find returns the registered pipeline with the given name, or nil.
func (o *Orchestrator) Find(name string) Runner {
	for _, r := range o.runners {
		if r.Name() == name {
			return r
		}
	}
	return nil
}

// RunAll executes every pipeline and aggregates their reports. A failing
// or panicking pipeline never stops the ones after it.
func (o *Orchestrator) RunAll(ctx context.Context) *AggregateReport {
	start := time.Now()
	agg := &AggregateReport{
		Pipelines:       len(o.runners),
		FailedPipelines: make(map[string]string),
		Timestamp:       start,
	}

	log.Printf("🚀 scrape cycle starting: %d pipelines", len(o.runners))

	for _, r := range o.runners {
		report := o.runOne(ctx, r)
		agg.Results = append(agg.Results, report)

		if report.Success {
			agg.Succeeded++
			agg.TotalAccepted += report.RowsAccepted
			agg.TotalPersisted += report.RowsPersisted
		} else {
			agg.Failed++
			agg.FailedPipelines[report.Pipeline] = report.Error
		}
	}

	agg.Success = agg.Succeeded > 0
	agg.FullySuccessful = agg.Failed == 0
	agg.DurationSeconds = time.Since(start).Seconds()

	if o.onComplete != nil && agg.TotalAccepted > 0 {
		o.onComplete(ctx, agg)
	}

	if agg.FullySuccessful {
		log.Printf("✓ scrape cycle complete: %d/%d pipelines succeeded in %.1fs",
			agg.Succeeded, agg.Pipelines, agg.DurationSeconds)
	} else {
		log.Printf("⚠️ scrape cycle partial: %d/%d pipelines succeeded, failed: %v",
			agg.Succeeded, agg.Pipelines, agg.FailedPipelines)
	}
	return agg
}

// runOne isolates a single pipeline run, converting a panic into a failed
// report so one misbehaving parser cannot take down the cycle.
func (o *Orchestrator) runOne(ctx context.Context, r Runner) (report *ScrapeReport) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("⚠️ [%s] panicked: %v", r.Name(), rec)
			report = &ScrapeReport{
				Pipeline:  r.Name(),
				Error:     fmt.Sprintf("panic: %v", rec),
				Timestamp: time.Now(),
			}
		}
	}()

	return r.Run(ctx)
}
