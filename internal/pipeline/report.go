package pipeline

import "time"

// ScrapeReport is the structured outcome of one pipeline run. It is the
// primary diagnostic signal: an operator reading the JSON can tell "source
// down", "no games today", and "some rows had bad data" apart without the
// logs. Reports are ephemeral and never persisted.
type ScrapeReport struct {
	Pipeline      string    `json:"pipeline"`
	Success       bool      `json:"success"`
	RowsFetched   int       `json:"rows_fetched"`
	RowsAccepted  int       `json:"rows_accepted"`
	RowsRejected  int       `json:"rows_rejected"`
	Rejections    []string  `json:"rejections,omitempty"`
	RowsPersisted int       `json:"rows_persisted"`
	Warning       string    `json:"warning,omitempty"`
	Error         string    `json:"error,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// failed marks the report as a pipeline-level failure.
func (r *ScrapeReport) failed(err error) *ScrapeReport {
	r.Success = false
	r.Error = err.Error()
	return r
}

// AggregateReport summarizes one orchestrator run across all pipelines.
type AggregateReport struct {
	// Success is true when at least one pipeline succeeded;
	// FullySuccessful only when none failed.
	Success         bool              `json:"success"`
	FullySuccessful bool              `json:"fully_successful"`
	Pipelines       int               `json:"pipelines"`
	Succeeded       int               `json:"succeeded"`
	Failed          int               `json:"failed"`
	TotalAccepted   int               `json:"total_accepted"`
	TotalPersisted  int               `json:"total_persisted"`
	Results         []*ScrapeReport   `json:"results"`
	FailedPipelines map[string]string `json:"failed_pipelines,omitempty"`
	DurationSeconds float64           `json:"duration_seconds"`
	Timestamp       time.Time         `json:"timestamp"`
}
