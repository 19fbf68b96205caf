package rest

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/fortuna/dugout/internal/pipeline"
)

// CronHandler exposes the scrape pipelines over HTTP so an external cron
// (or an operator) can trigger them.
type CronHandler struct {
	orch *pipeline.Orchestrator
}

// NewCronHandler creates a cron handler over the orchestrator.
func NewCronHandler(orch *pipeline.Orchestrator) *CronHandler {
	return &CronHandler{orch: orch}
}

// RunAll triggers every pipeline and maps the aggregate outcome onto the
// status code: 200 when all succeeded, 207 on a partial run, 500 when
// nothing succeeded.
func (c *CronHandler) RunAll(w http.ResponseWriter, r *http.Request) {
	report := c.orch.RunAll(r.Context())

	status := http.StatusOK
	switch {
	case !report.Success:
		status = http.StatusInternalServerError
	case !report.FullySuccessful:
		status = http.StatusMultiStatus
	}

	respondJSON(w, status, report)
}

// RunOne triggers a single pipeline by name.
func (c *CronHandler) RunOne(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(mux.Vars(r)["pipeline"])

	runner := c.orch.Find(name)
	if runner == nil {
		respondError(w, http.StatusNotFound, "Unknown pipeline: "+name, nil)
		return
	}

	report := runner.Run(r.Context())

	status := http.StatusOK
	if !report.Success {
		status = http.StatusInternalServerError
	}
	respondJSON(w, status, report)
}
