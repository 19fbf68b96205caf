package pipeline

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fortuna/dugout/internal/kbo"
)

// Runner is anything the orchestrator can execute: the generic table
// pipelines and the game result sync both satisfy it.
type Runner interface {
	Name() string
	Run(ctx context.Context) *ScrapeReport
}

// Sink persists accepted records for one stat category. Count backs the
// post-write sanity check; date is only meaningful for dated categories
// and is ignored by the per-team sinks.
type Sink interface {
	Upsert(ctx context.Context, rec *kbo.StatRecord) error
	Count(ctx context.Context, date time.Time) (int, error)
}

// Config declares one stat category pipeline: where its table lives, how
// its rows parse, and where accepted records go. The URL and selector are
// configuration rather than code because upstream markup shifts without
// notice; swapping a selector must not require a rebuild.
type Config struct {
	Name          string
	Method        string
	URL           string
	TableSelector string
	Schema        kbo.ColumnSchema
	Sink          Sink

	// PageDate, when set, extracts the page's calendar date after a
	// successful fetch; it is stamped onto every accepted record. The
	// rankings pipeline uses it to read the page's date label.
	PageDate func(res *kbo.TableResult) time.Time
}

// Pipeline runs one stat category end to end: fetch, parse row by row,
// upsert, verify. A bad row never aborts the run; only a failed fetch or
// a dead database connection does.
type Pipeline struct {
	cfg     Config
	fetcher *kbo.Fetcher
}

// New creates a pipeline from its config.
func New(cfg Config, fetcher *kbo.Fetcher) *Pipeline {
	return &Pipeline{cfg: cfg, fetcher: fetcher}
}

// Name returns the pipeline's category name.
func (p *Pipeline) Name() string { return p.cfg.Name }

// Run executes one scrape cycle and always returns a report, even on
// failure.
func (p *Pipeline) Run(ctx context.Context) *ScrapeReport {
	report := &ScrapeReport{Pipeline: p.cfg.Name, Timestamp: time.Now()}

	res, err := p.fetcher.FetchTable(ctx, p.cfg.Method, p.cfg.URL, p.cfg.TableSelector)
	if err != nil {
		log.Printf("⚠️ [%s] fetch failed: %v", p.cfg.Name, err)
		return report.failed(err)
	}

	if res.SelectorMiss {
		// The table element itself was absent. Treated as an empty result,
		// but flagged: this usually means the upstream markup changed.
		report.Success = true
		report.Warning = fmt.Sprintf("selector %q matched no table; upstream markup may have changed", p.cfg.TableSelector)
		log.Printf("⚠️ [%s] %s", p.cfg.Name, report.Warning)
		return report
	}

	report.RowsFetched = len(res.Rows)
	if res.Empty() {
		// No data rows is a legitimate state (offseason, no games yet).
		report.Success = true
		log.Printf("✓ [%s] table empty, nothing to persist", p.cfg.Name)
		return report
	}

	var pageDate time.Time
	if p.cfg.PageDate != nil {
		pageDate = p.cfg.PageDate(res)
	}

	for i, cells := range res.Rows {
		rec, rej := kbo.ParseRow(cells, i, p.cfg.Schema)
		if rej != nil {
			report.RowsRejected++
			report.Rejections = append(report.Rejections, rej.Error())
			log.Printf("⚠️ [%s] %v", p.cfg.Name, rej)
			continue
		}
		rec.Date = pageDate

		if err := p.cfg.Sink.Upsert(ctx, rec); err != nil {
			if fatalPersistErr(ctx, err) {
				log.Printf("⚠️ [%s] persistence unavailable: %v", p.cfg.Name, err)
				return report.failed(fmt.Errorf("persisting %s: %w", rec.TeamID, err))
			}
			report.RowsRejected++
			report.Rejections = append(report.Rejections, fmt.Sprintf("row %d (%s): persist: %v", i, rec.TeamID, err))
			log.Printf("⚠️ [%s] persist failed for %s: %v", p.cfg.Name, rec.TeamID, err)
			continue
		}
		report.RowsAccepted++
	}

	if count, err := p.cfg.Sink.Count(ctx, pageDate); err != nil {
		log.Printf("⚠️ [%s] post-write count failed: %v", p.cfg.Name, err)
	} else {
		report.RowsPersisted = count
	}

	report.Success = true
	log.Printf("✓ [%s] %d fetched, %d accepted, %d rejected, %d persisted",
		p.cfg.Name, report.RowsFetched, report.RowsAccepted, report.RowsRejected, report.RowsPersisted)
	return report
}

// fatalPersistErr reports whether a row-level persistence error means the
// store itself is gone, in which case retrying the remaining rows is
// pointless and the whole run fails.
func fatalPersistErr(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, driver.ErrBadConn)
}
