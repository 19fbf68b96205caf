package kbo

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// UserAgent mimics a desktop browser; koreabaseball.com serves broken
	// markup to clients without one.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// AcceptLanguage matches what the site expects from Korean visitors.
	AcceptLanguage = "ko-KR,ko;q=0.8,en-US;q=0.5,en;q=0.3"

	// DefaultFetchTimeout bounds a single page fetch so a slow source
	// cannot stall an entire scheduled tick.
	DefaultFetchTimeout = 15 * time.Second
)

// FetchFailure is a failed page fetch: transport error, timeout, non-2xx
// status, or unparseable HTML.
type FetchFailure struct {
	URL        string
	StatusCode int // 0 when the request never completed
	Err        error
}

func (e *FetchFailure) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchFailure) Unwrap() error { return e.Err }

// TableResult holds the raw cell texts of a located stat table.
//
// Zero rows is not an error: on days with no games the rankings table is
// legitimately empty. SelectorMiss distinguishes "the table element itself
// was not found" (likely upstream markup drift, worth an operator warning)
// from "table present but empty".
type TableResult struct {
	Rows         [][]string
	SelectorMiss bool

	// Doc is the parsed page, kept so category-specific hooks can read
	// extras outside the table (e.g. the rankings page date label).
	Doc *goquery.Document
}

// Empty reports whether no data rows were found.
func (t *TableResult) Empty() bool { return len(t.Rows) == 0 }

// Fetcher retrieves stat pages and locates data tables in them.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// FetchTable issues one HTTP request, parses the body, and extracts the
// cell texts of the table matched by tableSelector. Rows beyond TeamCount
// (footers, totals) are dropped. Row order follows the source table.
func (f *Fetcher) FetchTable(ctx context.Context, method, url, tableSelector string) (*TableResult, error) {
	doc, err := f.FetchDocument(ctx, method, url)
	if err != nil {
		return nil, err
	}

	table := doc.Find(tableSelector)
	if table.Length() == 0 {
		return &TableResult{SelectorMiss: true, Doc: doc}, nil
	}

	var rows [][]string
	table.First().Find("tbody tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		if len(rows) >= TeamCount {
			return false
		}
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(td.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
		return true
	})

	return &TableResult{Rows: rows, Doc: doc}, nil
}

// FetchDocument issues one HTTP request with browser-like headers and
// returns the parsed HTML document.
func (f *Fetcher) FetchDocument(ctx context.Context, method, url string) (*goquery.Document, error) {
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, &FetchFailure{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", AcceptLanguage)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchFailure{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchFailure{URL: url, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &FetchFailure{URL: url, Err: fmt.Errorf("parsing HTML: %w", err)}
	}

	return doc, nil
}
