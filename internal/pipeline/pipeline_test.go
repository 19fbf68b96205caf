package pipeline

import (
	"context"
	"database/sql/driver"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/fortuna/dugout/internal/kbo"
)

// fakeSink collects upserted records in memory.
type fakeSink struct {
	records []*kbo.StatRecord
	failFor map[kbo.TeamID]error
}

func (s *fakeSink) Upsert(_ context.Context, rec *kbo.StatRecord) error {
	if err, ok := s.failFor[rec.TeamID]; ok {
		return err
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *fakeSink) Count(context.Context, time.Time) (int, error) {
	return len(s.records), nil
}

// battingRow renders a full 15-cell batting table row for a team.
func battingRow(rank int, team, avg string) string {
	cells := []string{
		fmt.Sprint(rank), team, avg, "144", "5600", "5000", "700", "1400",
		"250", "20", "160", "2300", "650", "60", "40",
	}
	var b strings.Builder
	b.WriteString("<tr>")
	for _, c := range cells {
		fmt.Fprintf(&b, "<td>%s</td>", c)
	}
	b.WriteString("</tr>")
	return b.String()
}

func statPage(rows ...string) string {
	return `<html><body><table class="tData"><tbody>` + strings.Join(rows, "") + `</tbody></table></body></html>`
}

func servePage(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testPipeline(url string, sink Sink) *Pipeline {
	return New(Config{
		Name:          "batting",
		URL:           url,
		TableSelector: StatTableSelector,
		Schema:        battingSchema,
		Sink:          sink,
	}, kbo.NewFetcher(0))
}

func TestPipelineRun(t *testing.T) {
	srv := servePage(t, statPage(
		battingRow(1, "KIA", "0.301"),
		battingRow(2, "삼성", "0.289"),
		battingRow(3, "유니콘스", "0.275"),        // unknown team
		"<tr><td>4</td><td>LG</td></tr>", // short row
	), http.StatusOK)

	sink := &fakeSink{}
	report := testPipeline(srv.URL, sink).Run(context.Background())

	if !report.Success {
		t.Fatalf("Success = false, error = %q", report.Error)
	}
	if report.RowsFetched != 4 {
		t.Errorf("RowsFetched = %d, want 4", report.RowsFetched)
	}
	if report.RowsAccepted != 2 {
		t.Errorf("RowsAccepted = %d, want 2", report.RowsAccepted)
	}
	if report.RowsRejected != 2 {
		t.Errorf("RowsRejected = %d, want 2", report.RowsRejected)
	}
	if report.RowsPersisted != 2 {
		t.Errorf("RowsPersisted = %d, want 2", report.RowsPersisted)
	}
	if len(report.Rejections) != 2 {
		t.Fatalf("Rejections = %v", report.Rejections)
	}

	// A bad row never blocks its valid siblings.
	if len(sink.records) != 2 || sink.records[0].TeamID != kbo.TeamKIA || sink.records[1].TeamID != kbo.TeamSamsung {
		t.Errorf("persisted records = %+v", sink.records)
	}
	if got := sink.records[0].Float("avg"); got != 0.301 {
		t.Errorf("avg = %v, want 0.301", got)
	}
}

func TestPipelineFetchFailure(t *testing.T) {
	srv := servePage(t, "", http.StatusInternalServerError)

	report := testPipeline(srv.URL, &fakeSink{}).Run(context.Background())

	if report.Success {
		t.Fatal("Success = true for a failed fetch")
	}
	if report.Error == "" {
		t.Error("Error is empty")
	}
	if report.RowsAccepted != 0 {
		t.Errorf("RowsAccepted = %d", report.RowsAccepted)
	}
}

func TestPipelineSelectorMiss(t *testing.T) {
	srv := servePage(t, `<html><body><div>new layout</div></body></html>`, http.StatusOK)

	report := testPipeline(srv.URL, &fakeSink{}).Run(context.Background())

	if !report.Success {
		t.Fatalf("Success = false: %q", report.Error)
	}
	if report.Warning == "" {
		t.Error("Warning is empty for a selector miss")
	}
	if report.RowsAccepted != 0 {
		t.Errorf("RowsAccepted = %d", report.RowsAccepted)
	}
}

func TestPipelineEmptyTable(t *testing.T) {
	// An empty table is a legitimate no-op, not a failure or a warning.
	srv := servePage(t, statPage(), http.StatusOK)

	report := testPipeline(srv.URL, &fakeSink{}).Run(context.Background())

	if !report.Success {
		t.Fatalf("Success = false: %q", report.Error)
	}
	if report.Warning != "" {
		t.Errorf("Warning = %q, want empty", report.Warning)
	}
	if report.RowsFetched != 0 || report.RowsAccepted != 0 {
		t.Errorf("fetched/accepted = %d/%d, want 0/0", report.RowsFetched, report.RowsAccepted)
	}
}

func TestPipelineRowPersistErrorSkipsRow(t *testing.T) {
	srv := servePage(t, statPage(
		battingRow(1, "KIA", "0.301"),
		battingRow(2, "삼성", "0.289"),
	), http.StatusOK)

	sink := &fakeSink{failFor: map[kbo.TeamID]error{
		kbo.TeamKIA: fmt.Errorf("duplicate key"),
	}}
	report := testPipeline(srv.URL, sink).Run(context.Background())

	if !report.Success {
		t.Fatalf("Success = false: %q", report.Error)
	}
	if report.RowsAccepted != 1 || report.RowsRejected != 1 {
		t.Errorf("accepted/rejected = %d/%d, want 1/1", report.RowsAccepted, report.RowsRejected)
	}
}

func TestPipelineDeadConnectionFailsRun(t *testing.T) {
	srv := servePage(t, statPage(
		battingRow(1, "KIA", "0.301"),
		battingRow(2, "삼성", "0.289"),
	), http.StatusOK)

	sink := &fakeSink{failFor: map[kbo.TeamID]error{
		kbo.TeamKIA: fmt.Errorf("exec: %w", driver.ErrBadConn),
	}}
	report := testPipeline(srv.URL, sink).Run(context.Background())

	if report.Success {
		t.Fatal("Success = true with a dead connection")
	}
	if report.Error == "" {
		t.Error("Error is empty")
	}
}

func TestRankingsPageDate(t *testing.T) {
	html := `<html><body>
		<span id="cphContents_cphContents_cphContents_lblSearchDateTitle">2025.06.15</span>
		<table class="tData"><tbody></tbody></table>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}

	got := rankingsPageDate(&kbo.TableResult{Doc: doc})
	want := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("rankingsPageDate = %v, want %v", got, want)
	}
}

func TestRankingsPageDateFallback(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	if err != nil {
		t.Fatal(err)
	}

	got := rankingsPageDate(&kbo.TableResult{Doc: doc})
	if got.IsZero() {
		t.Error("expected fallback to today, got zero time")
	}
	if h, m, s := got.Clock(); h != 0 || m != 0 || s != 0 {
		t.Errorf("fallback date not truncated to midnight: %v", got)
	}
}
