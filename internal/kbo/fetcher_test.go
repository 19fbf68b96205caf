package kbo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func tablePage(rows int) string {
	var b strings.Builder
	b.WriteString(`<html><body><table class="tData"><tbody>`)
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "<tr><td>%d</td><td> KIA </td><td>0.301</td></tr>", i+1)
	}
	b.WriteString(`</tbody></table></body></html>`)
	return b.String()
}

func serve(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchTable(t *testing.T) {
	srv := serve(t, tablePage(3))

	f := NewFetcher(0)
	res, err := f.FetchTable(context.Background(), "", srv.URL, "table.tData")
	if err != nil {
		t.Fatalf("FetchTable: %v", err)
	}

	if res.SelectorMiss {
		t.Error("SelectorMiss = true for a present table")
	}
	if len(res.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(res.Rows))
	}
	// Cell text is trimmed.
	if res.Rows[0][1] != "KIA" {
		t.Errorf("cell = %q, want KIA", res.Rows[0][1])
	}
}

func TestFetchTableCapsRows(t *testing.T) {
	// Footer and total rows beyond the league's ten teams are dropped.
	srv := serve(t, tablePage(14))

	f := NewFetcher(0)
	res, err := f.FetchTable(context.Background(), "", srv.URL, "table.tData")
	if err != nil {
		t.Fatalf("FetchTable: %v", err)
	}
	if len(res.Rows) != TeamCount {
		t.Errorf("got %d rows, want %d", len(res.Rows), TeamCount)
	}
}

func TestFetchTableSelectorMiss(t *testing.T) {
	srv := serve(t, `<html><body><div>redesigned page</div></body></html>`)

	f := NewFetcher(0)
	res, err := f.FetchTable(context.Background(), "", srv.URL, "table.tData")
	if err != nil {
		t.Fatalf("FetchTable: %v", err)
	}
	if !res.SelectorMiss {
		t.Error("SelectorMiss = false for a missing table")
	}
	if !res.Empty() {
		t.Error("Empty() = false")
	}
}

func TestFetchTableEmptyBody(t *testing.T) {
	// Table present but no data rows: legitimate, not a selector miss.
	srv := serve(t, `<html><body><table class="tData"><tbody></tbody></table></body></html>`)

	f := NewFetcher(0)
	res, err := f.FetchTable(context.Background(), "", srv.URL, "table.tData")
	if err != nil {
		t.Fatalf("FetchTable: %v", err)
	}
	if res.SelectorMiss {
		t.Error("SelectorMiss = true for an empty but present table")
	}
	if !res.Empty() {
		t.Error("Empty() = false for a table with no rows")
	}
}

func TestFetchDocumentHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(0)
	_, err := f.FetchDocument(context.Background(), "", srv.URL)
	if err == nil {
		t.Fatal("expected error for 503 response")
	}

	var ff *FetchFailure
	if !errors.As(err, &ff) {
		t.Fatalf("error = %T, want *FetchFailure", err)
	}
	if ff.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", ff.StatusCode)
	}
}

func TestFetchDocumentSendsBrowserHeaders(t *testing.T) {
	var ua, lang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		lang = r.Header.Get("Accept-Language")
		w.Write([]byte("<html></html>"))
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(0)
	if _, err := f.FetchDocument(context.Background(), "", srv.URL); err != nil {
		t.Fatalf("FetchDocument: %v", err)
	}

	if ua != UserAgent {
		t.Errorf("User-Agent = %q", ua)
	}
	if lang != AcceptLanguage {
		t.Errorf("Accept-Language = %q", lang)
	}
}

func TestFetchDocumentConnectionRefused(t *testing.T) {
	f := NewFetcher(0)
	_, err := f.FetchDocument(context.Background(), "", "http://127.0.0.1:1")
	if err == nil {
		t.Fatal("expected error for refused connection")
	}
	var ff *FetchFailure
	if !errors.As(err, &ff) {
		t.Fatalf("error = %T, want *FetchFailure", err)
	}
	if ff.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for transport error", ff.StatusCode)
	}
}
