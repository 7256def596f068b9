package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"exam_exchange/internal/model"
)

type mockTransport struct {
	body       string
	statusCode int
	err        error
	lastURL    string
}

func (m *mockTransport) Do(req *http.Request) (*http.Response, error) {
	m.lastURL = req.URL.String()
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: m.statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(m.body)),
	}, nil
}

// blockingTransport waits for the request context to expire.
type blockingTransport struct{}

func (blockingTransport) Do(req *http.Request) (*http.Response, error) {
	<-req.Context().Done()
	return nil, req.Context().Err()
}

func loadFixture(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test-only fixture loading
	if err != nil {
		t.Fatalf("read fixture %s: %v", path, err)
	}
	return string(data)
}

func TestExtractOfferID(t *testing.T) {
	tests := []struct {
		name    string
		link    string
		want    int64
		wantErr bool
	}{
		{
			name: "detail link",
			link: "https://catalog.example/studium/term_st2/index.php?do=detail&ztid=813811",
			want: 813811,
		},
		{
			name: "ztid among other parameters",
			link: " https://catalog.example/index.php?id=abc&tid=&ztid=42&lang=en ",
			want: 42,
		},
		{name: "missing ztid", link: "https://catalog.example/index.php?do=detail", wantErr: true},
		{name: "non-numeric ztid", link: "https://catalog.example/index.php?ztid=81x", wantErr: true},
		{name: "negative ztid", link: "https://catalog.example/index.php?ztid=-5", wantErr: true},
		{name: "not a url", link: "813811", wantErr: true},
		{name: "repeated ztid", link: "https://catalog.example/index.php?ztid=813811&ztid=abc", wantErr: true},
		{name: "repeated identical ztid", link: "https://catalog.example/index.php?ztid=1&ztid=1", wantErr: true},
		{name: "unsupported scheme", link: "ftp://catalog.example/?ztid=1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractOfferID(tt.link)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLink) {
					t.Fatalf("expected ErrInvalidLink, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExtractOfferID mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseDetail(t *testing.T) {
	tests := []struct {
		name         string
		fixture      string
		wantOffered  time.Time
		wantSubjects []model.Subject
		wantErr      error
	}{
		{
			name:        "two-row layout",
			fixture:     "detail_two_row.html",
			wantOffered: time.Date(2024, 6, 12, 8, 0, 0, 0, time.UTC),
			wantSubjects: []model.Subject{
				{Code: "NPRG030", Name: "Programming I"},
				{Code: "NPRG062", Name: "Introduction to Algorithms"},
			},
		},
		{
			name:         "single-row layout with duplicate subject row",
			fixture:      "detail_single_row.html",
			wantOffered:  time.Date(2024, 6, 12, 8, 0, 0, 0, time.UTC),
			wantSubjects: []model.Subject{{Code: "NMAI057", Name: "Linear Algebra I"}},
		},
		{
			name:        "subject table without rows",
			fixture:     "detail_no_subjects.html",
			wantOffered: time.Date(2024, 6, 12, 8, 0, 0, 0, time.UTC),
		},
		{name: "subject table missing", fixture: "detail_missing_subjects.html", wantErr: ErrParse},
		{name: "error page", fixture: "detail_error_page.html", wantErr: ErrParse},
		{name: "date in unknown layout", fixture: "detail_bad_date.html", wantErr: ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := loadFixture(t, "../../testdata/"+tt.fixture)
			got, err := ParseDetail(strings.NewReader(html))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if errors.Is(err, ErrFetch) {
					t.Fatalf("parse failure classified as fetch error: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.wantOffered, got.OfferedAt); diff != "" {
				t.Errorf("offered mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantSubjects, got.Subjects); diff != "" {
				t.Errorf("subjects mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFetchDetail(t *testing.T) {
	html := loadFixture(t, "../../testdata/detail_two_row.html")

	tests := []struct {
		name      string
		transport HTTPClient
		wantErr   error
	}{
		{name: "successful fetch", transport: &mockTransport{body: html, statusCode: 200}},
		{name: "http error status", transport: &mockTransport{body: "gone", statusCode: 503}, wantErr: ErrFetch},
		{name: "network error", transport: &mockTransport{err: io.ErrUnexpectedEOF}, wantErr: ErrFetch},
		{name: "timeout", transport: blockingTransport{}, wantErr: ErrFetch},
		{name: "error page", transport: &mockTransport{body: "<html><body>Error</body></html>", statusCode: 200}, wantErr: ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.transport, "https://catalog.example/index.php")
			c.SetTimeout(20 * time.Millisecond)

			got, err := c.FetchDetail(context.Background(), 813811)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(int64(813811), got.OfferID); diff != "" {
				t.Errorf("offer id mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(2, len(got.Subjects)); diff != "" {
				t.Errorf("subject count mismatch (-want +got):\n%s", diff)
			}
			m := tt.transport.(*mockTransport)
			if diff := cmp.Diff("https://catalog.example/index.php?do=detail&ztid=813811", m.lastURL); diff != "" {
				t.Errorf("request url mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFetchDetailTimeoutCause(t *testing.T) {
	c := New(blockingTransport{}, "https://catalog.example/index.php")
	c.SetTimeout(10 * time.Millisecond)

	_, err := c.FetchDetail(context.Background(), 1)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded in chain, got %v", err)
	}
}

func TestFetchCounterofferDates(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name    string
		fixture string
		want    []time.Time
		wantErr error
	}{
		{name: "distinct dates sorted", fixture: "listing.html", want: []time.Time{day(20), day(24)}},
		{name: "two slots on the same day", fixture: "listing_same_day.html", want: []time.Time{day(20)}},
		{name: "no rows", fixture: "listing_empty.html", want: nil},
		{name: "bad date", fixture: "listing_bad_date.html", wantErr: ErrParse},
		{name: "not a listing", fixture: "detail_error_page.html", wantErr: ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockTransport{body: loadFixture(t, "../../testdata/"+tt.fixture), statusCode: 200}
			c := New(m, "https://catalog.example/index.php")

			got, err := c.FetchCounterofferDates(context.Background(), "NPRG030", "11320", "32-KSVI")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("dates mismatch (-want +got):\n%s", diff)
			}
			if !strings.Contains(m.lastURL, "predmet=NPRG030") || !strings.Contains(m.lastURL, "budouci=1") {
				t.Errorf("unexpected request url %s", m.lastURL)
			}
		})
	}
}
