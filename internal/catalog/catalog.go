// Package catalog extracts exam date records from the academic information
// system's HTML pages.
//
// Extraction is all-or-nothing: a page missing any expected table or row is
// reported as ErrParse, a transport problem as ErrFetch. Nothing is guessed.
package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Error classes of the extractor.
var (
	ErrInvalidLink = errors.New("invalid catalog link")
	ErrFetch       = errors.New("catalog fetch failed")
	ErrParse       = errors.New("unexpected catalog page structure")
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// DefaultTimeout bounds every catalog request.
const DefaultTimeout = 5 * time.Second

const maxBodySize = 5 * 1024 * 1024

// Client downloads and parses catalog pages.
type Client struct {
	client  HTTPClient
	baseURL string
	timeout time.Duration
}

// New creates a Client for the catalog page at baseURL.
func New(client HTTPClient, baseURL string) *Client {
	return &Client{
		client:  client,
		baseURL: baseURL,
		timeout: DefaultTimeout,
	}
}

// SetTimeout overrides DefaultTimeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

// ExtractOfferID returns the catalog identifier of the offered exam date
// carried by the ztid query parameter of link.
func ExtractOfferID(link string) (int64, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidLink, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return 0, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidLink, u.Scheme)
	}
	values := u.Query()[paramOfferID]
	switch {
	case len(values) == 0 || values[0] == "":
		return 0, fmt.Errorf("%w: missing %s parameter", ErrInvalidLink, paramOfferID)
	case len(values) > 1:
		return 0, fmt.Errorf("%w: %s given %d times", ErrInvalidLink, paramOfferID, len(values))
	}
	raw := values[0]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s=%q is not a positive number", ErrInvalidLink, paramOfferID, raw)
	}
	return id, nil
}

// FetchDetail downloads the detail page of an offered exam date.
func (c *Client) FetchDetail(ctx context.Context, offerID int64) (*Detail, error) {
	q := url.Values{}
	q.Set(paramAction, actionDetail)
	q.Set(paramOfferID, strconv.FormatInt(offerID, 10))

	body, err := c.get(ctx, q)
	if err != nil {
		return nil, err
	}
	d, err := ParseDetail(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	d.OfferID = offerID
	return d, nil
}

// FetchCounterofferDates lists the distinct future dates of one subject.
func (c *Client) FetchCounterofferDates(ctx context.Context, subjectCode, faculty, department string) ([]time.Time, error) {
	q := url.Values{}
	q.Set(paramAction, actionSearch)
	q.Set(paramFaculty, faculty)
	q.Set(paramDepartment, department)
	q.Set(paramSubject, subjectCode)
	q.Set(paramFutureOnly, "1")
	q.Set(paramLimit, strconv.Itoa(searchLimit))

	body, err := c.get(ctx, q)
	if err != nil {
		return nil, err
	}
	return ParseCounterofferDates(bytes.NewReader(body))
}

func (c *Client) get(ctx context.Context, q url.Values) ([]byte, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: base url: %w", ErrFetch, err)
	}
	u.RawQuery = q.Encode()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrFetch, err)
	}
	req.Header.Set("User-Agent", "ExamExchange/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: http get: %w", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrFetch, err)
	}
	return body, nil
}
