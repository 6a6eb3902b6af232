// Package fetch retrieves raw financial statement data from an external
// provider and converts it into canonical StatementPeriod records. This is
// the input boundary of the system: everything downstream is pure
// computation over what this package produces.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"findash/pkg/core/statement"
	"findash/pkg/core/utils"
)

// StatementsResponse is the provider wire format: one company, a list of
// periods, each with a map of line item name to value. A null or absent
// item means "not reported in this filing".
type StatementsResponse struct {
	Symbol     string          `json:"symbol"`
	PeriodType string          `json:"period_type"`
	Statements []StatementJSON `json:"statements"`
}

// StatementJSON is one reporting period on the wire.
type StatementJSON struct {
	EndDate    string              `json:"end_date"` // YYYY-MM-DD
	PeriodType string              `json:"period_type,omitempty"`
	Items      map[string]*float64 `json:"items"`
}

// Client fetches statements over HTTP from a configurable provider base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a provider client. baseURL has no trailing slash, e.g.
// "https://statements.example.com".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  "findash/1.0",
	}
}

// FetchStatements retrieves all reporting periods for one company. JSON
// payloads are decoded leniently (repair, then hjson) because upstream JSON
// quality varies; providers that only expose rendered statement pages are
// handled by the HTML table fallback.
func (c *Client) FetchStatements(ctx context.Context, companyID string, pt statement.PeriodType) ([]statement.StatementPeriod, error) {
	url := fmt.Sprintf("%s/v1/statements?symbol=%s&period=%s", c.baseURL, companyID, pt)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch statements for %s: %w", companyID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch statements for %s: provider returned %d", companyID, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read provider response for %s: %w", companyID, err)
	}

	if isHTML(resp.Header.Get("Content-Type"), body) {
		return ParseStatementTable(bytes.NewReader(body), companyID, pt)
	}
	return DecodeStatements(companyID, pt, string(body))
}

// isHTML detects rendered statement pages: an html content type, or a body
// that opens with markup when the provider mislabels it.
func isHTML(contentType string, body []byte) bool {
	if strings.Contains(contentType, "text/html") {
		return true
	}
	trimmed := strings.TrimSpace(string(body))
	return strings.HasPrefix(trimmed, "<")
}

// DecodeStatements converts a provider payload into StatementPeriod records.
// Exposed separately so file- and fixture-based callers share the decode and
// validation path with the HTTP client.
func DecodeStatements(companyID string, pt statement.PeriodType, payload string) ([]statement.StatementPeriod, error) {
	var wire StatementsResponse
	if err := utils.SmartParse(payload, &wire); err != nil {
		return nil, fmt.Errorf("decode statements for %s: %w", companyID, err)
	}

	periods := make([]statement.StatementPeriod, 0, len(wire.Statements))
	for _, s := range wire.Statements {
		end, err := time.Parse("2006-01-02", s.EndDate)
		if err != nil {
			return nil, fmt.Errorf("decode statements for %s: bad end_date %q: %w", companyID, s.EndDate, err)
		}

		periodType := pt
		if s.PeriodType != "" {
			parsed, err := statement.ParsePeriodType(s.PeriodType)
			if err != nil {
				return nil, fmt.Errorf("decode statements for %s: %w", companyID, err)
			}
			periodType = parsed
		}

		items := make(map[string]statement.Value, len(s.Items))
		for name, v := range s.Items {
			if v == nil {
				items[name] = statement.NotReported()
				continue
			}
			items[name] = statement.Reported(*v)
		}
		periods = append(periods, statement.NewStatementPeriod(companyID, end, periodType, items))
	}

	sort.Slice(periods, func(i, j int) bool {
		return periods[i].EndDate.Before(periods[j].EndDate)
	})
	return periods, nil
}
