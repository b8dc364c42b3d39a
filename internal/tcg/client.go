package tcg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Lixing-Zhang/hobbyshop/internal/apperr"
	"github.com/Lixing-Zhang/hobbyshop/internal/models"
)

var ErrEmptyQuery = errors.New("search query is empty")

// Query is what the admin typed and whether it is a card id or a name
type Query struct {
	Text string
	ByID bool
}

func (q Query) param() string {
	if q.ByID {
		return "id"
	}
	return "name"
}

// Client searches the card database over HTTP
type Client struct {
	httpClient *http.Client
	apiKey     string
	normalizer *Normalizer
	logger     *slog.Logger
}

// NewClient creates a client sending apiKey in the x-api-key header
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		normalizer: NewNormalizer(DefaultSchema),
		logger:     logger,
	}
}

type searchResponse struct {
	Data []json.RawMessage `json:"data"`
}

// Search issues GET <endpoint>?name=<q> (or id=<q>) and normalises the
// data array. Transport failures, non-2xx statuses and undecodable bodies
// are returned as FetchError.
func (c *Client) Search(ctx context.Context, endpoint Endpoint, q Query) ([]models.CardSummary, error) {
	if endpoint.ComingSoon() {
		return nil, ErrComingSoon
	}
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, ErrEmptyQuery
	}

	target, err := url.Parse(endpoint.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint for %s: %w", endpoint.Name, err)
	}
	params := target.Query()
	params.Set(q.param(), text)
	target.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.NewFetchError("tcg.Search", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("card search",
		"category", endpoint.Name,
		"by", q.param(),
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.NewFetchError("tcg.Search", fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperr.NewFetchError("tcg.Search", fmt.Errorf("failed to decode response: %w", err))
	}

	records := make([]map[string]interface{}, 0, len(body.Data))
	for _, raw := range body.Data {
		dec := json.NewDecoder(strings.NewReader(string(raw)))
		dec.UseNumber()

		var record map[string]interface{}
		if err := dec.Decode(&record); err != nil || record == nil {
			continue
		}
		records = append(records, record)
	}

	return c.normalizer.NormalizeAll(records), nil
}
