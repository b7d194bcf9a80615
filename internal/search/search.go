package search

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Result is one web search hit.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Client is a minimal Google Custom Search client. Errors are swallowed at
// this boundary: Query logs and returns an empty result list, never an
// error, because degraded search must not fail the user-facing turn.
type Client struct {
	apiKey     string
	engineID   string
	apiURL     string
	httpClient *http.Client
}

// NewClient creates a search client. apiURL is the Custom Search endpoint
// (e.g. "https://www.googleapis.com/customsearch/v1").
func NewClient(apiKey, engineID, apiURL string, timeout time.Duration) *Client {
	return &Client{
		apiKey:   apiKey,
		engineID: engineID,
		apiURL:   apiURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type searchResponse struct {
	Items []Result `json:"items"`
}

// Query runs a web search and returns up to num results.
func (c *Client) Query(query string, num int) []Result {
	results, err := c.query(query, num)
	if err != nil {
		log.Printf("[search] query failed: %v", err)
		return nil
	}
	if len(results) == 0 {
		log.Printf("[search] no results for query: %s", query)
	}
	return results
}

func (c *Client) query(query string, num int) ([]Result, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(num))

	resp, err := c.httpClient.Get(c.apiURL + "?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading search response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search non-success status=%d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	return parsed.Items, nil
}
