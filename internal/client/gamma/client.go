// Package gamma is a thin read-only client for Polymarket's public Gamma
// API, used to import trending binary questions as market drafts.
package gamma

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const DefaultBaseURL = "https://gamma-api.polymarket.com"

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClientWithHost(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

// Market is the subset of the Gamma market payload the importer reads. The
// full body is retained as RawJSON for later inspection.
type Market struct {
	ID       string          `json:"id"`
	Question string          `json:"question"`
	Category string          `json:"category"`
	EndDate  string          `json:"endDate"`
	Active   bool            `json:"active"`
	Closed   bool            `json:"closed"`
	Outcomes string          `json:"outcomes"`
	RawJSON  json.RawMessage `json:"-"`
}

type GetMarketsParams struct {
	Limit  int
	Offset int
	Active *bool
	Closed *bool
}

func (c *Client) GetMarkets(ctx context.Context, params *GetMarketsParams) ([]Market, error) {
	values := url.Values{}
	if params != nil {
		if params.Limit > 0 {
			values.Set("limit", strconv.Itoa(params.Limit))
		}
		if params.Offset > 0 {
			values.Set("offset", strconv.Itoa(params.Offset))
		}
		if params.Active != nil {
			values.Set("active", strconv.FormatBool(*params.Active))
		}
		if params.Closed != nil {
			values.Set("closed", strconv.FormatBool(*params.Closed))
		}
	}
	path := "/markets"
	if len(values) > 0 {
		path += "?" + values.Encode()
	}
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, fmt.Errorf("gamma markets decode: %w", err)
	}
	items := make([]Market, 0, len(raws))
	for _, raw := range raws {
		var item Market
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		item.RawJSON = raw
		items = append(items, item)
	}
	return items, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gamma %s %s: status %d", method, path, resp.StatusCode)
	}
	return body, nil
}
