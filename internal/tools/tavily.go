package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// TavilySearch queries the Tavily web search API.
type TavilySearch struct {
	APIKey     string
	MaxResults int
	Endpoint   string
	HTTP       *http.Client
}

// NewTavilySearch returns a web search tool, or nil when no key is set.
func NewTavilySearch(apiKey string) *TavilySearch {
	if strings.TrimSpace(apiKey) == "" {
		return nil
	}
	return &TavilySearch{APIKey: apiKey, MaxResults: 3}
}

func (t *TavilySearch) Key() string { return KeyWebSearch }

func (t *TavilySearch) Description() string {
	return "Busca na web por informações atuais. Recebe uma query de busca e retorna títulos, URLs e resumos dos resultados."
}

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Run executes a web search and formats the results as a text block.
func (t *TavilySearch) Run(ctx context.Context, query string) (string, error) {
	maxResults := t.MaxResults
	if maxResults <= 0 {
		maxResults = 3
	}
	payload, err := json.Marshal(tavilyRequest{APIKey: t.APIKey, Query: query, MaxResults: maxResults})
	if err != nil {
		return "", err
	}

	endpoint := t.Endpoint
	if endpoint == "" {
		endpoint = tavilyEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := t.HTTP
	if client == nil {
		client = httpClient()
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("tavily search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("tavily search: http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("tavily search: decode: %w", err)
	}

	if len(decoded.Results) == 0 {
		return "Nenhum resultado encontrado para: " + query, nil
	}

	var b strings.Builder
	for i, r := range decoded.Results {
		fmt.Fprintf(&b, "%d. %s\n%s\n%s\n\n", i+1, r.Title, r.URL, strings.TrimSpace(r.Content))
	}
	return strings.TrimSpace(b.String()), nil
}

var _ Tool = (*TavilySearch)(nil)
