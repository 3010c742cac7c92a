package tools

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const arxivEndpoint = "https://export.arxiv.org/api/query"

// ArxivSearch queries the arXiv Atom API for academic papers.
type ArxivSearch struct {
	Endpoint string
	HTTP     *http.Client
}

// NewArxivSearch returns an arXiv search tool.
func NewArxivSearch() *ArxivSearch {
	return &ArxivSearch{}
}

func (a *ArxivSearch) Key() string { return KeyArxiv }

func (a *ArxivSearch) Description() string {
	return "Busca papers acadêmicos no arXiv. Recebe termos de busca em inglês e retorna títulos, resumos e links dos papers."
}

type arxivFeed struct {
	Entries []struct {
		Title   string `xml:"title"`
		Summary string `xml:"summary"`
		ID      string `xml:"id"`
	} `xml:"entry"`
}

// Run searches arXiv and returns up to three paper summaries.
func (a *ArxivSearch) Run(ctx context.Context, query string) (string, error) {
	endpoint := a.Endpoint
	if endpoint == "" {
		endpoint = arxivEndpoint
	}
	reqURL := fmt.Sprintf("%s?search_query=all:%s&max_results=3", endpoint, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}

	client := a.HTTP
	if client == nil {
		client = httpClient()
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("arxiv search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("arxiv search: http status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("arxiv search: read: %w", err)
	}

	var feed arxivFeed
	if err := xml.Unmarshal(raw, &feed); err != nil {
		return "", fmt.Errorf("arxiv search: parse: %w", err)
	}

	if len(feed.Entries) == 0 {
		return "Nenhum paper encontrado para: " + query, nil
	}

	var b strings.Builder
	for i, e := range feed.Entries {
		summary := strings.Join(strings.Fields(e.Summary), " ")
		if len(summary) > 300 {
			summary = summary[:300] + "..."
		}
		fmt.Fprintf(&b, "%d. %s\n%s\n%s\n\n", i+1, strings.TrimSpace(e.Title), strings.TrimSpace(e.ID), summary)
	}
	return strings.TrimSpace(b.String()), nil
}

var _ Tool = (*ArxivSearch)(nil)
