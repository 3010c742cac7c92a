package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const pubmedBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// PubMedSearch queries the NCBI E-utilities for medical literature.
type PubMedSearch struct {
	Base string
	HTTP *http.Client
}

// NewPubMedSearch returns a PubMed search tool.
func NewPubMedSearch() *PubMedSearch {
	return &PubMedSearch{}
}

func (p *PubMedSearch) Key() string { return KeyPubMed }

func (p *PubMedSearch) Description() string {
	return "Busca artigos médicos e científicos no PubMed. Recebe termos de busca (preferencialmente em inglês) e retorna títulos e fontes dos artigos."
}

type pubmedSearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type pubmedSummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type pubmedArticle struct {
	Title   string `json:"title"`
	Source  string `json:"source"`
	PubDate string `json:"pubdate"`
}

// Run searches PubMed and returns up to three article summaries.
func (p *PubMedSearch) Run(ctx context.Context, query string) (string, error) {
	base := p.Base
	if base == "" {
		base = pubmedBase
	}
	client := p.HTTP
	if client == nil {
		client = httpClient()
	}

	searchURL := fmt.Sprintf("%s/esearch.fcgi?db=pubmed&retmode=json&retmax=3&term=%s", base, url.QueryEscape(query))
	var search pubmedSearchResponse
	if err := getJSON(ctx, client, searchURL, &search); err != nil {
		return "", fmt.Errorf("pubmed search: %w", err)
	}
	ids := search.ESearchResult.IDList
	if len(ids) == 0 {
		return "Nenhum artigo encontrado para: " + query, nil
	}

	summaryURL := fmt.Sprintf("%s/esummary.fcgi?db=pubmed&retmode=json&id=%s", base, strings.Join(ids, ","))
	var summary pubmedSummaryResponse
	if err := getJSON(ctx, client, summaryURL, &summary); err != nil {
		return "", fmt.Errorf("pubmed summary: %w", err)
	}

	var b strings.Builder
	n := 0
	for _, id := range ids {
		raw, ok := summary.Result[id]
		if !ok {
			continue
		}
		var art pubmedArticle
		if err := json.Unmarshal(raw, &art); err != nil || art.Title == "" {
			continue
		}
		n++
		fmt.Fprintf(&b, "%d. %s (%s, %s)\nhttps://pubmed.ncbi.nlm.nih.gov/%s/\n\n", n, art.Title, art.Source, art.PubDate, id)
	}
	if n == 0 {
		return "Nenhum artigo encontrado para: " + query, nil
	}
	return strings.TrimSpace(b.String()), nil
}

func getJSON(ctx context.Context, client *http.Client, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var _ Tool = (*PubMedSearch)(nil)
