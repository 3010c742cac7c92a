package tools

import (
	"context"
	"net/http"
	"time"
)

// Tool is an external data source the agent can call with a query string.
// Results come back as a plain-text block ready to feed into the model.
type Tool interface {
	Key() string
	Description() string
	Run(ctx context.Context, query string) (string, error)
}

// Tool keys shared with the query planner.
const (
	KeyWebSearch = "web_search"
	KeyPubMed    = "pubmed"
	KeyArxiv     = "arxiv"
	KeyFinance   = "finance"
)

// areaBaseTools maps a professional area to the tools it gets by default,
// before the query planner applies content-based overrides.
var areaBaseTools = map[string][]string{
	"financeiro":  {KeyFinance},
	"juridico":    {},
	"saude":       {KeyPubMed},
	"estetica":    {KeyPubMed},
	"educacao":    {KeyArxiv},
	"tecnologia":  {KeyArxiv},
	"treinamento": {KeyPubMed},
	"protocolo":   {KeyPubMed},
	"marketing":   {},
	"engenharia":  {KeyArxiv},
	"outro":       {},
}

// BaseToolsForArea returns the default tool keys for a professional area.
func BaseToolsForArea(area string) []string {
	return areaBaseTools[area]
}

// Registry holds the configured tool implementations by key.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry builds the registry from the available clients. Nil tools are
// skipped so an unset API key simply leaves that tool out.
func NewRegistry(list ...Tool) *Registry {
	r := &Registry{tools: map[string]Tool{}}
	for _, t := range list {
		if t != nil {
			r.tools[t.Key()] = t
		}
	}
	return r
}

// Get returns the tool for a key, if configured.
func (r *Registry) Get(key string) (Tool, bool) {
	t, ok := r.tools[key]
	return t, ok
}

// Select returns the configured tools among the requested keys, preserving
// the requested order.
func (r *Registry) Select(keys []string) []Tool {
	var out []Tool
	for _, k := range keys {
		if t, ok := r.tools[k]; ok {
			out = append(out, t)
		}
	}
	return out
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}
