package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegistrySkipsNilAndSelectsInOrder(t *testing.T) {
	reg := NewRegistry(NewTavilySearch(""), NewArxivSearch(), NewPubMedSearch())

	if _, ok := reg.Get(KeyWebSearch); ok {
		t.Fatal("unset tavily key should leave web search unconfigured")
	}

	selected := reg.Select([]string{KeyPubMed, KeyArxiv, KeyFinance})
	if len(selected) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(selected))
	}
	if selected[0].Key() != KeyPubMed || selected[1].Key() != KeyArxiv {
		t.Fatalf("order not preserved: %s, %s", selected[0].Key(), selected[1].Key())
	}
}

func TestBaseToolsForArea(t *testing.T) {
	if got := BaseToolsForArea("financeiro"); len(got) != 1 || got[0] != KeyFinance {
		t.Fatalf("financeiro base tools = %v", got)
	}
	if got := BaseToolsForArea("juridico"); len(got) != 0 {
		t.Fatalf("juridico base tools = %v", got)
	}
}

func TestTavilyRunFormatsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"title":"Mercado 2026","url":"https://example.com/a","content":"resumo do artigo"}]}`))
	}))
	defer srv.Close()

	tool := NewTavilySearch("key")
	tool.Endpoint = srv.URL
	tool.HTTP = srv.Client()

	out, err := tool.Run(context.Background(), "mercado de estética")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "Mercado 2026") || !strings.Contains(out, "https://example.com/a") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestTavilyRunErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	tool := NewTavilySearch("key")
	tool.Endpoint = srv.URL
	tool.HTTP = srv.Client()

	if _, err := tool.Run(context.Background(), "q"); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestNormalizeTicker(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"$AAPL", "AAPL"},
		{"PETR4", "PETR4.SA"},
		{"VALE3 cotação atual", "VALE3.SA"},
		{"msft", "MSFT"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := normalizeTicker(tc.in); got != tc.want {
			t.Errorf("normalizeTicker(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFinanceRunParsesQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"PETR4.SA","currency":"BRL","regularMarketPrice":41.2,"previousClose":40.0}}]}}`))
	}))
	defer srv.Close()

	tool := NewFinanceQuotes()
	tool.Endpoint = srv.URL + "/"
	tool.HTTP = srv.Client()

	out, err := tool.Run(context.Background(), "PETR4")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "PETR4.SA") || !strings.Contains(out, "BRL") {
		t.Fatalf("unexpected output: %q", out)
	}
}
