package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const financeEndpoint = "https://query1.finance.yahoo.com/v8/finance/chart/"

// FinanceQuotes looks up market quotes for a ticker symbol. B3 tickers
// (PETR4) are resolved with the .SA suffix.
type FinanceQuotes struct {
	Endpoint string
	HTTP     *http.Client
}

// NewFinanceQuotes returns a market quote tool.
func NewFinanceQuotes() *FinanceQuotes {
	return &FinanceQuotes{}
}

func (f *FinanceQuotes) Key() string { return KeyFinance }

func (f *FinanceQuotes) Description() string {
	return "Consulta a cotação atual de um ativo. Recebe um ticker (ex: AAPL, PETR4) e retorna preço, moeda e variação recente."
}

type quoteResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				Currency           string  `json:"currency"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"previousClose"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

// Run fetches the latest quote for the ticker in the query.
func (f *FinanceQuotes) Run(ctx context.Context, query string) (string, error) {
	symbol := normalizeTicker(query)
	if symbol == "" {
		return "Ticker inválido: " + query, nil
	}

	endpoint := f.Endpoint
	if endpoint == "" {
		endpoint = financeEndpoint
	}
	client := f.HTTP
	if client == nil {
		client = httpClient()
	}

	var decoded quoteResponse
	if err := getJSON(ctx, client, endpoint+url.PathEscape(symbol), &decoded); err != nil {
		return "", fmt.Errorf("finance quote %s: %w", symbol, err)
	}

	if len(decoded.Chart.Result) == 0 {
		return "Nenhuma cotação encontrada para: " + symbol, nil
	}
	meta := decoded.Chart.Result[0].Meta

	change := 0.0
	if meta.PreviousClose > 0 {
		change = (meta.RegularMarketPrice - meta.PreviousClose) / meta.PreviousClose * 100
	}
	return fmt.Sprintf("%s: %.2f %s (%+.2f%% vs fechamento anterior)", meta.Symbol, meta.RegularMarketPrice, meta.Currency, change), nil
}

// normalizeTicker extracts the ticker symbol from a free-form query. B3
// symbols (four letters + digits) get the Yahoo .SA suffix.
func normalizeTicker(query string) string {
	fields := strings.Fields(strings.TrimSpace(query))
	if len(fields) == 0 {
		return ""
	}
	symbol := strings.ToUpper(strings.TrimPrefix(fields[0], "$"))
	if symbol == "" {
		return ""
	}
	if brTickerSuffix(symbol) {
		return symbol + ".SA"
	}
	return symbol
}

func brTickerSuffix(symbol string) bool {
	if len(symbol) < 5 || len(symbol) > 6 {
		return false
	}
	for _, r := range symbol[:4] {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	for _, r := range symbol[4:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var _ Tool = (*FinanceQuotes)(nil)
