package images

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const pixabayEndpoint = "https://pixabay.com/api/"

// Pixabay caps queries at 100 chars and we cap downloads at 500KB,
// enough for a web-format photo.
const (
	pixabayMaxQueryLen    = 100
	pixabayMaxDownloadLen = 500 * 1024
)

// PixabayClient searches royalty-free stock photos.
type PixabayClient struct {
	APIKey   string
	Endpoint string
	HTTP     *http.Client
}

// NewPixabayClient returns a client, or nil when no key is set.
func NewPixabayClient(apiKey string) *PixabayClient {
	if strings.TrimSpace(apiKey) == "" {
		return nil
	}
	return &PixabayClient{APIKey: apiKey}
}

type pixabayResponse struct {
	Hits []struct {
		WebformatURL string `json:"webformatURL"`
	} `json:"hits"`
}

// Search finds one horizontal photo matching the query enriched with
// the area's keywords, then downloads it.
func (p *PixabayClient) Search(ctx context.Context, query, area string) ([]byte, error) {
	full := query + " " + keywordsForArea(area)
	if len(full) > pixabayMaxQueryLen {
		full = full[:pixabayMaxQueryLen]
	}

	endpoint := p.Endpoint
	if endpoint == "" {
		endpoint = pixabayEndpoint
	}
	params := url.Values{}
	params.Set("key", p.APIKey)
	params.Set("q", full)
	params.Set("image_type", "photo")
	params.Set("orientation", "horizontal")
	params.Set("min_width", "800")
	params.Set("per_page", strconv.Itoa(3))
	params.Set("safesearch", "true")
	params.Set("category", "business")
	params.Set("lang", "pt")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	client := p.HTTP
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pixabay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("pixabay: http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded pixabayResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("pixabay: decode: %w", err)
	}
	if len(decoded.Hits) == 0 || decoded.Hits[0].WebformatURL == "" {
		return nil, fmt.Errorf("pixabay: no results for %q", query)
	}

	return p.download(ctx, client, decoded.Hits[0].WebformatURL)
}

func (p *PixabayClient) download(ctx context.Context, client *http.Client, imgURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imgURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pixabay download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pixabay download: http status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, pixabayMaxDownloadLen+1))
	if err != nil {
		return nil, fmt.Errorf("pixabay download: %w", err)
	}
	if len(data) > pixabayMaxDownloadLen {
		return nil, fmt.Errorf("pixabay download: image exceeds %dKB", pixabayMaxDownloadLen/1024)
	}
	return data, nil
}

var _ StockSearch = (*PixabayClient)(nil)
