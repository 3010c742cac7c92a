package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const openAIImagesEndpoint = "https://api.openai.com/v1/images/generations"

// OpenAIGenerator calls the OpenAI images REST API.
type OpenAIGenerator struct {
	APIKey   string
	Model    string
	Size     string
	Endpoint string
	HTTP     *http.Client
}

// NewOpenAIGenerator returns a generator, or nil when no key is set.
func NewOpenAIGenerator(apiKey string) *OpenAIGenerator {
	if strings.TrimSpace(apiKey) == "" {
		return nil
	}
	return &OpenAIGenerator{
		APIKey: apiKey,
		Model:  "dall-e-3",
		Size:   "1792x1024",
	}
}

type openAIImageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Size           string `json:"size"`
	Quality        string `json:"quality"`
	ResponseFormat string `json:"response_format"`
	N              int    `json:"n"`
}

type openAIImageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// Generate renders one image and returns the decoded bytes.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	payload, err := json.Marshal(openAIImageRequest{
		Model:          g.Model,
		Prompt:         prompt,
		Size:           g.Size,
		Quality:        "standard",
		ResponseFormat: "b64_json",
		N:              1,
	})
	if err != nil {
		return nil, err
	}

	endpoint := g.Endpoint
	if endpoint == "" {
		endpoint = openAIImagesEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.APIKey)

	client := g.HTTP
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai images: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("openai images: http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded openAIImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("openai images: decode: %w", err)
	}
	if len(decoded.Data) == 0 || decoded.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("openai images: empty response")
	}

	img, err := base64.StdEncoding.DecodeString(decoded.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("openai images: base64: %w", err)
	}
	return img, nil
}

var _ Generator = (*OpenAIGenerator)(nil)
