// Package images provides illustrative figures for generated reports.
//
// Sources are tried in order: AI image generation, Pixabay stock search,
// then a locally drawn decorative banner. Every source failing still
// yields an image, so callers never need to handle a missing figure.
package images

import (
	"context"
	"log"
	"strings"
	"sync"
)

// Visual style per professional area, fed into the generation prompt.
var areaStyles = map[string]string{
	"financeiro":  "corporate finance, charts, business graphs, blue and navy theme",
	"juridico":    "legal, scales of justice, formal documents, dark wood tones",
	"saude":       "medical, healthcare, clean white and blue, clinical",
	"estetica":    "beauty, spa, soft pastels, elegant and luxurious",
	"educacao":    "education, books, learning, warm and inviting",
	"tecnologia":  "technology, digital, futuristic, blue neon accents",
	"treinamento": "fitness, training, dynamic, energetic colors",
	"protocolo":   "protocol, clinical procedures, organized, clean",
	"marketing":   "marketing, creative, colorful, modern advertising",
	"engenharia":  "engineering, blueprints, technical, precise",
	"outro":       "professional, corporate, clean modern design",
}

// Stock search terms per professional area, appended to the query.
var areaKeywords = map[string]string{
	"financeiro":  "finance business chart investment",
	"juridico":    "law justice legal court",
	"saude":       "health medical healthcare",
	"estetica":    "beauty spa aesthetics",
	"educacao":    "education learning school",
	"tecnologia":  "technology digital software",
	"treinamento": "training coaching professional",
	"protocolo":   "protocol compliance standards",
	"marketing":   "marketing strategy branding",
	"engenharia":  "engineering architecture blueprint",
	"outro":       "business professional report",
}

func styleForArea(area string) string {
	if s, ok := areaStyles[area]; ok {
		return s
	}
	return areaStyles["outro"]
}

func keywordsForArea(area string) string {
	if s, ok := areaKeywords[area]; ok {
		return s
	}
	return areaKeywords["outro"]
}

// Generator produces an image from a text prompt. Implemented by the
// OpenAI client; nil when no key is configured.
type Generator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// StockSearch finds a stock photo for a query. Implemented by the
// Pixabay client; nil when no key is configured.
type StockSearch interface {
	Search(ctx context.Context, query, area string) ([]byte, error)
}

// Service resolves report figures through the source cascade with an
// in-memory cache keyed by area and query.
type Service struct {
	Gen   Generator
	Stock StockSearch

	mu    sync.Mutex
	cache map[string][]byte
}

// NewService wires the cascade from the configured API keys. Either key
// may be empty; the decorative fallback needs none.
func NewService(openAIKey, pixabayKey string) *Service {
	svc := &Service{}
	if gen := NewOpenAIGenerator(openAIKey); gen != nil {
		svc.Gen = gen
	}
	if stock := NewPixabayClient(pixabayKey); stock != nil {
		svc.Stock = stock
	}
	return svc
}

// Fetch returns a PNG or JPEG for the query, walking the cascade until
// one source answers. The decorative fallback cannot fail, so the error
// is always nil today; the signature leaves room for sources that must
// report one.
func (s *Service) Fetch(ctx context.Context, area, query string) ([]byte, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		query = "visão geral"
	}

	key := area + "|" + strings.ToLower(query)
	s.mu.Lock()
	if s.cache == nil {
		s.cache = make(map[string][]byte)
	}
	if img, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return img, nil
	}
	s.mu.Unlock()

	img := s.resolve(ctx, area, query)

	s.mu.Lock()
	s.cache[key] = img
	s.mu.Unlock()
	return img, nil
}

func (s *Service) resolve(ctx context.Context, area, query string) []byte {
	if s.Gen != nil {
		img, err := s.Gen.Generate(ctx, buildPrompt(query, area))
		if err == nil && len(img) > 0 {
			return img
		}
		if err != nil {
			log.Printf("images: generation failed, trying stock: %v", err)
		}
	}

	if s.Stock != nil {
		img, err := s.Stock.Search(ctx, query, area)
		if err == nil && len(img) > 0 {
			return img
		}
		if err != nil {
			log.Printf("images: stock search failed, using decorative: %v", err)
		}
	}

	return decorativeBanner(query, area)
}

// buildPrompt shapes the generation request for report-grade output.
func buildPrompt(topic, area string) string {
	var b strings.Builder
	b.WriteString("Professional illustration for a business report about: ")
	b.WriteString(topic)
	b.WriteString(". Style: ")
	b.WriteString(styleForArea(area))
	b.WriteString(". Clean, modern design suitable for executive presentations. ")
	b.WriteString("No text, no watermarks, no logos. 16:9 aspect ratio composition.")
	return b.String()
}
