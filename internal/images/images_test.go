package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestFetchUsesGeneratorFirst(t *testing.T) {
	want := []byte("generated-image")
	svc := &Service{
		Gen: generatorFunc(func(ctx context.Context, prompt string) ([]byte, error) {
			return want, nil
		}),
		Stock: stockFunc(func(ctx context.Context, query, area string) ([]byte, error) {
			t.Fatal("stock search should not run when generation succeeds")
			return nil, nil
		}),
	}

	got, err := svc.Fetch(context.Background(), "financeiro", "fluxo de caixa")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("expected generator output, got %q", got)
	}
}

func TestFetchFallsBackToStock(t *testing.T) {
	want := []byte("stock-photo")
	svc := &Service{
		Gen: generatorFunc(func(ctx context.Context, prompt string) ([]byte, error) {
			return nil, errors.New("quota exceeded")
		}),
		Stock: stockFunc(func(ctx context.Context, query, area string) ([]byte, error) {
			return want, nil
		}),
	}

	got, err := svc.Fetch(context.Background(), "saude", "protocolos")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("expected stock output, got %q", got)
	}
}

func TestFetchDecorativeFallback(t *testing.T) {
	svc := &Service{}

	got, err := svc.Fetch(context.Background(), "juridico", "compliance")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !bytes.HasPrefix(got, pngMagic) {
		t.Fatalf("expected PNG fallback, got prefix %v", got[:4])
	}
}

func TestFetchCachesByQuery(t *testing.T) {
	calls := 0
	svc := &Service{
		Gen: generatorFunc(func(ctx context.Context, prompt string) ([]byte, error) {
			calls++
			return []byte("img"), nil
		}),
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := svc.Fetch(ctx, "outro", "Mercado"); err != nil {
			t.Fatalf("Fetch: %v", err)
		}
	}
	if _, err := svc.Fetch(ctx, "outro", "mercado"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 generator call, got %d", calls)
	}
}

func TestDecorativeBannerDeterministic(t *testing.T) {
	a := decorativeBanner("Análise de Mercado", "financeiro")
	b := decorativeBanner("Análise de Mercado", "financeiro")
	if !bytes.Equal(a, b) {
		t.Fatal("banner output changed between runs")
	}
	if !bytes.HasPrefix(a, pngMagic) {
		t.Fatal("banner is not a PNG")
	}
}

func TestOpenAIGeneratorDecodesBase64(t *testing.T) {
	img := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req openAIImageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "dall-e-3" || req.ResponseFormat != "b64_json" {
			t.Errorf("unexpected request %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"b64_json": base64.StdEncoding.EncodeToString(img)}},
		})
	}))
	defer srv.Close()

	gen := NewOpenAIGenerator("test-key")
	gen.Endpoint = srv.URL
	gen.HTTP = srv.Client()

	got, err := gen.Generate(context.Background(), "test prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !bytes.Equal(got, img) {
		t.Fatalf("decoded image mismatch: %v", got)
	}
}

func TestOpenAIGeneratorErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"billing"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	gen := NewOpenAIGenerator("test-key")
	gen.Endpoint = srv.URL
	gen.HTTP = srv.Client()

	if _, err := gen.Generate(context.Background(), "p"); err == nil {
		t.Fatal("expected error on 429")
	}
}

func TestPixabaySearchDownloadsFirstHit(t *testing.T) {
	photo := []byte("jpeg-bytes")
	mux := http.NewServeMux()
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("key") != "px-key" {
			t.Errorf("missing api key, got %q", q.Get("key"))
		}
		if q.Get("safesearch") != "true" {
			t.Errorf("safesearch not set")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"hits": []map[string]string{{"webformatURL": "http://" + r.Host + "/photo.jpg"}},
		})
	})
	mux.HandleFunc("/photo.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write(photo)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	px := NewPixabayClient("px-key")
	px.Endpoint = srv.URL + "/api/"
	px.HTTP = srv.Client()

	got, err := px.Search(context.Background(), "mercado", "financeiro")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !bytes.Equal(got, photo) {
		t.Fatalf("downloaded photo mismatch: %q", got)
	}
}

func TestPixabaySearchNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"hits": []any{}})
	}))
	defer srv.Close()

	px := NewPixabayClient("px-key")
	px.Endpoint = srv.URL
	px.HTTP = srv.Client()

	if _, err := px.Search(context.Background(), "nada", "outro"); err == nil {
		t.Fatal("expected error when no hits")
	}
}

func TestNewServiceWithoutKeys(t *testing.T) {
	svc := NewService("", "")
	if svc.Gen != nil || svc.Stock != nil {
		t.Fatal("expected nil sources without keys")
	}
}

type generatorFunc func(ctx context.Context, prompt string) ([]byte, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) ([]byte, error) {
	return f(ctx, prompt)
}

type stockFunc func(ctx context.Context, query, area string) ([]byte, error)

func (f stockFunc) Search(ctx context.Context, query, area string) ([]byte, error) {
	return f(ctx, query, area)
}
