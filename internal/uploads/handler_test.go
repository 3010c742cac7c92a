package uploads

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
)

func TestPresignSignedHeadersExcludeContentLength(t *testing.T) {
	cfg := aws.Config{
		Region:      "us-east-1",
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider("AKID", "SECRET", "")),
	}
	client := s3.NewFromConfig(cfg)
	presigner := s3.NewPresignClient(client)

	input := presignInput("bucket", "documents/user/doc/file.pdf")
	out, err := presigner.PresignPutObject(context.Background(), input)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}

	parsed, err := url.Parse(out.URL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}

	signed := parsed.Query().Get("X-Amz-SignedHeaders")
	if signed == "" {
		t.Fatalf("expected X-Amz-SignedHeaders")
	}
	if strings.Contains(signed, "content-length") {
		t.Fatalf("unexpected content-length in signed headers: %s", signed)
	}
	if !strings.Contains(signed, "host") {
		t.Fatalf("expected host in signed headers: %s", signed)
	}
}

func postPresign(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/api"))
	req := httptest.NewRequest(http.MethodPost, "/api/uploads/presign", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestPresignAcceptsMimeTypeAlias(t *testing.T) {
	t.Setenv("UPLOADS_S3_BUCKET", "")

	// mimeType alone passes content-type validation; with no bucket
	// configured the request then fails past validation with a 500.
	resp := postPresign(t, `{"fileName":"doc.pdf","mimeType":"application/pdf","sizeBytes":1024}`)
	if resp.Code == http.StatusBadRequest {
		t.Fatalf("mimeType alias rejected by validation: %s", resp.Body.String())
	}

	resp = postPresign(t, `{"fileName":"doc.exe","mimeType":"application/x-msdownload","sizeBytes":1024}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for disallowed mimeType, got %d", resp.Code)
	}
}
