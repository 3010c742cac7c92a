package documents_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"joel-backend/internal/bootstrap"
	sharedauth "joel-backend/internal/shared/auth"
	"joel-backend/internal/shared/config"
)

func newTestApp(t *testing.T) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		LocalStoreDir:   t.TempDir(),
		Env:             "dev",
		ObjectStoreType: "local",
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app
}

func TestDocumentsUploadAndList(t *testing.T) {
	app := newTestApp(t)
	router := app.Router
	token := signTestToken(t, "google:user-1")

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fileWriter, err := writer.CreateFormFile("file", "hello.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fileWriter.Write([]byte("hello world")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		DocumentID string `json:"documentId"`
		FileName   string `json:"fileName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.DocumentID == "" {
		t.Fatalf("expected documentId, got empty")
	}

	reqGet := httptest.NewRequest(http.MethodGet, "/api/documents/"+created.DocumentID, nil)
	reqGet.Header.Set("Authorization", "Bearer "+token)
	respGet := httptest.NewRecorder()
	router.ServeHTTP(respGet, reqGet)

	if respGet.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", respGet.Code, respGet.Body.String())
	}

	var fetched struct {
		DocumentID string `json:"documentId"`
		FileName   string `json:"fileName"`
	}
	if err := json.NewDecoder(respGet.Body).Decode(&fetched); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if fetched.FileName != "hello.txt" {
		t.Fatalf("expected fileName hello.txt, got %s", fetched.FileName)
	}

	reqList := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	reqList.Header.Set("Authorization", "Bearer "+token)
	respList := httptest.NewRecorder()
	router.ServeHTTP(respList, reqList)

	if respList.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", respList.Code)
	}

	var listed []struct {
		DocumentID string `json:"documentId"`
	}
	if err := json.NewDecoder(respList.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listed) != 1 || listed[0].DocumentID != created.DocumentID {
		t.Fatalf("expected one listed document %s, got %+v", created.DocumentID, listed)
	}
}

func TestDocumentsDeleteHidesDocument(t *testing.T) {
	app := newTestApp(t)
	router := app.Router

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fileWriter, _ := writer.CreateFormFile("file", "notes.md")
	if _, err := fileWriter.Write([]byte("# notes")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		DocumentID string `json:"documentId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	reqDel := httptest.NewRequest(http.MethodDelete, "/api/documents/"+created.DocumentID, nil)
	addGuestHeader(reqDel)
	respDel := httptest.NewRecorder()
	router.ServeHTTP(respDel, reqDel)
	if respDel.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", respDel.Code)
	}

	reqGet := httptest.NewRequest(http.MethodGet, "/api/documents/"+created.DocumentID, nil)
	addGuestHeader(reqGet)
	respGet := httptest.NewRecorder()
	router.ServeHTTP(respGet, reqGet)
	if respGet.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 after delete, got %d", respGet.Code)
	}
}

func addGuestHeader(req *http.Request) {
	req.Header.Set("X-Guest-Id", "test-guest")
}

func signTestToken(t *testing.T, sub string) string {
	t.Helper()
	token, err := sharedauth.SignJWT(sharedauth.Claims{Sub: sub, Email: "user@example.com"})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}
