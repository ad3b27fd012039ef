package server

import (
	"bytes"
	"context"
	"encoding/json"
	"hash/fnv"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"rag-chatbot/internal/chromemdb"
	"rag-chatbot/internal/config"
	"rag-chatbot/internal/ingest"
	"rag-chatbot/internal/models"
	"rag-chatbot/internal/rag"
)

type hashEmbedder struct{}

func embedText(text string) []float32 {
	v := make([]float32, 16)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		v[h.Sum32()%16]++
	}
	var sum float32
	for _, x := range v {
		sum += x
	}
	if sum == 0 {
		v[0] = 1
	}
	return v
}

func (hashEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = embedText(text)
	}
	return out, nil
}

func (hashEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return embedText(text), nil
}

type cannedGenerator struct {
	answer string
}

func (g cannedGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	return g.answer, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := chromemdb.NewStore(&config.StoreConfig{Collection: "test_chunks", InMemory: true})
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}

	embedder := hashEmbedder{}
	ragCfg := &config.RAGConfig{ChunkSize: 500, ChunkOverlap: 50, TopK: 5}
	pipeline := ingest.NewPipeline(store, embedder, ragCfg)
	ragService := rag.NewRAG(store, embedder, cannedGenerator{answer: "The mitochondria."}, ragCfg.TopK)

	return New(&config.ServerConfig{Addr: ":0", UploadDir: t.TempDir()}, pipeline, ragService)
}

func postJSON(t *testing.T, srv *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	return rec
}

func postFile(t *testing.T, srv *Server, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	return rec
}

func TestChatEmptyQuestion(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/api/chat", ChatRequest{Question: ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestChatEmptyStoreFallback(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/api/chat", ChatRequest{Question: "What is the capital of France?"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Answer != models.NoContextAnswer {
		t.Fatalf("expected fallback answer, got %q", resp.Answer)
	}
	if len(resp.Sources) != 0 {
		t.Fatalf("expected no sources, got %d", len(resp.Sources))
	}
}

func TestIngestUnsupportedExtension(t *testing.T) {
	srv := newTestServer(t)

	rec := postFile(t, srv, "malware.exe", "nope")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestIngestMissingFile(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", nil)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestIngestThenChatCitesSource(t *testing.T) {
	srv := newTestServer(t)

	rec := postFile(t, srv, "bio.txt", "The mitochondria is the powerhouse of the cell.")
	if rec.Code != http.StatusOK {
		t.Fatalf("ingest failed: %d: %s", rec.Code, rec.Body.String())
	}
	var ingestResp IngestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &ingestResp); err != nil {
		t.Fatalf("decoding ingest response: %v", err)
	}
	if ingestResp.Filename != "bio.txt" || ingestResp.ChunksAdded != 1 || ingestResp.Status != "Success" {
		t.Fatalf("unexpected ingest response: %+v", ingestResp)
	}

	rec = postJSON(t, srv, "/api/chat", ChatRequest{Question: "What is the powerhouse of the cell?"})
	if rec.Code != http.StatusOK {
		t.Fatalf("chat failed: %d: %s", rec.Code, rec.Body.String())
	}
	var chatResp ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &chatResp); err != nil {
		t.Fatalf("decoding chat response: %v", err)
	}
	if chatResp.Answer != "The mitochondria." {
		t.Fatalf("unexpected answer: %q", chatResp.Answer)
	}
	if len(chatResp.Sources) == 0 {
		t.Fatal("expected at least one source")
	}
	first := chatResp.Sources[0]
	if first.SourceFile != "bio.txt" || first.PageNumber != 1 {
		t.Fatalf("unexpected first source: %+v", first)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
