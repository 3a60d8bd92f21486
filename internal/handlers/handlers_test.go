package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/cv-screener/internal/models"
	"alfredoptarigan/cv-screener/internal/repositories"
	"alfredoptarigan/cv-screener/internal/services"
)

type memVectorStore struct {
	mu   sync.Mutex
	docs map[string]*services.CVDocument
}

func (m *memVectorStore) InitCollection(context.Context) error { return nil }

func (m *memVectorStore) Upsert(_ context.Context, doc *services.CVDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.VectorID] = doc
	return nil
}

func (m *memVectorStore) FetchText(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return "", services.ErrCVTextNotFound
	}
	return doc.Text, nil
}

func (m *memVectorStore) SearchSimilar(_ context.Context, _ []float32, limit int) ([]services.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []services.SearchResult
	for _, doc := range m.docs {
		if len(out) == limit {
			break
		}
		out = append(out, services.SearchResult{VectorID: doc.VectorID, Score: 0.9, Text: doc.Text, Filename: doc.Filename})
	}
	return out, nil
}

type constEmbedder struct{}

func (constEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

type rejectingWorker struct{}

func (rejectingWorker) Start(context.Context) {}

func (rejectingWorker) Stop() {}

func (rejectingWorker) Enqueue(services.Task) error {
	return services.ErrQueueFull
}

type testServer struct {
	app     *fiber.App
	vectors *memVectorStore
}

func newTestServer(t *testing.T, worker services.Worker) *testServer {
	t.Helper()
	log := zap.NewNop()

	vectors := &memVectorStore{docs: make(map[string]*services.CVDocument)}
	store := repositories.NewMemoryStore(0)

	if worker == nil {
		w := services.NewWorker(1, 10, 0, log)
		w.Start(context.Background())
		t.Cleanup(w.Stop)
		worker = w
	}

	indexer := services.NewCVIndexer(services.NewTextExtractor(log), constEmbedder{}, vectors, nil, log)
	evaluator := services.NewEvaluatorService(store, vectors, services.NewCVExtractor(nil, 0, log), services.NewScorer(), worker, log)
	search := services.NewSearchService(constEmbedder{}, vectors, 1)

	h := &Handlers{
		Upload:   NewUploadHandler(indexer, 1<<20, log),
		Evaluate: NewEvaluationHandler(evaluator, log),
		Result:   NewResultHandler(evaluator, store, log),
		Search:   NewSearchHandler(search, log),
	}

	app := fiber.New()
	h.Register(app.Group("/api"), 120)
	return &testServer{app: app, vectors: vectors}
}

func (s *testServer) do(t *testing.T, req *http.Request) (int, http.Header, []byte) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header, body
}

func uploadRequest(t *testing.T, field, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload-cv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(method, target string, body any) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func errorMessage(t *testing.T, body []byte, key string) string {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(body, &payload))
	msg, _ := payload[key].(string)
	return msg
}

const sampleCV = `Jane Doe
jane@example.com

Summary
Backend engineer focused on reliability and teamwork.

Skills
Go, Rust, PostgreSQL

Experience
Senior Engineer, Acme (2019 - 2024)

Achievements
Cut p99 latency by 40%
`

func TestUpload(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("plain text is indexed", func(t *testing.T) {
		status, _, body := s.do(t, uploadRequest(t, "cv", "jane.txt", "text/plain", []byte(sampleCV)))
		require.Equal(t, fiber.StatusOK, status)

		var resp models.UploadResponse
		require.NoError(t, json.Unmarshal(body, &resp))
		assert.Equal(t, "CV uploaded and indexed.", resp.Message)
		assert.NotEmpty(t, resp.VectorID)
	})

	t.Run("png is rejected", func(t *testing.T) {
		status, _, body := s.do(t, uploadRequest(t, "cv", "photo.png", "image/png", []byte{0x89, 'P', 'N', 'G'}))
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "Only PDF and TXT supported in this example.", errorMessage(t, body, "error"))
	})

	t.Run("missing file field", func(t *testing.T) {
		status, _, body := s.do(t, uploadRequest(t, "resume", "jane.txt", "text/plain", []byte(sampleCV)))
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "No CV file uploaded.", errorMessage(t, body, "error"))
	})

	t.Run("empty text", func(t *testing.T) {
		status, _, body := s.do(t, uploadRequest(t, "cv", "blank.txt", "text/plain", []byte("  \n\t ")))
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "Extracted text is empty.", errorMessage(t, body, "error"))
	})

	t.Run("wrong method", func(t *testing.T) {
		status, header, body := s.do(t, httptest.NewRequest(http.MethodGet, "/api/upload-cv", nil))
		assert.Equal(t, fiber.StatusMethodNotAllowed, status)
		assert.Equal(t, http.MethodPost, header.Get("Allow"))
		assert.Equal(t, "Method GET Not Allowed", errorMessage(t, body, "error"))
	})
}

func TestEvaluate(t *testing.T) {
	s := newTestServer(t, nil)
	job := &models.JobDescription{Title: "Backend", Requirements: []string{"Go"}}

	t.Run("missing job description", func(t *testing.T) {
		status, _, body := s.do(t, jsonRequest(http.MethodPost, "/api/evaluate-cv", map[string]any{"vectorId": "abc"}))
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "vectorId and jobDescription are required", errorMessage(t, body, "error"))
	})

	t.Run("missing vector id", func(t *testing.T) {
		status, _, _ := s.do(t, jsonRequest(http.MethodPost, "/api/evaluate-cv", map[string]any{"jobDescription": job}))
		assert.Equal(t, fiber.StatusBadRequest, status)
	})

	t.Run("unknown vector id", func(t *testing.T) {
		req := models.EvaluateRequest{VectorID: "does-not-exist", JobDescription: job}
		status, _, body := s.do(t, jsonRequest(http.MethodPost, "/api/evaluate-cv", req))
		assert.Equal(t, fiber.StatusNotFound, status)
		assert.Equal(t, "CV text not found in vector store.", errorMessage(t, body, "error"))
	})

	t.Run("wrong method", func(t *testing.T) {
		status, _, body := s.do(t, httptest.NewRequest(http.MethodPut, "/api/evaluate-cv", nil))
		assert.Equal(t, fiber.StatusMethodNotAllowed, status)
		assert.Equal(t, "Method not allowed", errorMessage(t, body, "error"))
	})
}

func TestEvaluate_QueueFull(t *testing.T) {
	s := newTestServer(t, rejectingWorker{})
	require.NoError(t, s.vectors.Upsert(context.Background(), &services.CVDocument{VectorID: "cv-1", Text: sampleCV}))

	req := models.EvaluateRequest{VectorID: "cv-1", JobDescription: &models.JobDescription{Requirements: []string{"Go"}}}
	status, _, body := s.do(t, jsonRequest(http.MethodPost, "/api/evaluate-cv", req))
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "Evaluation queue is full.", errorMessage(t, body, "error"))
}

func TestGetResults(t *testing.T) {
	s := newTestServer(t, nil)

	status, _, body := s.do(t, httptest.NewRequest(http.MethodGet, "/api/get-results", nil))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Evaluation ID is required", errorMessage(t, body, "error"))

	status, _, body = s.do(t, httptest.NewRequest(http.MethodGet, "/api/get-results?id=nope", nil))
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Evaluation not found.", errorMessage(t, body, "error"))

	status, _, _ = s.do(t, httptest.NewRequest(http.MethodPost, "/api/get-results?id=nope", nil))
	assert.Equal(t, fiber.StatusMethodNotAllowed, status)
}

func TestUploadEvaluateResultsRoundTrip(t *testing.T) {
	s := newTestServer(t, nil)

	status, _, body := s.do(t, uploadRequest(t, "cv", "jane.txt", "text/plain; charset=utf-8", []byte(sampleCV)))
	require.Equal(t, fiber.StatusOK, status)
	var uploaded models.UploadResponse
	require.NoError(t, json.Unmarshal(body, &uploaded))

	req := models.EvaluateRequest{
		VectorID: uploaded.VectorID,
		JobDescription: &models.JobDescription{
			Title:        "Backend Engineer",
			Requirements: []string{"Go", "Rust", "Kubernetes"},
		},
	}
	status, _, body = s.do(t, jsonRequest(http.MethodPost, "/api/evaluate-cv", req))
	require.Equal(t, fiber.StatusOK, status)

	var submitted models.EvaluateResponse
	require.NoError(t, json.Unmarshal(body, &submitted))
	assert.Equal(t, uploaded.VectorID, submitted.EvaluationID)
	assert.Equal(t, models.StatusProcessing, submitted.Status)

	var final models.Evaluation
	require.Eventually(t, func() bool {
		status, _, body := s.do(t, httptest.NewRequest(http.MethodGet, "/api/get-results?id="+uploaded.VectorID, nil))
		if status != fiber.StatusOK {
			return false
		}
		final = models.Evaluation{}
		if err := json.Unmarshal(body, &final); err != nil {
			return false
		}
		return final.Status == models.StatusCompleted
	}, 2*time.Second, 20*time.Millisecond)

	require.NotNil(t, final.Result)
	assert.Equal(t, uploaded.VectorID, final.Result.EvaluationID)
	assert.Equal(t, models.StatusCompleted, final.Result.Status)
	assert.Equal(t, services.OverallSummary, final.Result.OverallSummary)

	status, header, body := s.do(t, httptest.NewRequest(http.MethodGet, "/api/results/export", nil))
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, header.Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, header.Get("Content-Disposition"), "attachment")
	assert.NotEmpty(t, body)
}

func TestSearch(t *testing.T) {
	s := newTestServer(t, nil)
	require.NoError(t, s.vectors.Upsert(context.Background(), &services.CVDocument{VectorID: "cv-1", Filename: "jane.txt", Text: sampleCV}))

	status, _, body := s.do(t, jsonRequest(http.MethodPost, "/api/search-cv", map[string]string{"query": "  backend   engineer "}))
	require.Equal(t, fiber.StatusOK, status)

	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "backend engineer", resp.Query)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "cv-1", resp.Matches[0].VectorID)
	assert.Equal(t, "jane.txt", resp.Matches[0].Filename)

	status, _, body = s.do(t, jsonRequest(http.MethodPost, "/api/search-cv", map[string]string{"query": "https://example.com"}))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "query contains unsupported characters", errorMessage(t, body, "message"))
}
