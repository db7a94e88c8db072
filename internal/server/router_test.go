package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadforge/leadforge/internal/analyzer"
	"github.com/leadforge/leadforge/internal/api/handlers"
	"github.com/leadforge/leadforge/internal/domain"
	"github.com/leadforge/leadforge/internal/embedding"
	"github.com/leadforge/leadforge/internal/jobs"
	"github.com/leadforge/leadforge/internal/kb"
	"github.com/leadforge/leadforge/internal/leadstore"
	"github.com/leadforge/leadforge/internal/score"
	"github.com/leadforge/leadforge/internal/scrape"
	"github.com/leadforge/leadforge/internal/vectorindex"
)

const testToken = "test-token"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	dir := t.TempDir()

	store, err := leadstore.New(filepath.Join(dir, "leads.json"))
	require.NoError(t, err)

	profile := domain.AnalysisProfile{
		Website:          "https://leadforge.example.com",
		ValueProposition: "AI lead qualification",
		ICP:              "B2B SaaS companies",
	}
	a := analyzer.New(scrape.NewMockFetcher(), score.NewMockScorer(), nil, store, profile,
		analyzer.WithBulkDelay(0))

	index, err := vectorindex.NewFlatIndex(filepath.Join(dir, "chunks.json"))
	require.NoError(t, err)
	catalog, err := kb.NewCatalog(filepath.Join(dir, "catalog.json"))
	require.NoError(t, err)
	kbSvc := kb.NewService(kb.DefaultChunkConfig(), embedding.NewLocalProvider(64), index, catalog, nil)

	return NewRouter(RouterConfig{
		APIToken:         testToken,
		LeadHandler:      handlers.NewLeadHandler(a, store, jobs.NewBulkQueue()),
		KnowledgeHandler: handlers.NewKnowledgeHandler(kbSvc),
	})
}

func authedRequest(method, target string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("Authorization", "Bearer "+testToken)
	return req
}

func TestRouter_Health_NoAuth(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestRouter_MissingToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/leads", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_WrongToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/leads", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_AnalyzeThenFetchLead(t *testing.T) {
	router := newTestRouter(t)

	body := `{"url":"https://acme.example.com"}`
	req := authedRequest(http.MethodPost, "/leads/analyze", []byte(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	data := created["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["id"])
	assert.NotEmpty(t, data["company_name"])

	req = authedRequest(http.MethodGet, "/leads/1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = authedRequest(http.MethodGet, "/leads/stats", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestRouter_BulkSubmitAndPoll(t *testing.T) {
	router := newTestRouter(t)

	body := `{"urls":["https://a.example.com","https://b.example.com"]}`
	req := authedRequest(http.MethodPost, "/leads/analyze/bulk", []byte(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	jobID := data["id"].(string)
	require.NotEmpty(t, jobID)

	req = authedRequest(http.MethodGet, "/analyses/"+jobID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)
}

func TestRouter_KnowledgeUploadSearchDelete(t *testing.T) {
	router := newTestRouter(t)

	content := strings.Repeat("Enterprise pricing starts at $500 per month. ", 5)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "pricing.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/knowledge/documents", &buf)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	docID := created["data"].(map[string]interface{})["id"].(string)
	require.NotEmpty(t, docID)

	req = authedRequest(http.MethodPost, "/knowledge/search", []byte(`{"query":"pricing","top_k":3}`))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pricing.txt")

	req = authedRequest(http.MethodDelete, "/knowledge/documents/"+docID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = authedRequest(http.MethodGet, "/knowledge/documents", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":0`)
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := newTestRouter(t)

	req := authedRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
