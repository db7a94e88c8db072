package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/leadforge/leadforge/internal/api"
	"github.com/leadforge/leadforge/internal/domain"
	"github.com/leadforge/leadforge/internal/kb"
)

// maxUploadMemory bounds the multipart parse buffer; larger parts spill
// to temp files.
const maxUploadMemory = 8 << 20

type KnowledgeService interface {
	Ingest(ctx context.Context, filename string, data []byte) (*domain.Document, error)
	Get(id string) (*domain.Document, error)
	List() []domain.Document
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error)
	Stats(ctx context.Context) (*kb.Stats, error)
}

type KnowledgeHandler struct {
	svc KnowledgeService
}

func NewKnowledgeHandler(svc KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc}
}

func (h *KnowledgeHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to read file")
		return
	}

	doc, err := h.svc.Ingest(r.Context(), header.Filename, data)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, doc)
}

type DocumentListResponse struct {
	Items []domain.Document `json:"items"`
	Total int               `json:"total"`
}

func (h *KnowledgeHandler) List(w http.ResponseWriter, r *http.Request) {
	docs := h.svc.List()
	api.Success(w, http.StatusOK, DocumentListResponse{Items: docs, Total: len(docs)})
}

func (h *KnowledgeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	doc, err := h.svc.Get(id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, doc)
}

type DeleteDocumentResponse struct {
	ID string `json:"id"`
}

func (h *KnowledgeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, DeleteDocumentResponse{ID: id})
}

type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type SearchResponse struct {
	Items []domain.RetrievedChunk `json:"items"`
	Total int                     `json:"total"`
}

func (h *KnowledgeHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	chunks, err := h.svc.Search(r.Context(), req.Query, req.TopK)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, SearchResponse{Items: chunks, Total: len(chunks)})
}

func (h *KnowledgeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, stats)
}
