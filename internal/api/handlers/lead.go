package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/leadforge/leadforge/internal/api"
	"github.com/leadforge/leadforge/internal/domain"
	"github.com/leadforge/leadforge/internal/jobs"
	"github.com/leadforge/leadforge/internal/leadstore"
)

type LeadAnalyzer interface {
	AnalyzeAndSave(ctx context.Context, rawURL string) (*domain.Lead, error)
}

type LeadStore interface {
	Get(id int) (*domain.Lead, error)
	Delete(id int) error
	LoadAll() []domain.Lead
	QualifiedLeads(threshold int) []domain.Lead
	LeadsByIndustry(industry string) []domain.Lead
	Statistics() leadstore.Statistics
}

type BulkJobQueue interface {
	Submit(urls []string) (*jobs.BulkJob, error)
	Get(id string) (*jobs.BulkJob, error)
	List() []*jobs.BulkJob
}

type LeadHandler struct {
	analyzer LeadAnalyzer
	store    LeadStore
	queue    BulkJobQueue
}

func NewLeadHandler(analyzer LeadAnalyzer, store LeadStore, queue BulkJobQueue) *LeadHandler {
	return &LeadHandler{analyzer: analyzer, store: store, queue: queue}
}

type AnalyzeRequest struct {
	URL string `json:"url"`
}

type AnalyzeBulkRequest struct {
	URLs []string `json:"urls"`
}

func (h *LeadHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		api.Error(w, http.StatusBadRequest, "url is required")
		return
	}

	lead, err := h.analyzer.AnalyzeAndSave(r.Context(), req.URL)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, lead)
}

func (h *LeadHandler) AnalyzeBulk(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeBulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.URLs) == 0 {
		api.Error(w, http.StatusBadRequest, "urls is required")
		return
	}

	job, err := h.queue.Submit(req.URLs)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusAccepted, job)
}

func (h *LeadHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	job, err := h.queue.Get(id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, job)
}

func (h *LeadHandler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.queue.List())
}

type LeadListResponse struct {
	Items []domain.Lead `json:"items"`
	Total int           `json:"total"`
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	var leads []domain.Lead

	industry := r.URL.Query().Get("industry")
	minScoreStr := r.URL.Query().Get("min_score")
	switch {
	case minScoreStr != "":
		minScore, err := strconv.Atoi(minScoreStr)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "min_score must be an integer")
			return
		}
		leads = h.store.QualifiedLeads(minScore)
	case industry != "":
		leads = h.store.LeadsByIndustry(industry)
	default:
		leads = h.store.LoadAll()
	}

	api.Success(w, http.StatusOK, LeadListResponse{Items: leads, Total: len(leads)})
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "id must be an integer")
		return
	}

	lead, err := h.store.Get(id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, lead)
}

type DeleteLeadResponse struct {
	ID int `json:"id"`
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "id must be an integer")
		return
	}

	if err := h.store.Delete(id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, DeleteLeadResponse{ID: id})
}

func (h *LeadHandler) Stats(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.store.Statistics())
}
