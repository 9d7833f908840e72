package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/guichethq/guichet/internal/api/models"
	"github.com/guichethq/guichet/internal/api/response"
	"github.com/guichethq/guichet/internal/claim"
	"github.com/guichethq/guichet/internal/retention"
)

// AdminHandler handles the back-office claim endpoints.
type AdminHandler struct {
	service   *claim.Service
	retention *retention.Jobs
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *claim.Service, jobs *retention.Jobs) *AdminHandler {
	return &AdminHandler{service: service, retention: jobs}
}

// ListClaims handles GET /v1/admin/claims/{kind} - paginated claim list,
// newest first, optionally filtered by status.
func (h *AdminHandler) ListClaims(w http.ResponseWriter, r *http.Request) {
	kind := claim.Kind(chi.URLParam(r, "kind"))
	if !kind.IsValid() {
		response.NotFound(w, r, "unknown claim type")
		return
	}

	opts := claim.ListOptions{
		Limit:  queryInt(r, "limit", 20),
		Offset: queryInt(r, "offset", 0),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := claim.Status(raw)
		if !status.IsValid() {
			response.BadRequest(w, r, "status must be pending, answered or archived")
			return
		}
		opts.Status = &status
	}

	result, err := h.service.List(r.Context(), kind, opts)
	if err != nil {
		writeClaimError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

// GetClaim handles GET /v1/admin/claims/{kind}/{claimId} - single claim.
func (h *AdminHandler) GetClaim(w http.ResponseWriter, r *http.Request) {
	kind := claim.Kind(chi.URLParam(r, "kind"))
	if !kind.IsValid() {
		response.NotFound(w, r, "unknown claim type")
		return
	}

	result, err := h.service.Get(r.Context(), kind, chi.URLParam(r, "claimId"))
	if err != nil {
		writeClaimError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

// AnswerClaim handles POST /v1/admin/claims/{kind}/{claimId}/answer.
// Answering sets answer and answeredAt together and enqueues the "answered"
// notification in the claimant's stored language.
func (h *AdminHandler) AnswerClaim(w http.ResponseWriter, r *http.Request) {
	kind := claim.Kind(chi.URLParam(r, "kind"))
	if !kind.IsValid() {
		response.NotFound(w, r, "unknown claim type")
		return
	}

	var input models.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	result, err := h.service.Answer(r.Context(), kind, chi.URLParam(r, "claimId"), input.Answer)
	if err != nil {
		writeClaimError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

// DeleteClaim handles DELETE /v1/admin/claims/{kind}/{claimId} - hard delete.
func (h *AdminHandler) DeleteClaim(w http.ResponseWriter, r *http.Request) {
	kind := claim.Kind(chi.URLParam(r, "kind"))
	if !kind.IsValid() {
		response.NotFound(w, r, "unknown claim type")
		return
	}

	if err := h.service.Delete(r.Context(), kind, chi.URLParam(r, "claimId")); err != nil {
		writeClaimError(w, r, err)
		return
	}
	response.NoContent(w, r)
}

// RunArchive handles POST /v1/admin/claims/archive - run the archive job now.
func (h *AdminHandler) RunArchive(w http.ResponseWriter, r *http.Request) {
	report, err := h.retention.Archive(r.Context())
	if err != nil {
		response.InternalError(w, r, "archive job failed")
		return
	}
	response.JSON(w, r, http.StatusOK, toJobReport(report))
}

// RunPurge handles POST /v1/admin/claims/purge - run the purge job now.
func (h *AdminHandler) RunPurge(w http.ResponseWriter, r *http.Request) {
	report, err := h.retention.Purge(r.Context())
	if err != nil {
		response.InternalError(w, r, "purge job failed")
		return
	}
	response.JSON(w, r, http.StatusOK, toJobReport(report))
}

// toJobReport converts a retention report to its API shape.
func toJobReport(report *retention.Report) models.JobReport {
	counts := make(map[string]int, len(report.Counts))
	for kind, n := range report.Counts {
		counts[string(kind)] = n
	}
	return models.JobReport{
		Job:    report.Job,
		Counts: counts,
		Total:  report.Total(),
	}
}

// queryInt parses an integer query parameter with a default.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
