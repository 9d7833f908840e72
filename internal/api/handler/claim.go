// Package handler provides HTTP handlers for the Guichet API.
package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/guichethq/guichet/internal/api/models"
	"github.com/guichethq/guichet/internal/api/response"
	"github.com/guichethq/guichet/internal/claim"
)

// maxSubmissionMemory bounds the in-memory part of multipart parsing; larger
// file parts spill to temporary files.
const maxSubmissionMemory = 16 << 20 // 16 MiB

// ClaimHandler handles the public claim submission endpoint.
type ClaimHandler struct {
	service *claim.Service
}

// NewClaimHandler creates a new ClaimHandler.
func NewClaimHandler(service *claim.Service) *ClaimHandler {
	return &ClaimHandler{service: service}
}

// Submit handles POST /v1/claims/{kind} - submit a new claim.
// The request is a multipart form with claimant fields and up to 3 files.
func (h *ClaimHandler) Submit(w http.ResponseWriter, r *http.Request) {
	kind := claim.Kind(chi.URLParam(r, "kind"))
	if !kind.IsValid() {
		response.NotFound(w, r, "unknown claim type")
		return
	}

	if err := r.ParseMultipartForm(maxSubmissionMemory); err != nil {
		response.BadRequest(w, r, "invalid multipart form")
		return
	}

	input := buildSubmitInput(kind, r)
	defer closeUploads(input.Files)

	result, err := h.service.Submit(r.Context(), input)
	if err != nil {
		writeClaimError(w, r, err)
		return
	}

	location := fmt.Sprintf("/v1/admin/claims/%s/%s", kind, result.ID)
	response.Created(w, r, location, models.ClaimSubmitted{
		Success:         true,
		ReferenceNumber: result.ReferenceNumber,
		Status:          result.Status,
	})
}

// buildSubmitInput maps the multipart form onto a submission. The identity
// field and display name depend on the claim kind: citizens submit a NIN and
// a first/last name, companies and organizations a register number and a name.
func buildSubmitInput(kind claim.Kind, r *http.Request) *claim.SubmitInput {
	form := r.MultipartForm

	input := &claim.SubmitInput{
		Kind:     kind,
		Email:    r.FormValue("email"),
		Language: r.FormValue("language"),
		Content:  r.FormValue("content"),
	}

	switch kind {
	case claim.KindCitizen:
		input.Identity = r.FormValue("nin")
		input.DisplayName = joinName(r.FormValue("first_name"), r.FormValue("last_name"))
	case claim.KindCompany:
		input.Identity = r.FormValue("register_number")
		input.DisplayName = r.FormValue("company_name")
	case claim.KindOrganization:
		input.Identity = r.FormValue("register_number")
		input.DisplayName = r.FormValue("organization_name")
	}

	if form != nil {
		input.Files = openUploads(form.File["files"])
	}
	return input
}

// joinName joins first and last name, tolerating either being empty.
func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}

// openUploads opens the multipart file headers as submission uploads.
// Unreadable parts are skipped; the count check happens in the service.
func openUploads(headers []*multipart.FileHeader) []claim.FileUpload {
	var uploads []claim.FileUpload
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			continue
		}
		uploads = append(uploads, claim.FileUpload{
			Name:    header.Filename,
			Content: f,
		})
	}
	return uploads
}

// closeUploads releases the opened multipart parts. Parts past the memory
// bound are backed by temporary files and hold a descriptor until closed.
func closeUploads(uploads []claim.FileUpload) {
	for _, u := range uploads {
		if c, ok := u.Content.(io.Closer); ok {
			c.Close()
		}
	}
}

// writeClaimError maps claim service errors to problem responses.
func writeClaimError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *claim.ValidationError
	switch {
	case errors.As(err, &validationErr):
		response.ValidationFailed(w, r, "submission is invalid", validationErr.Errors)
	case errors.Is(err, claim.ErrRateLimitReached):
		response.ClaimLimitReached(w, r,
			fmt.Sprintf("this identity already has %d open claims", claim.MaxOpenClaimsPerIdentity))
	case errors.Is(err, claim.ErrClaimNotFound):
		response.NotFound(w, r, "claim not found")
	case errors.Is(err, claim.ErrAlreadyAnswered):
		response.Conflict(w, r, "claim has already been answered")
	default:
		response.InternalError(w, r, "an unexpected error occurred")
	}
}
