package models_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guichethq/guichet/internal/api/models"
)

func TestProblem_NewProblem(t *testing.T) {
	p := models.NewProblem(
		models.ProblemTypeValidation,
		"Validation failed",
		http.StatusUnprocessableEntity,
		"req_test123",
	)

	assert.Equal(t, models.ProblemTypeValidation, p.Type)
	assert.Equal(t, "Validation failed", p.Title)
	assert.Equal(t, http.StatusUnprocessableEntity, p.Status)
	assert.Equal(t, "req_test123", p.TraceID)
	assert.Empty(t, p.Detail)
	assert.Empty(t, p.Instance)
	assert.Nil(t, p.Errors)
}

func TestProblem_Write(t *testing.T) {
	p := models.NewValidationFailed("req_test123", "submission is invalid", []models.FieldError{
		{Field: "email", Message: "invalid format"},
	})
	p.Instance = "/v1/claims/citizen"

	w := httptest.NewRecorder()
	p.Write(w)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.Equal(t, "req_test123", w.Header().Get("X-Request-Id"))

	var result models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err)

	assert.Equal(t, models.ProblemTypeValidation, result.Type)
	assert.Equal(t, "Validation failed", result.Title)
	assert.Equal(t, http.StatusUnprocessableEntity, result.Status)
	assert.Equal(t, "submission is invalid", result.Detail)
	assert.Equal(t, "/v1/claims/citizen", result.Instance)
	assert.Equal(t, "req_test123", result.TraceID)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "email", result.Errors[0].Field)
}

func TestNewBadRequest(t *testing.T) {
	p := models.NewBadRequest("req_123", "invalid multipart form")

	assert.Equal(t, models.ProblemTypeValidation, p.Type)
	assert.Equal(t, "Bad request", p.Title)
	assert.Equal(t, http.StatusBadRequest, p.Status)
	assert.Equal(t, "invalid multipart form", p.Detail)
	assert.Equal(t, "req_123", p.TraceID)
}

func TestNewValidationFailed(t *testing.T) {
	fieldErrors := []models.FieldError{
		{Field: "email", Message: "invalid format", Code: "INVALID"},
		{Field: "content", Message: "required", Code: "REQUIRED"},
	}

	p := models.NewValidationFailed("req_123", "submission is invalid", fieldErrors)

	assert.Equal(t, models.ProblemTypeValidation, p.Type)
	assert.Equal(t, http.StatusUnprocessableEntity, p.Status)
	require.Len(t, p.Errors, 2)
	assert.Equal(t, "email", p.Errors[0].Field)
	assert.Equal(t, "invalid format", p.Errors[0].Message)
	assert.Equal(t, "INVALID", p.Errors[0].Code)
}

func TestNewClaimLimitReached(t *testing.T) {
	p := models.NewClaimLimitReached("req_123", "this identity already has 3 open claims")

	assert.Equal(t, models.ProblemTypeClaimLimit, p.Type)
	assert.Equal(t, "Claim limit reached", p.Title)
	assert.Equal(t, http.StatusUnprocessableEntity, p.Status)
	assert.Equal(t, "this identity already has 3 open claims", p.Detail)
}

func TestNewUnauthorized(t *testing.T) {
	p := models.NewUnauthorized("req_123", "token expired")

	assert.Equal(t, models.ProblemTypeUnauthorized, p.Type)
	assert.Equal(t, "Unauthorized", p.Title)
	assert.Equal(t, http.StatusUnauthorized, p.Status)
	assert.Equal(t, "token expired", p.Detail)
}

func TestNewNotFound(t *testing.T) {
	p := models.NewNotFound("req_123", "claim not found")

	assert.Equal(t, models.ProblemTypeNotFound, p.Type)
	assert.Equal(t, "Not found", p.Title)
	assert.Equal(t, http.StatusNotFound, p.Status)
	assert.Equal(t, "claim not found", p.Detail)
}

func TestNewConflict(t *testing.T) {
	p := models.NewConflict("req_123", "claim has already been answered")

	assert.Equal(t, models.ProblemTypeConflict, p.Type)
	assert.Equal(t, "Conflict", p.Title)
	assert.Equal(t, http.StatusConflict, p.Status)
	assert.Equal(t, "claim has already been answered", p.Detail)
}

func TestNewTooManyRequests(t *testing.T) {
	p := models.NewTooManyRequests("req_123", "rate limit exceeded")

	assert.Equal(t, models.ProblemTypeTooManyRequests, p.Type)
	assert.Equal(t, "Too many requests", p.Title)
	assert.Equal(t, http.StatusTooManyRequests, p.Status)
	assert.Equal(t, "rate limit exceeded", p.Detail)
}

func TestNewInternalError(t *testing.T) {
	p := models.NewInternalError("req_123", "database error")

	assert.Equal(t, models.ProblemTypeInternal, p.Type)
	assert.Equal(t, "Internal server error", p.Title)
	assert.Equal(t, http.StatusInternalServerError, p.Status)
	assert.Equal(t, "database error", p.Detail)
}

func TestNewServiceUnavailable(t *testing.T) {
	p := models.NewServiceUnavailable("req_123", "upstream unavailable")

	assert.Equal(t, models.ProblemTypeUnavailable, p.Type)
	assert.Equal(t, "Service unavailable", p.Title)
	assert.Equal(t, http.StatusServiceUnavailable, p.Status)
	assert.Equal(t, "upstream unavailable", p.Detail)
}
