package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mentionforge/brand-analyzer/internal/analysis"
	"github.com/mentionforge/brand-analyzer/internal/models"
)

// DecodeRequest reads a JSON analysis request, rejecting unknown fields
func DecodeRequest(body io.Reader) (models.AnalysisRequest, error) {
	var req models.AnalysisRequest

	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return req, fmt.Errorf("invalid request body: %w", err)
	}

	return req, nil
}

// StatusCode maps a run error to the HTTP status a caller should see
func StatusCode(err error) int {
	var (
		invalid  *analysis.InvalidInputError
		template *analysis.TemplateParseError
		summary  *analysis.SummarizationError
	)

	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.Is(err, ErrAnalysisInProgress):
		return http.StatusConflict
	case errors.As(err, &template):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &summary):
		return http.StatusBadGateway
	case errors.Is(err, ErrArchiveDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
