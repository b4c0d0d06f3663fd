// Package handlers provides HTTP handlers for the lease analysis API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/leaseguard/leaseguard/internal/analyze"
	"github.com/leaseguard/leaseguard/internal/domain"
	"github.com/leaseguard/leaseguard/internal/observability"
)

// Analyzer runs the document analysis pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, uploads []analyze.FileUpload) (domain.Verdict, error)
}

// AnalysisHandler handles lease document analysis requests.
type AnalysisHandler struct {
	logger         *observability.Logger
	analyzer       Analyzer
	maxUploadBytes int64
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(logger *observability.Logger, analyzer Analyzer, maxUploadBytes int64) *AnalysisHandler {
	return &AnalysisHandler{
		logger:         logger,
		analyzer:       analyzer,
		maxUploadBytes: maxUploadBytes,
	}
}

// Analyze handles POST /api/v1/analysis. The request is a multipart form with
// one or more document files under the "files" field; the response is the
// six-field verdict. Timeout and extraction failures still return 200 with
// the fallback verdict; only validation, transform and registration failures
// surface as errors.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request", err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	uploads := make([]analyze.FileUpload, 0, len(headers))

	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable upload: "+header.Filename, err.Error())
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable upload: "+header.Filename, err.Error())
			return
		}
		uploads = append(uploads, analyze.FileUpload{
			Filename: header.Filename,
			Data:     data,
		})
	}

	verdict, err := h.analyzer.Analyze(ctx, uploads)
	if err != nil {
		status, message := mapError(err)
		h.logger.Error().Err(err).Int("status", status).Msg("analysis request failed")
		writeError(w, status, message, "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(verdict)
}

// mapError converts pipeline errors to HTTP status codes: client-input faults
// to 400, upstream faults to 502, anything else to a generic 500.
func mapError(err error) (int, string) {
	var de *domain.DomainError
	if errors.As(err, &de) {
		switch de.Type {
		case domain.ErrorTypeValidation, domain.ErrorTypeTransform:
			return http.StatusBadRequest, de.Message
		case domain.ErrorTypeUpstream:
			return http.StatusBadGateway, de.Message
		}
	}
	return http.StatusInternalServerError, "analysis failed"
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := map[string]string{
		"error": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	json.NewEncoder(w).Encode(resp)
}
