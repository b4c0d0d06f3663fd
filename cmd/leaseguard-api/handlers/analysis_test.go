package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaseguard/leaseguard/internal/analyze"
	"github.com/leaseguard/leaseguard/internal/domain"
	"github.com/leaseguard/leaseguard/internal/observability"
)

type fakeAnalyzer struct {
	verdict domain.Verdict
	err     error

	uploads []analyze.FileUpload
}

func (f *fakeAnalyzer) Analyze(_ context.Context, uploads []analyze.FileUpload) (domain.Verdict, error) {
	f.uploads = uploads
	if f.err != nil {
		return domain.Verdict{}, f.err
	}
	return f.verdict, nil
}

func multipartBody(t *testing.T, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, data := range files {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestAnalyze_ReturnsVerdict(t *testing.T) {
	analyzer := &fakeAnalyzer{verdict: domain.Verdict{
		ExcessiveLoan:     true,
		ResidentialUse:    true,
		OwnerVerification: true,
	}}
	handler := NewAnalysisHandler(observability.NopLogger(), analyzer, 64<<20)

	body, contentType := multipartBody(t, map[string][]byte{
		"deed.jpg": []byte("image-bytes"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Analyze(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, map[string]bool{
		"excessive_loan":     true,
		"rights_restriction": false,
		"trust_property":     false,
		"residential_use":    true,
		"tax_delinquency":    false,
		"owner_verification": true,
	}, got)

	require.Len(t, analyzer.uploads, 1)
	assert.Equal(t, "deed.jpg", analyzer.uploads[0].Filename)
	assert.Equal(t, []byte("image-bytes"), analyzer.uploads[0].Data)
}

func TestAnalyze_ValidationErrorIs400(t *testing.T) {
	analyzer := &fakeAnalyzer{err: domain.ValidationError("unsupported file type: report.docx (only PDF and image files are accepted)", nil)}
	handler := NewAnalysisHandler(observability.NopLogger(), analyzer, 64<<20)

	body, contentType := multipartBody(t, map[string][]byte{"report.docx": []byte("x")})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Analyze(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "report.docx")
}

func TestAnalyze_TransformErrorIs400(t *testing.T) {
	analyzer := &fakeAnalyzer{err: domain.TransformError("invalid image file: deed.jpg", nil)}
	handler := NewAnalysisHandler(observability.NopLogger(), analyzer, 64<<20)

	body, contentType := multipartBody(t, map[string][]byte{"deed.jpg": []byte("not an image")})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Analyze(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_UpstreamErrorIs502(t *testing.T) {
	analyzer := &fakeAnalyzer{err: domain.UpstreamError("file upload failed (deed.jpg)", nil)}
	handler := NewAnalysisHandler(observability.NopLogger(), analyzer, 64<<20)

	body, contentType := multipartBody(t, map[string][]byte{"deed.jpg": []byte("x")})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Analyze(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAnalyze_NonMultipartIs400(t *testing.T) {
	handler := NewAnalysisHandler(observability.NopLogger(), &fakeAnalyzer{}, 64<<20)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", bytes.NewBufferString(`{"files":[]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.Analyze(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_OversizedUploadRejected(t *testing.T) {
	handler := NewAnalysisHandler(observability.NopLogger(), &fakeAnalyzer{}, 128)

	body, contentType := multipartBody(t, map[string][]byte{
		"big.png": bytes.Repeat([]byte("a"), 4096),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Analyze(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
