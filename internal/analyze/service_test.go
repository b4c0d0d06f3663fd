package analyze

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaseguard/leaseguard/internal/domain"
	"github.com/leaseguard/leaseguard/internal/observability"
)

// fakeStore records registrations in order and hands out sequential handles.
type fakeStore struct {
	registered []string
	failOn     string
}

func (f *fakeStore) Register(ctx context.Context, filename string, data []byte) (domain.AssetReference, error) {
	if f.failOn != "" && filename == f.failOn {
		return domain.AssetReference{}, domain.UpstreamError(fmt.Sprintf("file upload failed (%s)", filename), nil)
	}
	f.registered = append(f.registered, filename)
	return domain.AssetReference{FileID: fmt.Sprintf("file-%d", len(f.registered))}, nil
}

// capturingCompleter records the assembled request and returns a fixed answer.
type capturingCompleter struct {
	req    domain.InferenceRequest
	text   string
	err    error
	delay  time.Duration
	called int
}

func (c *capturingCompleter) Complete(ctx context.Context, req domain.InferenceRequest) (string, error) {
	c.req = req
	c.called++
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	return c.text, c.err
}

// fakeRasterizer yields a fixed number of pages per document.
type fakeRasterizer struct {
	pages int
	err   error
}

func (f *fakeRasterizer) Rasterize(ctx context.Context, documentIndex int, data []byte) ([]domain.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	pages := make([]domain.Page, f.pages)
	for i := range pages {
		pages[i] = domain.Page{
			DocumentIndex: documentIndex,
			PageIndex:     i,
			PNG:           []byte(fmt.Sprintf("png-%d-%d", documentIndex, i)),
		}
	}
	return pages, nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

const allTrueButTax = "```json\n" +
	`{"excessive_loan": true, "rights_restriction": true, "trust_property": true,
"residential_use": true, "tax_delinquency": false, "owner_verification": true}` + "\n```"

func newTestService(store domain.AssetStore, completer domain.CompletionService, rasterizer domain.Rasterizer, timeout time.Duration) *Service {
	return NewService(store, completer, rasterizer, timeout, observability.NopLogger())
}

func TestService_AnalyzesImagesInOrder(t *testing.T) {
	store := &fakeStore{}
	completer := &capturingCompleter{text: allTrueButTax}
	svc := newTestService(store, completer, &fakeRasterizer{}, time.Second)

	img := pngBytes(t)
	verdict, err := svc.Analyze(context.Background(), []FileUpload{
		{Filename: "deed.png", Data: img},
		{Filename: "tax.png", Data: img},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"deed.png", "tax.png"}, store.registered)
	assert.Equal(t, []domain.AssetReference{{FileID: "file-1"}, {FileID: "file-2"}}, completer.req.Assets)
	assert.Equal(t, domain.Verdict{
		ExcessiveLoan:     true,
		RightsRestriction: true,
		TrustProperty:     true,
		ResidentialUse:    true,
		TaxDelinquency:    false,
		OwnerVerification: true,
	}, verdict)
}

func TestService_PDFPagesRegisteredInPageOrder(t *testing.T) {
	store := &fakeStore{}
	completer := &capturingCompleter{text: allTrueButTax}
	svc := newTestService(store, completer, &fakeRasterizer{pages: 2}, time.Second)

	_, err := svc.Analyze(context.Background(), []FileUpload{
		{Filename: "registry.pdf", Data: []byte("%PDF-")},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"registry.pdf_page_1.png", "registry.pdf_page_2.png"}, store.registered)
	assert.Len(t, completer.req.Assets, 2)
}

func TestService_MixedDocumentsPreserveGlobalOrder(t *testing.T) {
	store := &fakeStore{}
	completer := &capturingCompleter{text: allTrueButTax}
	svc := newTestService(store, completer, &fakeRasterizer{pages: 2}, time.Second)

	img := pngBytes(t)
	_, err := svc.Analyze(context.Background(), []FileUpload{
		{Filename: "deed.png", Data: img},
		{Filename: "registry.pdf", Data: []byte("%PDF-")},
		{Filename: "tax.png", Data: img},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{
		"deed.png",
		"registry.pdf_page_1.png",
		"registry.pdf_page_2.png",
		"tax.png",
	}, store.registered)
	assert.Len(t, completer.req.Assets, 4)
}

func TestService_EmptyUploadIsValidationError(t *testing.T) {
	svc := newTestService(&fakeStore{}, &capturingCompleter{}, &fakeRasterizer{}, time.Second)

	_, err := svc.Analyze(context.Background(), nil)

	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.TypeOf(err))
	assert.Contains(t, err.Error(), "at least one file required")
}

func TestService_UnsupportedExtensionNamesFile(t *testing.T) {
	svc := newTestService(&fakeStore{}, &capturingCompleter{}, &fakeRasterizer{}, time.Second)

	_, err := svc.Analyze(context.Background(), []FileUpload{
		{Filename: "report.docx", Data: []byte("not a document we accept")},
	})

	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.TypeOf(err))
	assert.Contains(t, err.Error(), "report.docx")
}

func TestService_CorruptImageNamesFile(t *testing.T) {
	svc := newTestService(&fakeStore{}, &capturingCompleter{}, &fakeRasterizer{}, time.Second)

	_, err := svc.Analyze(context.Background(), []FileUpload{
		{Filename: "deed.jpg", Data: []byte("definitely not a jpeg")},
	})

	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeTransform, domain.TypeOf(err))
	assert.Contains(t, err.Error(), "deed.jpg")
}

func TestService_RegistrationFailureSurfaces(t *testing.T) {
	store := &fakeStore{failOn: "tax.png"}
	svc := newTestService(store, &capturingCompleter{}, &fakeRasterizer{}, time.Second)

	img := pngBytes(t)
	_, err := svc.Analyze(context.Background(), []FileUpload{
		{Filename: "deed.png", Data: img},
		{Filename: "tax.png", Data: img},
	})

	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeUpstream, domain.TypeOf(err))
	assert.Contains(t, err.Error(), "tax.png")
}

func TestService_ProseAnswerFallsBack(t *testing.T) {
	completer := &capturingCompleter{text: "The documents look fine, nothing to report."}
	svc := newTestService(&fakeStore{}, completer, &fakeRasterizer{}, time.Second)

	verdict, err := svc.Analyze(context.Background(), []FileUpload{
		{Filename: "deed.png", Data: pngBytes(t)},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.FallbackVerdict(), verdict)
}

func TestService_UpstreamFailureFallsBack(t *testing.T) {
	completer := &capturingCompleter{err: errors.New("503 from upstream")}
	svc := newTestService(&fakeStore{}, completer, &fakeRasterizer{}, time.Second)

	verdict, err := svc.Analyze(context.Background(), []FileUpload{
		{Filename: "deed.png", Data: pngBytes(t)},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.FallbackVerdict(), verdict)
}

func TestService_TimeoutFallsBack(t *testing.T) {
	completer := &capturingCompleter{text: allTrueButTax, delay: 500 * time.Millisecond}
	svc := newTestService(&fakeStore{}, completer, &fakeRasterizer{}, 20*time.Millisecond)

	start := time.Now()
	verdict, err := svc.Analyze(context.Background(), []FileUpload{
		{Filename: "deed.png", Data: pngBytes(t)},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.FallbackVerdict(), verdict)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestService_Idempotent(t *testing.T) {
	img := pngBytes(t)
	uploads := []FileUpload{{Filename: "deed.png", Data: img}}

	var verdicts []domain.Verdict
	for i := 0; i < 2; i++ {
		svc := newTestService(&fakeStore{}, &capturingCompleter{text: allTrueButTax}, &fakeRasterizer{}, time.Second)
		verdict, err := svc.Analyze(context.Background(), uploads)
		require.NoError(t, err)
		verdicts = append(verdicts, verdict)
	}

	assert.Equal(t, verdicts[0], verdicts[1])
}

func TestAssembleRequest_InstructionIsFixed(t *testing.T) {
	refs := []domain.AssetReference{{FileID: "file-1"}}

	first := AssembleRequest(refs)
	second := AssembleRequest(refs)

	assert.Equal(t, first.Instruction, second.Instruction)
	assert.Contains(t, first.Instruction, "excessive_loan")
	assert.Contains(t, first.Instruction, "owner_verification")
	assert.Contains(t, first.Instruction, "JSON")
}

func TestAssembleRequest_CopiesReferences(t *testing.T) {
	refs := []domain.AssetReference{{FileID: "file-1"}, {FileID: "file-2"}}

	req := AssembleRequest(refs)
	refs[0] = domain.AssetReference{FileID: "mutated"}

	assert.Equal(t, "file-1", req.Assets[0].FileID)
}
