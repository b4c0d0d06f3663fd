// Package analyze implements the document-intake-to-verdict pipeline: intake
// classification, rasterization, asset registration, prompt assembly, bounded
// inference, extraction and the fallback policy.
package analyze

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leaseguard/leaseguard/internal/domain"
	"github.com/leaseguard/leaseguard/internal/intake"
	"github.com/leaseguard/leaseguard/internal/observability"
)

// FileUpload is one inbound file as received at the API boundary.
type FileUpload struct {
	Filename string
	Data     []byte
}

// Service orchestrates one stateless analysis invocation. Stages run
// sequentially; the inference call is the single suspension point. Nothing is
// shared between concurrent invocations.
type Service struct {
	store      domain.AssetStore
	rasterizer domain.Rasterizer
	invoker    *Invoker
	extractor  *Extractor
	logger     *observability.Logger
}

// NewService creates an analysis service. All collaborators are explicit so
// tests can substitute fakes per call.
func NewService(store domain.AssetStore, completer domain.CompletionService, rasterizer domain.Rasterizer, timeout time.Duration, logger *observability.Logger) *Service {
	return &Service{
		store:      store,
		rasterizer: rasterizer,
		invoker:    NewInvoker(completer, timeout),
		extractor:  NewExtractor(),
		logger:     logger.WithComponent("analyze"),
	}
}

// Analyze runs the full pipeline over the uploaded files and returns a fully
// populated verdict. Validation, transform and registration failures return
// typed errors; inference timeout and unparseable answers resolve silently to
// the fallback verdict.
func (s *Service) Analyze(ctx context.Context, uploads []FileUpload) (domain.Verdict, error) {
	start := time.Now()
	analysisID := uuid.NewString()

	docs, err := s.classify(uploads)
	if err != nil {
		return domain.Verdict{}, err
	}

	assets, err := s.collectAssets(ctx, docs)
	if err != nil {
		return domain.Verdict{}, err
	}

	refs, err := s.registerAssets(ctx, assets)
	if err != nil {
		return domain.Verdict{}, err
	}

	req := AssembleRequest(refs)

	s.logger.Info().
		Str("analysis_id", analysisID).
		Int("documents", len(docs)).
		Int("assets", len(refs)).
		Msg("submitting inference request")

	outcome := s.invoker.Invoke(ctx, req)

	verdict := s.resolve(outcome)

	s.logger.Info().
		Str("analysis_id", analysisID).
		Str("outcome", string(outcome.Kind)).
		Dur("elapsed", time.Since(start)).
		Msg("analysis complete")

	return verdict, nil
}

// classify tags every upload image or pdf. Any invalid file aborts the whole
// request; there is no partial processing.
func (s *Service) classify(uploads []FileUpload) ([]domain.SourceDocument, error) {
	if len(uploads) == 0 {
		return nil, domain.ValidationError("at least one file required", nil)
	}

	docs := make([]domain.SourceDocument, 0, len(uploads))
	for _, upload := range uploads {
		doc, err := intake.Classify(upload.Filename, upload.Data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// collectAssets flattens the documents into the global ordered asset list:
// images as-is, PDFs as one asset per rasterized page.
func (s *Service) collectAssets(ctx context.Context, docs []domain.SourceDocument) ([]domain.VisualAsset, error) {
	var assets []domain.VisualAsset

	for docIndex, doc := range docs {
		switch doc.Kind {
		case domain.KindImage:
			assets = append(assets, domain.VisualAsset{
				Filename: doc.Filename,
				Data:     doc.Data,
			})

		case domain.KindPDF:
			pages, err := s.rasterizer.Rasterize(ctx, docIndex, doc.Data)
			if err != nil {
				return nil, domain.TransformError(
					fmt.Sprintf("failed to convert PDF to images (%s)", doc.Filename), err)
			}
			for _, page := range pages {
				assets = append(assets, domain.VisualAsset{
					Filename: fmt.Sprintf("%s_page_%d.png", doc.Filename, page.PageIndex+1),
					Data:     page.PNG,
				})
			}
		}
	}

	return assets, nil
}

// registerAssets registers each asset synchronously and sequentially, in
// submission order. Order matters: the upstream model identifies documents
// purely by position in the final request. Assets registered before a failure
// are not released.
func (s *Service) registerAssets(ctx context.Context, assets []domain.VisualAsset) ([]domain.AssetReference, error) {
	refs := make([]domain.AssetReference, 0, len(assets))

	for _, asset := range assets {
		ref, err := s.store.Register(ctx, asset.Filename, asset.Data)
		if err != nil {
			return nil, err
		}
		s.logger.Debug().
			Str("filename", asset.Filename).
			Str("file_id", ref.FileID).
			Msg("asset registered")
		refs = append(refs, ref)
	}

	return refs, nil
}

// resolve reduces the inference outcome to a verdict, substituting the
// fallback on timeout, upstream failure or extraction failure. None of those
// paths surface an error to the caller.
func (s *Service) resolve(outcome domain.InferenceOutcome) domain.Verdict {
	switch outcome.Kind {
	case domain.OutcomeSuccess:
		verdict, err := s.extractor.Extract(outcome.RawText)
		if err != nil {
			s.logger.Warn().Err(err).Msg("extraction failed, returning fallback verdict")
			return domain.FallbackVerdict()
		}
		return verdict

	case domain.OutcomeTimedOut:
		s.logger.Warn().Msg("inference timed out, returning fallback verdict")
		return domain.FallbackVerdict()

	default:
		s.logger.Warn().Err(outcome.Reason).Msg("inference failed upstream, returning fallback verdict")
		return domain.FallbackVerdict()
	}
}
