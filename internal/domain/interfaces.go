package domain

import "context"

// Rasterizer renders every page of a PDF to a PNG raster in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, documentIndex int, data []byte) ([]Page, error)
}

// AssetStore registers one visual asset with the inference service and
// returns its opaque reference. Callers register assets sequentially, in
// submission order, because the upstream model identifies documents purely
// by position in the final request.
type AssetStore interface {
	Register(ctx context.Context, filename string, data []byte) (AssetReference, error)
}

// CompletionService submits one assembled multimodal request and returns the
// service's free-form textual answer.
type CompletionService interface {
	Complete(ctx context.Context, req InferenceRequest) (string, error)
}
