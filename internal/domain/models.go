package domain

// DocumentKind classifies an uploaded document by its visual container format.
type DocumentKind string

const (
	KindImage DocumentKind = "image"
	KindPDF   DocumentKind = "pdf"
)

// SourceDocument is one uploaded file, immutable for the lifetime of a request.
type SourceDocument struct {
	Filename string
	Kind     DocumentKind
	Data     []byte
}

// Page is a single rasterized PDF page. PageIndex is 0-based; ordering is
// (DocumentIndex, PageIndex) and must survive every downstream stage.
type Page struct {
	DocumentIndex int
	PageIndex     int
	PNG           []byte
}

// VisualAsset is the unit submitted for registration: a whole image document
// or one rasterized page. Assets carry the global submission order implicitly
// through slice position.
type VisualAsset struct {
	Filename string
	Data     []byte
}

// AssetReference is the opaque handle the inference service returns for a
// registered VisualAsset. References are 1:1 with assets, same order.
type AssetReference struct {
	FileID string
}

// InferenceRequest is built once per analysis call and never mutated.
type InferenceRequest struct {
	Instruction string
	Assets      []AssetReference
}

// OutcomeKind tags the result of the bounded inference invocation.
type OutcomeKind string

const (
	OutcomeSuccess         OutcomeKind = "success"
	OutcomeTimedOut        OutcomeKind = "timed_out"
	OutcomeUpstreamFailure OutcomeKind = "upstream_failure"
)

// InferenceOutcome is the tagged union produced by the invoker. RawText is set
// only for OutcomeSuccess; Reason only for OutcomeUpstreamFailure.
type InferenceOutcome struct {
	Kind    OutcomeKind
	RawText string
	Reason  error
}

// Verdict is the six-field boolean analysis result. Every field is always
// populated; partially filled verdicts never leave the pipeline.
type Verdict struct {
	ExcessiveLoan     bool `json:"excessive_loan"`
	RightsRestriction bool `json:"rights_restriction"`
	TrustProperty     bool `json:"trust_property"`
	ResidentialUse    bool `json:"residential_use"`
	TaxDelinquency    bool `json:"tax_delinquency"`
	OwnerVerification bool `json:"owner_verification"`
}

// VerdictKeys lists the required JSON keys of a Verdict, in rubric order.
var VerdictKeys = []string{
	"excessive_loan",
	"rights_restriction",
	"trust_property",
	"residential_use",
	"tax_delinquency",
	"owner_verification",
}

// FallbackVerdict returns the fixed conservative verdict substituted when the
// inference call times out, fails upstream, or its answer cannot be parsed.
// Risk-raising fields default to false; residential_use and owner_verification,
// whose false value is the risk signal, default to true.
func FallbackVerdict() Verdict {
	return Verdict{
		ExcessiveLoan:     false,
		RightsRestriction: false,
		TrustProperty:     false,
		ResidentialUse:    true,
		TaxDelinquency:    false,
		OwnerVerification: true,
	}
}
