package analyze

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/leaseguard/leaseguard/internal/domain"
)

// Strategy is one pure extraction attempt: given the raw answer text it
// returns a candidate JSON object and whether it found one. Strategies are
// tried in order; the first whose candidate parses wins.
type Strategy func(text string) (string, bool)

var (
	fencedBlockRe  = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")
	inlineObjectRe = regexp.MustCompile(`(?s)\{[^{}]*"excessive_loan"[^{}]*\}`)
)

// DefaultStrategies is the ordered extraction chain: a fenced json block, an
// inline brace object carrying the excessive_loan key, then the whole trimmed
// text.
func DefaultStrategies() []Strategy {
	return []Strategy{
		func(text string) (string, bool) {
			m := fencedBlockRe.FindStringSubmatch(text)
			if m == nil {
				return "", false
			}
			return m[1], true
		},
		func(text string) (string, bool) {
			m := inlineObjectRe.FindString(text)
			if m == "" {
				return "", false
			}
			return m, true
		},
		func(text string) (string, bool) {
			return strings.TrimSpace(text), true
		},
	}
}

// verdictSchema requires every verdict key to be present. Value types are
// deliberately unconstrained: normalization below is total over whatever the
// model returned.
var verdictSchema = jsonschema.MustCompileString("verdict.json", `{
	"type": "object",
	"required": [
		"excessive_loan",
		"rights_restriction",
		"trust_property",
		"residential_use",
		"tax_delinquency",
		"owner_verification"
	]
}`)

// truthyTokens are the string values normalized to boolean true.
var truthyTokens = map[string]bool{
	"true": true,
	"1":    true,
	"yes":  true,
}

// Extractor reduces the inference service's free-form answer to a Verdict.
type Extractor struct {
	strategies []Strategy
}

// NewExtractor creates an extractor with the default strategy chain.
func NewExtractor() *Extractor {
	return &Extractor{strategies: DefaultStrategies()}
}

// NewExtractorWithStrategies creates an extractor with a custom chain.
func NewExtractorWithStrategies(strategies []Strategy) *Extractor {
	return &Extractor{strategies: strategies}
}

// Extract runs the strategy chain over rawText, validates the first
// syntactically valid object against the verdict schema, and normalizes its
// values. Failure at any step is an extraction error; the caller substitutes
// the fallback verdict.
func (e *Extractor) Extract(rawText string) (domain.Verdict, error) {
	obj, err := e.locate(rawText)
	if err != nil {
		return domain.Verdict{}, err
	}

	if err := verdictSchema.Validate(obj); err != nil {
		return domain.Verdict{}, domain.ExtractionError("answer is missing required verdict keys", err)
	}

	fields, ok := obj.(map[string]any)
	if !ok {
		return domain.Verdict{}, domain.ExtractionError("answer is not a JSON object", nil)
	}

	return domain.Verdict{
		ExcessiveLoan:     normalizeBool(fields["excessive_loan"]),
		RightsRestriction: normalizeBool(fields["rights_restriction"]),
		TrustProperty:     normalizeBool(fields["trust_property"]),
		ResidentialUse:    normalizeBool(fields["residential_use"]),
		TaxDelinquency:    normalizeBool(fields["tax_delinquency"]),
		OwnerVerification: normalizeBool(fields["owner_verification"]),
	}, nil
}

// locate returns the first strategy candidate that parses as JSON.
func (e *Extractor) locate(rawText string) (any, error) {
	for _, strategy := range e.strategies {
		candidate, ok := strategy(rawText)
		if !ok {
			continue
		}
		var obj any
		if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
			continue
		}
		return obj, nil
	}
	return nil, domain.ExtractionError("no parseable JSON object in answer", nil)
}

// normalizeBool is total: booleans pass through, the truthy string tokens
// become true, everything else becomes false. Nothing is left ambiguous.
func normalizeBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return truthyTokens[strings.ToLower(strings.TrimSpace(val))]
	default:
		return false
	}
}
