package analyze

import "github.com/leaseguard/leaseguard/internal/domain"

// instructionText is the fixed rubric sent with every analysis request. It is
// literal and never templated: auditors must be able to compare requests
// knowing the instruction block is identical across all of them.
const instructionText = `**IMPORTANT**: Read the text of the provided documents carefully and judge only
from evidence explicitly stated in them. Never guess.

Evaluate the following 6 items strictly from the document contents:

**1. Excessive loans (excessive_loan)**
- Check the "을구" (section B / encumbrances) of the property register (등기부등본)
- Judge whether the registered mortgage amounts (근저당권 설정액, 채권최고액) are excessively high
- Check whether multiple debt entries are recorded
- Basis: concrete amounts stated in the document; if no debt amounts appear, judge false

**2. Restrictions on rights (rights_restriction)**
- Check the "갑구" (section A / ownership) of the property register
- Look for entries such as "압류" (seizure), "가압류" (provisional seizure),
  "처분금지" (prohibition of disposal), "가처분" (provisional disposition)
- Basis: the concrete restriction text stated in the document

**3. Trust property (trust_property)**
- Look for "신탁" (trust) entries in the property register
- Check whether ownership is held by a trust company or trust bank
- Basis: explicit trust-related text in the document

**4. Residential use (residential_use)**
- Check the "용도" (use) field of the building ledger (건축물대장)
- True for residential uses such as "단독주택", "공동주택", "아파트", "연립주택", "다세대주택"
- False for "상가", "사무소", "근린생활시설", "공장", "창고" and other non-residential uses
- Basis: the exact use text stated in the building ledger

**5. Delinquent taxes (tax_delinquency)**
- Check the "체납액" (delinquent amount) field of the tax payment certificate (납세증명서)
- True when the delinquent amount is not zero and not "없음" (none)
- Basis: the concrete delinquent amount stated in the document

**6. Owner name match (owner_verification)**
- The "성명" / "납세자명" (taxpayer name) on the tax payment certificate
- The "소유자" (owner) name on the property register
- Confirm the names across the documents match exactly
- Basis: the concrete names stated in each document

**Analysis rules:**
- When a document does not clearly state the relevant information, judge in the affirmative
- Never speculate; judge only from the text of the documents
- Amounts, names and uses are judged by exact text match

**IMPORTANT**: check item 6 with particular care. If the owner name differs in
even one place, judge false. For example, if all documents agree except one,
the answer is false.

Respond ONLY in the following JSON format:

{
  "excessive_loan": true or false,
  "rights_restriction": true or false,
  "trust_property": true or false,
  "residential_use": true or false,
  "tax_delinquency": true or false,
  "owner_verification": true or false
}`

// AssembleRequest builds the single inference request: the fixed instruction
// block followed by the full ordered list of asset references.
func AssembleRequest(assets []domain.AssetReference) domain.InferenceRequest {
	refs := make([]domain.AssetReference, len(assets))
	copy(refs, assets)
	return domain.InferenceRequest{
		Instruction: instructionText,
		Assets:      refs,
	}
}
