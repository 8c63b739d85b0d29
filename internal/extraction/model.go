package extraction

// Method records which level of the fallback chain produced a result.
type Method string

const (
	MethodAI            Method = "ai"
	MethodFallbackRegex Method = "fallback_regex"
	MethodEmpty         Method = "empty"
)

// Party is a contracting party.
type Party struct {
	Name string  `json:"name"`
	Role *string `json:"role"`
}

// Signatory is a person signing the contract.
type Signatory struct {
	Name  string  `json:"name"`
	Title *string `json:"title"`
}

// LiabilityCap is the contractual liability ceiling.
type LiabilityCap struct {
	Amount   *float64 `json:"amount"`
	Currency *string  `json:"currency"`
}

// Fields is the structured view of a contract. Every field may be absent;
// Method and Confidence always describe where the values came from.
type Fields struct {
	Parties         []Party       `json:"parties"`
	EffectiveDate   *string       `json:"effective_date"`
	Term            *string       `json:"term"`
	GoverningLaw    *string       `json:"governing_law"`
	PaymentTerms    *string       `json:"payment_terms"`
	Termination     *string       `json:"termination"`
	AutoRenewal     *string       `json:"auto_renewal"`
	Confidentiality *string       `json:"confidentiality"`
	Indemnity       *string       `json:"indemnity"`
	LiabilityCap    *LiabilityCap `json:"liability_cap"`
	Signatories     []Signatory   `json:"signatories"`
	Method          Method        `json:"extraction_method"`
	Confidence      float64       `json:"confidence"`
}

// Empty is the terminal result of the fallback chain.
func Empty() Fields {
	return Fields{
		Parties:     []Party{},
		Signatories: []Signatory{},
		Method:      MethodEmpty,
		Confidence:  0,
	}
}

func strPtr(s string) *string {
	return &s
}
