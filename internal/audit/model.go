package audit

import "strings"

// Severity ranks a finding.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// ClauseType is the checklist category a finding belongs to.
type ClauseType string

const (
	ClauseAutoRenewal     ClauseType = "auto_renewal"
	ClauseLiability       ClauseType = "liability"
	ClauseIndemnity       ClauseType = "indemnity"
	ClauseTermination     ClauseType = "termination"
	ClausePayment         ClauseType = "payment"
	ClauseConfidentiality ClauseType = "confidentiality"
	ClauseOther           ClauseType = "other"
)

// Finding is one risky clause. Evidence is always text copied from the
// document, and Page is the page it starts on when the text has markers.
type Finding struct {
	Severity       Severity   `json:"severity"`
	ClauseType     ClauseType `json:"clause_type"`
	Description    string     `json:"description"`
	Evidence       string     `json:"evidence"`
	DocumentID     string     `json:"document_id"`
	Page           *int       `json:"page"`
	Recommendation string     `json:"recommendation"`
}

// NormalizeSeverity keeps the model's classification when it is one of the
// allowed values and falls back to medium otherwise.
func NormalizeSeverity(v any) Severity {
	s, _ := v.(string)
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityHigh:
		return SeverityHigh
	case SeverityLow:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// NormalizeClauseType maps free-form labels such as "Auto-Renewal" onto the
// checklist; anything unknown becomes other.
func NormalizeClauseType(v any) ClauseType {
	s, _ := v.(string)
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	switch ClauseType(key) {
	case ClauseAutoRenewal, ClauseLiability, ClauseIndemnity, ClauseTermination,
		ClausePayment, ClauseConfidentiality, ClauseOther:
		return ClauseType(key)
	case "indemnification":
		return ClauseIndemnity
	case "limitation_of_liability", "liability_cap":
		return ClauseLiability
	default:
		return ClauseOther
	}
}

func unavailableFinding(documentID string) Finding {
	return Finding{
		Severity:       SeverityLow,
		ClauseType:     ClauseOther,
		Description:    "automated audit unavailable",
		Evidence:       "",
		DocumentID:     documentID,
		Recommendation: "manual review required",
	}
}

func noRisksFinding(documentID string) Finding {
	return Finding{
		Severity:       SeverityLow,
		ClauseType:     ClauseOther,
		Description:    "no risky clauses detected",
		Evidence:       "",
		DocumentID:     documentID,
		Recommendation: "manual review recommended",
	}
}
