package extraction

import (
	"strconv"
	"strings"

	"contract-backend/internal/llm"
)

// fieldsSchema is the shape the model must return. Unknown keys are allowed
// and every known key must have the right type when present. At least one
// extracted field has to be present; a reply carrying only confidence or
// unrelated keys is rejected.
var fieldsSchema = llm.MustCompileSchema("extracted_fields", map[string]any{
	"type":  "object",
	"anyOf": requireOneOf(fieldKeys...),
	"properties": map[string]any{
		"parties": map[string]any{
			"type": []string{"array", "null"},
			"items": map[string]any{
				"type":     "object",
				"required": []string{"name"},
				"properties": map[string]any{
					"name": map[string]any{"type": "string"},
					"role": llm.NullableString(),
				},
			},
		},
		"effective_date":  llm.NullableString(),
		"term":            llm.NullableString(),
		"governing_law":   llm.NullableString(),
		"payment_terms":   llm.NullableString(),
		"termination":     llm.NullableString(),
		"auto_renewal":    llm.NullableString(),
		"confidentiality": llm.NullableString(),
		"indemnity":       llm.NullableString(),
		"liability_cap": map[string]any{
			"type": []string{"object", "null"},
			"properties": map[string]any{
				"amount":   map[string]any{"type": []string{"number", "string", "null"}},
				"currency": llm.NullableString(),
			},
		},
		"signatories": map[string]any{
			"type": []string{"array", "null"},
			"items": map[string]any{
				"type":     "object",
				"required": []string{"name"},
				"properties": map[string]any{
					"name":  map[string]any{"type": "string"},
					"title": llm.NullableString(),
				},
			},
		},
		"confidence": map[string]any{"type": []string{"number", "null"}},
	},
})

var fieldKeys = []string{
	"parties",
	"effective_date",
	"term",
	"governing_law",
	"payment_terms",
	"termination",
	"auto_renewal",
	"confidentiality",
	"indemnity",
	"liability_cap",
	"signatories",
}

func requireOneOf(keys ...string) []any {
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = map[string]any{"required": []string{k}}
	}
	return out
}

type aiFields struct {
	Parties         []Party     `json:"parties"`
	EffectiveDate   *string     `json:"effective_date"`
	Term            *string     `json:"term"`
	GoverningLaw    *string     `json:"governing_law"`
	PaymentTerms    *string     `json:"payment_terms"`
	Termination     *string     `json:"termination"`
	AutoRenewal     *string     `json:"auto_renewal"`
	Confidentiality *string     `json:"confidentiality"`
	Indemnity       *string     `json:"indemnity"`
	LiabilityCap    *aiCap      `json:"liability_cap"`
	Signatories     []Signatory `json:"signatories"`
	Confidence      *float64    `json:"confidence"`
}

type aiCap struct {
	Amount   any     `json:"amount"`
	Currency *string `json:"currency"`
}

// toFields normalizes decoded model output. Blank strings become nulls and
// list entries without a name are dropped.
func (a aiFields) toFields(defaultConfidence float64) Fields {
	out := Fields{
		Parties:         []Party{},
		Signatories:     []Signatory{},
		EffectiveDate:   clean(a.EffectiveDate),
		Term:            clean(a.Term),
		GoverningLaw:    clean(a.GoverningLaw),
		PaymentTerms:    clean(a.PaymentTerms),
		Termination:     clean(a.Termination),
		AutoRenewal:     clean(a.AutoRenewal),
		Confidentiality: clean(a.Confidentiality),
		Indemnity:       clean(a.Indemnity),
		Method:          MethodAI,
		Confidence:      defaultConfidence,
	}
	for _, p := range a.Parties {
		if name := strings.TrimSpace(p.Name); name != "" {
			out.Parties = append(out.Parties, Party{Name: name, Role: clean(p.Role)})
		}
	}
	for _, s := range a.Signatories {
		if name := strings.TrimSpace(s.Name); name != "" {
			out.Signatories = append(out.Signatories, Signatory{Name: name, Title: clean(s.Title)})
		}
	}
	if a.LiabilityCap != nil {
		amount := parseAmount(a.LiabilityCap.Amount)
		currency := clean(a.LiabilityCap.Currency)
		if amount != nil || currency != nil {
			out.LiabilityCap = &LiabilityCap{Amount: amount, Currency: currency}
		}
	}
	if a.Confidence != nil && *a.Confidence >= 0 && *a.Confidence <= 1 {
		out.Confidence = *a.Confidence
	}
	return out
}

func clean(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" || strings.EqualFold(trimmed, "null") {
		return nil
	}
	return &trimmed
}

// parseAmount accepts a JSON number or a string such as "$1,000,000.00".
func parseAmount(v any) *float64 {
	switch val := v.(type) {
	case float64:
		return &val
	case string:
		digits := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' {
				return r
			}
			return -1
		}, val)
		if digits == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			return nil
		}
		return &parsed
	default:
		return nil
	}
}
