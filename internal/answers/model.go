package answers

// Citation points at verbatim text in a source document. CharStart and
// CharEnd are character offsets of TextSnippet within the document text.
type Citation struct {
	DocumentID  string `json:"document_id"`
	Page        *int   `json:"page"`
	CharStart   *int   `json:"char_start,omitempty"`
	CharEnd     *int   `json:"char_end,omitempty"`
	TextSnippet string `json:"text_snippet"`
}

// Answer is a grounded response to a question.
type Answer struct {
	Text       string     `json:"answer"`
	Citations  []Citation `json:"citations"`
	Confidence float64    `json:"confidence"`
}

const (
	// NoDocumentsAnswer is returned when there is nothing to ground on.
	NoDocumentsAnswer = "No information available: no documents were provided to answer this question."
	// UnavailableAnswer is returned when the model could not be reached.
	UnavailableAnswer = "The answer is unavailable right now: the information could not be retrieved from the documents."

	citedConfidence   = 0.85
	uncitedConfidence = 0.5
)

func degraded(text string) Answer {
	return Answer{Text: text, Citations: []Citation{}, Confidence: 0}
}
