package llm

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/extract.txt
	extractPrompt string
	//go:embed prompts/answer.txt
	answerPrompt string
	//go:embed prompts/audit.txt
	auditPrompt string
)

// ExtractPrompt builds the structured-field extraction prompt.
func ExtractPrompt(contractText string) string {
	return strings.NewReplacer("{{CONTRACT_TEXT}}", contractText).Replace(extractPrompt)
}

// AnswerPrompt builds the grounded question-answering prompt. documents is
// the marker-annotated context block.
func AnswerPrompt(question, documents string) string {
	return strings.NewReplacer("{{QUESTION}}", question, "{{DOCUMENTS}}", documents).Replace(answerPrompt)
}

// AuditPrompt builds the single-call risk checklist prompt.
func AuditPrompt(contractText string) string {
	return strings.NewReplacer("{{CONTRACT_TEXT}}", contractText).Replace(auditPrompt)
}
