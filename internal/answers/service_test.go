package answers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contract-backend/internal/documents"
	"contract-backend/internal/llm"
	"contract-backend/internal/shared/metrics"
)

func TestAnswerWithoutDocuments(t *testing.T) {
	client := &fakeClient{response: "should not be called"}
	svc := &Service{LLM: client}

	got := svc.Answer(context.Background(), "What is the term?", nil)

	assert.Equal(t, NoDocumentsAnswer, got.Text)
	assert.Contains(t, strings.ToLower(got.Text), "no information available")
	assert.Empty(t, got.Citations)
	assert.NotNil(t, got.Citations)
	assert.Equal(t, 0.0, got.Confidence)
	assert.Empty(t, client.prompts)
}

func TestAnswerCitesDocumentTwoPageFour(t *testing.T) {
	client := &fakeClient{response: "Either party may terminate with ninety days written notice [DOCUMENT: msa-2] [PAGE 4]."}
	collector := metrics.NewCollector()
	svc := &Service{LLM: client, Metrics: collector}

	got := svc.Answer(context.Background(), "How much notice is needed to terminate?", corpus())

	require.Len(t, got.Citations, 1)
	assert.Equal(t, "msa-2", got.Citations[0].DocumentID)
	assert.Equal(t, 4, *got.Citations[0].Page)
	assert.Equal(t, citedConfidence, got.Confidence)
	assert.Equal(t, llm.Options{Temperature: 0.3, MaxTokens: 1000}, client.opts[0])
	assert.Equal(t, uint64(1), collector.Snapshot()["questions_total"])

	prompt := client.prompts[0]
	for _, d := range corpus() {
		assert.Contains(t, prompt, "[DOCUMENT: "+d.ID+"]")
	}
	assert.Contains(t, prompt, "How much notice is needed to terminate?")
}

func TestAnswerWithoutCitationsHasLowerConfidence(t *testing.T) {
	svc := &Service{LLM: &fakeClient{response: "The documents do not say."}}
	got := svc.Answer(context.Background(), "Who is the landlord?", corpus())
	assert.Empty(t, got.Citations)
	assert.Equal(t, uncitedConfidence, got.Confidence)
}

func TestAnswerDegradesOnProviderFailure(t *testing.T) {
	collector := metrics.NewCollector()
	svc := &Service{
		LLM:     &fakeClient{err: &llm.ProviderError{Kind: llm.KindTimeout, Provider: "fake", Err: context.DeadlineExceeded}},
		Metrics: collector,
	}
	got := svc.Answer(context.Background(), "What is the term?", corpus())

	assert.Equal(t, UnavailableAnswer, got.Text)
	assert.Empty(t, got.Citations)
	assert.Equal(t, 0.0, got.Confidence)
	assert.Equal(t, uint64(1), collector.Snapshot()[`provider_failures_total{kind="timeout"}`])
}

func TestAnswerDegradesOnBlankOutput(t *testing.T) {
	svc := &Service{LLM: &fakeClient{response: "   "}}
	got := svc.Answer(context.Background(), "q", corpus())
	assert.Equal(t, UnavailableAnswer, got.Text)
}

func TestAnswerTruncatesEachDocument(t *testing.T) {
	docs := []documents.Document{
		{ID: "a", Text: strings.Repeat("a", DefaultDocCharBudget) + "TAILA"},
		{ID: "b", Text: strings.Repeat("b", DefaultDocCharBudget-1) + "Q"},
	}
	client := &fakeClient{response: "nothing"}
	svc := &Service{LLM: client}
	svc.Answer(context.Background(), "q", docs)

	prompt := client.prompts[0]
	assert.NotContains(t, prompt, "TAILA")
	assert.Contains(t, prompt, strings.Repeat("a", DefaultDocCharBudget))
	assert.Contains(t, prompt, strings.Repeat("b", DefaultDocCharBudget-1)+"Q")
}

func TestAnswerStreamEmitsChunksThenCitations(t *testing.T) {
	client := &streamingClient{chunks: []string{"Either party may terminate ", "with ninety days written notice ", "[DOCUMENT: msa-2] [PAGE 4]."}}
	svc := &Service{LLM: client}

	var got []string
	citations, err := svc.AnswerStream(context.Background(), "notice?", corpus(), func(chunk string) error {
		got = append(got, chunk)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, client.chunks, got)
	require.Len(t, citations, 1)
	assert.Equal(t, "msa-2", citations[0].DocumentID)
	assert.Equal(t, 4, *citations[0].Page)
}

func TestAnswerStreamWithNonStreamingClient(t *testing.T) {
	svc := &Service{LLM: &fakeClient{response: "Fees are payable within thirty days [DOCUMENT: msa-2] [PAGE 3]."}}
	var got []string
	citations, err := svc.AnswerStream(context.Background(), "fees?", corpus(), func(chunk string) error {
		got = append(got, chunk)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	require.Len(t, citations, 1)
	assert.Equal(t, 3, *citations[0].Page)
}

func TestAnswerStreamFailureMidStream(t *testing.T) {
	client := &streamingClient{chunks: []string{"Partial "}}
	client.err = &llm.ProviderError{Kind: llm.KindUnavailable, Provider: "fake", Err: errors.New("connection reset")}
	svc := &Service{LLM: client}

	var got []string
	citations, err := svc.AnswerStream(context.Background(), "q", corpus(), func(chunk string) error {
		got = append(got, chunk)
		return nil
	})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Partial ", got[0])
	assert.Contains(t, got[1], UnavailableAnswer)
	assert.Empty(t, citations)
	assert.NotNil(t, citations)
}

func TestAnswerStreamStopsWhenConsumerLeaves(t *testing.T) {
	client := &streamingClient{chunks: []string{"one ", "two ", "three"}}
	svc := &Service{LLM: client}
	gone := errors.New("client disconnected")

	var got []string
	citations, err := svc.AnswerStream(context.Background(), "q", corpus(), func(chunk string) error {
		got = append(got, chunk)
		if len(got) == 2 {
			return gone
		}
		return nil
	})

	assert.ErrorIs(t, err, gone)
	assert.Nil(t, citations)
	assert.Equal(t, []string{"one ", "two "}, got)
}

func TestAnswerStreamWithoutDocuments(t *testing.T) {
	svc := &Service{LLM: &streamingClient{}}
	var got []string
	citations, err := svc.AnswerStream(context.Background(), "q", nil, func(chunk string) error {
		got = append(got, chunk)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{NoDocumentsAnswer}, got)
	assert.Empty(t, citations)
}
