package answers

import (
	"context"

	"contract-backend/internal/documents"
	"contract-backend/internal/extract"
	"contract-backend/internal/llm"
)

type fakeClient struct {
	response string
	err      error
	prompts  []string
	opts     []llm.Options
}

func (f *fakeClient) Name() string { return "fake" }

func (f *fakeClient) Complete(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.opts = append(f.opts, opts)
	return f.response, f.err
}

// streamingClient emits chunks one by one and then fails with err, if set.
type streamingClient struct {
	fakeClient
	chunks []string
}

func (s *streamingClient) Stream(ctx context.Context, prompt string, opts llm.Options, emit llm.ChunkFunc) error {
	s.prompts = append(s.prompts, prompt)
	for _, c := range s.chunks {
		if err := emit(c); err != nil {
			return err
		}
	}
	return s.err
}

// corpus has three contracts; only msa.pdf page 4 talks about notice periods.
func corpus() []documents.Document {
	nda := extract.JoinPages([]string{
		"This Non-Disclosure Agreement protects confidential information shared by Acme.",
		"Confidential information excludes public knowledge.",
	})
	msa := extract.JoinPages([]string{
		"This Master Services Agreement is made between Acme Corp and Beta LLC.",
		"Beta LLC shall deliver the services described in each statement of work.",
		"Fees are payable within thirty days of invoice.",
		"Either party may terminate this Agreement upon ninety days written notice to the other party.",
	})
	lease := extract.JoinPages([]string{
		"The tenant shall pay rent monthly in advance.",
	})
	return []documents.Document{
		{ID: "nda-1", Filename: "nda.pdf", Text: nda, PageCount: 2},
		{ID: "msa-2", Filename: "msa.pdf", Text: msa, PageCount: 4},
		{ID: "lease-3", Filename: "lease.pdf", Text: lease, PageCount: 1},
	}
}
