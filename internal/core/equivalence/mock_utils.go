package equivalence

import (
	"context"
)

type MockLLMClient struct {
	Response string
	Err      error
	Prompts  []string
	// Block makes Generate wait for the context to end.
	Block bool
}

func (m *MockLLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

type MockClosingLLMClient struct {
	MockLLMClient
	Closed int
}

func (m *MockClosingLLMClient) Close() error {
	m.Closed++
	return nil
}
