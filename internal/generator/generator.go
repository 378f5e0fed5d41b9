package generator

import "context"

// Generator produces a result for a rendered prompt. The result must be
// JSON-serializable; its shape is generator-defined.
type Generator interface {
	Generate(ctx context.Context, prompt string) (any, error)
}

// Echo is a generator that returns the prompt unchanged. It is the
// default when no generator endpoint is configured, keeping sessions
// runnable without any external service.
type Echo struct{}

var _ Generator = (*Echo)(nil)

func (Echo) Generate(_ context.Context, prompt string) (any, error) {
	return prompt, nil
}
