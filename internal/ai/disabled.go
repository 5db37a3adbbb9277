package ai

import "context"

// Disabled stands in when no collaborator endpoint is configured.
// Processing requests fail with ErrNotConfigured; cleanup is a no-op so
// deletion still succeeds in environments without the collaborator.
type Disabled struct{}

func (Disabled) Process(ctx context.Context, documentID string) (Result, error) {
	return Result{}, ErrNotConfigured
}

func (Disabled) Cleanup(ctx context.Context, documentID string) error {
	return nil
}

var (
	_ Processor = Disabled{}
	_ Cleaner   = Disabled{}
)
