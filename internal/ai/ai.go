package ai

import "context"

// Processor asks the processing collaborator to extract and index a
// document's content. The call is synchronous: it returns once the
// collaborator reports success or failure.
type Processor interface {
	Process(ctx context.Context, documentID string) (Result, error)
}

// Cleaner removes a document's derived data from the collaborator.
type Cleaner interface {
	Cleanup(ctx context.Context, documentID string) error
}

// Result carries what the collaborator reports back for a completed run.
type Result struct {
	Message    string `json:"message"`
	TokensUsed int    `json:"tokensUsed"`
}
