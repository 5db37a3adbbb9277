package quota

import (
	"context"
	"fmt"

	"knowledgebase-backend/internal/documents"
	"knowledgebase-backend/internal/usage"
)

// Limits are the team-wide resource ceilings.
type Limits struct {
	MaxStorageBytes  int64
	MaxMonthlyTokens int
}

// Snapshot is a point-in-time view of consumption against the limits.
// The at-limit flags are inclusive: hitting the ceiling exactly counts
// as exhausted.
type Snapshot struct {
	StorageUsed    int64 `json:"storageUsed"`
	StorageMax     int64 `json:"storageMax"`
	StorageAtLimit bool  `json:"storageAtLimit"`
	TokensUsed     int   `json:"tokensUsed"`
	TokensMax      int   `json:"tokensMax"`
	TokensAtLimit  bool  `json:"tokensAtLimit"`
}

// Gate answers quota questions by summing live records. Checks are
// advisory: nothing reserves capacity between a check and the operation
// it guards, so concurrent batches can land slightly over the ceiling.
type Gate struct {
	Docs   documents.Repo
	Usage  usage.Store
	Limits Limits
}

func (g *Gate) Check(ctx context.Context) (Snapshot, error) {
	storageUsed, err := g.storageUsed(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	tokensUsed, err := g.tokensUsed(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		StorageUsed:    storageUsed,
		StorageMax:     g.Limits.MaxStorageBytes,
		StorageAtLimit: storageUsed >= g.Limits.MaxStorageBytes,
		TokensUsed:     tokensUsed,
		TokensMax:      g.Limits.MaxMonthlyTokens,
		TokensAtLimit:  tokensUsed >= g.Limits.MaxMonthlyTokens,
	}, nil
}

// CheckUpload verifies that batchBytes more storage would fit. A batch
// that would cross the ceiling is rejected whole.
func (g *Gate) CheckUpload(ctx context.Context, batchBytes int64) error {
	used, err := g.storageUsed(ctx)
	if err != nil {
		return err
	}
	if used+batchBytes > g.Limits.MaxStorageBytes {
		return &ExceededError{
			Resource:  "storage",
			Used:      used,
			Max:       g.Limits.MaxStorageBytes,
			Requested: batchBytes,
		}
	}
	return nil
}

// CheckTokens verifies that the monthly token ceiling has not been hit.
func (g *Gate) CheckTokens(ctx context.Context) error {
	used, err := g.tokensUsed(ctx)
	if err != nil {
		return err
	}
	if used >= g.Limits.MaxMonthlyTokens {
		return &ExceededError{
			Resource: "tokens",
			Used:     int64(used),
			Max:      int64(g.Limits.MaxMonthlyTokens),
		}
	}
	return nil
}

func (g *Gate) storageUsed(ctx context.Context) (int64, error) {
	docs, err := g.Docs.List(ctx, documents.Filter{})
	if err != nil {
		return 0, fmt.Errorf("quota storage check: %w", err)
	}
	var total int64
	for _, d := range docs {
		total += d.SizeBytes
	}
	return total, nil
}

func (g *Gate) tokensUsed(ctx context.Context) (int, error) {
	records, err := g.Usage.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("quota token check: %w", err)
	}
	return usage.TotalTokens(records), nil
}
