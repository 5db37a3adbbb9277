package usage

import "context"

// Store lists usage records. Read-only: totals are re-derived from the
// full record set on every quota check rather than kept as a counter.
type Store interface {
	List(ctx context.Context) ([]Record, error)
}

// TotalTokens sums token counts over a record set.
func TotalTokens(records []Record) int {
	total := 0
	for _, rec := range records {
		total += rec.TokenCount
	}
	return total
}
