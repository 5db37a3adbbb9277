package usage

import "time"

// Record is one AI invocation's token consumption. Records are written
// by the AI processing service; this core only reads them and derives
// totals by summation.
type Record struct {
	ID         string
	TokenCount int
	CreatedAt  time.Time
}
