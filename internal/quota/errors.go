package quota

import "fmt"

// ExceededError reports that an operation would push a tracked resource
// past its ceiling. Requested is zero for at-limit checks that do not
// involve new bytes or tokens.
type ExceededError struct {
	Resource  string // "storage" or "tokens"
	Used      int64
	Max       int64
	Requested int64
}

func (e *ExceededError) Error() string {
	if e.Requested > 0 {
		return fmt.Sprintf("%s limit exceeded: used %d of %d, requested %d more", e.Resource, e.Used, e.Max, e.Requested)
	}
	return fmt.Sprintf("%s limit reached: used %d of %d", e.Resource, e.Used, e.Max)
}
