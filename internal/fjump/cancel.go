package fjump

import "sync/atomic"

// CancelFlag is a cooperative cancellation handle shared between a caller
// and an in-flight transfer. Transfers check it at documented suspension
// points: before each upload chunk is sent and before each download block
// is written. A nil *CancelFlag is valid and never reports cancellation.
type CancelFlag struct {
	set atomic.Bool
}

// Cancel requests cancellation. Safe for concurrent use.
func (c *CancelFlag) Cancel() {
	c.set.Store(true)
}

// Cancelled reports whether cancellation has been requested.
func (c *CancelFlag) Cancelled() bool {
	return c != nil && c.set.Load()
}

// Reset clears the flag so the handle can be reused for the next transfer.
func (c *CancelFlag) Reset() {
	c.set.Store(false)
}
