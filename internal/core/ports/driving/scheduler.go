package driving

import "context"

// Scheduler runs background maintenance such as session sweeps and
// history pruning.
type Scheduler interface {
	// Start begins running scheduled tasks.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop halts all scheduled tasks.
	Stop() error
}
