// Package cancel provides the shared control flags between the orchestrator
// and the control thread.
//
// Each flag has exactly one writer and one reader:
//   - AtomicCanceler: the stop request, written by the cancellation path and
//     polled by the control loop once per period
//   - Latch: a one-shot "started" signal, closed once by the control thread
//     and waited on by the orchestrator
//   - Flags: both of the above bundled into the object handed to the loop
//
// Polling a stop flag in a periodic loop costs one atomic load; there is no
// channel select on the hot path.
package cancel

// Canceler provides cancellation signaling to workers.
//
// Implementations must be safe for concurrent use:
//   - Multiple goroutines may call Done() concurrently
//   - Cancel() may be called concurrently with Done()
type Canceler interface {
	// Done returns true if cancellation has been triggered.
	Done() bool

	// Cancel triggers cancellation. Safe to call multiple times.
	Cancel()
}
