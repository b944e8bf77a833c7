// Package rt configures and runs the real-time control thread.
//
// The control loop runs on a goroutine that is locked to its OS thread for
// its whole life, so scheduling attributes applied from inside it stick to
// the loop. The thread is never handed back to the Go scheduler: when the
// goroutine returns while still locked, the runtime retires the thread
// along with its real-time priority.
package rt

import (
	"errors"
	"fmt"
	"strings"
)

// Policy is a scheduling class.
type Policy int

const (
	// PolicyOther is the default time-sharing class.
	PolicyOther Policy = iota
	// PolicyFIFO is fixed-priority, run until block or preemption by a
	// higher priority.
	PolicyFIFO
	// PolicyRR is PolicyFIFO with a time slice among equal priorities.
	PolicyRR
)

func (p Policy) String() string {
	switch p {
	case PolicyOther:
		return "other"
	case PolicyFIFO:
		return "fifo"
	case PolicyRR:
		return "rr"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy parses "other", "fifo" or "rr".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "other", "normal":
		return PolicyOther, nil
	case "fifo":
		return PolicyFIFO, nil
	case "rr":
		return PolicyRR, nil
	}
	return 0, fmt.Errorf("rt: unknown scheduling policy %q", s)
}

// Inherit selects where the thread's scheduling attributes come from.
type Inherit int

const (
	// InheritExplicit applies Attr's policy and priority to the thread.
	InheritExplicit Inherit = iota
	// InheritFromCreator leaves the thread with the process's attributes.
	InheritFromCreator
)

const (
	// MinStackSize is the smallest stack a control thread may ask for
	// (glibc's PTHREAD_STACK_MIN).
	MinStackSize = 16 << 10
	// MinPriority and MaxPriority bound the real-time priorities.
	MinPriority = 1
	MaxPriority = 99
	// DefaultPriority leaves headroom above it for kernel threads such as
	// interrupt handlers.
	DefaultPriority = 80
)

// ErrInvalidAttr is wrapped by ConfigError for out-of-range attributes.
var ErrInvalidAttr = errors.New("rt: invalid thread attribute")

// Attr is the set of attributes the control thread is configured with.
type Attr struct {
	Policy   Policy
	Priority int
	// StackSize is checked against MinStackSize. Goroutine stacks grow on
	// demand, so it is not otherwise applied.
	StackSize int
	Inherit   Inherit
}

// DefaultAttr is SCHED_FIFO at DefaultPriority with explicit attributes.
func DefaultAttr() Attr {
	return Attr{
		Policy:    PolicyFIFO,
		Priority:  DefaultPriority,
		StackSize: MinStackSize,
		Inherit:   InheritExplicit,
	}
}

// Validate runs the attribute setup steps in order and reports the first
// one that fails as a *ConfigError.
func (a Attr) Validate() error {
	if a.StackSize < MinStackSize {
		return &ConfigError{Step: "stacksize", Err: fmt.Errorf("%w: stack size %d below minimum %d", ErrInvalidAttr, a.StackSize, MinStackSize)}
	}
	switch a.Policy {
	case PolicyOther, PolicyFIFO, PolicyRR:
	default:
		return &ConfigError{Step: "schedpolicy", Err: fmt.Errorf("%w: %v", ErrInvalidAttr, a.Policy)}
	}
	if a.Policy == PolicyOther {
		if a.Priority != 0 {
			return &ConfigError{Step: "schedparam", Err: fmt.Errorf("%w: policy other takes priority 0, got %d", ErrInvalidAttr, a.Priority)}
		}
	} else if a.Priority < MinPriority || a.Priority > MaxPriority {
		return &ConfigError{Step: "schedparam", Err: fmt.Errorf("%w: priority %d outside [%d, %d]", ErrInvalidAttr, a.Priority, MinPriority, MaxPriority)}
	}
	switch a.Inherit {
	case InheritExplicit, InheritFromCreator:
	default:
		return &ConfigError{Step: "inheritsched", Err: fmt.Errorf("%w: inherit mode %d", ErrInvalidAttr, int(a.Inherit))}
	}
	return nil
}
