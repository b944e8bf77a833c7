package rt

import (
	"errors"
	"fmt"
)

// ErrUnsupported reports a platform-capability gap, e.g. no real-time
// scheduling class or no memory locking. It is reported, never emulated.
var ErrUnsupported = errors.New("rt: not supported on this platform")

// ErrState is returned when a Thread method is called in the wrong state.
var ErrState = errors.New("rt: invalid thread state")

// ConfigError reports a failed thread configuration step. The control
// thread never enters its loop when one occurs.
type ConfigError struct {
	Step string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("rt: configure %s: %v", e.Step, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ResourceError reports a failure to lock process memory.
type ResourceError struct {
	Op  string
	Err error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("rt: %s: %v", e.Op, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// JoinError reports that the control thread ended abnormally. The run log
// is still readable after it.
type JoinError struct {
	Err error
}

func (e *JoinError) Error() string {
	return fmt.Sprintf("rt: join control thread: %v", e.Err)
}

func (e *JoinError) Unwrap() error {
	return e.Err
}
