package scan

import "sync/atomic"

// State is the lifecycle position of a scan session.
type State int32

const (
	StateIdle     State = iota // Created, worker not started yet
	StateRunning               // Worker capturing
	StateStopping              // Stop requested, waiting for the worker
	StateStopped               // Resources released
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	}
	return "Unknown"
}

// AtomicState wraps atomic operations for State
type AtomicState struct {
	v int32
}

func (a *AtomicState) Set(s State) {
	atomic.StoreInt32(&a.v, int32(s))
}

func (a *AtomicState) Get() State {
	return State(atomic.LoadInt32(&a.v))
}

func (a *AtomicState) CompareAndSwap(old, new State) bool {
	return atomic.CompareAndSwapInt32(&a.v, int32(old), int32(new))
}
