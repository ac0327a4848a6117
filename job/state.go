package job

// State is the observable state of a DelayedJob, per the four-state
// (plus terminating/terminated) machine of the coordinator design.
type State int

const (
	// Idle means no trigger is pending and no work is running.
	Idle State = iota
	// Waiting means a trigger has armed the ticker; work has not started.
	Waiting
	// Running means work is currently executing on the executor.
	Running
	// Terminating means Terminate was called while Running; the worker
	// has been asked to cancel and the coordinator is waiting for it to
	// return.
	Terminating
	// Terminated is absorbing: no further work will ever run.
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Waiting:
		return "WAITING"
	case Running:
		return "RUNNING"
	case Terminating:
		return "TERMINATING"
	case Terminated:
		return "TERMINATED"
	default:
		return "UNKNOWN"
	}
}
