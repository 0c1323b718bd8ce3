package conversion

// Outcome is the terminal result of one external-tool invocation
type Outcome struct {
	Success bool
}

// State is the orchestrator's single-flight state
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// Event is delivered on a run's event channel: either a LogLine or Finished
type Event interface {
	isEvent()
}

// LogLine is one line of the tool's combined output, in emission order
type LogLine struct {
	Seq  int // 1-based position within the run
	Text string
}

// Finished is always the last event of a run, sent after the process has exited
type Finished struct {
	Outcome Outcome
}

func (LogLine) isEvent()  {}
func (Finished) isEvent() {}
