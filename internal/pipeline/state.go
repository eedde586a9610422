package pipeline

// State is the position of a Run in the analysis state machine.
type State int

const (
	// StateIdle is the initial state before any work.
	StateIdle State = iota
	// StateFetching is the primary page request.
	StateFetching
	// StateParsing builds the document tree.
	StateParsing
	// StateExtractingResources discovers and downloads stylesheets and scripts.
	StateExtractingResources
	// StateAnalyzing runs the analyzers.
	StateAnalyzing
	// StateAssembled is terminal: the report is complete.
	StateAssembled
	// StateFailed is terminal: the run was aborted.
	StateFailed
)

// String returns the state name used in logs and metrics.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateParsing:
		return "parsing"
	case StateExtractingResources:
		return "extracting_resources"
	case StateAnalyzing:
		return "analyzing"
	case StateAssembled:
		return "assembled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateAssembled || s == StateFailed
}
