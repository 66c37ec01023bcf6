package metrics

// Outcome labels for RecordRun.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
