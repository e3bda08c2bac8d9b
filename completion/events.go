package completion

import "github.com/tailored-agentic-units/interview/observability"

// Completion event types.
const (
	EventStep       observability.EventType = "completion.step"
	EventStepFailed observability.EventType = "completion.step.failed"
)

// Downstream step names carried in event data.
const (
	StepProcess  = "process"
	StepTraining = "kb-training"
	StepArchive  = "archive"
)
