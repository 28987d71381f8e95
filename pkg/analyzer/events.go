// Package analyzer runs the brand research pipeline: brand profiling,
// search query generation, and GEO positioning tests across LLM providers.
// Each stage reports progress through a stream of events that handlers relay
// to the client as server-sent events.
package analyzer

// StreamEvent is one progress event emitted by an analysis stage.
// Error is mutually exclusive with the other fields: on error the stage
// stops and the event stream ends.
type StreamEvent struct {
	Error    string `json:"error,omitempty"`
	Status   string `json:"status,omitempty"`
	Step     string `json:"step,omitempty"`
	Progress *int   `json:"progress,omitempty"`
	Result   any    `json:"result,omitempty"`
}

// EmitFunc receives stream events as a stage progresses.
type EmitFunc func(StreamEvent)

// Step names emitted by the brand info stage.
const (
	StepInit        = "init"
	StepDescription = "description"
	StepIndustry    = "industry"
	StepCompetitors = "competitors"
	StepName        = "name"
	StepComplete    = "complete"
)

// Step names emitted by the query generation and positioning stages.
const (
	StepGenerating       = "generating"
	StepAnalysisComplete = "analysis_complete"
	StepSuggestions      = "suggestions"
)

func statusEvent(status, step string) StreamEvent {
	return StreamEvent{Status: status, Step: step}
}

func progressEvent(status, step string, progress int) StreamEvent {
	return StreamEvent{Status: status, Step: step, Progress: &progress}
}

func errorEvent(message string) StreamEvent {
	return StreamEvent{Error: message}
}
