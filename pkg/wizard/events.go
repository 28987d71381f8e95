// Package wizard drives the multi-step brand research flow: a five-state
// machine fed by server-sent events from the streaming analysis endpoints.
// Discrete named steps are translated into fixed progress checkpoints and
// state transitions.
package wizard

import (
	"encoding/json"
	"fmt"
	"strings"
)

// dataPrefix marks payload lines in an event stream body.
const dataPrefix = "data: "

// Event is one server-sent event from a streaming analysis endpoint.
type Event struct {
	Error    string          `json:"error,omitempty"`
	Status   string          `json:"status,omitempty"`
	Step     string          `json:"step,omitempty"`
	Progress *float64        `json:"progress,omitempty"`
	Result   json.RawMessage `json:"result,omitempty"`
}

// parseEventLine parses one line of a stream body. Lines without the
// "data: " prefix are not events; ok is false for those.
func parseEventLine(line string) (Event, bool, error) {
	if !strings.HasPrefix(line, dataPrefix) {
		return Event{}, false, nil
	}

	var event Event
	payload := strings.TrimPrefix(line, dataPrefix)
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return Event{}, true, fmt.Errorf("failed to parse stream event: %w", err)
	}

	return event, true, nil
}
