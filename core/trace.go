package core

import "time"

// TraceMetadata tags a trace with its outcome. Success mirrors the external
// action's own reported outcome; HasError/Exception are set when the call
// returned an error (or panicked) regardless of what the action reported.
type TraceMetadata struct {
	Success   bool   `json:"success"`
	HasError  bool   `json:"has_error"`
	Exception string `json:"exception,omitempty"`
}

// ToolTrace is the timed, outcome-tagged record of one external action
// invocation. Exactly one is produced per invocation, success or failure,
// and traces are append-only within a turn.
type ToolTrace struct {
	Name       string         `json:"name"`
	Inputs     map[string]any `json:"inputs"`
	Output     any            `json:"output,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	DurationMS int64          `json:"duration_ms"`
	Metadata   TraceMetadata  `json:"metadata"`
}
