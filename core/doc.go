// Package core defines the shared domain model of supportmesh: the
// per-conversation state document, message and tool-trace records, the
// conversation store contract and the error taxonomy used across the
// router, workflow and engine packages.
//
// The ConversationState document is the durable contract read by external
// tooling (dashboards, evaluators); its field set and JSON encoding are
// stable and append-only.
package core
