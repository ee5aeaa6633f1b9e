// Package logging provides the minimal structured logging surface used across
// supportmesh. Components depend only on the Logger interface; the default
// adapter wraps Go's log/slog so any slog handler can be plugged in, and
// NoOpLogger keeps tests and minimal setups silent.
package logging
