package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/logging"
)

// Tracer wraps external action calls with timing and outcome capture. One
// Tracer exists per turn; its trace list is append-only and ordered by
// invocation. It is not safe for concurrent use within a turn — turns are
// synchronous by design — but independent turns each get their own.
type Tracer struct {
	timeout time.Duration
	logger  logging.Logger
	traces  []core.ToolTrace
}

// TracerOptions configure a turn tracer.
type TracerOptions struct {
	// Timeout is the per-call ceiling. Zero disables the deadline.
	Timeout time.Duration
	Logger  logging.Logger
}

// NewTracer constructs a tracer for one turn.
func NewTracer(optFns ...func(o *TracerOptions)) *Tracer {
	opts := TracerOptions{Timeout: 20 * time.Second, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Tracer{timeout: opts.Timeout, logger: opts.Logger}
}

// Invoke executes t with args, recording exactly one trace before returning.
// The trace is captured for every outcome: action-reported failure
// (Result.Success=false), transport error, timeout, or panic. Errors are
// never suppressed — after the trace is appended the original error (or the
// recovered panic, wrapped) is returned to the caller.
func (tr *Tracer) Invoke(ctx context.Context, t Tool, args map[string]any) (Result, core.ToolTrace, error) {
	if tr.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, tr.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := tr.call(ctx, t, args)

	trace := core.ToolTrace{
		Name:       t.Name(),
		Inputs:     args,
		Timestamp:  start.UTC(),
		DurationMS: time.Since(start).Milliseconds(),
		Metadata:   core.TraceMetadata{Success: result.Success},
	}
	if err != nil {
		trace.Metadata.Success = false
		trace.Metadata.HasError = true
		trace.Metadata.Exception = err.Error()
	} else {
		trace.Output = traceOutput(result)
	}

	tr.traces = append(tr.traces, trace)
	logging.LogToolCall(tr.logger, t.Name(), time.Since(start), trace.Metadata.Success, err)

	return result, trace, err
}

// call runs the tool with panic recovery so a misbehaving action still yields
// a trace and a regular error.
func (tr *Tracer) call(ctx context.Context, t Tool, args map[string]any) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{}
			err = NewError(t.Name(), fmt.Sprintf("panic: %v", r), "PANIC")
		}
	}()
	return t.Call(ctx, args)
}

// Traces returns the traces recorded so far, in invocation order.
func (tr *Tracer) Traces() []core.ToolTrace {
	out := make([]core.ToolTrace, len(tr.traces))
	copy(out, tr.traces)
	return out
}

func traceOutput(r Result) map[string]any {
	out := map[string]any{"success": r.Success}
	if r.Data != nil {
		out["data"] = r.Data
	}
	if r.Error != "" {
		out["error"] = r.Error
	}
	return out
}
