// Package workflow implements the shared step-graph execution framework every
// specialist workflow is built from. A workflow is a named set of steps with
// one entry; a step is a function of the turn context returning one of a
// closed set of StepResults. Suspension (Ask) persists a resume step the
// router's stickiness honors on the next inbound message; Respond and
// Escalate are terminal for the turn.
package workflow

import (
	"fmt"
)

// StepFunc is one node of a workflow's step graph.
type StepFunc func(tc *TurnContext) (StepResult, error)

// StepResult is the closed set of outcomes a step may produce. The marker
// method keeps the set closed to this package's four variants.
type StepResult interface{ isStepResult() }

// Ask suspends the turn: the prompt is the visible reply and Resume is the
// step name persisted to workflow_step, where the next inbound message for
// this conversation picks up.
type Ask struct {
	Prompt string
	Resume string
}

func (Ask) isStepResult() {}

// Goto continues the turn at another step of the same workflow.
type Goto struct {
	Step string
}

func (Goto) isStepResult() {}

// Respond terminates the turn with customer-facing text; Resolution is the
// tag persisted to workflow_step (never a step name, so stickiness ends).
type Respond struct {
	Text       string
	Resolution string
}

func (Respond) isStepResult() {}

// Escalate terminates the conversation's automated path permanently. The
// escalation manager owns the visible notice; steps only supply the summary.
type Escalate struct {
	Reason            string
	Context           string
	RecommendedAction string
}

func (Escalate) isStepResult() {}

// maxStepsPerTurn bounds intra-turn step chaining; a graph that loops past it
// is a defect and surfaces as a workflow error, not an infinite turn.
const maxStepsPerTurn = 32

// Workflow is a declared step graph with one entry step.
type Workflow struct {
	key         string
	description string
	entry       string
	steps       map[string]StepFunc
}

// New starts declaring a workflow. Key is the router's agent key;
// description feeds the classifier's label documentation.
func New(key, description string) *Workflow {
	return &Workflow{key: key, description: description, steps: map[string]StepFunc{}}
}

// Step registers a named step and returns the workflow for chaining.
func (w *Workflow) Step(name string, fn StepFunc) *Workflow {
	w.steps[name] = fn
	return w
}

// Entry names the step a fresh (or re-routed) turn starts at.
func (w *Workflow) Entry(name string) *Workflow {
	w.entry = name
	return w
}

// Key returns the agent key this workflow is registered under.
func (w *Workflow) Key() string { return w.key }

// Description returns the classifier-facing summary of what this workflow
// handles.
func (w *Workflow) Description() string { return w.description }

// EntryStep returns the entry step name.
func (w *Workflow) EntryStep() string { return w.entry }

// HasStep reports whether name is a registered step. Resolution tags are not
// steps, so this doubles as the router's pending-step test.
func (w *Workflow) HasStep(name string) bool {
	_, ok := w.steps[name]
	return ok
}

// OutcomeKind classifies how a turn ended.
type OutcomeKind int

// Turn outcomes.
const (
	OutcomeAsk OutcomeKind = iota
	OutcomeRespond
	OutcomeEscalate
)

// EscalationRequest carries an Escalate step's summary to the escalation
// manager.
type EscalationRequest struct {
	Reason            string
	Context           string
	RecommendedAction string
}

// Outcome is the terminal result of running a workflow for one turn.
type Outcome struct {
	Kind       OutcomeKind
	Reply      string // visible text for Ask and Respond
	Step       string // workflow_step to persist (resume step or resolution tag)
	Escalation *EscalationRequest
}

// Run executes the graph starting at start (the entry step when start is
// empty or unknown) until a step produces a terminal result. A step error or
// an exhausted step budget is returned to the orchestrator, which escalates;
// the framework never invents a default branch.
func (w *Workflow) Run(tc *TurnContext, start string) (Outcome, error) {
	step := start
	if step == "" || !w.HasStep(step) {
		step = w.entry
	}
	if !w.HasStep(step) {
		return Outcome{}, fmt.Errorf("workflow %s: entry step %q not registered", w.key, step)
	}

	for i := 0; i < maxStepsPerTurn; i++ {
		fn := w.steps[step]
		tc.Logger.Debug("executing step", "workflow", w.key, "step", step)

		result, err := fn(tc)
		if err != nil {
			return Outcome{}, fmt.Errorf("workflow %s step %s: %w", w.key, step, err)
		}

		switch r := result.(type) {
		case Goto:
			if !w.HasStep(r.Step) {
				return Outcome{}, fmt.Errorf("workflow %s step %s: goto unknown step %q", w.key, step, r.Step)
			}
			step = r.Step
		case Ask:
			if !w.HasStep(r.Resume) {
				return Outcome{}, fmt.Errorf("workflow %s step %s: ask resume step %q not registered", w.key, step, r.Resume)
			}
			return Outcome{Kind: OutcomeAsk, Reply: r.Prompt, Step: r.Resume}, nil
		case Respond:
			return Outcome{Kind: OutcomeRespond, Reply: r.Text, Step: r.Resolution}, nil
		case Escalate:
			return Outcome{
				Kind: OutcomeEscalate,
				Escalation: &EscalationRequest{
					Reason:            r.Reason,
					Context:           r.Context,
					RecommendedAction: r.RecommendedAction,
				},
			}, nil
		default:
			return Outcome{}, fmt.Errorf("workflow %s step %s: unknown step result %T", w.key, step, result)
		}
	}
	return Outcome{}, fmt.Errorf("workflow %s: step budget exhausted (possible cycle)", w.key)
}
