package pipeline

import "context"

// Output is what a component's Run returns. Data holds the component's
// declared output fields, keyed by field name, so that field-qualified
// bindings ("<component>.<field>") are plain map lookups. State and
// StopPipeline are the two engine-reserved control signals layered on
// top of the component's own output (spec §4.5, §4.7, §9's design note
// on modeling control signals as struct fields rather than inspecting
// arbitrary user types).
type Output struct {
	// Data holds the component's declared output fields.
	Data map[string]any

	// State, if non-nil and non-empty, is staged as this component's
	// new versioned state for the run that produced it.
	State map[string]any

	// StopPipeline, when true, tells the engine to skip scheduling this
	// node's successors and record the run as stopped early.
	StopPipeline bool
}

// Field returns the named output field and whether it was present.
func (o Output) Field(name string) (any, bool) {
	if o.Data == nil {
		return nil, false
	}
	v, ok := o.Data[name]
	return v, ok
}

// Component is a unit of work with declared inputs, a declared typed
// output, and an asynchronous Run operation. Run receives the inputs
// resolved by the engine (upstream results, runtime inputs) and the
// component's prior versioned state, if it declared a "state" input
// (spec §4.5, §4.7 step 8).
type Component interface {
	// Descriptor returns the component's input/output shape without
	// running it.
	Descriptor() Descriptor

	// Run executes the component once. inputs is keyed by parameter
	// name; state is the component's prior committed state (nil if none
	// exists yet or if the component does not declare a state input).
	Run(ctx context.Context, inputs map[string]any, state map[string]any) (Output, error)
}

// DeclaresState reports whether a component's descriptor includes a
// reserved "state" input, meaning the engine should inject prior
// component state before calling Run (spec §4.7 step 8).
func DeclaresState(d Descriptor) bool {
	_, ok := d.Input("state")
	return ok
}
