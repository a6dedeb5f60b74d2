// Package errors provides typed, classifiable error values shared across
// the engine's packages, plus Wrap/Is/As helpers over the standard errors
// package.
package errors

import "fmt"

// ValidationError represents a pipeline or input validation failure:
// a missing required input, an invalid source reference, or a type
// mismatch between a binding's source and target (spec §4.6).
type ValidationError struct {
	// Node identifies the node the error concerns, if any.
	Node string
	// Field identifies which input/parameter failed validation.
	Field string
	// Message is the human-readable description.
	Message string
}

func (e *ValidationError) Error() string {
	if e.Node != "" && e.Field != "" {
		return fmt.Sprintf("validation failed on %s.%s: %s", e.Node, e.Field, e.Message)
	}
	if e.Node != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Node, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) ErrorType() string { return "validation" }
func (e *ValidationError) IsRetryable() bool { return false }

// DefinitionError represents a structural problem with a pipeline
// definition: a duplicate node name, an edge referencing an unknown
// node, a cycle, or a malformed input_config (spec §6).
type DefinitionError struct {
	Message string
}

func (e *DefinitionError) Error() string      { return fmt.Sprintf("pipeline definition error: %s", e.Message) }
func (e *DefinitionError) ErrorType() string   { return "definition" }
func (e *DefinitionError) IsRetryable() bool   { return false }

// NotFoundError represents a reference to an absent resource: most
// commonly a component referenced by name that was never registered
// (spec's ComponentNotFoundError).
type NotFoundError struct {
	Resource string
	Name     string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("%s not found: %s", e.Resource, e.Name) }
func (e *NotFoundError) ErrorType() string { return "not_found" }
func (e *NotFoundError) IsRetryable() bool { return false }

// StatusUpdateError represents an illegal node status transition: any
// attempt to move a node out of a terminal status (spec §4.7).
type StatusUpdateError struct {
	Node  string
	From  string
	To    string
}

func (e *StatusUpdateError) Error() string {
	return fmt.Sprintf("illegal status transition for node %s: %s -> %s", e.Node, e.From, e.To)
}
func (e *StatusUpdateError) ErrorType() string { return "status_update" }
func (e *StatusUpdateError) IsRetryable() bool { return false }

// ExecutionError wraps an error raised by a component's Run method.
type ExecutionError struct {
	Node  string
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("component %s execution failed: %v", e.Node, e.Cause)
}
func (e *ExecutionError) Unwrap() error      { return e.Cause }
func (e *ExecutionError) ErrorType() string  { return "execution" }
func (e *ExecutionError) IsRetryable() bool  { return true }

// KeyExistsError is returned by Store.Add when overwrite is false and the
// key is already present (spec §4.1) — the only non-I/O store error kind.
type KeyExistsError struct {
	Key string
}

func (e *KeyExistsError) Error() string    { return fmt.Sprintf("key already exists: %s", e.Key) }
func (e *KeyExistsError) ErrorType() string { return "key_exists" }
func (e *KeyExistsError) IsRetryable() bool { return false }

// MissingDependencyError is reserved for components that declare
// dependencies unmet by the environment. The engine itself never raises
// it (spec §6); it exists so components and their embedders have a
// common kind to use.
type MissingDependencyError struct {
	Component  string
	Dependency string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("component %s is missing dependency %s", e.Component, e.Dependency)
}
func (e *MissingDependencyError) ErrorType() string { return "missing_dependency" }
func (e *MissingDependencyError) IsRetryable() bool  { return false }
