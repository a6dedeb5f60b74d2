package pipeline

import (
	"fmt"
	"strings"

	werrors "github.com/wrenchdag/wrench/pkg/errors"
)

// SourceRef is a parsed "<component>" or "<component>.<field>"
// reference from an edge's input_config (spec §3).
type SourceRef struct {
	Component string
	Field     string // empty for a whole-output binding
}

// ParseSourceRef splits a source reference on its first '.'.
func ParseSourceRef(ref string) SourceRef {
	if i := strings.IndexByte(ref, '.'); i >= 0 {
		return SourceRef{Component: ref[:i], Field: ref[i+1:]}
	}
	return SourceRef{Component: ref}
}

// RequiredInputs describes, per node, which required parameters are
// not covered by an edge or a default and must come from runtime
// inputs (spec §4.6 step 3).
type RequiredInputs map[string][]string

// Validator runs the static checks of spec §4.6 over a Graph.
type Validator struct {
	graph *Graph
}

// NewValidator creates a validator bound to a graph.
func NewValidator(g *Graph) *Validator {
	return &Validator{graph: g}
}

// Validate runs all checks in order: acyclicity, edge wiring, then
// input coverage. It returns the set of required-but-unbound runtime
// inputs per node alongside any error.
func (v *Validator) Validate() (RequiredInputs, error) {
	if v.graph.IsCyclic() {
		return nil, &werrors.DefinitionError{Message: "pipeline graph contains a cycle"}
	}

	if err := v.validateEdges(); err != nil {
		return nil, err
	}

	return v.computeRequiredInputs(), nil
}

func (v *Validator) validateEdges() error {
	boundParams := make(map[string]map[string]string) // node -> target param -> source ref

	for _, n := range v.graph.Nodes() {
		boundParams[n.Name] = make(map[string]string)
	}

	for _, n := range v.graph.Nodes() {
		for _, e := range v.graph.NextEdges(n.Name) {
			targetNode, ok := v.graph.Node(e.To)
			if !ok {
				return &werrors.DefinitionError{Message: fmt.Sprintf("edge references unknown node %q", e.To)}
			}
			targetDesc := targetNode.Component.Descriptor()

			for targetParam, sourceRefStr := range e.InputConfig {
				if targetParam == "state" {
					return &werrors.ValidationError{
						Node:    e.To,
						Field:   targetParam,
						Message: "\"state\" is engine-reserved and cannot be bound by an edge",
					}
				}

				targetInput, ok := targetDesc.Input(targetParam)
				if !ok {
					return &werrors.ValidationError{
						Node:    e.To,
						Field:   targetParam,
						Message: fmt.Sprintf("target parameter %q is not declared by component %q", targetParam, e.To),
					}
				}

				if prior, bound := boundParams[e.To][targetParam]; bound {
					return &werrors.ValidationError{
						Node:    e.To,
						Field:   targetParam,
						Message: fmt.Sprintf("parameter %q is bound twice: %q and %q", targetParam, prior, sourceRefStr),
					}
				}
				boundParams[e.To][targetParam] = sourceRefStr

				ref := ParseSourceRef(sourceRefStr)
				sourceNode, ok := v.graph.Node(ref.Component)
				if !ok {
					return &werrors.ValidationError{
						Node:    e.To,
						Field:   targetParam,
						Message: fmt.Sprintf("source reference %q resolves to unknown component", sourceRefStr),
					}
				}
				sourceDesc := sourceNode.Component.Descriptor()

				var sourceType TypeTag
				if ref.Field == "" {
					sourceType = TypeAny
				} else {
					field, ok := sourceDesc.Output(ref.Field)
					if !ok {
						return &werrors.ValidationError{
							Node:    e.To,
							Field:   targetParam,
							Message: fmt.Sprintf("source field %q is not declared by component %q", ref.Field, ref.Component),
						}
					}
					sourceType = field.Type
				}

				if !Assignable(sourceType, targetInput.Type) {
					return &werrors.ValidationError{
						Node:  e.To,
						Field: targetParam,
						Message: fmt.Sprintf(
							"type mismatch binding %q to %s.%s: %s is not assignable to %s",
							sourceRefStr, e.To, targetParam, sourceType, targetInput.Type,
						),
					}
				}
			}
		}
	}

	return nil
}

func (v *Validator) computeRequiredInputs() RequiredInputs {
	result := make(RequiredInputs)

	for _, n := range v.graph.Nodes() {
		desc := n.Component.Descriptor()
		covered := make(map[string]bool)
		for _, e := range v.graph.PreviousEdges(n.Name) {
			for param := range e.InputConfig {
				covered[param] = true
			}
		}

		var missing []string
		for _, in := range desc.Inputs {
			if in.Name == "state" {
				continue
			}
			if covered[in.Name] || in.HasDefault {
				continue
			}
			missing = append(missing, in.Name)
		}
		if len(missing) > 0 {
			result[n.Name] = missing
		}
	}

	return result
}

// Assignable implements the structural compatibility check of
// spec §4.6.1: identical types assign; parameterized containers assign
// when their element types assign; an opaque/any type is conservatively
// permitted in either position.
func Assignable(source, target TypeTag) bool {
	if source == target || source == TypeAny || target == TypeAny {
		return true
	}

	containerElem := func(t TypeTag) (TypeTag, bool) {
		switch t {
		case TypeItems:
			return TypeItem, true
		case TypeOperations:
			return TypeOperations, true // operations have no finer element type modeled
		case TypeGroups:
			return TypeGroup, true
		default:
			return "", false
		}
	}

	sElem, sOK := containerElem(source)
	tElem, tOK := containerElem(target)
	if sOK && tOK {
		return Assignable(sElem, tElem)
	}

	return false
}
