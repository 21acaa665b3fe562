package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaMismatch marca entradas inválidas del usuario.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrModelInvocation marca fallos al invocar predict/predict_proba del artefacto.
	ErrModelInvocation = errors.New("model invocation failed")
	// ErrTreeStructure marca un artefacto con estructura de árbol inconsistente.
	ErrTreeStructure = errors.New("inconsistent tree structure")
)

// SchemaMismatchError identifica el campo de entrada que no cumple el esquema.
type SchemaMismatchError struct {
	Field  string
	Reason string
}

func NewSchemaMismatch(field, reason string) *SchemaMismatchError {
	return &SchemaMismatchError{Field: field, Reason: reason}
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: field %q: %s", e.Field, e.Reason)
}

func (e *SchemaMismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}

// ModelInvocationError conserva el contexto de la llamada al modelo (features esperadas vs recibidas).
type ModelInvocationError struct {
	Op       string
	Expected int
	Provided int
	Err      error
}

func (e *ModelInvocationError) Error() string {
	msg := fmt.Sprintf("model invocation failed: %s", e.Op)
	if e.Expected != 0 || e.Provided != 0 {
		msg += fmt.Sprintf(" (expected %d features, provided %d)", e.Expected, e.Provided)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ModelInvocationError) Unwrap() error {
	return e.Err
}

func (e *ModelInvocationError) Is(target error) bool {
	return target == ErrModelInvocation
}

// TreeStructureError apunta al nodo donde el árbol deja de ser coherente.
type TreeStructureError struct {
	Node   int
	Reason string
}

func NewTreeStructureError(node int, reason string) *TreeStructureError {
	return &TreeStructureError{Node: node, Reason: reason}
}

func (e *TreeStructureError) Error() string {
	return fmt.Sprintf("inconsistent tree structure at node %d: %s", e.Node, e.Reason)
}

func (e *TreeStructureError) Is(target error) bool {
	return target == ErrTreeStructure
}

// ErrorKind clasifica un error del motor para las capas externas.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSchemaMismatch):
		return "schema_mismatch"
	case errors.Is(err, ErrModelInvocation):
		return "model_invocation"
	case errors.Is(err, ErrTreeStructure):
		return "tree_structure"
	}
	return "internal"
}
