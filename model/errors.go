package model

import "fmt"

// FrozenError reports an attempt to mutate an item after its codebase was
// frozen. It always names the offending item.
type FrozenError struct {
	Item     string
	Codebase string
}

func (e *FrozenError) Error() string {
	return fmt.Sprintf("cannot modify %s: codebase %q is frozen", e.Item, e.Codebase)
}

// UnsupportedError signals that the codebase's backing deliberately does
// not support an operation (e.g. documentation on a bytecode-backed
// codebase). Callers are expected to branch on codebase capabilities
// before invoking such operations; receiving this error is a usage
// mistake, not a bug in the model.
type UnsupportedError struct {
	Op       string
	Codebase string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("codebase %q does not support %s", e.Codebase, e.Op)
}

// DuplicateClassError reports a second registration of an already known
// qualified class name within one codebase.
type DuplicateClassError struct {
	QualifiedName string
	Codebase      string
}

func (e *DuplicateClassError) Error() string {
	return fmt.Sprintf("duplicate class %s in codebase %q", e.QualifiedName, e.Codebase)
}
