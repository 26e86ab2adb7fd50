package graph

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine errors per their propagation policy:
// configuration errors abort startup or a reload, resource errors abort the
// operation that needed the resource, runtime errors abort the current frame,
// transient errors are logged only.
type ErrorKind int

const (
	ErrConfiguration ErrorKind = iota
	ErrResource
	ErrRuntime
	ErrTransient
)

func (k ErrorKind) String() string {
	switch k {
	case ErrConfiguration:
		return "configuration"
	case ErrResource:
		return "resource"
	case ErrRuntime:
		return "runtime"
	case ErrTransient:
		return "transient"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the engine's error type. Node is the offending node's name when
// one is known.
type Error struct {
	Kind ErrorKind
	Node string
	Err  error
}

func (e *Error) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("%s error in node %q: %v", e.Kind, e.Node, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds an Error with a formatted message.
func Errorf(kind ErrorKind, node, format string, args ...any) *Error {
	return &Error{Kind: kind, Node: node, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches kind and node to an existing error. If err is already a
// graph.Error it is returned unchanged so the original kind survives.
func Wrap(kind ErrorKind, node string, err error) *Error {
	var ge *Error
	if errors.As(err, &ge) {
		return ge
	}
	return &Error{Kind: kind, Node: node, Err: err}
}

// KindOf reports the ErrorKind carried by err, defaulting to ErrRuntime for
// foreign errors.
func KindOf(err error) ErrorKind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ErrRuntime
}
