package graph

import "fmt"

// UnknownTargetError reports a dependency whose reference does not name any
// target or aggregate target of the project. This is a fatal configuration
// error; compilation cannot proceed.
type UnknownTargetError struct {
	Dependent string
	Reference string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("target %q depends on unknown target %q", e.Dependent, e.Reference)
}

// ScriptError reports a failure to resolve the body of a build script. It is
// a recoverable compilation failure carrying enough context for the caller
// to name the offending target and script.
type ScriptError struct {
	Target string
	Script string
	Err    error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("target %q: script %q: %v", e.Target, e.Script, e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }
