package tpl

import "errors"

// Error is an error compiling or binding a template.
type Error struct {
	// Name of the plugin that failed.
	Plugin  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return e.Plugin + ": " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// Sentinels wrapped by *Error.
var (
	ErrBadLoopSpec      = errors.New("invalid loop specification")
	ErrNotFunctionCall  = errors.New("handler is not a function call")
	ErrNotAssignable    = errors.New("model expression is not assignable")
	ErrTemplateNotFound = errors.New("template not found")
	ErrNoElement        = errors.New("plugin output contains no element")
	ErrBadArgument      = errors.New("invalid plugin argument")
)

func pluginError(plugin string, err error, msg string) error {
	return &Error{Plugin: plugin, Message: msg, Err: err}
}
