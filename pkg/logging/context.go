// Package logging provides standardized logging utilities for vaultsync/core.
// This file defines LogContext, a fluent builder for the contextual fields
// (request ID, operation, component, method, path) attached to a request's
// log lines as it moves through transport, transfer, and propagator calls.
package logging

// LogContext represents a logging context that can be passed between functions
type LogContext struct {
	RequestID  string
	UserID     string
	Operation  string
	Component  string
	Method     string
	Path       string
	Additional map[string]interface{}
}

// NewLogContext creates a new LogContext with the given operation
func NewLogContext(operation string) LogContext {
	return LogContext{
		Operation:  operation,
		Additional: make(map[string]interface{}),
	}
}

// WithRequestID adds a request ID to the log context
func (lc LogContext) WithRequestID(requestID string) LogContext {
	lc.RequestID = requestID
	return lc
}

// WithUserID adds a user ID to the log context
func (lc LogContext) WithUserID(userID string) LogContext {
	lc.UserID = userID
	return lc
}

// WithComponent adds a component to the log context
func (lc LogContext) WithComponent(component string) LogContext {
	lc.Component = component
	return lc
}

// WithMethod adds a method to the log context
func (lc LogContext) WithMethod(method string) LogContext {
	lc.Method = method
	return lc
}

// WithPath adds a path to the log context
func (lc LogContext) WithPath(path string) LogContext {
	lc.Path = path
	return lc
}

// With adds a custom field to the log context
func (lc LogContext) With(key string, value interface{}) LogContext {
	lc.Additional[key] = value
	return lc
}

// Logger returns a Logger with the context fields added.
func (lc LogContext) Logger() Logger {
	return WithLogContext(lc)
}

// WithLogContext creates a new Logger with the given context's fields attached.
func WithLogContext(ctx LogContext) Logger {
	logger := DefaultLogger.With()

	if ctx.RequestID != "" {
		logger = logger.Str(FieldRequestID, ctx.RequestID)
	}
	if ctx.UserID != "" {
		logger = logger.Str(FieldUser, ctx.UserID)
	}
	if ctx.Operation != "" {
		logger = logger.Str(FieldOperation, ctx.Operation)
	}
	if ctx.Component != "" {
		logger = logger.Str(FieldComponent, ctx.Component)
	}
	if ctx.Method != "" {
		logger = logger.Str("method_name", ctx.Method)
	}
	if ctx.Path != "" {
		logger = logger.Str(FieldPath, ctx.Path)
	}
	for k, v := range ctx.Additional {
		logger = logger.Interface(k, v)
	}

	return logger.Logger()
}
