package errors

// ErrorClassifier lets callers branch on an error's kind and retryability
// without string matching or a long type switch.
type ErrorClassifier interface {
	error

	// ErrorType returns a short kind string, e.g. "validation", "not_found".
	ErrorType() string

	// IsRetryable reports whether the operation that produced this error
	// might succeed if attempted again (e.g. a component execution error,
	// as opposed to a structural validation error).
	IsRetryable() bool
}
