package trip

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a provider failure.
type ErrorKind int

const (
	// KindInvalidInput means the query cannot be sent to the provider.
	KindInvalidInput ErrorKind = iota + 1
	// KindNotFound means the provider has no matching data.
	KindNotFound
	// KindAmbiguous means the query matched several entities.
	KindAmbiguous
	// KindUpstream covers transport, protocol and decoding failures.
	KindUpstream
	// KindNotImplemented means no backend is wired for the category.
	KindNotImplemented
)

// MaxCandidates bounds the candidates carried by an ambiguous failure.
const MaxCandidates = 3

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid-input"
	case KindNotFound:
		return "not-found"
	case KindAmbiguous:
		return "ambiguous"
	case KindUpstream:
		return "error"
	case KindNotImplemented:
		return "not-implemented"
	default:
		return "unknown"
	}
}

// Retryable reports whether failures of this kind may be retried.
func (k ErrorKind) Retryable() bool {
	return k == KindUpstream
}

// ProviderError is the failure payload of a Result.
type ProviderError struct {
	Kind       ErrorKind
	Message    string
	Candidates []string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Kind == KindAmbiguous && len(e.Candidates) > 0 {
		return fmt.Sprintf("%s: %s (candidates: %s)", e.Kind, e.Message, strings.Join(e.Candidates, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// InvalidInput builds a KindInvalidInput failure.
func InvalidInput(format string, args ...any) *ProviderError {
	return &ProviderError{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a KindNotFound failure.
func NotFound(format string, args ...any) *ProviderError {
	return &ProviderError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// NotImplemented builds a KindNotImplemented failure.
func NotImplemented(format string, args ...any) *ProviderError {
	return &ProviderError{Kind: KindNotImplemented, Message: fmt.Sprintf(format, args...)}
}

// Ambiguous builds a KindAmbiguous failure carrying at most MaxCandidates names.
func Ambiguous(message string, candidates []string) *ProviderError {
	if len(candidates) > MaxCandidates {
		candidates = candidates[:MaxCandidates]
	}
	return &ProviderError{
		Kind:       KindAmbiguous,
		Message:    message,
		Candidates: append([]string(nil), candidates...),
	}
}

// Upstream wraps a transport or protocol error.
func Upstream(err error, format string, args ...any) *ProviderError {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	return &ProviderError{Kind: KindUpstream, Message: msg, Err: err}
}

// QueryError reports a malformed top-level query. It aborts planning.
type QueryError struct {
	Field   string
	Message string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid query: %s: %s", e.Field, e.Message)
}

// Kind is always KindInvalidInput.
func (e *QueryError) Kind() ErrorKind {
	return KindInvalidInput
}
