package trip

// Outcome tags a Result.
type Outcome int

const (
	OutcomeSuccess Outcome = iota + 1
	OutcomeFailure
	OutcomeTimeout
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Result is the outcome of one adapter invocation: exactly one of a
// payload, a failure or a timeout. The zero value is not a valid Result.
type Result[T any] struct {
	outcome Outcome
	payload T
	failure *ProviderError
}

// Success wraps a payload.
func Success[T any](payload T) Result[T] {
	return Result[T]{outcome: OutcomeSuccess, payload: payload}
}

// Failure wraps a provider error. A nil error is reported as an upstream
// failure so that a Result never carries an untyped failure.
func Failure[T any](err *ProviderError) Result[T] {
	if err == nil {
		err = Upstream(nil, "provider failed without detail")
	}
	return Result[T]{outcome: OutcomeFailure, failure: err}
}

// Timeout marks an invocation that exceeded its deadline.
func Timeout[T any]() Result[T] {
	return Result[T]{outcome: OutcomeTimeout}
}

// Outcome returns the tag.
func (r Result[T]) Outcome() Outcome {
	return r.outcome
}

// OK reports whether the result carries a payload.
func (r Result[T]) OK() bool {
	return r.outcome == OutcomeSuccess
}

// Payload returns the payload and whether it is present.
func (r Result[T]) Payload() (T, bool) {
	return r.payload, r.outcome == OutcomeSuccess
}

// Err returns the failure, or nil for successes and timeouts.
func (r Result[T]) Err() *ProviderError {
	return r.failure
}

// Map transforms the payload of a successful result. Failures and timeouts
// pass through unchanged.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	switch r.outcome {
	case OutcomeSuccess:
		return Success(f(r.payload))
	case OutcomeTimeout:
		return Timeout[U]()
	default:
		return Result[U]{outcome: r.outcome, failure: r.failure}
	}
}

// Retryable reports whether the coordinator may try again.
func (r Result[T]) Retryable() bool {
	return r.outcome == OutcomeFailure && r.failure.Kind.Retryable()
}
