package action

import (
	"context"
	"fmt"
)

// Result holds exactly one of Response or Error. Build it with Success, Failure or Issue.
type Result[T any] struct {
	Response *T
	Error    *ClassifiedError
}

func Success[T any](v T) Result[T] {
	return Result[T]{Response: &v}
}

// Failure never produces an empty result: a nil error becomes an "unknown error".
func Failure[T any](err *ClassifiedError) Result[T] {
	if err == nil {
		err = &ClassifiedError{Message: "unknown error"}
	}
	return Result[T]{Error: err}
}

func (r Result[T]) OK() bool {
	return r.Error == nil
}

// Unwrap returns the response value or the classified error.
func (r Result[T]) Unwrap() (T, error) {
	if r.Error != nil {
		var zero T
		return zero, r.Error
	}
	return *r.Response, nil
}

// Issue runs op and reduces its outcome to a Result. A panic in op is reported as an error.
func Issue[T any](ctx context.Context, op func(ctx context.Context) (T, error)) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = Failure[T](&ClassifiedError{Message: fmt.Sprintf("operation panicked: %v", r)})
		}
	}()

	v, err := op(ctx)
	if err != nil {
		return Failure[T](Classify(err))
	}
	return Success(v)
}

// Done is the response type of operations that only report success.
type Done struct{}

// IssueErr adapts an operation without a response value.
func IssueErr(ctx context.Context, op func(ctx context.Context) error) Result[Done] {
	return Issue(ctx, func(ctx context.Context) (Done, error) {
		return Done{}, op(ctx)
	})
}
