package calllog

import (
	"context"
	"errors"
	"fmt"
)

// ErrSourceUnavailable marks a source that could not be opened. Queries treat
// it as an empty history rather than a failure.
var ErrSourceUnavailable = errors.New("call log source unavailable")

// MalformedFilterError rejects a whole query because one filter field could not
// be parsed.
type MalformedFilterError struct {
	Field string
	Value string
	Err   error
}

func (e *MalformedFilterError) Error() string {
	return fmt.Sprintf("malformed filter field %q (%q): %v", e.Field, e.Value, e.Err)
}

func (e *MalformedFilterError) Unwrap() error {
	return e.Err
}

func IsMalformedFilter(err error) bool {
	var mfe *MalformedFilterError
	return errors.As(err, &mfe)
}

func IsSourceUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}

func AsMalformedFilter(err error) (*MalformedFilterError, bool) {
	var mfe *MalformedFilterError
	ok := errors.As(err, &mfe)
	return mfe, ok
}

func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
