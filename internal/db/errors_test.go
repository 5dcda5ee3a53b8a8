package db

import (
	"context"
	"errors"
	"testing"
)

func TestError_WrapsOperation(t *testing.T) {
	err := &Error{Op: OpIncrBy, Err: context.DeadlineExceeded}

	if err.Error() != "INCRBY: context deadline exceeded" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("Error must unwrap to the cause")
	}
}
