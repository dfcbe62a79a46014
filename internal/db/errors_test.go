package db

import (
	"context"
	"errors"
	"testing"
)

func TestError_WrapsCause(t *testing.T) {
	err := error(&Error{Op: OpQuery, Err: context.DeadlineExceeded})

	if err.Error() != "QUERY: context deadline exceeded" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected errors.Is to see the wrapped cause")
	}

	var dbErr *Error
	if !errors.As(err, &dbErr) || dbErr.Op != OpQuery {
		t.Errorf("expected *Error with op QUERY, got %v", dbErr)
	}
}
