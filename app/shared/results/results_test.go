package results

import (
	"errors"
	"testing"
)

func TestOperationResult(t *testing.T) {
	ok := SuccessResult[int, error](3)
	if !ok.IsSuccess() || ok.IsFailure() {
		t.Fatalf("expected success only, got %+v", ok)
	}
	if *ok.Success != 3 {
		t.Errorf("Success = %d, want 3", *ok.Success)
	}

	errBoom := errors.New("boom")
	fail := FailureResult[int, error](errBoom)
	if fail.IsSuccess() || !fail.IsFailure() {
		t.Fatalf("expected failure only, got %+v", fail)
	}
	if !errors.Is(*fail.Failure, errBoom) {
		t.Errorf("Failure = %v, want %v", *fail.Failure, errBoom)
	}

	var zero OperationResult[int, error]
	if zero.IsSuccess() || zero.IsFailure() {
		t.Errorf("zero value should be neither success nor failure")
	}
}
