package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

var errRule = errors.New("amount must be greater than zero")

func TestValidation_KeepsSentinel(t *testing.T) {
	err := fmt.Errorf("add payment: %w", Validation(errRule))

	if !errors.Is(err, errRule) {
		t.Fatal("errors.Is(err, errRule) = false, want true")
	}
	if !IsKind(err, KindValidation) {
		t.Error("IsKind(validation) = false, want true")
	}
	appErr := GetAppError(err)
	if appErr.Code != http.StatusBadRequest {
		t.Errorf("Code = %d, want 400", appErr.Code)
	}
	if appErr.Retryable() {
		t.Error("validation error should not be retryable")
	}
}

func TestPersistence_IsRetryable(t *testing.T) {
	err := Persistence("failed to save debt", errors.New("connection reset"))
	if !err.Retryable() {
		t.Error("Retryable() = false, want true")
	}
	if err.Error() != "failed to save debt: connection reset" {
		t.Errorf("Error() = %q", err.Error())
	}
	if IsKind(err, KindValidation) {
		t.Error("persistence error reported as validation")
	}
}

func TestGetAppError_PlainError(t *testing.T) {
	appErr := GetAppError(errors.New("boom"))
	if appErr.Code != http.StatusInternalServerError || appErr.Kind != KindInternal {
		t.Errorf("GetAppError(plain) = %d/%s, want 500/internal", appErr.Code, appErr.Kind)
	}
}

func TestNotFoundAndConflict(t *testing.T) {
	if e := NewNotFoundError("Debt"); e.Message != "Debt not found" || e.Code != http.StatusNotFound {
		t.Errorf("NewNotFoundError = %+v", e)
	}
	if e := NewConflictError("dup"); e.Code != http.StatusConflict || e.Kind != KindConflict {
		t.Errorf("NewConflictError = %+v", e)
	}
}
