package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"backoffice/pkg/apperror"

	"github.com/gin-gonic/gin"
)

func runFromError(t *testing.T, err error) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	FromError(c, err)

	var res Response
	if uerr := json.Unmarshal(w.Body.Bytes(), &res); uerr != nil {
		t.Fatalf("Unmarshal() error: %v", uerr)
	}
	return w, res
}

func TestFromError_Validation(t *testing.T) {
	err := apperror.NewValidationError("invalid amount",
		apperror.FieldError{Field: "amount", Message: "must be a decimal number"})
	w, res := runFromError(t, err)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if res.Kind != apperror.KindValidation || res.Error != "invalid amount" {
		t.Errorf("response = %+v", res)
	}
	if len(res.Fields) != 1 || res.Fields[0].Field != "amount" {
		t.Errorf("fields = %+v", res.Fields)
	}
}

func TestFromError_HidesInternalDetails(t *testing.T) {
	w, res := runFromError(t, errors.New("pq: connection refused"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if res.Error != "Internal server error" {
		t.Errorf("error = %q, want generic message", res.Error)
	}
}
