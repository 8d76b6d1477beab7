package response

import (
	"backoffice/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// Response represents a standard API response format
type Response struct {
	Status     string                `json:"status"`      // "success" or "error"
	StatusCode int                   `json:"status_code"` // HTTP status code
	Data       interface{}           `json:"data,omitempty"`
	Error      string                `json:"error,omitempty"`
	Kind       apperror.Kind         `json:"kind,omitempty"`
	Fields     []apperror.FieldError `json:"fields,omitempty"`
}

// Page wraps one page of a list endpoint
type Page struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// FromError writes err using the status code and kind of its AppError.
// Internal details of persistence failures are not sent to the client.
func FromError(c *gin.Context, err error) {
	appErr := apperror.GetAppError(err)
	msg := appErr.Message
	if appErr.Kind == apperror.KindInternal {
		msg = "Internal server error"
	}
	_ = c.Error(err)
	c.JSON(appErr.Code, Response{
		Status:     "error",
		StatusCode: appErr.Code,
		Error:      msg,
		Kind:       appErr.Kind,
		Fields:     appErr.Errors,
	})
}
