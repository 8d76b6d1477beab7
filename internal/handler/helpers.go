package handler

import (
	"net/http"

	"backoffice/pkg/apperror"
	"backoffice/pkg/pagination"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

// bindJSON decodes the body into req and writes a 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.FromError(c, apperror.NewValidationError("Invalid request payload: "+err.Error()))
		return false
	}
	return true
}

func writePage(c *gin.Context, items interface{}, total int64, p pagination.Params) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, response.Page{
		Items: items,
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
	}))
}
