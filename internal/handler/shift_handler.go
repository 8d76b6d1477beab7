package handler

import (
	"net/http"

	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/service"
	"backoffice/pkg/pagination"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type ShiftHandler struct {
	shiftService service.ShiftService
}

func NewShiftHandler(shiftService service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftService: shiftService}
}

func (h *ShiftHandler) RegisterRoutes(router *gin.RouterGroup) {
	shifts := router.Group("/api/shifts")
	{
		shifts.GET("", middleware.RequirePermission(model.PermShiftsRead), h.GetShifts)
		shifts.POST("", middleware.RequirePermission(model.PermShiftsWrite), h.CreateShift)
		shifts.GET("/:id", middleware.RequirePermission(model.PermShiftsRead), h.GetShift)
		shifts.PUT("/:id", middleware.RequirePermission(model.PermShiftsWrite), h.UpdateShift)
		shifts.DELETE("/:id", middleware.RequirePermission(model.PermShiftsDelete), h.DeleteShift)
	}
}

// GetShifts lists shift reports, newest first
// @Summary      List shifts
// @Tags         shifts
// @Produce      json
// @Security     BearerAuth
// @Param        start_date  query     string  false  "YYYY-MM-DD"
// @Param        end_date    query     string  false  "YYYY-MM-DD"
// @Param        page        query     int     false  "Page"
// @Param        limit       query     int     false  "Page size"
// @Success      200         {object}  response.Response{data=response.Page{items=[]service.ShiftResponse}}
// @Failure      400         {object}  response.Response
// @Router       /api/shifts [get]
func (h *ShiftHandler) GetShifts(c *gin.Context) {
	p := pagination.Parse(c)
	shifts, total, err := h.shiftService.GetShifts(c.Request.Context(), c.Query("start_date"), c.Query("end_date"), p.Page, p.Limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	writePage(c, shifts, total, p)
}

// CreateShift records one shift report; a date holds at most one shift of each type
// @Summary      Create shift
// @Tags         shifts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ShiftRequest  true  "Shift"
// @Success      201      {object}  response.Response{data=service.ShiftResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/shifts [post]
func (h *ShiftHandler) CreateShift(c *gin.Context) {
	var req service.ShiftRequest
	if !bindJSON(c, &req) {
		return
	}

	shift, err := h.shiftService.CreateShift(c.Request.Context(), c.GetString(middleware.ContextUserID), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, shift))
}

// GetShift returns one shift report
// @Summary      Get shift
// @Tags         shifts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Shift ID"
// @Success      200  {object}  response.Response{data=service.ShiftResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/shifts/{id} [get]
func (h *ShiftHandler) GetShift(c *gin.Context) {
	shift, err := h.shiftService.GetShift(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, shift))
}

// UpdateShift replaces a shift report
// @Summary      Update shift
// @Tags         shifts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                true  "Shift ID"
// @Param        payload  body      service.ShiftRequest  true  "Shift"
// @Success      200      {object}  response.Response{data=service.ShiftResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/shifts/{id} [put]
func (h *ShiftHandler) UpdateShift(c *gin.Context) {
	var req service.ShiftRequest
	if !bindJSON(c, &req) {
		return
	}

	shift, err := h.shiftService.UpdateShift(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("id"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, shift))
}

// DeleteShift removes a shift report
// @Summary      Delete shift
// @Tags         shifts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Shift ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/shifts/{id} [delete]
func (h *ShiftHandler) DeleteShift(c *gin.Context) {
	if err := h.shiftService.DeleteShift(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Shift deleted successfully"}))
}
