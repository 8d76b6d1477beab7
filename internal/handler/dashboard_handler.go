package handler

import (
	"net/http"

	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/service"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/dashboard", middleware.RequirePermission(model.PermDashboardRead), h.GetDashboard)
}

// GetDashboard aggregates shifts, expenses and debts into the headline figures
// @Summary      Dashboard totals
// @Description  Sales, expenses, remaining cash, remaining debts and net profit/loss. Both dates are optional; a missing bound is open.
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        start_date  query     string  false  "YYYY-MM-DD"
// @Param        end_date    query     string  false  "YYYY-MM-DD"
// @Success      200         {object}  response.Response{data=service.DashboardResponse}
// @Failure      400         {object}  response.Response
// @Router       /api/dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.dashboardService.GetDashboard(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, dashboard))
}
