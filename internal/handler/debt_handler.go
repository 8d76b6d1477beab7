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

type DebtHandler struct {
	debtService     service.DebtService
	reminderService service.ReminderService
}

func NewDebtHandler(debtService service.DebtService, reminderService service.ReminderService) *DebtHandler {
	return &DebtHandler{debtService: debtService, reminderService: reminderService}
}

func (h *DebtHandler) RegisterRoutes(router *gin.RouterGroup) {
	debts := router.Group("/api/debts")
	{
		debts.GET("", middleware.RequirePermission(model.PermDebtsRead), h.GetDebts)
		debts.POST("", middleware.RequirePermission(model.PermDebtsWrite), h.CreateDebt)
		debts.GET("/due", middleware.RequirePermission(model.PermDebtsRead), h.GetDueDebts)
		debts.GET("/:id", middleware.RequirePermission(model.PermDebtsRead), h.GetDebt)
		debts.PUT("/:id", middleware.RequirePermission(model.PermDebtsWrite), h.UpdateDebt)
		debts.DELETE("/:id", middleware.RequirePermission(model.PermDebtsDelete), h.DeleteDebt)
		debts.POST("/:id/payments", middleware.RequirePermission(model.PermDebtsWrite), h.AddPayment)
		debts.POST("/:id/payments/:paymentId/void", middleware.RequirePermission(model.PermDebtsWrite), h.VoidPayment)
	}
}

// GetDebts lists debts with their payment history
// @Summary      List debts
// @Description  Paginated debts, newest first. Status is derived from the payments.
// @Tags         debts
// @Produce      json
// @Security     BearerAuth
// @Param        status      query     string  false  "pending | partially_paid | paid"
// @Param        debt_type   query     string  false  "regular | business_loan"
// @Param        search      query     string  false  "Debtor name or phone"
// @Param        start_date  query     string  false  "YYYY-MM-DD"
// @Param        end_date    query     string  false  "YYYY-MM-DD"
// @Param        page        query     int     false  "Page"
// @Param        limit       query     int     false  "Page size"
// @Success      200         {object}  response.Response{data=response.Page{items=[]service.DebtResponse}}
// @Failure      400         {object}  response.Response
// @Router       /api/debts [get]
func (h *DebtHandler) GetDebts(c *gin.Context) {
	p := pagination.Parse(c)
	query := service.DebtListQuery{
		Status:    c.Query("status"),
		DebtType:  c.Query("debt_type"),
		Search:    c.Query("search"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}

	debts, total, err := h.debtService.GetDebts(c.Request.Context(), query, p.Page, p.Limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	writePage(c, debts, total, p)
}

// CreateDebt records a new debt
// @Summary      Create debt
// @Tags         debts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateDebtRequest  true  "Debt"
// @Success      201      {object}  response.Response{data=service.DebtResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/debts [post]
func (h *DebtHandler) CreateDebt(c *gin.Context) {
	var req service.CreateDebtRequest
	if !bindJSON(c, &req) {
		return
	}

	debt, err := h.debtService.CreateDebt(c.Request.Context(), c.GetString(middleware.ContextUserID), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, debt))
}

// GetDebt returns one debt with its payments
// @Summary      Get debt
// @Tags         debts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Debt ID"
// @Success      200  {object}  response.Response{data=service.DebtResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/debts/{id} [get]
func (h *DebtHandler) GetDebt(c *gin.Context) {
	debt, err := h.debtService.GetDebt(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, debt))
}

// UpdateDebt edits debt fields; payments are untouched
// @Summary      Update debt
// @Tags         debts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Debt ID"
// @Param        payload  body      service.UpdateDebtRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=service.DebtResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/debts/{id} [put]
func (h *DebtHandler) UpdateDebt(c *gin.Context) {
	var req service.UpdateDebtRequest
	if !bindJSON(c, &req) {
		return
	}

	debt, err := h.debtService.UpdateDebt(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("id"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, debt))
}

// DeleteDebt removes a debt and its payments
// @Summary      Delete debt
// @Tags         debts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Debt ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/debts/{id} [delete]
func (h *DebtHandler) DeleteDebt(c *gin.Context) {
	if err := h.debtService.DeleteDebt(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Debt deleted successfully"}))
}

// AddPayment appends a payment to a debt
// @Summary      Add debt payment
// @Description  Rejected when the amount is not positive or exceeds the remaining balance.
// @Tags         debts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Debt ID"
// @Param        payload  body      service.PaymentRequest  true  "Payment"
// @Success      201      {object}  response.Response{data=service.DebtResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/debts/{id}/payments [post]
func (h *DebtHandler) AddPayment(c *gin.Context) {
	var req service.PaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	debt, err := h.debtService.AddPayment(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("id"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, debt))
}

// VoidPayment reverses a payment with a compensating entry
// @Summary      Void debt payment
// @Tags         debts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      string               true   "Debt ID"
// @Param        paymentId  path      string               true   "Payment ID"
// @Param        payload    body      service.VoidRequest  false  "Reason"
// @Success      201        {object}  response.Response{data=service.DebtResponse}
// @Failure      400        {object}  response.Response
// @Failure      404        {object}  response.Response
// @Router       /api/debts/{id}/payments/{paymentId}/void [post]
func (h *DebtHandler) VoidPayment(c *gin.Context) {
	var req service.VoidRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	debt, err := h.debtService.VoidPayment(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("id"), c.Param("paymentId"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, debt))
}

// GetDueDebts lists unpaid debts due within the reminder window
// @Summary      Due debts
// @Description  Unpaid debts that are overdue or due within the configured number of days.
// @Tags         debts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.DueDebtResponse}
// @Router       /api/debts/due [get]
func (h *DebtHandler) GetDueDebts(c *gin.Context) {
	due, err := h.reminderService.DueDebts(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, due))
}
