package handler

import (
	"net/http"
	"strconv"

	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/service"
	"backoffice/pkg/pagination"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type ExpenseHandler struct {
	expenseService service.ExpenseService
}

func NewExpenseHandler(expenseService service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

func (h *ExpenseHandler) RegisterRoutes(router *gin.RouterGroup) {
	expenses := router.Group("/api/expenses")
	{
		expenses.GET("", middleware.RequirePermission(model.PermExpensesRead), h.GetExpenses)
		expenses.POST("", middleware.RequirePermission(model.PermExpensesWrite), h.CreateExpense)
		expenses.GET("/:id", middleware.RequirePermission(model.PermExpensesRead), h.GetExpense)
		expenses.PUT("/:id", middleware.RequirePermission(model.PermExpensesWrite), h.UpdateExpense)
		expenses.DELETE("/:id", middleware.RequirePermission(model.PermExpensesDelete), h.DeleteExpense)
		expenses.POST("/:id/payments", middleware.RequirePermission(model.PermExpensesWrite), h.AddPayment)
		expenses.POST("/:id/payments/:paymentId/void", middleware.RequirePermission(model.PermExpensesWrite), h.VoidPayment)
		expenses.POST("/:id/additions", middleware.RequirePermission(model.PermExpensesWrite), h.AddAddition)
		expenses.POST("/:id/additions/:additionId/void", middleware.RequirePermission(model.PermExpensesWrite), h.VoidAddition)
	}
}

// GetExpenses lists expenses and shop loans
// @Summary      List expenses
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        category    query     string  false  "Exact category"
// @Param        loans_only  query     bool    false  "Only shop loans"
// @Param        search      query     string  false  "Name contains"
// @Param        start_date  query     string  false  "YYYY-MM-DD"
// @Param        end_date    query     string  false  "YYYY-MM-DD"
// @Param        page        query     int     false  "Page"
// @Param        limit       query     int     false  "Page size"
// @Success      200         {object}  response.Response{data=response.Page{items=[]service.ExpenseResponse}}
// @Failure      400         {object}  response.Response
// @Router       /api/expenses [get]
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	p := pagination.Parse(c)
	loansOnly, _ := strconv.ParseBool(c.Query("loans_only"))
	query := service.ExpenseListQuery{
		Category:  c.Query("category"),
		LoansOnly: loansOnly,
		Search:    c.Query("search"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}

	expenses, total, err := h.expenseService.GetExpenses(c.Request.Context(), query, p.Page, p.Limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	writePage(c, expenses, total, p)
}

// CreateExpense records an expense; the loan category makes it a repayable shop loan
// @Summary      Create expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateExpenseRequest  true  "Expense"
// @Success      201      {object}  response.Response{data=service.ExpenseResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	var req service.CreateExpenseRequest
	if !bindJSON(c, &req) {
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), c.GetString(middleware.ContextUserID), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, expense))
}

// GetExpense returns one expense with its payments and additions
// @Summary      Get expense
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Expense ID"
// @Success      200  {object}  response.Response{data=service.ExpenseResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	expense, err := h.expenseService.GetExpense(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, expense))
}

// UpdateExpense edits expense fields
// @Summary      Update expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Expense ID"
// @Param        payload  body      service.UpdateExpenseRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=service.ExpenseResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	var req service.UpdateExpenseRequest
	if !bindJSON(c, &req) {
		return
	}

	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("id"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, expense))
}

// DeleteExpense removes an expense with its payments and additions
// @Summary      Delete expense
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Expense ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	if err := h.expenseService.DeleteExpense(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Expense deleted successfully"}))
}

// AddPayment records a repayment against an expense
// @Summary      Add expense payment
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Expense ID"
// @Param        payload  body      service.PaymentRequest  true  "Payment"
// @Success      201      {object}  response.Response{data=service.ExpenseResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/expenses/{id}/payments [post]
func (h *ExpenseHandler) AddPayment(c *gin.Context) {
	var req service.PaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	expense, err := h.expenseService.AddPayment(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("id"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, expense))
}

// VoidPayment reverses an expense payment
// @Summary      Void expense payment
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      string               true   "Expense ID"
// @Param        paymentId  path      string               true   "Payment ID"
// @Param        payload    body      service.VoidRequest  false  "Reason"
// @Success      201        {object}  response.Response{data=service.ExpenseResponse}
// @Failure      400        {object}  response.Response
// @Router       /api/expenses/{id}/payments/{paymentId}/void [post]
func (h *ExpenseHandler) VoidPayment(c *gin.Context) {
	var req service.VoidRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	expense, err := h.expenseService.VoidPayment(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("id"), c.Param("paymentId"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, expense))
}

// AddAddition increases the principal of a shop loan
// @Summary      Add loan addition
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "Expense ID"
// @Param        payload  body      service.AdditionRequest  true  "Addition"
// @Success      201      {object}  response.Response{data=service.ExpenseResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/expenses/{id}/additions [post]
func (h *ExpenseHandler) AddAddition(c *gin.Context) {
	var req service.AdditionRequest
	if !bindJSON(c, &req) {
		return
	}

	expense, err := h.expenseService.AddAddition(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("id"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, expense))
}

// VoidAddition reverses a loan addition
// @Summary      Void loan addition
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id          path      string               true   "Expense ID"
// @Param        additionId  path      string               true   "Addition ID"
// @Param        payload     body      service.VoidRequest  false  "Reason"
// @Success      201         {object}  response.Response{data=service.ExpenseResponse}
// @Failure      400         {object}  response.Response
// @Router       /api/expenses/{id}/additions/{additionId}/void [post]
func (h *ExpenseHandler) VoidAddition(c *gin.Context) {
	var req service.VoidRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	expense, err := h.expenseService.VoidAddition(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("id"), c.Param("additionId"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, expense))
}
