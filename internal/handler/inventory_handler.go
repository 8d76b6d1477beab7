package handler

import (
	"net/http"
	"strconv"

	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/internal/service"
	"backoffice/pkg/apperror"
	"backoffice/pkg/pagination"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	inventoryService service.InventoryService
}

func NewInventoryHandler(inventoryService service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	read := middleware.RequirePermission(model.PermInventoryRead)
	write := middleware.RequirePermission(model.PermInventoryWrite)

	router.GET("/api/categories", read, h.GetCategories)
	router.POST("/api/categories", write, h.CreateCategory)
	router.GET("/api/units", read, h.GetUnits)
	router.POST("/api/units", write, h.CreateUnit)

	products := router.Group("/api/products")
	{
		products.GET("", read, h.GetProducts)
		products.POST("", write, h.CreateProduct)
		products.GET("/stats", read, h.GetProductStats)
		products.PUT("/:id", write, h.UpdateProduct)
		products.DELETE("/:id", write, h.DeleteProduct)
	}

	movements := router.Group("/api/movements")
	{
		movements.GET("", read, h.GetMovements)
		movements.POST("", write, h.RecordMovement)
		movements.GET("/product/:id", read, h.GetProductMovements)
	}
}

// GetCategories lists product categories
// @Summary      List categories
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.CategoryResponse}
// @Router       /api/categories [get]
func (h *InventoryHandler) GetCategories(c *gin.Context) {
	categories, err := h.inventoryService.GetCategories(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, categories))
}

// CreateCategory adds a product category
// @Summary      Create category
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CategoryRequest  true  "Category"
// @Success      201      {object}  response.Response{data=service.CategoryResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/categories [post]
func (h *InventoryHandler) CreateCategory(c *gin.Context) {
	var req service.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.inventoryService.CreateCategory(c.Request.Context(), c.GetString(middleware.ContextUserID), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, category))
}

// GetUnits lists units of measure
// @Summary      List units
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.UnitResponse}
// @Router       /api/units [get]
func (h *InventoryHandler) GetUnits(c *gin.Context) {
	units, err := h.inventoryService.GetUnits(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, units))
}

// CreateUnit adds a unit of measure
// @Summary      Create unit
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.UnitRequest  true  "Unit"
// @Success      201      {object}  response.Response{data=service.UnitResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/units [post]
func (h *InventoryHandler) CreateUnit(c *gin.Context) {
	var req service.UnitRequest
	if !bindJSON(c, &req) {
		return
	}

	unit, err := h.inventoryService.CreateUnit(c.Request.Context(), c.GetString(middleware.ContextUserID), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, unit))
}

// GetProducts lists products with their current stock
// @Summary      List products
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        search       query     string  false  "Name or SKU contains"
// @Param        category_id  query     string  false  "Category ID"
// @Param        low_stock    query     bool    false  "Only products at or below their minimum"
// @Param        page         query     int     false  "Page"
// @Param        limit        query     int     false  "Page size"
// @Success      200          {object}  response.Response{data=response.Page{items=[]service.ProductResponse}}
// @Failure      400          {object}  response.Response
// @Router       /api/products [get]
func (h *InventoryHandler) GetProducts(c *gin.Context) {
	p := pagination.Parse(c)
	filter := repository.ProductFilter{Search: c.Query("search")}
	filter.LowStock, _ = strconv.ParseBool(c.Query("low_stock"))
	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.FromError(c, apperror.NewValidationError("invalid category_id",
				apperror.FieldError{Field: "category_id", Message: "must be a UUID"}))
			return
		}
		filter.CategoryID = &id
	}

	products, total, err := h.inventoryService.GetProducts(c.Request.Context(), filter, p.Page, p.Limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	writePage(c, products, total, p)
}

// CreateProduct adds a product, optionally with an opening stock
// @Summary      Create product
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateProductRequest  true  "Product"
// @Success      201      {object}  response.Response{data=service.ProductResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/products [post]
func (h *InventoryHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.inventoryService.CreateProduct(c.Request.Context(), c.GetString(middleware.ContextUserID), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, product))
}

// UpdateProduct edits product details; stock only changes through movements
// @Summary      Update product
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Product ID"
// @Param        payload  body      service.UpdateProductRequest  true  "Product"
// @Success      200      {object}  response.Response{data=service.ProductResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/products/{id} [put]
func (h *InventoryHandler) UpdateProduct(c *gin.Context) {
	var req service.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.inventoryService.UpdateProduct(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("id"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// DeleteProduct removes a product
// @Summary      Delete product
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/products/{id} [delete]
func (h *InventoryHandler) DeleteProduct(c *gin.Context) {
	if err := h.inventoryService.DeleteProduct(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Product deleted successfully"}))
}

// GetProductStats summarises stock levels and movement volume
// @Summary      Inventory statistics
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=model.ProductStats}
// @Router       /api/products/stats [get]
func (h *InventoryHandler) GetProductStats(c *gin.Context) {
	stats, err := h.inventoryService.GetProductStats(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// GetMovements lists every stock movement, newest first
// @Summary      List stock movements
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response{data=response.Page{items=[]service.MovementResponse}}
// @Router       /api/movements [get]
func (h *InventoryHandler) GetMovements(c *gin.Context) {
	h.listMovements(c, "")
}

// GetProductMovements lists the stock movements of one product
// @Summary      Product stock movements
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "Product ID"
// @Param        page   query     int     false  "Page"
// @Param        limit  query     int     false  "Page size"
// @Success      200    {object}  response.Response{data=response.Page{items=[]service.MovementResponse}}
// @Failure      404    {object}  response.Response
// @Router       /api/movements/product/{id} [get]
func (h *InventoryHandler) GetProductMovements(c *gin.Context) {
	h.listMovements(c, c.Param("id"))
}

func (h *InventoryHandler) listMovements(c *gin.Context, productID string) {
	p := pagination.Parse(c)
	movements, total, err := h.inventoryService.GetMovements(c.Request.Context(), productID, p.Page, p.Limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	writePage(c, movements, total, p)
}

// RecordMovement moves stock in or out of a product
// @Summary      Record stock movement
// @Description  An "out" movement larger than the current stock is rejected.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.MovementRequest  true  "Movement"
// @Success      201      {object}  response.Response{data=service.MovementResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/movements [post]
func (h *InventoryHandler) RecordMovement(c *gin.Context) {
	var req service.MovementRequest
	if !bindJSON(c, &req) {
		return
	}

	movement, err := h.inventoryService.RecordMovement(c.Request.Context(), c.GetString(middleware.ContextUserID), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, movement))
}
