package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// ProductHandler handles product endpoints
type ProductHandler struct {
	BaseHandler
	products *catalogapp.ProductService
	limits   catalogapp.UploadLimits
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products *catalogapp.ProductService, limits catalogapp.UploadLimits) *ProductHandler {
	return &ProductHandler{products: products, limits: limits}
}

type productListQuery struct {
	catalogapp.ListQuery
	CategoryID    string `form:"categoryId" binding:"omitempty,uuid"`
	SubcategoryID string `form:"subcategoryId" binding:"omitempty,uuid"`
}

func (q productListQuery) filter() catalogapp.ProductFilter {
	var f catalogapp.ProductFilter
	if q.CategoryID != "" {
		id := uuid.MustParse(q.CategoryID)
		f.CategoryID = &id
	}
	if q.SubcategoryID != "" {
		id := uuid.MustParse(q.SubcategoryID)
		f.SubcategoryID = &id
	}
	return f
}

type productSearchQuery struct {
	catalogapp.ListQuery
	Query string `form:"query" binding:"required,max=200"`
}

// Create godoc
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.ProductRequest true "Product"
// @Success      201 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.products.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// GetByID godoc
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamID(c, "product")
	if !ok {
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// List godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Items per page" default(20)
// @Param        search query string false "Name contains"
// @Param        sortBy query string false "name, price, stock, created_at or updated_at"
// @Param        sortOrder query string false "asc or desc"
// @Param        categoryId query string false "Category filter" format(uuid)
// @Param        subcategoryId query string false "Subcategory filter" format(uuid)
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse,meta=dto.Meta}
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var query productListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	page, err := h.products.List(c.Request.Context(), query.ListQuery, query.filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPagedResponse(page))
}

// Search godoc
// @Summary      Search products by name
// @Tags         products
// @Produce      json
// @Param        query query string true "Search term"
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Items per page" default(20)
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/search [get]
func (h *ProductHandler) Search(c *gin.Context) {
	var query productSearchQuery
	if !h.BindQuery(c, &query) {
		return
	}

	page, err := h.products.Search(c.Request.Context(), query.Query, query.ListQuery)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPagedResponse(page))
}

// All godoc
// @Summary      All products
// @Tags         products
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse}
// @Router       /products/all [get]
func (h *ProductHandler) All(c *gin.Context) {
	products, err := h.products.All(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// Update godoc
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.ProductRequest true "Product"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "product")
	if !ok {
		return
	}
	var req catalogapp.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.products.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
// @Summary      Delete a product
// @Description  Placed orders keep their item snapshots
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=MessageData}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "product")
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Product removed"})
}

// UploadImages godoc
// @Summary      Upload product images
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        images formData file true "Image files"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id}/images [post]
func (h *ProductHandler) UploadImages(c *gin.Context) {
	id, ok := h.ParamID(c, "product")
	if !ok {
		return
	}

	uploads, closeFiles, err := formImages(c, "images")
	defer closeFiles()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	product, err := h.products.UploadImages(c.Request.Context(), id, uploads, h.limits)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}
