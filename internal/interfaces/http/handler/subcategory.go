package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// SubcategoryHandler handles subcategory endpoints
type SubcategoryHandler struct {
	BaseHandler
	subcategories *catalogapp.SubcategoryService
	products      *catalogapp.ProductService
	limits        catalogapp.UploadLimits
}

// NewSubcategoryHandler creates a new SubcategoryHandler
func NewSubcategoryHandler(subcategories *catalogapp.SubcategoryService, products *catalogapp.ProductService, limits catalogapp.UploadLimits) *SubcategoryHandler {
	return &SubcategoryHandler{
		subcategories: subcategories,
		products:      products,
		limits:        limits,
	}
}

type subcategoryListQuery struct {
	catalogapp.ListQuery
	CategoryID string `form:"categoryId" binding:"omitempty,uuid"`
}

// Create godoc
// @Summary      Create a subcategory
// @Tags         subcategories
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.SubcategoryRequest true "Subcategory"
// @Success      201 {object} dto.Response{data=catalogapp.SubcategoryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /subcategories [post]
func (h *SubcategoryHandler) Create(c *gin.Context) {
	var req catalogapp.SubcategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sub, err := h.subcategories.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sub)
}

// GetByID godoc
// @Summary      Get a subcategory
// @Tags         subcategories
// @Produce      json
// @Param        id path string true "Subcategory ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.SubcategoryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /subcategories/{id} [get]
func (h *SubcategoryHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamID(c, "subcategory")
	if !ok {
		return
	}

	sub, err := h.subcategories.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sub)
}

// List godoc
// @Summary      List subcategories
// @Tags         subcategories
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Items per page" default(20)
// @Param        search query string false "Name contains"
// @Param        sortBy query string false "name, created_at or updated_at"
// @Param        sortOrder query string false "asc or desc"
// @Param        categoryId query string false "Parent category" format(uuid)
// @Success      200 {object} dto.Response{data=[]catalogapp.SubcategoryResponse,meta=dto.Meta}
// @Router       /subcategories [get]
func (h *SubcategoryHandler) List(c *gin.Context) {
	var query subcategoryListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	var categoryID *uuid.UUID
	if query.CategoryID != "" {
		id := uuid.MustParse(query.CategoryID)
		categoryID = &id
	}

	page, err := h.subcategories.List(c.Request.Context(), query.ListQuery, categoryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPagedResponse(page))
}

// All godoc
// @Summary      All subcategories
// @Tags         subcategories
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalogapp.SubcategoryResponse}
// @Router       /subcategories/all [get]
func (h *SubcategoryHandler) All(c *gin.Context) {
	subs, err := h.subcategories.All(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, subs)
}

// Products godoc
// @Summary      Products of a subcategory
// @Tags         subcategories
// @Produce      json
// @Param        id path string true "Subcategory ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /subcategories/{id}/products [get]
func (h *SubcategoryHandler) Products(c *gin.Context) {
	id, ok := h.ParamID(c, "subcategory")
	if !ok {
		return
	}

	products, err := h.products.BySubcategory(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// Update godoc
// @Summary      Update a subcategory
// @Tags         subcategories
// @Accept       json
// @Produce      json
// @Param        id path string true "Subcategory ID" format(uuid)
// @Param        request body catalogapp.SubcategoryRequest true "Subcategory"
// @Success      200 {object} dto.Response{data=catalogapp.SubcategoryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /subcategories/{id} [put]
func (h *SubcategoryHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "subcategory")
	if !ok {
		return
	}
	var req catalogapp.SubcategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sub, err := h.subcategories.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sub)
}

// Delete godoc
// @Summary      Delete a subcategory
// @Tags         subcategories
// @Produce      json
// @Param        id path string true "Subcategory ID" format(uuid)
// @Success      200 {object} dto.Response{data=MessageData}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /subcategories/{id} [delete]
func (h *SubcategoryHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "subcategory")
	if !ok {
		return
	}

	if err := h.subcategories.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Subcategory removed"})
}

// UploadImage godoc
// @Summary      Upload a subcategory image
// @Tags         subcategories
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Subcategory ID" format(uuid)
// @Param        image formData file true "Image file"
// @Success      200 {object} dto.Response{data=catalogapp.SubcategoryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /subcategories/{id}/image [post]
func (h *SubcategoryHandler) UploadImage(c *gin.Context) {
	id, ok := h.ParamID(c, "subcategory")
	if !ok {
		return
	}

	uploads, closeFiles, err := formImages(c, "image")
	defer closeFiles()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := catalogapp.ValidateImageUploads(uploads, catalogapp.UploadLimits{MaxFileSize: h.limits.MaxFileSize, MaxFiles: 1}); err != nil {
		h.HandleError(c, err)
		return
	}

	sub, err := h.subcategories.UploadImage(c.Request.Context(), id, uploads[0], h.limits)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sub)
}
