package handler

import (
	"net/http"

	coreport "github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// CatalogHandler handles item listing requests and serves item images
type CatalogHandler struct {
	catalog usecase.CatalogUseCase
	images  persistence.ImageStore
	logger  coreport.Logger
}

// NewCatalogHandler creates a new catalog handler instance
func NewCatalogHandler(catalog usecase.CatalogUseCase, images persistence.ImageStore, logger coreport.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, images: images, logger: logger}
}

// List handles GET /items
func (h *CatalogHandler) List(c *gin.Context) {
	items, err := h.catalog.ListCatalog(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "list catalog", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewItemListResponse(items))
}

// View handles GET /items/:id
func (h *CatalogHandler) View(c *gin.Context) {
	id, err := parseItemID(c)
	if err != nil {
		respondError(c, h.logger, "view item", err)
		return
	}

	item, err := h.catalog.ViewItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "view item", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewItemResponse(item))
}

// ListBySeller handles GET /sellers/:username/items
func (h *CatalogHandler) ListBySeller(c *gin.Context) {
	items, err := h.catalog.ListBySeller(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, h.logger, "list seller items", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewItemListResponse(items))
}

// Create handles POST /items as a multipart form with an optional "image" file
func (h *CatalogHandler) Create(c *gin.Context) {
	draft, image, closeImage, err := readItemForm(c)
	defer closeImage()
	if err != nil {
		respondError(c, h.logger, "create item", err)
		return
	}

	item, err := h.catalog.CreateItem(c.Request.Context(), actorName(c), draft, image)
	if err != nil {
		respondError(c, h.logger, "create item", err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewItemResponse(item))
}

// Update handles PUT /items/:id
func (h *CatalogHandler) Update(c *gin.Context) {
	id, err := parseItemID(c)
	if err != nil {
		respondError(c, h.logger, "update item", err)
		return
	}

	draft, image, closeImage, err := readItemForm(c)
	defer closeImage()
	if err != nil {
		respondError(c, h.logger, "update item", err)
		return
	}

	item, err := h.catalog.UpdateItem(c.Request.Context(), actorName(c), id, draft, image)
	if err != nil {
		respondError(c, h.logger, "update item", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewItemResponse(item))
}

// Delete handles DELETE /items/:id
func (h *CatalogHandler) Delete(c *gin.Context) {
	id, err := parseItemID(c)
	if err != nil {
		respondError(c, h.logger, "delete item", err)
		return
	}

	if err := h.catalog.DeleteItem(c.Request.Context(), actorName(c), id); err != nil {
		respondError(c, h.logger, "delete item", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Image handles GET /images/:name
func (h *CatalogHandler) Image(c *gin.Context) {
	path, err := h.images.Path(c.Param("name"))
	if err != nil {
		respondError(c, h.logger, "serve image", err)
		return
	}

	c.File(path)
}
