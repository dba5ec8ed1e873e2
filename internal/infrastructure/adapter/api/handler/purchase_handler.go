package handler

import (
	"net/http"

	coreport "github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// PurchaseHandler handles buy requests
type PurchaseHandler struct {
	purchases usecase.PurchaseUseCase
	logger    coreport.Logger
}

// NewPurchaseHandler creates a new purchase handler instance
func NewPurchaseHandler(purchases usecase.PurchaseUseCase, logger coreport.Logger) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases, logger: logger}
}

// Purchase handles POST /purchases
func (h *PurchaseHandler) Purchase(c *gin.Context) {
	req := dto.NewPurchaseRequest()
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, "purchase", err)
		return
	}

	receipt, err := h.purchases.Purchase(c.Request.Context(), actorName(c), req.ItemID, req.Quantity)
	if err != nil {
		respondError(c, h.logger, "purchase", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewReceiptResponse(receipt))
}
