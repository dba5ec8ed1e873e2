package handler

import (
	"net/http"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// WorkflowHandler handles seller requests and their review by admins
type WorkflowHandler struct {
	workflow usecase.WorkflowUseCase
	logger   coreport.Logger
}

// NewWorkflowHandler creates a new workflow handler instance
func NewWorkflowHandler(workflow usecase.WorkflowUseCase, logger coreport.Logger) *WorkflowHandler {
	return &WorkflowHandler{workflow: workflow, logger: logger}
}

// RequestSellerStatus handles POST /seller-requests
func (h *WorkflowHandler) RequestSellerStatus(c *gin.Context) {
	request, err := h.workflow.RequestSellerStatus(c.Request.Context(), actorName(c))
	if err != nil {
		respondError(c, h.logger, "request seller status", err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewNotificationResponse(request))
}

// List handles GET /admin/notifications
func (h *WorkflowHandler) List(c *gin.Context) {
	list, err := h.workflow.ListNotifications(c.Request.Context(), actorName(c))
	if err != nil {
		respondError(c, h.logger, "list notifications", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewNotificationListResponse(list))
}

// Process handles POST /admin/notifications/:id
func (h *WorkflowHandler) Process(c *gin.Context) {
	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, "process notification", err)
		return
	}
	decision, err := entity.ParseDecision(req.Decision)
	if err != nil {
		respondError(c, h.logger, "process notification", err)
		return
	}

	notification, err := h.workflow.ProcessNotification(c.Request.Context(), actorName(c), c.Param("id"), decision)
	if err != nil {
		respondError(c, h.logger, "process notification", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewNotificationResponse(notification))
}
