package handler

import (
	"net/http"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// AdminHandler handles the administrator tools
type AdminHandler struct {
	admin  usecase.AdminUseCase
	logger coreport.Logger
}

// NewAdminHandler creates a new admin handler instance
func NewAdminHandler(admin usecase.AdminUseCase, logger coreport.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, logger: logger}
}

// Promote handles POST /admin/promotions
func (h *AdminHandler) Promote(c *gin.Context) {
	var req dto.PromoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, "promote", err)
		return
	}
	role, err := entity.NewRole(req.Role, req.Level)
	if err != nil {
		respondError(c, h.logger, "promote", err)
		return
	}

	user, err := h.admin.Promote(c.Request.Context(), actorName(c), req.Username, role)
	if err != nil {
		respondError(c, h.logger, "promote", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// AddFunds handles POST /admin/users/:username/funds
func (h *AdminHandler) AddFunds(c *gin.Context) {
	var req dto.FundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, "add funds", err)
		return
	}
	amount, err := entity.ValidatePositiveAmount(req.Amount)
	if err != nil {
		respondError(c, h.logger, "add funds", err)
		return
	}

	user, err := h.admin.AddFunds(c.Request.Context(), actorName(c), c.Param("username"), amount)
	if err != nil {
		respondError(c, h.logger, "add funds", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// DeleteUser handles DELETE /admin/users/:username
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.admin.DeleteUser(c.Request.Context(), actorName(c), c.Param("username")); err != nil {
		respondError(c, h.logger, "delete user", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListUsers handles GET /admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.admin.ListUsers(c.Request.Context(), actorName(c))
	if err != nil {
		respondError(c, h.logger, "list users", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserListResponse(users))
}

// RepairFamily handles POST /admin/store/:family/repair
func (h *AdminHandler) RepairFamily(c *gin.Context) {
	family, err := persistence.ParseFamily(c.Param("family"))
	if err != nil {
		respondError(c, h.logger, "repair family", err)
		return
	}

	if err := h.admin.RepairFamily(c.Request.Context(), middleware.CurrentSession(c), family); err != nil {
		respondError(c, h.logger, "repair family", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"family": family, "status": "repaired"})
}
