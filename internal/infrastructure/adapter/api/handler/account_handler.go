package handler

import (
	"net/http"

	coreport "github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// AccountHandler handles registration, login and the per-user views
type AccountHandler struct {
	accounts usecase.AccountUseCase
	logger   coreport.Logger
}

// NewAccountHandler creates a new account handler instance
func NewAccountHandler(accounts usecase.AccountUseCase, logger coreport.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger}
}

// Register handles POST /auth/register
func (h *AccountHandler) Register(c *gin.Context) {
	var req dto.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, "register", err)
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), usecase.RegisterRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.logger, "register", err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

// Login handles POST /auth/login
func (h *AccountHandler) Login(c *gin.Context) {
	var req dto.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, "login", err)
		return
	}

	session, err := h.accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, h.logger, "login", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(session))
}

// Profile handles GET /me
func (h *AccountHandler) Profile(c *gin.Context) {
	user, err := h.accounts.Profile(c.Request.Context(), actorName(c))
	if err != nil {
		respondError(c, h.logger, "profile", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// Dashboard handles GET /me/dashboard
func (h *AccountHandler) Dashboard(c *gin.Context) {
	view, err := h.accounts.Dashboard(c.Request.Context(), actorName(c))
	if err != nil {
		respondError(c, h.logger, "dashboard", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewDashboardResponse(view))
}

// Mailbox handles GET /me/notifications. Reading the mailbox marks it read.
func (h *AccountHandler) Mailbox(c *gin.Context) {
	view, err := h.accounts.Mailbox(c.Request.Context(), actorName(c))
	if err != nil {
		respondError(c, h.logger, "mailbox", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMailboxResponse(view))
}
