package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
	coreport "github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
	"github.com/amirhossein-jamali/marketplace/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// StatusFor maps a domain error to its HTTP status code
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, errs.ErrOutOfStock),
		errors.Is(err, errs.ErrDuplicateRequest),
		errors.Is(err, errs.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, errs.ErrStoreBusy):
		return http.StatusLocked
	case errors.Is(err, errs.ErrStoreCorrupt):
		return http.StatusServiceUnavailable
	case errors.Is(err, errs.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the standard error body for err and records it on the context
func respondError(c *gin.Context, logger coreport.Logger, operation string, err error) {
	status := StatusFor(err)
	c.Error(err) //nolint:errcheck

	fields := errs.LogFields(err)
	fields["operation"] = operation
	fields["request_id"] = c.GetString(middleware.RequestIDKey)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", fields)
	} else {
		logger.Debug("Request rejected", fields)
	}

	c.JSON(status, dto.ErrorResponse{
		Code:    errs.ErrorCode(err),
		Message: errs.Message(err),
	})
}

// respondBindError reports a malformed request body
func respondBindError(c *gin.Context, logger coreport.Logger, operation string, err error) {
	logger.Debug("Invalid request format", map[string]any{
		"operation": operation,
		"error":     err.Error(),
	})
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Code:    errs.ErrorCode(errs.ErrInvalidInput),
		Message: "Invalid request format: " + err.Error(),
	})
}

// actorName returns the username of the authenticated caller
func actorName(c *gin.Context) string {
	if session := middleware.CurrentSession(c); session != nil {
		return session.Username
	}
	return ""
}

// parseItemID reads the :id path parameter
func parseItemID(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errs.ErrItemNotFound
	}
	return id, nil
}

// readItemForm binds the item form and opens the optional "image" upload.
// The returned closer must be called once the use case is done with the image.
func readItemForm(c *gin.Context) (entity.ItemDraft, *usecase.ImageUpload, func(), error) {
	noop := func() {}

	var form dto.ItemForm
	if err := c.ShouldBind(&form); err != nil {
		return entity.ItemDraft{}, nil, noop, errors.Join(errs.ErrInvalidInput, err)
	}
	draft, err := form.Draft()
	if err != nil {
		return entity.ItemDraft{}, nil, noop, err
	}

	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return draft, nil, noop, nil
	}
	if err != nil {
		return entity.ItemDraft{}, nil, noop, errors.Join(errs.ErrInvalidInput, err)
	}
	return openUpload(draft, header)
}

func openUpload(draft entity.ItemDraft, header *multipart.FileHeader) (entity.ItemDraft, *usecase.ImageUpload, func(), error) {
	file, err := header.Open()
	if err != nil {
		return entity.ItemDraft{}, nil, func() {}, err
	}
	closer := func() { file.Close() } //nolint:errcheck
	return draft, &usecase.ImageUpload{Filename: header.Filename, Content: file}, closer, nil
}
