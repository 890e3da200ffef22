package handler

import (
	"net/http"
	"strconv"

	"github.com/contactbook/api/internal/constants"
	"github.com/contactbook/api/internal/dto"
	apperrors "github.com/contactbook/api/internal/errors"
	"github.com/contactbook/api/internal/repository"
	"github.com/contactbook/api/internal/service"
	ctxutil "github.com/contactbook/api/pkg/context"
	"github.com/contactbook/api/pkg/logger"
	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	contactService *service.ContactService
}

func NewContactHandler(contactService *service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// GetAll lists the caller's contacts with optional name/surname/email
// substring filters.
func (h *ContactHandler) GetAll(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "GetAll")

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
		return
	}

	pagination := constants.ParsePaginationParams(c)
	filter := repository.ContactFilter{
		Name:    c.Query(constants.QueryParamName),
		Surname: c.Query(constants.QueryParamSurname),
		Email:   c.Query(constants.QueryParamEmail),
	}

	contacts, err := h.contactService.GetAll(ctx, user.ID, filter, pagination.Offset, pagination.Limit)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.ErrorWithContext(ctx, "Failed to fetch contacts").
			Int("user_id", int(user.ID)).
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, contacts)
}

// BirthdaysSoon lists contacts with a birthday in the next week.
func (h *ContactHandler) BirthdaysSoon(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "BirthdaysSoon")

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
		return
	}

	pagination := constants.ParsePaginationParams(c)

	contacts, err := h.contactService.BirthdaysSoon(ctx, user.ID, pagination.Offset, pagination.Limit)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.ErrorWithContext(ctx, "Failed to fetch upcoming birthdays").
			Int("user_id", int(user.ID)).
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, contacts)
}

func (h *ContactHandler) GetByID(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "GetByID")

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
		return
	}

	contactID, ok := contactIDParam(c)
	if !ok {
		return
	}

	contact, err := h.contactService.GetByID(ctx, contactID, user.ID)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) Create(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "Create")

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
		return
	}

	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid contact request body").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", err.Error()))
		return
	}

	contact, err := h.contactService.Create(ctx, user.ID, &req)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.WarnWithContext(ctx, "Failed to create contact").
			Int("user_id", int(user.ID)).
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusCreated, contact)
}

func (h *ContactHandler) Update(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "Update")

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
		return
	}

	contactID, ok := contactIDParam(c)
	if !ok {
		return
	}

	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", err.Error()))
		return
	}

	contact, err := h.contactService.Update(ctx, contactID, user.ID, &req)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) Delete(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "Delete")

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
		return
	}

	contactID, ok := contactIDParam(c)
	if !ok {
		return
	}

	if err := h.contactService.Delete(ctx, contactID, user.ID); err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.Status(http.StatusNoContent)
}

func contactIDParam(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid contact ID", raw))
		return 0, false
	}
	return uint(id), true
}
