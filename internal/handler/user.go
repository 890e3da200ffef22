package handler

import (
	"net/http"

	"github.com/contactbook/api/internal/constants"
	"github.com/contactbook/api/internal/dto"
	apperrors "github.com/contactbook/api/internal/errors"
	"github.com/contactbook/api/internal/model"
	"github.com/contactbook/api/internal/service"
	ctxutil "github.com/contactbook/api/pkg/context"
	"github.com/contactbook/api/pkg/logger"
	"github.com/gin-gonic/gin"
)

// maxAvatarSize caps avatar uploads at 5 MiB.
const maxAvatarSize = 5 << 20

type UserHandler struct {
	avatarService *service.AvatarService
}

func NewUserHandler(avatarService *service.AvatarService) *UserHandler {
	return &UserHandler{avatarService: avatarService}
}

// Me returns the authenticated account.
func (h *UserHandler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// UpdateAvatar accepts a multipart "file" field, uploads it to object
// storage and returns the refreshed profile.
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "UpdateAvatar")

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		logger.WarnWithContext(ctx, "Avatar upload without file field").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Missing file field", err.Error()))
		return
	}

	if fileHeader.Size > maxAvatarSize {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("File too large", nil))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Failed to read file", err.Error()))
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	avatarURL, err := h.avatarService.Upload(ctx, user.ID, user.Username, fileHeader.Filename, contentType, file)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.ErrorWithContext(ctx, "Avatar upload failed").
			Int("user_id", int(user.ID)).
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	user.Avatar = &avatarURL
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// currentUser pulls the account stored by the auth middleware.
func currentUser(c *gin.Context) (*model.User, bool) {
	value, exists := c.Get(constants.GinKeyCurrentUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*model.User)
	return user, ok
}
