package handler

import (
	"net/http"
	"strings"

	"github.com/contactbook/api/internal/constants"
	"github.com/contactbook/api/internal/dto"
	apperrors "github.com/contactbook/api/internal/errors"
	"github.com/contactbook/api/internal/service"
	ctxutil "github.com/contactbook/api/pkg/context"
	"github.com/contactbook/api/pkg/logger"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Signup registers a new account and replies 201 with the created user.
func (h *AuthHandler) Signup(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "Signup")

	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid signup request body").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", err.Error()))
		return
	}

	user, err := h.authService.Signup(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.WarnWithContext(ctx, "Signup failed").
			String("email", req.Email).
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":   dto.NewUserResponse(user),
		"detail": "User successfully created. Check your email for confirmation.",
	})
}

// Login exchanges form credentials for a token pair. The username form
// field carries the email.
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "Login")

	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid login request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", err.Error()))
		return
	}

	accessToken, refreshToken, err := h.authService.Login(ctx, req.Username, req.Password)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	})
}

// Refresh rotates the token pair presented as a bearer refresh token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "Refresh")

	token, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
		return
	}

	accessToken, refreshToken, err := h.authService.Refresh(ctx, token)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.WarnWithContext(ctx, "Refresh failed").
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	})
}

// ConfirmEmail consumes the confirmation link from the email.
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "ConfirmEmail")

	token := c.Param("token")

	message, err := h.authService.Confirm(ctx, token)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		logger.WarnWithContext(ctx, "Email confirmation failed").
			Int("http_status", status).
			Err(err).
			Log()
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(message))
}

// RequestEmail re-sends the confirmation email.
func (h *AuthHandler) RequestEmail(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "RequestEmail")

	var req dto.RequestEmail
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", err.Error()))
		return
	}

	message, err := h.authService.ResendConfirmation(ctx, req.Email)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(message))
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}
