package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/questionit/api/internal/auth/domain"
	"github.com/questionit/api/internal/auth/http/dto"
	authUseCase "github.com/questionit/api/internal/auth/usecase"
	"github.com/questionit/api/internal/httputil"
	customValidation "github.com/questionit/api/internal/validation"
)

// HandshakeHandler handles the delegated-application handshake endpoints.
type HandshakeHandler struct {
	handshakeUseCase authUseCase.HandshakeUseCase
	logger           *slog.Logger
}

// NewHandshakeHandler creates a new handshake handler with required dependencies.
func NewHandshakeHandler(handshakeUseCase authUseCase.HandshakeUseCase, logger *slog.Logger) *HandshakeHandler {
	return &HandshakeHandler{
		handshakeUseCase: handshakeUseCase,
		logger:           logger,
	}
}

// RequestTokenHandler starts a handshake for an application.
// POST /v1/applications/token - No authentication, rate limited per IP.
// Returns 201 Created with the opaque handshake token.
func (h *HandshakeHandler) RequestTokenHandler(c *gin.Context) {
	var req dto.RequestHandshakeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.handshakeUseCase.RequestToken(c.Request.Context(), &authDomain.RequestHandshakeInput{
		ApplicationKey: req.Key,
		RedirectTo:     req.URL,
		Rights:         req.Rights,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.RequestHandshakeResponse{Token: output.Token})
}

// DetailsHandler describes a pending handshake to the user about to approve it.
// GET /v1/applications/token/:token
// Returns 200 OK with the application and the requested rights.
func (h *HandshakeHandler) DetailsHandler(c *gin.Context) {
	details, err := h.handshakeUseCase.Details(c.Request.Context(), c.Param("token"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapHandshakeDetailsToResponse(details))
}

// ApproveHandler approves or denies a pending handshake.
// POST /v1/applications/approve - Requires a first-party credential.
// Returns 200 OK with {validator, url}, {pin} or {denied}.
func (h *HandshakeHandler) ApproveHandler(c *gin.Context) {
	auth, ok := requireUser(c, h.logger)
	if !ok {
		return
	}

	var req dto.ApproveHandshakeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.handshakeUseCase.Approve(c.Request.Context(), auth.User, &authDomain.ApproveHandshakeInput{
		Token: req.Token,
		Deny:  req.Deny,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapApproveOutputToResponse(output))
}

// ExchangeHandler trades an approved handshake for a delegated credential.
// POST /v1/token/create - No authentication, rate limited per IP.
// Returns 201 Created with the credential and the user profile.
func (h *HandshakeHandler) ExchangeHandler(c *gin.Context) {
	var req dto.ExchangeHandshakeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.handshakeUseCase.Exchange(c.Request.Context(), &authDomain.ExchangeHandshakeInput{
		ApplicationKey: req.Key,
		Token:          req.Token,
		Validator:      req.Validator,
		IP:             c.ClientIP(),
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapExchangeOutputToResponse(output))
}
