package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"interview-coach/internal/domain"
	"interview-coach/internal/service"
)

// AccountHandler expone registro, login y rotacion de tokens de candidatos.
type AccountHandler struct {
	logger   *zap.Logger
	accounts *service.AccountService
	jwtServ  *service.JWTService
}

func NewAccountHandler(logger *zap.Logger, accounts *service.AccountService, jwtServ *service.JWTService) *AccountHandler {
	return &AccountHandler{
		logger:   logger,
		accounts: accounts,
		jwtServ:  jwtServ,
	}
}

// Register maneja POST /auth/register.
func (h *AccountHandler) Register(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		DisplayName string `json:"display_name"`
		Password    string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	candidate, err := h.accounts.Register(c.Request.Context(), service.RegisterInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("register failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register"})
		}
		return
	}

	tokens, err := h.issueTokens(candidate)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"candidate": candidate, "tokens": tokens})
}

// Login maneja POST /auth/login.
func (h *AccountHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	candidate, err := h.accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not login"})
		return
	}

	tokens, err := h.issueTokens(candidate)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidate": candidate, "tokens": tokens})
}

// RefreshToken maneja POST /auth/refresh.
func (h *AccountHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid refresh request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if h.jwtServ == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
		return
	}
	tokens, err := h.jwtServ.RefreshPair(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// Logout maneja POST /auth/logout.
func (h *AccountHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid logout request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if h.jwtServ == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
		return
	}
	_ = h.jwtServ.RevokeRefresh(req.RefreshToken)
	c.Status(http.StatusNoContent)
}

func (h *AccountHandler) issueTokens(candidate domain.Candidate) (service.TokenPair, error) {
	if h.jwtServ == nil {
		return service.TokenPair{}, errors.New("jwt not configured")
	}
	return h.jwtServ.GeneratePair(candidate)
}
