package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rishipandey14/HRMS-Backend/src/internal/config"
	"github.com/rishipandey14/HRMS-Backend/src/internal/identity"
	"github.com/rishipandey14/HRMS-Backend/src/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler interface {
	Login(c *gin.Context)
	Logout(c *gin.Context)
	GetActive(c *gin.Context)
}

type handler struct {
	config  *config.Configuration
	service Service
}

func NewHandler(cfg *config.Configuration, service Service) Handler {
	return &handler{
		config:  cfg,
		service: service,
	}
}

func (h *handler) Login(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
	defer cancel()

	id, ok := identity.FromContext(c)
	if !ok {
		h.sendErrorResponse(c, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}

	session, err := h.service.StartSession(ctx, id)
	if err != nil {
		h.handleError(c, err, "Error starting session")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Session started",
		"sessionId": session.ID.Hex(),
	})
}

func (h *handler) Logout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
	defer cancel()

	id, ok := identity.FromContext(c)
	if !ok {
		h.sendErrorResponse(c, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}

	result, err := h.service.EndSession(ctx, id)
	if err != nil {
		h.handleError(c, err, "Error ending session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Session ended",
		"session": result.Session,
		"uptime":  result.Uptime,
	})
}

func (h *handler) GetActive(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
	defer cancel()

	id, ok := identity.FromContext(c)
	if !ok {
		h.sendErrorResponse(c, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}

	session, err := h.service.GetActiveSession(ctx, id)
	if err != nil {
		h.handleError(c, err, "Error fetching session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": session})
}

func (h *handler) handleError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, models.ErrSessionNotFound):
		h.sendErrorResponse(c, http.StatusNotFound, models.ErrSessionNotFound.Error(), "Start a session before ending it")
	case errors.Is(err, models.ErrSessionAlreadyActive):
		h.sendErrorResponse(c, http.StatusConflict, "Session already active", "End the open session before starting a new one")
	case errors.Is(err, models.ErrLockNotAcquired):
		h.sendErrorResponse(c, http.StatusConflict, "Session busy", "Another session request is in progress")
	case errors.Is(err, models.ErrInvalidSessionTimes):
		h.sendErrorResponse(c, http.StatusBadRequest, "Invalid session", err.Error())
	default:
		logrus.WithError(err).Error(fallback)
		h.sendErrorResponse(c, http.StatusInternalServerError, fallback, err.Error())
	}
}

func (h *handler) sendErrorResponse(c *gin.Context, statusCode int, error, message string) {
	c.JSON(statusCode, gin.H{
		"error":   error,
		"message": message,
	})
}
