package user

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rishipandey14/HRMS-Backend/src/internal/cache"
	"github.com/rishipandey14/HRMS-Backend/src/internal/config"
	"github.com/rishipandey14/HRMS-Backend/src/internal/identity"
	"github.com/rishipandey14/HRMS-Backend/src/internal/models"
	"github.com/rishipandey14/HRMS-Backend/src/internal/pagination"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler interface {
	GetAllUsers(c *gin.Context)
	GetUserStats(c *gin.Context)
	ApproveUser(c *gin.Context)
}

type handler struct {
	config       *config.Configuration
	service      Service
	cacheService cache.Service
}

func NewHandler(cfg *config.Configuration, service Service, cacheService cache.Service) Handler {
	return &handler{
		config:       cfg,
		service:      service,
		cacheService: cacheService,
	}
}

func (h *handler) GetAllUsers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
	defer cancel()

	requester, ok := identity.FromContext(c)
	if !ok {
		h.sendErrorResponse(c, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}

	page := pagination.Parse(c.Query("page"), c.Query("limit"), h.config.Pagination)
	req := &GetAllUsersRequest{
		CompanyCode: requester.ScopeID(),
		Page:        page.Page,
		Limit:       page.Limit,
		Skip:        page.Skip,
		Role:        c.Query("role"),
		Search:      c.Query("search"),
	}

	logrus.WithFields(logrus.Fields{
		"admin":        requester.Key(),
		"company_code": req.CompanyCode,
		"page":         req.Page,
		"limit":        req.Limit,
		"role":         req.Role,
		"search":       req.Search,
	}).Info("GetAllUsers request received")

	response, err := h.service.GetAllUsers(ctx, req)
	if err != nil {
		h.handleError(c, err, "Failed to retrieve users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    response,
		"message": "Users retrieved successfully",
	})
}

func (h *handler) GetUserStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
	defer cancel()

	requester, ok := identity.FromContext(c)
	if !ok {
		h.sendErrorResponse(c, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}
	companyCode := requester.ScopeID()

	logrus.WithField("company_code", companyCode).Info("GetUserStats request received")

	userStats, err := h.cacheService.GetUserStats(ctx, companyCode)
	if err == nil && userStats != nil {
		logrus.Debug("User statistics retrieved from cache")
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    userStats,
			"message": "User statistics retrieved successfully (from cache)",
		})
		return
	}

	stats, err := h.service.GetUserStats(ctx, companyCode)
	if err != nil {
		h.handleError(c, err, "Failed to retrieve user statistics")
		return
	}

	if err := h.cacheService.SaveUserStats(ctx, stats); err != nil {
		logrus.WithError(err).Warn("Failed to cache user statistics")
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
		"message": "User statistics retrieved successfully",
	})
}

func (h *handler) ApproveUser(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
	defer cancel()

	requester, ok := identity.FromContext(c)
	if !ok {
		h.sendErrorResponse(c, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}

	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendErrorResponse(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	user, err := h.service.ApproveUser(ctx, requester, &req)
	if err != nil {
		h.handleError(c, err, "Failed to update user")
		return
	}

	if err := h.cacheService.InvalidateUserStats(ctx, user.CompanyCode); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate user statistics")
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User " + req.Action + "d successfully",
		"role":    user.Role,
	})
}

func (h *handler) handleError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, models.ErrUserNotFound):
		h.sendErrorResponse(c, http.StatusNotFound, "User not found", "No user found with the provided ID")
	case errors.Is(err, models.ErrInvalidAction):
		h.sendErrorResponse(c, http.StatusBadRequest, "Invalid action", "Action must be approve or reject")
	case errors.Is(err, models.ErrInvalidParams):
		h.sendErrorResponse(c, http.StatusBadRequest, "Invalid parameters", err.Error())
	case errors.Is(err, models.ErrForbidden):
		h.sendErrorResponse(c, http.StatusForbidden, "Access forbidden", err.Error())
	default:
		logrus.WithError(err).Error(fallback)
		h.sendErrorResponse(c, http.StatusInternalServerError, fallback, err.Error())
	}
}

func (h *handler) sendErrorResponse(c *gin.Context, statusCode int, error, message string) {
	c.JSON(statusCode, gin.H{
		"error":   error,
		"success": false,
		"message": message,
	})
}
