package uptime

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rishipandey14/HRMS-Backend/src/internal/config"
	"github.com/rishipandey14/HRMS-Backend/src/internal/identity"
	"github.com/rishipandey14/HRMS-Backend/src/internal/models"
	"github.com/rishipandey14/HRMS-Backend/src/internal/pagination"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler interface {
	GetUptimes(c *gin.Context)
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

func (h *handler) GetUptimes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
	defer cancel()

	requester, ok := identity.FromContext(c)
	if !ok {
		h.sendErrorResponse(c, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}

	week := c.Query("week")
	if week == "" {
		week = c.Param("week")
	}
	companyID := c.Query("companyId")
	if companyID == "" {
		companyID = c.Param("companyId")
	}

	q := Query{
		Requester: requester,
		Role:      identity.RoleFromContext(c),
		UserID:    c.Query("userId"),
		CompanyID: companyID,
		Week:      week,
		SortField: c.DefaultQuery("sort", "week"),
		Order:     c.DefaultQuery("order", "desc"),
		All:       strings.EqualFold(c.Query("all"), "true"),
		Page:      pagination.Parse(c.Query("page"), c.Query("limit"), h.config.Pagination),
	}

	logrus.WithFields(logrus.Fields{
		"requester":  requester.Key(),
		"role":       q.Role,
		"week":       q.Week,
		"company_id": q.CompanyID,
		"user_id":    q.UserID,
		"list":       q.WantsList(),
	}).Info("GetUptimes request received")

	if q.WantsList() {
		result, err := h.service.List(ctx, q)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	uptime, err := h.service.Latest(ctx, q)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, uptime)
}

func (h *handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrUptimeNotFound):
		h.sendErrorResponse(c, http.StatusNotFound, err.Error(), "No uptime matches the requested filters")
	case errors.Is(err, models.ErrForbidden):
		h.sendErrorResponse(c, http.StatusForbidden, err.Error(), "Admins can only read uptime of their own company")
	case errors.Is(err, models.ErrInvalidWeek), errors.Is(err, models.ErrInvalidParams):
		h.sendErrorResponse(c, http.StatusBadRequest, "Invalid query", err.Error())
	default:
		logrus.WithError(err).Error("Failed to fetch uptimes")
		h.sendErrorResponse(c, http.StatusInternalServerError, "Error fetching uptimes", err.Error())
	}
}

func (h *handler) sendErrorResponse(c *gin.Context, statusCode int, error, message string) {
	c.JSON(statusCode, gin.H{
		"error":   error,
		"message": message,
	})
}
