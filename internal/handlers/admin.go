package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Shresth17/SahayAI/internal/models"
	"github.com/Shresth17/SahayAI/internal/repository"
	"github.com/Shresth17/SahayAI/internal/service"
)

func (h HandlerSet) AdminListGrievances(c *gin.Context) {
	limit := 50
	offset := 0

	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			offset = (v - 1) * limit
		}
	}

	filter := repository.ListFilter{
		Status:   models.GrievanceStatus(c.Query("status")),
		Category: c.Query("category"),
	}

	grievances, err := h.grievances.ListAll(c.Request.Context(), filter, limit, offset)
	if err != nil {
		h.internalError(c, err, "admin list grievances failed")
		return
	}

	items := make([]grievanceResponse, 0, len(grievances))
	for _, g := range grievances {
		items = append(items, newGrievanceResponse(g))
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

type triageRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h HandlerSet) AdminTriageGrievance(c *gin.Context) {
	var req triageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	err := h.grievances.Triage(c.Request.Context(), c.Param("id"), models.GrievanceStatus(req.Status))
	if err != nil {
		switch err {
		case service.ErrGrievanceNotFound:
			c.JSON(http.StatusNotFound, gin.H{"message": "Grievance not found"})
		case service.ErrInvalidTransition:
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status"})
		default:
			h.internalError(c, err, "triage failed")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
}
