package handlers

import (
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shresth17/SahayAI/internal/middleware"
	"github.com/Shresth17/SahayAI/internal/models"
	"github.com/Shresth17/SahayAI/internal/service"
)

type grievanceResponse struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"userId"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Category           string    `json:"category,omitempty"`
	Status             string    `json:"status"`
	SpamFlag           bool      `json:"spamFlag"`
	SpamConfidence     *float64  `json:"spamConfidence,omitempty"`
	CategoryConfidence *float64  `json:"categoryConfidence,omitempty"`
	HasAttachment      bool      `json:"hasAttachment"`
	AttachmentURL      string    `json:"attachmentUrl,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func newGrievanceResponse(g models.Grievance) grievanceResponse {
	return grievanceResponse{
		ID:                 g.ID,
		UserID:             g.UserID,
		Title:              g.Title,
		Description:        g.Description,
		Category:           g.Category,
		Status:             string(g.Status),
		SpamFlag:           g.SpamFlag,
		SpamConfidence:     g.SpamConfidence,
		CategoryConfidence: g.CategoryConfidence,
		HasAttachment:      g.AttachmentKey != "",
		CreatedAt:          g.CreatedAt,
		UpdatedAt:          g.UpdatedAt,
	}
}

type fileGrievanceRequest struct {
	Title       string `json:"title" form:"title" binding:"required"`
	Description string `json:"description" form:"description" binding:"required,min=10"`
}

// FileGrievance accepts JSON or multipart form bodies. The multipart form
// may carry one "attachment" file.
func (h HandlerSet) FileGrievance(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthenticated"})
		return
	}

	var req fileGrievanceRequest
	var attachment multipart.File
	var header *multipart.FileHeader

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		if file, fh, err := c.Request.FormFile("attachment"); err == nil {
			attachment = file
			header = fh
			defer file.Close()
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
	}

	grievance, err := h.grievances.File(c.Request.Context(), service.FileInput{
		UserID:      claims.User.ID,
		Title:       req.Title,
		Description: req.Description,
		Attachment:  attachment,
		Header:      header,
	})
	if err != nil {
		if err == service.ErrUnsupportedContent {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Unsupported attachment type"})
			return
		}
		h.internalError(c, err, "file grievance failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"grievance": newGrievanceResponse(grievance)})
}

func (h HandlerSet) ListOwnGrievances(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthenticated"})
		return
	}

	grievances, err := h.grievances.ListOwn(c.Request.Context(), claims.User.ID)
	if err != nil {
		h.internalError(c, err, "list grievances failed")
		return
	}

	items := make([]grievanceResponse, 0, len(grievances))
	for _, g := range grievances {
		items = append(items, newGrievanceResponse(g))
	}

	c.JSON(http.StatusOK, gin.H{"grievances": items})
}

func (h HandlerSet) GetGrievance(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthenticated"})
		return
	}

	view, err := h.grievances.Get(c.Request.Context(), c.Param("id"), claims.User.ID, models.UserRole(claims.User.Role))
	if err != nil {
		switch err {
		case service.ErrGrievanceNotFound:
			c.JSON(http.StatusNotFound, gin.H{"message": "Grievance not found"})
		case service.ErrNotOwner:
			c.JSON(http.StatusForbidden, gin.H{"message": "forbidden"})
		default:
			h.internalError(c, err, "get grievance failed")
		}
		return
	}

	resp := newGrievanceResponse(view.Grievance)
	resp.AttachmentURL = view.AttachmentURL
	c.JSON(http.StatusOK, gin.H{"grievance": resp})
}
