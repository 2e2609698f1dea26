package handlers

import (
	"net/http"
	"strconv"

	auditRepo "kymaclub/database/repository/audit"
	"kymaclub/models"
	"kymaclub/utils"

	"github.com/gin-gonic/gin"
)

const defaultAuditLimit = 50

// AuditHandler serves the admin audit-log listing.
type AuditHandler struct {
	Audit auditRepo.AuditRepository
}

func NewAuditHandler(audit auditRepo.AuditRepository) *AuditHandler {
	return &AuditHandler{Audit: audit}
}

// ListAuditLogHandler lists recent audit entries, optionally filtered by
// entity or action.
func (h *AuditHandler) ListAuditLogHandler(c *gin.Context) {
	limit := int64(defaultAuditLimit)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			utils.JSONFieldError(c, http.StatusBadRequest, "invalidLimit", "limit",
				"limit must be a positive integer")
			return
		}
		limit = parsed
	}

	ctx := c.Request.Context()
	entityType := c.Query("entity_type")
	entityID := c.Query("entity_id")
	action := c.Query("action")

	var (
		entries []models.AuditLogEntry
		err     error
	)
	switch {
	case entityType != "" && entityID != "":
		entries, err = h.Audit.ListByEntity(ctx, entityType, entityID, limit)
	case action != "":
		entries, err = h.Audit.ListByAction(ctx, models.AuditAction(action), limit)
	default:
		entries, err = h.Audit.ListRecent(ctx, limit)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if entries == nil {
		entries = []models.AuditLogEntry{}
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
