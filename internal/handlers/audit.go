package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/BradenHooton/inkwell/internal/models"
	pkghttp "github.com/BradenHooton/inkwell/pkg/http"
)

// AuditTrailInterface reads the account audit trail.
type AuditTrailInterface interface {
	AccountTrail(ctx context.Context, accountID string, limit, offset int) ([]*models.AuditLog, error)
}

// AuditHandler serves GET /admin/users/{id}/audit
type AuditHandler struct {
	service AuditTrailInterface
}

func NewAuditHandler(service AuditTrailInterface) *AuditHandler {
	return &AuditHandler{service: service}
}

// AuditLogResponse represents an audit log entry in HTTP response
type AuditLogResponse struct {
	ID            string                 `json:"id"`
	EventType     string                 `json:"eventType"`
	ActorID       *string                `json:"actorId,omitempty"`
	TargetID      *string                `json:"targetId,omitempty"`
	Success       bool                   `json:"success"`
	FailureReason *string                `json:"failureReason,omitempty"`
	IPAddress     *string                `json:"ipAddress,omitempty"`
	UserAgent     *string                `json:"userAgent,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
}

type AuditTrailResponse struct {
	Logs   []*AuditLogResponse `json:"logs"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

// GetAccountTrail retrieves the audit trail of one account, newest first.
func (h *AuditHandler) GetAccountTrail(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDParam(w, r)
	if !ok {
		return
	}

	limit := 50
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	offset := queryInt(r, "offset")

	logs, err := h.service.AccountTrail(r.Context(), accountID, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := make([]*AuditLogResponse, len(logs))
	for i, log := range logs {
		response[i] = auditLogToResponse(log)
	}

	pkghttp.WriteJSON(w, http.StatusOK, AuditTrailResponse{
		Logs:   response,
		Limit:  limit,
		Offset: offset,
	})
}

func auditLogToResponse(log *models.AuditLog) *AuditLogResponse {
	return &AuditLogResponse{
		ID:            log.ID,
		EventType:     log.EventType,
		ActorID:       log.ActorID,
		TargetID:      log.TargetID,
		Success:       log.Success,
		FailureReason: log.FailureReason,
		IPAddress:     log.IPAddress,
		UserAgent:     log.UserAgent,
		Metadata:      log.Metadata,
		CreatedAt:     log.CreatedAt,
	}
}
