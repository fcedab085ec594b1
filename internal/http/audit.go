package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Neutralizer/BookManipulator/internal/audit"
	auditrepo "github.com/Neutralizer/BookManipulator/internal/database/audit"
	"github.com/Neutralizer/BookManipulator/internal/entities"
)

const (
	defaultAuditLimit = 25
	maxAuditLimit     = 200
)

type AuditController struct {
	auditService *audit.Service
}

func NewAuditController(auditService *audit.Service) *AuditController {
	return &AuditController{
		auditService: auditService,
	}
}

// ListEvents returns audit events, newest first.
// GET /library/audit?type=&username=&limit=&offset=
func (ac *AuditController) ListEvents(c *gin.Context) {
	limit, ok := parseIntQuery(c, "limit", defaultAuditLimit)
	if !ok {
		return
	}
	if limit == 0 || limit > maxAuditLimit {
		limit = defaultAuditLimit
	}
	offset, ok := parseIntQuery(c, "offset", 0)
	if !ok {
		return
	}

	eventType := entities.AuditEventType(c.Query("type"))
	switch eventType {
	case "", entities.AuditEventBook, entities.AuditEventUser, entities.AuditEventAuth:
	default:
		respondBadRequest(c, "invalid type")
		return
	}

	events, total, err := ac.auditService.GetEvents(auditrepo.Filter{
		Username:  c.Query("username"),
		EventType: eventType,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    events,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(events)) < total,
	})
}
