package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-waitlist/internal/model"
	"github.com/iliyamo/live-waitlist/internal/service"
)

// MirrorLister reads the public mirror's rows for one status.
type MirrorLister interface {
	ListByStatus(ctx context.Context, status string) ([]model.PublicSummary, error)
}

// QueueViewHandler serves the anonymous read surface: the redacted
// waiting list and the per-entry position lookup. Both read only the
// public mirror or the waiting rank, never contact fields.
type QueueViewHandler struct {
	Mirror   MirrorLister
	Resolver *service.PositionResolver
}

func NewQueueViewHandler(m MirrorLister, p *service.PositionResolver) *QueueViewHandler {
	return &QueueViewHandler{Mirror: m, Resolver: p}
}

type queueRow struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// List handles GET /v1/queue: the current waiting set from the public
// mirror, oldest first. The response shape carries no phone, email or
// return rows regardless of who asks.
func (h *QueueViewHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	waiting, err := h.Mirror.ListByStatus(ctx, model.StatusWaiting)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	rows := make([]queueRow, 0, len(waiting))
	for _, s := range waiting {
		rows = append(rows, queueRow{ID: s.ID, Name: s.Name, CreatedAt: s.CreatedAt})
	}
	return c.JSON(http.StatusOK, echo.Map{"waiting": rows})
}

// Position handles GET /v1/queue/position/:id. Resolution retries
// briefly; when the entry is not in the waiting set by then, position
// is null and the caller should treat it as pending.
func (h *QueueViewHandler) Position(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	pos, found := h.Resolver.Resolve(ctx, id)
	if !found {
		return c.JSON(http.StatusOK, echo.Map{"id": id, "position": nil, "pending": true})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "position": pos})
}
