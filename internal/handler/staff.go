package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-waitlist/internal/middleware"
	"github.com/iliyamo/live-waitlist/internal/model"
	"github.com/iliyamo/live-waitlist/internal/repository"
	"github.com/iliyamo/live-waitlist/internal/service"
)

// StaffHandler exposes the privileged surface: full queue listing,
// the three entry actions and access code rotation. Routes sit behind
// JWT middleware, but the allowlist is the authority: every request
// re-checks the caller's email against admin_emails, so a revoked
// staff member is cut off mid-session even with a live token.
type StaffHandler struct {
	Executor *service.AdminActionExecutor
	Entries  *repository.EntryRepo
	Admins   *repository.AdminRepo
	Codes    *repository.AccessCodeRepo
}

func NewStaffHandler(ex *service.AdminActionExecutor, e *repository.EntryRepo, a *repository.AdminRepo, c *repository.AccessCodeRepo) *StaffHandler {
	return &StaffHandler{Executor: ex, Entries: e, Admins: a, Codes: c}
}

// requireStaff re-checks the allowlist for read endpoints that do not
// go through the executor. Returns "" after writing the response when
// the caller is not allowed.
func (h *StaffHandler) requireStaff(ctx context.Context, c echo.Context) (string, bool) {
	email := middleware.CallerEmail(c)
	if email == "" {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		return "", false
	}
	ok, err := h.Admins.IsAdmin(ctx, email)
	if err != nil {
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "allowlist check failed"})
		return "", false
	}
	if !ok {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "staff access required"})
		return "", false
	}
	return email, true
}

type staffRow struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Phone     *string    `json:"phone"`
	Email     *string    `json:"email"`
	Notify    string     `json:"notify"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	ServedAt  *time.Time `json:"served_at,omitempty"`
	ReturnAt  *time.Time `json:"return_at,omitempty"`
}

func toStaffRows(entries []model.QueueEntry) []staffRow {
	rows := make([]staffRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, staffRow{
			ID:        e.ID,
			Name:      e.Name,
			Phone:     e.Phone,
			Email:     e.Email,
			Notify:    e.Notify,
			Status:    e.Status,
			CreatedAt: e.CreatedAt,
			ServedAt:  e.ServedAt,
			ReturnAt:  e.ReturnAt,
		})
	}
	return rows
}

// List handles GET /v1/staff/entries: the authoritative waiting and
// return sets, full rows including contact fields.
func (h *StaffHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, ok := h.requireStaff(ctx, c); !ok {
		return nil
	}

	waiting, err := h.Entries.ListByStatus(ctx, model.StatusWaiting)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	returned, err := h.Entries.ListByStatus(ctx, model.StatusReturn)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"waiting": toStaffRows(waiting),
		"return":  toStaffRows(returned),
	})
}

// Serve handles POST /v1/staff/entries/:id/serve.
func (h *StaffHandler) Serve(c echo.Context) error {
	return h.action(c, h.Executor.Serve)
}

// Return handles POST /v1/staff/entries/:id/return.
func (h *StaffHandler) Return(c echo.Context) error {
	return h.action(c, h.Executor.MarkReturn)
}

// Remove handles DELETE /v1/staff/entries/:id.
func (h *StaffHandler) Remove(c echo.Context) error {
	return h.action(c, h.Executor.Remove)
}

func (h *StaffHandler) action(c echo.Context, fn func(ctx context.Context, actorEmail, id string) error) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err := fn(ctx, middleware.CallerEmail(c), id)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"id": id, "ok": true})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "staff access required"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "entry not found"})
	case errors.Is(err, repository.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "entry is not in a state that allows this action"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "action failed"})
	}
}

type accessCodeReq struct {
	Code string `json:"code"`
}

// SetAccessCode handles PUT /v1/staff/access-code. An empty code is
// allowed and closes the queue: with no code set, no submission can
// pass the gate.
func (h *StaffHandler) SetAccessCode(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, ok := h.requireStaff(ctx, c); !ok {
		return nil
	}

	var req accessCodeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Codes.Set(ctx, strings.TrimSpace(req.Code)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// GetAccessCode handles GET /v1/staff/access-code so staff can read
// the current code back before sharing it.
func (h *StaffHandler) GetAccessCode(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, ok := h.requireStaff(ctx, c); !ok {
		return nil
	}

	code, err := h.Codes.Current(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"code": code})
}
