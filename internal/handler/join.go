package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-waitlist/internal/repository"
	"github.com/iliyamo/live-waitlist/internal/service"
)

// JoinHandler exposes the entrant-facing admission endpoint. It is
// deliberately anonymous: nobody signs in to join the queue, the
// session access code is the whole gate.
type JoinHandler struct {
	Admission *service.Admission
}

func NewJoinHandler(a *service.Admission) *JoinHandler {
	return &JoinHandler{Admission: a}
}

type joinReq struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Email  string `json:"email"`
	Notify string `json:"notify"`
	Code   string `json:"code"`
}

type joinResp struct {
	ID              string `json:"id"`
	Position        int    `json:"position,omitempty"`
	PositionPending bool   `json:"position_pending,omitempty"`
}

// Join handles POST /v1/queue/join.
//
// Responses:
//
//	201 {id, position}               admitted, rank resolved
//	201 {id, position_pending:true}  admitted, rank not yet visible
//	400 {error}                      field validation failed
//	403 {error}                      code missing or wrong (one message for both)
//	503 {error}                      verification or storage unavailable
func (h *JoinHandler) Join(c echo.Context) error {
	var req joinReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	n := repository.NewEntry{
		Name:   strings.TrimSpace(req.Name),
		Notify: strings.TrimSpace(req.Notify),
	}
	if p := strings.TrimSpace(req.Phone); p != "" {
		n.Phone = &p
	}
	if e := strings.TrimSpace(req.Email); e != "" {
		n.Email = &e
	}

	// The position resolver retries for up to ~1.5s on top of the
	// writes, so this budget is wider than the usual 5 seconds.
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Admission.Join(ctx, service.JoinRequest{Entry: n, Code: req.Code})
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrAccessDenied):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access code required or incorrect"})
	case errors.Is(err, service.ErrVerifyUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "could not verify access code, try again"})
	default:
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "could not join the queue, try again"})
	}

	out := joinResp{ID: res.Entry.ID}
	if res.Pending {
		out.PositionPending = true
	} else {
		out.Position = res.Position
	}
	return c.JSON(http.StatusCreated, out)
}
