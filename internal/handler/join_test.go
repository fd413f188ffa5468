package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-waitlist/internal/model"
	"github.com/iliyamo/live-waitlist/internal/repository"
	"github.com/iliyamo/live-waitlist/internal/service"
)

type stubCodes struct {
	code string
	err  error
}

func (s *stubCodes) Current(ctx context.Context) (string, error) { return s.code, s.err }

type stubCreator struct {
	entry model.QueueEntry
	err   error
}

func (s *stubCreator) Create(ctx context.Context, n repository.NewEntry) (model.QueueEntry, error) {
	if s.err != nil {
		return model.QueueEntry{}, s.err
	}
	if err := n.Validate(); err != nil {
		return model.QueueEntry{}, err
	}
	return s.entry, nil
}

type stubMirror struct{}

func (stubMirror) UpdateStatus(ctx context.Context, id, status string) (int64, error) { return 1, nil }
func (stubMirror) Insert(ctx context.Context, id, name, status string) error          { return nil }
func (stubMirror) Delete(ctx context.Context, id string) error                        { return nil }

type stubWaiting struct{ entries []model.QueueEntry }

func (s *stubWaiting) ListByStatus(ctx context.Context, status string) ([]model.QueueEntry, error) {
	return s.entries, nil
}

func newJoinHandler(codes *stubCodes, creator *stubCreator, visible []model.QueueEntry) *JoinHandler {
	return NewJoinHandler(&service.Admission{
		Gate:    service.NewAccessGate(codes),
		Entries: creator,
		Mirror:  service.NewMirrorSynchronizer(stubMirror{}),
		Position: &service.PositionResolver{
			Entries:  &stubWaiting{entries: visible},
			Attempts: 2,
			Delay:    time.Millisecond,
		},
	})
}

func doJoin(t *testing.T, h *JoinHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/queue/join", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Join(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestJoinEndpointAdmits(t *testing.T) {
	creator := &stubCreator{entry: model.QueueEntry{
		ID: "e1", Name: "Dana", Notify: model.NotifySMS, Status: model.StatusWaiting,
	}}
	h := newJoinHandler(&stubCodes{code: "OPEN2026"}, creator,
		[]model.QueueEntry{{ID: "e1", Status: model.StatusWaiting}})

	rec := doJoin(t, h, `{"name":"Dana","phone":"+15550100","notify":"sms","code":"OPEN2026"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ID       string `json:"id"`
		Position int    `json:"position"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.ID != "e1" || resp.Position != 1 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestJoinEndpointReportsPendingPosition(t *testing.T) {
	creator := &stubCreator{entry: model.QueueEntry{
		ID: "e9", Name: "Dana", Notify: model.NotifyBoth, Status: model.StatusWaiting,
	}}
	h := newJoinHandler(&stubCodes{code: "OPEN2026"}, creator, nil)

	rec := doJoin(t, h, `{"name":"Dana","email":"dana@example.com","notify":"both","code":"OPEN2026"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"position_pending":true`) {
		t.Errorf("body = %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), `"position":`) {
		t.Errorf("pending response still carries a position: %s", rec.Body.String())
	}
}

func TestJoinEndpointValidationMessageVerbatim(t *testing.T) {
	creator := &stubCreator{entry: model.QueueEntry{ID: "e1"}}
	h := newJoinHandler(&stubCodes{code: "OPEN2026"}, creator, nil)

	rec := doJoin(t, h, `{"name":"Dana","notify":"sms","code":"OPEN2026"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "add a phone number for SMS") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestJoinEndpointDeniesWithoutDistinguishing(t *testing.T) {
	creator := &stubCreator{entry: model.QueueEntry{ID: "e1"}}
	h := newJoinHandler(&stubCodes{code: "OPEN2026"}, creator, nil)

	missing := doJoin(t, h, `{"name":"Dana","phone":"+15550100","notify":"sms"}`)
	wrong := doJoin(t, h, `{"name":"Dana","phone":"+15550100","notify":"sms","code":"nope"}`)

	if missing.Code != http.StatusForbidden || wrong.Code != http.StatusForbidden {
		t.Fatalf("statuses = %d / %d, want 403 for both", missing.Code, wrong.Code)
	}
	if missing.Body.String() != wrong.Body.String() {
		t.Errorf("missing and wrong code produce different bodies: %s vs %s",
			missing.Body.String(), wrong.Body.String())
	}
}

func TestJoinEndpointFailsClosedWhenVerifyDown(t *testing.T) {
	creator := &stubCreator{entry: model.QueueEntry{ID: "e1"}}
	h := newJoinHandler(&stubCodes{err: errors.New("down")}, creator, nil)

	rec := doJoin(t, h, `{"name":"Dana","phone":"+15550100","notify":"sms","code":"OPEN2026"}`)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestJoinEndpointStoreFailure(t *testing.T) {
	creator := &stubCreator{err: errors.New("bad connection")}
	h := newJoinHandler(&stubCodes{code: "OPEN2026"}, creator, nil)

	rec := doJoin(t, h, `{"name":"Dana","phone":"+15550100","notify":"sms","code":"OPEN2026"}`)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
