package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbtale/lease-sentinel/internal/model"
	"github.com/kbtale/lease-sentinel/internal/service/sentinel"
	"github.com/kbtale/lease-sentinel/internal/window"
)

type stubSentinelSvc struct {
	created   *model.SentinelRecord
	createErr error
	gotCreate sentinel.CreateInput

	listed   []model.SentinelRecord
	listErr  error
	gotOwner string
	gotLimit int

	upcoming  []model.SentinelRecord
	gotWindow int

	trail    []model.DispatchLogEntry
	trailErr error
}

func (s *stubSentinelSvc) Create(ctx context.Context, in sentinel.CreateInput) (*model.SentinelRecord, error) {
	s.gotCreate = in
	return s.created, s.createErr
}

func (s *stubSentinelSvc) List(ctx context.Context, owner string, status model.SentinelStatus, limit, offset int) ([]model.SentinelRecord, error) {
	s.gotOwner = owner
	s.gotLimit = limit
	return s.listed, s.listErr
}

func (s *stubSentinelSvc) Upcoming(ctx context.Context, owner string, windowDays int) ([]model.SentinelRecord, error) {
	s.gotOwner = owner
	s.gotWindow = windowDays
	return s.upcoming, nil
}

func (s *stubSentinelSvc) AuditTrail(ctx context.Context, owner, id string) ([]model.DispatchLogEntry, error) {
	s.gotOwner = owner
	return s.trail, s.trailErr
}

func newOwnerCtx(t *testing.T, method, target, body, owner string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if owner != "" {
		c.Set("owner_id", owner)
	}
	return c, rec
}

func demoRecord() *model.SentinelRecord {
	return &model.SentinelRecord{
		ID:                 "01HXAMPLE0000000000000001",
		Owner:              "acme",
		EventName:          "Office lease expires",
		TriggerDate:        window.MustParse("2025-09-01"),
		NotificationMethod: model.MethodWebhook,
		NotificationTarget: "https://hooks.example.com/acme",
		Status:             model.StatusPending,
	}
}

func TestCreateSentinelHandler(t *testing.T) {
	svc := &stubSentinelSvc{created: demoRecord()}
	body := `{
		"event_name": "Office lease expires",
		"trigger_date": "2025-09-01",
		"original_text": "lease runs out sept 1",
		"notification_target": "https://hooks.example.com/acme"
	}`
	c, rec := newOwnerCtx(t, http.MethodPost, "/v1/sentinels", body, "acme")

	require.NoError(t, createSentinelHandler(svc)(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "acme", svc.gotCreate.Owner, "owner comes from auth, not the body")
	assert.Equal(t, "2025-09-01", svc.gotCreate.TriggerDate)

	var got model.SentinelRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "01HXAMPLE0000000000000001", got.ID)
	assert.Equal(t, model.StatusPending, got.Status)
}

func TestCreateSentinelHandlerValidation(t *testing.T) {
	svc := &stubSentinelSvc{createErr: fmt.Errorf("%w: event name required", sentinel.ErrValidation)}
	c, rec := newOwnerCtx(t, http.MethodPost, "/v1/sentinels", `{"trigger_date":"2025-09-01"}`, "acme")

	require.NoError(t, createSentinelHandler(svc)(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "event name required")
}

func TestCreateSentinelHandlerNoOwner(t *testing.T) {
	svc := &stubSentinelSvc{created: demoRecord()}
	c, rec := newOwnerCtx(t, http.MethodPost, "/v1/sentinels", `{}`, "")

	require.NoError(t, createSentinelHandler(svc)(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateSentinelHandlerMalformedBody(t *testing.T) {
	svc := &stubSentinelSvc{created: demoRecord()}
	c, rec := newOwnerCtx(t, http.MethodPost, "/v1/sentinels", `{"event_name":`, "acme")

	require.NoError(t, createSentinelHandler(svc)(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListSentinelsHandler(t *testing.T) {
	svc := &stubSentinelSvc{listed: []model.SentinelRecord{*demoRecord()}}
	c, rec := newOwnerCtx(t, http.MethodGet, "/v1/sentinels?limit=10", "", "acme")

	require.NoError(t, listSentinelsHandler(svc)(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acme", svc.gotOwner)
	assert.Equal(t, 10, svc.gotLimit)

	var envelope struct {
		Count   int                    `json:"count"`
		Results []model.SentinelRecord `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Count)
	require.Len(t, envelope.Results, 1)
	assert.Equal(t, "01HXAMPLE0000000000000001", envelope.Results[0].ID)
}

func TestListSentinelsHandlerIgnoresBadPaging(t *testing.T) {
	svc := &stubSentinelSvc{}
	c, rec := newOwnerCtx(t, http.MethodGet, "/v1/sentinels?limit=99999&offset=-4", "", "acme")

	require.NoError(t, listSentinelsHandler(svc)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, svc.gotLimit, "out-of-range limit falls back to default")
}

func TestUpcomingSentinelsHandler(t *testing.T) {
	svc := &stubSentinelSvc{upcoming: []model.SentinelRecord{*demoRecord()}}
	c, rec := newOwnerCtx(t, http.MethodGet, "/v1/sentinels/upcoming?window=45", "", "acme")

	require.NoError(t, upcomingSentinelsHandler(svc)(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 45, svc.gotWindow)
}

func TestUpcomingSentinelsHandlerRejectsBadWindow(t *testing.T) {
	for _, q := range []string{"window=-1", "window=abc"} {
		svc := &stubSentinelSvc{}
		c, rec := newOwnerCtx(t, http.MethodGet, "/v1/sentinels/upcoming?"+q, "", "acme")

		require.NoError(t, upcomingSentinelsHandler(svc)(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "query %q", q)
	}
}

func TestSentinelLogHandler(t *testing.T) {
	svc := &stubSentinelSvc{trail: []model.DispatchLogEntry{
		{ID: "l1", SentinelID: "01X", Outcome: model.OutcomeSuccess},
	}}
	c, rec := newOwnerCtx(t, http.MethodGet, "/v1/sentinels/01X/log", "", "acme")
	c.SetParamNames("id")
	c.SetParamValues("01X")

	require.NoError(t, sentinelLogHandler(svc)(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
}

func TestSentinelLogHandlerNotFound(t *testing.T) {
	svc := &stubSentinelSvc{trailErr: sentinel.ErrNotFound}
	c, rec := newOwnerCtx(t, http.MethodGet, "/v1/sentinels/01X/log", "", "acme")
	c.SetParamNames("id")
	c.SetParamValues("01X")

	require.NoError(t, sentinelLogHandler(svc)(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
