package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbtale/lease-sentinel/internal/sweep"
)

type stubRunner struct {
	rep   sweep.Report
	err   error
	calls int
}

func (s *stubRunner) Run(ctx context.Context) (sweep.Report, error) {
	s.calls++
	return s.rep, s.err
}

type stubLocker struct {
	held     bool
	released bool
}

func (s *stubLocker) TryLock(ctx context.Context) (func(), bool) {
	if s.held {
		return nil, false
	}
	return func() { s.released = true }, true
}

func newDispatchCtx(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/cron/dispatch", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestDispatchHandlerReportsProcessed(t *testing.T) {
	runner := &stubRunner{rep: sweep.Report{Processed: 3, Fired: 2, Failed: 1}}
	locker := &stubLocker{}
	c, rec := newDispatchCtx(t)

	require.NoError(t, dispatchHandler(runner, locker)(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"processed": 3}`, rec.Body.String())
	assert.Equal(t, 1, runner.calls)
	assert.True(t, locker.released)
}

func TestDispatchHandlerLockHeld(t *testing.T) {
	runner := &stubRunner{}
	locker := &stubLocker{held: true}
	c, rec := newDispatchCtx(t)

	require.NoError(t, dispatchHandler(runner, locker)(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 0, runner.calls, "a held lock means no sweep runs")
}

func TestDispatchHandlerSweepError(t *testing.T) {
	runner := &stubRunner{err: errors.New("select due sentinels: connection refused")}
	locker := &stubLocker{}
	c, rec := newDispatchCtx(t)

	require.NoError(t, dispatchHandler(runner, locker)(c))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, locker.released, "lock released even when the sweep fails")
}
