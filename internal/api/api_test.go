package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaponics-lab/aquamon/db"
	"github.com/aquaponics-lab/aquamon/internal/model"
	"github.com/aquaponics-lab/aquamon/internal/poller"
	"github.com/aquaponics-lab/aquamon/internal/render"
)

type stubController struct {
	snapshot    poller.Snapshot
	refreshed   int
	autoRefresh []bool
	dispatched  []model.CommandRequest
}

func (c *stubController) Snapshot() poller.Snapshot { return c.snapshot }

func (c *stubController) Refresh() { c.refreshed++ }

func (c *stubController) SetAutoRefresh(enabled bool) {
	c.autoRefresh = append(c.autoRefresh, enabled)
}

func (c *stubController) Dispatch(cmd model.CommandRequest) {
	c.dispatched = append(c.dispatched, cmd)
}

func newTestServer(t *testing.T) (*Server, *stubController) {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	controller := &stubController{
		snapshot: poller.Snapshot{
			Presentation:  render.Initial(),
			AutoRefresh:   true,
			LastCompleted: time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
		},
	}
	return NewServer(conn, controller), controller
}

func TestHandleStatus(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	server.handleStatus(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp StatusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.AutoRefresh)
	assert.False(t, resp.FailureSimulated)
	assert.Equal(t, "2026-01-05T10:00:00Z", resp.LastCompleted)
}

func TestHandleStatusMethodNotAllowed(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/status", nil)
	w := httptest.NewRecorder()
	server.handleStatus(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandleRefresh(t *testing.T) {
	server, controller := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	w := httptest.NewRecorder()
	server.handleRefresh(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, controller.refreshed)
}

func TestHandleAutoRefreshPersists(t *testing.T) {
	server, controller := newTestServer(t)

	body := bytes.NewBufferString(`{"enabled": false}`)
	req := httptest.NewRequest(http.MethodPut, "/api/autorefresh", body)
	w := httptest.NewRecorder()
	server.handleAutoRefresh(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []bool{false}, controller.autoRefresh)

	settings, err := db.GetSettings(server.db)
	require.NoError(t, err)
	assert.False(t, settings.AutoRefresh)
}

func TestHandleAutoRefreshPersistFailureLeavesRuntimeUnchanged(t *testing.T) {
	server, controller := newTestServer(t)
	require.NoError(t, server.db.Close())

	body := bytes.NewBufferString(`{"enabled": false}`)
	req := httptest.NewRequest(http.MethodPut, "/api/autorefresh", body)
	w := httptest.NewRecorder()
	server.handleAutoRefresh(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, controller.autoRefresh)
}

func TestHandleAutoRefreshInvalidJSON(t *testing.T) {
	server, controller := newTestServer(t)

	req := httptest.NewRequest(http.MethodPut, "/api/autorefresh", bytes.NewBufferString(`{nope`))
	w := httptest.NewRecorder()
	server.handleAutoRefresh(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, controller.autoRefresh)
}

func TestHandlePumpDefaultsToToggle(t *testing.T) {
	server, controller := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/control/pump", nil)
	w := httptest.NewRecorder()
	server.handlePump(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, controller.dispatched, 1)
	assert.Equal(t, model.TargetPump, controller.dispatched[0].Target)
	assert.Equal(t, model.StateToggle, controller.dispatched[0].State)
}

func TestHandleLightExplicitState(t *testing.T) {
	server, controller := newTestServer(t)

	body := bytes.NewBufferString(`{"state": "on"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/control/light", body)
	w := httptest.NewRecorder()
	server.handleLight(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, controller.dispatched, 1)
	assert.Equal(t, model.TargetLight, controller.dispatched[0].Target)
	assert.Equal(t, model.StateOn, controller.dispatched[0].State)
}

func TestHandlePumpInvalidState(t *testing.T) {
	server, controller := newTestServer(t)

	body := bytes.NewBufferString(`{"state": "sideways"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/control/pump", body)
	w := httptest.NewRecorder()
	server.handlePump(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, controller.dispatched)
}

func TestHandleSimulateFailureFlipsLatch(t *testing.T) {
	server, controller := newTestServer(t)

	// First call: latch starts false, flips to true.
	req := httptest.NewRequest(http.MethodPost, "/api/control/simulate-failure", nil)
	w := httptest.NewRecorder()
	server.handleSimulateFailure(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp SimulateFailureResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Enabled)

	require.Len(t, controller.dispatched, 1)
	assert.Equal(t, model.TargetFailureSim, controller.dispatched[0].Target)
	assert.True(t, controller.dispatched[0].Enable)

	// Second call flips back to false.
	w = httptest.NewRecorder()
	server.handleSimulateFailure(w, httptest.NewRequest(http.MethodPost, "/api/control/simulate-failure", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.Enabled)

	settings, err := db.GetSettings(server.db)
	require.NoError(t, err)
	assert.False(t, settings.FailureSimulated)
}

func TestHandleCommands(t *testing.T) {
	server, _ := newTestServer(t)

	err := db.RecordCommand(server.db, model.CommandRequest{Target: model.TargetPump, State: model.StateToggle}, true)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/commands", nil)
	w := httptest.NewRecorder()
	server.handleCommands(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var records []db.CommandRecord
	require.NoError(t, json.NewDecoder(w.Body).Decode(&records))
	require.Len(t, records, 1)
	assert.Equal(t, "pump", records[0].Target)
	assert.Equal(t, "toggle", records[0].State)
	assert.True(t, records[0].Succeeded)
}

func TestIsValidCommandState(t *testing.T) {
	assert.True(t, isValidCommandState(model.StateToggle))
	assert.True(t, isValidCommandState(model.StateOn))
	assert.True(t, isValidCommandState(model.StateOff))
	assert.False(t, isValidCommandState(model.CommandState("reverse")))
}
