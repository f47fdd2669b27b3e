package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/timberline/internal/config"
	"github.com/talgya/timberline/internal/entropy"
	"github.com/talgya/timberline/internal/game"
	"github.com/talgya/timberline/internal/persistence"
)

func newTestServer(t *testing.T, adminKey string) *httptest.Server {
	t.Helper()

	cfg, err := config.Default()
	require.NoError(t, err)

	db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	srv := &Server{
		Game:      game.New(cfg.Game, entropy.NewSeeded(1)),
		SessionID: "test-session",
		DB:        db,
		AdminKey:  adminKey,
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestStateEndpoint(t *testing.T) {
	ts := newTestServer(t, "")

	resp, err := http.Get(ts.URL + "/api/v1/state")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		SessionID string     `json:"session_id"`
		State     game.State `json:"state"`
		Target    float64    `json:"target"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "test-session", body.SessionID)
	assert.Equal(t, 1, body.State.Turn)
	assert.InDelta(t, body.State.Money*5, body.Target, 1e-6)
}

func TestHarvestAction(t *testing.T) {
	ts := newTestServer(t, "")

	resp := postJSON(t, ts.URL+"/api/v1/harvest", map[string]float64{"amount": 100})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body actionResponse
	decode(t, resp, &body)
	assert.Empty(t, body.Refusal)
	assert.InDelta(t, 100.0, body.Outcome.Applied, 1e-9)
	assert.InDelta(t, 100.0, body.State.RawInventory, 1e-9)
	require.NotEmpty(t, body.State.Log)
}

func TestNegativeAmountRejected(t *testing.T) {
	ts := newTestServer(t, "")
	resp := postJSON(t, ts.URL+"/api/v1/harvest", map[string]float64{"amount": -5})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdvanceAndRestart(t *testing.T) {
	ts := newTestServer(t, "")

	resp := postJSON(t, ts.URL+"/api/v1/advance", struct{}{})
	var body actionResponse
	decode(t, resp, &body)
	assert.Equal(t, 2, body.State.Turn)

	resp = postJSON(t, ts.URL+"/api/v1/restart", struct{}{})
	decode(t, resp, &body)
	assert.Equal(t, 1, body.State.Turn)
}

func TestRefusalIsReportedNotErrored(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Game.InitialMoney = 5
	cfg.Game.HarvestCostPerTon = 10

	srv := &Server{Game: game.New(cfg.Game, entropy.NewSeeded(1))}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	resp := postJSON(t, ts.URL+"/api/v1/harvest", map[string]float64{"amount": 1000})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body actionResponse
	decode(t, resp, &body)
	assert.Equal(t, game.ErrInsufficientFunds.Error(), body.Refusal)
	assert.Zero(t, body.Outcome.Applied)
	assert.InDelta(t, 5.0, body.State.Money, 1e-9)
}

func TestBearerGuard(t *testing.T) {
	ts := newTestServer(t, "sekrit")

	// Mutations without the token are rejected.
	resp := postJSON(t, ts.URL+"/api/v1/harvest", map[string]float64{"amount": 10})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Observation stays open.
	getResp, err := http.Get(ts.URL + "/api/v1/state")
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusOK, getResp.StatusCode)

	// With the token the mutation goes through.
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/harvest", bytes.NewReader([]byte(`{"amount":10}`)))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer sekrit")
	authResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer authResp.Body.Close()
	assert.Equal(t, http.StatusOK, authResp.StatusCode)
}

func TestBatchRunEndpoints(t *testing.T) {
	ts := newTestServer(t, "")

	resp := postJSON(t, ts.URL+"/api/v1/run", map[string]any{"periods": 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var runBody struct {
		ID      string `json:"id"`
		Summary struct {
			Periods int `json:"periods"`
		} `json:"summary"`
		Records []json.RawMessage `json:"records"`
	}
	decode(t, resp, &runBody)
	require.NotEmpty(t, runBody.ID)
	assert.Equal(t, 5, runBody.Summary.Periods)
	assert.Len(t, runBody.Records, 5)

	listResp, err := http.Get(ts.URL + "/api/v1/runs")
	require.NoError(t, err)
	var listBody struct {
		Runs []persistence.RunMeta `json:"runs"`
	}
	decode(t, listResp, &listBody)
	require.Len(t, listBody.Runs, 1)
	assert.Equal(t, runBody.ID, listBody.Runs[0].ID)

	detailResp, err := http.Get(ts.URL + "/api/v1/run/" + runBody.ID)
	require.NoError(t, err)
	var detailBody struct {
		Run     persistence.RunMeta `json:"run"`
		Records []json.RawMessage   `json:"records"`
	}
	decode(t, detailResp, &detailBody)
	assert.Equal(t, 5, detailBody.Run.Periods)
	assert.Len(t, detailBody.Records, 5)
}

func TestRunRejectsInvalidScenario(t *testing.T) {
	ts := newTestServer(t, "")
	resp := postJSON(t, ts.URL+"/api/v1/run", map[string]any{"periods": 0})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRunNotFound(t *testing.T) {
	ts := newTestServer(t, "")
	resp, err := http.Get(ts.URL + "/api/v1/run/does-not-exist")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
