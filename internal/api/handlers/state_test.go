package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/dom/broadcast-overlay/internal/domain"
	"github.com/dom/broadcast-overlay/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getJSON(t *testing.T, url string, out interface{}) *http.Response {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestStateHandler_Get(t *testing.T) {
	ts := testutil.NewTestServer(t)

	ts.Store.ReplaceMeta(context.Background(), domain.Meta{Title: "CEO", FightRule: "FT2"})

	var state domain.BroadcastState
	resp := getJSON(t, ts.APIURL("/state"), &state)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "CEO", state.Meta.Title)
}

func TestStateHandler_Replace(t *testing.T) {
	ts := testutil.NewTestServer(t)

	body := strings.NewReader(`{"player1": {"name": "Punk", "score": 2}, "isVisible": false}`)
	req, err := http.NewRequest(http.MethodPut, ts.APIURL("/state"), body)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Punk", ts.Store.State().Player1.Name)
	assert.False(t, ts.Store.State().IsVisible)
}

func TestStateHandler_ReplaceMalformed(t *testing.T) {
	ts := testutil.NewTestServer(t)

	before := ts.Store.State()

	req, err := http.NewRequest(http.MethodPut, ts.APIURL("/state"), strings.NewReader(`{"player1":`))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, before, ts.Store.State())
}

func TestStateHandler_Reset(t *testing.T) {
	ts := testutil.NewTestServer(t)

	ts.Store.ReplacePlayer1(context.Background(), domain.PlayerState{Score: 9})

	resp, err := http.Post(ts.APIURL("/state/reset"), "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, ts.Store.State().Player1.Score)
}

func TestPresetHandler_SaveAndApply(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	// Save the current live state under a name
	ts.Store.ReplaceMeta(ctx, domain.Meta{Title: "Winners Finals", FightRule: "FT3"})

	createBody := bytes.NewReader([]byte(`{"name": "winners-finals"}`))
	resp, err := http.Post(ts.APIURL("/presets"), "application/json", createBody)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	// Mutate away from the saved state, then apply the preset
	ts.Store.ReplaceMeta(ctx, domain.Meta{Title: "Losers Round 1", FightRule: "FT2"})
	require.Equal(t, "Losers Round 1", ts.Store.State().Meta.Title)

	applyResp, err := http.Post(ts.APIURL("/presets/"+created.ID+"/apply"), "application/json", nil)
	require.NoError(t, err)
	defer applyResp.Body.Close()

	assert.Equal(t, http.StatusOK, applyResp.StatusCode)
	assert.Equal(t, "Winners Finals", ts.Store.State().Meta.Title)
}

func TestPresetHandler_DuplicateName(t *testing.T) {
	ts := testutil.NewTestServer(t)

	body := []byte(`{"name": "dup"}`)

	resp, err := http.Post(ts.APIURL("/presets"), "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Post(ts.APIURL("/presets"), "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestPresetHandler_ApplyMissing(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Post(ts.APIURL("/presets/00000000-0000-0000-0000-000000000000/apply"), "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
