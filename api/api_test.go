// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/priorq/priorq"
	"github.com/vechain/priorq/registry"
	"github.com/vechain/priorq/state"
)

var (
	owner      = priorq.BytesToAddress([]byte("owner"))
	controller = priorq.BytesToAddress([]byte("controller"))
	alice      = priorq.BytesToAddress([]byte("alice"))
	bob        = priorq.BytesToAddress([]byte("bob"))
)

type testServer struct {
	*httptest.Server
	now *uint64
}

func newTestServer(t *testing.T) *testServer {
	reg, err := registry.New(state.New(), nil, owner)
	require.NoError(t, err)
	require.NoError(t, reg.SetController(owner, controller))

	now := new(uint64)
	handler := New(reg, Options{
		AllowedOrigins: "*",
		Now:            func() uint64 { return *now },
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &testServer{srv, now}
}

func (ts *testServer) request(t *testing.T, method, path string, body interface{}) (int, []byte) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestAccountsEndpoints(t *testing.T) {
	ts := newTestServer(t)

	code, _ := ts.request(t, "POST", "/accounts", map[string]string{"address": alice.String()})
	require.Equal(t, http.StatusOK, code)

	// duplicate registration conflicts
	code, _ = ts.request(t, "POST", "/accounts", map[string]string{"address": alice.String()})
	assert.Equal(t, http.StatusConflict, code)

	code, body := ts.request(t, "GET", "/accounts", nil)
	require.Equal(t, http.StatusOK, code)
	var accounts []priorq.Address
	require.NoError(t, json.Unmarshal(body, &accounts))
	assert.Equal(t, []priorq.Address{alice}, accounts)

	// 100 s of accrual
	*ts.now = 100
	code, body = ts.request(t, "GET", "/accounts/"+alice.String(), nil)
	require.Equal(t, http.StatusOK, code)
	var account struct {
		Registered bool   `json:"registered"`
		Regular    string `json:"regular"`
		Restricted string `json:"restricted"`
	}
	require.NoError(t, json.Unmarshal(body, &account))
	assert.True(t, account.Registered)
	assert.Equal(t, "0x64", account.Regular)
	assert.Equal(t, "0x32", account.Restricted)

	// transfers
	code, _ = ts.request(t, "POST", "/accounts", map[string]string{"address": bob.String()})
	require.Equal(t, http.StatusOK, code)
	code, _ = ts.request(t, "POST", "/accounts/"+alice.String()+"/transfers",
		map[string]interface{}{"to": bob.String(), "amount": "30"})
	require.Equal(t, http.StatusOK, code)

	// over-spend rejected
	code, _ = ts.request(t, "POST", "/accounts/"+alice.String()+"/transfers",
		map[string]interface{}{"to": bob.String(), "amount": "1000000"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = ts.request(t, "GET", "/accounts/zzz", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestWaitListEndpoints(t *testing.T) {
	ts := newTestServer(t)

	for _, addr := range []priorq.Address{alice, bob} {
		code, _ := ts.request(t, "POST", "/accounts", map[string]string{"address": addr.String()})
		require.Equal(t, http.StatusOK, code)
	}
	*ts.now = 100

	stakeID := priorq.BytesToBytes32([]byte("stake-1")).String()
	otherID := priorq.BytesToBytes32([]byte("stake-2")).String()

	// cost(2, 5) = 19
	code, body := ts.request(t, "POST", "/waitlist", map[string]interface{}{
		"caller": alice.String(), "weight": 2, "priority": "5", "id": stakeID,
	})
	require.Equal(t, http.StatusOK, code, string(body))

	// a higher priority entry takes the head
	code, body = ts.request(t, "POST", "/waitlist", map[string]interface{}{
		"caller": bob.String(), "weight": 2, "priority": "10", "id": otherID,
	})
	require.Equal(t, http.StatusOK, code, string(body))
	var position struct {
		Position uint64 `json:"position"`
	}
	require.NoError(t, json.Unmarshal(body, &position))
	assert.Equal(t, uint64(0), position.Position)

	// duplicate id conflicts
	code, _ = ts.request(t, "POST", "/waitlist", map[string]interface{}{
		"caller": alice.String(), "weight": 2, "priority": "5", "id": stakeID,
	})
	assert.Equal(t, http.StatusConflict, code)

	code, body = ts.request(t, "GET", "/waitlist", nil)
	require.Equal(t, http.StatusOK, code)
	var slots []struct {
		ID       string `json:"id"`
		Owner    string `json:"owner"`
		Staked   string `json:"staked"`
		Position uint64 `json:"position"`
	}
	require.NoError(t, json.Unmarshal(body, &slots))
	require.Len(t, slots, 2)
	assert.Equal(t, otherID, slots[0].ID)
	assert.Equal(t, stakeID, slots[1].ID)
	assert.Equal(t, "0x13", slots[1].Staked) // 19

	// reprice alice above bob: cost(2, 20) = 76
	code, body = ts.request(t, "PUT", "/waitlist/"+stakeID, map[string]interface{}{
		"caller": alice.String(), "weight": 2, "priority": "20",
	})
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(body, &position))
	assert.Equal(t, uint64(0), position.Position)

	// non-owner reprice is forbidden
	code, _ = ts.request(t, "PUT", "/waitlist/"+stakeID, map[string]interface{}{
		"caller": bob.String(), "weight": 2, "priority": "50",
	})
	assert.Equal(t, http.StatusForbidden, code)

	// unknown slot
	missing := priorq.Bytes32{31: 0xff}.String()
	code, _ = ts.request(t, "GET", "/waitlist/"+missing, nil)
	assert.Equal(t, http.StatusNotFound, code)

	// only the controller dequeues
	code, _ = ts.request(t, "POST", "/waitlist/dequeues", map[string]string{"caller": alice.String()})
	assert.Equal(t, http.StatusForbidden, code)

	code, body = ts.request(t, "POST", "/waitlist/dequeues", map[string]string{"caller": controller.String()})
	require.Equal(t, http.StatusOK, code)
	var served struct {
		ID    string `json:"id"`
		Owner string `json:"owner"`
	}
	require.NoError(t, json.Unmarshal(body, &served))
	assert.Equal(t, stakeID, served.ID)

	// owner removes the remaining stake on bob's behalf
	code, _ = ts.request(t, "DELETE", "/waitlist/"+otherID+"?caller="+owner.String(), nil)
	require.Equal(t, http.StatusOK, code)

	code, body = ts.request(t, "GET", "/waitlist/supply", nil)
	require.Equal(t, http.StatusOK, code)
	var supply struct {
		TotalStaked string `json:"totalStaked"`
		Destroyed   string `json:"destroyed"`
	}
	require.NoError(t, json.Unmarshal(body, &supply))
	assert.Equal(t, "0x0", supply.TotalStaked)
	assert.Equal(t, "0x4c", supply.Destroyed) // 76
}

func TestControllerEndpoints(t *testing.T) {
	ts := newTestServer(t)

	code, body := ts.request(t, "GET", "/waitlist/controller", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), controller.String())

	// only the owner reassigns
	code, _ = ts.request(t, "PUT", "/waitlist/controller", map[string]string{
		"caller": alice.String(), "controller": alice.String(),
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = ts.request(t, "PUT", "/waitlist/controller", map[string]string{
		"caller": owner.String(), "controller": alice.String(),
	})
	require.Equal(t, http.StatusOK, code)

	code, body = ts.request(t, "GET", "/waitlist/controller", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), alice.String())
}

func TestRouteNames(t *testing.T) {
	// sanity check against typos in mounted paths
	reg, err := registry.New(state.New(), nil, owner)
	require.NoError(t, err)
	handler := New(reg, Options{AllowedOrigins: "*"})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", fmt.Sprintf("/accounts/%s", alice), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
