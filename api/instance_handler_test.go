// Copyright 2018 The kingbus Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amplifydb/binrouter/router"
	"github.com/labstack/echo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRegistry struct {
	instances map[string]*router.RouterInstance
}

func (f *fakeRegistry) Get(name string) *router.RouterInstance { return f.instances[name] }
func (f *fakeRegistry) List() []*router.RouterInstance {
	out := make([]*router.RouterInstance, 0, len(f.instances))
	for _, inst := range f.instances {
		out = append(out, inst)
	}
	return out
}

func newTestHandler(t *testing.T) (*InstanceHandler, *router.RouterInstance) {
	logger, err := zap.NewDevelopment()
	require.Nil(t, err)

	inst := router.NewRouterInstance("shard1", 101, "uuid-1", nil, logger.Sugar())
	inst.BinlogName = "mysql-bin.000001"
	inst.BinlogPosition = 4

	reg := &fakeRegistry{instances: map[string]*router.RouterInstance{"shard1": inst}}
	return &InstanceHandler{reg: reg}, inst
}

func doRequest(h echo.HandlerFunc, method, path, paramName, paramValue string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if paramName != "" {
		c.SetParamNames(paramName)
		c.SetParamValues(paramValue)
	}
	h(c)
	return rec
}

func TestListInstances(t *testing.T) {
	handler, _ := newTestHandler(t)
	rec := doRequest(handler.ListInstances, http.MethodGet, "/instances", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "shard1")
}

func TestGetInstanceFound(t *testing.T) {
	handler, _ := newTestHandler(t)
	rec := doRequest(handler.GetInstance, http.MethodGet, "/instances/shard1", "name", "shard1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mysql-bin.000001")
}

func TestGetInstanceNotFound(t *testing.T) {
	handler, _ := newTestHandler(t)
	rec := doRequest(handler.GetInstance, http.MethodGet, "/instances/ghost", "name", "ghost")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetStats(t *testing.T) {
	handler, inst := newTestHandler(t)
	inst.Stats.NBinlogs.Inc(5)

	rec := doRequest(handler.GetStats, http.MethodGet, "/instances/shard1/stats", "name", "shard1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"n_binlogs":5`)
}
