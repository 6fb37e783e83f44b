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

// Package api exposes a read-only HTTP introspection surface over the
// router registry (C12): the registered instances, their master state
// and statistics, and a Prometheus scrape endpoint. It never accepts a
// write that would mutate a RouterInstance; the core has no
// externally-triggered control-plane operations.
package api

import (
	"context"
	"time"

	"github.com/amplifydb/binrouter/log"
	"github.com/labstack/echo"
	mw "github.com/labstack/echo/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//AdminServer serves the read-only admin/metrics HTTP surface.
type AdminServer struct {
	addr string
	web  *echo.Echo
	ih   *InstanceHandler
}

//NewAdminServer creates an AdminServer backed by reg.
func NewAdminServer(addr string, reg Registry) *AdminServer {
	s := &AdminServer{
		addr: addr,
		web:  echo.New(),
		ih:   &InstanceHandler{reg: reg},
	}
	s.web.HideBanner = true
	s.web.HidePort = true
	return s
}

//Run starts serving; it blocks until the server is stopped or fails.
func (s *AdminServer) Run() {
	s.registerMiddleware()
	s.registerURL()
	if err := s.web.Start(s.addr); err != nil {
		log.Log.Infof("admin server stopped,err:%s", err)
	}
}

func (s *AdminServer) registerMiddleware() {
	loggerConfig := mw.LoggerConfig{
		Skipper: mw.DefaultSkipper,
		Format: `{"time":"${time_rfc3339_nano}","id":"${id}","remote_ip":"${remote_ip}","host":"${host}",` +
			`"method":"${method}","uri":"${uri}","status":${status}, "latency":${latency},` +
			`"latency_human":"${latency_human}","bytes_in":${bytes_in},` +
			`"bytes_out":${bytes_out}}` + "\n",
		CustomTimeFormat: "2006-01-02 15:04:05.00000",
		Output:           log.NewWriter(),
	}
	s.web.Use(mw.LoggerWithConfig(loggerConfig))
	s.web.Use(mw.Recover())
}

func (s *AdminServer) registerURL() {
	s.web.GET("/instances", s.ih.ListInstances)
	s.web.GET("/instances/:name", s.ih.GetInstance)
	s.web.GET("/instances/:name/slaves", s.ih.ListSlaves)
	s.web.GET("/instances/:name/stats", s.ih.GetStats)
	s.web.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

//Stop gracefully shuts the server down.
func (s *AdminServer) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.web.Shutdown(ctx); err != nil {
		log.Log.Errorf("adminServer shutdown error:%s", err.Error())
	}
}
