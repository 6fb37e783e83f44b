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

// Package server wires together the configured router instances, the
// local binlog file store, the admin/metrics HTTP surface and process
// lifecycle (the instance startup part of C14): it is the thing
// cmd/binrouter/main.go drives.
package server

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/amplifydb/binrouter/api"
	"github.com/amplifydb/binrouter/binlogstore"
	"github.com/amplifydb/binrouter/config"
	"github.com/amplifydb/binrouter/log"
	"github.com/amplifydb/binrouter/mysql"
	"github.com/amplifydb/binrouter/router"
	"github.com/amplifydb/binrouter/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rcrowley/go-metrics"
	uuid "github.com/satori/go.uuid"
)

//prometheusFlushInterval is how often go-metrics counters are copied
//into their Prometheus gauges.
const prometheusFlushInterval = 5 * time.Second

//Server owns every configured RouterInstance plus the admin and metrics
//HTTP surfaces built on top of the shared Registry.
type Server struct {
	cfg *config.ServerConfig
	reg *router.Registry

	admin *api.AdminServer
	prom  *PrometheusServer

	mu      sync.Mutex
	started bool
}

//NewServer builds every configured RouterInstance, dialing and
//authenticating its master connection, and wires them into a fresh
//Registry. The negotiation, read loops and HTTP servers are not started
//until Run.
func NewServer(cfg *config.ServerConfig) (*Server, error) {
	if !utils.DirExist(cfg.DataDir) {
		if err := os.MkdirAll(cfg.DataDir, utils.PrivateDirMode); err != nil {
			return nil, fmt.Errorf("server: create data dir %s: %w", cfg.DataDir, err)
		}
	}
	if err := utils.IsDirWriteable(cfg.DataDir); err != nil {
		return nil, fmt.Errorf("server: data dir %s is not writeable: %w", cfg.DataDir, err)
	}

	reg := router.NewRegistry()

	for _, instCfg := range cfg.Instances {
		inst, err := newInstance(cfg.DataDir, instCfg)
		if err != nil {
			return nil, fmt.Errorf("server: build instance %s: %w", instCfg.Name, err)
		}
		if err := reg.Register(inst); err != nil {
			return nil, err
		}
	}

	s := &Server{
		cfg: cfg,
		reg: reg,
	}

	if cfg.AdminAddr != "" {
		s.admin = api.NewAdminServer(cfg.AdminAddr, reg)
	}
	if cfg.MetricsAddr != "" {
		s.prom = NewPrometheusServer(cfg.MetricsAddr, metrics.DefaultRegistry,
			prometheus.DefaultRegisterer, prometheusFlushInterval)
	}

	return s, nil
}

func newInstance(dataDir string, instCfg config.InstanceConfig) (*router.RouterInstance, error) {
	instUUID := instCfg.UUID
	if instUUID == "" {
		instUUID = uuid.NewV4().String()
	}

	file, err := binlogstore.Open(dataDir, instCfg.BinlogName, int(instCfg.BinlogPosition))
	if err != nil {
		return nil, err
	}

	instLog := log.Log.Named(instCfg.Name)

	inst := router.NewRouterInstance(instCfg.Name, instCfg.ServerID, instUUID, file, instLog)
	inst.User = instCfg.User
	inst.Password = instCfg.Password
	inst.BinlogName = instCfg.BinlogName
	inst.BinlogPosition = instCfg.BinlogPosition

	conn, err := mysql.DialMaster(instCfg.MasterAddr, instCfg.User, instCfg.Password, instCfg.DialTimeout)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("dial master %s: %w", instCfg.MasterAddr, err)
	}
	inst.MasterConn = conn

	return inst, nil
}

//Run starts every instance's master connection loop plus the admin and
//metrics HTTP surfaces. It returns once everything has been launched;
//the instance read loops and HTTP servers run in their own goroutines.
func (s *Server) Run() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrStarted
	}
	s.started = true
	s.mu.Unlock()

	for _, inst := range s.reg.List() {
		inst := inst
		if err := inst.Start(); err != nil {
			return fmt.Errorf("server: start instance %s: %w", inst.Name, err)
		}
		go func() {
			if err := inst.Run(); err != nil {
				inst.Log.Errorf("master connection loop exited: %v", err)
			}
		}()
	}

	if s.admin != nil {
		go s.admin.Run()
	}
	if s.prom != nil {
		go s.prom.Run()
	}

	return nil
}

//Stop releases the admin and metrics HTTP surfaces and closes every
//instance's master connection and binlog file.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	if s.admin != nil {
		s.admin.Stop()
	}
	if s.prom != nil {
		s.prom.Stop()
	}

	for _, inst := range s.reg.List() {
		if inst.MasterConn != nil {
			inst.MasterConn.Close()
		}
		if inst.File != nil {
			inst.File.Close()
		}
	}
}
