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

// Package config loads the process and per-instance configuration from a
// YAML file via viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//ServerConfig is the process-wide configuration: where the admin/metrics
//surface listens and how logging is set up.
type ServerConfig struct {
	AdminAddr   string
	MetricsAddr string
	LogDir      string
	LogLevel    string
	DataDir     string

	Instances []InstanceConfig
}

//InstanceConfig describes one RouterInstance's identity, credentials and
//starting replication position.
type InstanceConfig struct {
	Name     string
	ServerID uint32
	UUID     string

	MasterAddr string
	User       string
	Password   string

	BinlogName     string
	BinlogPosition uint32

	DialTimeout time.Duration
}

//NewServerConfig reads configPath (YAML) via viper and returns the
//parsed ServerConfig.
func NewServerConfig(configPath string) (*ServerConfig, error) {
	if configPath == "" {
		return nil, errors.New("config: path is empty")
	}

	viper.SetConfigFile(configPath)
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", configPath, err)
	}

	cfg := &ServerConfig{
		AdminAddr:   viper.GetString("admin-addr"),
		MetricsAddr: viper.GetString("metrics-addr"),
		LogDir:      viper.GetString("log-dir"),
		LogLevel:    viper.GetString("log-level"),
		DataDir:     viper.GetString("data-dir"),
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}

	var raw []map[string]interface{}
	if err := viper.UnmarshalKey("instances", &raw); err != nil {
		return nil, fmt.Errorf("config: parse instances: %w", err)
	}

	for _, m := range raw {
		inst := InstanceConfig{
			Name:           stringField(m, "name"),
			ServerID:       uint32(intField(m, "server-id")),
			UUID:           stringField(m, "uuid"),
			MasterAddr:     stringField(m, "master-addr"),
			User:           stringField(m, "user"),
			Password:       stringField(m, "password"),
			BinlogName:     stringField(m, "binlog-name"),
			BinlogPosition: uint32(intField(m, "binlog-position")),
			DialTimeout:    10 * time.Second,
		}
		if err := inst.Check(); err != nil {
			return nil, err
		}
		cfg.Instances = append(cfg.Instances, inst)
	}

	if len(cfg.Instances) == 0 {
		return nil, errors.New("config: no instances configured")
	}

	return cfg, nil
}

//Check sanity-checks an InstanceConfig.
func (c *InstanceConfig) Check() error {
	if c.Name == "" {
		return errors.New("config: instance name is required")
	}
	if c.ServerID == 0 {
		return fmt.Errorf("config: instance %s: server-id is required", c.Name)
	}
	if c.MasterAddr == "" {
		return fmt.Errorf("config: instance %s: master-addr is required", c.Name)
	}
	if c.User == "" {
		return fmt.Errorf("config: instance %s: user is required", c.Name)
	}
	if c.BinlogName == "" {
		return fmt.Errorf("config: instance %s: binlog-name is required", c.Name)
	}
	return nil
}

func stringField(m map[string]interface{}, key string) string {
	v, _ := m[key].(string)
	return v
}

func intField(m map[string]interface{}, key string) int64 {
	switch v := m[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}
