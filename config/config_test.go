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

package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
admin-addr: 127.0.0.1:9591
metrics-addr: 127.0.0.1:9592
log-dir: /tmp/binrouter/log
log-level: debug
data-dir: /tmp/binrouter/data
instances:
  - name: shard1
    server-id: 101
    master-addr: 127.0.0.1:3306
    user: repl
    password: secret
    binlog-name: mysql-bin.000001
    binlog-position: 4
`

func writeTempConfig(t *testing.T, contents string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "binrouter.yaml")
	require.Nil(t, ioutil.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestNewServerConfigParsesInstances(t *testing.T) {
	cfg, err := NewServerConfig(writeTempConfig(t, validYAML))
	require.Nil(t, err)

	assert.Equal(t, "127.0.0.1:9591", cfg.AdminAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	require.Len(t, cfg.Instances, 1)

	inst := cfg.Instances[0]
	assert.Equal(t, "shard1", inst.Name)
	assert.Equal(t, uint32(101), inst.ServerID)
	assert.Equal(t, "mysql-bin.000001", inst.BinlogName)
	assert.Equal(t, uint32(4), inst.BinlogPosition)
}

func TestNewServerConfigDefaultsLogLevelAndDataDir(t *testing.T) {
	const yaml = `
instances:
  - name: shard1
    server-id: 1
    master-addr: 127.0.0.1:3306
    user: repl
    binlog-name: mysql-bin.000001
`
	cfg, err := NewServerConfig(writeTempConfig(t, yaml))
	require.Nil(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "./data", cfg.DataDir)
}

func TestNewServerConfigRejectsMissingInstances(t *testing.T) {
	const yaml = `
admin-addr: 127.0.0.1:9591
`
	_, err := NewServerConfig(writeTempConfig(t, yaml))
	assert.NotNil(t, err)
}

func TestNewServerConfigRejectsIncompleteInstance(t *testing.T) {
	const yaml = `
instances:
  - name: shard1
    server-id: 1
`
	_, err := NewServerConfig(writeTempConfig(t, yaml))
	assert.NotNil(t, err)
}

func TestInstanceConfigCheck(t *testing.T) {
	base := InstanceConfig{
		Name:       "shard1",
		ServerID:   1,
		MasterAddr: "127.0.0.1:3306",
		User:       "repl",
		BinlogName: "mysql-bin.000001",
	}
	assert.Nil(t, base.Check())

	missingName := base
	missingName.Name = ""
	assert.NotNil(t, missingName.Check())

	missingServerID := base
	missingServerID.ServerID = 0
	assert.NotNil(t, missingServerID.Check())
}
