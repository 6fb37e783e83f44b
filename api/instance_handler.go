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

	"github.com/amplifydb/binrouter/router"
	"github.com/amplifydb/binrouter/utils"
	"github.com/labstack/echo"
)

//Registry is the subset of *router.Registry the admin surface needs;
//kept as an interface so handlers can be tested against a fake.
type Registry interface {
	Get(name string) *router.RouterInstance
	List() []*router.RouterInstance
}

//InstanceHandler serves read-only instance/slave/stats introspection.
type InstanceHandler struct {
	reg Registry
}

type instanceView struct {
	Name           string `json:"name"`
	ServerID       uint32 `json:"server_id"`
	MasterID       uint32 `json:"master_id"`
	UUID           string `json:"uuid"`
	State          string `json:"state"`
	BinlogName     string `json:"binlog_name"`
	BinlogPosition uint32 `json:"binlog_position"`
	SlaveCount     int    `json:"slave_count"`
}

func newInstanceView(inst *router.RouterInstance) instanceView {
	return instanceView{
		Name:           inst.Name,
		ServerID:       inst.ServerID,
		MasterID:       inst.MasterID,
		UUID:           inst.UUID,
		State:          inst.State().String(),
		BinlogName:     inst.BinlogName,
		BinlogPosition: inst.BinlogPosition,
		SlaveCount:     len(inst.Slaves()),
	}
}

//ListInstances returns every registered instance's summary view.
func (h *InstanceHandler) ListInstances(c echo.Context) error {
	insts := h.reg.List()
	views := make([]instanceView, 0, len(insts))
	for _, inst := range insts {
		views = append(views, newInstanceView(inst))
	}
	return c.JSON(http.StatusOK, utils.NewResp().SetData(views))
}

//GetInstance returns a single instance's summary view.
func (h *InstanceHandler) GetInstance(c echo.Context) error {
	inst := h.reg.Get(c.Param("name"))
	if inst == nil {
		return c.JSON(http.StatusNotFound, utils.NewResp().SetError("instance not found"))
	}
	return c.JSON(http.StatusOK, utils.NewResp().SetData(newInstanceView(inst)))
}

type slaveView struct {
	BinlogPos uint32 `json:"binlog_pos"`
	Seqno     uint8  `json:"seqno"`
}

//ListSlaves returns the downstream replicas currently registered on an
//instance.
func (h *InstanceHandler) ListSlaves(c echo.Context) error {
	inst := h.reg.Get(c.Param("name"))
	if inst == nil {
		return c.JSON(http.StatusNotFound, utils.NewResp().SetError("instance not found"))
	}

	slaves := inst.Slaves()
	views := make([]slaveView, 0, len(slaves))
	for _, s := range slaves {
		views = append(views, slaveView{BinlogPos: s.BinlogPos, Seqno: s.Seqno})
	}
	return c.JSON(http.StatusOK, utils.NewResp().SetData(views))
}

type statsView struct {
	NBinlogs      int64 `json:"n_binlogs"`
	NFakeEvents   int64 `json:"n_fake_events"`
	NRotates      int64 `json:"n_rotates"`
	NBinlogErrors int64 `json:"n_binlog_errors"`
}

//GetStats returns an instance's event counters.
func (h *InstanceHandler) GetStats(c echo.Context) error {
	inst := h.reg.Get(c.Param("name"))
	if inst == nil {
		return c.JSON(http.StatusNotFound, utils.NewResp().SetError("instance not found"))
	}

	view := statsView{
		NBinlogs:      inst.Stats.NBinlogs.Count(),
		NFakeEvents:   inst.Stats.NFakeEvents.Count(),
		NRotates:      inst.Stats.NRotates.Count(),
		NBinlogErrors: inst.Stats.NBinlogErrors.Count(),
	}
	return c.JSON(http.StatusOK, utils.NewResp().SetData(view))
}
