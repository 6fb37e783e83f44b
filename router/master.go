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

package router

import (
	"fmt"

	"github.com/amplifydb/binrouter/mysql"
)

//Start kicks off the master-side negotiation (C4) by sending the first
//probe and advancing past StateAuthenticated. Call once, right after the
//connection handshake to the master completes.
func (r *RouterInstance) Start() error {
	r.lock.Lock()
	r.state = StateTimestamp
	r.lock.Unlock()

	return r.MasterConn.Write(mysql.BuildQueryPacket("SELECT UNIX_TIMESTAMP()"))
}

//HandleMasterPacket is the entry point for every whole packet arriving
//from the master connection. It implements the single-flight gate
//described for C5: if another goroutine is already draining packets for
//this instance, pkt is appended to the queue and this call returns
//immediately; otherwise the caller drains pkt and anything enqueued while
//it was doing so, in order, without releasing the gate in between.
func (r *RouterInstance) HandleMasterPacket(pkt []byte) {
	r.lock.Lock()
	if r.activeLogs {
		r.queue = append(r.queue, pkt)
		r.lock.Unlock()
		return
	}
	r.activeLogs = true
	r.lock.Unlock()

	for pkt != nil {
		r.dispatch(pkt)

		r.lock.Lock()
		if len(r.queue) > 0 {
			pkt = r.queue[0]
			r.queue = r.queue[1:]
		} else {
			pkt = nil
			r.activeLogs = false
		}
		r.lock.Unlock()
	}
}

//dispatch advances the state machine by exactly one step for pkt, or
//ingests it as a binlog event if the machine has already reached
//StateBinlogDump. It never blocks on the gate; HandleMasterPacket already
//holds the single-flight guarantee for the duration of the call. State
//reads and writes go through State()/setState() rather than touching
//r.state directly, since State() is also called concurrently from the
//admin HTTP surface (api/instance_handler.go).
func (r *RouterInstance) dispatch(pkt []byte) {
	state := r.State()
	if !state.valid() {
		r.Log.Errorf("invalid master state machine state (%d) for instance %s", state, r.Name)
		return
	}

	if len(pkt) > 4 && pkt[4] == 0xff {
		r.Log.Errorf("received error %d from master during %s phase: %s", errorCode(pkt), state, errorMessage(pkt))
		r.Stats.NBinlogErrors.Inc(1)
		return
	}

	switch state {
	case StateTimestamp:
		r.setState(StateServerID)
		r.write(mysql.BuildQueryPacket("SHOW VARIABLES LIKE 'SERVER_ID'"))
	case StateServerID:
		r.Saved.ServerID = pkt
		r.setState(StateHeartbeatPeriod)
		r.write(mysql.BuildQueryPacket("SET @master_heartbeat_period = 1799999979520"))
	case StateHeartbeatPeriod:
		r.Saved.Heartbeat = pkt
		r.setState(StateChecksum1)
		r.write(mysql.BuildQueryPacket("SET @master_binlog_checksum = @@global.binlog_checksum"))
	case StateChecksum1:
		r.Saved.Checksum1 = pkt
		r.setState(StateChecksum2)
		r.write(mysql.BuildQueryPacket("SELECT @master_binlog_checksum"))
	case StateChecksum2:
		r.Saved.Checksum2 = pkt
		r.setState(StateGtidMode)
		r.write(mysql.BuildQueryPacket("SELECT @@GLOBAL.GTID_MODE"))
	case StateGtidMode:
		r.Saved.GtidMode = pkt
		r.setState(StateMasterUUID)
		r.write(mysql.BuildQueryPacket("SHOW VARIABLES LIKE 'SERVER_UUID'"))
	case StateMasterUUID:
		r.Saved.UUID = pkt
		r.setState(StateSlaveUUID)
		r.write(mysql.BuildQueryPacket(fmt.Sprintf("SET @slave_uuid='%s'", r.UUID)))
	case StateSlaveUUID:
		r.Saved.SetSlaveUUID = pkt
		r.setState(StateLatin1)
		r.write(mysql.BuildQueryPacket("SET NAMES latin1"))
	case StateLatin1:
		r.Saved.SetNames = pkt
		r.setState(StateRegister)
		r.write(mysql.BuildRegisterSlavePacket(r.ServerID, r.MasterID, 0))
	case StateRegister:
		r.setState(StateBinlogDump)
		r.write(mysql.BuildBinlogDumpPacket(r.ServerID, r.BinlogPosition, r.BinlogName))
	case StateBinlogDump:
		r.ingest(pkt)
	}
}

//write sends buf to the master connection, logging and counting any
//failure rather than propagating it: the state machine has no caller to
//return an error to once it is running off the connection's read loop.
func (r *RouterInstance) write(buf []byte) {
	if err := r.MasterConn.Write(buf); err != nil {
		r.Log.Errorf("instance %s: write to master failed: %v", r.Name, err)
		r.Stats.NBinlogErrors.Inc(1)
	}
}
