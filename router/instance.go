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

// Package router implements the binlog router core: the master-side state
// machine, packet reassembly, binlog ingestion and the slave fan-out
// distributor described for a single RouterInstance.
package router

import (
	"sync"

	"github.com/amplifydb/binrouter/binlogstore"
	"github.com/amplifydb/binrouter/mysql"
	"github.com/amplifydb/binrouter/utils"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

//MasterState is the state of the master-side handshake/registration/dump
//state machine (C4).
type MasterState int

const (
	//StateAuthenticated is the initial state, right after the connection
	//handshake to the master completed
	StateAuthenticated MasterState = iota
	//StateTimestamp awaits the response to SELECT UNIX_TIMESTAMP()
	StateTimestamp
	//StateServerID awaits the response to SHOW VARIABLES LIKE 'SERVER_ID'
	StateServerID
	//StateHeartbeatPeriod awaits the response to setting
	//@master_heartbeat_period
	StateHeartbeatPeriod
	//StateChecksum1 awaits the response to setting @master_binlog_checksum
	StateChecksum1
	//StateChecksum2 awaits the response to SELECT @master_binlog_checksum
	StateChecksum2
	//StateGtidMode awaits the response to SELECT @@GLOBAL.GTID_MODE
	StateGtidMode
	//StateMasterUUID awaits the response to SHOW VARIABLES LIKE
	//'SERVER_UUID'
	StateMasterUUID
	//StateSlaveUUID awaits the response to SET @slave_uuid=...
	StateSlaveUUID
	//StateLatin1 awaits the response to SET NAMES latin1
	StateLatin1
	//StateRegister awaits the response to COM_REGISTER_SLAVE
	StateRegister
	//StateBinlogDump is the terminal, streaming state: every further
	//response is a binlog event (or chunk of one) to ingest
	StateBinlogDump
	//stateMax is one past the last valid state, used for range checks
	stateMax
)

func (s MasterState) String() string {
	switch s {
	case StateAuthenticated:
		return "AUTHENTICATED"
	case StateTimestamp:
		return "TIMESTAMP"
	case StateServerID:
		return "SERVERID"
	case StateHeartbeatPeriod:
		return "HBPERIOD"
	case StateChecksum1:
		return "CHKSUM1"
	case StateChecksum2:
		return "CHKSUM2"
	case StateGtidMode:
		return "GTIDMODE"
	case StateMasterUUID:
		return "MUUID"
	case StateSlaveUUID:
		return "SUUID"
	case StateLatin1:
		return "LATIN1"
	case StateRegister:
		return "REGISTER"
	case StateBinlogDump:
		return "BINLOGDUMP"
	default:
		return "UNKNOWN"
	}
}

//valid reports whether s is a state the state machine recognizes.
func (s MasterState) valid() bool {
	return s >= StateAuthenticated && s < stateMax
}

//SavedMaster holds the master's responses to the pre-dump negotiation
//steps, replayed verbatim to newly attaching slaves so they observe the
//same server fingerprint the router observed.
type SavedMaster struct {
	ServerID    []byte
	Heartbeat   []byte
	Checksum1   []byte
	Checksum2   []byte
	GtidMode    []byte
	UUID        []byte
	SetSlaveUUID []byte
	SetNames    []byte

	//FdeEvent is the most recently observed fake FORMAT_DESCRIPTION_EVENT
	//payload, saved so it can be replayed to slaves attaching later.
	FdeEvent []byte
}

//SlaveEntry is a downstream replica currently being served by the fan-out
//distributor (C7). Its connection has already completed its own
//authentication/registration out-of-core; only position tracking and
//packet delivery are this package's concern.
type SlaveEntry struct {
	Conn Conn

	//BinlogPos is the next offset this slave expects to receive.
	BinlogPos uint32

	//Seqno is the 1-byte MySQL sequence id used for packets synthesized
	//for this slave, incremented (mod 256) per packet.
	Seqno uint8

	next *SlaveEntry
}

//Conn is the minimal connection-handle contract a SlaveEntry or the
//master connection must satisfy: write a buffer, and close idempotently.
//The router core never reads from a slave connection.
type Conn interface {
	Write(buf []byte) error
	Close() error
}

//RouterInstance is the central per-master-connection object: it owns the
//master connection state machine, the reassembly residual, the registered
//slave list and the statistics counters.
type RouterInstance struct {
	Name string

	//ServerID is the router's identity when registering as a slave.
	ServerID uint32
	//MasterID is sent in the COM_REGISTER_SLAVE packet. It is not filled
	//in from the master's negotiation responses; it keeps whatever value
	//the caller set (zero by default).
	MasterID uint32
	//UUID is sent to the master as @slave_uuid during negotiation.
	UUID string

	User     string
	Password string

	//BinlogName is the current binlog file name, null-padded to
	//mysql.BinlogFnameLen bytes on the wire.
	BinlogName string
	//BinlogPosition is the current file offset.
	BinlogPosition uint32

	MasterConn *mysql.MasterConn
	//residual carries a strict prefix of the next undelivered MySQL
	//packet across ReadChunk deliveries.
	residual []byte
	//queue holds inbound buffers that arrived while another goroutine
	//was already inside the gate (C5).
	queue [][]byte

	lock       sync.Mutex
	activeLogs bool

	state MasterState

	Saved SavedMaster

	slaves *SlaveEntry

	Stats *Stats

	File *binlogstore.File

	Log *zap.SugaredLogger

	closed *atomic.Bool

	//done is broadcast once Run's read loop has returned, so a
	//supervisor can wait for the gate to go idle before tearing the
	//instance down, per the cancellation policy of spec.md §5.
	done *utils.Broadcast
}

//NewRouterInstance constructs a RouterInstance ready to have its master
//connection started. The instance is not yet registered anywhere; callers
//add it to a Registry.
func NewRouterInstance(name string, serverID uint32, uuid string, file *binlogstore.File, log *zap.SugaredLogger) *RouterInstance {
	return &RouterInstance{
		Name:     name,
		ServerID: serverID,
		UUID:     uuid,
		state:    StateAuthenticated,
		Stats:    NewStats(name),
		File:     file,
		Log:      log,
		closed:   atomic.NewBool(false),
		done:     utils.NewBroadcast(),
	}
}

//Done returns a channel closed once the master read loop has exited,
//signalling it is safe to tear this instance down.
func (r *RouterInstance) Done() <-chan struct{} {
	return r.done.Receive()
}

//IsClosed reports whether the master read loop has already exited.
func (r *RouterInstance) IsClosed() bool {
	return r.closed.Load()
}

//State returns the current master-side state machine state. Safe to call
//concurrently with the master read loop, e.g. from the admin HTTP
//handlers in api/instance_handler.go.
func (r *RouterInstance) State() MasterState {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.state
}

//setState updates the master-side state machine state under the
//instance lock, so concurrent readers (State) never observe a torn or
//stale value. The gate (HandleMasterPacket/activeLogs) still guarantees
//only one goroutine ever calls setState at a time; this lock is purely
//for mutual exclusion with readers.
func (r *RouterInstance) setState(s MasterState) {
	r.lock.Lock()
	r.state = s
	r.lock.Unlock()
}

//AddSlave inserts slave at the head of the slave list under the instance
//lock.
func (r *RouterInstance) AddSlave(slave *SlaveEntry) {
	r.lock.Lock()
	defer r.lock.Unlock()
	slave.next = r.slaves
	r.slaves = slave
}

//RemoveSlave unlinks slave (identified by pointer identity) from the slave
//list.
func (r *RouterInstance) RemoveSlave(slave *SlaveEntry) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.slaves == slave {
		r.slaves = slave.next
		return
	}
	for cur := r.slaves; cur != nil; cur = cur.next {
		if cur.next == slave {
			cur.next = slave.next
			return
		}
	}
}

//Slaves returns a snapshot slice of the currently registered slaves.
func (r *RouterInstance) Slaves() []*SlaveEntry {
	r.lock.Lock()
	defer r.lock.Unlock()

	out := make([]*SlaveEntry, 0, 8)
	for cur := r.slaves; cur != nil; cur = cur.next {
		out = append(out, cur)
	}
	return out
}
