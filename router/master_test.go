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
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/amplifydb/binrouter/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//readOutgoingQueries drains whole MySQL packets written by the instance to
//the server side of a net.Pipe and delivers their query text on a channel,
//so the test can assert on what the state machine sent without blocking
//the unbuffered pipe.
func readOutgoingQueries(t *testing.T, conn net.Conn) <-chan string {
	out := make(chan string, 16)
	go func() {
		br := bufio.NewReader(conn)
		for {
			header := make([]byte, 4)
			if _, err := readFull(br, header); err != nil {
				close(out)
				return
			}
			length := int(mysql.ExtractUint(header[:3], 24))
			payload := make([]byte, length)
			if _, err := readFull(br, payload); err != nil {
				close(out)
				return
			}
			// payload[0] is the command byte (COM_QUERY etc.); the rest is
			// the query text for every probe this state machine sends.
			if len(payload) > 0 {
				out <- string(payload[1:])
			} else {
				out <- ""
			}
		}
	}()
	return out
}

func readFull(br *bufio.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := br.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func recvQuery(t *testing.T, ch <-chan string) string {
	select {
	case q, ok := <-ch:
		require.True(t, ok, "outgoing channel closed unexpectedly")
		return q
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for outgoing query")
		return ""
	}
}

func TestStartSendsTimestampProbe(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	r := newTestInstance(t)
	r.MasterConn = mysql.NewMasterConn(client)

	queries := readOutgoingQueries(t, server)

	require.Nil(t, r.Start())
	assert.Equal(t, "SELECT UNIX_TIMESTAMP()", recvQuery(t, queries))
	assert.Equal(t, StateTimestamp, r.State())
}

func TestDispatchWalksFullNegotiationSequence(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	r := newTestInstance(t)
	r.MasterConn = mysql.NewMasterConn(client)
	r.ServerID = 7
	r.UUID = "11481c85-e6f2-11e8-8bbe-fa163e72d4ae"
	r.BinlogName = "mysql-bin.000001"

	queries := readOutgoingQueries(t, server)

	require.Nil(t, r.Start())
	recvQuery(t, queries) // SELECT UNIX_TIMESTAMP()

	expected := []struct {
		state MasterState
		query string
	}{
		{StateServerID, "SHOW VARIABLES LIKE 'SERVER_ID'"},
		{StateHeartbeatPeriod, "SET @master_heartbeat_period = 1799999979520"},
		{StateChecksum1, "SET @master_binlog_checksum = @@global.binlog_checksum"},
		{StateChecksum2, "SELECT @master_binlog_checksum"},
		{StateGtidMode, "SELECT @@GLOBAL.GTID_MODE"},
		{StateMasterUUID, "SHOW VARIABLES LIKE 'SERVER_UUID'"},
		{StateSlaveUUID, "SET @slave_uuid='11481c85-e6f2-11e8-8bbe-fa163e72d4ae'"},
		{StateLatin1, "SET NAMES latin1"},
	}

	for _, step := range expected {
		r.HandleMasterPacket([]byte{0, 0, 0, 0, 0})
		assert.Equal(t, step.query, recvQuery(t, queries))
		assert.Equal(t, step.state, r.State())
	}

	// StateLatin1's response triggers COM_REGISTER_SLAVE, not a query.
	r.HandleMasterPacket([]byte{0, 0, 0, 0, 0})
	assert.Equal(t, StateRegister, r.State())

	// StateRegister's response triggers COM_BINLOG_DUMP.
	r.HandleMasterPacket([]byte{0, 0, 0, 0, 0})
	assert.Equal(t, StateBinlogDump, r.State())
}

func TestDispatchRecordsMasterErrorPacket(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	r := newTestInstance(t)
	r.MasterConn = mysql.NewMasterConn(client)
	r.state = StateServerID

	errPkt := []byte{0, 0, 0, 0, 0xff, 0x10, 0x20, 'n', 'o', 'p', 'e'}
	r.HandleMasterPacket(errPkt)

	assert.Equal(t, StateServerID, r.State())
	assert.Equal(t, int64(1), r.Stats.NBinlogErrors.Count())
}

func TestHandleMasterPacketQueuesWhileGateIsActive(t *testing.T) {
	r := newTestInstance(t)

	r.lock.Lock()
	r.activeLogs = true
	r.lock.Unlock()

	pkt := []byte{1, 2, 3}
	r.HandleMasterPacket(pkt)

	r.lock.Lock()
	defer r.lock.Unlock()
	require.Len(t, r.queue, 1)
	assert.Equal(t, pkt, r.queue[0])
	assert.True(t, r.activeLogs)
}
