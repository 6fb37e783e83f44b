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
	"github.com/amplifydb/binrouter/mysql"
	"github.com/siddontang/go-mysql/replication"
)

//eventHeaderSize is the fixed 19-byte replication event header that
//follows the 5 bytes of MySQL packet framing (length+seqno+ok) in every
//binlog-dump response.
const eventHeaderSize = 19

//ingest is the C6/C2 entry point once the state machine has reached
//StateBinlogDump: pkt is a whole, reassembled MySQL packet carrying one
//binlog event (or an error packet). The reassembly step itself
//(stitching network fragments into pkt) happens one layer up, in
//ReadChunk/reassemble; by the time dispatch reaches here pkt is already
//whole.
func (r *RouterInstance) ingest(pkt []byte) {
	hdr := parseHeader(pkt)

	if hdr.OK != 0 {
		r.Log.Errorf("instance %s: binlog router error %d: %s", r.Name, errorCode(pkt), errorMessage(pkt))
		r.Stats.NBinlogErrors.Inc(1)
		return
	}

	r.Stats.NBinlogs.Inc(1)
	r.Stats.recordEventType(byte(hdr.EventType))

	if hdr.EventType == replication.FORMAT_DESCRIPTION_EVENT && hdr.NextPos == 0 {
		r.Stats.NFakeEvents.Inc(1)
		r.Saved.FdeEvent = append([]byte(nil), pkt[5:]...)
		return
	}

	if hdr.EventType == replication.HEARTBEAT_EVENT {
		return
	}

	payload := pkt[5:]

	if hdr.Flags&replication.LOG_EVENT_ARTIFICIAL_F != 0 {
		if hdr.EventType == replication.ROTATE_EVENT {
			r.rotate(payload, hdr)
		}
		return
	}

	if err := r.File.Append(payload); err != nil {
		r.Log.Errorf("instance %s: append to binlog file failed: %v", r.Name, err)
		r.Stats.NBinlogErrors.Inc(1)
	} else {
		r.BinlogPosition = uint32(r.File.Position())
	}

	if hdr.EventType == replication.ROTATE_EVENT {
		r.rotate(payload, hdr)
	}

	r.distribute(payload, hdr)

	if err := r.File.Flush(); err != nil {
		r.Log.Errorf("instance %s: flush binlog file failed: %v", r.Name, err)
	}
}

//rotate parses a ROTATE_EVENT payload (64-bit position from two
//little-endian halves, followed by the file name, taken as the rest of
//the payload up to the first NUL byte, if any) and, if
//the name differs from the currently active file, switches the local
//binlog file over.
func (r *RouterInstance) rotate(payload []byte, hdr ReplicationHeader) {
	if len(payload) < eventHeaderSize+8 {
		r.Log.Errorf("instance %s: truncated rotate event", r.Name)
		return
	}

	body := payload[eventHeaderSize:]
	position := mysql.ExtractUint64(body[0:8])

	nameField := body[8:]
	name := string(nameField)
	if idx := indexOfNUL(nameField); idx >= 0 {
		name = string(nameField[:idx])
	}

	if name == r.BinlogName {
		return
	}

	r.Stats.NRotates.Inc(1)
	r.Log.Infof("instance %s: rotating binlog %s -> %s @ %d", r.Name, r.BinlogName, name, position)

	newFile, err := r.File.Rotate(name, int(position))
	if err != nil {
		r.Log.Errorf("instance %s: rotate to %s failed: %v", r.Name, name, err)
		r.Stats.NBinlogErrors.Inc(1)
		return
	}

	r.File = newFile
	r.BinlogName = name
	r.BinlogPosition = uint32(position)
}

func indexOfNUL(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}
