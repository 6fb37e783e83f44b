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

//distribute walks the slave list under the instance lock and hands a
//freshly synthesized packet to every slave whose position exactly
//matches this event's starting offset (C7). Slaves whose position does
//not match are left untouched; their catch-up is someone else's problem.
func (r *RouterInstance) distribute(eventPayload []byte, hdr ReplicationHeader) {
	r.lock.Lock()
	defer r.lock.Unlock()

	startPos := hdr.NextPos - hdr.EventSize

	for s := r.slaves; s != nil; s = s.next {
		if s.BinlogPos != startPos {
			continue
		}

		pkt := make([]byte, hdr.EventSize+5)
		mysql.EncodeUint(pkt[0:3], hdr.EventSize+1, 24)
		pkt[3] = s.Seqno
		s.Seqno++
		pkt[4] = 0
		copy(pkt[5:], eventPayload[:hdr.EventSize])

		if err := s.Conn.Write(pkt); err != nil {
			r.Log.Errorf("instance %s: write to slave failed: %v", r.Name, err)
			continue
		}

		s.BinlogPos = hdr.NextPos

		if hdr.EventType == replication.ROTATE_EVENT {
			if rh, ok := s.Conn.(RotateHook); ok {
				rh.RotateHook(eventPayload)
			}
		}
	}
}

//RotateHook is implemented by slave connections that need to be told
//about a rotate event directly, so their own file-position tracking can
//move in step with the router's. It is optional: connections that don't
//implement it simply don't receive the notification.
type RotateHook interface {
	RotateHook(rawRotatePayload []byte)
}
