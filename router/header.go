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

//ReplicationHeader is the MySQL packet framing plus the 19-byte
//replication event header, extracted from the start of one reassembled
//packet (C3).
type ReplicationHeader struct {
	PayloadLen uint32
	Seqno      uint8
	//OK is the first payload byte: 0 for event data, non-zero marks an
	//error packet.
	OK        uint8
	Timestamp uint32
	EventType replication.EventType
	ServerID  uint32
	EventSize uint32
	NextPos   uint32
	Flags     uint16
}

//errorMessage returns the human-readable error text of an error packet,
//which begins at byte offset 7 from the start of the MySQL packet (past
//the 0xff marker at +4 and the 2-byte error code at +5:+7).
func errorMessage(pkt []byte) string {
	if len(pkt) <= 7 {
		return ""
	}
	return string(pkt[7:])
}

//errorCode returns the numeric MySQL error code of an error packet, the
//2-byte little-endian field at offset +5, matching blr_master.c's
//MYSQL_ERROR_CODE(buf).
func errorCode(pkt []byte) uint16 {
	if len(pkt) < 7 {
		return 0
	}
	return uint16(mysql.ExtractUint(pkt[5:7], 16))
}

//parseHeader populates a ReplicationHeader from the start of a whole
//MySQL packet containing a replication event. No validation beyond the OK
//byte is performed; field layout is fixed by the wire format.
func parseHeader(pkt []byte) ReplicationHeader {
	var hdr ReplicationHeader

	hdr.PayloadLen = mysql.ExtractUint(pkt[0:3], 24)
	hdr.Seqno = pkt[3]
	hdr.OK = pkt[4]
	hdr.Timestamp = mysql.ExtractUint(pkt[5:9], 32)
	hdr.EventType = replication.EventType(pkt[9])
	hdr.ServerID = mysql.ExtractUint(pkt[10:14], 32)
	hdr.EventSize = mysql.ExtractUint(pkt[14:18], 32)
	hdr.NextPos = mysql.ExtractUint(pkt[18:22], 32)
	hdr.Flags = uint16(mysql.ExtractUint(pkt[22:24], 16))

	return hdr
}

//eventTypeTableSize is the per-type histogram width, matching the MySQL
//5.6 event-type table (spec.md §6, GLOSSARY).
const eventTypeTableSize = 0x24
