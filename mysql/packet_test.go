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

package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeExtractUintRoundTrip(t *testing.T) {
	cases := []struct {
		bits  int
		value uint32
	}{
		{8, 0x7f},
		{16, 0x1234},
		{24, 0xabcdef},
		{32, 0xdeadbeef},
	}

	for _, c := range cases {
		buf := make([]byte, c.bits/8)
		EncodeUint(buf, c.value, c.bits)
		assert.Equal(t, c.value, ExtractUint(buf, c.bits))
	}
}

func TestExtractUint64FromTwoHalves(t *testing.T) {
	src := make([]byte, 8)
	EncodeUint(src[0:4], 0x00000001, 32)
	EncodeUint(src[4:8], 0x00000002, 32)

	got := ExtractUint64(src)
	assert.Equal(t, uint64(0x0000000200000001), got)
}

func TestBuildQueryPacket(t *testing.T) {
	pkt := BuildQueryPacket("SELECT 1")

	assert.Equal(t, uint32(9), ExtractUint(pkt[0:3], 24)) // 1 command byte + 8 query bytes
	assert.Equal(t, byte(0), pkt[3])
	assert.Equal(t, ComQuery, pkt[4])
	assert.Equal(t, "SELECT 1", string(pkt[5:]))
}

func TestBuildRegisterSlavePacket(t *testing.T) {
	pkt := BuildRegisterSlavePacket(42, 7, 3306)

	assert.Equal(t, uint32(18), ExtractUint(pkt[0:3], 24))
	assert.Equal(t, ComRegisterSlave, pkt[4])
	assert.Equal(t, uint32(42), ExtractUint(pkt[5:9], 32))
	assert.Equal(t, byte(0), pkt[9])
	assert.Equal(t, byte(0), pkt[10])
	assert.Equal(t, byte(0), pkt[11])
	assert.Equal(t, uint32(3306), ExtractUint(pkt[12:14], 16))
	assert.Equal(t, uint32(7), ExtractUint(pkt[18:22], 32))
}

func TestBuildBinlogDumpPacket(t *testing.T) {
	pkt := BuildBinlogDumpPacket(42, 154, "mysql-bin.000003")

	// The declared payload length is the historical 0x1b, even though the
	// fixed-width binlog_name field pushes the real payload past it.
	assert.Equal(t, uint32(0x1b), ExtractUint(pkt[0:3], 24))
	assert.Equal(t, ComBinlogDump, pkt[4])
	assert.Equal(t, uint32(154), ExtractUint(pkt[5:9], 32))
	assert.Equal(t, uint32(42), ExtractUint(pkt[11:15], 32))

	assert.Len(t, pkt, 15+BinlogFnameLen)
	nameField := pkt[15 : 15+BinlogFnameLen]
	assert.Equal(t, "mysql-bin.000003", string(nameField[:16]))
	for _, b := range nameField[16:] {
		assert.Equal(t, byte(0), b)
	}
}
