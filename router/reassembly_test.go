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
	"testing"

	"github.com/amplifydb/binrouter/mysql"
	"github.com/stretchr/testify/assert"
)

func framePacket(seqno byte, payload []byte) []byte {
	pkt := make([]byte, 4+len(payload))
	mysql.EncodeUint(pkt[0:3], uint32(len(payload)), 24)
	pkt[3] = seqno
	copy(pkt[4:], payload)
	return pkt
}

func TestReassembleWholePacketInOneChunk(t *testing.T) {
	pkt := framePacket(0, []byte("hello"))

	packets, residual := reassemble(nil, pkt)
	assert.Len(t, packets, 1)
	assert.Equal(t, pkt, packets[0])
	assert.Nil(t, residual)
}

func TestReassembleMultiplePacketsInOneChunk(t *testing.T) {
	chunk := append(framePacket(0, []byte("aaa")), framePacket(1, []byte("bb"))...)

	packets, residual := reassemble(nil, chunk)
	assert.Len(t, packets, 2)
	assert.Equal(t, []byte("aaa"), packets[0][4:])
	assert.Equal(t, []byte("bb"), packets[1][4:])
	assert.Nil(t, residual)
}

func TestReassembleSplitAcrossChunks(t *testing.T) {
	pkt := framePacket(0, []byte("0123456789"))

	// First chunk delivers only the header and a few payload bytes; the
	// rest trails in a second chunk.
	packets, residual := reassemble(nil, pkt[:6])
	assert.Len(t, packets, 0)
	assert.Equal(t, pkt[:6], residual)

	packets, residual = reassemble(residual, pkt[6:])
	assert.Len(t, packets, 1)
	assert.Equal(t, pkt, packets[0])
	assert.Nil(t, residual)
}

func TestReassembleSplitMidLengthPrefix(t *testing.T) {
	pkt := framePacket(0, []byte("event-payload"))

	// First chunk delivery doesn't even have the full 4-byte header yet.
	packets, residual := reassemble(nil, pkt[:2])
	assert.Len(t, packets, 0)
	assert.Equal(t, pkt[:2], residual)

	packets, residual = reassemble(residual, pkt[2:])
	assert.Len(t, packets, 1)
	assert.Equal(t, pkt, packets[0])
	assert.Nil(t, residual)
}

func TestReassembleResidualCarriesIntoNextPacket(t *testing.T) {
	first := framePacket(0, []byte("first"))
	second := framePacket(1, []byte("second"))
	chunk := append(append([]byte{}, first...), second...)

	// The split lands inside the first packet's payload.
	splitAt := 6
	packets, residual := reassemble(nil, chunk[:splitAt])
	assert.Len(t, packets, 0)
	assert.Equal(t, chunk[:splitAt], residual)

	packets, residual = reassemble(residual, chunk[splitAt:])
	assert.Len(t, packets, 2)
	assert.Equal(t, first, packets[0])
	assert.Equal(t, second, packets[1])
	assert.Nil(t, residual)
}

//TestReassembleResidualSurvivesReusedReadBuffer exercises the pattern
//feed.go actually uses: a single buffer read into repeatedly across
//calls. The residual returned from the first call must not alias that
//buffer, or overwriting it on the next read would corrupt the residual
//before it's consumed.
func TestReassembleResidualSurvivesReusedReadBuffer(t *testing.T) {
	pkt := framePacket(0, []byte("0123456789"))

	readBuf := make([]byte, 64)
	n := copy(readBuf, pkt[:6])
	packets, residual := reassemble(nil, readBuf[:n])
	assert.Len(t, packets, 0)
	assert.Equal(t, pkt[:6], residual)

	// Simulate the caller reusing readBuf for its next read, as
	// feed.go's Run does, before the residual is consumed.
	for i := range readBuf {
		readBuf[i] = 0xff
	}
	n = copy(readBuf, pkt[6:])

	packets, residual = reassemble(residual, readBuf[:n])
	assert.Len(t, packets, 1)
	assert.Equal(t, pkt, packets[0])
	assert.Nil(t, residual)
}
