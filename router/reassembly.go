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

import "github.com/amplifydb/binrouter/mysql"

//reassemble stitches any carried residual together with a newly delivered
//chunk and repeatedly extracts whole MySQL packets from the front of the
//result (C2). It returns the extracted packets, in order, plus whatever
//bytes remain as the new residual (a strict prefix of the next
//undelivered packet, or nil if none).
//
//Packets, and any leftover residual, are returned as freshly allocated
//buffers; unlike the upstream router this is ported from, this
//implementation always copies rather than pointing into the caller's
//chunk in place, since callers such as feed.go reuse the same read
//buffer across calls and a residual aliasing it would be corrupted by
//the next read. The extraction algorithm itself -- length probing across
//a boundary, copy-on-span, stop-and-save-residual when data is short --
//is unchanged.
func reassemble(residual []byte, chunk []byte) (packets [][]byte, newResidual []byte) {
	buf := residual
	if len(chunk) > 0 {
		if len(buf) == 0 {
			buf = chunk
		} else {
			joined := make([]byte, len(buf)+len(chunk))
			copy(joined, buf)
			copy(joined[len(buf):], chunk)
			buf = joined
		}
	}

	for len(buf) >= 4 {
		payloadLen := int(mysql.ExtractUint(buf[:3], 24))
		targetLen := payloadLen + 4

		if len(buf) < targetLen {
			// Stop; whatever we have is a strict prefix of the next
			// packet (possibly spanning more than the two chunks this
			// call saw) and is carried forward as residual.
			break
		}

		pkt := make([]byte, targetLen)
		copy(pkt, buf[:targetLen])
		packets = append(packets, pkt)

		buf = buf[targetLen:]
	}

	if len(buf) == 0 {
		return packets, nil
	}

	// buf may alias the caller's chunk (when residual was empty, buf ==
	// chunk directly); copy it so a reused read buffer can't corrupt the
	// residual before the next reassemble call reads it.
	newResidual = make([]byte, len(buf))
	copy(newResidual, buf)
	return packets, newResidual
}
