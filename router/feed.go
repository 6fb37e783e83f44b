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

//readChunkSize is the buffer size used to pull arbitrary-length reads
//off the master connection; it has no relation to MySQL packet
//boundaries, which reassemble() is responsible for recovering.
const readChunkSize = 64 * 1024

//Run drives the instance's read loop until the master connection is
//closed or ReadChunk returns an error. It blocks, so callers run it in
//its own goroutine. Each whole packet recovered by reassemble is handed
//to HandleMasterPacket, which enforces the single-flight gate (C5).
//r.residual is read and written only by this loop, so it takes no lock.
func (r *RouterInstance) Run() error {
	defer r.closed.Store(true)
	defer r.done.Send()

	buf := make([]byte, readChunkSize)

	for {
		n, err := r.MasterConn.ReadChunk(buf)
		if n > 0 {
			var packets [][]byte
			packets, r.residual = reassemble(r.residual, buf[:n])
			for _, pkt := range packets {
				r.HandleMasterPacket(pkt)
			}
		}
		if err != nil {
			return err
		}
	}
}
