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
	"bufio"
	"bytes"
	"fmt"
	"net"
	"time"

	gomysql "github.com/siddontang/go-mysql/mysql"
)

//MasterConn is the concrete "connection handle" the router core holds for
//its single upstream master connection: a TCP socket past the MySQL
//handshake, ready to carry COM_QUERY/COM_REGISTER_SLAVE/COM_BINLOG_DUMP
//traffic out and raw, possibly fragmented, packet bytes in.
type MasterConn struct {
	conn net.Conn
	br   *bufio.Reader
	bw   *bufio.Writer
	seq  uint8
}

//DialMaster opens a TCP connection to addr and performs the MySQL
//handshake using user/password, acting as the client side of the
//protocol.
func DialMaster(addr, user, password string, timeout time.Duration) (*MasterConn, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}

	c := &MasterConn{
		conn: conn,
		br:   bufio.NewReaderSize(conn, 1<<16),
		bw:   bufio.NewWriterSize(conn, 1<<16),
	}

	if err := c.handshake(user, password); err != nil {
		conn.Close()
		return nil, err
	}

	return c, nil
}

//readPacket reads one whole MySQL packet (header + payload), used only
//during the handshake phase where reads are still synchronous and
//packet-aligned.
func (c *MasterConn) readPacket() ([]byte, error) {
	header := make([]byte, 4)
	if _, err := fillBuf(c.br, header); err != nil {
		return nil, err
	}

	length := int(ExtractUint(header[:3], 24))
	c.seq = header[3] + 1

	payload := make([]byte, length)
	if _, err := fillBuf(c.br, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func fillBuf(r *bufio.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func (c *MasterConn) writePacket(payload []byte) error {
	header := make([]byte, 4)
	EncodeUint(header[:3], uint32(len(payload)), 24)
	header[3] = c.seq
	c.seq++

	if _, err := c.bw.Write(header); err != nil {
		return err
	}
	if _, err := c.bw.Write(payload); err != nil {
		return err
	}
	return c.bw.Flush()
}

//handshake reads the master's initial handshake greeting, computes the
//mysql_native_password scramble and writes the handshake response, then
//consumes the final OK/ERR packet.
func (c *MasterConn) handshake(user, password string) error {
	greeting, err := c.readPacket()
	if err != nil {
		return err
	}

	salt, err := parseGreetingSalt(greeting)
	if err != nil {
		return err
	}

	scramble := gomysql.CalcPassword(salt, []byte(password))

	resp := buildHandshakeResponse(user, scramble)
	c.seq = 1
	if err := c.writePacket(resp); err != nil {
		return err
	}

	ack, err := c.readPacket()
	if err != nil {
		return err
	}
	if len(ack) > 0 && ack[0] == 0xff {
		return fmt.Errorf("mysql: master rejected handshake: %s", string(ack[1:]))
	}

	c.seq = 0
	return nil
}

//parseGreetingSalt extracts the 20-byte auth-plugin-data (scramble seed)
//out of a server greeting packet, covering the protocol-41 two-part salt
//layout.
func parseGreetingSalt(greeting []byte) ([]byte, error) {
	if len(greeting) < 1 || greeting[0] != 10 {
		return nil, ErrBadGreeting
	}
	pos := 1
	pos += bytes.IndexByte(greeting[pos:], 0) + 1 // server version

	pos += 4 // connection id

	salt := make([]byte, 0, 20)
	salt = append(salt, greeting[pos:pos+8]...)
	pos += 8
	pos++ // filler

	if len(greeting) < pos+15 {
		return nil, ErrBadGreeting
	}
	pos += 2 // capability flags (lower)
	pos++    // charset
	pos += 2 // status flags
	pos += 2 // capability flags (upper)
	authLen := int(greeting[pos])
	pos++
	pos += 10 // reserved

	rest := 13
	if authLen > 8 {
		rest = authLen - 8
	}
	if len(greeting) < pos+rest {
		return nil, ErrBadGreeting
	}
	salt = append(salt, greeting[pos:pos+rest-1]...) // drop the trailing NUL

	return salt, nil
}

//buildHandshakeResponse builds a protocol-41 handshake response packet
//authenticating as user with the given mysql_native_password scramble.
func buildHandshakeResponse(user string, scramble []byte) []byte {
	capability := gomysql.CLIENT_LONG_PASSWORD | gomysql.CLIENT_PROTOCOL_41 |
		gomysql.CLIENT_SECURE_CONNECTION | gomysql.CLIENT_TRANSACTIONS

	data := make([]byte, 0, 64+len(user)+len(scramble))
	capBuf := make([]byte, 4)
	EncodeUint(capBuf, capability, 32)
	data = append(data, capBuf...)

	maxPacketBuf := make([]byte, 4)
	EncodeUint(maxPacketBuf, MaxPayloadLen, 32)
	data = append(data, maxPacketBuf...)

	data = append(data, uint8(gomysql.DEFAULT_COLLATION_ID))
	data = append(data, make([]byte, 23)...) // reserved

	data = append(data, user...)
	data = append(data, 0)

	data = append(data, byte(len(scramble)))
	data = append(data, scramble...)

	return data
}

//NewMasterConn wraps an already-established connection as a MasterConn,
//skipping the handshake. Used by tests driving the router core against a
//net.Pipe, and available to callers that perform their own
//authentication before handing the connection off.
func NewMasterConn(conn net.Conn) *MasterConn {
	return &MasterConn{
		conn: conn,
		br:   bufio.NewReaderSize(conn, 1<<16),
		bw:   bufio.NewWriterSize(conn, 1<<16),
	}
}

//Write sends a fully-framed MySQL packet to the master, used by the state
//machine (C4) to emit its probes, registration and binlog-dump requests.
func (c *MasterConn) Write(packet []byte) error {
	// packet already carries its own 4-byte header, built by mysql.Build*
	if _, err := c.bw.Write(packet); err != nil {
		return err
	}
	return c.bw.Flush()
}

//ReadChunk reads whatever bytes are currently available into buf, without
//regard to MySQL packet boundaries. This is the readable-buffer primitive
//the reassembly layer (C2) is built on: the master's TCP stream delivers
//bytes in arbitrarily sized, arbitrarily split chunks.
func (c *MasterConn) ReadChunk(buf []byte) (int, error) {
	return c.br.Read(buf)
}

//Close releases the underlying socket.
func (c *MasterConn) Close() error {
	return c.conn.Close()
}
