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

import "errors"

var (
	//ErrBadConn returns for connection was bad
	ErrBadConn = errors.New("mysql:connection was bad")
	//ErrLargePacket returns for the the packet is large than 16MB
	ErrLargePacket = errors.New("mysql:the packet is large than 16MB")
	//ErrBadHandshake returns when the master's initial handshake packet
	//cannot be parsed
	ErrBadHandshake = errors.New("mysql:bad handshake packet from master")
	//ErrBadGreeting returns when the master's greeting is not a
	//protocol-10 greeting or is too short to carry the scramble seed
	ErrBadGreeting = errors.New("mysql:malformed master greeting")
)
