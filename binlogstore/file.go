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

// Package binlogstore persists the raw binlog event stream captured from
// a master connection to a local, mmap-backed file (C6's local
// persistence leg), and handles the switch to a new file that follows
// a ROTATE_EVENT.
package binlogstore

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/amplifydb/binrouter/log"
	"github.com/coreos/etcd/pkg/fileutil"
)

//FileMode is the permission bits a binlog file is created with.
const FileMode = 0600

//segmentSize is the size a new binlog segment is preallocated and mmaped
//at. append never grows a segment past this; Rotate starts a fresh one.
const segmentSize = 1 << 28 // 256MiB

//File is the currently active local binlog segment. It is not safe for
//concurrent use; callers serialize access the same way they serialize
//calls into C6 (under the RouterInstance gate).
type File struct {
	dir  string
	name string

	file       *os.File
	mappedData []byte

	writePosition int
	syncPosition  int
}

//Open opens, creating if necessary, the binlog file name inside dir,
//mmaps it at segmentSize and positions the write cursor at position.
func Open(dir, name string, position int) (*File, error) {
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, FileMode)
	if err != nil {
		return nil, fmt.Errorf("binlogstore: open %s: %w", path, err)
	}

	if err := fileutil.Preallocate(f, segmentSize, true); err != nil {
		f.Close()
		return nil, fmt.Errorf("binlogstore: preallocate %s: %w", path, err)
	}

	mapped, err := syscall.Mmap(int(f.Fd()), 0, segmentSize,
		syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("binlogstore: mmap %s: %w", path, err)
	}

	return &File{
		dir:           dir,
		name:          name,
		file:          f,
		mappedData:    mapped,
		writePosition: position,
		syncPosition:  position,
	}, nil
}

//Append writes data at the current write cursor and advances it,
//matching the file.append(bytes) collaborator contract.
func (f *File) Append(data []byte) error {
	if f.writePosition+len(data) > len(f.mappedData) {
		return fmt.Errorf("binlogstore: segment %s full at position %d", f.name, f.writePosition)
	}
	copy(f.mappedData[f.writePosition:], data)
	f.writePosition += len(data)
	return nil
}

//Flush is the durability barrier, file.flush() in the collaborator
//contract. The teacher's own Syncfilerange helper (utils.Syncfilerange)
//is not present in this build; os.File.Sync() is the direct stdlib
//equivalent and spec.md leaves fsync policy unspecified.
func (f *File) Flush() error {
	if f.syncPosition == f.writePosition {
		return nil
	}
	if err := f.file.Sync(); err != nil {
		log.Log.Errorf("binlogstore: sync %s failed: %v", f.name, err)
		return err
	}
	f.syncPosition = f.writePosition
	return nil
}

//Position returns the current write offset within the active segment.
func (f *File) Position() int {
	return f.writePosition
}

//Name returns the active segment's binlog file name.
func (f *File) Name() string {
	return f.name
}

//Rotate closes the current segment and opens name at position,
//matching the file.rotate(name, pos) collaborator contract.
func (f *File) Rotate(name string, position int) (*File, error) {
	if err := f.Close(); err != nil {
		return nil, err
	}
	return Open(f.dir, name, position)
}

//Close unmaps and closes the underlying file.
func (f *File) Close() error {
	if err := syscall.Munmap(f.mappedData); err != nil {
		log.Log.Errorf("binlogstore: munmap %s failed: %v", f.name, err)
		return err
	}
	return f.file.Close()
}
