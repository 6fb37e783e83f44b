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

package binlogstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAdvancesPositionAndPersists(t *testing.T) {
	dir := t.TempDir()
	f, err := Open(dir, "mysql-bin.000001", 0)
	require.Nil(t, err)
	defer f.Close()

	require.Nil(t, f.Append([]byte("hello")))
	assert.Equal(t, 5, f.Position())

	require.Nil(t, f.Flush())
}

func TestAppendRejectsOverflow(t *testing.T) {
	dir := t.TempDir()
	f, err := Open(dir, "mysql-bin.000001", segmentSize-2)
	require.Nil(t, err)
	defer f.Close()

	assert.NotNil(t, f.Append([]byte("too big for what's left")))
}

func TestRotateOpensNewSegment(t *testing.T) {
	dir := t.TempDir()
	f, err := Open(dir, "mysql-bin.000001", 4)
	require.Nil(t, err)

	next, err := f.Rotate("mysql-bin.000002", 4)
	require.Nil(t, err)
	defer next.Close()

	assert.Equal(t, "mysql-bin.000002", next.Name())
	assert.Equal(t, 4, next.Position())
}
