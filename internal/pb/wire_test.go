// Copyright 2017-25 the original author or authors.
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

package pb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/tilecore/osmpbf/internal/pb/pbtest"
)

func TestBlobHeaderUnmarshal(t *testing.T) {
	b := pbtest.NewBuilder().
		String(1, "OSMData").
		Int32(3, 12345)

	h := &BlobHeader{}
	assert.NoError(t, h.Unmarshal(b.Bytes()))
	assert.Equal(t, "OSMData", h.Type)
	assert.Equal(t, int32(12345), h.Datasize)
}

func TestBlobUnmarshalRaw(t *testing.T) {
	b := pbtest.NewBuilder().Bytes_(1, []byte("hello"))

	blob := &Blob{}
	assert.NoError(t, blob.Unmarshal(b.Bytes()))
	assert.True(t, blob.HasRaw)
	assert.Equal(t, []byte("hello"), blob.Raw)
}

func TestForEachFieldSkipsUnknownWireTypes(t *testing.T) {
	// a group (start/end group wire types) is not handed to fn; fields of
	// the handled wire types reach fn whatever their field number.
	b := pbtest.NewBuilder().Int32(1, 7).Bytes()
	b = protowire.AppendTag(b, 99, protowire.StartGroupType)
	b = protowire.AppendTag(b, 99, protowire.EndGroupType)
	b = append(b, pbtest.NewBuilder().Int32(2, 9).Bytes()...)

	var got []int64

	err := forEachField(b, func(f field) error {
		got = append(got, f.int64())
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, []int64{7, 9}, got)
}

func TestEachPackedVarintToleratesUnpackedEncoding(t *testing.T) {
	// a single, unpacked occurrence of a repeated scalar field
	b := pbtest.NewBuilder().Varint(1, 42)

	var got []uint64

	err := forEachField(b.Bytes(), func(f field) error {
		return f.eachPackedVarint(func(v uint64) { got = append(got, v) })
	})

	assert.NoError(t, err)
	assert.Equal(t, []uint64{42}, got)
}

func TestEachPackedVarintPacked(t *testing.T) {
	b := pbtest.NewBuilder().PackedVarint(1, []uint64{1, 2, 3, 300})

	var got []uint64

	err := forEachField(b.Bytes(), func(f field) error {
		return f.eachPackedVarint(func(v uint64) { got = append(got, v) })
	})

	assert.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3, 300}, got)
}
