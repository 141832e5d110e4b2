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

package osmpbf

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tilecore/osmpbf/internal/pb/pbtest"
	"github.com/tilecore/osmpbf/model"
)

func stringTable(strs ...string) *pbtest.Builder {
	st := pbtest.NewBuilder()
	for _, s := range strs {
		st.String(1, s)
	}

	return st
}

func TestParsePrimitiveBlockDenseNodesDeltaAndCoordinates(t *testing.T) {
	// string table: index 0 reserved/empty, then "amenity", "cafe"
	st := stringTable("", "amenity", "cafe")

	dense := pbtest.NewBuilder().
		PackedZigZag(1, []int64{100, 1, 1}). // ids 100, 101, 102
		PackedZigZag(8, []int64{10, 10, 10}).
		PackedZigZag(9, []int64{20, 20, 20}).
		PackedInt32(10, []int32{1, 2, 0, 0, 0}) // only first node tagged

	group := pbtest.NewBuilder().Message(2, dense)

	block := pbtest.NewBuilder().
		Message(1, st).
		Message(2, group).
		Int32(17, 100).
		Int64(19, 0).
		Int64(20, 0)

	nodes, ways, relations, err := parsePrimitiveBlock(block.Bytes())
	assert.NoError(t, err)
	assert.Empty(t, ways)
	assert.Empty(t, relations)

	if assert.Len(t, nodes, 3) {
		assert.Equal(t, model.ID(100), nodes[0].ID)
		assert.Equal(t, model.ID(101), nodes[1].ID)
		assert.Equal(t, model.ID(102), nodes[2].ID)

		// granularity 100, offset 0: lat/lon accumulate by 10 each node
		assert.Equal(t, model.Degrees(0.000001).Round7(), nodes[0].Lat)
		assert.Equal(t, model.Degrees(0.000002).Round7(), nodes[1].Lat)
		assert.Equal(t, model.Degrees(0.000003).Round7(), nodes[2].Lat)

		assert.Equal(t, map[string]string{"amenity": "cafe"}, nodes[0].Tags)
		assert.Equal(t, map[string]string{}, nodes[1].Tags)
		assert.Equal(t, map[string]string{}, nodes[2].Tags)
	}
}

// TestDenseTagsTruncatedKeysValsDoesNotPanic exercises the bounds-check-
// before-value-check ordering: a keys_vals column that runs out mid-tag
// must not index past the end of the slice.
func TestDenseTagsTruncatedKeysValsDoesNotPanic(t *testing.T) {
	st := stringTable("", "amenity")

	dense := pbtest.NewBuilder().
		PackedZigZag(1, []int64{1}).
		PackedZigZag(8, []int64{0}).
		PackedZigZag(9, []int64{0}).
		PackedInt32(10, []int32{1}) // key present, value and terminator missing

	group := pbtest.NewBuilder().Message(2, dense)
	block := pbtest.NewBuilder().Message(1, st).Message(2, group)

	var nodes []model.Node

	assert.NotPanics(t, func() {
		var err error
		nodes, _, _, err = parsePrimitiveBlock(block.Bytes())
		assert.NoError(t, err)
	})

	if assert.Len(t, nodes, 1) {
		assert.Equal(t, "", nodes[0].Tags["amenity"])
	}
}

func TestParsePrimitiveBlockWaysDeltaRefs(t *testing.T) {
	st := stringTable("")

	way := pbtest.NewBuilder().
		Int64(1, 5).
		PackedZigZag(8, []int64{10, 5, -3})

	group := pbtest.NewBuilder().Message(3, way)
	block := pbtest.NewBuilder().Message(1, st).Message(2, group)

	_, ways, _, err := parsePrimitiveBlock(block.Bytes())
	assert.NoError(t, err)

	if assert.Len(t, ways, 1) {
		assert.Equal(t, model.ID(5), ways[0].ID)
		assert.Equal(t, []model.ID{10, 15, 12}, ways[0].NodeIDs)
	}
}

func TestParsePrimitiveBlockRelationMembers(t *testing.T) {
	st := stringTable("", "outer", "inner")

	rel := pbtest.NewBuilder().
		Int64(1, 42).
		PackedZigZag(9, []int64{10, 5}).
		PackedVarint(10, []uint64{0, 1}).
		PackedVarint(8, []uint64{1, 2})

	group := pbtest.NewBuilder().Message(4, rel)
	block := pbtest.NewBuilder().Message(1, st).Message(2, group)

	_, _, relations, err := parsePrimitiveBlock(block.Bytes())
	assert.NoError(t, err)

	if assert.Len(t, relations, 1) {
		r := relations[0]
		assert.Equal(t, model.ID(42), r.ID)

		if assert.Len(t, r.Members, 2) {
			assert.Equal(t, model.ID(10), r.Members[0].ID)
			assert.Equal(t, model.NODE, r.Members[0].Type)
			assert.Equal(t, "outer", r.Members[0].Role)

			assert.Equal(t, model.ID(15), r.Members[1].ID)
			assert.Equal(t, model.WAY, r.Members[1].Type)
			assert.Equal(t, "inner", r.Members[1].Role)
		}
	}
}

func TestParsePrimitiveBlockRowWiseNodeInfo(t *testing.T) {
	st := stringTable("", "alice")

	info := pbtest.NewBuilder().
		Int32(1, 3).
		Int64(2, 1000).
		Int64(3, 77).
		Int32(4, 42).
		Int32(5, 1)

	node := pbtest.NewBuilder().
		ZigZag(1, 9).
		Message(4, info)

	group := pbtest.NewBuilder().Message(1, node)
	block := pbtest.NewBuilder().Message(1, st).Message(2, group).Int32(18, 1000)

	nodes, _, _, err := parsePrimitiveBlock(block.Bytes())
	assert.NoError(t, err)

	if assert.Len(t, nodes, 1) {
		n := nodes[0]
		assert.Equal(t, model.ID(9), n.ID)

		if assert.NotNil(t, n.Info) {
			assert.Equal(t, int32(3), n.Info.Version)
			assert.Equal(t, int64(77), n.Info.Changeset)
			assert.Equal(t, model.UID(42), n.Info.UID)
			assert.Equal(t, "alice", n.Info.User)
			assert.Equal(t, int64(1000000), n.Info.Timestamp.UnixMilli())
		}
	}
}
