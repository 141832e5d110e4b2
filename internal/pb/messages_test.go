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

	"github.com/tilecore/osmpbf/internal/pb/pbtest"
)

func TestHeaderBlockUnmarshal(t *testing.T) {
	bbox := pbtest.NewBuilder().
		ZigZag(1, -5114820).
		ZigZag(2, 3354370).
		ZigZag(3, 51693440).
		ZigZag(4, 51285540)

	hb := pbtest.NewBuilder().
		Message(1, bbox).
		String(4, "OsmSchema-V0.6").
		String(4, "DenseNodes").
		String(5, "Sort.Type_then_ID").
		String(16, "osmium/1.14.0").
		Int64(32, 1730150490)

	h := &HeaderBlock{}
	assert.NoError(t, h.Unmarshal(hb.Bytes()))

	assert.Equal(t, []string{"OsmSchema-V0.6", "DenseNodes"}, h.RequiredFeatures)
	assert.Equal(t, []string{"Sort.Type_then_ID"}, h.OptionalFeatures)
	assert.Equal(t, "osmium/1.14.0", h.Writingprogram)
	assert.True(t, h.HasReplicationTimestamp)
	assert.Equal(t, int64(1730150490), h.OsmosisReplicationTimestamp)

	if assert.NotNil(t, h.Bbox) {
		assert.Equal(t, int64(-5114820), h.Bbox.Left)
		assert.Equal(t, int64(51693440), h.Bbox.Top)
	}
}

func TestDenseNodesUnmarshalDeltaColumns(t *testing.T) {
	dense := pbtest.NewBuilder().
		PackedZigZag(1, []int64{1, 1, 2}).   // ids: 1, 2, 4
		PackedZigZag(8, []int64{10, 5, -3}). // lats: 10, 15, 12
		PackedZigZag(9, []int64{20, -2, 1}). // lons: 20, 18, 19
		PackedInt32(10, []int32{1, 2, 0, 0})

	dn := &DenseNodes{}
	assert.NoError(t, dn.Unmarshal(dense.Bytes()))

	assert.Equal(t, []int64{1, 1, 2}, dn.ID)
	assert.Equal(t, []int64{10, 5, -3}, dn.Lat)
	assert.Equal(t, []int64{20, -2, 1}, dn.Lon)
	assert.Equal(t, []int32{1, 2, 0, 0}, dn.KeysVals)
}

func TestPrimitiveBlockMissingStringtable(t *testing.T) {
	block := &PrimitiveBlock{}
	err := block.Unmarshal(pbtest.NewBuilder().Int32(17, 100).Bytes())
	assert.ErrorIs(t, err, ErrInvalidWire)
}

func TestPrimitiveBlockGranularityDefaults(t *testing.T) {
	st := pbtest.NewBuilder().Bytes_(1, []byte{}).Bytes_(1, []byte("highway"))

	b := pbtest.NewBuilder().Message(1, st)

	block := &PrimitiveBlock{}
	assert.NoError(t, block.Unmarshal(b.Bytes()))
	assert.Equal(t, DefaultGranularity, block.Granularity)
	assert.Equal(t, DefaultDateGranularity, block.DateGranularity)
	assert.Equal(t, [][]byte{{}, []byte("highway")}, block.Stringtable.S)
}

func TestWayRefsDeltaEncoded(t *testing.T) {
	w := pbtest.NewBuilder().
		Int64(1, 100).
		PackedZigZag(8, []int64{5, 3, -1})

	way := &Way{}
	assert.NoError(t, way.Unmarshal(w.Bytes()))
	assert.Equal(t, int64(100), way.ID)
	assert.Equal(t, []int64{5, 3, -1}, way.Refs)
}

func TestRelationMemberColumns(t *testing.T) {
	r := pbtest.NewBuilder().
		Int64(1, 7).
		PackedZigZag(9, []int64{10, 5}).
		PackedVarint(10, []uint64{0, 1})

	rel := &Relation{}
	assert.NoError(t, rel.Unmarshal(r.Bytes()))
	assert.Equal(t, []int64{10, 5}, rel.Memids)
	assert.Equal(t, []Relation_MemberType{Relation_NODE, Relation_WAY}, rel.Types)
}
