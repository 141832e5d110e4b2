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
	"time"

	"github.com/tilecore/osmpbf/internal/pb"
	"github.com/tilecore/osmpbf/model"
)

// parsePrimitiveBlock decodes the payload of an "OSMData" fileblock into
// its constituent nodes, ways, and relations.
func parsePrimitiveBlock(buffer []byte) (nodes []model.Node, ways []model.Way, relations []model.Relation, err error) {
	block := &pb.PrimitiveBlock{}
	if err := block.Unmarshal(buffer); err != nil {
		return nil, nil, nil, err
	}

	c := newBlockContext(block)

	for _, pg := range block.Primitivegroup {
		nodes = append(nodes, c.decodeNodes(pg.Nodes)...)
		nodes = append(nodes, c.decodeDenseNodes(pg.Dense)...)
		ways = append(ways, c.decodeWays(pg.Ways)...)
		relations = append(relations, c.decodeRelations(pg.Relations)...)
	}

	return nodes, ways, relations, nil
}

// blockContext carries the per-block decoding state every entity in a
// PrimitiveBlock is decoded against: the shared string table and the
// coordinate/timestamp scaling parameters.
type blockContext struct {
	strings         [][]byte
	granularity     int32
	latOffset       int64
	lonOffset       int64
	dateGranularity int32
}

func newBlockContext(block *pb.PrimitiveBlock) *blockContext {
	c := &blockContext{
		granularity:     block.Granularity,
		latOffset:       block.LatOffset,
		lonOffset:       block.LonOffset,
		dateGranularity: block.DateGranularity,
	}

	if block.Stringtable != nil {
		c.strings = block.Stringtable.S
	}

	return c
}

func (c *blockContext) str(i uint32) string {
	if int(i) >= len(c.strings) {
		return ""
	}

	return string(c.strings[i])
}

func (c *blockContext) toDegrees(lat, lon int64) (model.Degrees, model.Degrees) {
	return model.ToDegrees(c.latOffset, c.granularity, lat).Round7(),
		model.ToDegrees(c.lonOffset, c.granularity, lon).Round7()
}

func (c *blockContext) decodeNodes(nodes []*pb.Node) []model.Node {
	out := make([]model.Node, len(nodes))

	for i, n := range nodes {
		lat, lon := c.toDegrees(n.Lat, n.Lon)
		out[i] = model.Node{
			ID:   model.ID(n.ID),
			Tags: c.decodeTags(n.Keys, n.Vals),
			Info: c.decodeInfo(n.Info),
			Lat:  lat,
			Lon:  lon,
		}
	}

	return out
}

func (c *blockContext) decodeDenseNodes(dense *pb.DenseNodes) []model.Node {
	if dense == nil {
		return nil
	}

	out := make([]model.Node, len(dense.ID))

	tc := c.newTagsContext(dense.KeysVals)
	dic := c.newDenseInfoContext(dense.Denseinfo)

	var id, lat, lon int64

	for i := range dense.ID {
		id += dense.ID[i]

		if i < len(dense.Lat) {
			lat += dense.Lat[i]
		}

		if i < len(dense.Lon) {
			lon += dense.Lon[i]
		}

		decodedLat, decodedLon := c.toDegrees(lat, lon)

		out[i] = model.Node{
			ID:   model.ID(id),
			Tags: tc.decodeTags(),
			Info: dic.decodeInfo(i),
			Lat:  decodedLat,
			Lon:  decodedLon,
		}
	}

	return out
}

func (c *blockContext) decodeWays(ways []*pb.Way) []model.Way {
	out := make([]model.Way, len(ways))

	for i, w := range ways {
		nodeIDs := make([]model.ID, len(w.Refs))

		var ref int64

		for j, delta := range w.Refs {
			ref += delta
			nodeIDs[j] = model.ID(ref)
		}

		out[i] = model.Way{
			ID:      model.ID(w.ID),
			Tags:    c.decodeTags(w.Keys, w.Vals),
			Info:    c.decodeInfo(w.Info),
			NodeIDs: nodeIDs,
		}
	}

	return out
}

func (c *blockContext) decodeRelations(relations []*pb.Relation) []model.Relation {
	out := make([]model.Relation, len(relations))

	for i, r := range relations {
		out[i] = model.Relation{
			ID:      model.ID(r.ID),
			Tags:    c.decodeTags(r.Keys, r.Vals),
			Info:    c.decodeInfo(r.Info),
			Members: c.decodeMembers(r),
		}
	}

	return out
}

func (c *blockContext) decodeMembers(r *pb.Relation) []model.Member {
	members := make([]model.Member, len(r.Memids))

	var memid int64

	for i := range r.Memids {
		memid += r.Memids[i]

		var role string
		if i < len(r.RolesSID) {
			role = c.str(uint32(r.RolesSID[i]))
		}

		var typ model.EntityType
		if i < len(r.Types) {
			typ = decodeMemberType(r.Types[i])
		}

		members[i] = model.Member{
			ID:   model.ID(memid),
			Type: typ,
			Role: role,
		}
	}

	return members
}

func (c *blockContext) decodeTags(keyIDs, valIDs []uint32) map[string]string {
	if len(keyIDs) == 0 {
		return map[string]string{}
	}

	tags := make(map[string]string, len(keyIDs))

	for i, keyID := range keyIDs {
		var val uint32
		if i < len(valIDs) {
			val = valIDs[i]
		}

		tags[c.str(keyID)] = c.str(val)
	}

	return tags
}

func (c *blockContext) decodeInfo(info *pb.Info) *model.Info {
	if info == nil {
		return nil
	}

	i := &model.Info{
		Version:   info.Version,
		Timestamp: c.toTimestamp(info.Timestamp),
		Changeset: info.Changeset,
		UID:       model.UID(info.UID),
		User:      c.str(uint32(info.UserSID)),
	}

	return i
}

func (c *blockContext) toTimestamp(timestamp int64) time.Time {
	return toTimestamp(c.dateGranularity, timestamp)
}

// tagsContext walks the flat, zero-terminated keys_vals column DenseNodes
// uses to store every node's tag map back to back. Unlike the original C
// implementation this decoder is derived from, the bounds check against
// len(keyVals) happens before the value is read, not after — a
// zero-length or truncated keys_vals column can no longer read past the
// end of the slice.
type tagsContext struct {
	strings [][]byte
	i       int
	keyVals []int32
}

func (c *blockContext) newTagsContext(keyVals []int32) *tagsContext {
	return &tagsContext{strings: c.strings, keyVals: keyVals}
}

func (tc *tagsContext) decodeTags() map[string]string {
	tags := make(map[string]string)

	for tc.i < len(tc.keyVals) && tc.keyVals[tc.i] > 0 {
		key := tc.strAt(tc.keyVals[tc.i])

		var val string
		if tc.i+1 < len(tc.keyVals) {
			val = tc.strAt(tc.keyVals[tc.i+1])
		}

		tags[key] = val
		tc.i += 2
	}

	tc.i++

	return tags
}

func (tc *tagsContext) strAt(idx int32) string {
	if idx < 0 || int(idx) >= len(tc.strings) {
		return ""
	}

	return string(tc.strings[idx])
}

// denseInfoContext walks DenseInfo's parallel delta-encoded columns,
// reconstructing one model.Info per dense node. A DenseNodes group with
// no Denseinfo at all yields a nil *model.Info per node, matching the row-
// wise decoder's behavior for an absent Info field.
type denseInfoContext struct {
	present bool

	version   int32
	uid       int32
	timestamp int64
	changeset int64
	userSID   int32

	dateGranularity int32
	strings         [][]byte
	di              *pb.DenseInfo
}

func (c *blockContext) newDenseInfoContext(di *pb.DenseInfo) *denseInfoContext {
	return &denseInfoContext{
		present:         di != nil,
		dateGranularity: c.dateGranularity,
		strings:         c.strings,
		di:              di,
	}
}

func (dic *denseInfoContext) decodeInfo(i int) *model.Info {
	if !dic.present {
		return nil
	}

	di := dic.di

	if i < len(di.Version) {
		dic.version = di.Version[i]
	}

	if i < len(di.UID) {
		dic.uid += di.UID[i]
	}

	if i < len(di.Timestamp) {
		dic.timestamp += di.Timestamp[i]
	}

	if i < len(di.Changeset) {
		dic.changeset += di.Changeset[i]
	}

	if i < len(di.UserSID) {
		dic.userSID += di.UserSID[i]
	}

	var user string
	if int(dic.userSID) < len(dic.strings) {
		user = string(dic.strings[dic.userSID])
	}

	return &model.Info{
		Version:   dic.version,
		UID:       model.UID(dic.uid),
		Timestamp: toTimestamp(dic.dateGranularity, dic.timestamp),
		Changeset: dic.changeset,
		User:      user,
	}
}

// decodeMemberType converts the wire Relation_MemberType enum to the
// public model.EntityType enum.
func decodeMemberType(mt pb.Relation_MemberType) model.EntityType {
	switch mt {
	case pb.Relation_NODE:
		return model.NODE
	case pb.Relation_WAY:
		return model.WAY
	case pb.Relation_RELATION:
		return model.RELATION
	default:
		return model.NODE
	}
}

// toTimestamp converts a block-relative timestamp, expressed in units of
// dateGranularity milliseconds, to a UTC wall-clock time.
func toTimestamp(granularity int32, timestamp int64) time.Time {
	ms := timestamp * int64(granularity)
	return time.UnixMilli(ms).UTC()
}
