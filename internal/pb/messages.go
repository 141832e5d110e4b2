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

import "fmt"

// field numbers, lifted directly from fileformat.proto and osmformat.proto.
const (
	fieldBlobHeaderType      = 1
	fieldBlobHeaderIndexdata = 2
	fieldBlobHeaderDatasize  = 3

	fieldBlobRaw      = 1
	fieldBlobRawSize  = 2
	fieldBlobZlibData = 3
	fieldBlobLzmaData = 4

	fieldBBoxLeft   = 1
	fieldBBoxRight  = 2
	fieldBBoxTop    = 3
	fieldBBoxBottom = 4

	fieldHeaderBBox             = 1
	fieldHeaderRequiredFeatures = 4
	fieldHeaderOptionalFeatures = 5
	fieldHeaderWritingprogram   = 16
	fieldHeaderSource           = 17
	fieldHeaderRepTimestamp     = 32
	fieldHeaderRepSeqNumber     = 33
	fieldHeaderRepBaseURL       = 34

	fieldStringTableS = 1

	fieldInfoVersion   = 1
	fieldInfoTimestamp = 2
	fieldInfoChangeset = 3
	fieldInfoUID       = 4
	fieldInfoUserSID   = 5

	fieldDenseInfoVersion   = 1
	fieldDenseInfoTimestamp = 2
	fieldDenseInfoChangeset = 3
	fieldDenseInfoUID       = 4
	fieldDenseInfoUserSID   = 5

	fieldDenseNodesID        = 1
	fieldDenseNodesDenseinfo = 5
	fieldDenseNodesLat       = 8
	fieldDenseNodesLon       = 9
	fieldDenseNodesKeysVals  = 10

	fieldNodeID   = 1
	fieldNodeKeys = 2
	fieldNodeVals = 3
	fieldNodeInfo = 4
	fieldNodeLat  = 8
	fieldNodeLon  = 9

	fieldWayID   = 1
	fieldWayKeys = 2
	fieldWayVals = 3
	fieldWayInfo = 4
	fieldWayRefs = 8

	fieldRelationID        = 1
	fieldRelationKeys      = 2
	fieldRelationVals      = 3
	fieldRelationInfo      = 4
	fieldRelationRolesSID  = 8
	fieldRelationMemids    = 9
	fieldRelationTypes     = 10

	fieldGroupNodes     = 1
	fieldGroupDense     = 2
	fieldGroupWays      = 3
	fieldGroupRelations = 4

	fieldBlockStringtable     = 1
	fieldBlockPrimitivegroup  = 2
	fieldBlockGranularity     = 17
	fieldBlockDateGranularity = 18
	fieldBlockLatOffset       = 19
	fieldBlockLonOffset       = 20
)

// defaults per osmformat.proto.
const (
	DefaultGranularity     int32 = 100
	DefaultDateGranularity int32 = 1000
)

// BlobHeader precedes every Blob on the wire.
type BlobHeader struct {
	Type      string
	Indexdata []byte
	Datasize  int32
}

func (h *BlobHeader) Unmarshal(b []byte) error {
	return forEachField(b, func(f field) error {
		switch f.num {
		case fieldBlobHeaderType:
			h.Type = f.str()
		case fieldBlobHeaderIndexdata:
			h.Indexdata = f.bytes()
		case fieldBlobHeaderDatasize:
			h.Datasize = f.int32()
		}

		return nil
	})
}

// Blob carries exactly one compressed (or raw) representation of a
// fileblock's payload.
type Blob struct {
	Raw       []byte
	HasRaw    bool
	RawSize   int32
	ZlibData  []byte
	HasZlib   bool
	LzmaData  []byte
	HasLzma   bool
}

func (b *Blob) Unmarshal(buf []byte) error {
	return forEachField(buf, func(f field) error {
		switch f.num {
		case fieldBlobRaw:
			b.Raw = f.bytes()
			b.HasRaw = true
		case fieldBlobRawSize:
			b.RawSize = f.int32()
		case fieldBlobZlibData:
			b.ZlibData = f.bytes()
			b.HasZlib = true
		case fieldBlobLzmaData:
			b.LzmaData = f.bytes()
			b.HasLzma = true
		}

		return nil
	})
}

// HeaderBBox is the file-level bounding box, stored in nanodegrees.
type HeaderBBox struct {
	Left, Right, Top, Bottom int64
}

func (bb *HeaderBBox) Unmarshal(b []byte) error {
	return forEachField(b, func(f field) error {
		switch f.num {
		case fieldBBoxLeft:
			bb.Left = f.zigzag()
		case fieldBBoxRight:
			bb.Right = f.zigzag()
		case fieldBBoxTop:
			bb.Top = f.zigzag()
		case fieldBBoxBottom:
			bb.Bottom = f.zigzag()
		}

		return nil
	})
}

// HeaderBlock is the sole payload of the file's "OSMHeader" fileblock.
type HeaderBlock struct {
	Bbox                             *HeaderBBox
	RequiredFeatures                 []string
	OptionalFeatures                 []string
	Writingprogram                   string
	Source                           string
	OsmosisReplicationTimestamp      int64
	HasReplicationTimestamp          bool
	OsmosisReplicationSequenceNumber int64
	HasReplicationSequenceNumber     bool
	OsmosisReplicationBaseURL        string
}

func (h *HeaderBlock) Unmarshal(b []byte) error {
	return forEachField(b, func(f field) error {
		switch f.num {
		case fieldHeaderBBox:
			h.Bbox = &HeaderBBox{}
			return h.Bbox.Unmarshal(f.buf)
		case fieldHeaderRequiredFeatures:
			h.RequiredFeatures = append(h.RequiredFeatures, f.str())
		case fieldHeaderOptionalFeatures:
			h.OptionalFeatures = append(h.OptionalFeatures, f.str())
		case fieldHeaderWritingprogram:
			h.Writingprogram = f.str()
		case fieldHeaderSource:
			h.Source = f.str()
		case fieldHeaderRepTimestamp:
			h.OsmosisReplicationTimestamp = f.int64()
			h.HasReplicationTimestamp = true
		case fieldHeaderRepSeqNumber:
			h.OsmosisReplicationSequenceNumber = f.int64()
			h.HasReplicationSequenceNumber = true
		case fieldHeaderRepBaseURL:
			h.OsmosisReplicationBaseURL = f.str()
		}

		return nil
	})
}

// StringTable is the per-block dictionary every tag key, value, role, and
// username is indexed into. Index 0 is reserved and always empty.
type StringTable struct {
	S [][]byte
}

func (st *StringTable) Unmarshal(b []byte) error {
	return forEachField(b, func(f field) error {
		if f.num == fieldStringTableS {
			st.S = append(st.S, f.bytes())
		}

		return nil
	})
}

// Info is the per-entity metadata attached to row-wise nodes, ways, and
// relations.
type Info struct {
	Version   int32
	Timestamp int64
	Changeset int64
	UID       int32
	UserSID   int32
}

func (i *Info) Unmarshal(b []byte) error {
	i.Version = -1

	return forEachField(b, func(f field) error {
		switch f.num {
		case fieldInfoVersion:
			i.Version = f.int32()
		case fieldInfoTimestamp:
			i.Timestamp = f.int64()
		case fieldInfoChangeset:
			i.Changeset = f.int64()
		case fieldInfoUID:
			i.UID = f.int32()
		case fieldInfoUserSID:
			i.UserSID = f.int32()
		}

		return nil
	})
}

// DenseInfo is the columnar twin of Info used by DenseNodes: every slice
// is delta-encoded (except Version) and indexed in parallel with
// DenseNodes.Id.
type DenseInfo struct {
	Version   []int32
	Timestamp []int64
	Changeset []int64
	UID       []int32
	UserSID   []int32
}

func (di *DenseInfo) Unmarshal(b []byte) error {
	return forEachField(b, func(f field) error {
		switch f.num {
		case fieldDenseInfoVersion:
			return f.eachPackedVarint(func(v uint64) {
				di.Version = append(di.Version, int32(v))
			})
		case fieldDenseInfoTimestamp:
			return f.eachPackedVarint(func(v uint64) {
				di.Timestamp = append(di.Timestamp, decodeZigZag(v))
			})
		case fieldDenseInfoChangeset:
			return f.eachPackedVarint(func(v uint64) {
				di.Changeset = append(di.Changeset, decodeZigZag(v))
			})
		case fieldDenseInfoUID:
			return f.eachPackedVarint(func(v uint64) {
				di.UID = append(di.UID, int32(decodeZigZag(v)))
			})
		case fieldDenseInfoUserSID:
			return f.eachPackedVarint(func(v uint64) {
				di.UserSID = append(di.UserSID, int32(decodeZigZag(v)))
			})
		}

		return nil
	})
}

// DenseNodes is the columnar encoding of a group of nodes: every array
// below (except KeysVals) is delta-encoded and the same length as Id.
type DenseNodes struct {
	ID        []int64
	Denseinfo *DenseInfo
	Lat       []int64
	Lon       []int64
	KeysVals  []int32
}

func (dn *DenseNodes) Unmarshal(b []byte) error {
	return forEachField(b, func(f field) error {
		switch f.num {
		case fieldDenseNodesID:
			return f.eachPackedVarint(func(v uint64) {
				dn.ID = append(dn.ID, decodeZigZag(v))
			})
		case fieldDenseNodesDenseinfo:
			dn.Denseinfo = &DenseInfo{}
			return dn.Denseinfo.Unmarshal(f.buf)
		case fieldDenseNodesLat:
			return f.eachPackedVarint(func(v uint64) {
				dn.Lat = append(dn.Lat, decodeZigZag(v))
			})
		case fieldDenseNodesLon:
			return f.eachPackedVarint(func(v uint64) {
				dn.Lon = append(dn.Lon, decodeZigZag(v))
			})
		case fieldDenseNodesKeysVals:
			return f.eachPackedVarint(func(v uint64) {
				dn.KeysVals = append(dn.KeysVals, int32(v))
			})
		}

		return nil
	})
}

// Node is a row-wise encoded point.
type Node struct {
	ID   int64
	Keys []uint32
	Vals []uint32
	Info *Info
	Lat  int64
	Lon  int64
}

func (n *Node) Unmarshal(b []byte) error {
	return forEachField(b, func(f field) error {
		switch f.num {
		case fieldNodeID:
			n.ID = f.zigzag()
		case fieldNodeKeys:
			return f.eachPackedVarint(func(v uint64) { n.Keys = append(n.Keys, uint32(v)) })
		case fieldNodeVals:
			return f.eachPackedVarint(func(v uint64) { n.Vals = append(n.Vals, uint32(v)) })
		case fieldNodeInfo:
			n.Info = &Info{}
			return n.Info.Unmarshal(f.buf)
		case fieldNodeLat:
			n.Lat = f.zigzag()
		case fieldNodeLon:
			n.Lon = f.zigzag()
		}

		return nil
	})
}

// Way is an ordered list of node references.
type Way struct {
	ID   int64
	Keys []uint32
	Vals []uint32
	Info *Info
	Refs []int64
}

func (w *Way) Unmarshal(b []byte) error {
	return forEachField(b, func(f field) error {
		switch f.num {
		case fieldWayID:
			w.ID = f.int64()
		case fieldWayKeys:
			return f.eachPackedVarint(func(v uint64) { w.Keys = append(w.Keys, uint32(v)) })
		case fieldWayVals:
			return f.eachPackedVarint(func(v uint64) { w.Vals = append(w.Vals, uint32(v)) })
		case fieldWayInfo:
			w.Info = &Info{}
			return w.Info.Unmarshal(f.buf)
		case fieldWayRefs:
			return f.eachPackedVarint(func(v uint64) { w.Refs = append(w.Refs, decodeZigZag(v)) })
		}

		return nil
	})
}

// Relation_MemberType enumerates the three kinds of relation member.
type Relation_MemberType int32

const (
	Relation_NODE     Relation_MemberType = 0
	Relation_WAY      Relation_MemberType = 1
	Relation_RELATION Relation_MemberType = 2
)

// Relation documents a grouping of nodes, ways, and/or other relations.
type Relation struct {
	ID       int64
	Keys     []uint32
	Vals     []uint32
	Info     *Info
	RolesSID []int32
	Memids   []int64
	Types    []Relation_MemberType
}

func (r *Relation) Unmarshal(b []byte) error {
	return forEachField(b, func(f field) error {
		switch f.num {
		case fieldRelationID:
			r.ID = f.int64()
		case fieldRelationKeys:
			return f.eachPackedVarint(func(v uint64) { r.Keys = append(r.Keys, uint32(v)) })
		case fieldRelationVals:
			return f.eachPackedVarint(func(v uint64) { r.Vals = append(r.Vals, uint32(v)) })
		case fieldRelationInfo:
			r.Info = &Info{}
			return r.Info.Unmarshal(f.buf)
		case fieldRelationRolesSID:
			return f.eachPackedVarint(func(v uint64) { r.RolesSID = append(r.RolesSID, int32(v)) })
		case fieldRelationMemids:
			return f.eachPackedVarint(func(v uint64) { r.Memids = append(r.Memids, decodeZigZag(v)) })
		case fieldRelationTypes:
			return f.eachPackedVarint(func(v uint64) {
				r.Types = append(r.Types, Relation_MemberType(v))
			})
		}

		return nil
	})
}

// PrimitiveGroup holds one homogeneous batch of entities; a well-formed
// file never mixes kinds within a group, but the wire format does not
// forbid it, so every field is checked.
type PrimitiveGroup struct {
	Nodes     []*Node
	Dense     *DenseNodes
	Ways      []*Way
	Relations []*Relation
}

func (g *PrimitiveGroup) Unmarshal(b []byte) error {
	return forEachField(b, func(f field) error {
		switch f.num {
		case fieldGroupNodes:
			n := &Node{}
			if err := n.Unmarshal(f.buf); err != nil {
				return err
			}

			g.Nodes = append(g.Nodes, n)
		case fieldGroupDense:
			g.Dense = &DenseNodes{}
			return g.Dense.Unmarshal(f.buf)
		case fieldGroupWays:
			w := &Way{}
			if err := w.Unmarshal(f.buf); err != nil {
				return err
			}

			g.Ways = append(g.Ways, w)
		case fieldGroupRelations:
			r := &Relation{}
			if err := r.Unmarshal(f.buf); err != nil {
				return err
			}

			g.Relations = append(g.Relations, r)
		}

		return nil
	})
}

// PrimitiveBlock is the payload of every "OSMData" fileblock.
type PrimitiveBlock struct {
	Stringtable     *StringTable
	Primitivegroup  []*PrimitiveGroup
	Granularity     int32
	DateGranularity int32
	LatOffset       int64
	LonOffset       int64
}

func (pb *PrimitiveBlock) Unmarshal(b []byte) error {
	pb.Granularity = DefaultGranularity
	pb.DateGranularity = DefaultDateGranularity

	err := forEachField(b, func(f field) error {
		switch f.num {
		case fieldBlockStringtable:
			pb.Stringtable = &StringTable{}
			return pb.Stringtable.Unmarshal(f.buf)
		case fieldBlockPrimitivegroup:
			g := &PrimitiveGroup{}
			if err := g.Unmarshal(f.buf); err != nil {
				return err
			}

			pb.Primitivegroup = append(pb.Primitivegroup, g)
		case fieldBlockGranularity:
			pb.Granularity = f.int32()
		case fieldBlockDateGranularity:
			pb.DateGranularity = f.int32()
		case fieldBlockLatOffset:
			pb.LatOffset = f.int64()
		case fieldBlockLonOffset:
			pb.LonOffset = f.int64()
		}

		return nil
	})
	if err != nil {
		return err
	}

	if pb.Stringtable == nil {
		return fmt.Errorf("%w: primitive block missing stringtable", ErrInvalidWire)
	}

	return nil
}

func decodeZigZag(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}
