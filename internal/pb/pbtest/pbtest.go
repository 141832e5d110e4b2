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

// Package pbtest is a minimal protobuf byte-string builder used only by
// this module's own tests, to construct synthetic fileblocks without a
// dependency on a real .osm.pbf fixture on disk. It is the write-side
// mirror of internal/pb's hand-written reader: every method appends one
// field's wire encoding to a growing byte slice.
package pbtest

import "google.golang.org/protobuf/encoding/protowire"

// Builder accumulates the wire bytes of a single protobuf message.
type Builder struct {
	buf []byte
}

// NewBuilder returns an empty message builder.
func NewBuilder() *Builder { return &Builder{} }

// Bytes returns the accumulated message bytes.
func (b *Builder) Bytes() []byte { return b.buf }

func (b *Builder) tag(num protowire.Number, typ protowire.Type) {
	b.buf = protowire.AppendTag(b.buf, num, typ)
}

// Varint appends a varint-typed field.
func (b *Builder) Varint(num protowire.Number, v uint64) *Builder {
	b.tag(num, protowire.VarintType)
	b.buf = protowire.AppendVarint(b.buf, v)

	return b
}

// Int32 appends a varint-typed field holding a plain (non-zigzag) int32.
func (b *Builder) Int32(num protowire.Number, v int32) *Builder {
	return b.Varint(num, uint64(uint32(v)))
}

// Int64 appends a varint-typed field holding a plain (non-zigzag) int64.
func (b *Builder) Int64(num protowire.Number, v int64) *Builder {
	return b.Varint(num, uint64(v))
}

// ZigZag appends a varint-typed field holding a zigzag-encoded int64, the
// encoding OSM PBF uses for every delta-coded column.
func (b *Builder) ZigZag(num protowire.Number, v int64) *Builder {
	return b.Varint(num, protowire.EncodeZigZag(v))
}

// Bytes appends a length-delimited field.
func (b *Builder) Bytes_(num protowire.Number, v []byte) *Builder {
	b.tag(num, protowire.BytesType)
	b.buf = protowire.AppendBytes(b.buf, v)

	return b
}

// String appends a length-delimited field holding a UTF-8 string.
func (b *Builder) String(num protowire.Number, v string) *Builder {
	return b.Bytes_(num, []byte(v))
}

// Message appends a length-delimited field holding a nested message's
// already-built bytes.
func (b *Builder) Message(num protowire.Number, nested *Builder) *Builder {
	return b.Bytes_(num, nested.Bytes())
}

// PackedVarint appends a length-delimited field holding a packed run of
// varints — the encoding real OSM PBF writers use for repeated scalar
// columns such as DenseNodes.id or Way.refs.
func (b *Builder) PackedVarint(num protowire.Number, vs []uint64) *Builder {
	var packed []byte
	for _, v := range vs {
		packed = protowire.AppendVarint(packed, v)
	}

	return b.Bytes_(num, packed)
}

// PackedZigZag appends a packed run of zigzag-encoded varints.
func (b *Builder) PackedZigZag(num protowire.Number, vs []int64) *Builder {
	packed := make([]uint64, len(vs))
	for i, v := range vs {
		packed[i] = protowire.EncodeZigZag(v)
	}

	return b.PackedVarint(num, packed)
}

// PackedInt32 appends a packed run of plain (non-zigzag) int32s, used for
// the keys_vals column of DenseNodes.
func (b *Builder) PackedInt32(num protowire.Number, vs []int32) *Builder {
	packed := make([]uint64, len(vs))
	for i, v := range vs {
		packed[i] = uint64(uint32(v))
	}

	return b.PackedVarint(num, packed)
}
