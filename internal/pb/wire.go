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

// Package pb is the message layer for the OSM fileformat.proto and
// osmformat.proto schemas. It plays the part that generated protoc-go
// bindings play everywhere else: a typed view over unpacked protobuf
// messages. It is hand-written against the wire primitives in
// google.golang.org/protobuf/encoding/protowire rather than produced by
// protoc; its surface is plain message structs with exported fields and
// an Unmarshal method each, without generated code's Get* accessors.
package pb

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrInvalidWire is returned when a message's bytes cannot be parsed as a
// well-formed sequence of protobuf fields.
var ErrInvalidWire = errors.New("pb: invalid wire data")

// field is a single decoded protobuf field: its number, wire type, and the
// bytes needed to interpret its value. For varint and fixed-width fields,
// buf holds exactly the encoded value; for length-delimited fields, buf
// holds the field's content (not the length prefix).
type field struct {
	num protowire.Number
	typ protowire.Type
	buf []byte
}

// forEachField walks the top-level fields of a protobuf message, invoking
// fn for each one in wire order. Unknown wire types are skipped using
// protowire's generic field-value consumer, the same tolerance real
// generated code has for fields the reader doesn't recognize.
func forEachField(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrInvalidWire, protowire.ParseError(n))
		}
		b = b[n:]

		var payload []byte

		switch typ {
		case protowire.VarintType:
			_, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("%w: %v", ErrInvalidWire, protowire.ParseError(n))
			}

			payload = b[:n]
			b = b[n:]

		case protowire.Fixed32Type:
			_, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return fmt.Errorf("%w: %v", ErrInvalidWire, protowire.ParseError(n))
			}

			payload = b[:n]
			b = b[n:]

		case protowire.Fixed64Type:
			_, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return fmt.Errorf("%w: %v", ErrInvalidWire, protowire.ParseError(n))
			}

			payload = b[:n]
			b = b[n:]

		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return fmt.Errorf("%w: %v", ErrInvalidWire, protowire.ParseError(n))
			}

			payload = v
			b = b[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("%w: %v", ErrInvalidWire, protowire.ParseError(n))
			}

			b = b[n:]

			continue
		}

		if err := fn(field{num: num, typ: typ, buf: payload}); err != nil {
			return err
		}
	}

	return nil
}

func (f field) varint() uint64 {
	v, _ := protowire.ConsumeVarint(f.buf)
	return v
}

func (f field) int32() int32  { return int32(f.varint()) }
func (f field) int64() int64  { return int64(f.varint()) }
func (f field) uint32() uint32 { return uint32(f.varint()) }
func (f field) zigzag() int64 { return protowire.DecodeZigZag(f.varint()) }
func (f field) bytes() []byte { return append([]byte(nil), f.buf...) }
func (f field) str() string   { return string(f.buf) }

// eachPackedVarint iterates every varint in a length-delimited (packed)
// field, or the single varint of an unpacked occurrence, depending on how
// the field arrived on the wire. Protobuf allows either encoding for a
// repeated scalar, so callers must tolerate both.
func (f field) eachPackedVarint(fn func(uint64)) error {
	if f.typ == protowire.VarintType {
		fn(f.varint())
		return nil
	}

	b := f.buf
	for len(b) > 0 {
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrInvalidWire, protowire.ParseError(n))
		}

		fn(v)
		b = b[n:]
	}

	return nil
}
