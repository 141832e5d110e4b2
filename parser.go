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

// Package osmpbf provides a streaming, synchronous reader for the OSM
// PBF (.osm.pbf) file format: the fileblock framing layer, the
// PrimitiveBlock entity decoder, and an optional random-access index
// over a file's "OSMData" fileblocks.
//
// A Parser owns exactly one open file handle and is not safe for
// concurrent use; every operation blocks the calling goroutine until it
// completes. Callers that want parallelism should open independent
// Parsers over the same path, one per goroutine (see cmd/osmpbf-info for
// an example using independent Parsers fanned out with destel/rill).
package osmpbf

import (
	"fmt"
	"os"
	"strings"

	"github.com/tilecore/osmpbf/internal/core"
	"github.com/tilecore/osmpbf/model"
)

const suffix = ".osm.pbf"

// Parser decodes a single .osm.pbf file. The zero value is not usable;
// construct one with Open.
type Parser struct {
	f    *os.File
	opts parserOptions

	buf  *core.PooledBuffer
	zbuf *core.PooledBuffer

	header *model.Header

	pos   int
	index []FileblockDescriptor

	nodes     []model.Node
	ways      []model.Way
	relations []model.Relation
}

// Open opens path, which must end in the conventional ".osm.pbf" suffix,
// decodes its single "OSMHeader" fileblock, builds the random-access
// index over every remaining "OSMData" fileblock, and decodes the first
// of them. A file with no "OSMData" fileblocks at all opens successfully
// with Size() == 0 and Pos() == -1. Open releases the file handle before
// returning an error.
func Open(path string, opts ...ParserOption) (*Parser, error) {
	if !strings.HasSuffix(path, suffix) {
		return nil, fmt.Errorf("osmpbf: %q: %w", path, ErrInvalidSuffix)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("osmpbf: opening %q: %w", path, err)
	}

	o := defaultParserOptions
	for _, opt := range opts {
		opt(&o)
	}

	p := &Parser{
		f:    f,
		opts: o,
		buf:  core.NewPooledBuffer(),
		zbuf: core.NewPooledBuffer(),
		pos:  -1,
	}

	p.buf.Grow(o.bufferSize)
	p.zbuf.Grow(o.bufferSize)

	header, err := p.readHeaderBlock()
	if err != nil {
		_ = p.Close()
		return nil, err
	}

	p.header = header

	index, err := p.BuildIndex()
	if err != nil {
		_ = p.Close()
		return nil, err
	}

	if len(index) > 0 {
		if err := p.decodeNextBlock(); err != nil {
			_ = p.Close()
			return nil, err
		}

		p.pos = 0
	}

	return p, nil
}

func (p *Parser) readHeaderBlock() (*model.Header, error) {
	typ, payload, err := p.readFileblock()
	if err != nil {
		return nil, fmt.Errorf("osmpbf: reading file header: %w", err)
	}

	if typ != "OSMHeader" {
		return nil, fmt.Errorf("osmpbf: first fileblock is %q: %w", typ, ErrWrongBlockType)
	}

	return parseOSMHeader(payload)
}

// Header returns the file's header block: its bounding box, feature
// flags, and provenance metadata.
func (p *Parser) Header() *model.Header {
	return p.header
}

// Close releases the Parser's file handle and pooled buffers. It is safe
// to call Close after a failed Open did not return a Parser — in that
// case Open has already released everything itself.
func (p *Parser) Close() error {
	var err error

	if p.buf != nil {
		_ = p.buf.Close()
	}

	if p.zbuf != nil {
		_ = p.zbuf.Close()
	}

	if p.f != nil {
		err = p.f.Close()
	}

	return err
}
