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
	"context"
	"fmt"
	"io"

	"github.com/tilecore/osmpbf/model"
)

// decodeNextBlock reads and decodes the single fileblock at the current
// file position into p.nodes/p.ways/p.relations, without touching p.pos.
// It is the one path both Advance and Seek funnel through.
func (p *Parser) decodeNextBlock() error {
	typ, payload, err := p.readFileblock()
	if err != nil {
		return err
	}

	if typ != "OSMData" {
		return fmt.Errorf("osmpbf: encountered %q: %w", typ, ErrWrongBlockType)
	}

	nodes, ways, relations, err := parsePrimitiveBlock(payload)
	if err != nil {
		return fmt.Errorf("osmpbf: decoding fileblock %d: %w", p.pos+1, err)
	}

	p.nodes, p.ways, p.relations = nodes, ways, relations

	return nil
}

// Advance decodes the next "OSMData" fileblock in the file, making its
// nodes, ways, and relations available via Nodes/Ways/Relations/Data. It
// reports false with a nil error at end of file, matching the original
// C parser's parse_osm_data semantics where exhaustion is not an error.
func (p *Parser) Advance() (bool, error) {
	if err := p.decodeNextBlock(); err != nil {
		if err == io.EOF {
			return false, nil
		}

		return false, err
	}

	p.pos++

	return true, nil
}

// Nodes returns the nodes decoded by the most recent successful Advance
// or Seek call.
func (p *Parser) Nodes() []model.Node { return p.nodes }

// Ways returns the ways decoded by the most recent successful Advance or
// Seek call.
func (p *Parser) Ways() []model.Way { return p.ways }

// Relations returns the relations decoded by the most recent successful
// Advance or Seek call.
func (p *Parser) Relations() []model.Relation { return p.relations }

// Data returns all three entity slices decoded by the most recent
// successful Advance or Seek call, for callers that want the whole
// fileblock at once rather than one kind at a time.
func (p *Parser) Data() ([]model.Node, []model.Way, []model.Relation) {
	return p.nodes, p.ways, p.relations
}

// visitCurrent invokes fn with every entity of the fileblock at the
// parser's current position, in file order: all nodes, then all ways,
// then all relations.
func (p *Parser) visitCurrent(fn func(model.Entity) error) error {
	for _, n := range p.nodes {
		if err := fn(n); err != nil {
			return err
		}
	}

	for _, w := range p.ways {
		if err := fn(w); err != nil {
			return err
		}
	}

	for _, r := range p.relations {
		if err := fn(r); err != nil {
			return err
		}
	}

	return nil
}

// Iterate invokes fn with every entity of the fileblock already decoded
// at the parser's current position (populated by Open or a prior Seek),
// then repeatedly calls Advance and does the same for each fileblock it
// decodes, in file order. It stops at the first error returned by fn or
// Advance, or at end of file.
func (p *Parser) Iterate(ctx context.Context, fn func(model.Entity) error) error {
	if p.pos >= 0 {
		if err := p.visitCurrent(fn); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		more, err := p.Advance()
		if err != nil {
			return err
		}

		if !more {
			return nil
		}

		if err := p.visitCurrent(fn); err != nil {
			return err
		}
	}
}
