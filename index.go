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
	"fmt"
	"io"
)

// FileblockDescriptor locates one "OSMData" fileblock within the file: the
// byte offsets and sizes of its BlobHeader and Blob, as recorded by
// BuildIndex. Offsets are relative to the start of the file. HeaderOffset
// is where the fileblock's 4-byte length prefix starts and HeaderSize
// counts the BlobHeader bytes after it, so DataOffset == HeaderOffset + 4
// + HeaderSize.
type FileblockDescriptor struct {
	HeaderOffset int64
	HeaderSize   int64
	DataOffset   int64
	DataSize     int64
}

// BuildIndex performs a single forward pass over every remaining
// "OSMData" fileblock, recording its location without decoding its
// contents, then restores the file to the position it held before the
// call. The resulting index lets Seek jump directly to any block by
// ordinal without re-scanning.
//
// BuildIndex does not rewind to the beginning of the file. Open calls it
// once, right after reading the "OSMHeader" fileblock, so that index
// covers every "OSMData" fileblock; a later call indexes only the
// fileblocks after the current position and replaces the index Seek uses.
func (p *Parser) BuildIndex() ([]FileblockDescriptor, error) {
	origin, err := p.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("osmpbf: saving position before index scan: %w", err)
	}

	index := []FileblockDescriptor{}

	for {
		headerOffset, err := p.f.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, fmt.Errorf("osmpbf: seeking during index scan: %w", err)
		}

		header, err := p.readBlobHeader()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		dataOffset, err := p.f.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, fmt.Errorf("osmpbf: seeking during index scan: %w", err)
		}

		if header.Type == "OSMData" {
			index = append(index, FileblockDescriptor{
				HeaderOffset: headerOffset,
				HeaderSize:   dataOffset - headerOffset - 4,
				DataOffset:   dataOffset,
				DataSize:     int64(header.Datasize),
			})
		}

		if _, err := p.f.Seek(int64(header.Datasize), io.SeekCurrent); err != nil {
			return nil, fmt.Errorf("osmpbf: skipping blob during index scan: %w", err)
		}
	}

	if _, err := p.f.Seek(origin, io.SeekStart); err != nil {
		return nil, fmt.Errorf("osmpbf: restoring position after index scan: %w", err)
	}

	p.index = index

	return index, nil
}

// Size returns the number of "OSMData" fileblocks recorded by BuildIndex,
// or -1 if the file has not been indexed.
func (p *Parser) Size() int {
	if p.index == nil {
		return -1
	}

	return len(p.index)
}

// Seek positions the parser at the i'th "OSMData" fileblock (0-based, in
// file order) and immediately decodes it, so the subsequent Nodes/Ways/
// Relations calls reflect that block. It returns ErrNotIndexed if no
// index has been built; a Parser returned by Open always has one.
func (p *Parser) Seek(i int) error {
	if p.index == nil {
		return ErrNotIndexed
	}

	if i == p.pos {
		return nil
	}

	if i < 0 || i >= len(p.index) {
		return fmt.Errorf("osmpbf: index %d: %w", i, ErrIndexOutOfRange)
	}

	fb := p.index[i]

	if _, err := p.f.Seek(fb.HeaderOffset, io.SeekStart); err != nil {
		return fmt.Errorf("osmpbf: seeking to fileblock %d: %w", i, err)
	}

	p.pos = i

	// a seek reduces to positioning the cursor followed by the same
	// single decode path every forward Advance uses.
	return p.decodeNextBlock()
}

// Pos returns the ordinal of the most recently decoded "OSMData"
// fileblock. Open sets it to 0 when it decodes the first "OSMData"
// fileblock and leaves it at -1 for a file that has none.
func (p *Parser) Pos() int {
	return p.pos
}
