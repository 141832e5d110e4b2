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
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"

	kzlib "github.com/klauspost/compress/zlib"

	"github.com/tilecore/osmpbf/internal/pb"
)

// readBlobHeader reads the 4-byte big-endian length prefix and the
// BlobHeader message that follows it at the current file position. A
// zero-length read at the prefix position is the normal end of file,
// reported as io.EOF; any other truncation is a wrapped error.
func (p *Parser) readBlobHeader() (*pb.BlobHeader, error) {
	var size uint32

	if err := binary.Read(p.f, binary.BigEndian, &size); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}

		return nil, fmt.Errorf("osmpbf: reading blob header length: %w", err)
	}

	if size == 0 {
		return nil, fmt.Errorf("osmpbf: header size is zero: %w", ErrInvalidHeader)
	}

	if size > maxHeaderSize {
		return nil, fmt.Errorf("osmpbf: header size %d: %w", size, ErrHeaderTooLarge)
	}

	p.buf.Reset()

	if _, err := io.CopyN(p.buf, p.f, int64(size)); err != nil {
		return nil, fmt.Errorf("osmpbf: reading blob header: %w", err)
	}

	header := &pb.BlobHeader{}
	if err := header.Unmarshal(p.buf.Bytes()); err != nil {
		return nil, fmt.Errorf("osmpbf: unmarshaling blob header: %w", err)
	}

	return header, nil
}

// readBlob reads the Blob message described by header, which must
// immediately follow the header on the stream.
func (p *Parser) readBlob(header *pb.BlobHeader) (*pb.Blob, error) {
	if header.Datasize == 0 {
		return nil, fmt.Errorf("osmpbf: blob size is zero: %w", ErrInvalidBlob)
	}

	if header.Datasize > maxBlobSize {
		return nil, fmt.Errorf("osmpbf: blob size %d: %w", header.Datasize, ErrBlobTooLarge)
	}

	p.buf.Reset()

	if _, err := io.CopyN(p.buf, p.f, int64(header.Datasize)); err != nil {
		return nil, fmt.Errorf("osmpbf: reading blob: %w", err)
	}

	blob := &pb.Blob{}
	if err := blob.Unmarshal(p.buf.Bytes()); err != nil {
		return nil, fmt.Errorf("osmpbf: unmarshaling blob: %w", err)
	}

	return blob, nil
}

// inflate materializes a Blob's payload, decompressing it if necessary.
// zlib is the only compression variant real-world .osm.pbf files use;
// lzma is recognized but rejected (Non-goal), and anything else falls
// through to ErrUnknownBlobFormat.
func (p *Parser) inflate(blob *pb.Blob) ([]byte, error) {
	switch {
	case blob.HasRaw:
		return blob.Raw, nil

	case blob.HasZlib:
		return p.inflateZlib(blob)

	case blob.HasLzma:
		return nil, ErrUnsupportedLZMA

	default:
		return nil, ErrUnknownBlobFormat
	}
}

func (p *Parser) inflateZlib(blob *pb.Blob) ([]byte, error) {
	var (
		r   io.ReadCloser
		err error
	)

	if p.opts.fastZlib {
		r, err = kzlib.NewReader(bytes.NewReader(blob.ZlibData))
	} else {
		r, err = zlib.NewReader(bytes.NewReader(blob.ZlibData))
	}

	if err != nil {
		return nil, fmt.Errorf("osmpbf: opening zlib stream: %w", err)
	}
	defer r.Close()

	p.zbuf.Reset()

	rawSize := int(blob.RawSize) + bytes.MinRead
	if rawSize > p.zbuf.Cap() {
		p.zbuf.Grow(rawSize)
	}

	if _, err := p.zbuf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("osmpbf: inflating zlib stream: %w", err)
	}

	if p.zbuf.Len() != int(blob.RawSize) {
		return nil, fmt.Errorf("osmpbf: got %d bytes, want %d: %w", p.zbuf.Len(), blob.RawSize, ErrRawSizeMismatch)
	}

	return p.zbuf.Bytes(), nil
}

// readFileblock reads one full fileblock (header + blob) at the current
// file position and returns its type tag and inflated payload.
func (p *Parser) readFileblock() (string, []byte, error) {
	header, err := p.readBlobHeader()
	if err != nil {
		return "", nil, err
	}

	blob, err := p.readBlob(header)
	if err != nil {
		return "", nil, err
	}

	payload, err := p.inflate(blob)
	if err != nil {
		return "", nil, err
	}

	return header.Type, payload, nil
}
