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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilecore/osmpbf/internal/core"
	"github.com/tilecore/osmpbf/internal/pb/pbtest"
)

func newTestBuffer() *core.PooledBuffer { return core.NewPooledBuffer() }

func TestInflateZlibRoundTrip(t *testing.T) {
	raw := []byte("the quick brown fox jumps over the lazy dog")

	var compressed bytes.Buffer

	w := zlib.NewWriter(&compressed)
	_, err := w.Write(raw)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "zlib.osm.pbf")

	blob := pbtest.NewBuilder().
		Bytes_(3, compressed.Bytes()).
		Int32(2, int32(len(raw)))

	header := pbtest.NewBuilder().
		String(1, "OSMData").
		Int32(3, int32(len(blob.Bytes())))

	var file []byte
	file = appendLengthPrefixed(file, header.Bytes())
	file = appendLengthPrefixed(file, blob.Bytes())

	require.NoError(t, os.WriteFile(path, file, 0o644))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	p := &Parser{f: f, opts: defaultParserOptions}
	p.buf = newTestBuffer()
	p.zbuf = newTestBuffer()

	typ, payload, err := p.readFileblock()
	require.NoError(t, err)
	assert.Equal(t, "OSMData", typ)
	assert.Equal(t, raw, payload)
}

func TestReadBlobHeaderRejectsOversizedHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huge.osm.pbf")

	var file []byte
	file = appendLengthPrefixed(file, make([]byte, maxHeaderSize+1))

	require.NoError(t, os.WriteFile(path, file, 0o644))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	p := &Parser{f: f, opts: defaultParserOptions, buf: newTestBuffer(), zbuf: newTestBuffer()}

	_, err = p.readBlobHeader()
	assert.ErrorIs(t, err, ErrHeaderTooLarge)
}

func TestInflateZlibRawSizeMismatchFails(t *testing.T) {
	raw := []byte("the quick brown fox jumps over the lazy dog")

	var compressed bytes.Buffer

	w := zlib.NewWriter(&compressed)
	_, err := w.Write(raw)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "mismatch.osm.pbf")

	blob := pbtest.NewBuilder().
		Bytes_(3, compressed.Bytes()).
		Int32(2, int32(len(raw)+1)) // declare the wrong raw_size

	header := pbtest.NewBuilder().
		String(1, "OSMData").
		Int32(3, int32(len(blob.Bytes())))

	var file []byte
	file = appendLengthPrefixed(file, header.Bytes())
	file = appendLengthPrefixed(file, blob.Bytes())

	require.NoError(t, os.WriteFile(path, file, 0o644))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	p := &Parser{f: f, opts: defaultParserOptions, buf: newTestBuffer(), zbuf: newTestBuffer()}

	_, _, err = p.readFileblock()
	assert.ErrorIs(t, err, ErrRawSizeMismatch)
}

func TestInflateRejectsLZMABlob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lzma.osm.pbf")

	blob := pbtest.NewBuilder().Bytes_(4, []byte("not really lzma"))

	header := pbtest.NewBuilder().
		String(1, "OSMData").
		Int32(3, int32(len(blob.Bytes())))

	var file []byte
	file = appendLengthPrefixed(file, header.Bytes())
	file = appendLengthPrefixed(file, blob.Bytes())

	require.NoError(t, os.WriteFile(path, file, 0o644))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	p := &Parser{f: f, opts: defaultParserOptions, buf: newTestBuffer(), zbuf: newTestBuffer()}

	_, _, err = p.readFileblock()
	assert.ErrorIs(t, err, ErrUnsupportedLZMA)
}

func TestInflateRejectsBlobWithNoRecognizedPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.osm.pbf")

	// a Blob with none of raw/zlib_data/lzma_data set, but a harmless
	// field present so it isn't itself a zero-length message.
	blob := pbtest.NewBuilder().Int32(2, 0)

	header := pbtest.NewBuilder().
		String(1, "OSMData").
		Int32(3, int32(len(blob.Bytes())))

	var file []byte
	file = appendLengthPrefixed(file, header.Bytes())
	file = appendLengthPrefixed(file, blob.Bytes())

	require.NoError(t, os.WriteFile(path, file, 0o644))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	p := &Parser{f: f, opts: defaultParserOptions, buf: newTestBuffer(), zbuf: newTestBuffer()}

	_, _, err = p.readFileblock()
	assert.ErrorIs(t, err, ErrUnknownBlobFormat)
}

func TestReadHeaderBlockRejectsWrongFirstBlockType(t *testing.T) {
	var buf []byte
	buf = appendFileblock(buf, "OSMData", dataBlockPayload(t, []int64{1}))

	path := filepath.Join(t.TempDir(), "wrongfirst.osm.pbf")
	require.NoError(t, os.WriteFile(path, buf, 0o644))

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrWrongBlockType)
}
