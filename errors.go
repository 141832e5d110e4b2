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

import "errors"

// Sentinel errors returned by Parser. Use errors.Is to test for them:
// most occurrences are wrapped with additional context via fmt.Errorf's
// %w verb, while ErrUnsupportedLZMA, ErrUnknownBlobFormat and
// ErrNotIndexed can also reach the caller unwrapped.
var (
	// ErrInvalidSuffix is returned by Open when the file name does not
	// carry the conventional ".osm.pbf" suffix.
	ErrInvalidSuffix = errors.New("osmpbf: file name must end in .osm.pbf")

	// ErrUnsupportedLZMA is returned when a blob is only available LZMA
	// encoded. Decoding LZMA payloads is out of scope for this module.
	ErrUnsupportedLZMA = errors.New("osmpbf: lzma-compressed blobs are not supported")

	// ErrUnknownBlobFormat is returned when a Blob carries none of the
	// payload variants this module understands (raw or zlib).
	ErrUnknownBlobFormat = errors.New("osmpbf: unknown blob data format")

	// ErrWrongBlockType is returned when a fileblock's BlobHeader.Type
	// is not the one expected at its position: "OSMHeader" for the first
	// fileblock, "OSMData" for every later one.
	ErrWrongBlockType = errors.New("osmpbf: unrecognized fileblock type")

	// ErrHeaderTooLarge is returned when a BlobHeader declares a size
	// exceeding the protocol's documented maximum (64 KiB).
	ErrHeaderTooLarge = errors.New("osmpbf: blob header exceeds maximum size")

	// ErrInvalidHeader is returned when a BlobHeader declares a size of
	// zero.
	ErrInvalidHeader = errors.New("osmpbf: blob header declares zero size")

	// ErrBlobTooLarge is returned when a Blob declares a size exceeding
	// the protocol's documented maximum (32 MiB).
	ErrBlobTooLarge = errors.New("osmpbf: blob exceeds maximum size")

	// ErrInvalidBlob is returned when a Blob declares a size of zero.
	ErrInvalidBlob = errors.New("osmpbf: blob declares zero size")

	// ErrNotIndexed is returned by Seek when the file has not been
	// scanned with BuildIndex.
	ErrNotIndexed = errors.New("osmpbf: file has no index; call BuildIndex first")

	// ErrIndexOutOfRange is returned by Seek when the requested index is
	// outside the range recorded by BuildIndex.
	ErrIndexOutOfRange = errors.New("osmpbf: fileblock index out of range")

	// ErrRawSizeMismatch is returned when a decompressed zlib payload's
	// length does not match the size the Blob declared.
	ErrRawSizeMismatch = errors.New("osmpbf: decompressed blob size does not match declared raw_size")
)
