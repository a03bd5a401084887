/*
 * Copyright (c) SAS Institute Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package xar

import (
	"bytes"
	"compress/flate"
	"io"

	"github.com/go-xar/xargen/pkg/xarerr"
)

// encodingStyle is the literal string the TOC advertises for file payload
// encoding. Despite the name, the bytes are raw deflate with no gzip
// framing -- xar inherited the misnomer and Safari expects it verbatim.
const encodingStyle = "application/x-gzip"

// compress returns the raw deflate (RFC 1951) encoding of data, with no
// gzip or zlib wrapper. Empty input yields the 2-byte empty stream (one
// final fixed-Huffman block holding only end-of-block).
func compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{0x03, 0x00}, nil
	}
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, &xarerr.CompressionFailedError{Op: "compress", Reason: err.Error()}
	}
	if _, err := w.Write(data); err != nil {
		return nil, &xarerr.CompressionFailedError{Op: "compress", Reason: err.Error()}
	}
	if err := w.Close(); err != nil {
		return nil, &xarerr.CompressionFailedError{Op: "compress", Reason: err.Error()}
	}
	return buf.Bytes(), nil
}

// decompress reverses compress.
func decompress(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, &xarerr.CompressionFailedError{Op: "decompress", Reason: err.Error()}
	}
	return out, nil
}
