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
	"encoding/binary"

	"github.com/go-xar/xargen/pkg/xarerr"
)

// xarMagic is the four-byte file signature "xar!" stored big-endian.
const xarMagic = 0x78617221

const (
	// HeaderSize is the fixed, encoded length of a Header in bytes.
	HeaderSize = 28

	// formatVersion is the only xar version this module writes or reads.
	formatVersion = 1
)

// ChecksumAlgo identifies the digest algorithm a TOC checksum uses. This
// module only ever writes and reads ChecksumSHA1.
type ChecksumAlgo uint32

const (
	checksumNone ChecksumAlgo = iota
	// ChecksumSHA1 is the only checksum algorithm this module supports.
	ChecksumSHA1
	checksumMD5
	checksumSHA256
	checksumSHA512
)

// Header is the fixed 28-byte structure at the start of every xar archive.
type Header struct {
	Magic            uint32
	HeaderSize       uint16
	Version          uint16
	CompressedSize   uint64
	UncompressedSize uint64
	ChecksumAlgo     ChecksumAlgo
}

// NewHeader builds a Header for a SHA-1 archive with the given TOC lengths.
func NewHeader(compressedSize, uncompressedSize uint64) Header {
	return Header{
		Magic:            xarMagic,
		HeaderSize:       HeaderSize,
		Version:          formatVersion,
		CompressedSize:   compressedSize,
		UncompressedSize: uncompressedSize,
		ChecksumAlgo:     ChecksumSHA1,
	}
}

// EncodeHeader renders h as the 28 big-endian bytes the xar format expects.
func EncodeHeader(h Header) []byte {
	buf := new(bytes.Buffer)
	buf.Grow(HeaderSize)
	_ = binary.Write(buf, binary.BigEndian, h)
	return buf.Bytes()
}

// DecodeHeader parses the first HeaderSize bytes of buf into a Header.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, &xarerr.HeaderTooSmallError{Declared: uint16(len(buf))}
	}
	var h Header
	if err := binary.Read(bytes.NewReader(buf[:HeaderSize]), binary.BigEndian, &h); err != nil {
		return Header{}, err
	}
	if h.Magic != xarMagic {
		return Header{}, &xarerr.InvalidMagicError{Got: h.Magic}
	}
	if h.HeaderSize < HeaderSize {
		return Header{}, &xarerr.HeaderTooSmallError{Declared: h.HeaderSize}
	}
	return h, nil
}
