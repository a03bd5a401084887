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
	"crypto/hmac"
	"crypto/x509"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/go-xar/xargen/pkg/xarerr"
)

// ArchiveReader parses enough of an existing xar archive to retrieve and
// verify its TOC. Extraction of file payloads and certificate chain
// validation remain out of scope; the three introspection helpers below
// (Signature, Files, VerifyFileChecksums) stop short of either.
type ArchiveReader struct {
	Header   Header
	TOCBytes []byte // decompressed TOC XML text
	toc      tocToc
}

// Open reads and decodes the header and TOC of an existing archive,
// failing with ChecksumMismatchError or TocLengthMismatchError if the
// stored TOC checksum or declared length disagree with what is found.
func Open(r io.Reader) (*ArchiveReader, error) {
	headerBytes := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("reading xar header: %w", err)
	}
	hdr, err := DecodeHeader(headerBytes)
	if err != nil {
		return nil, err
	}
	if hdr.ChecksumAlgo != ChecksumSHA1 {
		return nil, &xarerr.UnsupportedChecksumAlgoError{Algo: uint32(hdr.ChecksumAlgo)}
	}

	// DecodeHeader only guarantees hdr.HeaderSize >= HeaderSize; a producer
	// may declare extra padding after the fixed fields, which must be
	// skipped before the compressed TOC starts.
	if padding := int64(hdr.HeaderSize) - int64(HeaderSize); padding > 0 {
		if _, err := io.CopyN(io.Discard, r, padding); err != nil {
			return nil, fmt.Errorf("skipping header padding: %w", err)
		}
	}

	tocCompressed := make([]byte, hdr.CompressedSize)
	if _, err := io.ReadFull(r, tocCompressed); err != nil {
		return nil, fmt.Errorf("reading compressed toc: %w", err)
	}

	storedChecksum := make([]byte, digestSize)
	if _, err := io.ReadFull(r, storedChecksum); err != nil {
		return nil, fmt.Errorf("reading toc checksum: %w", err)
	}
	actualChecksum := sha1Sum(tocCompressed)
	if !hmac.Equal(storedChecksum, actualChecksum) {
		return nil, &xarerr.ChecksumMismatchError{
			Expected: fmt.Sprintf("%x", storedChecksum),
			Actual:   fmt.Sprintf("%x", actualChecksum),
		}
	}

	tocXML, err := decompress(tocCompressed)
	if err != nil {
		return nil, err
	}
	if int64(len(tocXML)) != int64(hdr.UncompressedSize) {
		return nil, &xarerr.TocLengthMismatchError{
			Declared: int64(hdr.UncompressedSize),
			Actual:   int64(len(tocXML)),
		}
	}

	var doc tocDocument
	if err := xml.Unmarshal(tocXML, &doc); err != nil {
		return nil, fmt.Errorf("decoding toc xml: %w", err)
	}

	return &ArchiveReader{Header: hdr, TOCBytes: tocXML, toc: doc.TOC}, nil
}

// TOC returns the decompressed TOC as UTF-8 text.
func (r *ArchiveReader) TOC() string {
	return string(r.TOCBytes)
}

// SignatureInfo describes the <signature> element of a TOC without
// attempting RSA verification or certificate chain building.
type SignatureInfo struct {
	Offset             int64
	Size               int64
	CertificatesBase64 []string
}

// Signature reports whether the TOC declares a <signature> element and, if
// so, its offset/size and raw certificate bodies.
func (r *ArchiveReader) Signature() (*SignatureInfo, bool) {
	if r.toc.Signature == nil {
		return nil, false
	}
	return &SignatureInfo{
		Offset:             r.toc.Signature.Offset,
		Size:               r.toc.Signature.Size,
		CertificatesBase64: r.toc.Signature.Certificates,
	}, true
}

// FileInfo flattens one <file>/<data> entry from the TOC's forest.
type FileInfo struct {
	Id                int
	Name              string
	IsDir             bool
	Size              int64
	Offset            int64
	Length            int64
	ArchivedChecksum  string
	ExtractedChecksum string
}

// Files flattens the parsed TOC's file forest into a list, depth-first,
// preserving traversal order (not sorted by id or offset).
func (r *ArchiveReader) Files() []FileInfo {
	var out []FileInfo
	var walk func(files []*tocFile)
	walk = func(files []*tocFile) {
		for _, f := range files {
			info := FileInfo{Id: f.Id, Name: f.Name, IsDir: f.Type == "directory"}
			if f.Data != nil {
				info.Size = f.Data.Size
				info.Offset = f.Data.Offset
				info.Length = f.Data.Length
				info.ArchivedChecksum = f.Data.ArchivedChecksum.Digest
				info.ExtractedChecksum = f.Data.ExtractedChecksum.Digest
			}
			out = append(out, info)
			walk(f.Files)
		}
	}
	walk(r.toc.Files)
	return out
}

// VerifyFileChecksums re-derives each file's archived-checksum from heap
// (a ReaderAt over the bytes following the header and compressed TOC, so
// starting at the TOC checksum slot, which is where the TOC's file offsets
// count from) and compares it against the TOC's recorded value. It performs
// digest verification only -- no RSA signature check, no chain validation.
func (r *ArchiveReader) VerifyFileChecksums(heap io.ReaderAt) error {
	for _, f := range r.Files() {
		if f.IsDir {
			continue
		}
		buf := make([]byte, f.Length)
		if _, err := heap.ReadAt(buf, f.Offset); err != nil {
			return fmt.Errorf("reading %q: %w", f.Name, err)
		}
		actual := sha1Hex(buf)
		if actual != f.ArchivedChecksum {
			return fmt.Errorf("checksumming %q: %w", f.Name, &xarerr.ChecksumMismatchError{
				Expected: f.ArchivedChecksum,
				Actual:   actual,
			})
		}
	}
	return nil
}

// Certificates parses the base64 certificate bodies a SignatureInfo
// carries into x509.Certificate values. It parses only -- no chain
// building, no trust evaluation.
func (s *SignatureInfo) Certificates() ([]*x509.Certificate, error) {
	certs := make([]*x509.Certificate, 0, len(s.CertificatesBase64))
	for _, body := range s.CertificatesBase64 {
		der, err := decodeCertificateBody(body)
		if err != nil {
			return nil, err
		}
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}
	return certs, nil
}

// decodeCertificateBody is a convenience for callers that want to go from
// the base64 bodies Signature() returns to parsed certificates; it does no
// validation of its own.
func decodeCertificateBody(body string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(stripWhitespace(body))
}

func stripWhitespace(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			continue
		}
		buf.WriteRune(r)
	}
	return buf.String()
}
