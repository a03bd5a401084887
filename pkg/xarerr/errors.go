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

// Package xarerr holds the typed errors the xar generator and reader can
// return. Conditions a caller might branch on get their own struct type,
// following the same shape relic uses for its own signer errors; everything
// else is returned wrapped with fmt.Errorf and %w.
package xarerr

import "fmt"

// InvalidInputError reports a malformed FileNode: missing name, missing
// srcPath, or a size mismatch against the bytes actually read.
type InvalidInputError struct {
	Path   string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid file node %q: %s", e.Path, e.Reason)
}

// MissingPEMSectionError reports that a PEM blob had no BEGIN/END block for
// the requested section name.
type MissingPEMSectionError struct {
	Section string
}

func (e *MissingPEMSectionError) Error() string {
	return fmt.Sprintf("no %s section found in PEM data", e.Section)
}

// InvalidPrivateKeyError reports that a private key PEM/DER blob could not
// be parsed by any of the supported key formats.
type InvalidPrivateKeyError struct {
	Reason string
}

func (e *InvalidPrivateKeyError) Error() string {
	return fmt.Sprintf("invalid private key: %s", e.Reason)
}

// SignFailedError reports that the signing primitive rejected the key or
// input, or returned an unexpected signature length.
type SignFailedError struct {
	Reason string
}

func (e *SignFailedError) Error() string {
	return fmt.Sprintf("signing failed: %s", e.Reason)
}

// CompressionFailedError reports that deflate or inflate returned an error.
type CompressionFailedError struct {
	Op     string // "compress" or "decompress"
	Reason string
}

func (e *CompressionFailedError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Reason)
}

// ChecksumMismatchError reports that a computed digest differed from the
// one recorded in the archive.
type ChecksumMismatchError struct {
	Expected string
	Actual   string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// TocLengthMismatchError reports that the decompressed TOC length differed
// from the header's declared uncompressed length.
type TocLengthMismatchError struct {
	Declared int64
	Actual   int64
}

func (e *TocLengthMismatchError) Error() string {
	return fmt.Sprintf("toc length mismatch: header declared %d, decompressed to %d", e.Declared, e.Actual)
}

// InvalidMagicError reports that a header's first four bytes were not the
// xar magic number.
type InvalidMagicError struct {
	Got uint32
}

func (e *InvalidMagicError) Error() string {
	return fmt.Sprintf("invalid xar magic: got 0x%08x", e.Got)
}

// HeaderTooSmallError reports that a header declared a size smaller than
// the 28 fixed bytes the format requires.
type HeaderTooSmallError struct {
	Declared uint16
}

func (e *HeaderTooSmallError) Error() string {
	return fmt.Sprintf("header size %d is smaller than the minimum of 28", e.Declared)
}

// UnsupportedChecksumAlgoError reports a checksum algorithm id other than
// the ones this module understands.
type UnsupportedChecksumAlgoError struct {
	Algo uint32
}

func (e *UnsupportedChecksumAlgoError) Error() string {
	return fmt.Sprintf("unsupported checksum algorithm id %d", e.Algo)
}
