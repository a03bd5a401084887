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
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-xar/xargen/pkg/xarerr"
)

// epoch2001 is the Apple reference instant ("Mac absolute time" epoch) used
// by signature-creation-time: seconds since 2001-01-01T00:00:00Z.
var epoch2001 = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// Reader is the abstract source of a FileEntry's bytes. ReadAt must return
// exactly length bytes or an error; a length of 0 must succeed without
// touching the underlying I/O, so that empty files never trip an
// implementation that errors on a zero-length read.
type Reader interface {
	ReadAt(offset, length int64) ([]byte, error)
}

// FileDataProvider resolves a FileNode's SrcPath to a fresh Reader
// positioned to read from offset 0.
type FileDataProvider func(srcPath string) (Reader, error)

// Archive orchestrates generation of a single xar file from a forest of
// FileNodes and optional signing credentials. It is single-use: once
// Generate succeeds, every FileEntry's FileData carries a fixed offset and
// length, and must be reset (see ResetLayout) before another Generate call.
type Archive struct {
	Roots     []*FileNode
	Signature *SignatureResources

	// Logger receives structured Debug/Warn events as layout proceeds.
	// A nil Logger disables logging; correctness never depends on it.
	Logger *zerolog.Logger
}

// NewArchive constructs an Archive over the given root nodes.
func NewArchive(roots ...*FileNode) *Archive {
	return &Archive{Roots: roots}
}

func (a *Archive) logger() zerolog.Logger {
	if a.Logger != nil {
		return *a.Logger
	}
	return zerolog.Nop()
}

// ResetLayout clears every FileEntry's offset, length, and checksums so the
// Archive can be regenerated from scratch. It does not touch Id.
func (a *Archive) ResetLayout() error {
	entries, err := fileEntries(a.Roots)
	if err != nil {
		return err
	}
	for _, f := range entries {
		f.Data.Offset = 0
		f.Data.Length = 0
		f.Data.ArchivedChecksum = ""
		f.Data.ExtractedChecksum = ""
		f.Data.data = nil
	}
	return nil
}

// Generate runs the full two-pass layout and emits the archive to w.
func (a *Archive) Generate(w io.Writer, provider FileDataProvider) error {
	runID := uuid.New().String()
	log := a.logger().With().Str("run_id", runID).Logger()

	if err := a.assignIDs(); err != nil {
		return err
	}
	log.Debug().Msg("id assignment complete")

	var sig *signer
	var sigBuild *signatureBuild
	heapCursor := int64(digestSize)
	if a.Signature != nil {
		var err error
		sig, err = newSigner(a.Signature)
		if err != nil {
			return err
		}
		sigSize, err := sig.probeSize()
		if err != nil {
			return err
		}
		log.Debug().Int("signature_size", sigSize).Msg("probed signature size")
		heapCursor += int64(sigSize)
		sigBuild = &signatureBuild{
			size:                  int64(sigSize),
			certificatesBase64:    sig.certificatesBase64,
			signatureCreationTime: formatSignatureCreationTime(time.Now()),
		}
	}

	entries, err := fileEntries(a.Roots)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Id < entries[j].Id })

	for _, f := range entries {
		if f.Data.Offset != 0 {
			continue // preset by the caller
		}
		if f.Data.Size == 0 {
			log.Warn().Str("name", f.Name).Msg("zero-length file payload")
		}
		raw, err := readExactly(provider, f)
		if err != nil {
			return err
		}
		compressed, err := compress(raw)
		if err != nil {
			return err
		}
		f.Data.Length = int64(len(compressed))
		f.Data.Offset = heapCursor
		f.Data.ArchivedChecksum = sha1Hex(compressed)
		f.Data.ExtractedChecksum = sha1Hex(raw)
		f.Data.data = compressed
		heapCursor += f.Data.Length
		log.Debug().Str("name", f.Name).Int64("offset", f.Data.Offset).Int64("length", f.Data.Length).Msg("compressed file payload")
	}

	creationTime := time.Now().UTC().Format("2006-01-02T15:04:05Z")
	doc := buildTOCDocument(creationTime, a.Roots, sigBuild)
	tocXML, err := doc.WriteToBytes()
	if err != nil {
		return err
	}
	tocCompressed, err := compress(tocXML)
	if err != nil {
		return err
	}

	header := NewHeader(uint64(len(tocCompressed)), uint64(len(tocXML)))
	if _, err := w.Write(EncodeHeader(header)); err != nil {
		return err
	}
	if _, err := w.Write(tocCompressed); err != nil {
		return err
	}

	var heapWritten int64
	tocHash := sha1Sum(tocCompressed)
	if _, err := w.Write(tocHash); err != nil {
		return err
	}
	heapWritten += int64(len(tocHash))

	if sig != nil {
		sigBytes, err := sig.sign(tocCompressed)
		if err != nil {
			return err
		}
		if int64(len(sigBytes)) != sigBuild.size {
			return &xarerr.SignFailedError{Reason: "probed signature size does not match produced signature"}
		}
		if _, err := w.Write(sigBytes); err != nil {
			return err
		}
		heapWritten += int64(len(sigBytes))
	}

	for _, f := range entries {
		if heapWritten != f.Data.Offset {
			panic("xar: heap cursor diverged from planned file offset")
		}
		if int64(len(f.Data.data)) != f.Data.Length {
			panic("xar: compressed payload length diverged from planned length")
		}
		if _, err := w.Write(f.Data.data); err != nil {
			return err
		}
		heapWritten += f.Data.Length
		f.Data.data = nil
	}

	log.Debug().Int64("heap_bytes", heapWritten).Msg("generation complete")
	return nil
}

// assignIDs implements pass 1: find the maximum pre-assigned id, then walk
// the forest again assigning the next free id to every node that lacks
// one, in traversal order.
func (a *Archive) assignIDs() error {
	maxID := 0
	if err := walkForest(a.Roots, func(n *FileNode) error {
		if n.Id > maxID {
			maxID = n.Id
		}
		return nil
	}); err != nil {
		return err
	}

	next := maxID + 1
	return walkForest(a.Roots, func(n *FileNode) error {
		if n.Id == 0 {
			n.Id = next
			next++
		}
		return nil
	})
}

// readExactly reads a FileEntry's declared size from its provider and
// fails if the actual byte count disagrees.
func readExactly(provider FileDataProvider, f *FileNode) ([]byte, error) {
	r, err := provider(f.SrcPath)
	if err != nil {
		return nil, err
	}
	if f.Data.Size == 0 {
		// empty-file policy: never call into the underlying reader for a
		// zero-length payload.
		return []byte{}, nil
	}
	data, err := r.ReadAt(0, f.Data.Size)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) != f.Data.Size {
		return nil, &xarerr.InvalidInputError{
			Path:   f.SrcPath,
			Reason: "declared size does not match bytes read",
		}
	}
	return data, nil
}

// formatSignatureCreationTime renders t as decimal seconds since
// 2001-01-01T00:00:00Z with one fractional digit, the form Apple's own
// tooling emits for signature-creation-time.
func formatSignatureCreationTime(t time.Time) string {
	delta := t.UTC().Sub(epoch2001)
	seconds := delta.Seconds()
	return strconv.FormatFloat(seconds, 'f', 1, 64)
}
