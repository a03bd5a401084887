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
	"strconv"

	"github.com/beevik/etree"
)

// signatureBuild carries the values pass 3 needs to emit the optional
// <signature> element: the probed size (so the offset of the first file
// payload is known before anything is actually signed) and the base64
// certificate bodies, leaf first.
type signatureBuild struct {
	size                  int64
	certificatesBase64    []string
	signatureCreationTime string
}

// buildTOCDocument assembles the full <xar><toc>...</toc></xar> document:
// creation-time, checksum, an optional signature-creation-time/signature
// pair, then the file forest, in that element order. sig is nil for an
// unsigned archive.
func buildTOCDocument(creationTime string, roots []*FileNode, sig *signatureBuild) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	xarEl := doc.CreateElement("xar")
	tocEl := xarEl.CreateElement("toc")

	ctEl := tocEl.CreateElement("creation-time")
	ctEl.SetText(creationTime)

	checksumEl := tocEl.CreateElement("checksum")
	checksumEl.CreateAttr("style", "sha1")
	sizeEl := checksumEl.CreateElement("size")
	sizeEl.SetText(strconv.Itoa(digestSize))
	offsetEl := checksumEl.CreateElement("offset")
	offsetEl.SetText("0")

	if sig != nil {
		sctEl := tocEl.CreateElement("signature-creation-time")
		sctEl.SetText(sig.signatureCreationTime)

		sigEl := tocEl.CreateElement("signature")
		sigEl.CreateAttr("style", "RSA")
		sigOffsetEl := sigEl.CreateElement("offset")
		sigOffsetEl.SetText(strconv.FormatInt(digestSize, 10))
		sigSizeEl := sigEl.CreateElement("size")
		sigSizeEl.SetText(strconv.FormatInt(sig.size, 10))

		keyInfoEl := sigEl.CreateElement("KeyInfo")
		keyInfoEl.CreateAttr("xmlns", "http://www.w3.org/2000/09/xmldsig")
		x509DataEl := keyInfoEl.CreateElement("X509Data")
		for _, cert := range sig.certificatesBase64 {
			certEl := x509DataEl.CreateElement("X509Certificate")
			certEl.SetText(cert)
		}
	}

	for _, root := range roots {
		tocEl.AddChild(buildFileElement(root))
	}

	return doc
}

// buildFileElement renders one FileNode (and, for a directory, its
// children) as a <file> element.
func buildFileElement(n *FileNode) *etree.Element {
	el := etree.NewElement("file")
	el.CreateAttr("id", strconv.Itoa(n.Id))

	nameEl := el.CreateElement("name")
	nameEl.SetText(n.Name)

	typeEl := el.CreateElement("type")
	if n.IsDir {
		typeEl.SetText("directory")
		for _, child := range n.Children {
			el.AddChild(buildFileElement(child))
		}
		return el
	}
	typeEl.SetText("file")

	dataEl := el.CreateElement("data")
	offsetEl := dataEl.CreateElement("offset")
	offsetEl.SetText(strconv.FormatInt(n.Data.Offset, 10))
	sizeEl := dataEl.CreateElement("size")
	sizeEl.SetText(strconv.FormatInt(n.Data.Size, 10))
	lengthEl := dataEl.CreateElement("length")
	lengthEl.SetText(strconv.FormatInt(n.Data.Length, 10))

	archivedEl := dataEl.CreateElement("archived-checksum")
	archivedEl.CreateAttr("style", "sha1")
	archivedEl.SetText(n.Data.ArchivedChecksum)

	extractedEl := dataEl.CreateElement("extracted-checksum")
	extractedEl.CreateAttr("style", "sha1")
	extractedEl.SetText(n.Data.ExtractedChecksum)

	encodingEl := dataEl.CreateElement("encoding")
	encodingEl.CreateAttr("style", encodingStyle)

	return el
}
