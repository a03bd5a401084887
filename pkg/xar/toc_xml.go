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

import "encoding/xml"

// The types below decode an existing TOC document with stdlib encoding/xml.
// Generation builds the TOC the other way, element by element with etree
// (see toc_build.go) -- decoding into a typed tree needs no mutation, so
// there is no reason to route it through etree when stdlib unmarshaling
// already produces the tree these types need.

type tocDocument struct {
	XMLName xml.Name `xml:"xar"`
	TOC     tocToc   `xml:"toc"`
}

type tocToc struct {
	CreationTime          string        `xml:"creation-time"`
	Checksum              tocChecksum   `xml:"checksum"`
	SignatureCreationTime string        `xml:"signature-creation-time,omitempty"`
	Signature             *tocSignature `xml:"signature"`
	Files                 []*tocFile    `xml:"file"`
}

type tocChecksum struct {
	Style  string `xml:"style,attr"`
	Size   int64  `xml:"size"`
	Offset int64  `xml:"offset"`
}

type tocSignature struct {
	Style        string   `xml:"style,attr"`
	Offset       int64    `xml:"offset"`
	Size         int64    `xml:"size"`
	Certificates []string `xml:"KeyInfo>X509Data>X509Certificate"`
}

type tocFile struct {
	Id   int    `xml:"id,attr"`
	Name string `xml:"name"`
	Type string `xml:"type"`

	Files []*tocFile   `xml:"file"`
	Data  *tocFileData `xml:"data"`
}

type tocFileData struct {
	Offset            int64       `xml:"offset"`
	Size              int64       `xml:"size"`
	Length            int64       `xml:"length"`
	ArchivedChecksum  tocFileSum  `xml:"archived-checksum"`
	ExtractedChecksum tocFileSum  `xml:"extracted-checksum"`
	Encoding          tocEncoding `xml:"encoding"`
}

type tocEncoding struct {
	Style string `xml:"style,attr"`
}

type tocFileSum struct {
	Style  string `xml:"style,attr"`
	Digest string `xml:",chardata"`
}
