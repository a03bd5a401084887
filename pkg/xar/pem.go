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
	"strings"

	"github.com/go-xar/xargen/pkg/xarerr"
)

// extractPEMSection returns the base64 body of the first PEM block whose
// BEGIN/END lines contain the given section name (e.g. "CERTIFICATE").
// Matching is by substring, not exact line equality, so that dash-count
// variants like "-----BEGIN CERTIFICATE-----" and a stray extra dash still
// match; any text before the BEGIN line or after the END line is ignored.
func extractPEMSection(pemText, section string) (string, error) {
	beginMarker := "BEGIN " + section
	endMarker := "END " + section

	beginIdx := strings.Index(pemText, beginMarker)
	if beginIdx < 0 {
		return "", &xarerr.MissingPEMSectionError{Section: section}
	}
	// skip to the end of the BEGIN line
	lineEnd := strings.IndexByte(pemText[beginIdx:], '\n')
	if lineEnd < 0 {
		return "", &xarerr.MissingPEMSectionError{Section: section}
	}
	bodyStart := beginIdx + lineEnd + 1

	endIdx := strings.Index(pemText[bodyStart:], endMarker)
	if endIdx < 0 {
		return "", &xarerr.MissingPEMSectionError{Section: section}
	}
	body := pemText[bodyStart : bodyStart+endIdx]
	// drop the start of the END line (its leading dashes) up to the marker
	if nl := strings.LastIndexByte(body, '\n'); nl >= 0 {
		body = body[:nl]
	} else {
		body = ""
	}

	var sb strings.Builder
	for _, line := range strings.Split(body, "\n") {
		sb.WriteString(strings.TrimSpace(line))
	}
	result := sb.String()
	if result == "" {
		return "", &xarerr.MissingPEMSectionError{Section: section}
	}
	return result, nil
}
