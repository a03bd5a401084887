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
	"crypto/sha1" //nolint:gosec // the xar format standardizes on SHA-1
	"encoding/hex"
)

// digestSize is the raw digest length of SHA-1, the only checksum
// algorithm this module writes.
const digestSize = sha1.Size

// sha1Sum returns the raw 20-byte SHA-1 digest of data.
func sha1Sum(data []byte) []byte {
	sum := sha1.Sum(data)
	return sum[:]
}

// sha1Hex returns the lowercase hex SHA-1 digest of data, the form the TOC
// records for archived-checksum and extracted-checksum.
func sha1Hex(data []byte) string {
	return hex.EncodeToString(sha1Sum(data))
}
