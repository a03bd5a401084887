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

// Package certload parses the PEM-encoded RSA private key the xar Signer
// needs. xar's <signature style="RSA"> element has no room for any other
// key type, so unlike a general-purpose certificate loader this package
// parses straight to *rsa.PrivateKey and rejects anything else up front
// rather than handing an ecdsa.PrivateKey back for a caller to discover is
// unusable later.
package certload

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"

	"github.com/go-xar/xargen/pkg/xarerr"
)

const asn1Magic = 0x30

// ParsePrivateKey parses an RSA private key from a blob of PEM or DER data.
// PEM input may hold several blocks; the first one typed "PRIVATE KEY" or
// "<ALGO> PRIVATE KEY" is used. PKCS#1 and PKCS#8 wrapping are both
// accepted; any other key type found inside either wrapping is rejected
// with InvalidPrivateKeyError, since the Signer has no use for it.
func ParsePrivateKey(pemData []byte) (*rsa.PrivateKey, error) {
	if len(pemData) >= 1 && pemData[0] == asn1Magic {
		return parseRSAPrivateKeyDER(pemData)
	}
	for {
		var keyBlock *pem.Block
		keyBlock, pemData = pem.Decode(pemData)
		if keyBlock == nil {
			return nil, &xarerr.InvalidPrivateKeyError{Reason: "no private key block found in PEM data"}
		}
		if keyBlock.Type == "PRIVATE KEY" || strings.HasSuffix(keyBlock.Type, " PRIVATE KEY") {
			return parseRSAPrivateKeyDER(keyBlock.Bytes)
		}
	}
}

// parseRSAPrivateKeyDER parses a DER block as either a bare PKCS#1 RSA key
// or a PKCS#8-wrapped one, rejecting any other key type the PKCS#8 wrapping
// might carry.
func parseRSAPrivateKeyDER(der []byte) (*rsa.PrivateKey, error) {
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, &xarerr.InvalidPrivateKeyError{Reason: "data is neither a PKCS#1 nor a PKCS#8 RSA private key"}
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, &xarerr.InvalidPrivateKeyError{Reason: "only RSA keys are supported"}
	}
	return rsaKey, nil
}
