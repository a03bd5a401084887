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
	"crypto"
	"crypto/rand"
	"crypto/rsa"

	"github.com/go-xar/xargen/pkg/certload"
	"github.com/go-xar/xargen/pkg/xarerr"
)

// SignatureResources holds the PEM-encoded credentials a signed archive
// needs: the leaf certificate, its private key, and the rest of the chain
// in verification order (intermediates first, then higher CAs).
type SignatureResources struct {
	Cert            string
	PrivateKey      string
	AdditionalCerts []string
}

// signer wraps a parsed RSA private key and the base64 certificate bodies
// (leaf first) that go into the TOC's <KeyInfo>.
type signer struct {
	privateKey         *rsa.PrivateKey
	certificatesBase64 []string
}

// probeSigString is signed once, with the signer's own key, purely to
// measure how many bytes a signature from that key will occupy. Its content
// is never written to an archive.
var probeSigString = []byte("xar signature size probe")

// newSigner parses res's PEM credentials, extracting the base64 body of
// every certificate with the PEM Extractor rather than re-encoding parsed
// x509.Certificate.Raw, so the bytes embedded in the TOC are exactly the
// ones the caller supplied.
func newSigner(res *SignatureResources) (*signer, error) {
	rsaKey, err := certload.ParsePrivateKey([]byte(res.PrivateKey))
	if err != nil {
		return nil, err
	}

	certsBase64 := make([]string, 0, 1+len(res.AdditionalCerts))
	leafBody, err := extractPEMSection(res.Cert, "CERTIFICATE")
	if err != nil {
		return nil, err
	}
	certsBase64 = append(certsBase64, leafBody)
	for _, pemText := range res.AdditionalCerts {
		body, err := extractPEMSection(pemText, "CERTIFICATE")
		if err != nil {
			return nil, err
		}
		certsBase64 = append(certsBase64, body)
	}

	return &signer{privateKey: rsaKey, certificatesBase64: certsBase64}, nil
}

// probeSize signs a fixed non-empty string with s's key and reports the
// resulting signature length. This is the single source of truth for how
// many bytes the heap's signature slot needs -- it must never be assumed
// to be 256, which only holds for 2048-bit keys.
func (s *signer) probeSize() (int, error) {
	sig, err := s.signRSASHA1(probeSigString)
	if err != nil {
		return 0, err
	}
	return len(sig), nil
}

// sign produces the RSA-SHA1 signature over the compressed TOC bytes.
func (s *signer) sign(compressedTOC []byte) ([]byte, error) {
	return s.signRSASHA1(compressedTOC)
}

func (s *signer) signRSASHA1(data []byte) ([]byte, error) {
	digest := sha1Sum(data)
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.privateKey, crypto.SHA1, digest)
	if err != nil {
		return nil, &xarerr.SignFailedError{Reason: err.Error()}
	}
	return sig, nil
}
