package xar_test

import (
	"bytes"
	"compress/flate"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"io"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-xar/xargen/pkg/xar"
)

// memReader is a minimal xar.Reader over an in-memory byte slice, used to
// stand in for the caller-supplied FileDataProvider in tests.
type memReader struct{ data []byte }

func (m memReader) ReadAt(offset, length int64) ([]byte, error) {
	if offset+length > int64(len(m.data)) {
		return nil, io.ErrUnexpectedEOF
	}
	return m.data[offset : offset+length], nil
}

func providerFor(contents map[string][]byte) xar.FileDataProvider {
	return func(srcPath string) (xar.Reader, error) {
		return memReader{data: contents[srcPath]}, nil
	}
}

func inflate(t *testing.T, compressed []byte) []byte {
	t.Helper()
	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return out
}

func TestGenerateMinimalArchive(t *testing.T) {
	root := xar.NewFileEntry("a.txt", "mem://a.txt", 5)
	archive := xar.NewArchive(root)

	var buf bytes.Buffer
	err := archive.Generate(&buf, providerFor(map[string][]byte{
		"mem://a.txt": []byte("hello"),
	}))
	require.NoError(t, err)

	out := buf.Bytes()
	assert.Equal(t, []byte{0x78, 0x61, 0x72, 0x21}, out[:4])

	reader, err := xar.Open(bytes.NewReader(out))
	require.NoError(t, err)
	assert.EqualValues(t, 1, reader.Header.Version)
	assert.Equal(t, xar.ChecksumSHA1, reader.Header.ChecksumAlgo)

	files := reader.Files()
	require.Len(t, files, 1)
	f := files[0]
	assert.Equal(t, "a.txt", f.Name)
	assert.EqualValues(t, 1, f.Id)
	assert.EqualValues(t, 5, f.Size)
	assert.EqualValues(t, 20, f.Offset) // digest slot is 20 bytes, no signature

	heapBase := int64(xar.HeaderSize) + int64(reader.Header.CompressedSize)
	heap := io.NewSectionReader(bytes.NewReader(out), heapBase, int64(len(out))-heapBase)
	require.NoError(t, reader.VerifyFileChecksums(heap))

	payload := make([]byte, f.Length)
	_, err = heap.ReadAt(payload, f.Offset)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), inflate(t, payload))
}

func TestOpenSkipsHeaderPadding(t *testing.T) {
	root := xar.NewFileEntry("a.txt", "mem://a.txt", 5)
	archive := xar.NewArchive(root)

	var buf bytes.Buffer
	err := archive.Generate(&buf, providerFor(map[string][]byte{
		"mem://a.txt": []byte("hello"),
	}))
	require.NoError(t, err)
	out := buf.Bytes()

	origHeader, err := xar.DecodeHeader(out[:xar.HeaderSize])
	require.NoError(t, err)

	const extraPadding = 8
	paddedHeader := origHeader
	paddedHeader.HeaderSize += extraPadding

	var padded bytes.Buffer
	padded.Write(xar.EncodeHeader(paddedHeader))
	padded.Write(make([]byte, extraPadding))
	padded.Write(out[xar.HeaderSize:])

	reader, err := xar.Open(bytes.NewReader(padded.Bytes()))
	require.NoError(t, err)
	files := reader.Files()
	require.Len(t, files, 1)
	assert.Equal(t, "a.txt", files[0].Name)
	assert.EqualValues(t, 5, files[0].Size)
}

func TestGenerateDirectoryWithEmptyFile(t *testing.T) {
	empty := xar.NewFileEntry("empty", "mem://empty", 0)
	dir := xar.NewDirectoryEntry("d", "mem://d", empty)
	archive := xar.NewArchive(dir)

	var buf bytes.Buffer
	err := archive.Generate(&buf, providerFor(nil))
	require.NoError(t, err)

	reader, err := xar.Open(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	files := reader.Files()
	require.Len(t, files, 2)
	assert.True(t, files[0].IsDir)
	assert.Equal(t, "d", files[0].Name)
	assert.False(t, files[1].IsDir)
	assert.Equal(t, "empty", files[1].Name)
	assert.EqualValues(t, 0, files[1].Size)
	assert.EqualValues(t, 2, files[1].Length) // raw-deflate empty stream is 2 bytes
}

func TestGenerateAssignsSequentialIds(t *testing.T) {
	a := xar.NewFileEntry("a", "mem://a", 1)
	b := xar.NewFileEntry("b", "mem://b", 1)
	archive := xar.NewArchive(a, b)

	var buf bytes.Buffer
	err := archive.Generate(&buf, providerFor(map[string][]byte{
		"mem://a": {1},
		"mem://b": {2},
	}))
	require.NoError(t, err)

	reader, err := xar.Open(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	files := reader.Files()
	require.Len(t, files, 2)
	assert.EqualValues(t, 1, files[0].Id)
	assert.EqualValues(t, 2, files[1].Id)
	assert.Less(t, files[0].Offset, files[1].Offset)
}

// selfSignedRSA builds a minimal self-signed leaf certificate and returns
// its PEM and the PEM of its private key, for signing tests.
func selfSignedRSA(t *testing.T, bits int) (certPEM, keyPEM string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, bits)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "xar test leaf"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	certPEM = string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
	keyPEM = string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}))
	return certPEM, keyPEM
}

func TestGenerateSignedArchive(t *testing.T) {
	certPEM, keyPEM := selfSignedRSA(t, 2048)

	root := xar.NewFileEntry("a.txt", "mem://a.txt", 5)
	archive := xar.NewArchive(root)
	archive.Signature = &xar.SignatureResources{Cert: certPEM, PrivateKey: keyPEM}

	var buf bytes.Buffer
	err := archive.Generate(&buf, providerFor(map[string][]byte{
		"mem://a.txt": []byte("hello"),
	}))
	require.NoError(t, err)

	reader, err := xar.Open(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	sig, ok := reader.Signature()
	require.True(t, ok)
	assert.EqualValues(t, 20, sig.Offset)
	assert.EqualValues(t, 256, sig.Size)
	require.Len(t, sig.CertificatesBase64, 1)

	certs, err := sig.Certificates()
	require.NoError(t, err)
	require.Len(t, certs, 1)
	assert.Equal(t, "xar test leaf", certs[0].Subject.CommonName)

	files := reader.Files()
	require.Len(t, files, 1)
	// signature slot pushes the first file's offset past 20+256
	assert.EqualValues(t, 20+256, files[0].Offset)

	heapBase := int64(xar.HeaderSize) + int64(reader.Header.CompressedSize)
	heap := io.NewSectionReader(bytes.NewReader(buf.Bytes()), heapBase, int64(buf.Len())-heapBase)

	sigBytes := make([]byte, sig.Size)
	_, err = heap.ReadAt(sigBytes, sig.Offset)
	require.NoError(t, err)

	tocHash := make([]byte, 20)
	_, err = heap.ReadAt(tocHash, 0)
	require.NoError(t, err)

	pub, ok := certs[0].PublicKey.(*rsa.PublicKey)
	require.True(t, ok)
	require.NoError(t, rsa.VerifyPKCS1v15(pub, crypto.SHA1, tocHash, sigBytes))
}

func TestGenerateNon2048Key(t *testing.T) {
	certPEM, keyPEM := selfSignedRSA(t, 3072)

	root := xar.NewFileEntry("a.txt", "mem://a.txt", 5)
	archive := xar.NewArchive(root)
	archive.Signature = &xar.SignatureResources{Cert: certPEM, PrivateKey: keyPEM}

	var buf bytes.Buffer
	err := archive.Generate(&buf, providerFor(map[string][]byte{
		"mem://a.txt": []byte("hello"),
	}))
	require.NoError(t, err)

	reader, err := xar.Open(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	sig, ok := reader.Signature()
	require.True(t, ok)
	assert.EqualValues(t, 384, sig.Size)
}

func TestResetLayoutClearsPlannedOffsets(t *testing.T) {
	root := xar.NewFileEntry("a.txt", "mem://a.txt", 5)
	archive := xar.NewArchive(root)
	provider := providerFor(map[string][]byte{"mem://a.txt": []byte("hello")})

	var buf1 bytes.Buffer
	require.NoError(t, archive.Generate(&buf1, provider))
	require.NoError(t, archive.ResetLayout())

	var buf2 bytes.Buffer
	require.NoError(t, archive.Generate(&buf2, provider))
	assert.Equal(t, buf1.Bytes(), buf2.Bytes())
}
