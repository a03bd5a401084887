package xar

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTOCDocumentRoundTripsThroughDecoder(t *testing.T) {
	a := &FileNode{Name: "a.txt", Id: 2, Data: &FileData{
		Size: 5, Offset: 20, Length: 7,
		ArchivedChecksum:  "aaaa",
		ExtractedChecksum: "bbbb",
	}}
	dir := &FileNode{Name: "sub", Id: 1, IsDir: true, Children: []*FileNode{a}}

	doc := buildTOCDocument("2026-08-06T00:00:00Z", []*FileNode{dir}, &signatureBuild{
		size:                  256,
		certificatesBase64:    []string{"LEAFCERTBASE64"},
		signatureCreationTime: "123.0",
	})

	xmlBytes, err := doc.WriteToBytes()
	require.NoError(t, err)

	var decoded tocDocument
	require.NoError(t, xml.Unmarshal(xmlBytes, &decoded))

	toc := decoded.TOC
	assert.Equal(t, "2026-08-06T00:00:00Z", toc.CreationTime)
	assert.Equal(t, "sha1", toc.Checksum.Style)
	assert.EqualValues(t, digestSize, toc.Checksum.Size)
	assert.EqualValues(t, 0, toc.Checksum.Offset)

	require.NotNil(t, toc.Signature)
	assert.Equal(t, "RSA", toc.Signature.Style)
	assert.EqualValues(t, digestSize, toc.Signature.Offset)
	assert.EqualValues(t, 256, toc.Signature.Size)
	assert.Equal(t, []string{"LEAFCERTBASE64"}, toc.Signature.Certificates)
	assert.Equal(t, "123.0", toc.SignatureCreationTime)

	require.Len(t, toc.Files, 1)
	dirFile := toc.Files[0]
	assert.Equal(t, 1, dirFile.Id)
	assert.Equal(t, "sub", dirFile.Name)
	assert.Equal(t, "directory", dirFile.Type)
	require.Len(t, dirFile.Files, 1)

	aFile := dirFile.Files[0]
	assert.Equal(t, 2, aFile.Id)
	assert.Equal(t, "a.txt", aFile.Name)
	assert.Equal(t, "file", aFile.Type)
	require.NotNil(t, aFile.Data)
	assert.EqualValues(t, 20, aFile.Data.Offset)
	assert.EqualValues(t, 5, aFile.Data.Size)
	assert.EqualValues(t, 7, aFile.Data.Length)
	assert.Equal(t, "aaaa", aFile.Data.ArchivedChecksum.Digest)
	assert.Equal(t, "sha1", aFile.Data.ArchivedChecksum.Style)
	assert.Equal(t, "bbbb", aFile.Data.ExtractedChecksum.Digest)
	assert.Equal(t, encodingStyle, aFile.Data.Encoding.Style)
}

func TestBuildTOCDocumentUnsigned(t *testing.T) {
	a := &FileNode{Name: "a.txt", Id: 1, Data: &FileData{Size: 0, Offset: 20, Length: 2}}

	doc := buildTOCDocument("2026-08-06T00:00:00Z", []*FileNode{a}, nil)
	xmlBytes, err := doc.WriteToBytes()
	require.NoError(t, err)

	var decoded tocDocument
	require.NoError(t, xml.Unmarshal(xmlBytes, &decoded))
	assert.Nil(t, decoded.TOC.Signature)
	assert.Empty(t, decoded.TOC.SignatureCreationTime)
}
