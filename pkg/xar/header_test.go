package xar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-xar/xargen/pkg/xar"
	"github.com/go-xar/xargen/pkg/xarerr"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := xar.NewHeader(1234, 5678)
	encoded := xar.EncodeHeader(h)
	require.Len(t, encoded, xar.HeaderSize)

	decoded, err := xar.DecodeHeader(encoded)
	require.NoError(t, err)
	assert.Equal(t, h, decoded)
}

func TestHeaderMagicBytes(t *testing.T) {
	h := xar.NewHeader(0, 0)
	encoded := xar.EncodeHeader(h)
	assert.Equal(t, []byte{0x78, 0x61, 0x72, 0x21}, encoded[:4])
}

func TestDecodeHeaderInvalidMagic(t *testing.T) {
	buf := make([]byte, xar.HeaderSize)
	_, err := xar.DecodeHeader(buf)
	require.Error(t, err)
	assert.IsType(t, &xarerr.InvalidMagicError{}, err)
}

func TestDecodeHeaderTooSmall(t *testing.T) {
	_, err := xar.DecodeHeader(make([]byte, 10))
	require.Error(t, err)
	assert.IsType(t, &xarerr.HeaderTooSmallError{}, err)
}
