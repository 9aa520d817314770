package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHMAC(t *testing.T) {
	t.Parallel()
	expectedsha512 := []byte{
		249, 212, 31, 38, 23, 3, 93, 220, 81, 209, 214, 112, 92, 75, 126, 40, 109,
		95, 247, 182, 210, 54, 217, 224, 199, 252, 129, 226, 97, 201, 245, 220, 37,
		201, 240, 15, 137, 236, 75, 6, 97, 12, 190, 31, 53, 153, 223, 17, 214, 11,
		153, 203, 49, 29, 158, 217, 204, 93, 179, 109, 140, 216, 202, 71,
	}

	sha512, err := GetHMAC(HashSHA512, []byte("Hello,World"), []byte("1234"))
	require.NoError(t, err, "GetHMAC must not error")
	assert.Equal(t, expectedsha512, sha512, "GetHMAC should return the correct SHA512 HMAC")

	_, err = GetHMAC(1337, []byte("Hello,World"), []byte("1234"))
	assert.ErrorIs(t, err, errUnsupportedHashType)

	_, err = GetHMAC(HashSHA512, []byte("Hello,World"), nil)
	assert.ErrorIs(t, err, errEmptyHMACKey)
}

func TestGetSHA256(t *testing.T) {
	t.Parallel()
	h, err := GetSHA256([]byte("Hello,World"))
	require.NoError(t, err)
	assert.Equal(t, "74a3f29b1375deb29c69a3d35444505053045e18d734cc56421b37f353a027bf", hex.EncodeToString(h))
}

func TestBase64(t *testing.T) {
	t.Parallel()
	enc := Base64Encode([]byte("hello"))
	assert.Equal(t, "aGVsbG8=", enc)

	dec, err := Base64Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), dec)

	_, err = Base64Decode("!!not base64!!")
	assert.Error(t, err)
}

func TestBase32Decode(t *testing.T) {
	t.Parallel()
	for _, in := range []string{
		"GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ",
		"gezdgnbvgy3tqojqgezdgnbvgy3tqojq",
		" GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ ",
	} {
		b, err := Base32Decode(in)
		require.NoErrorf(t, err, "Base32Decode must not error for %q", in)
		assert.Equal(t, []byte("12345678901234567890"), b)
	}

	b, err := Base32Decode("MFRGG===")
	require.NoError(t, err, "padded input must decode")
	assert.Equal(t, []byte("abc"), b)

	_, err = Base32Decode("not-base32!")
	assert.Error(t, err)
}
