package kraken

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // RFC 6238 reference
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/ceigel/open-orders/config"
	"github.com/ceigel/open-orders/exchanges/nonce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret    = "kQH5HW/8p1uGOVjbgWA7FunAmGO8lsSUXNsu3eow76sz84Q18fWxnyRzBHCd3pd5nE9qa99HAZtuZuj6F1huXg=="
	testNonce     = "1616492376594"
	testPath      = "/0/private/AddOrder"
	testBody      = "nonce=1616492376594&ordertype=limit&pair=XBTUSD&price=37500&type=buy&volume=1.25"
	testSignature = "4/dpxb3iT4tp/ZCVEwSnEsLxx0bqyhLpdfOpc6fn7OR8+UClSV5n9E6aSS8MPtnRfp32bAb0nmbRn6H8ndwLUQ=="

	// base32 of the ASCII seed "12345678901234567890"
	rfc6238Seed = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
)

func newTestAuthenticator(t *testing.T, creds config.Credentials) *Authenticator {
	t.Helper()
	a, err := NewAuthenticator("https://api.kraken.com/", "Kraken REST API", creds)
	require.NoError(t, err, "NewAuthenticator must not error")
	return a
}

// referenceTOTP is an independent RFC 6238 implementation for cross checking
func referenceTOTP(t *testing.T, seed string, at time.Time) string {
	t.Helper()
	key, err := base32.StdEncoding.DecodeString(seed)
	require.NoError(t, err)
	var counter [8]byte
	binary.BigEndian.PutUint64(counter[:], uint64(at.Unix()/30))
	mac := hmac.New(sha1.New, key)
	mac.Write(counter[:])
	sum := mac.Sum(nil)
	offset := sum[len(sum)-1] & 0x0f
	code := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff
	return fmt.Sprintf("%06d", code%1000000)
}

func TestGenerateSignature(t *testing.T) {
	t.Parallel()
	sig, err := GenerateSignature(testPath, testNonce, testBody, testSecret)
	require.NoError(t, err)
	assert.Equal(t, testSignature, sig)

	again, err := GenerateSignature(testPath, testNonce, testBody, testSecret)
	require.NoError(t, err)
	assert.Equal(t, sig, again, "signature must be deterministic")

	for name, args := range map[string][3]string{
		"path":  {"/0/private/CancelOrder", testNonce, testBody},
		"nonce": {testPath, "1616492376595", testBody},
		"body":  {testPath, testNonce, testBody + "&validate=true"},
	} {
		other, err := GenerateSignature(args[0], args[1], args[2], testSecret)
		require.NoError(t, err)
		assert.NotEqualf(t, sig, other, "changing the %s must change the signature", name)
	}

	_, err = GenerateSignature(testPath, testNonce, testBody, "not base64!")
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDeriveOTP(t *testing.T) {
	t.Parallel()
	for unix, want := range map[int64]string{
		59:          "287082",
		1111111109:  "081804",
		1111111111:  "050471",
		1234567890:  "005924",
		2000000000:  "279037",
		20000000000: "353130",
	} {
		at := time.Unix(unix, 0)
		code, err := DeriveOTP(rfc6238Seed, at)
		require.NoError(t, err)
		assert.Equalf(t, want, code, "code at %d", unix)
		assert.Equalf(t, referenceTOTP(t, rfc6238Seed, at), code, "reference code at %d", unix)
		assert.Len(t, code, 6)
	}
}

func TestDeriveOTPWindow(t *testing.T) {
	t.Parallel()
	first, err := DeriveOTP(rfc6238Seed, time.Unix(1618683060, 0))
	require.NoError(t, err)
	same, err := DeriveOTP(rfc6238Seed, time.Unix(1618683089, 0))
	require.NoError(t, err)
	next, err := DeriveOTP(rfc6238Seed, time.Unix(1618683090, 0))
	require.NoError(t, err)

	assert.Equal(t, first, same, "codes inside one 30 second window must match")
	assert.Equal(t, referenceTOTP(t, rfc6238Seed, time.Unix(1618683090, 0)), next)
}

func TestDeriveOTPSeedFormats(t *testing.T) {
	t.Parallel()
	at := time.Unix(1234567890, 0)
	for _, seed := range []string{"gezdgnbvgy3tqojqgezdgnbvgy3tqojq", " GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ ", "MFRGG===", "MFRGG"} {
		_, err := DeriveOTP(seed, at)
		assert.NoErrorf(t, err, "seed %q should decode", seed)
	}

	_, err := DeriveOTP("not-base32!", at)
	assert.ErrorIs(t, err, ErrDecode)
	_, err = DeriveOTP("", at)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestNewAuthenticator(t *testing.T) {
	t.Parallel()
	_, err := NewAuthenticator("https://api.kraken.com", "ua", config.Credentials{Key: "k", Secret: "%%%"})
	assert.ErrorIs(t, err, ErrDecode, "bad base64 secret should fail at construction")

	_, err = NewAuthenticator("https://api.kraken.com", "ua", config.Credentials{Key: "k", Secret: testSecret, OTPSecret: "1111"})
	assert.ErrorIs(t, err, ErrDecode, "bad base32 seed should fail at construction")

	a := newTestAuthenticator(t, config.Credentials{})
	assert.False(t, a.HasCredentials())
	assert.Equal(t, "https://api.kraken.com", a.APIURL, "trailing slash should be trimmed")
}

func TestOTPPrecedence(t *testing.T) {
	t.Parallel()
	a := newTestAuthenticator(t, config.Credentials{Key: "k", Secret: testSecret, OTP: "static", OTPSecret: rfc6238Seed})
	a.now = func() time.Time { return time.Unix(59, 0) }
	code, err := a.OTP()
	require.NoError(t, err)
	assert.Equal(t, "287082", code, "seed should take precedence over the static password")

	a = newTestAuthenticator(t, config.Credentials{Key: "k", Secret: testSecret, OTP: "static"})
	code, err = a.OTP()
	require.NoError(t, err)
	assert.Equal(t, "static", code)

	a = newTestAuthenticator(t, config.Credentials{Key: "k", Secret: testSecret})
	code, err = a.OTP()
	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestBuildSignedRequest(t *testing.T) {
	t.Parallel()
	a := newTestAuthenticator(t, config.Credentials{Key: "my-key", Secret: testSecret})
	params := url.Values{}
	params.Set("ordertype", "limit")
	params.Set("type", "buy")
	params.Set("volume", "1.25")
	params.Set("pair", "XBTUSD")
	params.Set("price", "37500")

	req, err := a.BuildSignedRequest(testPath, nonce.Value(1616492376594), "", params)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "https://api.kraken.com"+testPath, req.URL)
	assert.Equal(t, testBody, req.Body)
	assert.Equal(t, map[string]string{
		"API-Key":      "my-key",
		"API-Sign":     testSignature,
		"Content-Type": "application/x-www-form-urlencoded",
		"User-Agent":   "Kraken REST API",
	}, req.Headers)
	assert.Empty(t, params.Get("nonce"), "caller params must not be modified")

	again, err := a.BuildSignedRequest(testPath, nonce.Value(1616492376594), "", params)
	require.NoError(t, err)
	assert.Equal(t, req, again, "requests must be deterministic given their inputs")

	withOTP, err := a.BuildSignedRequest("/0/private/OpenOrders", nonce.Value(1616492376594), "123456", nil)
	require.NoError(t, err)
	assert.Equal(t, "nonce=1616492376594&otp=123456", withOTP.Body)

	_, err = newTestAuthenticator(t, config.Credentials{}).BuildSignedRequest(testPath, 1, "", nil)
	assert.ErrorIs(t, err, errNoCredentials)
}

func TestNewPrivateRequest(t *testing.T) {
	t.Parallel()
	a := newTestAuthenticator(t, config.Credentials{Key: "k", Secret: testSecret, OTPSecret: rfc6238Seed})
	a.now = func() time.Time { return time.Unix(1234567890, 0) }

	first, err := a.NewPrivateRequest("/0/private/OpenOrders", nil)
	require.NoError(t, err)
	second, err := a.NewPrivateRequest("/0/private/OpenOrders", nil)
	require.NoError(t, err)

	assert.Equal(t, "nonce=1234567890000&otp=005924", first.Body)
	assert.Equal(t, "nonce=1234567890001&otp=005924", second.Body, "nonce must increase when the clock does not")
	assert.NotEqual(t, first.Headers["API-Sign"], second.Headers["API-Sign"])

	_, err = newTestAuthenticator(t, config.Credentials{}).NewPrivateRequest("/0/private/OpenOrders", nil)
	assert.ErrorIs(t, err, errNoCredentials)
}

func TestNewPublicRequest(t *testing.T) {
	t.Parallel()
	a := newTestAuthenticator(t, config.Credentials{})
	req := a.NewPublicRequest("/0/public/Time")
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "https://api.kraken.com/0/public/Time", req.URL)
	assert.Empty(t, req.Body)
	assert.Equal(t, map[string]string{"User-Agent": "Kraken REST API"}, req.Headers)

	item := req.Item(true)
	assert.Nil(t, item.Body)
	assert.True(t, item.Verbose)
}
