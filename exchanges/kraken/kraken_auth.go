package kraken

import (
	"encoding/base32"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ceigel/open-orders/common/crypto"
	"github.com/ceigel/open-orders/config"
	"github.com/ceigel/open-orders/exchanges/nonce"
	"github.com/ceigel/open-orders/exchanges/request"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	otpPeriod = 30

	headerAPIKey      = "API-Key"
	headerAPISign     = "API-Sign"
	headerContentType = "Content-Type"
	headerUserAgent   = "User-Agent"
	formContentType   = "application/x-www-form-urlencoded"
)

// Errors returned while building authenticated requests
var (
	ErrDecode  = errors.New("unable to decode secret material")
	ErrSigning = errors.New("unable to sign request")

	errNoCredentials = errors.New("private request requires API key and secret")
	errEmptyOTPSeed  = errors.New("OTP seed is empty")
)

// SignedRequest is a ready to send request. Headers for private requests
// carry the API-Sign value computed over the body.
type SignedRequest struct {
	Method  string
	URL     string
	Body    string
	Headers map[string]string
}

// Item converts the signed request into a requester item
func (s *SignedRequest) Item(verbose bool) *request.Item {
	item := &request.Item{
		Method:  s.Method,
		Path:    s.URL,
		Headers: s.Headers,
		Verbose: verbose,
	}
	if s.Body != "" {
		item.Body = strings.NewReader(s.Body)
	}
	return item
}

// Authenticator builds public and signed private requests for one set of
// credentials. Nonces drawn from it are strictly increasing.
type Authenticator struct {
	APIURL    string
	UserAgent string

	creds config.Credentials
	nonce nonce.Nonce
	now   func() time.Time
}

// NewAuthenticator returns an Authenticator for the supplied credentials.
// The secret and OTP seed must decode.
func NewAuthenticator(apiURL, userAgent string, creds config.Credentials) (*Authenticator, error) {
	if creds.Secret != "" {
		if _, err := crypto.Base64Decode(creds.Secret); err != nil {
			return nil, fmt.Errorf("%w: API private key: %v", ErrDecode, err)
		}
	}
	if creds.OTPSecret != "" {
		if _, err := crypto.Base32Decode(creds.OTPSecret); err != nil {
			return nil, fmt.Errorf("%w: OTP seed: %v", ErrDecode, err)
		}
	}
	return &Authenticator{
		APIURL:    strings.TrimRight(apiURL, "/"),
		UserAgent: userAgent,
		creds:     creds,
		now:       time.Now,
	}, nil
}

// HasCredentials reports whether private requests can be signed
func (a *Authenticator) HasCredentials() bool {
	return a.creds.Key != "" && a.creds.Secret != ""
}

// DeriveOTP returns the 6 digit TOTP code (SHA1, 30 second step) for a base32
// seed at the given instant
func DeriveOTP(seed string, at time.Time) (string, error) {
	raw, err := crypto.Base32Decode(seed)
	if err != nil {
		return "", fmt.Errorf("%w: OTP seed: %v", ErrDecode, err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: %v", ErrDecode, errEmptyOTPSeed)
	}

	code, err := totp.GenerateCodeCustom(base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw), at, totp.ValidateOpts{
		Period:    otpPeriod,
		Skew:      0,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		if errors.Is(err, otp.ErrValidateSecretInvalidBase32) {
			return "", fmt.Errorf("%w: OTP seed: %v", ErrDecode, err)
		}
		return "", fmt.Errorf("%w: %v", ErrSigning, err)
	}
	return code, nil
}

// OTP returns the two factor password to send with the next private request.
// A TOTP seed takes precedence over a static password. An empty string means
// the key has no two factor protection.
func (a *Authenticator) OTP() (string, error) {
	if a.creds.OTPSecret != "" {
		return DeriveOTP(a.creds.OTPSecret, a.now())
	}
	return a.creds.OTP, nil
}

// GenerateSignature returns the API-Sign value for a private request:
// base64(HMAC-SHA512(base64decode(secret), path + SHA256(nonce + body)))
func GenerateSignature(path, nonceValue, body, secret string) (string, error) {
	key, err := crypto.Base64Decode(secret)
	if err != nil {
		return "", fmt.Errorf("%w: API private key: %v", ErrDecode, err)
	}

	shasum, err := crypto.GetSHA256([]byte(nonceValue + body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigning, err)
	}

	hmac, err := crypto.GetHMAC(crypto.HashSHA512, append([]byte(path), shasum...), key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigning, err)
	}
	return crypto.Base64Encode(hmac), nil
}

// BuildSignedRequest form encodes params together with the nonce and otp and
// signs the result. The caller's params are not modified.
func (a *Authenticator) BuildSignedRequest(path string, n nonce.Value, otpCode string, params url.Values) (*SignedRequest, error) {
	if !a.HasCredentials() {
		return nil, errNoCredentials
	}

	values := url.Values{}
	for k, v := range params {
		values[k] = append([]string(nil), v...)
	}
	values.Set("nonce", n.String())
	if otpCode != "" {
		values.Set("otp", otpCode)
	}
	encoded := values.Encode()

	signature, err := GenerateSignature(path, n.String(), encoded, a.creds.Secret)
	if err != nil {
		return nil, err
	}

	return &SignedRequest{
		Method: http.MethodPost,
		URL:    a.APIURL + path,
		Body:   encoded,
		Headers: map[string]string{
			headerAPIKey:      a.creds.Key,
			headerAPISign:     signature,
			headerContentType: formContentType,
			headerUserAgent:   a.UserAgent,
		},
	}, nil
}

// NewPrivateRequest draws the next nonce and OTP and builds a signed request
func (a *Authenticator) NewPrivateRequest(path string, params url.Values) (*SignedRequest, error) {
	if !a.HasCredentials() {
		return nil, errNoCredentials
	}
	otpCode, err := a.OTP()
	if err != nil {
		return nil, err
	}
	return a.BuildSignedRequest(path, a.nonce.GetMilli(a.now()), otpCode, params)
}

// NewPublicRequest builds an unauthenticated GET request
func (a *Authenticator) NewPublicRequest(path string) *SignedRequest {
	return &SignedRequest{
		Method: http.MethodGet,
		URL:    a.APIURL + path,
		Headers: map[string]string{
			headerUserAgent: a.UserAgent,
		},
	}
}
