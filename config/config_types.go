package config

import (
	"errors"
	"time"

	"github.com/ceigel/open-orders/log"
)

// Constants declared here are filename strings and environment variable names
const (
	File    = "config.json"
	EnvFile = ".env"

	EnvAPIKey    = "API_Public_Key"
	EnvAPISecret = "API_Private_Key"
	EnvOTP       = "OTP"
	EnvOTPSecret = "OTP_Setup_Key"
	EnvAPIURL    = "KRAKEN_API_URL"

	DefaultAPIURL       = "https://api.kraken.com"
	DefaultUserAgent    = "Kraken REST API"
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultFeaturesPath = "features"
	DefaultFormat       = "pretty"
	// DefaultRateLimitInterval and DefaultRateLimitActions keep the suite
	// inside Kraken's public call allowance of one request per second
	DefaultRateLimitInterval = time.Second
	DefaultRateLimitActions  = 1
)

// Errors returned while validating the loaded configuration
var (
	ErrMissingCredential = errors.New("missing required credential")
	errInvalidAPIURL     = errors.New("invalid API URL")
	errInvalidSecret     = errors.New("API private key is not valid base64")
	errInvalidOTPSecret  = errors.New("OTP setup key is not valid base32")
	errInvalidTimeout    = errors.New("HTTP timeout cannot be negative")
	errInvalidRateLimit  = errors.New("rate limit cannot be negative")
)

// Config is the overarching object that holds all the information the suite
// needs at start up
type Config struct {
	APIURL      string        `json:"apiURL" mapstructure:"apiurl"`
	UserAgent   string        `json:"userAgent" mapstructure:"useragent"`
	HTTPTimeout time.Duration `json:"httpTimeout" mapstructure:"httptimeout"`
	Verbose     bool          `json:"verbose" mapstructure:"verbose"`
	// HTTPDebugging dumps every request and response at debug level
	HTTPDebugging bool        `json:"httpDebugging" mapstructure:"httpdebugging"`
	FeaturesPath  string      `json:"featuresPath" mapstructure:"featurespath"`
	Format        string      `json:"format" mapstructure:"format"`
	RateLimit     RateLimit   `json:"rateLimit" mapstructure:"ratelimit"`
	Credentials   Credentials `json:"credentials" mapstructure:"credentials"`
	Logging       log.Config  `json:"logging" mapstructure:"logging"`
}

// RateLimit sets how many actions may be performed per interval
type RateLimit struct {
	Interval time.Duration `json:"interval" mapstructure:"interval"`
	Actions  int           `json:"actions" mapstructure:"actions"`
}

// Credentials stores the API credentials
type Credentials struct {
	Key       string `json:"key,omitempty" mapstructure:"key"`
	Secret    string `json:"secret,omitempty" mapstructure:"secret"`
	OTP       string `json:"otp,omitempty" mapstructure:"otp"`
	OTPSecret string `json:"otpSecret,omitempty" mapstructure:"otpsecret"`
}
