package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/ceigel/open-orders/common/crypto"
	"github.com/ceigel/open-orders/common/file"
	"github.com/ceigel/open-orders/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadOptions selects the optional files read by Load
type LoadOptions struct {
	// ConfigFile is a JSON/YAML/TOML file understood by viper. Empty reads
	// File from the working directory when present.
	ConfigFile string
	// EnvFile is a dotenv file whose variables are added to the process
	// environment without overriding existing ones. A missing file is ignored.
	EnvFile string
}

// Load reads the configuration from the optional config file and the process
// environment, environment variables taking precedence
func Load(opts LoadOptions) (*Config, error) {
	if opts.EnvFile != "" {
		if err := loadEnvFile(opts.EnvFile); err != nil {
			return nil, err
		}
	}

	v := viper.New()
	setDefaults(v)
	for key, env := range map[string]string{
		"apiurl":                EnvAPIURL,
		"credentials.key":       EnvAPIKey,
		"credentials.secret":    EnvAPISecret,
		"credentials.otp":       EnvOTP,
		"credentials.otpsecret": EnvOTPSecret,
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if opts.ConfigFile == "" && file.Exists(File) {
		opts.ConfigFile = File
	}
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
		log.Debugf(log.ConfigMgr, "Loaded config file %s", v.ConfigFileUsed())
	}

	c := &Config{
		APIURL:        v.GetString("apiurl"),
		UserAgent:     v.GetString("useragent"),
		HTTPTimeout:   v.GetDuration("httptimeout"),
		Verbose:       v.GetBool("verbose"),
		HTTPDebugging: v.GetBool("httpdebugging"),
		FeaturesPath:  v.GetString("featurespath"),
		Format:        v.GetString("format"),
		RateLimit: RateLimit{
			Interval: v.GetDuration("ratelimit.interval"),
			Actions:  v.GetInt("ratelimit.actions"),
		},
		Credentials: Credentials{
			Key:       v.GetString("credentials.key"),
			Secret:    v.GetString("credentials.secret"),
			OTP:       v.GetString("credentials.otp"),
			OTPSecret: v.GetString("credentials.otpsecret"),
		},
		Logging: log.GenDefaultSettings(),
	}

	if v.IsSet("logging") {
		if err := v.UnmarshalKey("logging", &c.Logging); err != nil {
			return nil, fmt.Errorf("failed to decode logging config: %w", err)
		}
	}
	return c, nil
}

func loadEnvFile(path string) error {
	if !file.Exists(path) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	log.Debugf(log.ConfigMgr, "Loaded environment file %s", path)
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("apiurl", DefaultAPIURL)
	v.SetDefault("useragent", DefaultUserAgent)
	v.SetDefault("httptimeout", DefaultHTTPTimeout)
	v.SetDefault("featurespath", DefaultFeaturesPath)
	v.SetDefault("format", DefaultFormat)
	v.SetDefault("ratelimit.interval", DefaultRateLimitInterval)
	v.SetDefault("ratelimit.actions", DefaultRateLimitActions)
}

// Validate checks the loaded values. Credentials are only required when
// private endpoints are going to be exercised.
func (c *Config) Validate(requirePrivate bool) error {
	var errs []error
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("%w: %q", errInvalidAPIURL, c.APIURL))
	}
	if c.HTTPTimeout < 0 {
		errs = append(errs, errInvalidTimeout)
	}
	if c.RateLimit.Interval < 0 || c.RateLimit.Actions < 0 {
		errs = append(errs, errInvalidRateLimit)
	}
	if requirePrivate {
		errs = append(errs, c.Credentials.Validate())
	}
	return errors.Join(errs...)
}

// Validate checks that private endpoint credentials are present and decode
func (c *Credentials) Validate() error {
	var errs []error
	if c.Key == "" {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMissingCredential, EnvAPIKey))
	}
	if c.Secret == "" {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMissingCredential, EnvAPISecret))
	} else if _, err := crypto.Base64Decode(c.Secret); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", errInvalidSecret, err))
	}
	switch {
	case c.OTPSecret != "":
		if _, err := crypto.Base32Decode(c.OTPSecret); err != nil {
			errs = append(errs, fmt.Errorf("%w: %v", errInvalidOTPSecret, err))
		}
	case c.OTP == "":
		errs = append(errs, fmt.Errorf("%w: %s or %s", ErrMissingCredential, EnvOTP, EnvOTPSecret))
	}
	return errors.Join(errs...)
}
