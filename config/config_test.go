package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret    = "kQH5HW/8p1uGOVjbgWA7FunAmGO8lsSUXNsu3eow76sz84Q18fWxnyRzBHCd3pd5nE9qa99HAZtuZuj6F1huXg=="
	testOTPSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvAPIKey, EnvAPISecret, EnvOTP, EnvOTPSecret, EnvAPIURL} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	c, err := Load(LoadOptions{})
	require.NoError(t, err, "Load must not error")
	assert.Equal(t, DefaultAPIURL, c.APIURL)
	assert.Equal(t, DefaultUserAgent, c.UserAgent)
	assert.Equal(t, DefaultHTTPTimeout, c.HTTPTimeout)
	assert.Equal(t, DefaultFeaturesPath, c.FeaturesPath)
	assert.Equal(t, DefaultRateLimitInterval, c.RateLimit.Interval)
	assert.Equal(t, DefaultRateLimitActions, c.RateLimit.Actions)
	assert.Empty(t, c.Credentials.Key)
	assert.NoError(t, c.Validate(false), "public only runs do not need credentials")
	assert.ErrorIs(t, c.Validate(true), ErrMissingCredential)
}

func TestLoadEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIKey, "public")
	t.Setenv(EnvAPISecret, testSecret)
	t.Setenv(EnvOTPSecret, testOTPSecret)
	t.Setenv(EnvAPIURL, "http://127.0.0.1:1234")

	c, err := Load(LoadOptions{EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err, "a missing env file must be ignored")
	assert.Equal(t, "public", c.Credentials.Key)
	assert.Equal(t, testSecret, c.Credentials.Secret)
	assert.Equal(t, testOTPSecret, c.Credentials.OTPSecret)
	assert.Equal(t, "http://127.0.0.1:1234", c.APIURL)
	assert.NoError(t, c.Validate(true))
}

func TestLoadEnvFileAndConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("API_Public_Key=fromfile\nAPI_Private_Key="+testSecret+"\nOTP=123456\n"), 0o600))
	cfgFile := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`{
		"userAgent": "suite",
		"httpTimeout": "5s",
		"verbose": true,
		"featuresPath": "custom",
		"rateLimit": {"interval": "2s", "actions": 3},
		"credentials": {"key": "overridden-by-env"},
		"logging": {"enabled": true, "level": "ERROR", "output": "stderr"}
	}`), 0o600))

	c, err := Load(LoadOptions{ConfigFile: cfgFile, EnvFile: envFile})
	require.NoError(t, err, "Load must not error")
	assert.Equal(t, "fromfile", c.Credentials.Key, "environment must take precedence over the config file")
	assert.Equal(t, "123456", c.Credentials.OTP)
	assert.Equal(t, "suite", c.UserAgent)
	assert.Equal(t, 5*time.Second, c.HTTPTimeout)
	assert.True(t, c.Verbose)
	assert.Equal(t, "custom", c.FeaturesPath)
	assert.Equal(t, RateLimit{Interval: 2 * time.Second, Actions: 3}, c.RateLimit)
	assert.Equal(t, "ERROR", c.Logging.Level)
	assert.Equal(t, "stderr", c.Logging.Output)
	assert.NoError(t, c.Validate(true))

	_, err = Load(LoadOptions{ConfigFile: filepath.Join(dir, "nope.json")})
	assert.Error(t, err, "an explicit config file must exist")
}

func TestLoadDefaultConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, File), []byte(`{"userAgent": "from working directory"}`), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { assert.NoError(t, os.Chdir(wd)) })

	c, err := Load(LoadOptions{EnvFile: EnvFile})
	require.NoError(t, err, "a missing default env file must be ignored")
	assert.Equal(t, "from working directory", c.UserAgent, "config.json in the working directory should be read")
}

func TestValidate(t *testing.T) {
	t.Parallel()
	c := &Config{APIURL: "not a url"}
	assert.ErrorIs(t, c.Validate(false), errInvalidAPIURL)

	c = &Config{APIURL: DefaultAPIURL, HTTPTimeout: -1}
	assert.ErrorIs(t, c.Validate(false), errInvalidTimeout)

	c = &Config{APIURL: DefaultAPIURL, RateLimit: RateLimit{Actions: -1}}
	assert.ErrorIs(t, c.Validate(false), errInvalidRateLimit)
}

func TestCredentialsValidate(t *testing.T) {
	t.Parallel()
	c := Credentials{Key: "k", Secret: testSecret, OTP: "123456"}
	assert.NoError(t, c.Validate())

	c = Credentials{Key: "k", Secret: "%%%", OTP: "123456"}
	assert.ErrorIs(t, c.Validate(), errInvalidSecret)

	c = Credentials{Key: "k", Secret: testSecret, OTPSecret: "1nv@lid"}
	assert.ErrorIs(t, c.Validate(), errInvalidOTPSecret)

	c = Credentials{Key: "k", Secret: testSecret}
	err := c.Validate()
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.ErrorContains(t, err, EnvOTPSecret)

	c = Credentials{}
	err = c.Validate()
	assert.ErrorContains(t, err, EnvAPIKey)
	assert.ErrorContains(t, err, EnvAPISecret)
}
