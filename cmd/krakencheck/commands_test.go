package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/ceigel/open-orders/config"
	"github.com/ceigel/open-orders/exchanges/mock"
	"github.com/ceigel/open-orders/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func testApp() *cli.App {
	return &cli.App{
		Name:     "krakencheck",
		Flags:    runFlags(),
		Action:   runFeatures,
		Commands: []*cli.Command{runCommand, timeCommand, tickerCommand, ordersCommand, otpCommand},
	}
}

func TestCommandsAgainstMock(t *testing.T) {
	s := mock.NewServer(mock.DefaultConfig())
	t.Cleanup(s.Close)
	cfg = &config.Config{
		APIURL:       s.URL,
		UserAgent:    config.DefaultUserAgent,
		HTTPTimeout:  5 * time.Second,
		FeaturesPath: "../../features",
		Format:       "progress",
		Credentials: config.Credentials{
			Key:       mock.TestAPIKey,
			Secret:    mock.TestAPISecret,
			OTPSecret: mock.TestOTPSecret,
		},
	}

	app := testApp()
	for _, args := range [][]string{
		{"time"},
		{"ticker"},
		{"ticker", "XXBTZUSD"},
		{"orders", "--trades"},
		{"otp"},
		{"otp", "--seed", "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"},
		{"run", "--format", "progress"},
		{"--public-only"},
		{"run", "--format", "junit", "--output", filepath.Join(t.TempDir(), "reports", "junit.xml")},
	} {
		assert.NoErrorf(t, app.Run(append([]string{"krakencheck"}, args...)), "krakencheck %v", args)
	}

	err := app.Run([]string{"krakencheck", "ticker", "DOGEEUR"})
	assert.Error(t, err, "unknown pairs should fail")

	err = app.Run([]string{"krakencheck", "run", "--features", "../../scenario/testdata/failing"})
	assert.Equal(t, scenario.ExitFailure, exitCode(err))
}

func TestCommandsMissingCredentials(t *testing.T) {
	cfg = &config.Config{
		APIURL:      "https://api.kraken.com",
		UserAgent:   config.DefaultUserAgent,
		HTTPTimeout: time.Second,
	}
	app := testApp()
	var tornDown int
	app.After = func(*cli.Context) error {
		tornDown++
		return nil
	}

	err := app.Run([]string{"krakencheck", "orders"})
	require.ErrorIs(t, err, config.ErrMissingCredential)
	assert.Equal(t, exitOptions, exitCode(err))

	err = app.Run([]string{"krakencheck", "otp"})
	require.Error(t, err)
	assert.Equal(t, exitOptions, exitCode(err))
	assert.Equal(t, 2, tornDown, "After must run when a command fails")
}

func TestExitCode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, scenario.ExitSuccess, exitCode(nil))
	assert.Equal(t, exitFailure, exitCode(errors.New("request failed")))
	err := fmt.Errorf("wrapped: %w", withExitCode(errors.New("bad flag"), exitOptions))
	assert.Equal(t, exitOptions, exitCode(err))
	assert.EqualError(t, err, "wrapped: bad flag")
}

func TestSetupFailureRunsTeardown(t *testing.T) {
	dir := t.TempDir()
	configFile = filepath.Join(dir, "missing.json")
	envFile = filepath.Join(dir, ".env")
	t.Cleanup(func() { configFile, envFile = "", "" })

	var tornDown bool
	app := testApp()
	app.Before = setup
	app.After = func(c *cli.Context) error {
		tornDown = true
		return teardown(c)
	}
	err := app.Run([]string{"krakencheck", "time"})
	require.Error(t, err, "a missing config file must fail setup")
	assert.Equal(t, exitOptions, exitCode(err))
	assert.True(t, tornDown, "After must run when setup fails")
}
