package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ceigel/open-orders/config"
	"github.com/ceigel/open-orders/encoding/json"
	"github.com/ceigel/open-orders/exchanges/mock"
	"github.com/ceigel/open-orders/exchanges/request"
	"github.com/ceigel/open-orders/log"
	"github.com/ceigel/open-orders/signaler"
	"github.com/urfave/cli/v2"
)

var (
	configFile string
	envFile    string
	verbose    bool
	debugHTTP  bool
	noWait     bool
	useMock    bool

	cfg        *config.Config
	mockServer *mock.Server
)

func jsonOutput(in any) {
	j, err := json.MarshalIndent(in, "", " ")
	if err != nil {
		return
	}
	fmt.Println(string(j))
}

// setup loads the configuration and logger shared by every command
func setup(c *cli.Context) error {
	var err error
	cfg, err = config.Load(config.LoadOptions{ConfigFile: configFile, EnvFile: envFile})
	if err != nil {
		return withExitCode(err, exitOptions)
	}
	if debugHTTP {
		cfg.HTTPDebugging = true
	}
	if verbose || cfg.HTTPDebugging {
		cfg.Logging.Level = "INFO|DEBUG|WARN|ERROR"
	}
	if err = log.SetupGlobalLogger(&cfg.Logging); err != nil {
		return withExitCode(err, exitOptions)
	}
	log.Debugf(log.Global, "Using %s for JSON", json.Implementation)

	if verbose {
		c.Context = request.WithVerbose(c.Context)
	}
	if noWait {
		c.Context = request.WithDelayNotAllowed(c.Context)
	}

	if useMock {
		mockServer = mock.NewServer(mock.DefaultConfig())
		cfg.APIURL = mockServer.URL
		cfg.Credentials = config.Credentials{
			Key:       mock.TestAPIKey,
			Secret:    mock.TestAPISecret,
			OTPSecret: mock.TestOTPSecret,
		}
	}
	return nil
}

func teardown(_ *cli.Context) error {
	if mockServer != nil {
		mockServer.Close()
	}
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "krakencheck"
	app.Usage = "behaviour driven conformance checks for the Kraken REST API"
	app.EnableBashCompletion = true
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "JSON, YAML or TOML config file, defaults to " + config.File + " when present",
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:        "env",
			Value:       config.EnvFile,
			Usage:       "dotenv file holding API_Public_Key, API_Private_Key, OTP and OTP_Setup_Key, ignored when missing",
			Destination: &envFile,
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Aliases:     []string{"v"},
			Usage:       "log requests, responses and debug output",
			Destination: &verbose,
		},
		&cli.BoolFlag{
			Name:        "debug-http",
			Usage:       "dump every HTTP request and response",
			Destination: &debugHTTP,
		},
		&cli.BoolFlag{
			Name:        "no-wait",
			Usage:       "fail requests that would have to wait for the rate limiter instead of sleeping",
			Destination: &noWait,
		},
		&cli.BoolFlag{
			Name:        "mock",
			Usage:       "run against an in-process mock of the Kraken API instead of the real one",
			Destination: &useMock,
		},
	}
	app.Flags = append(app.Flags, runFlags()...)
	app.Before = setup
	app.After = teardown
	app.Action = runFeatures
	app.Commands = []*cli.Command{
		runCommand,
		timeCommand,
		tickerCommand,
		ordersCommand,
		otpCommand,
	}

	ctx, cancel := signaler.WithInterrupt(context.Background())
	err := app.RunContext(ctx, os.Args)
	cancel()
	if err != nil {
		log.Errorln(log.Global, err)
		os.Exit(exitCode(err))
	}
}
