package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ceigel/open-orders/common/file"
	"github.com/ceigel/open-orders/config"
	"github.com/ceigel/open-orders/exchanges/kraken"
	"github.com/ceigel/open-orders/log"
	"github.com/ceigel/open-orders/scenario"
	"github.com/urfave/cli/v2"
)

const (
	exitFailure = scenario.ExitFailure
	exitOptions = scenario.ExitOptions
)

// exitError carries the process exit status of a failed command back to main
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withExitCode(err error, code int) error {
	return &exitError{code: code, err: err}
}

// exitCode returns the status the process should exit with for err
func exitCode(err error) int {
	if err == nil {
		return scenario.ExitSuccess
	}
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	return exitFailure
}

// runFlags are accepted both globally and by the run command
func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "features",
			Usage: "feature file or directory, comma separated, defaults to the configured features path",
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "godog output format (pretty, progress, cucumber, junit)",
		},
		&cli.StringFlag{
			Name:  "output",
			Usage: "write the report to this file instead of stdout",
		},
		&cli.BoolFlag{
			Name:  "public-only",
			Usage: "skip scenarios tagged " + scenario.PrivateTag + " so no credentials are needed",
		},
		&cli.BoolFlag{
			Name:  "strict",
			Value: true,
			Usage: "fail on undefined or pending steps",
		},
	}
}

var runCommand = &cli.Command{
	Name:   "run",
	Usage:  "runs the feature files and exits non zero when a scenario fails",
	Flags:  runFlags(),
	Action: runFeatures,
}

var timeCommand = &cli.Command{
	Name:   "time",
	Usage:  "fetches and checks the server time",
	Action: getServerTime,
}

var tickerCommand = &cli.Command{
	Name:      "ticker",
	Usage:     "fetches and checks ticker information",
	ArgsUsage: "<pair>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "pair",
			Value: kraken.DefaultTickerPair,
			Usage: "the asset pair to query",
		},
	},
	Action: getTicker,
}

var ordersCommand = &cli.Command{
	Name:  "orders",
	Usage: "fetches and checks the open orders of the account",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "trades",
			Usage: "include trades related to the orders",
		},
		&cli.IntFlag{
			Name:  "userref",
			Usage: "restrict results to the given user reference id",
		},
	},
	Action: getOpenOrders,
}

var otpCommand = &cli.Command{
	Name:  "otp",
	Usage: "prints the current two factor code for the configured OTP seed",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "seed",
			Usage: "base32 seed overriding " + config.EnvOTPSecret,
		},
		&cli.BoolFlag{
			Name:  "watch",
			Usage: "keep printing a code every window until interrupted",
		},
	},
	Action: printOTP,
}

func newClient(requirePrivate bool) (*kraken.Kraken, error) {
	if err := cfg.Validate(requirePrivate); err != nil {
		return nil, withExitCode(err, exitOptions)
	}
	k, err := kraken.New(cfg)
	if err != nil {
		return nil, withExitCode(err, exitOptions)
	}
	return k, nil
}

func runFeatures(c *cli.Context) error {
	if c.Args().Present() {
		return cli.ShowAppHelp(c)
	}
	publicOnly := c.Bool("public-only")
	k, err := newClient(!publicOnly)
	if err != nil {
		return err
	}

	paths := cfg.FeaturesPath
	if c.String("features") != "" {
		paths = c.String("features")
	}
	opts := scenario.Options{
		Client: k,
		Paths:  strings.Split(paths, ","),
		Format: cfg.Format,
		Strict: c.Bool("strict"),
	}
	if c.String("format") != "" {
		opts.Format = c.String("format")
	}
	if out := c.String("output"); out != "" {
		f, err := file.Writer(out)
		if err != nil {
			return withExitCode(err, exitOptions)
		}
		defer f.Close()
		opts.Output = f
	}
	if publicOnly {
		opts.Tags = "~" + scenario.PrivateTag
	}

	if status := scenario.Run(c.Context, opts); status != scenario.ExitSuccess {
		return withExitCode(fmt.Errorf("feature run failed with status %d", status), status)
	}
	log.Info(log.Global, "All scenarios passed")
	return nil
}

func getServerTime(c *cli.Context) error {
	k, err := newClient(false)
	if err != nil {
		return err
	}
	r, err := k.GetServerTime(c.Context)
	if err != nil {
		return err
	}
	jsonOutput(r)
	return nil
}

func getTicker(c *cli.Context) error {
	pair := c.String("pair")
	if c.Args().Present() {
		pair = c.Args().First()
	}
	k, err := newClient(false)
	if err != nil {
		return err
	}
	r, err := k.GetTicker(c.Context, pair)
	if err != nil {
		return err
	}
	for _, p := range r.Pairs() {
		if price, err := r.LastPrice(p); err == nil {
			log.Infof(log.Global, "Last price for %s: %s", p, price)
		}
	}
	jsonOutput(r)
	return nil
}

func getOpenOrders(c *cli.Context) error {
	k, err := newClient(true)
	if err != nil {
		return err
	}
	r, err := k.GetOpenOrders(c.Context, kraken.OpenOrdersOptions{
		Trades:  c.Bool("trades"),
		UserRef: int32(c.Int("userref")),
	})
	if err != nil {
		return err
	}
	ids, err := r.OrderIDs()
	if err != nil {
		return err
	}
	log.Infof(log.Global, "Got %d open orders: %v", len(ids), ids)
	jsonOutput(r)
	return nil
}

func printOTP(c *cli.Context) error {
	seed := c.String("seed")
	if seed == "" {
		seed = cfg.Credentials.OTPSecret
	}
	if seed == "" {
		return withExitCode(fmt.Errorf("no OTP seed, set %s or pass --seed", config.EnvOTPSecret), exitOptions)
	}

	for {
		now := time.Now()
		code, err := kraken.DeriveOTP(seed, now)
		if err != nil {
			return withExitCode(err, exitOptions)
		}
		fmt.Println(code)
		if !c.Bool("watch") {
			return nil
		}

		// wait for the start of the next 30 second window
		wait := time.Duration(30-now.Unix()%30) * time.Second
		select {
		case <-c.Context.Done():
			return nil
		case <-time.After(wait):
		}
	}
}
