package kraken

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ceigel/open-orders/config"
	"github.com/ceigel/open-orders/exchanges/request"
	"github.com/ceigel/open-orders/log"
)

const (
	krakenAPIVersion = "0"
	krakenServerTime = "Time"
	krakenTicker     = "Ticker"
	krakenOpenOrders = "OpenOrders"

	// DefaultTickerPair is the pair requested by GetTicker when none is given
	DefaultTickerPair = "XBTUSD"
)

var errUnsuccessfulStatus = errors.New("unsuccessful HTTP status code")

// Kraken is a minimal REST client for the endpoints under test
type Kraken struct {
	Name          string
	Verbose       bool
	HTTPDebugging bool
	Requester     *request.Requester
	Auth          *Authenticator
}

// New returns a client configured from c
func New(c *config.Config) (*Kraken, error) {
	auth, err := NewAuthenticator(c.APIURL, c.UserAgent, c.Credentials)
	if err != nil {
		return nil, err
	}
	name := "Kraken"
	return &Kraken{
		Name:          name,
		Verbose:       c.Verbose,
		HTTPDebugging: c.HTTPDebugging,
		Requester: request.New(name,
			&http.Client{Timeout: c.HTTPTimeout},
			request.WithUserAgent(c.UserAgent),
			request.WithLimiter(request.NewRateLimit(c.RateLimit.Interval, c.RateLimit.Actions))),
		Auth: auth,
	}, nil
}

// PublicPath returns the URL path of a public method
func PublicPath(method string) string {
	return fmt.Sprintf("/%s/public/%s", krakenAPIVersion, method)
}

// PrivatePath returns the URL path of a private method
func PrivatePath(method string) string {
	return fmt.Sprintf("/%s/private/%s", krakenAPIVersion, method)
}

// SendRequest sends a previously built request and returns the raw response
func (k *Kraken) SendRequest(ctx context.Context, s *SignedRequest) (*request.Response, error) {
	if request.IsVerbose(ctx, k.Verbose) {
		log.Debugf(log.ExchangeSys, "%s sending %s request to %s", k.Name, s.Method, s.URL)
	}
	item := s.Item(k.Verbose)
	item.HTTPDebugging = k.HTTPDebugging
	return k.Requester.SendPayload(ctx, item)
}

func (k *Kraken) send(ctx context.Context, s *SignedRequest) ([]byte, error) {
	resp, err := k.SendRequest(ctx, s)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%s %w: %d raw response: %s", k.Name, errUnsuccessfulStatus, resp.StatusCode, resp.Body)
	}
	return resp.Body, nil
}

// GetServerTime returns current server time
func (k *Kraken) GetServerTime(ctx context.Context) (*TimeResponse, error) {
	body, err := k.send(ctx, k.Auth.NewPublicRequest(PublicPath(krakenServerTime)))
	if err != nil {
		return nil, err
	}
	return CheckResponse[TimeResponse](body)
}

// GetTicker returns ticker information for pair. Every returned entry is
// checked, the symbol set is not.
func (k *Kraken) GetTicker(ctx context.Context, pair string) (TickerResponse, error) {
	if pair == "" {
		pair = DefaultTickerPair
	}
	values := url.Values{}
	values.Set("pair", pair)

	body, err := k.send(ctx, k.Auth.NewPublicRequest(PublicPath(krakenTicker)+"?"+values.Encode()))
	if err != nil {
		return nil, err
	}
	env, err := ParseEnvelope[TickerResponse](body)
	if err != nil {
		return nil, err
	}
	result, err := env.Payload()
	if err != nil {
		return nil, err
	}
	for symbol, entry := range *result {
		if err := entry.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", symbol, err)
		}
	}
	return *result, nil
}

// GetOpenOrders returns all current open orders
func (k *Kraken) GetOpenOrders(ctx context.Context, opts OpenOrdersOptions) (*OpenOrdersResponse, error) {
	params := url.Values{}
	if opts.Trades {
		params.Set("trades", "true")
	}
	if opts.UserRef != 0 {
		params.Set("userref", strconv.FormatInt(int64(opts.UserRef), 10))
	}

	req, err := k.Auth.NewPrivateRequest(PrivatePath(krakenOpenOrders), params)
	if err != nil {
		return nil, err
	}
	body, err := k.send(ctx, req)
	if err != nil {
		return nil, err
	}
	return CheckResponse[OpenOrdersResponse](body)
}
