package request

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"

	"github.com/ceigel/open-orders/encoding/json"
	"github.com/ceigel/open-orders/log"
)

// ErrTransport is returned when a request could not be sent or its response
// could not be read
var ErrTransport = errors.New("transport failure")

var (
	errRequestSystemIsNil = errors.New("request system is nil")
	errRequestItemNil     = errors.New("request item is nil")
	errInvalidPath        = errors.New("invalid path")
	errInvalidMethod      = errors.New("invalid method")
)

// New returns a new Requester
func New(name string, httpRequester *http.Client, opts ...RequesterOption) *Requester {
	if httpRequester == nil {
		httpRequester = &http.Client{Timeout: DefaultTimeout}
	}
	r := &Requester{
		HTTPClient: httpRequester,
		Name:       name,
	}

	for _, o := range opts {
		o(r)
	}

	return r
}

// WithUserAgent sets the User-Agent header added to requests that do not
// carry one already
func WithUserAgent(ua string) RequesterOption {
	return func(r *Requester) {
		r.UserAgent = ua
	}
}

// validateRequest validates the requester item fields
func (i *Item) validateRequest(ctx context.Context, r *Requester) (*http.Request, error) {
	if i == nil {
		return nil, errRequestItemNil
	}

	if i.Path == "" {
		return nil, errInvalidPath
	}

	if i.Method == "" {
		return nil, errInvalidMethod
	}

	req, err := http.NewRequestWithContext(ctx, i.Method, i.Path, i.Body)
	if err != nil {
		return nil, err
	}

	for k, v := range i.Headers {
		req.Header.Set(k, v)
	}

	if r.UserAgent != "" && req.Header.Get(userAgent) == "" {
		req.Header.Set(userAgent, r.UserAgent)
	}

	if i.HTTPDebugging {
		dump, err := httputil.DumpRequestOut(req, true)
		if err != nil {
			log.Errorf(log.RequestSys, "DumpRequest invalid request: %v", err)
		}
		log.Debugf(log.RequestSys, "DumpRequest:\n%s", dump)
		// DumpRequestOut drains the body and restores it on req
	}

	return req, nil
}

// SendPayload sends a single HTTP request and reads the whole response. Non
// 2xx status codes are returned to the caller as a Response, only failures to
// send or read are errors. Requests are never retried.
func (r *Requester) SendPayload(ctx context.Context, p *Item) (*Response, error) {
	if r == nil {
		return nil, errRequestSystemIsNil
	}

	req, err := p.validateRequest(ctx, r)
	if err != nil {
		return nil, err
	}

	if err = r.InitiateRateLimit(ctx); err != nil {
		return nil, err
	}

	verbose := IsVerbose(ctx, p.Verbose)
	if verbose {
		log.Debugf(log.RequestSys, "%s request path: %s", r.Name, p.Path)
		for k, d := range req.Header {
			log.Debugf(log.RequestSys, "%s request header [%s]: %s", r.Name, k, d)
		}
		log.Debugf(log.RequestSys, "%s request type: %s", r.Name, p.Method)
	}

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %w: %v", r.Name, ErrTransport, err)
	}
	defer resp.Body.Close()

	contents, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %w: reading response body: %v", r.Name, ErrTransport, err)
	}

	if p.HTTPDebugging {
		dump, err := httputil.DumpResponse(resp, false)
		if err != nil {
			log.Errorf(log.RequestSys, "DumpResponse invalid response: %v:", err)
		}
		log.Debugf(log.RequestSys, "DumpResponse Headers (%v):\n%s", p.Path, dump)
		log.Debugf(log.RequestSys, "DumpResponse Body (%v):\n %s", p.Path, string(contents))
	}

	if verbose {
		log.Debugf(log.RequestSys, "HTTP status: %s, Code: %v", resp.Status, resp.StatusCode)
		switch {
		case p.HTTPDebugging:
		case json.Valid(contents):
			log.Debugf(log.RequestSys, "%s raw response: %s", r.Name, string(contents))
		default:
			log.Warnf(log.RequestSys, "%s response is not JSON (%d bytes): %q", r.Name, len(contents), contents)
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       contents,
	}, nil
}
