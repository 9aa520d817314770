package scenario

import (
	"context"
	"fmt"
	"strings"

	"github.com/ceigel/open-orders/exchanges/kraken"
	"github.com/ceigel/open-orders/log"
	"github.com/gofrs/uuid"
)

// NewWorld returns an empty World sending requests through client
func NewWorld(client *kraken.Kraken) (*World, error) {
	if client == nil {
		return nil, errNilClient
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	return &World{ID: id, client: client}, nil
}

func (w *World) fields() map[string]interface{} {
	return map[string]interface{}{"scenario": w.ID.String()}
}

// PublicRequest prepares an unauthenticated GET of path
func (w *World) PublicRequest(path string) error {
	w.request = w.client.Auth.NewPublicRequest(strings.TrimSpace(path))
	w.response = nil
	return nil
}

// PrivateRequest prepares a signed POST of path with a fresh nonce and OTP
func (w *World) PrivateRequest(path string) error {
	req, err := w.client.Auth.NewPrivateRequest(strings.TrimSpace(path), nil)
	if err != nil {
		return err
	}
	w.request = req
	w.response = nil
	return nil
}

// Send sends the prepared request. The request is consumed.
func (w *World) Send(ctx context.Context) error {
	if w.request == nil {
		return errNoRequest
	}
	req := w.request
	w.request = nil
	resp, err := w.client.SendRequest(ctx, req)
	if err != nil {
		return err
	}
	w.response = resp
	return nil
}

// ServerResponds checks the HTTP status class of the response. Only ok is
// supported.
func (w *World) ServerResponds(status string) error {
	if w.response == nil {
		return errNoResponse
	}
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "ok":
		if !w.response.IsSuccess() {
			log.WithFields(log.ScenarioMgr, w.fields()).Errorf("raw response: %s", w.response.Body)
			return fmt.Errorf("%w: %s", errUnexpectedStatus, w.response.Status)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", errUnsupportedStatus, status)
}

// ResponseHasFormat validates the response body as the given payload kind and
// logs a short summary of it
func (w *World) ResponseHasFormat(kind string) error {
	if w.response == nil {
		return errNoResponse
	}
	k, err := kraken.ParsePayloadKind(kind)
	if err != nil {
		return err
	}
	payload, err := kraken.CheckPayload(k, w.response.Body)
	if err != nil {
		log.WithFields(log.ScenarioMgr, w.fields()).Errorf("raw response: %s", w.response.Body)
		return err
	}
	w.summarise(payload)
	return nil
}

func (w *World) summarise(p kraken.Payload) {
	switch r := p.(type) {
	case *kraken.TimeResponse:
		log.WithFields(log.ScenarioMgr, w.fields()).Infof("Server responded with time: %s", r.Rfc1123)
	case *kraken.TickerResponse:
		price, err := r.LastPrice(kraken.ExpectedTickerSymbol)
		if err != nil {
			log.WithFields(log.ScenarioMgr, w.fields()).Errorf("unable to read last price: %v", err)
			return
		}
		log.WithFields(log.ScenarioMgr, w.fields()).Infof("Last price for %s: %s", kraken.ExpectedTickerSymbol, price)
	case *kraken.OpenOrdersResponse:
		ids, err := r.OrderIDs()
		if err != nil {
			log.WithFields(log.ScenarioMgr, w.fields()).Errorf("unable to list open orders: %v", err)
			return
		}
		log.WithFields(log.ScenarioMgr, w.fields()).Infof("Got %d open orders: %v", len(ids), ids)
	}
}
