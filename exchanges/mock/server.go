package mock

import (
	"crypto/subtle"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ceigel/open-orders/common/crypto"
	"github.com/ceigel/open-orders/encoding/json"
	"github.com/ceigel/open-orders/log"
	"github.com/gorilla/mux"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Routes served by the mock
const (
	RouteTime       = "/0/public/Time"
	RouteTicker     = "/0/public/Ticker"
	RouteOpenOrders = "/0/private/OpenOrders"

	krakenTimeLayout = "Mon, 02 Jan 06 15:04:05 -0700"
)

// tickerPairs lists the pair names the ticker route answers for
var tickerPairs = map[string]bool{
	"XBTUSD":   true,
	"XXBTZUSD": true,
}

// Config holds the credentials the mock accepts on private routes. An empty
// OTP and OTPSecret disables the two factor check.
type Config struct {
	APIKey    string
	APISecret string
	OTP       string
	OTPSecret string
}

// DefaultConfig returns a Config protected by the TestOTPSecret seed
func DefaultConfig() Config {
	return Config{
		APIKey:    TestAPIKey,
		APISecret: TestAPISecret,
		OTPSecret: TestOTPSecret,
	}
}

// Response replaces the default answer of a route
type Response struct {
	StatusCode int
	Body       string
}

// Server is an in-process stand-in for the Kraken REST API
type Server struct {
	URL string

	srv *httptest.Server
	cfg Config

	m         sync.Mutex
	now       func() time.Time
	nonces    map[string]uint64
	overrides map[string]Response
}

// NewServer starts a mock server on a loopback port
func NewServer(cfg Config) *Server {
	s := &Server{
		cfg:       cfg,
		now:       time.Now,
		nonces:    make(map[string]uint64),
		overrides: make(map[string]Response),
	}
	s.srv = httptest.NewServer(s.Router())
	s.URL = s.srv.URL
	log.Infof(log.MockSys, "Mock Kraken API listening on %s", s.URL)
	return s
}

// Router returns the routes served by the mock
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc(RouteTime, s.handleTime).Methods(http.MethodGet)
	r.HandleFunc(RouteTicker, s.handleTicker).Methods(http.MethodGet)
	r.HandleFunc("/0/private/{method}", s.handlePrivate).Methods(http.MethodPost)
	return r
}

// Close shuts the server down
func (s *Server) Close() {
	s.srv.Close()
}

// Client returns an HTTP client wired to the server
func (s *Server) Client() *http.Client {
	return s.srv.Client()
}

// SetResponse overrides the answer of route. Private routes still
// authenticate before the override is served.
func (s *Server) SetResponse(route string, r Response) {
	if r.StatusCode == 0 {
		r.StatusCode = http.StatusOK
	}
	s.m.Lock()
	s.overrides[route] = r
	s.m.Unlock()
}

// ResetResponses removes every override
func (s *Server) ResetResponses() {
	s.m.Lock()
	s.overrides = make(map[string]Response)
	s.m.Unlock()
}

// SetClock replaces the clock used for server time and OTP checks
func (s *Server) SetClock(now func() time.Time) {
	s.m.Lock()
	s.now = now
	s.m.Unlock()
}

func (s *Server) override(route string) (Response, bool) {
	s.m.Lock()
	defer s.m.Unlock()
	r, ok := s.overrides[route]
	return r, ok
}

func (s *Server) clock() time.Time {
	s.m.Lock()
	defer s.m.Unlock()
	return s.now()
}

func (s *Server) handleTime(w http.ResponseWriter, r *http.Request) {
	log.Debugf(log.MockSys, "%s %s", r.Method, r.URL)
	if o, ok := s.override(RouteTime); ok {
		writeRaw(w, o)
		return
	}
	now := s.clock().UTC()
	writeResult(w, struct {
		Unixtime int64  `json:"unixtime"`
		Rfc1123  string `json:"rfc1123"`
	}{
		Unixtime: now.Unix(),
		Rfc1123:  now.Format(krakenTimeLayout),
	})
}

func (s *Server) handleTicker(w http.ResponseWriter, r *http.Request) {
	log.Debugf(log.MockSys, "%s %s", r.Method, r.URL)
	if o, ok := s.override(RouteTicker); ok {
		writeRaw(w, o)
		return
	}
	pair := r.URL.Query().Get("pair")
	if pair == "" {
		writeError(w, ErrInvalidArguments)
		return
	}
	for _, p := range strings.Split(pair, ",") {
		if !tickerPairs[strings.ToUpper(strings.TrimSpace(p))] {
			writeError(w, ErrUnknownPair)
			return
		}
	}
	writeRaw(w, Response{StatusCode: http.StatusOK, Body: TickerResponse})
}

func (s *Server) handlePrivate(w http.ResponseWriter, r *http.Request) {
	log.Debugf(log.MockSys, "%s %s", r.Method, r.URL)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if msg := s.authenticate(r.URL.Path, r.Header, string(body)); msg != "" {
		log.Warnf(log.MockSys, "Rejected private request to %s: %s", r.URL.Path, msg)
		writeError(w, msg)
		return
	}

	if o, ok := s.override(r.URL.Path); ok {
		writeRaw(w, o)
		return
	}
	switch mux.Vars(r)["method"] {
	case "OpenOrders":
		writeRaw(w, Response{StatusCode: http.StatusOK, Body: OpenOrdersResponse})
	default:
		writeError(w, ErrUnknownMethod)
	}
}

// authenticate returns the Kraken error string for a rejected request or an
// empty string when the request is accepted
func (s *Server) authenticate(path string, h http.Header, body string) string {
	if h.Get("API-Key") == "" || h.Get("API-Key") != s.cfg.APIKey {
		return ErrInvalidKey
	}
	values, err := url.ParseQuery(body)
	if err != nil {
		return ErrInvalidArguments
	}

	nonceStr := values.Get("nonce")
	expected, err := sign(path, nonceStr, body, s.cfg.APISecret)
	if err != nil {
		log.Errorf(log.MockSys, "Unable to sign with configured secret: %v", err)
		return ErrInvalidSignature
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(h.Get("API-Sign"))) != 1 {
		return ErrInvalidSignature
	}

	n, err := strconv.ParseUint(nonceStr, 10, 64)
	if err != nil {
		return ErrInvalidNonce
	}
	s.m.Lock()
	if n <= s.nonces[s.cfg.APIKey] {
		s.m.Unlock()
		return ErrInvalidNonce
	}
	s.nonces[s.cfg.APIKey] = n
	s.m.Unlock()

	if !s.validOTP(values.Get("otp")) {
		return ErrInvalidOTP
	}
	return ""
}

func (s *Server) validOTP(code string) bool {
	switch {
	case s.cfg.OTPSecret != "":
		ok, err := totp.ValidateCustom(code, strings.ToUpper(strings.TrimRight(s.cfg.OTPSecret, "=")), s.clock(), totp.ValidateOpts{
			Period:    30,
			Skew:      1,
			Digits:    otp.DigitsSix,
			Algorithm: otp.AlgorithmSHA1,
		})
		return err == nil && ok
	case s.cfg.OTP != "":
		return subtle.ConstantTimeCompare([]byte(code), []byte(s.cfg.OTP)) == 1
	}
	return true
}

func sign(path, nonce, body, secret string) (string, error) {
	key, err := crypto.Base64Decode(secret)
	if err != nil {
		return "", err
	}
	shasum, err := crypto.GetSHA256([]byte(nonce + body))
	if err != nil {
		return "", err
	}
	mac, err := crypto.GetHMAC(crypto.HashSHA512, append([]byte(path), shasum...), key)
	if err != nil {
		return "", err
	}
	return crypto.Base64Encode(mac), nil
}

func writeResult(w http.ResponseWriter, result any) {
	payload, err := json.Marshal(map[string]any{
		"error":  []string{},
		"result": result,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeRaw(w, Response{StatusCode: http.StatusOK, Body: string(payload)})
}

func writeError(w http.ResponseWriter, msg string) {
	writeRaw(w, Response{StatusCode: http.StatusOK, Body: fmt.Sprintf(`{"error":[%q]}`, msg)})
}

func writeRaw(w http.ResponseWriter, r Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.StatusCode)
	if _, err := io.WriteString(w, r.Body); err != nil {
		log.Errorf(log.MockSys, "Unable to write response: %v", err)
	}
}
