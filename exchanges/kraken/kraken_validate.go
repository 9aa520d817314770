package kraken

import (
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	"github.com/ceigel/open-orders/encoding/json"
	"github.com/ceigel/open-orders/log"
	"github.com/shopspring/decimal"
)

// ExpectedTickerSymbol is the only pair a ticker response may contain
const ExpectedTickerSymbol = "XXBTZUSD"

// Validation errors. Every one of them is terminal for the caller.
var (
	ErrMalformedResponse   = errors.New("malformed response")
	ErrServerError         = errors.New("server returned errors")
	ErrMissingResult       = errors.New("response has no result")
	ErrTimeFormatMismatch  = errors.New("server time is not an RFC 2822 date")
	ErrTimestampMismatch   = errors.New("server time does not match unixtime")
	ErrUnexpectedSymbolSet = errors.New("unexpected ticker symbol set")
	ErrInvalidTradeCount   = errors.New("invalid trade count")
	ErrNonPositiveValue    = errors.New("value is not positive")
	ErrUnknownPayloadKind  = errors.New("unknown payload kind")

	errMissingField    = errors.New("missing required field")
	errFieldLength     = errors.New("wrong number of values")
	errFieldType       = errors.New("wrong field type")
	errWeekdayMismatch = errors.New("day of week does not match date")
)

// ServerError carries the error descriptors of a response whose error array
// was not empty
type ServerError struct {
	Descriptors []any
}

// Error implements the error interface
func (e *ServerError) Error() string {
	parts := make([]string, len(e.Descriptors))
	for i := range e.Descriptors {
		parts[i] = fmt.Sprint(e.Descriptors[i])
	}
	return fmt.Sprintf("%v: [%s]", ErrServerError, strings.Join(parts, ", "))
}

// Unwrap allows errors.Is(err, ErrServerError)
func (e *ServerError) Unwrap() error {
	return ErrServerError
}

// ParseErrorDescriptor splits a Kraken error string. Severity is 'E' for
// errors and 'W' for warnings.
func ParseErrorDescriptor(s string) ErrorDescriptor {
	d := ErrorDescriptor{Raw: s}
	if s == "" {
		return d
	}
	d.Severity = s[0]
	parts := strings.SplitN(s[1:], ":", 3)
	d.Category = parts[0]
	if len(parts) > 1 {
		d.Type = parts[1]
	}
	if len(parts) > 2 {
		d.Extra = parts[2]
	}
	return d
}

// ParseEnvelope decodes data into an envelope around T
func ParseEnvelope[T Payload](data []byte) (*Envelope[T], error) {
	var env Envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &env, nil
}

// Payload returns the result after checking the error array and result
// presence, without running the payload's own checks
func (e *Envelope[T]) Payload() (*T, error) {
	if len(e.Error) > 0 {
		for i := range e.Error {
			if s, ok := e.Error[i].(string); ok {
				if d := ParseErrorDescriptor(s); d.Severity == 'W' {
					log.Warnf(log.ExchangeSys, "Kraken API warning: %s:%s", d.Category, d.Type)
				}
			}
		}
		return nil, &ServerError{Descriptors: e.Error}
	}
	if e.Result == nil {
		return nil, ErrMissingResult
	}
	return e.Result, nil
}

// Validate checks the envelope and then the payload invariants
func (e *Envelope[T]) Validate() error {
	result, err := e.Payload()
	if err != nil {
		return err
	}
	return (*result).Validate()
}

// CheckResponse parses and validates data as an envelope around T
func CheckResponse[T Payload](data []byte) (*T, error) {
	env, err := ParseEnvelope[T](data)
	if err != nil {
		return nil, err
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return env.Result, nil
}

// CheckPayload dispatches CheckResponse by payload kind
func CheckPayload(kind PayloadKind, data []byte) (Payload, error) {
	switch kind {
	case PayloadTime:
		r, err := CheckResponse[TimeResponse](data)
		if err != nil {
			return nil, err
		}
		return r, nil
	case PayloadTicker:
		r, err := CheckResponse[TickerResponse](data)
		if err != nil {
			return nil, err
		}
		return r, nil
	case PayloadOrders:
		r, err := CheckResponse[OpenOrdersResponse](data)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPayloadKind, kind)
}

// obsolete RFC 2822 zone names, Go only knows their abbreviation
var rfc2822Zones = map[string]int{
	"EST": -5 * 3600, "EDT": -4 * 3600,
	"CST": -6 * 3600, "CDT": -5 * 3600,
	"MST": -7 * 3600, "MDT": -6 * 3600,
	"PST": -8 * 3600, "PDT": -7 * 3600,
}

// isMilitaryZone reports whether z is a single letter military zone. RFC 2822
// treats those as -0000 since their sign was historically inverted.
func isMilitaryZone(z string) bool {
	if len(z) != 1 {
		return false
	}
	c := z[0] | 0x20
	return c >= 'a' && c <= 'z' && c != 'j'
}

// ParseRFC2822 parses the date formats Kraken uses in its rfc1123 field.
// Seconds and the day of week are optional, two digit years follow the
// obs-year rule (50-99 is the 1900s) and a day of week that disagrees with
// the date is an error.
func ParseRFC2822(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var weekday string
	rest := s
	if i := strings.IndexByte(s, ','); i >= 0 {
		weekday = strings.TrimSpace(s[:i])
		rest = s[i+1:]
	}
	fields := strings.Fields(rest)
	// day month year time zone
	if len(fields) < 5 {
		return time.Time{}, fmt.Errorf("cannot parse %q as an RFC 2822 date", s)
	}
	if isMilitaryZone(fields[4]) {
		fields[4] = "-0000"
	}
	normalised := strings.Join(fields, " ")
	if weekday != "" {
		normalised = weekday + ", " + normalised
	}
	t, err := mail.ParseDate(normalised)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse %q as an RFC 2822 date: %v", s, err)
	}
	loc := t.Location()
	if name, offset := t.Zone(); offset == 0 {
		if off, ok := rfc2822Zones[strings.ToUpper(name)]; ok {
			loc = time.FixedZone(name, off)
		}
	}
	year := t.Year()
	if len(fields[2]) == 2 && year >= 2050 {
		year -= 100
	}
	if loc != t.Location() || year != t.Year() {
		t = time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
	}
	if weekday != "" && !strings.EqualFold(weekday, t.Weekday().String()[:3]) {
		return time.Time{}, fmt.Errorf("%w: %q is a %s", errWeekdayMismatch, s, t.Weekday())
	}
	return t, nil
}

// Validate checks that rfc1123 and unixtime describe the same second
func (t TimeResponse) Validate() error {
	parsed, err := ParseRFC2822(t.Rfc1123)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTimeFormatMismatch, err)
	}
	if parsed.Unix() != t.Unixtime {
		return fmt.Errorf("%w: unixtime %d, %q is %d", ErrTimestampMismatch, t.Unixtime, t.Rfc1123, parsed.Unix())
	}
	return nil
}

// Time returns the server time
func (t TimeResponse) Time() time.Time {
	return time.Unix(t.Unixtime, 0).UTC()
}

// Validate requires the response to hold exactly the XXBTZUSD pair and that
// pair's entry to be sane
func (t TickerResponse) Validate() error {
	if err := t.ValidatePairs(ExpectedTickerSymbol); err != nil {
		return err
	}
	entry := t[ExpectedTickerSymbol]
	return entry.Validate()
}

// ValidatePairs checks that the response holds exactly the given pairs
func (t TickerResponse) ValidatePairs(pairs ...string) error {
	got := t.Pairs()
	want := append([]string(nil), pairs...)
	sort.Strings(want)
	if len(got) != len(want) {
		return fmt.Errorf("%w: got %v, expected %v", ErrUnexpectedSymbolSet, got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			return fmt.Errorf("%w: got %v, expected %v", ErrUnexpectedSymbolSet, got, want)
		}
	}
	return nil
}

// Pairs returns the sorted pair names in the response
func (t TickerResponse) Pairs() []string {
	pairs := make([]string, 0, len(t))
	for k := range t {
		pairs = append(pairs, k)
	}
	sort.Strings(pairs)
	return pairs
}

// LastPrice returns the last closed trade price for pair
func (t TickerResponse) LastPrice(pair string) (decimal.Decimal, error) {
	e, ok := t[pair]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %s not present", ErrUnexpectedSymbolSet, pair)
	}
	return decimal.NewFromString(e.Last[0])
}

// Validate checks trade counts and that prices and volumes are positive.
// Today's volume and VWAP are exempt as they are zero at the start of a day.
func (e *TickerEntry) Validate() error {
	if e.Trades[0] == 0 || e.Trades[1] == 0 || e.Trades[0] >= e.Trades[1] {
		return fmt.Errorf("%w: today %d, last 24 hours %d", ErrInvalidTradeCount, e.Trades[0], e.Trades[1])
	}
	for _, f := range []struct {
		name   string
		values []string
	}{
		{"ask", e.Ask[:]},
		{"bid", e.Bid[:]},
		{"closed", e.Last[:]},
		{"volume last 24 hours", e.Volume[1:]},
		{"vwap last 24 hours", e.VWAP[1:]},
		{"low", e.Low[:]},
		{"high", e.High[:]},
		{"opening price", []string{e.Open}},
	} {
		for i, v := range f.values {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return fmt.Errorf("%w: %s[%d] %q: %v", ErrNonPositiveValue, f.name, i, v, err)
			}
			if !d.IsPositive() {
				return fmt.Errorf("%w: %s[%d] %q", ErrNonPositiveValue, f.name, i, v)
			}
		}
	}
	return nil
}

// Validate has nothing to check beyond the structural decode
func (o OpenOrdersResponse) Validate() error {
	return nil
}

// OrderIDs returns the sorted ids of the open orders
func (o OpenOrdersResponse) OrderIDs() ([]string, error) {
	var ids []string
	err := jsonparser.ObjectEach(o.Open, func(key []byte, _ []byte, _ jsonparser.ValueType, _ int) error {
		ids = append(ids, string(key))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	sort.Strings(ids)
	return ids, nil
}
