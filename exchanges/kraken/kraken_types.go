package kraken

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ceigel/open-orders/encoding/json"
)

// PayloadKind names one of the response payloads the suite knows how to check
type PayloadKind string

// Supported payload kinds
const (
	PayloadTime   PayloadKind = "time"
	PayloadTicker PayloadKind = "ticker"
	PayloadOrders PayloadKind = "orders"
)

// ParsePayloadKind matches s case-insensitively against the known kinds
func ParsePayloadKind(s string) (PayloadKind, error) {
	switch k := PayloadKind(strings.ToLower(strings.TrimSpace(s))); k {
	case PayloadTime, PayloadTicker, PayloadOrders:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPayloadKind, s)
}

// Payload is implemented by every result type carried in an Envelope
type Payload interface {
	Validate() error
}

// Envelope wraps every Kraken REST response. Result is nil when the server
// omitted it or sent null.
type Envelope[T Payload] struct {
	Error  []any `json:"error"`
	Result *T    `json:"result"`
}

// UnmarshalJSON requires the error field to be present and decodes the
// result strictly into T
func (e *Envelope[T]) UnmarshalJSON(data []byte) error {
	var raw struct {
		Error  *[]any          `json:"error"`
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Error == nil {
		return fmt.Errorf("%w: error", errMissingField)
	}
	e.Error = *raw.Error
	e.Result = nil
	if len(raw.Result) == 0 || bytes.Equal(raw.Result, []byte("null")) {
		return nil
	}
	var result T
	if err := json.Unmarshal(raw.Result, &result); err != nil {
		return fmt.Errorf("result: %w", err)
	}
	e.Result = &result
	return nil
}

// TimeResponse is the result of the public Time endpoint
type TimeResponse struct {
	Unixtime int64  `json:"unixtime"`
	Rfc1123  string `json:"rfc1123"`
}

// UnmarshalJSON rejects payloads missing either field
func (t *TimeResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Unixtime *int64  `json:"unixtime"`
		Rfc1123  *string `json:"rfc1123"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Unixtime == nil {
		return fmt.Errorf("%w: unixtime", errMissingField)
	}
	if raw.Rfc1123 == nil {
		return fmt.Errorf("%w: rfc1123", errMissingField)
	}
	t.Unixtime, t.Rfc1123 = *raw.Unixtime, *raw.Rfc1123
	return nil
}

// TickerEntry holds ticker information for a single pair. Two value fields
// are [today, last 24 hours].
type TickerEntry struct {
	// Ask is [price, whole lot volume, lot volume]
	Ask [3]string
	// Bid is [price, whole lot volume, lot volume]
	Bid [3]string
	// Last is the last trade closed [price, lot volume]
	Last   [2]string
	Volume [2]string
	// VWAP is the volume weighted average price
	VWAP   [2]string
	Trades [2]uint64
	Low    [2]string
	High   [2]string
	Open   string
}

// UnmarshalJSON decodes Kraken's single letter keys and checks that every
// fixed width array has exactly the expected number of values
func (e *TickerEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Ask    []string `json:"a"`
		Bid    []string `json:"b"`
		Last   []string `json:"c"`
		Volume []string `json:"v"`
		VWAP   []string `json:"p"`
		Trades []uint64 `json:"t"`
		Low    []string `json:"l"`
		High   []string `json:"h"`
		Open   *string  `json:"o"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, f := range []struct {
		name string
		src  []string
		dst  []string
	}{
		{"a", raw.Ask, e.Ask[:]},
		{"b", raw.Bid, e.Bid[:]},
		{"c", raw.Last, e.Last[:]},
		{"v", raw.Volume, e.Volume[:]},
		{"p", raw.VWAP, e.VWAP[:]},
		{"l", raw.Low, e.Low[:]},
		{"h", raw.High, e.High[:]},
	} {
		if len(f.src) != len(f.dst) {
			return fmt.Errorf("%w: %s has %d values, expected %d", errFieldLength, f.name, len(f.src), len(f.dst))
		}
		copy(f.dst, f.src)
	}
	if len(raw.Trades) != len(e.Trades) {
		return fmt.Errorf("%w: t has %d values, expected %d", errFieldLength, len(raw.Trades), len(e.Trades))
	}
	copy(e.Trades[:], raw.Trades)
	if raw.Open == nil {
		return fmt.Errorf("%w: o", errMissingField)
	}
	e.Open = *raw.Open
	return nil
}

// TickerResponse maps Kraken pair names to their ticker entry
type TickerResponse map[string]TickerEntry

// OpenOrdersResponse is the result of the private OpenOrders endpoint. Open
// is kept raw, keyed by order id.
type OpenOrdersResponse struct {
	Open json.RawMessage `json:"open"`
}

// UnmarshalJSON requires open to be a JSON object
func (o *OpenOrdersResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Open json.RawMessage `json:"open"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	open := bytes.TrimSpace(raw.Open)
	if len(open) == 0 {
		return fmt.Errorf("%w: open", errMissingField)
	}
	if open[0] != '{' {
		return fmt.Errorf("%w: open is not a JSON object", errFieldType)
	}
	o.Open = append(json.RawMessage(nil), open...)
	return nil
}

// OpenOrdersOptions are the optional parameters of the OpenOrders endpoint
type OpenOrdersOptions struct {
	Trades  bool
	UserRef int32
}

// ErrorDescriptor is a parsed Kraken error string of the form
// <severity><category>:<type>[:<extra>]
type ErrorDescriptor struct {
	Severity byte
	Category string
	Type     string
	Extra    string
	Raw      string
}
