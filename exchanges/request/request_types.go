package request

import (
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	userAgent = "User-Agent"

	// DefaultTimeout is the client timeout used when none is supplied
	DefaultTimeout = 30 * time.Second
)

// Requester sends single HTTP requests on behalf of an exchange client
type Requester struct {
	HTTPClient *http.Client
	Name       string
	UserAgent  string
	limiter    *rate.Limiter
}

// RequesterOption is a function option that can be applied to configure a
// Requester when creating it.
type RequesterOption func(*Requester)

// Item is a temporary item for a request
type Item struct {
	Method        string
	Path          string
	Headers       map[string]string
	Body          io.Reader
	Verbose       bool
	HTTPDebugging bool
}

// Response holds everything read back from a completed request
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// IsSuccess reports whether the status code is in the 2xx range
func (r *Response) IsSuccess() bool {
	return r != nil && r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}
