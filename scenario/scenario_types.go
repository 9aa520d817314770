package scenario

import (
	"errors"
	"io"

	"github.com/ceigel/open-orders/exchanges/kraken"
	"github.com/ceigel/open-orders/exchanges/request"
	"github.com/gofrs/uuid"
)

// Step patterns bound by InitializeScenario
const (
	StepPublicRequest  = `^A request to public url (.*)$`
	StepPrivateRequest = `^An authenticated request to private url (.*)$`
	StepSend           = `^I send it$`
	StepStatus         = `^The server responds with status (.*)$`
	StepFormat         = `^The response has the correct (time|ticker|orders) format$`

	// PrivateTag marks scenarios that need API credentials
	PrivateTag = "@private"
)

// Exit codes returned by Run
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitOptions = 2
)

var (
	errNilClient         = errors.New("kraken client is nil")
	errNoPaths           = errors.New("no feature paths supplied")
	errNoRequest         = errors.New("no request has been built")
	errNoResponse        = errors.New("no response has been received")
	errUnsupportedStatus = errors.New("unsupported status")
	errUnexpectedStatus  = errors.New("unexpected HTTP status")
)

// Options configures a Run
type Options struct {
	Client *kraken.Kraken
	Paths  []string
	// Format is any godog formatter name, pretty when empty
	Format string
	// Tags is a godog tag expression such as ~@private
	Tags   string
	Strict bool
	Output io.Writer
}

// World is the state shared by the steps of a single scenario
type World struct {
	ID uuid.UUID

	client   *kraken.Kraken
	request  *kraken.SignedRequest
	response *request.Response
}
