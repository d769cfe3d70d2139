package httpclient

import (
	"context"
	"errors"
	"fmt"
)

// DefaultErrorMessage is used when a failed response carries no usable
// message.
const DefaultErrorMessage = "Fetch error"

// ErrMalformedBody is returned by JSON when a successful response body
// cannot be decoded.
var ErrMalformedBody = errors.New("httpclient: malformed response body")

// APIError is a non-2xx response from the events API.
type APIError struct {
	StatusCode int
	Message    string
	// Malformed is set when the error body was unparseable or had no
	// message field; Message is then DefaultErrorMessage.
	Malformed bool
}

func (e *APIError) Error() string {
	return e.Message
}

// Kind is the failure category of an error returned by the client.
type Kind int

const (
	// KindNone means no error.
	KindNone Kind = iota
	// KindTransport means the request never reached or returned from the
	// server.
	KindTransport
	// KindCanceled means the request was deliberately aborted.
	KindCanceled
	// KindServer means the server answered non-2xx with a message.
	KindServer
	// KindMalformedBody means a response body could not be understood.
	KindMalformedBody
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTransport:
		return "transport"
	case KindCanceled:
		return "canceled"
	case KindServer:
		return "server"
	case KindMalformedBody:
		return "malformed_body"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Classify maps an error returned by Client to its Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Malformed {
			return KindMalformedBody
		}
		return KindServer
	}
	if errors.Is(err, ErrMalformedBody) {
		return KindMalformedBody
	}
	return KindTransport
}

// IsCanceled reports whether err is a deliberate cancellation.
func IsCanceled(err error) bool {
	return Classify(err) == KindCanceled
}
