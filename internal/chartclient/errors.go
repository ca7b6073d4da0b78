package chartclient

import "fmt"

// Error codes for failed chart fetches. All of them trigger the panel's
// fallback path identically.
const (
	CodeEncode       = "encode"
	CodeTransport    = "transport"
	CodeHTTPStatus   = "http_status"
	CodeDecode       = "decode"
	CodeMissingImage = "missing_image"
)

// CodedError is a typed fetch error.
type CodedError struct {
	Code    string
	Message string
	Status  int    // set for CodeHTTPStatus
	Body    string // truncated response body for CodeHTTPStatus
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *CodedError) Unwrap() error { return e.Cause }

func newError(code, msg string, cause error) error {
	return &CodedError{Code: code, Message: msg, Cause: cause}
}
