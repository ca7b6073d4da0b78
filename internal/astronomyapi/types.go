package astronomyapi

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Error codes for failed upstream calls.
const (
	CodeTransport = "UPSTREAM_TRANSPORT"
	CodeReadBody  = "UPSTREAM_READ_BODY"
	CodeRequest   = "UPSTREAM_REQUEST"
)

// CodedError is a typed error used for stable logging and mapping.
type CodedError struct {
	Code    string
	Message string
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

// Credentials is the static application id/secret pair.
type Credentials struct {
	AppID     string
	AppSecret string
}

// Valid reports whether both halves are present.
func (c Credentials) Valid() bool {
	return strings.TrimSpace(c.AppID) != "" && strings.TrimSpace(c.AppSecret) != ""
}

// BasicAuthHeader returns "Basic base64(id:secret)".
func (c Credentials) BasicAuthHeader() string {
	token := base64.StdEncoding.EncodeToString([]byte(c.AppID + ":" + c.AppSecret))
	return "Basic " + token
}

// RawResponse is an upstream reply kept byte-for-byte.
type RawResponse struct {
	Status      int
	Body        []byte
	ContentType string
}
