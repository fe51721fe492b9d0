package httpclient

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// Method is one of the HTTP verbs the sync jobs issue.
type Method string

const (
	MethodGet  Method = http.MethodGet
	MethodPost Method = http.MethodPost
	MethodPut  Method = http.MethodPut
)

// ParseMethod resolves a verb name (any case) to a supported Method.
func ParseMethod(name string) (Method, error) {
	switch m := Method(strings.ToUpper(strings.TrimSpace(name))); m {
	case MethodGet, MethodPost, MethodPut:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported http method %q", name)
	}
}

// Request describes a single outbound call.
type Request struct {
	Method  Method
	URL     string
	Query   map[string]string
	Headers map[string]string
	Body    []byte
}

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	// Header returns the first value for name; lookup is case-insensitive.
	Header(name string) string
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}

// BasicAuth builds an Authorization header value for static credentials.
func BasicAuth(username, password string) string {
	token := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return "Basic " + token
}

// Bearer builds an Authorization header value for an API key.
func Bearer(token string) string {
	return "Bearer " + token
}
