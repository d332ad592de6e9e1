package httpclient

import (
	"net/http"
	"net/url"
)

// Request represents an outbound call to an upstream REST API.
type Request struct {
	Method  string      `json:"method"`
	URL     string      `json:"url"`
	Query   url.Values  `json:"query,omitempty"`
	Headers http.Header `json:"headers,omitempty"`
	Body    []byte      `json:"body,omitempty"`
}

// Response represents a buffered upstream response.
type Response struct {
	StatusCode int         `json:"status_code"`
	Headers    http.Header `json:"headers"`
	Body       []byte      `json:"body,omitempty"`

	Request *Request `json:"-"`
}
