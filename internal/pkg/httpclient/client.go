package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/looplj/ecagate/internal/log"
)

const defaultUserAgent = "ecagate/1.0"

// HttpClient executes buffered JSON requests against upstream APIs.
type HttpClient struct {
	client *http.Client
}

// NewHttpClient creates a new HTTP client whose whole round trip is bounded by timeout.
func NewHttpClient(timeout time.Duration) *HttpClient {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &HttpClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// NewHttpClientWithClient creates a new HTTP client with a custom http.Client.
func NewHttpClientWithClient(client *http.Client) *HttpClient {
	return &HttpClient{
		client: client,
	}
}

// Do executes the HTTP request. Responses with status >= 400 are returned as *Error.
func (hc *HttpClient) Do(ctx context.Context, request *Request) (*Response, error) {
	rawReq, err := hc.buildHttpRequest(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP request: %w", err)
	}

	start := time.Now()

	rawResp, err := hc.client.Do(rawReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	defer func() {
		err := rawResp.Body.Close()
		if err != nil {
			log.Warn(ctx, "failed to close HTTP response body", log.Cause(err))
		}
	}()

	body, err := io.ReadAll(rawResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if log.DebugEnabled(ctx) {
		log.Debug(ctx, "upstream http call",
			log.String("method", rawReq.Method),
			log.String("url", rawReq.URL.Redacted()),
			log.Int("status_code", rawResp.StatusCode),
			log.Duration("latency", time.Since(start)),
			log.String("body", string(body)))
	}

	if rawResp.StatusCode >= 400 {
		return nil, &Error{
			Method:     rawReq.Method,
			URL:        rawReq.URL.Redacted(),
			StatusCode: rawResp.StatusCode,
			Status:     rawResp.Status,
			Body:       body,
		}
	}

	return &Response{
		StatusCode: rawResp.StatusCode,
		Headers:    rawResp.Header,
		Body:       body,
		Request:    request,
	}, nil
}

// DoJSON executes the request and decodes the response body into out.
func (hc *HttpClient) DoJSON(ctx context.Context, request *Request, out any) error {
	resp, err := hc.Do(ctx, request)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", request.URL, err)
	}

	return nil
}

// buildHttpRequest builds an HTTP request from Request.
func (hc *HttpClient) buildHttpRequest(
	ctx context.Context,
	request *Request,
) (*http.Request, error) {
	var body io.Reader
	if len(request.Body) > 0 {
		body = bytes.NewReader(request.Body)
	}

	method := request.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, request.URL, body)
	if err != nil {
		return nil, err
	}

	httpReq.Header = request.Headers.Clone()
	if httpReq.Header == nil {
		httpReq.Header = make(http.Header)
	}

	httpReq.Header.Set("Accept", "application/json")

	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", defaultUserAgent)
	}

	if len(request.Body) > 0 && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if len(request.Query) > 0 {
		if httpReq.URL.RawQuery != "" {
			httpReq.URL.RawQuery += "&"
		}

		httpReq.URL.RawQuery += request.Query.Encode()
	}

	return httpReq, nil
}
