package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Transport failures. An *APIError wraps exactly one of these (or a
// *ContentError for 400 responses).
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrServerError      = errors.New("internal server error")
	ErrUnavailable      = errors.New("service unavailable")
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// APIError represents a non-200 response from the KuCoin API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
	Err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("kucoin api error %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// ContentError is the structured body of a 400 response.
type ContentError struct {
	Code int16  `json:"code"`
	Msg  string `json:"msg"`
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("code: %d msg: %s", e.Code, e.Msg)
}

// doRequest performs an HTTP request and maps the status code.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := statusError(resp.StatusCode, body); err != nil {
		c.logger.Debug("api request failed",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"error", err,
		)
		return nil, err
	}

	return body, nil
}

// statusError maps an HTTP status to the transport error taxonomy.
// Returns nil for 200.
func statusError(status int, body []byte) error {
	apiErr := &APIError{
		StatusCode: status,
		Message:    http.StatusText(status),
		Body:       body,
	}

	switch status {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		apiErr.Err = ErrUnauthorized
	case http.StatusInternalServerError:
		apiErr.Err = ErrServerError
	case http.StatusServiceUnavailable:
		apiErr.Err = ErrUnavailable
	case http.StatusBadRequest:
		var content ContentError
		if err := json.Unmarshal(body, &content); err != nil {
			return fmt.Errorf("decode 400 body: %w", err)
		}
		apiErr.Message = content.Msg
		apiErr.Err = &content
	default:
		apiErr.Err = fmt.Errorf("%w: %d", ErrUnexpectedStatus, status)
	}

	return apiErr
}

// get performs a GET request and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, query)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}

// post performs a body-less POST request and decodes the JSON response.
func (c *Client) post(ctx context.Context, path string, result any) error {
	body, err := c.doRequest(ctx, http.MethodPost, path, nil)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}
