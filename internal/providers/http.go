package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// postJSON sends one request and classifies the status code into the
// retry error types. The response body is returned only on 200.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if err := classifyStatus(httpResp.StatusCode, string(body)); err != nil {
		return nil, err
	}
	return body, nil
}

func classifyStatus(code int, body string) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusTooManyRequests:
		return &rateLimitError{}
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return &authError{message: body}
	case code >= 500:
		return &serverError{statusCode: code, body: body}
	default:
		return fmt.Errorf("API error (status %d): %s", code, body)
	}
}
