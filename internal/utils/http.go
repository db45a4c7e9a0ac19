package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/leofalp/duochat/providers/observability"
)

// maxResponseBodySize is the maximum response body size (10 MB). Enforced via
// io.LimitReader to prevent unbounded memory allocation from rogue responses.
const maxResponseBodySize int64 = 10 * 1024 * 1024

// maxErrorBodySize bounds how much of a non-2xx body is kept in an error.
const maxErrorBodySize = 2000

// HeaderOption is a single extra request header.
type HeaderOption struct {
	Key   string
	Value string
}

// HTTPStatusError is returned when the server answers with a non-2xx status.
// Body holds a readable rendering of the response: HTML error pages (proxies,
// gateways) are converted to markdown, everything else is kept as text.
type HTTPStatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("non-2xx status %d", e.StatusCode)
	}
	return fmt.Sprintf("non-2xx status %d: %s", e.StatusCode, e.Body)
}

// CloseWithLog closes c and logs a close failure instead of returning it, so
// it never masks the primary error of the caller.
func CloseWithLog(c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}

// DoGet performs a GET request and returns the response body. Non-2xx
// responses yield an *HTTPStatusError.
func DoGet(ctx context.Context, client *http.Client, url string, headers ...HeaderOption) ([]byte, error) {
	span := observability.SpanFromContext(ctx)

	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for _, header := range headers {
		req.Header.Set(header.Key, header.Value)
	}

	requestStart := time.Now()
	res, err := httpClient.Do(req)
	requestDuration := time.Since(requestStart)
	if err != nil {
		err = redactURLError(err)
		if span != nil {
			span.AddEvent("http.request.error",
				observability.Error(err),
				observability.Duration(observability.AttrHTTPDuration, requestDuration),
			)
		}
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer CloseWithLog(res.Body)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, newHTTPStatusError(res)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if span != nil {
		span.AddEvent("http.response.received",
			observability.Int(observability.AttrHTTPStatusCode, res.StatusCode),
			observability.Int(observability.AttrHTTPResponseBodySize, len(body)),
			observability.Duration(observability.AttrHTTPDuration, requestDuration),
		)
	}
	return body, nil
}

// newHTTPStatusError drains a bounded prefix of res.Body into an error. The
// caller still owns closing the body.
func newHTTPStatusError(res *http.Response) *HTTPStatusError {
	statusErr := &HTTPStatusError{StatusCode: res.StatusCode, Status: res.Status}

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
	if err != nil {
		statusErr.Body = fmt.Sprintf("(failed to read body: %v)", err)
		return statusErr
	}
	statusErr.Body = TruncateString(readableBody(res.Header.Get("Content-Type"), raw), maxErrorBodySize)
	return statusErr
}

// readableBody turns an error body into something fit for a terminal.
func readableBody(contentType string, raw []byte) string {
	text := strings.TrimSpace(string(raw))
	looksHTML := strings.Contains(strings.ToLower(contentType), "text/html") ||
		strings.HasPrefix(strings.ToLower(text), "<!doctype html") ||
		strings.HasPrefix(strings.ToLower(text), "<html")
	if !looksHTML {
		return text
	}
	markdown, err := htmltomarkdown.ConvertString(text)
	if err != nil {
		return text
	}
	return strings.TrimSpace(markdown)
}

// redactURLError strips the query string from the URL embedded in transport
// errors; Gemini passes its key there.
func redactURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = redactQuery(urlErr.URL)
	}
	return err
}
