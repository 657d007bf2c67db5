package flights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iPurya/SkySniper/pkg/logging"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// BaseSource provides the plumbing shared by all booking-site adapters:
// name, logger and an HTTP client with a per-request timeout and the
// browser-ish headers most booking APIs expect.
type BaseSource struct {
	name    string
	client  *http.Client
	logger  *logging.Logger
	headers map[string]string
}

// NewBaseSource creates a base source with the given request timeout.
func NewBaseSource(name string, timeout time.Duration, logger *logging.Logger) *BaseSource {
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &BaseSource{
		name:   name,
		client: &http.Client{Timeout: timeout},
		logger: logger,
		headers: map[string]string{
			"User-Agent":   defaultUserAgent,
			"Accept":       "application/json",
			"Content-Type": "application/json",
		},
	}
}

// Name returns the source name.
func (b *BaseSource) Name() string {
	return b.name
}

// Logger returns the logger.
func (b *BaseSource) Logger() *logging.Logger {
	return b.logger
}

// SetHeader overrides a default request header.
func (b *BaseSource) SetHeader(key, value string) {
	b.headers[key] = value
}

// GetJSON performs a GET request and decodes the JSON response into out.
func (b *BaseSource) GetJSON(ctx context.Context, url string, out interface{}) error {
	return b.doJSON(ctx, http.MethodGet, url, nil, out)
}

// PostJSON performs a POST request with a JSON body and decodes the JSON
// response into out.
func (b *BaseSource) PostJSON(ctx context.Context, url string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return b.doJSON(ctx, http.MethodPost, url, payload, out)
}

func (b *BaseSource) doJSON(ctx context.Context, method, url string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range b.headers {
		req.Header.Set(key, value)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return nil
}

// Config helpers used by source factories.

// GetLoggerFromConfig extracts the logger passed from main, or a noop
// logger so sources never dereference nil.
func GetLoggerFromConfig(config map[string]interface{}) *logging.Logger {
	if loggerInterface, ok := config["logger"]; ok {
		if logger, ok := loggerInterface.(*logging.Logger); ok {
			return logger
		}
	}
	return logging.NewNoopLogger()
}

// GetTimeoutFromConfig extracts a "timeout" value in milliseconds, falling
// back to the given default.
func GetTimeoutFromConfig(config map[string]interface{}, fallback time.Duration) time.Duration {
	switch v := config["timeout"].(type) {
	case int:
		return time.Duration(v) * time.Millisecond
	case int64:
		return time.Duration(v) * time.Millisecond
	case float64:
		return time.Duration(v) * time.Millisecond
	default:
		return fallback
	}
}

// GetStringFromConfig extracts a string value or returns the default.
func GetStringFromConfig(config map[string]interface{}, key, fallback string) string {
	if v, ok := config[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
