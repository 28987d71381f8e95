package wizard

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// maxEventLineSize bounds a single stream line. Analysis results stay well
// under this.
const maxEventLineSize = 1024 * 1024

// StreamClient opens streamed POST requests against the analysis service
// and delivers parsed events. Malformed lines are logged and skipped;
// transport failures abort the whole read.
type StreamClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewStreamClient creates a StreamClient for the given analysis service
// base URL. The timeout covers the full stream lifetime, not one read.
func NewStreamClient(baseURL string, timeout time.Duration, logger *zap.Logger) *StreamClient {
	return &StreamClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Stream POSTs payload to path and invokes onEvent for every parseable
// "data: " line until the body ends. The returned error is nil when the
// stream terminated normally, even if an event carried an error field;
// event-level errors are the caller's concern.
func (c *StreamClient) Stream(ctx context.Context, path string, payload any, onEvent func(Event)) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode stream request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build stream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach analysis service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("analysis service returned status %d for %s", resp.StatusCode, path)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventLineSize)

	for scanner.Scan() {
		event, ok, err := parseEventLine(scanner.Text())
		if !ok {
			continue
		}
		if err != nil {
			c.logger.Warn("Skipping malformed stream event",
				zap.String("path", path),
				zap.Error(err))
			continue
		}
		onEvent(event)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed while reading stream: %w", err)
	}
	return nil
}
