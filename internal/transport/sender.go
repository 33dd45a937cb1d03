// Package transport posts agent documents to the remote service as
// multipart form uploads.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	agentPath          = "/szamla/"
	attachmentFilename = "request.xml"
)

// Response is the raw result of one remote call.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Sender performs one fire-and-forget agent call. Implementations must not
// retry: invoice and receipt creation are not idempotent and the protocol
// has no idempotency keys.
type Sender interface {
	Send(ctx context.Context, fieldName string, document []byte) (*Response, error)
}

// HTTPSender posts documents to <baseURL>/szamla/ with the XML attached as
// the single multipart file part under the operation's field name.
type HTTPSender struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPSender builds a sender for baseURL with the given timeout.
func NewHTTPSender(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPSender{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Send performs a single multipart POST and reads the full response.
func (s *HTTPSender) Send(ctx context.Context, fieldName string, document []byte) (*Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(fieldName, attachmentFilename)
	if err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := part.Write(document); err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+agentPath, &buf)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	s.logger.Debug("sending agent request",
		zap.String("field", fieldName),
		zap.Int("document_bytes", len(document)))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("posting to agent: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading agent response: %w", err)
	}

	s.logger.Debug("agent response",
		zap.Int("status", resp.StatusCode),
		zap.Int("body_bytes", len(body)))

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
