package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/pushgate/pkg/logger"
)

const maxErrorBody = 64 << 10

// Func adapts a plain function to a subscriber.
type Func func(ctx context.Context, userID string) error

func (f Func) Subscribe(ctx context.Context, userID string) error { return f(ctx, userID) }

// Discard accepts every subscription without calling anything.
func Discard() Func {
	return func(context.Context, string) error { return nil }
}

type subscribeRequest struct {
	UserID string `json:"user_id"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HTTPSubscriber registers users with a push provider over HTTP.
type HTTPSubscriber struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *slog.Logger
}

type Option func(*HTTPSubscriber)

// WithHTTPClient replaces the default client; the configured timeout is
// ignored then.
func WithHTTPClient(c *http.Client) Option {
	return func(s *HTTPSubscriber) {
		if c != nil {
			s.client = c
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *HTTPSubscriber) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewHTTPSubscriber(cfg Config, opts ...Option) (*HTTPSubscriber, error) {
	if cfg.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	if _, err := url.ParseRequestURI(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingEndpoint, err)
	}

	s := &HTTPSubscriber{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("provider"))
	return s, nil
}

// Subscribe POSTs {"user_id": userID}. Any 2xx is success; other statuses
// become *Error, transport failures are wrapped in ErrRequestFailed.
func (s *HTTPSubscriber) Subscribe(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	body, err := json.Marshal(subscribeRequest{UserID: userID})
	if err != nil {
		return fmt.Errorf("provider: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("provider: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("X-API-Key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Join(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		s.logger.DebugContext(ctx, "user subscribed", logger.UserID(userID))
		return nil
	}

	perr := &Error{Status: resp.StatusCode, Message: readMessage(resp.Body)}
	s.logger.WarnContext(ctx, "provider rejected subscription",
		logger.UserID(userID),
		slog.Int("status", perr.Status),
		logger.Error(perr),
	)
	return perr
}

func readMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err != nil {
		return ""
	}
	if eb.Error != "" {
		return eb.Error
	}
	return eb.Message
}
