package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/cityparkhub/parkctl/internal/pkg/apperror"
)

// TokenProvider supplies the current access token, or empty when logged out.
type TokenProvider interface {
	Token() string
}

// Config holds the settings for a Gateway.
type Config struct {
	BaseURL     string
	Timeout     time.Duration // connect+read ceiling for a single attempt
	ListRetries int           // attempts for calls marked WithRetry
	Logger      *logrus.Logger
}

// Gateway is the single choke point for all backend calls. It attaches the
// bearer token, fails fast when a protected call has no session, and
// normalizes every failure into the apperror taxonomy.
type Gateway struct {
	baseURL *url.URL
	client  *http.Client
	tokens  TokenProvider
	breaker *gobreaker.CircuitBreaker
	log     *logrus.Logger
	retries int
	backoff time.Duration
}

// New creates a Gateway for the given backend.
func New(cfg Config, tokens TokenProvider) (*Gateway, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	retries := cfg.ListRetries
	if retries <= 0 {
		retries = 3
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.New()
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "parking-api",
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})

	return &Gateway{
		baseURL: base,
		client:  &http.Client{Timeout: timeout},
		tokens:  tokens,
		breaker: breaker,
		log:     log,
		retries: retries,
		backoff: 500 * time.Millisecond,
	}, nil
}

type callOptions struct {
	public bool
	retry  bool
}

// Option adjusts how a single call is performed.
type Option func(*callOptions)

// Public marks a call as unauthenticated (login, registration, password reset).
func Public() Option {
	return func(o *callOptions) { o.public = true }
}

// WithRetry enables the fixed retry budget for a read-only listing query.
// Mutating calls must never use this, to avoid duplicate bookings.
func WithRetry() Option {
	return func(o *callOptions) { o.retry = true }
}

// Get performs a GET request and decodes the JSON response into out.
func (g *Gateway) Get(ctx context.Context, path string, query url.Values, out any, opts ...Option) error {
	return g.do(ctx, http.MethodGet, path, query, nil, out, opts...)
}

// Post performs a POST request with a JSON body.
func (g *Gateway) Post(ctx context.Context, path string, query url.Values, body, out any, opts ...Option) error {
	return g.do(ctx, http.MethodPost, path, query, body, out, opts...)
}

// Put performs a PUT request with a JSON body.
func (g *Gateway) Put(ctx context.Context, path string, body, out any, opts ...Option) error {
	return g.do(ctx, http.MethodPut, path, nil, body, out, opts...)
}

// Delete performs a DELETE request.
func (g *Gateway) Delete(ctx context.Context, path string, opts ...Option) error {
	return g.do(ctx, http.MethodDelete, path, nil, nil, nil, opts...)
}

func (g *Gateway) do(ctx context.Context, method, path string, query url.Values, body, out any, opts ...Option) error {
	var options callOptions
	for _, opt := range opts {
		opt(&options)
	}

	token := ""
	if !options.public {
		token = g.tokens.Token()
		if token == "" {
			// Skip the guaranteed 401 round trip.
			return apperror.New(apperror.KindUnauthenticated, "authentication required, please log in")
		}
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return apperror.Wrap(err, apperror.KindTransport, "failed to encode request body")
		}
	}

	target := g.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	attempts := 1
	if options.retry && method == http.MethodGet {
		attempts = g.retries
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return apperror.Wrap(ctx.Err(), apperror.KindNetwork, "request cancelled")
			case <-time.After(g.backoff):
			}
		}

		err := g.once(ctx, method, target, token, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err

		// Only transient transport failures are worth another attempt.
		if !apperror.IsKind(err, apperror.KindNetwork) {
			return err
		}
		g.log.WithFields(logrus.Fields{
			"method":  method,
			"path":    path,
			"attempt": attempt,
		}).WithError(err).Warn("request failed")
	}
	return lastErr
}

// once performs a single request attempt.
func (g *Gateway) once(ctx context.Context, method string, target *url.URL, token string, payload []byte, out any) error {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reqBody)
	if err != nil {
		return apperror.Wrap(err, apperror.KindTransport, "failed to build request")
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.transport(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperror.Wrap(err, apperror.KindNetwork, "failed to read server response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return normalizeStatusError(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return apperror.Wrap(err, apperror.KindTransport, "failed to decode server response")
		}
	}
	return nil
}

// transport sends the request through the circuit breaker. Only transport
// failures count against the breaker; any received response is a success.
func (g *Gateway) transport(req *http.Request) (*http.Response, error) {
	resp, err := g.breaker.Execute(func() (any, error) {
		return g.client.Do(req)
	})
	if err != nil {
		return nil, err
	}
	return resp.(*http.Response), nil
}

// classifyTransportError maps a failed send into the error taxonomy: the
// request either never got a response (network) or could not be sent at all
// (transport).
func classifyTransportError(err error) *apperror.AppError {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperror.Wrap(err, apperror.KindNetwork, "service temporarily unavailable, please try again later")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.Wrap(err, apperror.KindNetwork, "request timed out")
	}
	if errors.Is(err, context.Canceled) {
		return apperror.Wrap(err, apperror.KindNetwork, "request cancelled")
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return apperror.Wrap(err, apperror.KindNetwork, "request timed out")
		}
		return apperror.Wrap(err, apperror.KindNetwork, "no response received from server, please check your connection")
	}

	return apperror.Wrap(err, apperror.KindTransport, "failed to send request")
}
