// Package api is the client for the finance backend's JSON endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"

	"momodash/internal/core"
	"momodash/internal/log"
	"momodash/internal/metrics"
)

const (
	overviewPath     = "/financial-overview"
	transactionsPath = "/transactions"
	searchPath       = "/search"

	// Error bodies larger than this are not inspected.
	maxErrorBody = 64 << 10
	maxBody      = 10 << 20
)

// Endpoint labels used for logs and metrics.
const (
	EndpointOverview     = "overview"
	EndpointTransactions = "transactions"
	EndpointSearch       = "search"
)

type Options struct {
	BaseURL         string
	Timeout         time.Duration
	BreakerFailures int
	BreakerTimeout  time.Duration
	// Transport is wrapped with tracing; nil means http.DefaultTransport.
	Transport http.RoundTripper
	Metrics   metrics.Recorder
	Logger    *log.Logger
}

// Client talks to the backend. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker
	flights    singleflight.Group
	metrics    metrics.Recorder
	logger     *log.Logger
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.BreakerFailures <= 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NoOp{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(opts.Transport),
		},
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		metrics: opts.Metrics,
		logger:  opts.Logger.WithComponent(log.ComponentAPI),
	}

	failures := uint32(opts.BreakerFailures)
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "finance-api",
		MaxRequests: 1,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("Circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
			c.metrics.RecordCircuitState(circuitState(to))
		},
	})
	return c
}

// countsAsSuccess keeps client-side problems from tripping the breaker:
// cancellations and 4xx responses say nothing about backend health.
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode < 500
	}
	return false
}

func circuitState(s gobreaker.State) metrics.CircuitState {
	switch s {
	case gobreaker.StateOpen:
		return metrics.CircuitOpen
	case gobreaker.StateHalfOpen:
		return metrics.CircuitHalfOpen
	default:
		return metrics.CircuitClosed
	}
}

// BreakerState reports the breaker state, e.g. "closed" or "open".
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// FinancialOverview fetches aggregates for the summary cards and charts.
func (c *Client) FinancialOverview(ctx context.Context) (core.FinancialOverview, error) {
	var out core.FinancialOverview
	if err := c.get(ctx, EndpointOverview, overviewPath, "", &out); err != nil {
		return core.FinancialOverview{}, err
	}
	return out.Normalized(), nil
}

// Transactions fetches one page of transactions narrowed by f.
func (c *Client) Transactions(ctx context.Context, page int, f core.Filters) (core.TransactionPage, error) {
	var out core.TransactionPage
	err := c.get(ctx, EndpointTransactions, transactionsPath, core.TransactionsQuery(page, f), &out)
	return out, err
}

// Search fetches transactions matching a free-text query.
func (c *Client) Search(ctx context.Context, query string) (core.TransactionPage, error) {
	var out core.TransactionPage
	err := c.get(ctx, EndpointSearch, searchPath, "q="+EscapeComponent(query), &out)
	return out, err
}

// EscapeComponent escapes s for a query value, encoding spaces as %20.
func EscapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func (c *Client) get(ctx context.Context, endpoint, path, rawQuery string, out any) error {
	target := c.baseURL + path
	if rawQuery != "" {
		target += "?" + rawQuery
	}

	start := time.Now()
	body, shared, err := c.fetch(ctx, target)
	if err == nil {
		if uerr := json.Unmarshal(body, out); uerr != nil {
			err = fmt.Errorf("decode response: %w", uerr)
		}
	}
	elapsed := time.Since(start)

	outcome := "ok"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "rejected"
		err = fmt.Errorf("%s: %w", endpoint, ErrCircuitOpen)
	case errors.Is(err, context.Canceled):
		outcome = "canceled"
	case err != nil:
		outcome = "error"
	}
	c.metrics.RecordAPIRequest(endpoint, outcome, elapsed)

	if err != nil && outcome != "canceled" {
		c.logger.WarnContext(ctx, "Backend request failed",
			log.FieldEndpoint, endpoint,
			log.FieldQuery, rawQuery,
			log.FieldDuration, elapsed.Milliseconds(),
			log.FieldError, err)
	} else {
		c.logger.DebugContext(ctx, "Backend request completed",
			log.FieldEndpoint, endpoint,
			log.FieldQuery, rawQuery,
			log.FieldDuration, elapsed.Milliseconds(),
			log.FieldSuccess, err == nil,
			"shared", shared)
	}
	return err
}

// fetch runs at most one backend GET per target at a time; concurrent callers
// for the same target share its body. A caller whose context ends stops
// waiting but does not cancel the shared request.
func (c *Client) fetch(ctx context.Context, target string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	ch := c.flights.DoChan(target, func() (interface{}, error) {
		return c.breaker.Execute(func() (interface{}, error) {
			return c.do(context.WithoutCancel(ctx), target)
		})
	})
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Shared, res.Err
		}
		body, _ := res.Val.([]byte)
		return body, res.Shared, nil
	}
}

func (c *Client) do(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func statusError(resp *http.Response) *StatusError {
	se := &StatusError{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return se
	}
	var payload struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if json.Unmarshal(body, &payload) == nil {
		se.Message = payload.Error
		se.Details = payload.Details
	}
	return se
}
